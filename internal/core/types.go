package core

const (
	CareBotName    = "CareBot"
	CareBotVersion = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn sent to or received from the chat model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Question is one incoming user question together with the actor who
// asked it. It is immutable for the lifetime of a pipeline run; the
// boundary layer guarantees Text is non-empty after trimming.
type Question struct {
	Text     string
	Role     string
	UserID   string
	UserName string
}

// Passage is one retrieved unit of context. Rank starts at 1 for the
// most relevant passage.
type Passage struct {
	Content string
	Rank    int
}

// Decision is the binary signal produced by the decision gate.
type Decision int

const (
	// Insufficient means the retrieved context cannot answer the
	// question. It is also the fail-safe value for unparsable model
	// output.
	Insufficient Decision = iota
	Sufficient
)

func (d Decision) String() string {
	if d == Sufficient {
		return "sufficient"
	}
	return "insufficient"
}

// Intent classification tags stored with every interaction record.
const (
	IntentGreeting     = "greeting"
	IntentRAGContent   = "rag_content"
	IntentBasicContent = "basic_content"
)

// InteractionRecord is built once per completed pipeline run and
// persisted asynchronously. ResponseTime is wall-clock seconds rounded
// to two decimals. Date and Time are rendered in the service timezone
// at construction so the stored row matches what the operator sees.
type InteractionRecord struct {
	ID           int64
	Date         string
	Time         string
	Intent       string
	UserInput    string
	AIResponse   string
	Role         string
	UserID       string
	UserName     string
	ResponseTime float64
}

// ErrorRecord captures an unexpected failure for the error store.
type ErrorRecord struct {
	ID         int64
	Date       string
	Time       string
	Type       string
	Message    string
	StackTrace string
}
