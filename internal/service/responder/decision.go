package responder

import (
	"regexp"

	"github.com/sandevgo/carebot/internal/core"
)

// decisionPattern matches a standalone 0 or 1 anywhere in the model
// output. "10", "01" and digits embedded in words do not count.
var decisionPattern = regexp.MustCompile(`\b[01]\b`)

// ParseDecision extracts the binary sufficiency signal from raw model
// output. The first standalone digit wins. Anything unparsable
// resolves to Insufficient, so malformed output can never trigger an
// unconstrained answer.
func ParseDecision(output string) core.Decision {
	match := decisionPattern.FindString(output)
	if match == "1" {
		return core.Sufficient
	}
	return core.Insufficient
}
