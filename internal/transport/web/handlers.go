package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sandevgo/carebot/internal/core"
	"github.com/sandevgo/carebot/internal/service/geo"
	"github.com/sandevgo/carebot/pkg/conv"
	"github.com/sandevgo/carebot/pkg/log"
)

// Pipeline is the single operation the boundary layer consumes. It
// always returns a string, never an error.
type Pipeline interface {
	Answer(ctx context.Context, q core.Question) string
}

// Geocoder resolves a street address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (geo.Location, error)
}

type Handlers struct {
	pipeline  Pipeline
	geocoder  Geocoder
	threshold float64
}

func NewHandlers(pipeline Pipeline, geocoder Geocoder, proximityThreshold float64) *Handlers {
	return &Handlers{
		pipeline:  pipeline,
		geocoder:  geocoder,
		threshold: proximityThreshold,
	}
}

type chatRequest struct {
	Question string `json:"question"`
	Role     string `json:"role"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": core.CareBotVersion})
}

func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	logger := log.FromCtx(r.Context())

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing JSON data")
		return
	}

	if req.Question == "" || req.Role == "" || req.UserID == "" || req.UserName == "" {
		logger.Warn().Msg("missing 'question', 'role', 'user_id', or 'user_name' in request")
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		logger.Warn().Msg("received empty question")
		writeError(w, http.StatusBadRequest, "Question cannot be empty")
		return
	}

	answer := h.pipeline.Answer(r.Context(), core.Question{
		Text:     question,
		Role:     req.Role,
		UserID:   req.UserID,
		UserName: req.UserName,
	})

	logger.Info().Str("question", question).Msg("processed question")
	writeJSON(w, http.StatusOK, map[string]string{
		"status":        "success",
		"response":      answer,
		"response_html": conv.MarkdownToSafeHTML([]byte(answer)),
	})
}

type distanceRequest struct {
	Latitude          flexFloat `json:"latitude"`
	Longitude         flexFloat `json:"longitude"`
	RegisteredAddress string    `json:"registered_address"`
}

func (h *Handlers) DistanceCalculation(w http.ResponseWriter, r *http.Request) {
	logger := log.FromCtx(r.Context())

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil || raw == nil {
		logger.Warn().Msg("missing JSON data in distance calculation")
		writeError(w, http.StatusBadRequest, "Invalid or missing JSON data")
		return
	}

	for _, field := range []string{"latitude", "longitude", "registered_address"} {
		if _, ok := raw[field]; !ok {
			logger.Warn().Str("field", field).Msg("missing field")
			writeError(w, http.StatusBadRequest, "Missing Field: "+field)
			return
		}
	}

	data, _ := json.Marshal(raw)
	var req distanceRequest
	if err := json.Unmarshal(data, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid coordinate values")
		return
	}

	location, err := h.geocoder.Geocode(r.Context(), req.RegisteredAddress)
	if err != nil {
		logger.Error().Err(err).Str("address", req.RegisteredAddress).Msg("failed to geocode address")
		writeError(w, http.StatusUnprocessableEntity, "Failed to resolve address")
		return
	}
	logger.Info().
		Str("address", req.RegisteredAddress).
		Float64("lat", location.Latitude).
		Float64("lng", location.Longitude).
		Msg("geocoded address")

	distance := geo.Distance(location.Latitude, location.Longitude, float64(req.Latitude), float64(req.Longitude))
	logger.Info().Float64("meters", distance).Msg("distance between coordinates")

	verdict := "Exceeds threshold"
	if distance < h.threshold {
		verdict = "Within threshold"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Distance %.2f (%s)", distance, verdict),
	})
}

// flexFloat accepts both JSON numbers and numeric strings, because
// mobile clients send coordinates either way.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	*f = flexFloat(v)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": message})
}
