package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"tourism-system/internal/geodata"
	"tourism-system/internal/services/intent"
	"tourism-system/internal/services/query"
	"tourism-system/internal/translate"
)

// QueryHandler handles travel query HTTP requests
type QueryHandler struct {
	extractor *intent.Extractor
	service   *query.Service
	composer  *query.Composer
}

// NewQueryHandler creates a new QueryHandler
func NewQueryHandler(extractor *intent.Extractor, service *query.Service, composer *query.Composer) *QueryHandler {
	return &QueryHandler{
		extractor: extractor,
		service:   service,
		composer:  composer,
	}
}

// RegisterRoutes registers all query routes
func (h *QueryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/query", h.Query)
		r.Get("/query", h.Query)
		r.Get("/languages", h.Languages)
	})
}

// QueryRequest is the API request shape. Either Query (free text, goes
// through the intent extractor) or Place (explicit place plus category
// flags) must be set.
type QueryRequest struct {
	Query    string `json:"query,omitempty"`
	Place    string `json:"place,omitempty"`
	Weather  bool   `json:"weather,omitempty"`
	Places   bool   `json:"places,omitempty"`
	Language string `json:"language,omitempty"`
}

// QueryResponse is the API response shape.
type QueryResponse struct {
	Outcome  query.Outcome                      `json:"outcome"`
	Response string                             `json:"response"`
	Place    *geodata.PlaceCandidate            `json:"place,omitempty"`
	Weather  *geodata.WeatherSnapshot           `json:"weather,omitempty"`
	Places   []geodata.PointOfInterest          `json:"places,omitempty"`
	Errors   map[query.Category]query.ErrorKind `json:"errors,omitempty"`
}

// Query handles a travel query, in either free-text or structured form.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest

	if r.Method == http.MethodGet {
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.Place = q.Get("place")
		req.Weather = q.Get("weather") == "true"
		req.Places = q.Get("places") == "true"
		req.Language = q.Get("language")
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
			return
		}
	}

	if strings.TrimSpace(req.Query) == "" && strings.TrimSpace(req.Place) == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "a query or place is required")
		return
	}
	if req.Language != "" && !translate.IsSupported(req.Language) {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unsupported language code")
		return
	}

	var it intent.Intent
	if strings.TrimSpace(req.Place) != "" {
		it = intent.Intent{
			PlaceText:    req.Place,
			WantsWeather: req.Weather,
			WantsPlaces:  req.Places,
		}
	} else {
		it = h.extractor.Extract(r.Context(), req.Query)
	}

	result, err := h.service.HandleQuery(r.Context(), it)
	if err != nil {
		if errors.Is(err, geodata.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "a non-empty place is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to process query")
		return
	}

	resp := QueryResponse{
		Outcome:  result.Outcome,
		Response: h.composer.Compose(r.Context(), result, req.Language),
		Place:    result.Place,
		Weather:  result.Weather,
		Places:   result.Places,
		Errors:   result.Errors,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to encode response")
	}
}

// Languages lists the supported translation target languages.
func (h *QueryHandler) Languages(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"languages": translate.Languages,
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	})
}
