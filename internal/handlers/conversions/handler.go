package conversions

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.com/testsys2pcms.net/internal/core/ports/primary"
	"gitlab.com/testsys2pcms.net/internal/core/services/convert"
	"gitlab.com/testsys2pcms.net/internal/handlers"
	"gitlab.com/testsys2pcms.net/internal/static/errs"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// ConversionHandler handles conversion API requests
type ConversionHandler struct {
	convertService convert.IConvertService
	logger         primary.Logger
}

// NewConversionHandler creates a new conversion handler
func NewConversionHandler(convertService convert.IConvertService, logger primary.Logger) *ConversionHandler {
	return &ConversionHandler{
		convertService: convertService,
		logger:         logger,
	}
}

// RegisterRoutes registers the conversion routes on the /api subrouter
func (h *ConversionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/conversions", h.CreateConversion).Methods("POST")
	router.HandleFunc("/conversions", h.ListConversions).Methods("GET")
	router.HandleFunc("/conversions/{conversionId}", h.GetConversion).Methods("GET")
}

// CreateConversion runs a conversion synchronously and returns its record
func (h *ConversionHandler) CreateConversion(w http.ResponseWriter, r *http.Request) {
	var req CreateConversionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Error("Failed to decode request", "error", err)
		handlers.ResponseError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	conversion, err := h.convertService.Convert(r.Context(), convert.Options{Force: req.Force})
	if err != nil {
		handlers.ResponseError(w, err.Error(), statusFor(err))
		return
	}

	handlers.ResponseWithJson(w, http.StatusCreated, conversion)
}

// ListConversions returns recent conversions
func (h *ConversionHandler) ListConversions(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			handlers.ResponseError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxListLimit)
	}

	conversions, err := h.convertService.ListConversions(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list conversions", "error", err)
		handlers.ResponseError(w, "Failed to list conversions", http.StatusInternalServerError)
		return
	}

	handlers.ResponseWithJson(w, http.StatusOK, ListConversionsResponse{Conversions: conversions})
}

// GetConversion returns one conversion including its parsed records
func (h *ConversionHandler) GetConversion(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	idStr := vars["conversionId"]

	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Error("Invalid conversion ID", "id", idStr)
		handlers.ResponseError(w, "Invalid conversion ID", http.StatusBadRequest)
		return
	}

	conversion, err := h.convertService.GetConversion(r.Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrConversionNotFound) {
			handlers.ResponseError(w, "Conversion not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to get conversion", "error", err)
		handlers.ResponseError(w, "Failed to get conversion", http.StatusInternalServerError)
		return
	}

	handlers.ResponseWithJson(w, http.StatusOK, conversion)
}

// statusFor maps conversion failures onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrMalformedLine),
		errors.Is(err, errs.ErrMalformedEncoding),
		errors.Is(err, errs.ErrUnknownAction),
		errors.Is(err, errs.ErrConfigurationMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
