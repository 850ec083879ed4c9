package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	domainerrors "github.com/greencycle/waste-pickup-exchange/internal/domain/errors"
	"github.com/greencycle/waste-pickup-exchange/internal/service/auction"
)

const maxBodySize = 1 << 20 // 1MB

// Handler serves the auction HTTP API.
type Handler struct {
	auction   *auction.Service
	validator *validator.Validate
	logger    *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(svc *auction.Service, logger *slog.Logger) *Handler {
	return &Handler{
		auction:   svc,
		validator: validator.New(),
		logger:    logger,
	}
}

// ErrorResponse is the wire shape of every API error.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req CreateRequestRequest
	if !h.decode(w, r, &req) {
		return
	}

	created, err := h.auction.CreateRequest(r.Context(), req.RequesterID, req.Category, req.QuantityKG)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) CreateBinAlert(w http.ResponseWriter, r *http.Request) {
	var req CreateBinAlertRequest
	if !h.decode(w, r, &req) {
		return
	}

	created, err := h.auction.CreateFromBinAlert(r.Context(), req.FactoryID, req.QuantityKG)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	req, err := h.auction.GetRequest(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, req)
}

func (h *Handler) SubmitBid(w http.ResponseWriter, r *http.Request) {
	requestID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req SubmitBidRequest
	if !h.decode(w, r, &req) {
		return
	}

	placed, err := h.auction.SubmitBid(r.Context(), requestID, req.VendorID, req.AmountCents)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, placed)
}

func (h *Handler) ListBids(w http.ResponseWriter, r *http.Request) {
	requestID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	bids, err := h.auction.ListBids(r.Context(), requestID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bids)
}

func (h *Handler) CompleteRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.auction.MarkCompleted(r.Context(), requestID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListRequesterRequests(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	requests, err := h.auction.ListRequestsByRequester(r.Context(), requesterID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, requests)
}

func (h *Handler) ListVendorBids(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	bids, err := h.auction.ListBidsByVendor(r.Context(), vendorID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bids)
}

func (h *Handler) ListVendorOpenRequests(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	requests, err := h.auction.ListOpenRequestsForVendor(r.Context(), vendorID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, requests)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// decode reads, unmarshals, and validates a JSON body. It writes the
// error response itself and reports whether the caller should proceed.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_JSON",
			Message: "request body is not valid JSON: " + err.Error(),
		})
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		details := map[string]any{}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				details[fe.Field()] = fe.Tag()
			}
		}
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_FAILED",
			Message: "request body failed validation",
			Details: details,
		})
		return false
	}
	return true
}

func (h *Handler) pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_ID",
			Message: "path parameter " + name + " is not a valid UUID",
		})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("response encoding failed", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := domainerrors.GetStatusCode(err)

	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		if status >= 500 {
			h.logger.ErrorContext(r.Context(), "request failed",
				"path", r.URL.Path, "code", appErr.Code, "error", err)
		}
		h.writeJSON(w, status, ErrorResponse{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		})
		return
	}

	h.logger.ErrorContext(r.Context(), "request failed",
		"path", r.URL.Path, "error", err)
	h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	})
}
