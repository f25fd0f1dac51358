package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"phoneverify/internal/lookup/params"
	"phoneverify/internal/lookup/service"
	"phoneverify/pkg/platform/httputil"
	"phoneverify/pkg/requestcontext"
)

// codeInvalidQueryParameters is returned when lookup parameters fail validation.
const codeInvalidQueryParameters = "invalid_query_parameters"

// ValidityService checks phone numbers.
type ValidityService interface {
	Check(ctx context.Context, phoneNumber string) service.Result
	CheckWithParameters(ctx context.Context, phoneNumber string, raw map[string]string) (service.Result, error)
	CheckBatch(ctx context.Context, phoneNumbers []string) ([]service.Result, error)
}

// ValidityHandler serves the phone number validity endpoints.
type ValidityHandler struct {
	service ValidityService
	logger  *slog.Logger
}

func NewValidityHandler(svc ValidityService, logger *slog.Logger) *ValidityHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidityHandler{service: svc, logger: logger}
}

// Register mounts the validity endpoints on r.
func (h *ValidityHandler) Register(r chi.Router) {
	r.Get("/v1/phone-numbers/{phoneNumber}/validity", h.handleCheck)
	r.Post("/v1/phone-numbers/validity", h.handleBatch)
}

// handleCheck handles GET /v1/phone-numbers/{phoneNumber}/validity. Query
// parameters are passed through as lookup parameters.
func (h *ValidityHandler) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	phoneNumber, err := url.PathUnescape(chi.URLParam(r, "phoneNumber"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "malformed phone number")
		return
	}

	result, err := h.service.CheckWithParameters(ctx, phoneNumber, queryParameters(r.URL.Query()))
	if err != nil {
		if msgs, ok := params.ValidationMessages(err); ok {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error:    codeInvalidQueryParameters,
				Messages: msgs,
			})
			return
		}
		h.logger.ErrorContext(ctx, "phone number check failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, fromResult(result))
}

// handleBatch handles POST /v1/phone-numbers/validity.
func (h *ValidityHandler) handleBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndValidate[BatchRequest](w, r)
	if !ok {
		return
	}

	results, err := h.service.CheckBatch(ctx, req.PhoneNumbers)
	if err != nil {
		h.logger.WarnContext(ctx, "batch check aborted",
			"request_id", requestcontext.RequestID(ctx),
			"count", len(req.PhoneNumbers),
			"error", err,
		)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			httputil.WriteError(w, http.StatusServiceUnavailable, codeBatchAborted, "batch did not complete")
			return
		}
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "")
		return
	}

	resp := BatchResponse{Results: make([]ValidityResponse, 0, len(results))}
	for _, res := range results {
		resp.Results = append(resp.Results, fromResult(res))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// queryParameters keeps the first value of each query key.
func queryParameters(q url.Values) map[string]string {
	if len(q) == 0 {
		return nil
	}
	out := make(map[string]string, len(q))
	for k, vs := range q {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}
