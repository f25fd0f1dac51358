package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"phoneverify/internal/lookup/params"
	"phoneverify/internal/lookup/service"
	"phoneverify/internal/lookup/verify"
	"phoneverify/internal/platform/metrics"
	"phoneverify/internal/transport/http/mocks"
	"phoneverify/pkg/testutil"
)

//go:generate mockgen -source=handlers_validity.go -destination=mocks/mocks.go -package=mocks ValidityService

func newTestRouter(t *testing.T, svc ValidityService, deps RouterDeps) http.Handler {
	t.Helper()
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.NewRegistry()
	}
	return NewRouter(NewValidityHandler(svc, deps.Logger), deps)
}

func TestHandleCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockValidityService(ctrl)
	router := newTestRouter(t, svc, RouterDeps{})

	t.Run("valid number", func(t *testing.T) {
		svc.EXPECT().
			CheckWithParameters(gomock.Any(), "+61000000000", map[string]string(nil)).
			Return(service.Result{PhoneNumber: "+61000000000", Valid: true, Outcome: verify.OutcomeValid}, nil)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/phone-numbers/+61000000000/validity"))
		testutil.AssertStatusOK(t, rr)

		resp := testutil.UnmarshalResponse[ValidityResponse](t, rr)
		assert.Equal(t, "+61000000000", resp.PhoneNumber)
		assert.True(t, resp.Valid)
		assert.Equal(t, "valid", resp.Outcome)
		assert.NotNil(t, resp.Messages)
		assert.Empty(t, resp.Messages)
	})

	t.Run("escaped plus sign", func(t *testing.T) {
		svc.EXPECT().
			CheckWithParameters(gomock.Any(), "+61000000000", gomock.Any()).
			Return(service.Result{PhoneNumber: "+61000000000", Valid: true, Outcome: verify.OutcomeValid}, nil)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/phone-numbers/%2B61000000000/validity"))
		testutil.AssertStatusOK(t, rr)
	})

	t.Run("invalid number reports message", func(t *testing.T) {
		svc.EXPECT().
			CheckWithParameters(gomock.Any(), "61", gomock.Any()).
			Return(service.Result{
				PhoneNumber: "61",
				Outcome:     verify.OutcomeInvalidFormat,
				Messages:    map[string]string{verify.MsgInvalidPhoneNumber: "'61' is not a valid phone number"},
			}, nil)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/phone-numbers/61/validity"))
		testutil.AssertStatusOK(t, rr)

		resp := testutil.UnmarshalResponse[ValidityResponse](t, rr)
		assert.False(t, resp.Valid)
		assert.Equal(t, "invalid_format", resp.Outcome)
		assert.Equal(t, "'61' is not a valid phone number", resp.Messages["msgInvalidPhoneNumber"])
	})

	t.Run("query parameters are forwarded", func(t *testing.T) {
		svc.EXPECT().
			CheckWithParameters(gomock.Any(), "+61000000000", map[string]string{"Fields": "line_status", "CountryCode": "AU"}).
			Return(service.Result{PhoneNumber: "+61000000000", Valid: true, Outcome: verify.OutcomeValid}, nil)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet,
			"/v1/phone-numbers/+61000000000/validity?Fields=line_status&CountryCode=AU&CountryCode=NZ"))
		testutil.AssertStatusOK(t, rr)
	})

	t.Run("invalid query parameters", func(t *testing.T) {
		_, verr := params.Validate(map[string]string{"VerificationSid": "badvalue"})
		require.Error(t, verr)
		svc.EXPECT().
			CheckWithParameters(gomock.Any(), "+61000000000", map[string]string{"VerificationSid": "badvalue"}).
			Return(service.Result{}, verr)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet,
			"/v1/phone-numbers/+61000000000/validity?VerificationSid=badvalue"))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)

		resp := testutil.UnmarshalResponse[struct {
			Error    string          `json:"error"`
			Messages params.Messages `json:"messages"`
		}](t, rr)
		assert.Equal(t, codeInvalidQueryParameters, resp.Error)
		assert.Contains(t, resp.Messages["verificationSid"], params.CodeStringLengthTooShort)
		assert.Contains(t, resp.Messages["verificationSid"], params.CodeRegexNotMatch)
	})

	t.Run("unexpected error hides details", func(t *testing.T) {
		svc.EXPECT().
			CheckWithParameters(gomock.Any(), "+61000000000", gomock.Any()).
			Return(service.Result{}, errors.New("boom"))

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/phone-numbers/+61000000000/validity"))
		testutil.AssertStatus(t, rr, http.StatusInternalServerError)
		assert.NotContains(t, rr.Body.String(), "boom")
	})
}

func TestHandleBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockValidityService(ctrl)
	router := newTestRouter(t, svc, RouterDeps{})

	t.Run("results in order", func(t *testing.T) {
		numbers := []string{"+61000000000", "61"}
		svc.EXPECT().CheckBatch(gomock.Any(), numbers).Return([]service.Result{
			{PhoneNumber: "+61000000000", Valid: true, Outcome: verify.OutcomeValid},
			{PhoneNumber: "61", Outcome: verify.OutcomeInvalidFormat, Messages: map[string]string{
				verify.MsgInvalidPhoneNumber: "'61' is not a valid phone number",
			}},
		}, nil)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/phone-numbers/validity", BatchRequest{PhoneNumbers: numbers})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusOK(t, rr)

		resp := testutil.UnmarshalResponse[BatchResponse](t, rr)
		require.Len(t, resp.Results, 2)
		assert.Equal(t, "+61000000000", resp.Results[0].PhoneNumber)
		assert.True(t, resp.Results[0].Valid)
		assert.Equal(t, "61", resp.Results[1].PhoneNumber)
		assert.False(t, resp.Results[1].Valid)
	})

	t.Run("empty list rejected", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/phone-numbers/validity", BatchRequest{PhoneNumbers: []string{}})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})

	t.Run("too many numbers rejected", func(t *testing.T) {
		numbers := make([]string, 101)
		for i := range numbers {
			numbers[i] = "+61000000000"
		}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/phone-numbers/validity", BatchRequest{PhoneNumbers: numbers})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := testutil.NewRequestWithBody(t, http.MethodPost, "/v1/phone-numbers/validity", `{"phone_numbers":`)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("cancelled batch", func(t *testing.T) {
		svc.EXPECT().CheckBatch(gomock.Any(), gomock.Any()).Return(nil, context.Canceled)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/phone-numbers/validity", BatchRequest{PhoneNumbers: []string{"+61000000000"}})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusServiceUnavailable, codeBatchAborted)
	})
}

func TestRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockValidityService(ctrl)

	t.Run("healthz ok", func(t *testing.T) {
		router := newTestRouter(t, svc, RouterDeps{
			HealthChecks: map[string]HealthCheck{"cache": func(context.Context) error { return nil }},
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "ok")
	})

	t.Run("healthz failing dependency", func(t *testing.T) {
		router := newTestRouter(t, svc, RouterDeps{
			HealthChecks: map[string]HealthCheck{"cache": func(context.Context) error { return errors.New("down") }},
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	})

	t.Run("metrics exposed", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		m.RecordCheck("valid")

		router := newTestRouter(t, svc, RouterDeps{Gatherer: reg})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
		testutil.AssertStatusOK(t, rr)
		assert.True(t, strings.Contains(rr.Body.String(), `phoneverify_checks_total{outcome="valid"} 1`))
	})

	t.Run("request id header", func(t *testing.T) {
		router := newTestRouter(t, svc, RouterDeps{})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})

	t.Run("panic recovered", func(t *testing.T) {
		svc.EXPECT().CheckWithParameters(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, string, map[string]string) (service.Result, error) {
				panic("unexpected")
			})
		router := newTestRouter(t, svc, RouterDeps{})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/phone-numbers/+61000000000/validity"))
		testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	})
}
