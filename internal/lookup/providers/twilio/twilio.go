// Package twilio implements a lookup client for the Twilio Lookup (v2) API.
package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"phoneverify/internal/lookup/params"
	"phoneverify/internal/lookup/providers"
)

const (
	// ProviderID identifies this provider in configuration and metrics.
	ProviderID = "twilio"

	// DefaultBaseURL is the Lookup API host.
	DefaultBaseURL = "https://lookups.twilio.com"

	maxResponseBytes = 1 << 20
)

// Provider queries GET /v2/PhoneNumbers/{PhoneNumber} with HTTP basic auth.
type Provider struct {
	id         string
	baseURL    string
	accountSID string
	authToken  string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithBaseURL overrides the API host, e.g. for a test server.
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) {
		if baseURL != "" {
			p.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient sets the HTTP client used for lookups.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Lookup (v2) provider authenticated with an account SID and
// auth token. The HTTP client has no timeout of its own; callers bound each
// lookup through its context.
func New(accountSID, authToken string, opts ...Option) *Provider {
	p := &Provider{
		id:         ProviderID,
		baseURL:    DefaultBaseURL,
		accountSID: accountSID,
		authToken:  authToken,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("provider", p.id)
	return p
}

func (p *Provider) ID() string {
	return p.id
}

// phoneNumberResponse holds the parts of a PhoneNumber resource we read.
type phoneNumberResponse struct {
	PhoneNumber        string   `json:"phone_number"`
	CountryCode        string   `json:"country_code"`
	CallingCountryCode string   `json:"calling_country_code"`
	NationalFormat     string   `json:"national_format"`
	Valid              *bool    `json:"valid"`
	ValidationErrors   []string `json:"validation_errors"`
}

// errorResponse is the body Twilio returns with 4xx/5xx statuses.
type errorResponse struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

// Lookup fetches the PhoneNumber resource once and reports its valid flag.
// Failures are returned as *providers.ProviderError.
func (p *Provider) Lookup(ctx context.Context, phoneNumber string, queryParameters params.Set) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint(phoneNumber, queryParameters), nil)
	if err != nil {
		return false, providers.NewProviderError(providers.ErrorInternal, p.id, "build request", err)
	}
	req.SetBasicAuth(p.accountSID, p.authToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.WarnContext(ctx, "lookup request failed", "error", err)
		return false, providers.TransportError(p.id, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return false, providers.TransportError(p.id, err)
	}

	valid, err := parseLookupResponse(p.id, resp.StatusCode, body)
	if err != nil {
		p.logger.WarnContext(ctx, "lookup returned an error",
			"status_code", resp.StatusCode,
			"category", providers.GetCategory(err),
		)
		return false, err
	}
	return valid, nil
}

// endpoint builds the resource URL. url.Values.Encode sorts keys, so the
// request is stable regardless of map order.
func (p *Provider) endpoint(phoneNumber string, queryParameters params.Set) string {
	u := p.baseURL + "/v2/PhoneNumbers/" + url.PathEscape(phoneNumber)
	if len(queryParameters) == 0 {
		return u
	}
	q := make(url.Values, len(queryParameters))
	for k, v := range queryParameters {
		q.Set(k, v)
	}
	return u + "?" + q.Encode()
}

func parseLookupResponse(providerID string, status int, body []byte) (bool, error) {
	if status < 200 || status >= 300 {
		return false, statusError(providerID, status, body)
	}

	var r phoneNumberResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return false, providers.NewProviderError(providers.ErrorBadData, providerID, "decode response", err)
	}
	if r.Valid == nil {
		return false, providers.NewProviderError(providers.ErrorBadData, providerID, "response has no valid flag", nil)
	}
	return *r.Valid, nil
}

func statusError(providerID string, status int, body []byte) *providers.ProviderError {
	message := http.StatusText(status)
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		message = fmt.Sprintf("%s (code %d)", e.Message, e.Code)
	}

	var category providers.ErrorCategory
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		category = providers.ErrorAuthentication
	case status == http.StatusNotFound:
		category = providers.ErrorNotFound
	case status == http.StatusTooManyRequests:
		category = providers.ErrorRateLimited
	case status >= 500:
		category = providers.ErrorProviderOutage
	default:
		category = providers.ErrorInternal
	}
	return providers.NewProviderError(category, providerID, message, nil)
}
