package verify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"phoneverify/internal/lookup/cache"
	"phoneverify/internal/lookup/params"
	"phoneverify/internal/lookup/ports/mocks"
	"phoneverify/internal/lookup/providers"
	"phoneverify/internal/platform/metrics"
)

const (
	validNumber   = "+61000000000"
	invalidNumber = "61"
)

type VerifierSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	client   *mocks.MockLookupClient
	cache    *mocks.MockCacheStore
	metrics  *metrics.Metrics
	verifier *Verifier
	ctx      context.Context
}

func TestVerifierSuite(t *testing.T) {
	suite.Run(t, new(VerifierSuite))
}

func (s *VerifierSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.client = mocks.NewMockLookupClient(s.ctrl)
	s.cache = mocks.NewMockCacheStore(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.ctx = context.Background()

	v, err := New(s.client,
		WithCache(s.cache),
		WithProviderID("mock"),
		WithMetrics(s.metrics),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(err)
	s.verifier = v
}

func (s *VerifierSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *VerifierSuite) expectCacheMiss(number string) {
	s.cache.EXPECT().Has(gomock.Any(), CacheKey(number)).Return(false, nil)
}

func (s *VerifierSuite) TestInvalidFormatSkipsRemoteLookup() {
	for _, number := range []string{invalidNumber, "", "+0123456", "+1", "+1234567890123456", "+61 400 000 000", "abc"} {
		s.Run(number, func() {
			s.expectCacheMiss(number)
			s.cache.EXPECT().Set(gomock.Any(), CacheKey(number), false).Return(nil)

			s.False(s.verifier.IsValid(s.ctx, number))
			s.Equal(OutcomeInvalidFormat, s.verifier.Outcome())
			s.Equal(map[string]string{
				MsgInvalidPhoneNumber: "'" + number + "' is not a valid phone number",
			}, s.verifier.Messages())
		})
	}
}

func (s *VerifierSuite) TestRemoteResultIsReturned() {
	s.Run("valid", func() {
		gomock.InOrder(
			s.cache.EXPECT().Has(gomock.Any(), "key-+61000000000").Return(false, nil),
			s.client.EXPECT().Lookup(gomock.Any(), validNumber, params.Set{}).Return(true, nil).Times(1),
			s.cache.EXPECT().Set(gomock.Any(), "key-+61000000000", true).Return(nil),
		)

		s.True(s.verifier.IsValid(s.ctx, validNumber))
		s.Equal(OutcomeValid, s.verifier.Outcome())
		s.Empty(s.verifier.Messages())
		s.False(s.verifier.Cached())
	})

	s.Run("invalid", func() {
		gomock.InOrder(
			s.expectCacheMissCall(validNumber),
			s.client.EXPECT().Lookup(gomock.Any(), validNumber, gomock.Any()).Return(false, nil).Times(1),
			s.cache.EXPECT().Set(gomock.Any(), CacheKey(validNumber), false).Return(nil),
		)

		s.False(s.verifier.IsValid(s.ctx, validNumber))
		s.Equal(OutcomeInvalidFormat, s.verifier.Outcome())
		s.Contains(s.verifier.Messages(), MsgInvalidPhoneNumber)
	})
}

func (s *VerifierSuite) expectCacheMissCall(number string) *gomock.Call {
	return s.cache.EXPECT().Has(gomock.Any(), CacheKey(number)).Return(false, nil)
}

func (s *VerifierSuite) TestCachedTrueShortCircuits() {
	gomock.InOrder(
		s.cache.EXPECT().Has(gomock.Any(), CacheKey(validNumber)).Return(true, nil),
		s.cache.EXPECT().Get(gomock.Any(), CacheKey(validNumber)).Return(true, nil),
	)
	s.client.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	s.cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	s.True(s.verifier.IsValid(s.ctx, validNumber))
	s.True(s.verifier.Cached())
	s.Empty(s.verifier.Messages())
}

func (s *VerifierSuite) TestCachedFalseRunsFullPipeline() {
	gomock.InOrder(
		s.cache.EXPECT().Has(gomock.Any(), CacheKey(validNumber)).Return(true, nil),
		s.cache.EXPECT().Get(gomock.Any(), CacheKey(validNumber)).Return(false, nil),
		s.client.EXPECT().Lookup(gomock.Any(), validNumber, gomock.Any()).Return(true, nil),
		s.cache.EXPECT().Set(gomock.Any(), CacheKey(validNumber), true).Return(nil),
	)

	s.True(s.verifier.IsValid(s.ctx, validNumber))
	s.False(s.verifier.Cached())
}

func (s *VerifierSuite) TestLookupErrorIsNetworkFailure() {
	lookupErr := providers.NewProviderError(providers.ErrorProviderOutage, "mock", "connection refused", errors.New("dial tcp"))
	gomock.InOrder(
		s.expectCacheMissCall(validNumber),
		s.client.EXPECT().Lookup(gomock.Any(), validNumber, gomock.Any()).Return(false, lookupErr),
		s.cache.EXPECT().Set(gomock.Any(), CacheKey(validNumber), false).Return(nil),
	)

	s.False(s.verifier.IsValid(s.ctx, validNumber))
	s.Equal(OutcomeNetworkFailure, s.verifier.Outcome())
	s.Equal(map[string]string{
		MsgNetworkLookupFailure: "There was a network error while checking if '+61000000000' is valid",
	}, s.verifier.Messages())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.LookupErrors.WithLabelValues("mock", string(providers.ErrorProviderOutage))))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ChecksTotal.WithLabelValues(string(OutcomeNetworkFailure))))
}

func (s *VerifierSuite) TestCacheErrorsAreTreatedAsMiss() {
	s.Run("has fails", func() {
		gomock.InOrder(
			s.cache.EXPECT().Has(gomock.Any(), CacheKey(validNumber)).Return(false, errors.New("redis down")),
			s.client.EXPECT().Lookup(gomock.Any(), validNumber, gomock.Any()).Return(true, nil),
			s.cache.EXPECT().Set(gomock.Any(), CacheKey(validNumber), true).Return(errors.New("redis down")),
		)
		s.True(s.verifier.IsValid(s.ctx, validNumber))
	})

	s.Run("get fails", func() {
		gomock.InOrder(
			s.cache.EXPECT().Has(gomock.Any(), CacheKey(validNumber)).Return(true, nil),
			s.cache.EXPECT().Get(gomock.Any(), CacheKey(validNumber)).Return(false, errors.New("gone")),
			s.client.EXPECT().Lookup(gomock.Any(), validNumber, gomock.Any()).Return(false, nil),
			s.cache.EXPECT().Set(gomock.Any(), CacheKey(validNumber), false).Return(nil),
		)
		s.False(s.verifier.IsValid(s.ctx, validNumber))
	})
}

func (s *VerifierSuite) TestMessagesResetBetweenCalls() {
	s.expectCacheMiss(invalidNumber)
	s.cache.EXPECT().Set(gomock.Any(), CacheKey(invalidNumber), false).Return(nil)
	s.False(s.verifier.IsValid(s.ctx, invalidNumber))
	s.Require().Len(s.verifier.Messages(), 1)

	s.expectCacheMiss(validNumber)
	s.client.EXPECT().Lookup(gomock.Any(), validNumber, gomock.Any()).Return(true, nil)
	s.cache.EXPECT().Set(gomock.Any(), CacheKey(validNumber), true).Return(nil)
	s.True(s.verifier.IsValid(s.ctx, validNumber))
	s.Empty(s.verifier.Messages())
}

func (s *VerifierSuite) TestQueryParametersAreSentWithLookup() {
	s.Require().NoError(s.verifier.SetQueryParameters(map[string]string{
		"Fields":      "line_type_intelligence,sam_swap",
		"CountryCode": "au",
		"FirstName":   "",
		"Unknown":     "x",
	}))
	want := params.Set{"Fields": "line_type_intelligence", "CountryCode": "AU"}
	s.Equal(want, s.verifier.QueryParameters())

	s.expectCacheMiss(validNumber)
	s.client.EXPECT().Lookup(gomock.Any(), validNumber, want).Return(true, nil)
	s.cache.EXPECT().Set(gomock.Any(), CacheKey(validNumber), true).Return(nil)
	s.True(s.verifier.IsValid(s.ctx, validNumber))
}

func (s *VerifierSuite) TestSetQueryParametersIsAtomic() {
	s.Require().NoError(s.verifier.SetQueryParameters(map[string]string{"City": "Perth"}))

	err := s.verifier.SetQueryParameters(map[string]string{
		"City":            "Sydney",
		"VerificationSid": "badvalue",
	})
	s.Require().Error(err)
	s.ErrorIs(err, params.ErrInvalidParameters)

	var ipe *params.InvalidParametersError
	s.Require().ErrorAs(err, &ipe)
	s.Equal(map[string]string{
		params.CodeStringLengthTooShort: "The input is less than 34 characters long",
		params.CodeRegexNotMatch:        "The input does not match against pattern '^VA[0-9a-f]{32}$'",
	}, ipe.Messages["verificationSid"])

	s.Equal(params.Set{"City": "Perth"}, s.verifier.QueryParameters())

	s.Require().NoError(s.verifier.SetQueryParameters(map[string]string{}))
	s.Empty(s.verifier.QueryParameters())
}

func TestNew(t *testing.T) {
	client := mocks.NewMockLookupClient(gomock.NewController(t))

	t.Run("nil client panics", func(t *testing.T) {
		assert.Panics(t, func() { _, _ = New(nil) })
	})

	t.Run("invalid parameters fail construction", func(t *testing.T) {
		v, err := New(client, WithQueryParameters(map[string]string{"DateOfBirth": "1990-01-01"}))
		require.Error(t, err)
		assert.Nil(t, v)

		msgs, ok := params.ValidationMessages(err)
		require.True(t, ok)
		assert.Contains(t, msgs["dateOfBirth"], params.CodeDateFalseFormat)
	})

	t.Run("valid parameters are normalised", func(t *testing.T) {
		v, err := New(client, WithQueryParameters(map[string]string{"DateOfBirth": "19900101", "State": ""}))
		require.NoError(t, err)
		assert.Equal(t, params.Set{"DateOfBirth": "19900101"}, v.QueryParameters())
	})

	t.Run("parameter set is copied", func(t *testing.T) {
		set := params.Set{"City": "Perth"}
		v, err := New(client, WithParameterSet(set))
		require.NoError(t, err)
		set["City"] = "Darwin"
		assert.Equal(t, params.Set{"City": "Perth"}, v.QueryParameters())
	})
}

func TestWithoutCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockLookupClient(ctrl)
	v, err := New(client)
	require.NoError(t, err)

	client.EXPECT().Lookup(gomock.Any(), validNumber, gomock.Any()).Return(true, nil).Times(2)
	assert.True(t, v.IsValid(context.Background(), validNumber))
	assert.True(t, v.IsValid(context.Background(), validNumber))
}

// End to end against the in-memory store: the first call fills the cache and
// the second is served from it.
func TestWithInMemoryCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockLookupClient(ctrl)
	store := cache.NewInMemoryCache(0)
	v, err := New(client, WithCache(store))
	require.NoError(t, err)
	ctx := context.Background()

	client.EXPECT().Lookup(gomock.Any(), validNumber, gomock.Any()).Return(true, nil).Times(1)
	assert.True(t, v.IsValid(ctx, validNumber))
	assert.True(t, v.IsValid(ctx, validNumber))
	assert.True(t, v.Cached())

	assert.False(t, v.IsValid(ctx, invalidNumber))
	cached, err := store.Get(ctx, "key-61")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "'61' is not a valid phone number", v.Messages()[MsgInvalidPhoneNumber])
}
