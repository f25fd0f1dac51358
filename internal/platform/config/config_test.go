package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults with static provider", func(t *testing.T) {
		t.Setenv("LOOKUP_PROVIDER", "static")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, CacheMemory, cfg.Cache.Backend)
		assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
		assert.Equal(t, 5*time.Second, cfg.Lookup.Timeout)
		assert.Equal(t, 8, cfg.Lookup.BatchConcurrency)
		assert.Empty(t, cfg.Lookup.DefaultQueryParameters())
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("SERVER_ADDR", ":9090")
		t.Setenv("SERVER_ENV", "prod")
		t.Setenv("LOOKUP_PROVIDER", "twilio")
		t.Setenv("LOOKUP_TWILIO_ACCOUNT_SID", "AC123")
		t.Setenv("LOOKUP_TWILIO_AUTH_TOKEN", "secret")
		t.Setenv("LOOKUP_TIMEOUT", "2s")
		t.Setenv("LOOKUP_QUERY_PARAMETERS", "Fields=line_type_intelligence;CountryCode=AU")
		t.Setenv("CACHE_BACKEND", "redis")
		t.Setenv("CACHE_TTL", "1h")
		t.Setenv("REDIS_URL", "redis://cache:6379/1")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Server.Addr)
		assert.Equal(t, "prod", cfg.Server.Env)
		assert.Equal(t, "AC123", cfg.Lookup.TwilioAccountSID)
		assert.Equal(t, 2*time.Second, cfg.Lookup.Timeout)
		assert.Equal(t, CacheRedis, cfg.Cache.Backend)
		assert.Equal(t, time.Hour, cfg.Cache.TTL)
		assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
		assert.Equal(t, map[string]string{
			"Fields":      "line_type_intelligence",
			"CountryCode": "AU",
		}, cfg.Lookup.DefaultQueryParameters())
	})

	t.Run("twilio without credentials", func(t *testing.T) {
		t.Setenv("LOOKUP_PROVIDER", "twilio")
		t.Setenv("LOOKUP_TWILIO_ACCOUNT_SID", "")

		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("unknown cache backend", func(t *testing.T) {
		t.Setenv("LOOKUP_PROVIDER", "static")
		t.Setenv("CACHE_BACKEND", "memcached")

		_, err := FromEnv()
		assert.ErrorContains(t, err, "memcached")
	})
}

func TestParseQueryParameters(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]string
		wantErr bool
	}{
		{name: "empty", input: "", want: map[string]string{}},
		{name: "single", input: "City=Perth", want: map[string]string{"City": "Perth"}},
		{
			name:  "trims and skips blanks",
			input: " City = Perth ;; State=WA;",
			want:  map[string]string{"City": "Perth", "State": "WA"},
		},
		{name: "empty value", input: "City=", want: map[string]string{"City": ""}},
		{name: "value with equals", input: "AddressLine1=a=b", want: map[string]string{"AddressLine1": "a=b"}},
		{name: "missing equals", input: "City", wantErr: true},
		{name: "missing key", input: "=Perth", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQueryParameters(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
