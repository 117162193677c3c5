package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_ClampsLoginRateLimit verifies a zero or negative rate limit
// is raised to 1, keeping the limiter's refill interval well-defined.
func TestLoad_ClampsLoginRateLimit(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{name: "zero", value: "0", want: 1},
		{name: "negative", value: "-3", want: 1},
		{name: "normal", value: "10", want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			t.Setenv("DATABASE_URL", "postgres://localhost:5432/rengiat_test")
			t.Setenv("LOGIN_RATE_LIMIT", tt.value)

			// Act
			cfg, err := Load()

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.LoginRateLimit)
		})
	}
}

// TestLocation_FallsBackToUTC verifies an unknown zone name does not
// break date defaulting.
func TestLocation_FallsBackToUTC(t *testing.T) {
	cfg := &Config{ReportTimezone: "Mars/Olympus_Mons"}

	assert.Equal(t, time.UTC, cfg.Location())
}
