package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	t.Run("Complete", func(t *testing.T) {
		cfg := &Config{RepositoryURL: "libsql://asistitravel.turso.io", RepositoryKey: "token"}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("MissingURL", func(t *testing.T) {
		cfg := &Config{RepositoryKey: "token"}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingRepositoryURL))
		assert.False(t, errors.Is(err, ErrMissingRepositoryKey))
	})

	t.Run("MissingKey", func(t *testing.T) {
		cfg := &Config{RepositoryURL: "file:db/app.db"}
		err := cfg.Validate()
		assert.True(t, errors.Is(err, ErrMissingRepositoryKey))
	})

	t.Run("BlankValuesCountAsMissing", func(t *testing.T) {
		cfg := &Config{RepositoryURL: "  ", RepositoryKey: "\t"}
		err := cfg.Validate()
		assert.True(t, errors.Is(err, ErrMissingRepositoryURL))
		assert.True(t, errors.Is(err, ErrMissingRepositoryKey))
	})
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value    string
		fallback bool
		want     bool
	}{
		{"", true, true},
		{"true", false, true},
		{"si", false, true},
		{"0", true, false},
		{"off", true, false},
		{"maybe", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL_FLAG", tt.value)
			assert.Equal(t, tt.want, getEnvBool("TEST_BOOL_FLAG", tt.fallback))
		})
	}
}

func TestValidateSessionSecret(t *testing.T) {
	assert.Error(t, ValidateSessionSecret("change-me", "development"))
	assert.NoError(t, ValidateSessionSecret("a-long-enough-secret-for-local-development", "development"))
}

func TestGenerateSecureSecret(t *testing.T) {
	a := GenerateSecureSecret()
	b := GenerateSecureSecret()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
