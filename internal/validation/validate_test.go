package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/linescan/errors"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/scantypes"
)

func TestValidateBucketName(t *testing.T) {
	tests := []struct {
		name      string
		bucket    string
		wantError bool
		errMsg    string
	}{
		{"valid_simple", "my-bucket", false, ""},
		{"valid_with_numbers", "my-bucket123", false, ""},
		{"valid_with_dots", "my.bucket", false, ""},
		{"valid_leading_number", "1bucket", false, ""},
		{"valid_max_length", strings.Repeat("a", 63), false, ""},

		{"empty", "", true, "bucket name cannot be empty"},
		{"too_short", "ab", true, "bucket name must be between 3 and 63 characters long"},
		{"too_long", strings.Repeat("a", 64), true, "bucket name must be between 3 and 63 characters long"},
		{"uppercase", "MyBucket", true, "bucket name can only contain lowercase letters, numbers, dots, and hyphens"},
		{"underscore", "my_bucket", true, "bucket name can only contain lowercase letters, numbers, dots, and hyphens"},
		{"leading_hyphen", "-bucket", true, "bucket name cannot start or end with a hyphen or dot"},
		{"trailing_dot", "bucket.", true, "bucket name cannot start or end with a hyphen or dot"},
		{"ip_address", "192.168.1.1", true, "bucket name cannot be formatted as an IP address"},
		{"double_dots", "my..bucket", true, "bucket name cannot contain two adjacent periods or hyphens"},
		{"localhost", "localhost", true, "bucket name cannot be a reserved word"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBucketName(tt.bucket)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.ErrorIs(t, err, errors.ErrInvalidBucketName)
			assert.True(t, errors.IsInvalidInput(err))
		})
	}
}

func TestValidatePrefix(t *testing.T) {
	tests := []struct {
		name      string
		prefix    string
		wantError bool
	}{
		{"empty", "", false},
		{"simple", "logs/2024/", false},
		{"dots in name", "logs/v1..2/", false},
		{"traversal", "logs/../secret", true},
		{"control char", "logs/\x00", true},
		{"too long", strings.Repeat("a", 1025), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePrefix(tt.prefix)
			if tt.wantError {
				assert.ErrorIs(t, err, errors.ErrInvalidPrefix)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateScanConfig(t *testing.T) {
	valid := func() scantypes.ScanConfig {
		return scantypes.ScanConfig{
			MaxBuffer:      128,
			HandleWait:     2 * time.Second,
			ReadBufferSize: 4096,
		}
	}

	tests := []struct {
		name      string
		mutate    func(c *scantypes.ScanConfig)
		wantError bool
	}{
		{"defaults", func(*scantypes.ScanConfig) {}, false},
		{"max buffer one", func(c *scantypes.ScanConfig) { c.MaxBuffer = 1 }, false},
		{"zero wait", func(c *scantypes.ScanConfig) { c.HandleWait = 0 }, false},
		{"zero max buffer", func(c *scantypes.ScanConfig) { c.MaxBuffer = 0 }, true},
		{"negative wait", func(c *scantypes.ScanConfig) { c.HandleWait = -time.Second }, true},
		{"tiny read buffer", func(c *scantypes.ScanConfig) { c.ReadBufferSize = 8 }, true},
		{"page size too large", func(c *scantypes.ScanConfig) { c.List.PageSize = 1001 }, true},
		{"bad include", func(c *scantypes.ScanConfig) { c.List.Include = []string{"[x"} }, true},
		{"bad exclude", func(c *scantypes.ScanConfig) { c.List.Exclude = []string{""} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := ValidateScanConfig(&cfg)
			if tt.wantError {
				assert.ErrorIs(t, err, errors.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
