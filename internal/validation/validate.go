package validation

import (
	"fmt"
	"net/netip"
	"strings"
	"unicode"

	"github.com/input-output-hk/catalyst-forge-libs/linescan/errors"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/filter"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/scantypes"
)

const maxKeyLength = 1024

// bucketRule checks one property of a bucket name and returns the failure message.
type bucketRule func(bucket string) (string, bool)

var bucketRules = []bucketRule{
	func(b string) (string, bool) {
		return "bucket name cannot be empty", b != ""
	},
	func(b string) (string, bool) {
		return "bucket name must be between 3 and 63 characters long", len(b) >= 3 && len(b) <= 63
	},
	func(b string) (string, bool) {
		return "bucket name can only contain lowercase letters, numbers, dots, and hyphens",
			strings.IndexFunc(b, func(r rune) bool { return !isBucketRune(r) }) < 0
	},
	func(b string) (string, bool) {
		first, last := b[0], b[len(b)-1]
		return "bucket name cannot start or end with a hyphen or dot",
			first != '-' && first != '.' && last != '-' && last != '.'
	},
	func(b string) (string, bool) {
		addr, err := netip.ParseAddr(b)
		return "bucket name cannot be formatted as an IP address", err != nil || !addr.Is4()
	},
	func(b string) (string, bool) {
		return "bucket name cannot contain two adjacent periods or hyphens",
			!strings.Contains(b, "..") && !strings.Contains(b, "--")
	},
	func(b string) (string, bool) {
		return "bucket name cannot be a reserved word", b != "localhost"
	},
}

// ValidateBucketName validates that a bucket name is DNS-compliant according to S3 rules.
// Returns an error wrapping ErrInvalidBucketName if the name is invalid.
func ValidateBucketName(bucket string) error {
	for _, rule := range bucketRules {
		if msg, ok := rule(bucket); !ok {
			return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
				WithBucket(bucket).
				WithMessage(msg)
		}
	}
	return nil
}

func isBucketRune(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || r == '.' || r == '-'
}

// ValidatePrefix validates a key prefix used for listing.
// An empty prefix is valid and lists the whole bucket.
func ValidatePrefix(prefix string) error {
	fail := func(msg string) error {
		return errors.NewError("validatePrefix", errors.ErrInvalidPrefix).
			WithKey(prefix).
			WithMessage(msg)
	}

	if len(prefix) > maxKeyLength {
		return fail(fmt.Sprintf("prefix cannot exceed %d characters", maxKeyLength))
	}
	if strings.IndexFunc(prefix, unicode.IsControl) >= 0 {
		return fail("prefix cannot contain control characters")
	}
	for _, seg := range strings.Split(prefix, "/") {
		if seg == ".." {
			return fail("prefix cannot contain path traversal sequences")
		}
	}
	return nil
}

// ValidateListConfig validates listing settings.
func ValidateListConfig(cfg *scantypes.ListConfig) error {
	if cfg.PageSize < 0 || cfg.PageSize > 1000 {
		return errors.NewError("validateList", errors.ErrInvalidInput).
			WithMessage("page size must be between 1 and 1000")
	}
	if errs := filter.ValidatePatterns(cfg.Include); len(errs) > 0 {
		return errors.NewError("validateList", fmt.Errorf("%w: %w", errors.ErrInvalidInput, errs[0]))
	}
	if errs := filter.ValidatePatterns(cfg.Exclude); len(errs) > 0 {
		return errors.NewError("validateList", fmt.Errorf("%w: %w", errors.ErrInvalidInput, errs[0]))
	}
	return nil
}

// ValidateScanConfig validates scan settings after defaults are applied.
func ValidateScanConfig(cfg *scantypes.ScanConfig) error {
	fail := func(msg string) error {
		return errors.NewError("validateScan", errors.ErrInvalidInput).WithMessage(msg)
	}

	if cfg.MaxBuffer < 1 {
		return fail("max buffer must be at least 1")
	}
	if cfg.HandleWait < 0 {
		return fail("handle wait cannot be negative")
	}
	if cfg.ReadBufferSize < 16 {
		return fail("read buffer size must be at least 16 bytes")
	}
	return ValidateListConfig(&cfg.List)
}
