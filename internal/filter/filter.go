// Package filter provides include/exclude glob matching for object keys.
package filter

import (
	"fmt"
	"path"
	"strings"
)

// Matcher decides whether a key takes part in a scan.
// Patterns use path.Match syntax per segment, plus:
//   - "**" matches any number of segments, including none
//   - a pattern without "/" is matched against the last segment only
//   - a pattern ending in "/" matches everything below that directory
type Matcher struct {
	include []string
	exclude []string
}

// New creates a matcher after validating every pattern.
func New(include, exclude []string) (*Matcher, error) {
	if errs := ValidatePatterns(include); len(errs) > 0 {
		return nil, errs[0]
	}
	if errs := ValidatePatterns(exclude); len(errs) > 0 {
		return nil, errs[0]
	}
	return &Matcher{include: include, exclude: exclude}, nil
}

// Match reports whether key passes the filters.
// Excludes take precedence; with no include patterns every key is included.
// A nil Matcher matches everything.
func (m *Matcher) Match(key string) bool {
	if m == nil {
		return true
	}
	key = strings.TrimPrefix(key, "/")

	for _, pattern := range m.exclude {
		if matchPattern(key, pattern) {
			return false
		}
	}
	if len(m.include) == 0 {
		return true
	}
	for _, pattern := range m.include {
		if matchPattern(key, pattern) {
			return true
		}
	}
	return false
}

// Empty reports whether the matcher has no patterns at all.
func (m *Matcher) Empty() bool {
	return m == nil || (len(m.include) == 0 && len(m.exclude) == 0)
}

func matchPattern(key, pattern string) bool {
	if dir, ok := strings.CutSuffix(pattern, "/"); ok {
		return key == dir || strings.HasPrefix(key, dir+"/")
	}
	if !strings.Contains(pattern, "/") && pattern != "**" {
		ok, _ := path.Match(pattern, path.Base(key))
		return ok
	}
	return matchSegments(strings.Split(key, "/"), strings.Split(pattern, "/"))
}

// matchSegments matches key segments against pattern segments, expanding "**".
func matchSegments(key, pattern []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			for i := 0; i <= len(key); i++ {
				if matchSegments(key[i:], rest) {
					return true
				}
			}
			return false
		}
		if len(key) == 0 {
			return false
		}
		ok, err := path.Match(pattern[0], key[0])
		if err != nil || !ok {
			return false
		}
		key, pattern = key[1:], pattern[1:]
	}
	return len(key) == 0
}

// PatternError represents an error with a pattern.
type PatternError struct {
	Pattern string
	Index   int
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern at index %d '%s': %v", e.Index, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// ValidatePatterns checks the syntax of every pattern.
func ValidatePatterns(patterns []string) []error {
	var errs []error
	for i, pattern := range patterns {
		if pattern == "" {
			errs = append(errs, &PatternError{Pattern: pattern, Index: i, Err: fmt.Errorf("empty pattern")})
			continue
		}
		for _, seg := range strings.Split(strings.TrimSuffix(pattern, "/"), "/") {
			if seg == "**" {
				continue
			}
			if _, err := path.Match(seg, "probe"); err != nil {
				errs = append(errs, &PatternError{Pattern: pattern, Index: i, Err: err})
				break
			}
		}
	}
	return errs
}
