// Package validation provides centralized input validation logic.
// Bucket names, key prefixes and scan settings are checked before any
// listing request is made, so that misconfiguration fails fast.
package validation
