package errors

import (
	"sort"
	"strings"
	"unicode"
)

// ValidateHash validates a commit hash argument from the CLI or HTTP API.
// It accepts abbreviated hashes (git guarantees at least 4 hex digits) up
// to a full SHA-256 hash.
func ValidateHash(hash string) error {
	if hash == "" {
		return New(ErrCodeInvalidHash, "commit hash cannot be empty")
	}
	if len(hash) < 4 || len(hash) > 64 {
		return New(ErrCodeInvalidHash, "commit hash must be 4-64 hex characters")
	}
	for _, r := range hash {
		if !isHexDigit(r) {
			return New(ErrCodeInvalidHash, "commit hash contains non-hex character %q", r)
		}
	}
	return nil
}

// ValidateRepoPath validates a repository path argument for safety.
// It rejects values that could be used for traversal or injection, leaving
// existence checks to the repository layer.
func ValidateRepoPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "repository path cannot be empty")
	}
	if len(path) > 4096 {
		return New(ErrCodeInvalidPath, "repository path too long")
	}
	for _, r := range path {
		if r == 0 || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "repository path contains control characters")
		}
	}
	return nil
}

// ValidateFormat validates a render format name against the allowed set.
func ValidateFormat(format string, valid map[string]bool) error {
	if !valid[format] {
		return New(ErrCodeInvalidInput, "unknown format %q (valid: %s)", format, joinKeys(valid))
	}
	return nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func joinKeys(m map[string]bool) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
