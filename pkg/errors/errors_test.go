package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "WithoutCause",
			err:  New(ErrCodeInvalidHash, "not a commit hash: %s", "zzz"),
			want: "INVALID_HASH: not a commit hash: zzz",
		},
		{
			name: "WithCause",
			err:  Wrap(ErrCodeInternal, fmt.Errorf("boom"), "layout failed"),
			want: "INTERNAL_ERROR: layout failed: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsAndGetCode(t *testing.T) {
	base := New(ErrCodeNoRepository, "no repository at %s", "/tmp/x")
	wrapped := fmt.Errorf("open: %w", base)

	if !Is(wrapped, ErrCodeNoRepository) {
		t.Error("Is() did not match through wrapping")
	}
	if Is(wrapped, ErrCodeNotFound) {
		t.Error("Is() matched the wrong code")
	}
	if got := GetCode(wrapped); got != ErrCodeNoRepository {
		t.Errorf("GetCode() = %q, want %q", got, ErrCodeNoRepository)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("underlying")
	err := Wrap(ErrCodeInternal, cause, "context")
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is did not find the cause")
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeCommitNotFound, "commit abc123 not found")
	if got := UserMessage(err); got != "commit abc123 not found" {
		t.Errorf("UserMessage = %q", got)
	}
	plain := stderrors.New("plain failure")
	if got := UserMessage(plain); got != "plain failure" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestValidateHash(t *testing.T) {
	tests := []struct {
		name    string
		hash    string
		wantErr bool
	}{
		{"FullSHA1", strings.Repeat("a", 40), false},
		{"FullSHA256", strings.Repeat("1", 64), false},
		{"Abbreviated", "ab12", false},
		{"Empty", "", true},
		{"TooShort", "ab1", true},
		{"TooLong", strings.Repeat("a", 65), true},
		{"NonHex", "abcz123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHash(tt.hash)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHash(%q) error = %v, wantErr %v", tt.hash, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidHash) {
				t.Errorf("wrong code: %v", err)
			}
		})
	}
}

func TestValidateRepoPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"Simple", "/home/user/project", false},
		{"Relative", ".", false},
		{"Empty", "", true},
		{"ControlChar", "/tmp/\x07repo", true},
		{"NullByte", "/tmp/\x00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRepoPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRepoPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	valid := map[string]bool{"text": true, "json": true}
	if err := ValidateFormat("json", valid); err != nil {
		t.Errorf("ValidateFormat(json) = %v", err)
	}
	err := ValidateFormat("yaml", valid)
	if err == nil {
		t.Fatal("ValidateFormat(yaml) = nil, want error")
	}
	if !strings.Contains(err.Error(), "json, text") {
		t.Errorf("error does not list valid formats sorted: %v", err)
	}
}
