package assistant

import (
	"errors"
	"os/exec"
	"strings"
	"testing"

	"claude-chat/internal/domain"
)

func TestClassifyFailure(t *testing.T) {
	exitErr := errors.New("exit status 1")

	tests := []struct {
		name     string
		err      error
		output   string
		expected error
	}{
		{
			"missing binary",
			exec.ErrNotFound,
			"",
			domain.ErrUpstream,
		},
		{
			"authentication error",
			exitErr,
			"Error: authentication failed",
			domain.ErrInvalidCredential,
		},
		{
			"invalid api key",
			exitErr,
			"Invalid API key provided",
			domain.ErrInvalidCredential,
		},
		{
			"invalid x-api-key header",
			exitErr,
			`{"error":{"message":"invalid x-api-key"}}`,
			domain.ErrInvalidCredential,
		},
		{
			"expired oauth token",
			exitErr,
			"OAuth token has expired. Please log in again.",
			domain.ErrInvalidCredential,
		},
		{
			"http 401",
			exitErr,
			"API Error: 401",
			domain.ErrInvalidCredential,
		},
		{
			"generic failure with output",
			exitErr,
			"something broke",
			domain.ErrUpstream,
		},
		{
			"generic failure without output",
			exitErr,
			"",
			domain.ErrUpstream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyFailure(tt.err, tt.output)
			if !errors.Is(got, tt.expected) {
				t.Errorf("ClassifyFailure() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClassifyFailure_PreservesOutput(t *testing.T) {
	err := ClassifyFailure(errors.New("exit status 1"), "disk full")
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected output in error message, got %q", err.Error())
	}
}

func TestClassifyFailure_TruncatesLongOutput(t *testing.T) {
	long := strings.Repeat("x", 1000)
	err := ClassifyFailure(errors.New("exit status 1"), long)
	if len(err.Error()) > 400 {
		t.Errorf("expected truncated message, got %d bytes", len(err.Error()))
	}
}

func TestCredentialEnv(t *testing.T) {
	tests := []struct {
		name       string
		credential string
		expected   string
	}{
		{
			"api key",
			"sk-ant-api03-abc",
			"ANTHROPIC_API_KEY=sk-ant-api03-abc",
		},
		{
			"oauth token with sk prefix",
			"sk-ant-oat01-abc",
			"CLAUDE_CODE_OAUTH_TOKEN=sk-ant-oat01-abc",
		},
		{
			"oauth token with bare prefix",
			"ant-oa-abc",
			"CLAUDE_CODE_OAUTH_TOKEN=ant-oa-abc",
		},
		{
			"unknown prefix treated as api key",
			"something-else",
			"ANTHROPIC_API_KEY=something-else",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := credentialEnv(tt.credential)
			if got != tt.expected {
				t.Errorf("credentialEnv() = %q, want %q", got, tt.expected)
			}
		})
	}
}
