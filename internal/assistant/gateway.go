package assistant

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"claude-chat/internal/config"
	"claude-chat/internal/domain"
	"github.com/rs/zerolog/log"
)

// Gateway turns a conversation plus a new message into a single reply
// from the external assistant. One bounded attempt, no retries.
type Gateway interface {
	Complete(ctx context.Context, credential string, history []domain.Message, message string) (string, error)
}

// CLIGateway invokes the Claude Code CLI in print mode
type CLIGateway struct {
	command      string
	timeout      time.Duration
	systemPrompt string
}

// NewCLIGateway creates a gateway around the configured CLI binary
func NewCLIGateway(cfg config.AssistantConfig) *CLIGateway {
	return &CLIGateway{
		command:      cfg.Command,
		timeout:      cfg.Timeout,
		systemPrompt: cfg.SystemPrompt,
	}
}

// Complete builds the prompt and runs the CLI under the configured
// timeout. The credential is exported through the environment variable
// the CLI expects for its kind.
func (g *CLIGateway) Complete(ctx context.Context, credential string, history []domain.Message, message string) (string, error) {
	prompt := BuildPrompt(g.systemPrompt, history, message)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.command, "-p", prompt)
	cmd.Env = append(os.Environ(), credentialEnv(credential))

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if ctx.Err() == context.DeadlineExceeded {
		log.Warn().Dur("elapsed", elapsed).Msg("assistant call timed out")
		return "", domain.ErrTimeout
	}

	if err != nil {
		output := stderr.String()
		if output == "" {
			output = stdout.String()
		}
		log.Error().Err(err).Str("output", truncate(output, 512)).Msg("assistant call failed")
		return "", ClassifyFailure(err, output)
	}

	reply := strings.TrimSpace(stdout.String())
	if reply == "" {
		return "", fmt.Errorf("%w: empty reply", domain.ErrUpstream)
	}

	log.Debug().Dur("elapsed", elapsed).Int("reply_len", len(reply)).Msg("assistant call succeeded")
	return reply, nil
}

// ClassifyFailure maps a CLI failure onto the error taxonomy. An
// authentication complaint in the output becomes ErrInvalidCredential so
// the API layer can tell the client to re-login; everything else is a
// generic upstream failure.
func ClassifyFailure(err error, output string) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: assistant CLI not found, please install it first", domain.ErrUpstream)
	}

	lower := strings.ToLower(output)
	for _, marker := range []string{
		"authentication",
		"unauthorized",
		"invalid api key",
		"invalid x-api-key",
		"oauth token has expired",
		"401",
	} {
		if strings.Contains(lower, marker) {
			return domain.ErrInvalidCredential
		}
	}

	if msg := strings.TrimSpace(output); msg != "" {
		return fmt.Errorf("%w: %s", domain.ErrUpstream, truncate(msg, 256))
	}
	return domain.ErrUpstream
}

// credentialEnv picks the env var the CLI reads for this credential kind.
func credentialEnv(credential string) string {
	if strings.HasPrefix(credential, "ant-oa-") || strings.HasPrefix(credential, "sk-ant-oa") {
		return "CLAUDE_CODE_OAUTH_TOKEN=" + credential
	}
	return "ANTHROPIC_API_KEY=" + credential
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
