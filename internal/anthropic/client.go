package anthropic

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"claude-chat/internal/domain"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	probeTimeout   = 10 * time.Second
)

// Identity is the provider-side identity derived from a valid credential.
// The API exposes no account metadata for key auth, so the stable id is a
// hash of the credential itself.
type Identity struct {
	AnthropicUserID string
}

// Verifier validates Anthropic credentials by issuing a minimal messages
// request against the API.
type Verifier interface {
	Verify(ctx context.Context, credential string) (*Identity, error)
}

// Client implements Verifier against the live API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new verification client
func NewClient() *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: probeTimeout},
	}
}

// NewClientWithBaseURL creates a client pointed at a non-default API host
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// IsOAuthToken reports whether the credential is an OAuth token rather
// than a standard API key.
func IsOAuthToken(credential string) bool {
	return strings.HasPrefix(credential, "ant-oa-") || strings.HasPrefix(credential, "sk-ant-oa")
}

// Verify checks the credential with a one-token probe request. OAuth
// tokens and API keys authenticate differently; unknown prefixes are
// tried as an API key first, then as an OAuth token.
func (c *Client) Verify(ctx context.Context, credential string) (*Identity, error) {
	if credential == "" {
		return nil, domain.ErrInvalidCredential
	}

	if IsOAuthToken(credential) {
		return c.probe(ctx, credential, true)
	}
	if strings.HasPrefix(credential, "sk-ant-") {
		return c.probe(ctx, credential, false)
	}

	if id, err := c.probe(ctx, credential, false); err == nil {
		return id, nil
	}
	return c.probe(ctx, credential, true)
}

func (c *Client) probe(ctx context.Context, credential string, oauth bool) (*Identity, error) {
	body, err := json.Marshal(map[string]any{
		"model":      "claude-3-haiku-20240307",
		"max_tokens": 1,
		"messages": []map[string]string{
			{"role": "user", "content": "hi"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal probe request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build probe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("anthropic-version", "2023-06-01")
	if oauth {
		req.Header.Set("Authorization", "Bearer "+credential)
		req.Header.Set("anthropic-beta", "oauth-2025-04-20")
	} else {
		req.Header.Set("x-api-key", credential)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	// Anything but 200 rejects the login: rate limits and other errors
	// might mean the credential is fine, but accepting it on faith would
	// hand out sessions for credentials the CLI cannot use.
	if resp.StatusCode != http.StatusOK {
		return nil, domain.ErrInvalidCredential
	}

	return &Identity{AnthropicUserID: deriveUserID(credential, oauth)}, nil
}

func deriveUserID(credential string, oauth bool) string {
	sum := sha256.Sum256([]byte(credential))
	digest := hex.EncodeToString(sum[:])
	if oauth {
		return "oauth_" + digest[:28]
	}
	return digest[:32]
}
