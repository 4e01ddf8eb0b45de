package foundry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// Credential supplies bearer tokens for the project endpoint.
type Credential interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenCredential wraps a pre-issued bearer token. Used in tests and
// for environments that mint tokens out of band.
type StaticTokenCredential struct {
	token string
}

func NewStaticTokenCredential(token string) *StaticTokenCredential {
	return &StaticTokenCredential{token: token}
}

func (c *StaticTokenCredential) Token(_ context.Context) (string, error) {
	if c.token == "" {
		return "", fmt.Errorf("static token is empty")
	}
	return c.token, nil
}

// tokenRefreshMargin triggers a refresh before the cached token expires so
// in-flight requests never carry a token about to lapse.
const tokenRefreshMargin = 2 * time.Minute

// EntraCredential resolves tokens through the Azure default credential
// chain (environment, managed identity, CLI) and caches them until close
// to expiry.
type EntraCredential struct {
	inner azcore.TokenCredential
	scope string

	mu     sync.Mutex
	cached azcore.AccessToken
}

func NewEntraCredential(scope string) (*EntraCredential, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("build default azure credential: %w", err)
	}
	return &EntraCredential{inner: cred, scope: scope}, nil
}

// NewEntraCredentialFrom wraps an existing azcore credential. Used in tests.
func NewEntraCredentialFrom(cred azcore.TokenCredential, scope string) *EntraCredential {
	return &EntraCredential{inner: cred, scope: scope}
}

func (c *EntraCredential) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached.Token != "" && time.Until(c.cached.ExpiresOn) > tokenRefreshMargin {
		return c.cached.Token, nil
	}

	tok, err := c.inner.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{c.scope}})
	if err != nil {
		return "", fmt.Errorf("acquire token for %s: %w", c.scope, err)
	}
	c.cached = tok
	return tok.Token, nil
}
