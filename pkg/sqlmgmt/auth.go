package sqlmgmt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

type Credentials struct {
	// AccessToken, when set, is used as-is and takes precedence over client credentials.
	AccessToken   string
	AuthorityHost string
	TenantID      string
	ClientID      string
	ClientSecret  string
}

// TokenSource returns a bearer token source for the given management endpoint.
// The scope requested for client credentials is "<endpoint>/.default".
func (c *Credentials) TokenSource(ctx context.Context, endpoint string, hc *http.Client) (oauth2.TokenSource, error) {
	if c.AccessToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.AccessToken, TokenType: "Bearer"}), nil
	}
	if c.TenantID == "" || c.ClientID == "" || c.ClientSecret == "" {
		return nil, errors.New("either an access token or tenant ID, client ID and client secret must be provided")
	}
	if c.AuthorityHost == "" {
		return nil, errors.New("authority host is required for client credentials")
	}
	cfg := &clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     fmt.Sprintf("%s/%s/oauth2/v2.0/token", strings.TrimSuffix(c.AuthorityHost, "/"), c.TenantID),
		Scopes:       []string{strings.TrimSuffix(endpoint, "/") + "/.default"},
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	if hc != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, hc)
	}
	return cfg.TokenSource(ctx), nil
}
