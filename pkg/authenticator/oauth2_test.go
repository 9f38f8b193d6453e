package authenticator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hemolens/backend/config"
	"github.com/stretchr/testify/require"
)

// newFakeIssuer serves the oidc discovery document and a token endpoint.
func newFakeIssuer(t *testing.T) *httptest.Server {
	t.Helper()

	var issuer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/.well-known/openid-configuration":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"issuer":                 issuer,
				"authorization_endpoint": issuer + "/authorize",
				"token_endpoint":         issuer + "/token",
				"jwks_uri":               issuer + "/keys",
			})
		case "/token":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "service-access-token",
				"token_type":   "bearer",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	issuer = srv.URL

	t.Cleanup(srv.Close)
	return srv
}

func TestNewOAuth2Config(t *testing.T) {
	issuer := newFakeIssuer(t)

	cfg := config.Configs{
		ApiServer: config.ServerConfigs{PublicURL: "https://api.example.com"},
	}

	auth, err := NewOAuth2Config(context.Background(), cfg, config.OAuth2Configs{
		Name:     "google",
		Issuer:   issuer.URL,
		ClientID: "client-id",
		Scopes:   []string{"openid", "profile", "email"},
		Timeout:  config.Duration(5 * time.Second),
	})
	require.NoError(t, err)
	require.Equal(t, "google", auth.Service())
	require.Equal(t, "https://api.example.com/auth/google/callback", auth.RedirectURL)
	require.Contains(t, auth.AuthCodeURL("state-1"), "state=state-1")

	// Every outbound call runs on a client bounded by the configured
	// timeout, discovery included.
	require.Equal(t, 5*time.Second, auth.client.Timeout)

	token, err := auth.Exchange(context.Background(), "authorization-code")
	require.NoError(t, err)
	require.Equal(t, "service-access-token", token.AccessToken)
}
