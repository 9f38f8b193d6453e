package testutil

import (
	"context"

	"github.com/hemolens/backend/pkg/authenticator"
	"golang.org/x/oauth2"
)

type mockOAuth2 struct {
	Name              string
	AuthCodeURLFunc   func(state string, opts ...oauth2.AuthCodeOption) string
	ExchangeFunc      func(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
	VerifyIDTokenFunc func(ctx context.Context, token *oauth2.Token) (authenticator.UserProfile, error)
}

func NewMockOAuth2(name string) *mockOAuth2 {
	return &mockOAuth2{Name: name}
}

func (m *mockOAuth2) Service() string {
	return m.Name
}

func (m *mockOAuth2) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	if m.AuthCodeURLFunc != nil {
		return m.AuthCodeURLFunc(state, opts...)
	}

	return "https://" + m.Name + ".example.com/authorize?state=" + state
}

func (m *mockOAuth2) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, code, opts...)
	}

	return &oauth2.Token{}, nil
}

func (m *mockOAuth2) VerifyIDToken(ctx context.Context, token *oauth2.Token) (authenticator.UserProfile, error) {
	if m.VerifyIDTokenFunc != nil {
		return m.VerifyIDTokenFunc(ctx, token)
	}

	return authenticator.UserProfile{}, nil
}
