package authn

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityProvider produces a Google ID token for sign-in. Token issuance
// itself happens at the provider; we only consume the result.
type IdentityProvider interface {
	SignIn(ctx context.Context) (idToken string, err error)
}

// PromptIdentityProvider reads an ID token pasted into the terminal after the
// user completes the Google flow in their browser.
type PromptIdentityProvider struct {
	ClientID string
	In       io.Reader
	Out      io.Writer
}

func (p *PromptIdentityProvider) SignIn(ctx context.Context) (string, error) {
	fmt.Fprintln(p.Out, "Sign in with Google in your browser, then paste the ID token below.")
	if p.ClientID != "" {
		fmt.Fprintf(p.Out, "Client ID: %s\n", p.ClientID)
	}
	fmt.Fprint(p.Out, "ID token: ")

	type result struct {
		token string
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		reader := bufio.NewReader(p.In)
		line, err := reader.ReadString('\n')
		ch <- result{strings.TrimSpace(line), err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil && r.token == "" {
			return "", fmt.Errorf("failed to read ID token: %w", r.err)
		}
		if r.token == "" {
			return "", fmt.Errorf("no ID token provided")
		}
		return r.token, nil
	}
}

// TokenClaims is the locally visible slice of a bearer token.
type TokenClaims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// PeekClaims decodes the token without verifying its signature, for display
// purposes only. The backend remains the sole authority on validity.
func PeekClaims(token string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	out := &TokenClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
