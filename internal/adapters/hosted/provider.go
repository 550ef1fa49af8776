// Package hosted redirects to a hosted identity page that sends the browser back to the
// callback with a one-shot session_id.
package hosted

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/target/rightname-go/internal/ports"
)

// TokenParam is the callback query parameter carrying the exchange token.
const TokenParam = "session_id"

// redirectParam is the single parameter the hosted page reads its return target from.
const redirectParam = "redirect"

// Provider implements ports.IdentityProvider for the hosted identity page.
type Provider struct {
	base *url.URL
}

var _ ports.IdentityProvider = (*Provider)(nil)

// NewProvider validates providerURL. It must be an absolute http(s) URL without a query
// or fragment, so the callback is the only redirect target the request can carry.
func NewProvider(providerURL string) (*Provider, error) {
	u, err := url.Parse(providerURL)
	if err != nil {
		return nil, fmt.Errorf("parse provider url: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("provider url must be http(s), got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("provider url must include a host")
	}
	if u.RawQuery != "" || u.ForceQuery || u.Fragment != "" {
		return nil, errors.New("provider url must not carry a query or fragment")
	}
	return &Provider{base: u}, nil
}

// Begin returns the provider URL with the callback as its only parameter.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (ports.BeginResult, error) {
	cb, err := url.Parse(in.Callback)
	if err != nil || !cb.IsAbs() {
		return ports.BeginResult{}, errors.New("callback must be an absolute URL")
	}
	u := *p.base
	u.RawQuery = url.Values{redirectParam: {cb.String()}}.Encode()
	return ports.BeginResult{AuthURL: u.String()}, nil
}

// CallbackToken returns the session_id. The hosted page carries no state.
func (p *Provider) CallbackToken(query url.Values, _ string) (string, error) {
	token := query.Get(TokenParam)
	if token == "" {
		return "", errors.New("callback is missing session_id")
	}
	return token, nil
}
