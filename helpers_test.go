package igapi

import (
	"net/url"
	"testing"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
)

const testSignatureKey = "4f8732eb9ba7d1c8e8897a75d6474d4eb3f5279137431b2aafb71fafe2abe178"

func newTestState(t *testing.T) *State {
	t.Helper()
	return &State{
		SignatureKey:     testSignatureKey,
		SignatureVersion: "4",
		CSRFToken:        "missing-csrf",
		CookieJar:        tls_client.NewCookieJar(),
		UserAgent:        AndroidUserAgent,
		AppID:            AndroidAppID,
		Language:         "en_US",
	}
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func newStubClient(t *testing.T, state *State, opts ...Option) *Client {
	t.Helper()
	stub := doerFunc(func(*http.Request) (*http.Response, error) {
		t.Fatal("unexpected network call")
		return nil, nil
	})
	c, err := NewClient(state, append([]Option{WithHTTPClient(stub)}, opts...)...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}
