package igapi

import (
	"errors"
	"net/url"

	http "github.com/bogdanfinn/fhttp"
)

// csrfCookieName is the cookie the API uses to hand out the anti-forgery token.
const csrfCookieName = "csrftoken"

// State is the session and device state a Client reads from.
// It is owned and updated elsewhere (login flows, state persistence);
// this package only reads it. Do not mutate a State while calls are in flight.
type State struct {
	SignatureKey     string
	SignatureVersion string
	CSRFToken        string
	CookieJar        http.CookieJar
	ProxyURL         string // optional
	UserAgent        string
	AppID            string
	Language         string // language_REGION, e.g. en_US
}

// Validate reports the first missing field required before any transport call.
func (s *State) Validate() error {
	switch {
	case s == nil:
		return errors.New("state is nil")
	case s.SignatureKey == "":
		return errors.New("state: signature key is empty")
	case s.SignatureVersion == "":
		return errors.New("state: signature version is empty")
	case s.CookieJar == nil:
		return errors.New("state: cookie jar is nil")
	case s.UserAgent == "":
		return errors.New("state: user agent is empty")
	case s.AppID == "":
		return errors.New("state: app id is empty")
	case s.Language == "":
		return errors.New("state: language is empty")
	}
	return nil
}

// csrfToken returns the configured token, falling back to the csrftoken cookie for u.
func (s *State) csrfToken(u *url.URL) string {
	if s.CSRFToken != "" || s.CookieJar == nil || u == nil {
		return s.CSRFToken
	}
	for _, c := range s.CookieJar.Cookies(u) {
		if c.Name == csrfCookieName {
			return c.Value
		}
	}
	return ""
}
