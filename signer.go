package igapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
)

const csrfField = "_csrftoken"

// SignedEnvelope is the body of a signed write request.
type SignedEnvelope struct {
	SignatureKeyVersion string `json:"ig_sig_key_version"`
	SignedBody          string `json:"signed_body"`
}

// Form renders the envelope as an urlencoded form body.
func (e SignedEnvelope) Form() url.Values {
	return url.Values{
		"ig_sig_key_version": {e.SignatureKeyVersion},
		"signed_body":        {e.SignedBody},
	}
}

// Sign serializes payload and returns "<hex hmac-sha256>.<json>".
// Strings, byte slices and json.RawMessage are signed verbatim; anything else
// is JSON-encoded first. The key must not be empty; this is not checked.
func Sign(key string, payload any) (string, error) {
	body, err := serializePayload(payload)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil)) + "." + body, nil
}

// Sign signs payload with the session signing key.
func (c *Client) Sign(payload any) (string, error) {
	return Sign(c.state.SignatureKey, payload)
}

// SignPost builds the signed envelope for a write request. Mapping payloads
// get the session anti-forgery token injected into a copy before signing;
// pre-serialized payloads are signed as given.
func (c *Client) SignPost(payload any) (SignedEnvelope, error) {
	if !isSerialized(payload) {
		p, err := toPayload(payload)
		if err != nil {
			return SignedEnvelope{}, err
		}
		payload = p.Set(csrfField, c.state.csrfToken(c.baseURL))
	}

	signed, err := c.Sign(payload)
	if err != nil {
		return SignedEnvelope{}, err
	}
	return SignedEnvelope{
		SignatureKeyVersion: c.state.SignatureVersion,
		SignedBody:          signed,
	}, nil
}

func isSerialized(payload any) bool {
	switch payload.(type) {
	case string, []byte, json.RawMessage:
		return true
	}
	return false
}

func serializePayload(payload any) (string, error) {
	switch v := payload.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case json.RawMessage:
		return string(v), nil
	}
	b, err := marshalJSON(payload)
	if err != nil {
		return "", fmt.Errorf("serialize payload: %w", err)
	}
	return string(b), nil
}

// toPayload returns an ordered copy of a mapping payload.
func toPayload(payload any) (*Payload, error) {
	switch v := payload.(type) {
	case *Payload:
		if v == nil {
			return NewPayload(), nil
		}
		return v.Clone(), nil
	case nil:
		return NewPayload(), nil
	}
	b, err := marshalJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("serialize payload: %w", err)
	}
	p, err := ParsePayload(b)
	if err != nil {
		return nil, fmt.Errorf("payload must be a JSON object: %w", err)
	}
	return p, nil
}
