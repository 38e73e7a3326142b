package igapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"strings"
)

// ErrorKind discriminates the failures a call can end in.
type ErrorKind int

const (
	// KindTransport is a connection, DNS or TLS fault from the transport.
	KindTransport ErrorKind = iota + 1
	// KindActionSpam means the account has been rate-limited or flagged as automated.
	KindActionSpam
	// KindCheckpoint means the account must pass an interactive verification flow.
	KindCheckpoint
	// KindLoginRequired means the session is no longer authenticated.
	KindLoginRequired
	// KindSentryBlock means the account has been administratively restricted.
	KindSentryBlock
	// KindUnclassified is a non-ok response without a known marker.
	// Only returned by clients built with WithStrictStatus.
	KindUnclassified
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindActionSpam:
		return "action_spam"
	case KindCheckpoint:
		return "checkpoint"
	case KindLoginRequired:
		return "login_required"
	case KindSentryBlock:
		return "sentry_block"
	case KindUnclassified:
		return "unclassified"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sentinels for errors.Is, one per kind.
var (
	ErrTransport     = errors.New("transport fault")
	ErrActionSpam    = errors.New("action spam")
	ErrCheckpoint    = errors.New("checkpoint required")
	ErrLoginRequired = errors.New("login required")
	ErrSentryBlock   = errors.New("sentry block")
	ErrUnclassified  = errors.New("unclassified api error")
)

var errUnknownKind = errors.New("api error")

var kindSentinels = map[ErrorKind]error{
	KindTransport:     ErrTransport,
	KindActionSpam:    ErrActionSpam,
	KindCheckpoint:    ErrCheckpoint,
	KindLoginRequired: ErrLoginRequired,
	KindSentryBlock:   ErrSentryBlock,
	KindUnclassified:  ErrUnclassified,
}

func (k ErrorKind) sentinel() error {
	if err, ok := kindSentinels[k]; ok {
		return err
	}
	return errUnknownKind
}

// Response markers.
const (
	messageChallengeRequired = "challenge_required"
	messageLoginRequired     = "login_required"
	errorTypeSentryBlock     = "sentry_block"

	loginRequiredText = "Login required to process this request"
)

// APIError is the failure returned by Client.Send. Switch on Kind; the
// kind-specific fields are:
//
//	KindTransport                                      Err
//	KindActionSpam, KindSentryBlock, KindUnclassified  Body, Response
//	KindCheckpoint                                     Checkpoint, Body, Response
//	KindLoginRequired                                  Message
type APIError struct {
	Kind       ErrorKind
	Message    string
	Body       map[string]any
	Checkpoint *CheckpointResponse
	Response   *Response
	Err        error
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.sentinel().Error())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and, for transport faults, the
// original error.
func (e *APIError) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// CheckpointResponse describes a challenge_required response.
type CheckpointResponse struct {
	Message   string              `json:"message"`
	Status    string              `json:"status"`
	ErrorType string              `json:"error_type"`
	Lock      bool                `json:"lock"`
	Challenge CheckpointChallenge `json:"challenge"`
}

// CheckpointChallenge locates the interactive verification flow.
type CheckpointChallenge struct {
	URL               string `json:"url"`
	APIPath           string `json:"api_path"`
	HideWebviewHeader bool   `json:"hide_webview_header"`
	Lock              bool   `json:"lock"`
	Logout            bool   `json:"logout"`
	NativeFlow        bool   `json:"native_flow"`
}

// Classify inspects a non-ok response for known distress markers and returns
// the matching *APIError, or nil when none match. Markers are checked in
// order: spam, challenge_required, login_required, sentry_block.
func Classify(resp *Response) error {
	if resp == nil || resp.Body == nil {
		return nil
	}
	body := resp.Body

	if truthy(body["spam"]) {
		return &APIError{Kind: KindActionSpam, Message: messageOf(body), Body: body, Response: resp}
	}

	message, _ := body["message"].(string)
	switch message {
	case messageChallengeRequired:
		var checkpoint CheckpointResponse
		// Partial descriptors are still useful; decode errors only drop fields.
		_ = json.Unmarshal(resp.Raw, &checkpoint)
		return &APIError{
			Kind:       KindCheckpoint,
			Message:    message,
			Body:       body,
			Checkpoint: &checkpoint,
			Response:   resp,
		}
	case messageLoginRequired:
		return &APIError{Kind: KindLoginRequired, Message: loginRequiredText}
	}

	if errorType, _ := body["error_type"].(string); errorType == errorTypeSentryBlock {
		return &APIError{Kind: KindSentryBlock, Message: messageOf(body), Body: body, Response: resp}
	}
	return nil
}

func messageOf(body map[string]any) string {
	s, _ := body["message"].(string)
	return s
}

// truthy follows JSON-value truthiness: null, false, 0, NaN and "" are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case string:
		return t != ""
	default:
		return true
	}
}

// AsAPIError extracts *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsFatalError reports whether err needs out-of-band action (re-login,
// challenge flow or account recovery) before the session can be used again.
func IsFatalError(err error) bool {
	return errors.Is(err, ErrCheckpoint) ||
		errors.Is(err, ErrLoginRequired) ||
		errors.Is(err, ErrSentryBlock)
}

// retryableErrorPatterns contains transport error substrings worth retrying.
var retryableErrorPatterns = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"i/o timeout",
	"context deadline exceeded",
	"TLS handshake timeout",
	"EOF",
	"malformed HTTP response",
	"transport connection broken",
	"use of closed network connection",
}

// IsRetryableError reports whether a caller may retry after backing off.
// Action spam is retryable with backoff; transport faults are retryable when
// they look transient.
func IsRetryableError(err error) bool {
	if err == nil || IsFatalError(err) {
		return false
	}
	if errors.Is(err, ErrActionSpam) {
		return true
	}
	if !errors.Is(err, ErrTransport) {
		return false
	}
	if isNetworkTimeout(err) {
		return true
	}
	return containsRetryablePattern(err.Error())
}

func isNetworkTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func containsRetryablePattern(errStr string) bool {
	for _, pattern := range retryableErrorPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
