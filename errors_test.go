package igapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"
)

func classifyBody(t *testing.T, raw string) error {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return Classify(&Response{StatusCode: 400, Raw: []byte(raw), Body: body})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		kind     ErrorKind
		sentinel error
	}{
		{"Spam", `{"status":"fail","spam":true,"feedback_title":"Action Blocked"}`, KindActionSpam, ErrActionSpam},
		{"SpamBeatsLogin", `{"status":"fail","spam":true,"message":"login_required"}`, KindActionSpam, ErrActionSpam},
		{"SpamBeatsSentry", `{"status":"fail","spam":1,"error_type":"sentry_block"}`, KindActionSpam, ErrActionSpam},
		{"Checkpoint", `{"status":"fail","message":"challenge_required","challenge":{"api_path":"/challenge/1/abc/"}}`, KindCheckpoint, ErrCheckpoint},
		{"CheckpointBeatsSentry", `{"status":"fail","message":"challenge_required","error_type":"sentry_block"}`, KindCheckpoint, ErrCheckpoint},
		{"LoginRequired", `{"status":"fail","message":"login_required"}`, KindLoginRequired, ErrLoginRequired},
		{"LoginBeatsSentry", `{"status":"fail","message":"login_required","error_type":"sentry_block"}`, KindLoginRequired, ErrLoginRequired},
		{"SentryBlock", `{"status":"fail","message":"Sorry","error_type":"sentry_block"}`, KindSentryBlock, ErrSentryBlock},
		{"FalseSpam", `{"status":"fail","spam":false,"message":"login_required"}`, KindLoginRequired, ErrLoginRequired},
		{"ZeroSpam", `{"status":"fail","spam":0,"error_type":"sentry_block"}`, KindSentryBlock, ErrSentryBlock},
		{"EmptySpam", `{"status":"fail","spam":"","error_type":"sentry_block"}`, KindSentryBlock, ErrSentryBlock},
		{"NullSpam", `{"status":"fail","spam":null,"error_type":"sentry_block"}`, KindSentryBlock, ErrSentryBlock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyBody(t, tt.body)
			apiErr, ok := AsAPIError(err)
			if !ok {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", apiErr.Kind, tt.kind)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.sentinel)
			}
		})
	}
}

func TestClassifyNoMatch(t *testing.T) {
	for _, body := range []string{
		`{"status":"fail","message":"Please wait a few minutes"}`,
		`{"status":"fail","error_type":"bad_password"}`,
		`{"status":"fail"}`,
	} {
		if err := classifyBody(t, body); err != nil {
			t.Errorf("Classify(%s) = %v, want nil", body, err)
		}
	}
	if err := Classify(&Response{}); err != nil {
		t.Errorf("Classify(empty) = %v", err)
	}
}

func TestClassifyPayloads(t *testing.T) {
	t.Run("Checkpoint", func(t *testing.T) {
		err := classifyBody(t, `{"message":"challenge_required","status":"fail","lock":true,"error_type":"checkpoint_challenge_required",
			"challenge":{"url":"https://i.instagram.com/challenge/1/abc/","api_path":"/challenge/1/abc/","hide_webview_header":true,"lock":true,"logout":false,"native_flow":true}}`)
		apiErr, _ := AsAPIError(err)
		if apiErr == nil || apiErr.Checkpoint == nil {
			t.Fatalf("missing checkpoint descriptor: %v", err)
		}
		cp := apiErr.Checkpoint
		if cp.Challenge.APIPath != "/challenge/1/abc/" || !cp.Challenge.NativeFlow || !cp.Lock {
			t.Errorf("checkpoint = %+v", cp)
		}
		if cp.ErrorType != "checkpoint_challenge_required" {
			t.Errorf("error type = %q", cp.ErrorType)
		}
	})

	t.Run("LoginRequiredMessage", func(t *testing.T) {
		err := classifyBody(t, `{"message":"login_required","status":"fail"}`)
		if err.Error() != "login required: Login required to process this request" {
			t.Errorf("message = %q", err.Error())
		}
	})

	t.Run("BodyAttached", func(t *testing.T) {
		err := classifyBody(t, `{"status":"fail","spam":true,"feedback_message":"slow down"}`)
		apiErr, _ := AsAPIError(err)
		if apiErr.Body["feedback_message"] != "slow down" {
			t.Errorf("body = %v", apiErr.Body)
		}
	})
}

func TestErrorHelpers(t *testing.T) {
	wrapped := func(err error) error { return fmt.Errorf("like media: %w", err) }

	tests := []struct {
		name      string
		err       error
		fatal     bool
		retryable bool
	}{
		{"ActionSpam", &APIError{Kind: KindActionSpam}, false, true},
		{"Checkpoint", &APIError{Kind: KindCheckpoint}, true, false},
		{"LoginRequired", wrapped(&APIError{Kind: KindLoginRequired}), true, false},
		{"SentryBlock", &APIError{Kind: KindSentryBlock}, true, false},
		{"Unclassified", &APIError{Kind: KindUnclassified}, false, false},
		{"TransportEOF", &APIError{Kind: KindTransport, Err: io.ErrUnexpectedEOF}, false, true},
		{"TransportOther", &APIError{Kind: KindTransport, Err: errors.New("certificate signed by unknown authority")}, false, false},
		{"PlainEOF", io.EOF, false, false},
		{"Nil", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatalError(tt.err); got != tt.fatal {
				t.Errorf("IsFatalError = %v, want %v", got, tt.fatal)
			}
			if got := IsRetryableError(tt.err); got != tt.retryable {
				t.Errorf("IsRetryableError = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestTransportErrorUnwrap(t *testing.T) {
	err := wrapTransport(io.ErrUnexpectedEOF)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("transport error does not unwrap to the original")
	}
	if !errors.Is(err, ErrTransport) {
		t.Error("transport error does not match ErrTransport")
	}
}

func wrapTransport(err error) error {
	return &APIError{Kind: KindTransport, Err: err}
}
