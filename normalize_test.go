package igapi

import (
	"encoding/json"
	"testing"
)

func TestNormalizeJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ObjectField", `{"pk":1234567890123456,"n":1234567890}`, `{"pk":"1234567890123456","n":1234567890}`},
		{"WhitespaceKept", `{"a": 12345678901234567 }`, `{"a": "12345678901234567" }`},
		{"NewlineBeforeDelimiter", "{\"a\":123456789012345678\n}", "{\"a\":\"123456789012345678\"\n}"},
		{"ArrayElements", `[123456789012345678,1,223456789012345678]`, `["123456789012345678",1,"223456789012345678"]`},
		{"Negative", `{"a":-1234567890123456}`, `{"a":"-1234567890123456"}`},
		{"FourteenDigits", `{"a":12345678901234}`, `{"a":12345678901234}`},
		{"FifteenDigits", `{"a":123456789012345}`, `{"a":"123456789012345"}`},
		{"NegativeFourteenDigits", `{"a":-12345678901234}`, `{"a":-12345678901234}`},
		{"Decimal", `{"a":0.1234567890123456}`, `{"a":"0.1234567890123456"}`},
		{"Exponent", `{"a":1.23456789012345678e10}`, `{"a":1.23456789012345678e10}`},
		{"InsideString", `{"a":"x 1234567890123456, y"}`, `{"a":"x 1234567890123456, y"}`},
		{"EscapedQuote", `{"a":"q\"1234567890123456,","b":1234567890123456}`, `{"a":"q\"1234567890123456,","b":"1234567890123456"}`},
		{"Nested", `{"a":{"b":[1234567890123456]}}`, `{"a":{"b":["1234567890123456"]}}`},
		{"BareTopLevel", `1234567890123456`, `1234567890123456`},
		{"AlreadyString", `{"a":"1234567890123456"}`, `{"a":"1234567890123456"}`},
		{"Empty", ``, ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(NormalizeJSON([]byte(tt.in))); got != tt.want {
				t.Errorf("NormalizeJSON(%s)\ngot:  %s\nwant: %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeJSONPreservesPrecision(t *testing.T) {
	raw := []byte(`{"status":"ok","pk":1784132903265716,"count":1234567890}`)

	var body map[string]any
	if err := json.Unmarshal(NormalizeJSON(raw), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	pk, ok := body["pk"].(string)
	if !ok || pk != "1784132903265716" {
		t.Errorf("pk = %#v, want string 1784132903265716", body["pk"])
	}
	count, ok := body["count"].(float64)
	if !ok || count != 1234567890 {
		t.Errorf("count = %#v, want number 1234567890", body["count"])
	}
}
