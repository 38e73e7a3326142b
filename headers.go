package igapi

import (
	"math/rand"
	"strconv"
	"strings"

	http "github.com/bogdanfinn/fhttp"
)

const (
	apiHost = "i.instagram.com"

	// Inclusive bounds of the simulated X-IG-Connection-Speed value.
	ConnectionSpeedMin = 1000
	ConnectionSpeedMax = 3700
)

// defaultHeaderOrder is the order the Android app writes its headers in.
var defaultHeaderOrder = []string{
	"X-FB-HTTP-Engine",
	"X-IG-Connection-Type",
	"X-IG-Capabilities",
	"X-IG-Connection-Speed",
	"X-IG-Bandwidth-Speed-KBPS",
	"X-IG-Bandwidth-TotalBytes-B",
	"X-IG-Bandwidth-TotalTime-MS",
	"Host",
	"Accept",
	"Accept-Encoding",
	"Connection",
	"User-Agent",
	"X-IG-App-ID",
	"Accept-Language",
	"Content-Type",
	"Content-Length",
	"Cookie",
}

// BuildHeaders returns the full header set for one call.
// Headers in overrides replace same-named generated headers (case-insensitive)
// and are not validated.
func BuildHeaders(state *State, overrides http.Header) http.Header {
	h := http.Header{
		"X-FB-HTTP-Engine":            {"Liger"},
		"X-IG-Connection-Type":        {"WIFI"},
		"X-IG-Capabilities":           {"3brTPw=="},
		"X-IG-Connection-Speed":       {connectionSpeed()},
		"X-IG-Bandwidth-Speed-KBPS":   {"-1.000"},
		"X-IG-Bandwidth-TotalBytes-B": {"0"},
		"X-IG-Bandwidth-TotalTime-MS": {"0"},
		"Host":                        {apiHost},
		"Accept":                      {"*/*"},
		"Accept-Encoding":             {"gzip,deflate"},
		"Connection":                  {"Keep-Alive"},
		"User-Agent":                  {state.UserAgent},
		"X-IG-App-ID":                 {state.AppID},
		"Accept-Language":             {strings.Replace(state.Language, "_", "-", 1)},
	}

	order := append([]string(nil), defaultHeaderOrder...)
	for key, values := range overrides {
		if key == http.HeaderOrderKey || key == http.PHeaderOrderKey {
			continue
		}
		replaced := false
		for existing := range h {
			if strings.EqualFold(existing, key) {
				delete(h, existing)
			}
		}
		for i, name := range order {
			if strings.EqualFold(name, key) {
				order[i] = key
				replaced = true
				break
			}
		}
		if !replaced {
			order = append(order, key)
		}
		h[key] = append([]string(nil), values...)
	}

	h[http.HeaderOrderKey] = order
	h[http.PHeaderOrderKey] = append([]string(nil), PseudoHeaderOrder...)
	return h
}

// HeaderValue looks a header up case-insensitively, ignoring canonicalization.
func HeaderValue(h http.Header, key string) string {
	for k, v := range h {
		if strings.EqualFold(k, key) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func connectionSpeed() string {
	n := ConnectionSpeedMin + rand.Intn(ConnectionSpeedMax-ConnectionSpeedMin+1)
	return strconv.Itoa(n) + "kbps"
}
