package igapi

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeProxyURL turns a proxy in one of the common provider formats into
// an http:// URL tls-client accepts. Supported formats:
//   - ip:port
//   - ip:port:username:password
//   - http://[username:password@]ip:port
//   - https://[username:password@]ip:port
//   - socks5://[username:password@]ip:port (kept as is)
//
// An empty string is returned unchanged.
func NormalizeProxyURL(raw string) (string, error) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return "", nil
	}

	if strings.HasPrefix(line, "socks5://") {
		if _, err := url.Parse(line); err != nil {
			return "", fmt.Errorf("invalid proxy %q: %w", displayProxy(line), err)
		}
		return line, nil
	}

	if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
		parsed, err := url.Parse(line)
		if err != nil {
			return "", fmt.Errorf("invalid proxy %q: %w", displayProxy(line), err)
		}
		if parsed.User != nil {
			password, _ := parsed.User.Password()
			return fmt.Sprintf("http://%s:%s@%s", parsed.User.Username(), password, parsed.Host), nil
		}
		return fmt.Sprintf("http://%s", parsed.Host), nil
	}

	parts := strings.Split(line, ":")
	switch len(parts) {
	case 2:
		return fmt.Sprintf("http://%s:%s", parts[0], parts[1]), nil
	case 4:
		host, port, user, pass := parts[0], parts[1], parts[2], parts[3]
		return fmt.Sprintf("http://%s:%s@%s:%s", user, pass, host, port), nil
	default:
		return "", fmt.Errorf("unsupported proxy format %q", displayProxy(line))
	}
}

// displayProxy strips credentials for logging.
func displayProxy(proxy string) string {
	if u, err := url.Parse(proxy); err == nil && u.Host != "" {
		return u.Host
	}
	parts := strings.Split(proxy, ":")
	if len(parts) >= 2 {
		return parts[0] + ":" + parts[1]
	}
	return proxy
}
