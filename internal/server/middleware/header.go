package middleware

import (
	"errors"
	"net/http"
	"strings"
)

// TokenConfig configures how credentials are extracted from request headers.
type TokenConfig struct {
	// Headers lists the header names to check, in priority order.
	Headers []string
	// RequireBearer requires the Bearer prefix on the Authorization header.
	RequireBearer bool
	// AllowedPrefixes lists accepted prefixes on non-Authorization headers.
	AllowedPrefixes []string
}

var DefaultTokenConfig = &TokenConfig{
	Headers:         []string{"Authorization", "X-Access-Token"},
	RequireBearer:   true,
	AllowedPrefixes: []string{"Bearer ", "Token "},
}

// ExtractTokenFromRequest extracts a credential from the request headers,
// checking each configured header in priority order.
func ExtractTokenFromRequest(r *http.Request, config *TokenConfig) (string, error) {
	if config == nil {
		config = DefaultTokenConfig
	}

	var lastError error

	for _, headerName := range config.Headers {
		headerValue := r.Header.Get(headerName)
		if headerValue == "" {
			continue
		}

		if strings.EqualFold(headerName, "authorization") && config.RequireBearer {
			if !strings.HasPrefix(headerValue, "Bearer ") {
				lastError = errors.New("Authorization header must start with 'Bearer '")
				continue
			}

			token := strings.TrimPrefix(headerValue, "Bearer ")
			if token == "" {
				lastError = errors.New("token is required")
				continue
			}

			return token, nil
		}

		token := headerValue

		for _, prefix := range config.AllowedPrefixes {
			if strings.HasPrefix(headerValue, prefix) {
				token = strings.TrimPrefix(headerValue, prefix)
				break
			}
		}

		if strings.TrimSpace(token) == "" {
			lastError = errors.New("token is required")
			continue
		}

		return strings.TrimSpace(token), nil
	}

	if lastError != nil {
		return "", lastError
	}

	return "", errors.New("token not found in any of the supported headers")
}
