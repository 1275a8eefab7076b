package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequestWithHeaders(t *testing.T, headers map[string]string) *http.Request {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

func TestExtractTokenFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		config  *TokenConfig
		want    string
		wantErr bool
	}{
		{
			name:    "bearer authorization",
			headers: map[string]string{"Authorization": "Bearer my-token"},
			want:    "my-token",
		},
		{
			name:    "missing bearer prefix",
			headers: map[string]string{"Authorization": "my-token"},
			wantErr: true,
		},
		{
			name:    "empty bearer token",
			headers: map[string]string{"Authorization": "Bearer "},
			wantErr: true,
		},
		{
			name:    "no headers",
			headers: map[string]string{},
			wantErr: true,
		},
		{
			name:    "alternate header with prefix",
			headers: map[string]string{"X-Access-Token": "Token my-token"},
			want:    "my-token",
		},
		{
			name:    "alternate header without prefix",
			headers: map[string]string{"X-Access-Token": "my-token"},
			want:    "my-token",
		},
		{
			name:    "priority order prefers authorization",
			headers: map[string]string{"Authorization": "Bearer first", "X-Access-Token": "second"},
			want:    "first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequestWithHeaders(t, tt.headers)

			token, err := ExtractTokenFromRequest(req, tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, token)
		})
	}
}
