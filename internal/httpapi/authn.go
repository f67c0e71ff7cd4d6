package httpapi

import (
	"net/http"
	"strings"
)

const (
	authHeader   = "Authorization"
	bearerScheme = "Bearer "
)

// bearerToken extracts the raw bearer token from the request, or "" when the
// header is absent or not a bearer scheme. The order service treats an empty
// token as a missing credential, so no decision happens at this layer.
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get(authHeader))
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearerScheme)) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerScheme):])
}
