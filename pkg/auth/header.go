package auth

import (
	"net/http"
	"strings"
)

// TokenFromRequest returns the bearer credential from the Authorization
// header, or "" when none is present.
func TokenFromRequest(r *http.Request) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
