package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/ojastore/storefront-backend/pkg/errors"
)

func fieldError(field, problem string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{field: problem})
}

// ParseQueryInt reads an optional integer query parameter bounded by
// [min, max]. Absent values yield def.
func ParseQueryInt(r *http.Request, key string, def, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		return 0, fieldError(key, "must be an integer")
	case value < min || value > max:
		return 0, fieldError(key, "must be between "+strconv.Itoa(min)+" and "+strconv.Itoa(max))
	}
	return value, nil
}

// ParseProductID reads a required positive product id from a query or
// route parameter value.
func ParseProductID(raw, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fieldError(field, "is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fieldError(field, "must be a positive integer")
	}
	return id, nil
}
