package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// ParseJSON decodes JSON from the request body into the destination
func ParseJSON(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// ParseJSONOrError decodes JSON and writes a validation problem on failure
func ParseJSONOrError(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := ParseJSON(r, dest); err != nil {
		WriteValidationError(w, CodeValidationError, "request body is not valid JSON")
		return false
	}
	return true
}

// ParsePathString extracts a string path parameter
func ParsePathString(r *http.Request, key string) (string, error) {
	vars := mux.Vars(r)
	str := vars[key]
	if str == "" {
		return "", fmt.Errorf("missing path parameter: %s", key)
	}
	return str, nil
}

// ParseQueryString extracts a string query parameter
func ParseQueryString(r *http.Request, key string, defaultVal string) string {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val
}
