package httputil

import (
	"encoding/json"
	"net/http"
)

// Machine-readable error codes. Stable API contract; renaming one is a
// breaking change.
const (
	CodeValidationError      = "VALIDATION_ERROR"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeNotFound             = "NOT_FOUND"
	CodeConflict             = "CONFLICT"
	CodeUserAlreadyExists    = "USER_ALREADY_EXISTS"
	CodeUserDataAlreadyExist = "USER_DATA_ALREADY_EXISTS"
	CodeInvalidEmail         = "INVALID_EMAIL"
	CodeInvalidUsername      = "INVALID_USERNAME"
	CodeInvalidPassword      = "INVALID_PASSWORD"
	CodeNotInstalled         = "NOT_INSTALLED"
	CodeAlreadyInstalled     = "ALREADY_INSTALLED"
	CodeInternalServerError  = "INTERNAL_SERVER_ERROR"
)

// Problem is the uniform error response body.
type Problem struct {
	Status int      `json:"status"`
	Title  string   `json:"title"`
	Detail string   `json:"detail,omitempty"`
	Code   string   `json:"code"`
	Fields []string `json:"fields,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful response (200 OK) with JSON data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteCreated writes a successful creation response (201 Created) with JSON data
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, data)
}

// WriteNoContent writes a successful response with no content (204 No Content)
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteProblem writes a problem-detail error response
func WriteProblem(w http.ResponseWriter, p Problem) {
	if p.Title == "" {
		p.Title = http.StatusText(p.Status)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(p.Status)
	json.NewEncoder(w).Encode(p)
}

// WriteValidationError writes a 400 with the given code and offending fields
func WriteValidationError(w http.ResponseWriter, code, detail string, fields ...string) {
	WriteProblem(w, Problem{
		Status: http.StatusBadRequest,
		Detail: detail,
		Code:   code,
		Fields: fields,
	})
}

// WriteUnauthorized writes a 401
func WriteUnauthorized(w http.ResponseWriter, detail string) {
	WriteProblem(w, Problem{
		Status: http.StatusUnauthorized,
		Detail: detail,
		Code:   CodeUnauthorized,
	})
}

// WriteForbidden writes a 403 with the given code
func WriteForbidden(w http.ResponseWriter, code, detail string) {
	WriteProblem(w, Problem{
		Status: http.StatusForbidden,
		Detail: detail,
		Code:   code,
	})
}

// WriteNotFound writes a 404
func WriteNotFound(w http.ResponseWriter, detail string) {
	WriteProblem(w, Problem{
		Status: http.StatusNotFound,
		Detail: detail,
		Code:   CodeNotFound,
	})
}

// WriteConflict writes a 409 with the given code and offending fields
func WriteConflict(w http.ResponseWriter, code, detail string, fields ...string) {
	WriteProblem(w, Problem{
		Status: http.StatusConflict,
		Detail: detail,
		Code:   code,
		Fields: fields,
	})
}

// WriteServiceUnavailable writes a 503
func WriteServiceUnavailable(w http.ResponseWriter, detail string) {
	WriteProblem(w, Problem{
		Status: http.StatusServiceUnavailable,
		Detail: detail,
		Code:   CodeInternalServerError,
	})
}

// WriteInternalError writes a 500 with a generic body. The error itself is
// for the caller to log, never for the response.
func WriteInternalError(w http.ResponseWriter) {
	WriteProblem(w, Problem{
		Status: http.StatusInternalServerError,
		Detail: "an unexpected error occurred",
		Code:   CodeInternalServerError,
	})
}
