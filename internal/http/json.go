package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/promptline/promptline-api/internal/apperrors"
)

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError to adhere to the ≤3 params guideline.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, map[string]string{"error": p.ErrCode, "message": p.Err.Error()})
}

// WriteAppError maps an application error code to an HTTP status and writes
// the JSON error body. Errors without a code are treated as internal.
func WriteAppError(w http.ResponseWriter, err error) {
	WriteAppErrorDetails(w, err, nil)
}

// WriteAppErrorDetails writes the mapped error body with extra fields merged
// in, e.g. the job id of a submission that was recorded as Failed.
func WriteAppErrorDetails(w http.ResponseWriter, err error, details map[string]string) {
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.CodeInternal
	}

	body := map[string]string{"error": string(code), "message": err.Error()}
	for k, v := range details {
		body[k] = v
	}
	WriteJSON(w, statusForCode(code), body)
}

func statusForCode(code apperrors.Code) int {
	switch code {
	case apperrors.CodeValidation:
		return http.StatusBadRequest
	case apperrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeConflict:
		return http.StatusConflict
	case apperrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case apperrors.CodeUpstream:
		return http.StatusBadGateway
	case apperrors.CodeSubmissionFailed, apperrors.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
