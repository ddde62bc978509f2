package client

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// APIError is a non-2xx answer from the task service.
type APIError struct {
	Op      string
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// readAPIError uses the body's "error" field when present, else fallback.
func readAPIError(op string, resp *http.Response, fallback string) error {
	apiErr := &APIError{
		Op:      op,
		Status:  resp.StatusCode,
		Message: fallback,
	}

	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			apiErr.Message = body.Error
		}
		apiErr.Code = body.Code
	}
	return apiErr
}
