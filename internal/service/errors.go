package service

import "fmt"

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(resource string, id int64) *BusinessError {
	return NewBusinessError(CodeNotFound,
		fmt.Sprintf("%s %d not found", resource, id),
		ToDetail("resource", resource),
		ToDetail("id", id),
	)
}

func NewValidationError(field, reason string) *BusinessError {
	return NewBusinessError(CodeValidation,
		fmt.Sprintf("invalid %s: %s", field, reason),
		ToDetail("field", field),
		ToDetail("reason", reason),
	)
}

func NewConflict(message string) *BusinessError {
	return NewBusinessError(CodeConflict, message)
}

func NewUnauthorized(message string) *BusinessError {
	return NewBusinessError(CodeUnauthorized, message)
}
