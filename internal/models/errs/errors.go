package errs

import (
	"errors"
	"fmt"
)

// Common sentinel errors.
var (
	ErrNotFound           = errors.New("not found")
	ErrDataConflict       = errors.New("data conflict")
	ErrAlreadyExists      = errors.New("already exists")
	ErrForbidden          = errors.New("permission denied")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrRequiredBodyParam  = errors.New("required body parameter missing")
	ErrInvalidContentType = errors.New("invalid content type")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimit          = errors.New("rate limit")
)

// Precondition failures of the order and review services.
var (
	ErrStoreClosed       = errors.New("store closed")
	ErrBelowMinimumPrice = errors.New("below minimum order price")
	ErrOrderNotFinished  = errors.New("order is not finished")
)

// Type just for marshalling purpose.
// Should only be used immediately before marshalling.
type JSON struct {
	Error string `json:"error"`
}

// Let users know which required request parameter is not provided.
type RequiredJSONBodyParamError struct {
	ParamName string
}

func (e *RequiredJSONBodyParamError) Error() string {
	return fmt.Sprintf("JSON body argument %q is required, but not found", e.ParamName)
}

func (e *RequiredJSONBodyParamError) Unwrap() error {
	return ErrRequiredBodyParam
}
