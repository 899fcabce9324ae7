package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error Codes
type ErrCode string

var (
	FAILED_REQUEST      ErrCode = "REQUEST_FAILED"
	BAD_REQUEST         ErrCode = "FAILED_TO_DECODE"
	VALIDATION_FAILED   ErrCode = "VALIDATION_FAILED"
	NOT_FOUND           ErrCode = "NOT_FOUND"
	CONFLICT            ErrCode = "CONFLICT"
	NOTIFICATION_FAILED ErrCode = "NOTIFICATION_FAILED"
)

var (
	ErrBadRequest      = errors.New("bad request")
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("resource not found")
	ErrConflict        = errors.New("conflict")
	ErrPersistence     = errors.New("persistence failure")
	ErrExternalService = errors.New("external service failure")
)

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errMsg []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' is required", err.Field()))
		case "min", "gte":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be at least %s", err.Field(), err.Param()))
		case "max", "lte":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be at most %s", err.Field(), err.Param()))
		case "oneof":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be one of [%s]", err.Field(), err.Param()))
		default:
			errMsg = append(errMsg, fmt.Sprintf("field '%s' is invalid", err.Field()))
		}
	}

	return Error(string(VALIDATION_FAILED), strings.Join(errMsg, ", "))
}

// Validation wraps ErrValidation with a human readable reason.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// FromError picks the HTTP status and body for an error returned by the
// service layer. fallback is the message used for unexpected failures.
func FromError(err error, fallback string) (int, Response) {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, Error(string(VALIDATION_FAILED), reason(err, ErrValidation))
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, Error(string(BAD_REQUEST), reason(err, ErrBadRequest))
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, Error(string(NOT_FOUND), "resource not found")
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, Error(string(CONFLICT), "resource already exists")
	case errors.Is(err, ErrExternalService):
		return http.StatusBadGateway, Error(string(NOTIFICATION_FAILED), "document saved but notification failed")
	default:
		return http.StatusInternalServerError, Error(string(FAILED_REQUEST), fallback)
	}
}

// Fail renders err using FromError.
func Fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status, resp := FromError(err, fallback)
	render.Status(r, status)
	render.JSON(w, r, resp)
}

// reason cuts the op chain off a wrapped sentinel message so that only
// "validation failed: <detail>" reaches the client.
func reason(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()); i >= 0 {
		return msg[i:]
	}
	return sentinel.Error()
}
