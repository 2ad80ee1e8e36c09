package errors

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

// Sentinel errors for the wishlist error taxonomy.
var (
	ErrNotFound                = errors.New("resource not found")
	ErrConflict                = errors.New("conflict")
	ErrInvalidInput            = errors.New("invalid input")
	ErrInvalidResponse         = errors.New("invalid upstream response")
	ErrServiceUnavailable      = errors.New("service unavailable")
	ErrCartMigrationIncomplete = errors.New("cart migration incomplete")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrRateLimited             = errors.New("rate limit exceeded")
	ErrInternal                = errors.New("internal error")
)

// Error codes returned to clients.
const (
	CodeWishlistNotFound        = "WISHLIST_NOT_FOUND"
	CodeItemNotFound            = "ITEM_NOT_FOUND"
	CodeItemAlreadyExists       = "ITEM_ALREADY_EXISTS"
	CodeProductNotFound         = "PRODUCT_NOT_FOUND"
	CodeMaxItemsExceeded        = "MAX_ITEMS_EXCEEDED"
	CodeInvalidInput            = "INVALID_INPUT"
	CodeInvalidFormat           = "INVALID_FORMAT"
	CodeValidation              = "VALIDATION_ERROR"
	CodeInvalidResponse         = "INVALID_RESPONSE"
	CodeServiceUnavailable      = "SERVICE_UNAVAILABLE"
	CodeCartMigrationIncomplete = "CART_MIGRATION_INCOMPLETE"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeForbidden               = "FORBIDDEN"
	CodeRateLimitExceeded       = "RATE_LIMIT_EXCEEDED"
	CodeInternal                = "INTERNAL_ERROR"
)

// AppError is a classified error with an HTTP status and an optional cause.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
	Cause   error  `json:"-"`
	// Details is returned to clients as is, e.g. per-field validation messages
	Details any `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes both the taxonomy sentinel and the underlying cause.
func (e *AppError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// WishlistNotFound creates a 404 error for a user without a wishlist.
func WishlistNotFound() *AppError {
	return &AppError{
		Code:    CodeWishlistNotFound,
		Message: "Wishlist not found",
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// ItemNotFound creates a 404 error for a product missing from a wishlist.
func ItemNotFound(productID string) *AppError {
	return &AppError{
		Code:    CodeItemNotFound,
		Message: fmt.Sprintf("Item %s not found in wishlist", productID),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// ProductNotFound creates a 404 error for a product the catalog does not know.
func ProductNotFound(productID string) *AppError {
	return &AppError{
		Code:    CodeProductNotFound,
		Message: fmt.Sprintf("Product %s not found", productID),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// ItemAlreadyExists creates a 409 error for a duplicate wishlist entry.
func ItemAlreadyExists() *AppError {
	return &AppError{
		Code:    CodeItemAlreadyExists,
		Message: "Item already exists in wishlist",
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// InvalidFormat creates a 400 error for a body that is not valid JSON.
func InvalidFormat(cause error) *AppError {
	return &AppError{
		Code:    CodeInvalidFormat,
		Message: "Invalid data format",
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
		Cause:   cause,
	}
}

// ValidationFailed creates a 400 error carrying per-field messages.
func ValidationFailed(message string, fields map[string]string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
		Details: fields,
	}
}

// MaxItemsExceeded creates a 400 error for a full wishlist.
func MaxItemsExceeded(limit int) *AppError {
	return &AppError{
		Code:    CodeMaxItemsExceeded,
		Message: fmt.Sprintf("Wishlist cannot hold more than %d items", limit),
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// InvalidResponse creates a 502 error for a malformed upstream payload.
func InvalidResponse(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeInvalidResponse,
		Message: message,
		Status:  http.StatusBadGateway,
		Err:     ErrInvalidResponse,
		Cause:   cause,
	}
}

// ServiceUnavailable creates a 503 error for an unreachable upstream.
func ServiceUnavailable(service string, cause error) *AppError {
	return &AppError{
		Code:    CodeServiceUnavailable,
		Message: fmt.Sprintf("%s is unavailable", service),
		Status:  http.StatusServiceUnavailable,
		Err:     ErrServiceUnavailable,
		Cause:   cause,
	}
}

// CartMigrationIncomplete reports an item that reached the cart but is
// still present in the wishlist. It needs manual reconciliation.
func CartMigrationIncomplete(productID string, cause error) *AppError {
	return &AppError{
		Code:    CodeCartMigrationIncomplete,
		Message: fmt.Sprintf("Item %s was added to the cart but could not be removed from the wishlist", productID),
		Status:  http.StatusInternalServerError,
		Err:     ErrCartMigrationIncomplete,
		Cause:   cause,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// RateLimitExceeded creates a 429 error.
func RateLimitExceeded() *AppError {
	return &AppError{
		Code:    CodeRateLimitExceeded,
		Message: "Too many requests",
		Status:  http.StatusTooManyRequests,
		Err:     ErrRateLimited,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     ErrInternal,
		Cause:   err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidResponse):
		return http.StatusBadGateway
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// GRPCCode returns the gRPC status code for the given error.
func GRPCCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Err != nil {
		err = appErr.Err
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return codes.NotFound
	case errors.Is(err, ErrConflict):
		return codes.AlreadyExists
	case errors.Is(err, ErrInvalidInput):
		return codes.InvalidArgument
	case errors.Is(err, ErrInvalidResponse):
		return codes.FailedPrecondition
	case errors.Is(err, ErrServiceUnavailable):
		return codes.Unavailable
	case errors.Is(err, ErrUnauthorized):
		return codes.Unauthenticated
	case errors.Is(err, ErrForbidden):
		return codes.PermissionDenied
	case errors.Is(err, ErrRateLimited):
		return codes.ResourceExhausted
	case errors.Is(err, ErrCartMigrationIncomplete):
		return codes.DataLoss
	default:
		return codes.Internal
	}
}

// Code returns the client-facing error code.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Message returns a client-safe message for the error.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "an internal error occurred"
}

// Details returns the client-facing details of the error, if any.
func Details(err error) any {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Details
	}
	return nil
}
