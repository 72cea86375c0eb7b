package apperrors

type Code string

const (
	CodeUnknown         Code = "UNKNOWN"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeForbidden       Code = "PERMISSION_DENIED"
	CodeUnauthorized    Code = "UNAUTHENTICATED"
	CodeInternal        Code = "INTERNAL"
)
