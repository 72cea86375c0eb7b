package apperrors

var (
	// Domain errors — used in services/repository
	ErrSenderNotFound    = NotFound("sender not found")
	ErrRecipientNotFound = NotFound("recipient not found")
	ErrMessageNotFound   = NotFound("message not found")
	ErrUserNotFound      = NotFound("user not found")
	ErrNotMessageOwner   = Forbidden("subject is not the message sender")
	ErrNotParticipant    = Forbidden("subject is not a participant in this conversation")
	ErrInvalidToken      = Unauthorized("invalid or expired token")
	ErrEmptyContent      = InvalidArg("message content cannot be empty")
)

func ErrVerificationFailed(cause error) error {
	return Wrap(CodeUnauthorized, "identity verification failed", cause)
}

func ErrStoreFailure(cause error) error {
	return Wrap(CodeInternal, "storage operation failed", cause)
}
