package errors

var (
	// Domain errors — used by the conversation and story stores
	ErrEmptyText        = InvalidInput("message text cannot be empty")
	ErrNoCurrentUser    = InvalidInput("current user is not set")
	ErrEmptyMediaRef    = InvalidInput("story media reference cannot be empty")
	ErrInvalidMediaKind = InvalidInput("media kind must be image or video")
	ErrDeletePending    = FailedPrecondition("a deletion is already pending for this kind")
)

func ErrPersistFailed(cause error) error {
	return Persistence("failed to persist state", cause)
}

func ErrReplyFailed(cause error) error {
	return Collaborator("reply generator failed", cause)
}
