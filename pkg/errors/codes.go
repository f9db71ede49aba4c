package errors

type Code string

const (
	CodeUnknown            Code = "UNKNOWN"
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeNotFound           Code = "NOT_FOUND"
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	CodePersistence        Code = "PERSISTENCE"
	CodeCollaborator       Code = "COLLABORATOR"
	CodeInternal           Code = "INTERNAL"
)
