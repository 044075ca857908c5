package account

// Kind classifies a failed operation for callers that need more than the
// human-readable message (HTTP status mapping, metrics).
type Kind int

const (
	KindFieldsRequired Kind = iota
	KindInvalidEmail
	KindInvalidPhone
	KindPasswordTooShort
	KindNicknameTooShort
	KindEmailTaken
	KindPhoneTaken
	KindNicknameTaken
	KindInvalidCredentials
	KindStorage
	KindArtifact
)

// Error is a tagged failure returned by the service. The message is safe to
// show to end users verbatim.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func failure(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}
