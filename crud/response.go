package crud

// ErrorKind classifies a failed Response.
type ErrorKind string

const (
	ErrorNotFound   ErrorKind = "NotFound"
	ErrorValidation ErrorKind = "ValidationError"
	ErrorDatabase   ErrorKind = "DatabaseError"
	// ErrorConflict is reserved for callers; the service never produces it.
	ErrorConflict ErrorKind = "Conflict"
	ErrorUnknown  ErrorKind = "Unknown"
)

// Response is the envelope returned by every service operation.
type Response[T any] struct {
	Success bool      `json:"success"`
	Model   T         `json:"model"`
	Error   ErrorKind `json:"error,omitempty"`
	Message string    `json:"message,omitempty"`
}

func Ok[T any](model T) Response[T] {
	return Response[T]{Success: true, Model: model}
}

func Fail[T any](kind ErrorKind, message string) Response[T] {
	return Response[T]{Error: kind, Message: message}
}

func NotFound[T any](message string) Response[T] {
	return Fail[T](ErrorNotFound, message)
}
