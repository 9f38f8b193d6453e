package errorx

import "fmt"

// Unknown is returned to the client whenever an internal detail must not be
// leaked. The real cause is logged server side.
var Unknown = Error{Code: 100000, Message: "Request failed"}

type Error struct {
	Code    Code
	Message string
}

func New(code Code, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

func (e Error) Error() string {
	return e.Message
}
