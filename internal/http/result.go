package httpapi

// Every response body, success or failure, is a Result. Clients branch on Code and
// only fall back to the HTTP status for transport-level failures:
//
//	2000   success, HTTP 200 or 201
//	-1     request failed, HTTP 4xx or 5xx; validation failures carry the
//	       offending JSON fields in Result
//	60401  bearer token missing, expired or logged out, always HTTP 401
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess       = 2000
	ResultError         = -1
	ResultTokenRejected = 60401
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

// Fail is an error envelope with no payload.
func Fail(message string) Result[any] {
	return failWith[any](ResultError, message, nil)
}

func failWith[T any](code int, message string, result T) Result[T] {
	return Result[T]{Code: code, Type: "error", Message: message, Result: result}
}
