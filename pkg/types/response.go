package types

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Detail  any    `json:"detail,omitempty"`
}

// MessageBody acknowledges an operation that returns no resource.
type MessageBody struct {
	Message string `json:"message"`
}
