package dto

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK wraps data in a successful envelope.
func OK(data any) APIResponse {
	return APIResponse{Success: true, Data: data}
}

// OKMessage is a successful envelope without payload.
func OKMessage(message string) APIResponse {
	return APIResponse{Success: true, Message: message}
}

// Fail wraps an error message.
func Fail(err string) APIResponse {
	return APIResponse{Success: false, Error: err}
}
