package handler

// Envelope wraps every dev API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorEnvelope documents the failure shape for swagger.
type ErrorEnvelope struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"Account not found"`
}

// Success wraps data in a success envelope. A nil data renders as {}.
func Success(data any) Envelope {
	if data == nil {
		data = struct{}{}
	}
	return Envelope{Success: true, Data: data}
}

// Failure wraps a message in a failure envelope.
func Failure(msg string) Envelope {
	return Envelope{Success: false, Error: msg}
}
