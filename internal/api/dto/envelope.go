package dto

// Envelope is the uniform response shape: success endpoints set Success true
// and put the payload under Data; errors set Success false with a nil Data.
type Envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    any            `json:"data"`
	Details map[string]any `json:"details,omitempty"`
}

// OK builds a success envelope.
func OK(message string, data any) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}
