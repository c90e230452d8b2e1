package models

// Wire error types. Protocol and validation failures share Invalid_Request,
// matching what clients already parse; internal failures use their own type
// and never leak the underlying error.
const (
	ErrTypeInvalidRequest = "Invalid_Request"
	ErrTypeInternal       = "Internal_Server_Error"
)

// ErrorFrame is the JSON error object written to the websocket. Request, when
// present, echoes the offending request with the token redacted.
type ErrorFrame struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Action  string   `json:"action,omitempty"`
	Request *Request `json:"request,omitempty"`
}

// ProtocolError covers malformed framing: binary payloads and non-JSON text.
func ProtocolError(message string) *ErrorFrame {
	return &ErrorFrame{Type: ErrTypeInvalidRequest, Message: message}
}

func UnknownAction(action string) *ErrorFrame {
	return &ErrorFrame{Type: ErrTypeInvalidRequest, Message: "Unknown action", Action: action}
}

// MissingData covers absent or malformed action fields and membership checks
// that failed.
func MissingData(action, message string) *ErrorFrame {
	return &ErrorFrame{Type: ErrTypeInvalidRequest, Message: message, Action: action}
}

// InvalidRequest is a validation failure that echoes the request back.
func InvalidRequest(action, message string, req *Request) *ErrorFrame {
	return &ErrorFrame{Type: ErrTypeInvalidRequest, Message: message, Action: action, Request: req.Redacted()}
}

// InternalError reports a persistence or handler failure without detail.
func InternalError(action string, req *Request) *ErrorFrame {
	return &ErrorFrame{Type: ErrTypeInternal, Message: "Internal server error", Action: action, Request: req.Redacted()}
}
