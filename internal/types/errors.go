package types

// ErrorBody is the error payload of the application API. Fields lists the
// offending input fields so forms can highlight them.
type ErrorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
	Details any      `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewErrorResponse builds the API error envelope.
func NewErrorResponse(code, message string, details any) ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// WithFields attaches offending field names.
func (r ErrorResponse) WithFields(fields ...string) ErrorResponse {
	r.Error.Fields = append(r.Error.Fields, fields...)
	return r
}
