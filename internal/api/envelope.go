package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is the wire envelope version. The field is named "v"
// exactly; the UI shell parses it by that name.
const envelopeVersion = 1

// SuccessEnvelope wraps successful response bodies.
type SuccessEnvelope struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorEnvelope wraps error response bodies. Error always carries the
// human-readable message; Code and Details appear when the failure has
// structure.
type ErrorEnvelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every response body in the versioned envelope.
// Registered as a huma transformer so handlers return plain bodies.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return &ErrorEnvelope{
			V:       envelopeVersion,
			Success: false,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}

	// Any other error-shaped body still becomes an error envelope.
	if err, ok := v.(error); ok {
		return &ErrorEnvelope{
			V:       envelopeVersion,
			Success: false,
			Error:   err.Error(),
		}, nil
	}

	return &SuccessEnvelope{
		V:       envelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
