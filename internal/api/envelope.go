package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/nexogroup/nexo-server/internal/http/response"
)

// EnvelopeTransformer wraps every huma response body in the standard
// envelope. Errors produced by RegisterErrorHandler become failure envelopes.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch body := v.(type) {
	case nil:
		return nil, nil
	case response.Envelope:
		return body, nil
	case *APIError:
		return response.Failure(body.Code, body.Message, body.Details), nil
	default:
		return response.OK(v), nil
	}
}
