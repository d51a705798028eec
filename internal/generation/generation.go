package generation

import "context"

// Image is an inline image handed to the endpoint alongside the prompt.
type Image struct {
	MIMEType string
	Data     []byte
}

// Request is a single generation attempt.
type Request struct {
	Prompt string
	// ExpectJSON asks the endpoint for an application/json response body.
	ExpectJSON bool
	Image      *Image
}

// Endpoint performs exactly one generation attempt. Implementations must not
// retry on their own.
type Endpoint interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// EndpointFunc adapts a function to the Endpoint interface.
type EndpointFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f EndpointFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Generator is the contract consumers of the retrying client depend on.
type Generator interface {
	Generate(ctx context.Context, prompt string, expectJSON bool, image *Image) (string, error)
}
