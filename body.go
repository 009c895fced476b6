package conduit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// readChunkSize is the size of a single read from the request stream.
const readChunkSize = 32 * 1024

// Body is a request payload that has been read and parsed.
type Body struct {
	// Raw holds the bytes exactly as received.
	Raw []byte
	// Value is the parsed JSON document. An empty payload parses to an empty object.
	Value any
}

// Decode unmarshals the raw payload into v. An empty payload leaves v untouched.
func (b Body) Decode(v any) error {
	if len(bytes.TrimSpace(b.Raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b.Raw, v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// Object returns the parsed value as a JSON object, or nil when the payload
// is not an object.
func (b Body) Object() map[string]any {
	m, _ := b.Value.(map[string]any)
	return m
}

// MethodHasBody reports whether requests with the given method are expected
// to carry a payload that the pipeline should read and parse.
func MethodHasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}

// ReadBody accumulates r chunk by chunk. As soon as more than limit bytes
// have been seen it stops reading and returns ErrOversizedBody; the rest of
// the stream is left unread. A limit <= 0 disables the check.
func ReadBody(r io.Reader, limit int64) ([]byte, error) {
	if r == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	chunk := make([]byte, readChunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			if limit > 0 && int64(buf.Len()) > limit {
				return nil, fmt.Errorf("read body: %w (limit %d bytes)", ErrOversizedBody, limit)
			}
		}
		if errors.Is(err, io.EOF) {
			return buf.Bytes(), nil
		}
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, fmt.Errorf("read body: %w (limit %d bytes)", ErrOversizedBody, maxErr.Limit)
			}
			return nil, fmt.Errorf("read body: %w", err)
		}
	}
}

// ParseBody parses raw as a JSON document. Blank input yields an empty
// object. Syntax errors are reported as ErrMalformedBody with the parser
// message attached.
func ParseBody(raw []byte) (Body, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Body{Raw: raw, Value: map[string]any{}}, nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Body{}, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}

	return Body{Raw: raw, Value: v}, nil
}

// bodyKey is the context key for the parsed request body.
type bodyKey struct{}

// WithBody returns a new context carrying the parsed request body.
func WithBody(ctx context.Context, b Body) context.Context {
	return context.WithValue(ctx, bodyKey{}, b)
}

// BodyFromContext retrieves the parsed request body.
// The boolean is false when no body was attached.
func BodyFromContext(ctx context.Context) (Body, bool) {
	b, ok := ctx.Value(bodyKey{}).(Body)
	return b, ok
}
