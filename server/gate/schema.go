package gate

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	autherrors "github.com/jrsteele09/dashboard-gateway/internal/errors"
)

// maxBodyBytes bounds JSON bodies and the in-memory part of multipart forms.
const maxBodyBytes = 10 << 20

// Schema describes the body or query an endpoint accepts.
type Schema interface {
	// New returns a pointer to a zero value to decode into.
	New() any
	// Validate checks a decoded value and returns a message suitable for the client.
	Validate(v any) error
}

// Validator is implemented by request types that check their own fields.
type Validator interface {
	Validate() error
}

type typedSchema[T any] struct{}

// NewSchema returns a Schema decoding into *T and calling its Validate method when T
// implements Validator.
func NewSchema[T any]() Schema {
	return typedSchema[T]{}
}

func (typedSchema[T]) New() any {
	return new(T)
}

func (typedSchema[T]) Validate(v any) error {
	if val, ok := v.(Validator); ok {
		return val.Validate()
	}
	return nil
}

// DecodeRequest reads r according to its method and content type and validates the
// result against schema. Query and form values decode as strings, or string slices when
// a key repeats.
func DecodeRequest(r *http.Request, schema Schema) (any, error) {
	v := schema.New()

	if r.Method == http.MethodGet {
		if err := decodeValues(r.URL.Query(), v); err != nil {
			return nil, err
		}
		return v, validate(schema, v)
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%w %q", autherrors.ErrUnsupportedContentType, r.Header.Get("Content-Type"))
	}

	switch mediaType {
	case "application/json":
		dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
		if err := dec.Decode(v); err != nil && err != io.EOF {
			return nil, fmt.Errorf("%w: invalid JSON body: %v", autherrors.ErrValidation, err)
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, fmt.Errorf("%w: invalid multipart body: %v", autherrors.ErrValidation, err)
		}
		if err := decodeValues(url.Values(r.MultipartForm.Value), v); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w %q", autherrors.ErrUnsupportedContentType, mediaType)
	}
	return v, validate(schema, v)
}

func decodeValues(values url.Values, v any) error {
	m := make(map[string]any, len(values))
	for k, vals := range values {
		if len(vals) == 1 {
			m[k] = vals[0]
			continue
		}
		m[k] = vals
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("%w: %v", autherrors.ErrValidation, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", autherrors.ErrValidation, err)
	}
	return nil
}

func validate(schema Schema, v any) error {
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %w", autherrors.ErrValidation, err)
	}
	return nil
}
