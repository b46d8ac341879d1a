package testrun

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorKind tags the shape of an error payload attached to a test.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorString
	ErrorObject
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorString:
		return "string"
	case ErrorObject:
		return "object"
	default:
		return "none"
	}
}

// RawError is the error payload of a failed test: nothing, a bare string, or
// an object that usually carries a message.
type RawError struct {
	Kind    ErrorKind
	Message string         // string payload, or the object's "message" field
	Raw     map[string]any // object payload only
}

// NewRawError tags an arbitrary decoded JSON value. nil, empty strings and
// empty objects are ErrorNone. Non-string scalars are kept as their string
// form.
func NewRawError(v any) RawError {
	switch x := v.(type) {
	case nil:
		return RawError{}
	case string:
		if strings.TrimSpace(x) == "" {
			return RawError{}
		}
		return RawError{Kind: ErrorString, Message: x}
	case map[string]any:
		if len(x) == 0 {
			return RawError{}
		}
		msg, _ := x["message"].(string)
		return RawError{Kind: ErrorObject, Message: msg, Raw: x}
	case RawError:
		return x
	default:
		return RawError{Kind: ErrorString, Message: fmt.Sprint(x)}
	}
}

// StringError builds a string payload.
func StringError(msg string) RawError { return NewRawError(msg) }

// IsZero reports whether there is no payload.
func (e RawError) IsZero() bool { return e.Kind == ErrorNone }

// Text is the string form used for classification: the string itself, else
// the object's message, else the whole object as JSON.
func (e RawError) Text() string {
	switch e.Kind {
	case ErrorString:
		return e.Message
	case ErrorObject:
		if strings.TrimSpace(e.Message) != "" {
			return e.Message
		}
		b, err := json.Marshal(e.Raw)
		if err != nil {
			return fmt.Sprint(e.Raw)
		}
		return string(b)
	default:
		return ""
	}
}

// Stack returns the object's stack trace field when present.
func (e RawError) Stack() string {
	if e.Kind != ErrorObject {
		return ""
	}
	for _, key := range []string{"estack", "stack"} {
		if s, ok := e.Raw[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// MarshalJSON writes the payload back in its original shape.
func (e RawError) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case ErrorString:
		return json.Marshal(e.Message)
	case ErrorObject:
		return json.Marshal(e.Raw)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any JSON value and tags it.
func (e *RawError) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal raw error: %w", err)
	}
	*e = NewRawError(v)
	return nil
}
