package protocol

import (
	"encoding/json"
	"fmt"
	"sort"
)

// marshalTagged encodes a union variant as {"<tag>": body}.
func marshalTagged(tag string, body any) ([]byte, error) {
	return json.Marshal(map[string]any{tag: body})
}

// unmarshalTagged decodes an externally tagged union object and returns its
// single tag and raw body. Zero or multiple keys is a malformed message.
func unmarshalTagged(data []byte, union string) (string, json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return "", nil, fmt.Errorf("%s: %w", union, err)
	}
	if len(m) != 1 {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", nil, fmt.Errorf("%s: expected exactly one variant, got %d %v", union, len(m), keys)
	}
	for tag, body := range m {
		return tag, body, nil
	}
	return "", nil, errEmptyUnion(union)
}

func errEmptyUnion(union string) error {
	return fmt.Errorf("%s: no variant set", union)
}

func errUnknownTag(union, tag string) error {
	return fmt.Errorf("%s: unknown variant %q", union, tag)
}

// Response status tags.
const (
	statusSuccess = "success"
	statusError   = "error"
)

func (r Response) MarshalJSON() ([]byte, error) {
	switch {
	case r.Success != nil:
		return marshalTagged(statusSuccess, r.Success)
	case r.Error != nil:
		return marshalTagged(statusError, r.Error)
	}
	return nil, errEmptyUnion("response")
}

func (r *Response) UnmarshalJSON(data []byte) error {
	tag, body, err := unmarshalTagged(data, "response")
	if err != nil {
		return err
	}
	*r = Response{}
	switch tag {
	case statusSuccess:
		r.Success = new(SuccessBody)
		return json.Unmarshal(body, r.Success)
	case statusError:
		r.Error = new(ErrorInfo)
		return json.Unmarshal(body, r.Error)
	}
	return errUnknownTag("response", tag)
}

// EncodeMessage renders a message as a single line of JSON, the unit of the
// line-delimited transports. The trailing newline is the caller's concern.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses one wire message.
func DecodeMessage(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
