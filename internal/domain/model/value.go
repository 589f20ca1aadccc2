package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type ValueKind string

const (
	ValueNull   ValueKind = ""
	ValueString ValueKind = "string"
	ValueNumber ValueKind = "number"
	ValueBool   ValueKind = "bool"
)

// Value is a typed form field value. The zero Value is null.
type Value struct {
	Kind ValueKind `json:"kind"`
	Str  string    `json:"str,omitempty"`
	Num  float64   `json:"num,omitempty"`
	Bool bool      `json:"bool,omitempty"`
}

func String(s string) Value  { return Value{Kind: ValueString, Str: s} }
func Number(n float64) Value { return Value{Kind: ValueNumber, Num: n} }
func Bool(b bool) Value      { return Value{Kind: ValueBool, Bool: b} }

func (v Value) IsNull() bool { return v.Kind == ValueNull }

func (v Value) Text() string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}

// Number parses string values so that form input like "120" counts as numeric.
func (v Value) Number() float64 {
	switch v.Kind {
	case ValueNumber:
		return v.Num
	case ValueString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Any returns the plain Go value for JSON responses.
func (v Value) Any() any {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueNumber:
		return v.Num
	case ValueBool:
		return v.Bool
	default:
		return nil
	}
}

// ValueFromJSON converts a decoded JSON scalar into a Value.
func ValueFromJSON(raw json.RawMessage) (Value, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Value{}, fmt.Errorf("decode field value: %w", err)
	}
	switch typed := decoded.(type) {
	case nil:
		return Value{}, nil
	case string:
		return String(typed), nil
	case float64:
		return Number(typed), nil
	case bool:
		return Bool(typed), nil
	default:
		return Value{}, fmt.Errorf("unsupported field value type %T", decoded)
	}
}
