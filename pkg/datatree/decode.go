package datatree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromValue converts a plain Go value into a Node. It accepts the output of
// encoding/json (with or without UseNumber), of yaml.v3, Go integer and float
// types, nested []any / map[string]any and Node itself.
func FromValue(v any) (Node, error) {
	switch val := v.(type) {
	case nil:
		return Null(), nil
	case Node:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return Str(val), nil
	case int:
		return Int(int64(val)), nil
	case int8:
		return Int(int64(val)), nil
	case int16:
		return Int(int64(val)), nil
	case int32:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case uint:
		return fromUint(uint64(val)), nil
	case uint8:
		return Int(int64(val)), nil
	case uint16:
		return Int(int64(val)), nil
	case uint32:
		return Int(int64(val)), nil
	case uint64:
		return fromUint(val), nil
	case float32:
		return Float(float64(val)), nil
	case float64:
		return Float(val), nil
	case json.Number:
		return fromNumber(val), nil
	case []any:
		items := make([]Node, len(val))
		for i, item := range val {
			n, err := FromValue(item)
			if err != nil {
				return Node{}, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = n
		}
		return Array(items...), nil
	case []Node:
		return Array(val...), nil
	case map[string]any:
		fields := make(map[string]Node, len(val))
		for k, item := range val {
			n, err := FromValue(item)
			if err != nil {
				return Node{}, fmt.Errorf("key %q: %w", k, err)
			}
			fields[k] = n
		}
		return Object(fields), nil
	case map[any]any:
		fields := make(map[string]Node, len(val))
		for k, item := range val {
			key := fmt.Sprint(k)
			n, err := FromValue(item)
			if err != nil {
				return Node{}, fmt.Errorf("key %q: %w", key, err)
			}
			fields[key] = n
		}
		return Object(fields), nil
	case map[string]Node:
		return Object(val), nil
	default:
		return Node{}, fmt.Errorf("unsupported value type %T", v)
	}
}

// MustFromValue is like FromValue but panics on unsupported input.
func MustFromValue(v any) Node {
	n, err := FromValue(v)
	if err != nil {
		panic(err)
	}
	return n
}

func fromUint(u uint64) Node {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

// fromNumber decides between integer and float the way JSON text reads:
// a literal without fraction or exponent is an integer when it fits.
func fromNumber(num json.Number) Node {
	s := num.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := num.Int64(); err == nil {
			return Int(i)
		}
	}
	f, err := num.Float64()
	if err != nil {
		return Str(s)
	}
	return Float(f)
}

// DecodeJSON parses a JSON document into a Node. Numbers without fraction
// or exponent become integers.
func DecodeJSON(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return Node{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return Node{}, fmt.Errorf("invalid JSON: unexpected data after top-level value")
	}
	return FromValue(v)
}

// DecodeYAML parses a YAML document into a Node.
func DecodeYAML(data []byte) (Node, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Node{}, fmt.Errorf("invalid YAML: %w", err)
	}
	return FromValue(v)
}

// Decode parses data as JSON, or as YAML when format is "yaml" or "yml".
func Decode(data []byte, format string) (Node, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		return DecodeYAML(data)
	default:
		return DecodeJSON(data)
	}
}
