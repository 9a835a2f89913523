package ir

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// MarshalDataBlock encodes d as a single-member object named after its
// case, e.g. {"str":"alice"} or {"i32":42}. None and nil encode as null.
func MarshalDataBlock(d DataBlock) ([]byte, error) {
	var (
		name string
		body any
	)
	switch v := d.(type) {
	case nil, None:
		return []byte("null"), nil
	case Str:
		name, body = "str", string(v)
	case I32:
		name, body = "i32", int32(v)
	case I64:
		name, body = "i64", int64(v)
	case UI64:
		name, body = "ui64", uint64(v)
	case F32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, fmt.Errorf("f32 %v is not representable in JSON", v)
		}
		name, body = "f32", json.RawMessage(strconv.FormatFloat(float64(v), 'g', -1, 32))
	case F64:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, fmt.Errorf("f64 %v is not representable in JSON", v)
		}
		name, body = "f64", float64(v)
	case Bool:
		name, body = "bool", bool(v)
	case NodeRef:
		name, body = "nodeid", v.ID
	case Map:
		name, body = "map", []KeyValue(v)
		if v == nil {
			body = []KeyValue{}
		}
	case Array:
		name, body = "array", []TMD(v)
		if v == nil {
			body = []TMD{}
		}
	case RawTyped:
		name, body = "typed", rawTypedJSON{TypeIRI: v.TypeIRI, Bytes: v.Bytes}
	default:
		return nil, fmt.Errorf("unknown DataBlock type: %T", d)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]any{name: body}); err != nil {
		return nil, fmt.Errorf("marshal %s: %w", name, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

type rawTypedJSON struct {
	TypeIRI string `json:"typeIri"`
	Bytes   []byte `json:"bytes"`
}

// UnmarshalDataBlock decodes the form produced by MarshalDataBlock.
// Objects naming more than one case are rejected.
func UnmarshalDataBlock(data []byte) (DataBlock, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return None{}, nil
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("datablock: %w", err)
	}
	if len(members) != 1 {
		return nil, fmt.Errorf("datablock: expected exactly one case, got %d", len(members))
	}

	for name, raw := range members {
		return decodeCase(name, raw)
	}
	panic("unreachable")
}

func decodeCase(name string, raw json.RawMessage) (DataBlock, error) {
	switch name {
	case "str":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("str: %w", err)
		}
		return Str(s), nil
	case "i32":
		n, err := strconv.ParseInt(string(raw), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("i32: %w", err)
		}
		return I32(n), nil
	case "i64":
		n, err := strconv.ParseInt(unquote(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("i64: %w", err)
		}
		return I64(n), nil
	case "ui64":
		n, err := strconv.ParseUint(unquote(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ui64: %w", err)
		}
		return UI64(n), nil
	case "f32":
		f, err := strconv.ParseFloat(string(raw), 32)
		if err != nil {
			return nil, fmt.Errorf("f32: %w", err)
		}
		return F32(f), nil
	case "f64":
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("f64: %w", err)
		}
		return F64(f), nil
	case "bool":
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("bool: %w", err)
		}
		return Bool(b), nil
	case "nodeid":
		var id NodeID
		if err := json.Unmarshal(raw, &id); err != nil {
			return nil, fmt.Errorf("nodeid: %w", err)
		}
		return NodeRef{ID: id}, nil
	case "map":
		var kvs []KeyValue
		if err := json.Unmarshal(raw, &kvs); err != nil {
			return nil, fmt.Errorf("map: %w", err)
		}
		if kvs == nil {
			kvs = []KeyValue{}
		}
		return Map(kvs), nil
	case "array":
		var items []TMD
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("array: %w", err)
		}
		if items == nil {
			items = []TMD{}
		}
		return Array(items), nil
	case "typed":
		var rt rawTypedJSON
		if err := json.Unmarshal(raw, &rt); err != nil {
			return nil, fmt.Errorf("typed: %w", err)
		}
		return RawTyped{TypeIRI: rt.TypeIRI, Bytes: rt.Bytes}, nil
	default:
		return nil, fmt.Errorf("unknown datablock case %q", name)
	}
}

// unquote accepts 64-bit integers written either as JSON numbers or as
// decimal strings, the form most JSON emitters use for 64-bit values.
func unquote(raw json.RawMessage) string {
	s := string(bytes.TrimSpace(raw))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

type tmdJSON struct {
	Data     json.RawMessage `json:"data"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// MarshalJSON implements json.Marshaler for TMD.
func (t TMD) MarshalJSON() ([]byte, error) {
	data, err := MarshalDataBlock(t.Data)
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	out := tmdJSON{Data: data}
	if t.Metadata != nil {
		meta, err := MarshalDataBlock(t.Metadata)
		if err != nil {
			return nil, fmt.Errorf("metadata: %w", err)
		}
		out.Metadata = meta
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler for TMD.
func (t *TMD) UnmarshalJSON(data []byte) error {
	var raw tmdJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := UnmarshalDataBlock(raw.Data)
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	t.Data = d
	t.Metadata = nil
	if len(raw.Metadata) > 0 && !bytes.Equal(bytes.TrimSpace(raw.Metadata), []byte("null")) {
		m, err := UnmarshalDataBlock(raw.Metadata)
		if err != nil {
			return fmt.Errorf("metadata: %w", err)
		}
		t.Metadata = m
	}
	return nil
}

// DecodeNode strictly decodes a JSON node literal. Unknown fields are
// rejected so that typos surface instead of silently dropping data.
func DecodeNode(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var n Node
	if err := dec.Decode(&n); err != nil {
		return Node{}, fmt.Errorf("decode node: %w", err)
	}
	return n, nil
}

// EncodeBytes renders b the way RawTyped bytes appear in JSON.
func EncodeBytes(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
