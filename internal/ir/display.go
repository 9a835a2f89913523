package ir

import (
	"strconv"
	"strings"
)

// Display renders d for humans: strings unquoted, numbers in their
// shortest form, node references as <id>, and composite values as their
// JSON encoding.
func Display(d DataBlock) string {
	switch v := d.(type) {
	case nil, None:
		return "null"
	case Str:
		return string(v)
	case I32:
		return strconv.FormatInt(int64(v), 10)
	case I64:
		return strconv.FormatInt(int64(v), 10)
	case UI64:
		return strconv.FormatUint(uint64(v), 10)
	case F32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case F64:
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(bool(v))
	case NodeRef:
		return "<" + v.ID.String() + ">"
	}
	b, err := MarshalDataBlock(d)
	if err != nil {
		return "!" + err.Error()
	}
	return string(b)
}

// DisplayTMD renders t like Display, appending a language tag as @tag
// or a datatype as ^^<iri>.
func DisplayTMD(t TMD) string {
	s := Display(t.Data)
	switch m := t.Metadata.(type) {
	case Str:
		if tag, ok := strings.CutPrefix(string(m), LangTagPrefix); ok {
			return s + "@" + tag
		}
	case NodeRef:
		return s + "^^<" + m.ID.IRI + ">"
	}
	return s
}
