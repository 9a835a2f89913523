package ir

import "fmt"

// Kind enumerates the cases of DataBlock.
type Kind int

const (
	KindNone Kind = iota
	KindStr
	KindI32
	KindI64
	KindUI64
	KindF32
	KindF64
	KindBool
	KindNodeRef
	KindMap
	KindArray
	KindRawTyped
)

var kindNames = [...]string{
	KindNone:     "none",
	KindStr:      "str",
	KindI32:      "i32",
	KindI64:      "i64",
	KindUI64:     "ui64",
	KindF32:      "f32",
	KindF64:      "f64",
	KindBool:     "bool",
	KindNodeRef:  "nodeid",
	KindMap:      "map",
	KindArray:    "array",
	KindRawTyped: "typed",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsNumeric reports whether k is one of the integer or float cases.
func (k Kind) IsNumeric() bool {
	switch k {
	case KindI32, KindI64, KindUI64, KindF32, KindF64:
		return true
	}
	return false
}

// DataBlock is a sealed interface representing one value case.
// Only the types in this file implement it. A nil DataBlock reads as None.
type DataBlock interface {
	Kind() Kind
	dataBlock()
}

// Str is a UTF-8 string value.
type Str string

// I32 is a 32-bit signed integer value.
type I32 int32

// I64 is a 64-bit signed integer value.
type I64 int64

// UI64 is a 64-bit unsigned integer value.
type UI64 uint64

// F32 is a 32-bit float value.
type F32 float32

// F64 is a 64-bit float value.
type F64 float64

// Bool is a boolean value.
type Bool bool

// NodeRef references another node.
type NodeRef struct {
	ID NodeID
}

// Map is an ordered list of key/value pairs.
type Map []KeyValue

// Array is an ordered list of values.
type Array []TMD

// RawTyped carries bytes tagged with a media type or datatype IRI.
type RawTyped struct {
	TypeIRI string
	Bytes   []byte
}

// None is the explicit empty case.
type None struct{}

func (Str) Kind() Kind      { return KindStr }
func (I32) Kind() Kind      { return KindI32 }
func (I64) Kind() Kind      { return KindI64 }
func (UI64) Kind() Kind     { return KindUI64 }
func (F32) Kind() Kind      { return KindF32 }
func (F64) Kind() Kind      { return KindF64 }
func (Bool) Kind() Kind     { return KindBool }
func (NodeRef) Kind() Kind  { return KindNodeRef }
func (Map) Kind() Kind      { return KindMap }
func (Array) Kind() Kind    { return KindArray }
func (RawTyped) Kind() Kind { return KindRawTyped }
func (None) Kind() Kind     { return KindNone }

func (Str) dataBlock()      {}
func (I32) dataBlock()      {}
func (I64) dataBlock()      {}
func (UI64) dataBlock()     {}
func (F32) dataBlock()      {}
func (F64) dataBlock()      {}
func (Bool) dataBlock()     {}
func (NodeRef) dataBlock()  {}
func (Map) dataBlock()      {}
func (Array) dataBlock()    {}
func (RawTyped) dataBlock() {}
func (None) dataBlock()     {}

// KindOf returns the case of d, treating nil as None.
func KindOf(d DataBlock) Kind {
	if d == nil {
		return KindNone
	}
	return d.Kind()
}

// Ref is shorthand for a NodeRef to iri in the default graph.
func Ref(iri string) NodeRef {
	return NodeRef{ID: NodeID{IRI: iri}}
}

// AsFloat64 widens a numeric DataBlock. ok is false for non-numeric cases.
func AsFloat64(d DataBlock) (f float64, ok bool) {
	switch v := d.(type) {
	case I32:
		return float64(v), true
	case I64:
		return float64(v), true
	case UI64:
		return float64(v), true
	case F32:
		return float64(v), true
	case F64:
		return float64(v), true
	}
	return 0, false
}

// EqualData reports whether a and b hold the same case and value.
func EqualData(a, b DataBlock) bool {
	if KindOf(a) != KindOf(b) {
		return false
	}
	switch av := a.(type) {
	case nil, None:
		return true
	case NodeRef:
		return av.ID.Equal(b.(NodeRef).ID)
	case Map:
		bv := b.(Map)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !av[i].Equal(bv[i]) {
				return false
			}
		}
		return true
	case Array:
		bv := b.(Array)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !av[i].Equal(bv[i]) {
				return false
			}
		}
		return true
	case RawTyped:
		bv := b.(RawTyped)
		return av.TypeIRI == bv.TypeIRI && string(av.Bytes) == string(bv.Bytes)
	default:
		return a == b
	}
}

// TMD is a value with optional RDF-style metadata: a datatype IRI held as a
// NodeRef, or a language tag held as Str("lang:<tag>").
type TMD struct {
	Data     DataBlock
	Metadata DataBlock
}

// T wraps d in a TMD without metadata.
func T(d DataBlock) TMD {
	return TMD{Data: d}
}

// Equal compares data and metadata.
func (t TMD) Equal(other TMD) bool {
	return EqualData(t.Data, other.Data) && EqualData(t.Metadata, other.Metadata)
}

// LangTagPrefix prefixes language tags stored in TMD metadata.
const LangTagPrefix = "lang:"

// KeyValue is one node attribute or edge.
type KeyValue struct {
	Key   TMD `json:"key"`
	Value TMD `json:"value"`
}

// KV is shorthand for a KeyValue without metadata on either side.
func KV(key, value DataBlock) KeyValue {
	return KeyValue{Key: T(key), Value: T(value)}
}

// Equal compares key and value.
func (kv KeyValue) Equal(other KeyValue) bool {
	return kv.Key.Equal(other.Key) && kv.Value.Equal(other.Value)
}

// EdgeDirection classifies a KeyValue by which sides reference nodes.
type EdgeDirection int

const (
	Property EdgeDirection = iota
	ForwardEdge
	BackwardEdge
	BidirectionalEdge
)

// Direction reports the shape of kv.
func (kv KeyValue) Direction() EdgeDirection {
	keyRef := KindOf(kv.Key.Data) == KindNodeRef
	valRef := KindOf(kv.Value.Data) == KindNodeRef
	switch {
	case keyRef && valRef:
		return BidirectionalEdge
	case keyRef:
		return BackwardEdge
	case valRef:
		return ForwardEdge
	}
	return Property
}

// FragmentSlots is the number of reserved fragment pointers on a built node.
const FragmentSlots = 3

// Node is a graph node: identity, ordered attributes and storage fragments.
type Node struct {
	ID         NodeID          `json:"id"`
	Attributes []KeyValue      `json:"attributes"`
	Fragments  []MemoryPointer `json:"fragments"`
}

// Canonicalize nulls the id pointer and resets fragments to the reserved
// null slots. Built nodes are always canonicalized before storage.
func (n *Node) Canonicalize() {
	n.ID.Pointer = NullMemoryPointer()
	n.Fragments = make([]MemoryPointer, FragmentSlots)
}
