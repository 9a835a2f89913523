package compiler

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// BlankNodePrefix starts every IRI minted for a blank node.
const BlankNodePrefix = "urn:ahghee:bnode:"

// BlankNodeResolver maps a blank node label to a stable IRI within one
// parse unit.
type BlankNodeResolver interface {
	Resolve(label string) (string, error)
}

// BlankNodeFunc adapts a function to BlankNodeResolver.
type BlankNodeFunc func(label string) (string, error)

// Resolve calls f.
func (f BlankNodeFunc) Resolve(label string) (string, error) {
	return f(label)
}

// ScopeGenerator creates the unique part of a blank node scope.
type ScopeGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 scope ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// BlankNodeScope resolves blank node labels for one document. The same
// label always maps to the same IRI within a scope, and two scopes never
// share IRIs as long as their generator ids differ.
type BlankNodeScope struct {
	mu     sync.Mutex
	prefix string
	labels map[string]string
}

var errEmptyLabel = errors.New("empty blank node label")

// NewBlankNodeScope opens a scope whose id comes from gen. A nil gen uses
// UUIDv7Generator.
func NewBlankNodeScope(gen ScopeGenerator) *BlankNodeScope {
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	return &BlankNodeScope{
		prefix: BlankNodePrefix + gen.Generate() + ":",
		labels: make(map[string]string),
	}
}

// Resolve returns the IRI for label, minting it on first use.
func (s *BlankNodeScope) Resolve(label string) (string, error) {
	if label == "" {
		return "", errEmptyLabel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if iri, ok := s.labels[label]; ok {
		return iri, nil
	}
	iri := s.prefix + label
	s.labels[label] = iri
	return iri, nil
}

// Len returns the number of distinct labels resolved so far.
func (s *BlankNodeScope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.labels)
}
