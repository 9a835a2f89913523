package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix allows the
// algorithm to change without colliding with stored hashes.
const (
	DomainNode     = "ahghee/node/v1"
	DomainPipeline = "ahghee/pipeline/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator keeps domain and data boundaries unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// NodeContentHash computes the content hash of a node's identity and
// attributes. Pointers and fragments are storage placement and are
// excluded, so a node re-added unchanged hashes identically.
func NodeContentHash(n Node) (string, error) {
	body := struct {
		Graph      string     `json:"graph"`
		IRI        string     `json:"iri"`
		Attributes []KeyValue `json:"attributes"`
	}{
		Graph:      n.ID.Graph,
		IRI:        n.ID.IRI,
		Attributes: n.Attributes,
	}
	if body.Attributes == nil {
		body.Attributes = []KeyValue{}
	}

	canonical, err := MarshalCanonical(body)
	if err != nil {
		return "", fmt.Errorf("NodeContentHash: %w", err)
	}
	return hashWithDomain(DomainNode, canonical), nil
}

// ContentHash hashes any JSON-encodable value under domain.
func ContentHash(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("ContentHash: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}

// MustNodeContentHash is like NodeContentHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustNodeContentHash(n Node) string {
	h, err := NodeContentHash(n)
	if err != nil {
		panic(err)
	}
	return h
}
