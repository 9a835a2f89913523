// Package ir provides the node and value data model for ahghee.
//
// This package contains type definitions and pure functions only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Node identity is (Graph, IRI). Remote and Pointer are addressing hints.
//   - DataBlock is a sealed union: exactly one case is held at a time.
//   - JSON field names use lowerCamelCase, matching the external node literal form.
//   - Content hashes use canonical JSON (RFC 8785 key order, NFC strings).
package ir
