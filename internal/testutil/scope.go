package testutil

// DefaultScope is the blank node scope id used when none is given.
const DefaultScope = "test-scope"

// FixedScopeGenerator returns the same blank node scope id every time.
//
// Loading the same document twice with it mints the same blank node IRIs,
// which keeps golden output stable.
//
// Thread-safety: FixedScopeGenerator is stateless and safe for concurrent use.
type FixedScopeGenerator struct {
	token string
}

// NewFixedScopeGenerator creates a generator for token. An empty token
// uses DefaultScope.
func NewFixedScopeGenerator(token string) *FixedScopeGenerator {
	if token == "" {
		token = DefaultScope
	}
	return &FixedScopeGenerator{token: token}
}

// Generate returns the fixed scope id.
//
// Implements compiler.ScopeGenerator.
func (g *FixedScopeGenerator) Generate() string {
	return g.token
}
