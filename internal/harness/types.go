package harness

// Trace event types.
const (
	EventPut   = "put"
	EventGet   = "get"
	EventLoad  = "load"
	EventError = "error"
)

// TraceEvent records one executed command.
type TraceEvent struct {
	Type    string      `json:"type"`
	Command string      `json:"command"`
	Status  string      `json:"status"`
	Items   []TraceItem `json:"items,omitempty"`
}

// TraceItem records one get result.
type TraceItem struct {
	ID    string   `json:"id"`
	Nodes []string `json:"nodes"`
	Error string   `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every command in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event to the trace.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
