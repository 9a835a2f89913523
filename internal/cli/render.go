package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/roach88/ahghee/internal/compiler"
	"github.com/roach88/ahghee/internal/engine"
	"github.com/roach88/ahghee/internal/ir"
	"github.com/roach88/ahghee/internal/session"
	"github.com/roach88/ahghee/internal/syntax"
)

// StatusPrefix starts every status line.
const StatusPrefix = "status> "

// hashWidth is how much of a content hash the history table shows.
const hashWidth = 12

// Renderer prints command results. Text output is status lines plus a
// node table per item; JSON output is one CLIResponse per command.
type Renderer struct {
	w        io.Writer
	json     bool
	useColor bool
}

// NewRenderer creates a renderer for format ("text" or "json"). Colors
// are used only when w is a terminal.
func NewRenderer(w io.Writer, format string) *Renderer {
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = !color.NoColor && (f == os.Stdout || f == os.Stderr)
	}
	return &Renderer{w: w, json: format == "json", useColor: useColor}
}

type resultJSON struct {
	Command   string             `json:"command"`
	Kind      string             `json:"kind"`
	Flags     compiler.PrintMode `json:"flags,omitempty"`
	IDs       []ir.NodeID        `json:"ids"`
	Written   int                `json:"written,omitempty"`
	Items     []itemJSON         `json:"items,omitempty"`
	ElapsedMS int64              `json:"elapsed_ms"`
}

type itemJSON struct {
	ID      ir.NodeID     `json:"id"`
	Nodes   []ir.Node     `json:"nodes,omitempty"`
	History []versionJSON `json:"history,omitempty"`
	Error   *CLIError     `json:"error,omitempty"`
}

type versionJSON struct {
	Seq         int64   `json:"seq"`
	ContentHash string  `json:"content_hash"`
	Node        ir.Node `json:"node"`
}

// Result prints one command outcome.
func (r *Renderer) Result(res session.Result) error {
	if r.json {
		return r.resultJSON(res)
	}

	switch {
	case res.Err != nil:
		r.status(res.Status(), false)

	case res.Kind == syntax.CommandPut:
		r.status(res.Status(), true)
		if res.Flags.Has(compiler.PrintVerbose) {
			r.status(fmt.Sprintf("%d node(s) queued for flush", res.Written), true)
		}

	default:
		for _, item := range res.Items {
			r.status(session.ItemStatus(item), item.Err == nil)
			if item.Err != nil {
				continue
			}
			r.nodes(item.Nodes)
			if res.Flags.Has(compiler.PrintHistory) {
				r.versions(res.History[item.ID.Key()])
			}
		}
		if res.Flags.Has(compiler.PrintTimes) {
			r.status(res.Status(), res.OK())
		}
	}
	return nil
}

func (r *Renderer) resultJSON(res session.Result) error {
	data := resultJSON{
		Command:   res.Command,
		Kind:      res.Kind.String(),
		Flags:     res.Flags,
		IDs:       res.IDs,
		Written:   res.Written,
		ElapsedMS: res.Elapsed.Milliseconds(),
	}
	if data.IDs == nil {
		data.IDs = []ir.NodeID{}
	}

	failed := 0
	for _, item := range res.Items {
		out := itemJSON{ID: item.ID, Nodes: item.Nodes}
		if item.Err != nil {
			failed++
			out.Error = &CLIError{Code: ErrorCode(item.Err), Message: item.Err.Error()}
		}
		for _, v := range res.History[item.ID.Key()] {
			out.History = append(out.History, versionJSON{Seq: v.Seq, ContentHash: v.ContentHash, Node: v.Node})
		}
		data.Items = append(data.Items, out)
	}

	resp := CLIResponse{Status: "ok", Data: data, TraceID: res.Command}
	switch {
	case res.Err != nil:
		resp.Status = "error"
		resp.Error = &CLIError{Code: ErrorCode(res.Err), Message: res.Err.Error()}
	case failed > 0:
		resp.Status = "error"
		resp.Error = &CLIError{
			Code:    ErrCodeGeneric,
			Message: fmt.Sprintf("%d of %d item(s) failed", failed, len(res.Items)),
		}
	}
	return json.NewEncoder(r.w).Encode(resp)
}

// Rejected prints an input that failed before any command ran, such as
// a syntax error.
func (r *Renderer) Rejected(input string, err error) error {
	if r.json {
		return json.NewEncoder(r.w).Encode(CLIResponse{
			Status:  "error",
			Error:   &CLIError{Code: ErrorCode(err), Message: err.Error()},
			TraceID: input,
		})
	}
	r.status(fmt.Sprintf("err(%v)", err), false)
	return nil
}

// History prints every stored version of id.
func (r *Renderer) History(id ir.NodeID, versions []engine.Version) error {
	if r.json {
		out := itemJSON{ID: id}
		for _, v := range versions {
			out.History = append(out.History, versionJSON{Seq: v.Seq, ContentHash: v.ContentHash, Node: v.Node})
		}
		return json.NewEncoder(r.w).Encode(CLIResponse{Status: "ok", Data: out})
	}

	r.status(fmt.Sprintf("history(%s).done", id), true)
	r.versions(versions)
	if len(versions) > 0 {
		r.nodes([]ir.Node{versions[len(versions)-1].Node})
	}
	return nil
}

func (r *Renderer) status(body string, ok bool) {
	if r.useColor {
		if ok {
			body = color.GreenString(body)
		} else {
			body = color.RedString(body)
		}
	}
	fmt.Fprintln(r.w, StatusPrefix+body)
}

// nodes prints a node | key | value table, one row per attribute.
func (r *Renderer) nodes(nodes []ir.Node) {
	if len(nodes) == 0 {
		fmt.Fprintln(r.w, "_No nodes_")
		return
	}

	table := newTable(r.w, 3)
	table.Header([]string{"node", "key", "value"})
	for _, n := range nodes {
		id := n.ID.String()
		if len(n.Attributes) == 0 {
			table.Append([]string{id, "", ""})
			continue
		}
		for _, kv := range n.Attributes {
			table.Append([]string{id, ir.DisplayTMD(kv.Key), ir.DisplayTMD(kv.Value)})
		}
	}
	table.Render()
}

// versions prints a seq | hash | attributes table.
func (r *Renderer) versions(versions []engine.Version) {
	table := newTable(r.w, 3)
	table.Header([]string{"seq", "hash", "attributes"})
	for _, v := range versions {
		hash := v.ContentHash
		if len(hash) > hashWidth {
			hash = hash[:hashWidth]
		}
		table.Append([]string{
			strconv.FormatInt(v.Seq, 10),
			hash,
			strconv.Itoa(len(v.Node.Attributes)),
		})
	}
	table.Render()
}

func newTable(w io.Writer, columns int) *tablewriter.Table {
	alignment := make([]tw.Align, columns)
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}
	return tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
}
