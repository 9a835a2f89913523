// Package queryir provides the compiled pipeline representation for ahghee
// get commands.
//
// A pipeline is a singly linked chain of Steps evaluated in order:
//
//	get "n1" | follow any[1:2] | where ("age" > 21) | limit 5
//
//	Step{Follow} -> Step{Filter} -> Step{Limit}
//
// SEALED INTERFACES:
//
// Operator, EdgeExpr, FilterExpr and Clude are sealed interfaces using the
// marker method pattern. Only types in this package implement them, which
// gives executors exhaustive type switches:
//
//	switch op := step.Op.(type) {
//	case Follow:
//	case Filter:
//	case Skip:
//	case Limit:
//	case Fields:
//	}
//
// PUSHDOWN:
//
// Filters whose comparisons use scalar values can be evaluated by a storage
// backend (see querysql). Validate reports stages that must be evaluated in
// memory. Non-portable pipelines still execute correctly; the warnings only
// describe where evaluation happens.
//
// All literal values use ir.DataBlock, so a compiled pipeline has a single
// canonical JSON encoding and a stable content hash.
package queryir
