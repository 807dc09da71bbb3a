// Package evm arithmetizes EVM execution traces: it turns opcode semantics
// into polynomial constraints over a fixed-capacity table of field-element
// cells, and assigns a recorded witness trace into that table.
//
// Each execution state is handled by exactly one gadget obeying a dual
// contract: Configure declares the state's constraints (build time, no
// concrete values) and Assign computes the concrete cell values for one trace
// step (run time, strictly from recorded events). The two must agree; a
// mismatch makes the table unsatisfiable and surfaces as a proof-generation
// failure.
//
// Every table row carries the cells of every gadget, gated by per-state
// boolean selectors. The circuit shape is therefore a pure function of the
// chosen CircuitParameters bucket, which is what allows proving keys to be
// cached per bucket.
package evm
