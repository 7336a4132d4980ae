// Package engine implements the orchestration facade: it asks the
// generator for a task, lets it call tools such as fetch_dataset, parses
// the final answer against the output contract, and runs the resulting
// code in the sandbox.
//
// Two strategies share one code path. "single" allows one round of tool
// calls before a final answer is forced; "loop" allows up to MaxTurns
// rounds. Execution failures are returned as values inside the
// ExecutionResult, never as errors.
package engine
