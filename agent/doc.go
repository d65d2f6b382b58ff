// Package agent contains the session engine: the loop that turns user
// input and file context into model rounds, and the execution controller
// that resolves shell commands found in model responses.
//
// # Architecture
//
// An Agent owns exactly one session. It holds the conversation store, the
// context assembler, the safety classifier, and the execution controller,
// and drives them through a single-threaded cooperative loop:
//
//	user input -> conversation -> model backend -> response turn
//	  -> command extraction -> classification -> confirmation -> execution
//	  -> command-result turn -> next round
//
// The only suspension points are the model call, the confirmation prompt,
// and a spawned process; each honors context cancellation. There is no
// shared mutable state across sessions, so no locking.
//
// # Terminal I/O
//
// Terminal interaction is injected through the TerminalIO interface rather
// than read from globals, so the whole loop (including confirmations) runs
// under test with a scripted terminal. The production implementation lives
// in the terminal subpackage.
//
// # Execution controller
//
// Each command candidate moves through an explicit state machine:
//
//	Proposed -> Rejected                     (blocked by the classifier)
//	Proposed -> AwaitingConfirmation -> Skipped | Running
//	Running  -> Completed                    (success, failure, or timeout)
//
// Rejected, Skipped, and Completed are terminal. A blocked candidate is
// refused before any prompt is shown; a declined or interrupted prompt
// skips the candidate; a confirmed command runs through the configured
// shell with capped output and a wall-clock timeout. Completed executions
// are appended to the conversation as command-result turns, so the model
// sees them on the next round.
package agent
