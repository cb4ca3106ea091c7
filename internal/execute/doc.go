// Package execute runs compiled conversion commands as subprocesses.
// Processes are polled at a short interval so a cancel request kills
// the child promptly instead of waiting for it to finish. Chained
// commands run step by step with first-failure abort, folding into a
// single shell invocation when a step needs shell semantics.
package execute
