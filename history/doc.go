// Package history records what a round did.
//
// Two parallel records are kept. The sequential history is the ordered list
// of invoke and response events, one invoke and at most one response per
// task; it is what the linearizability checker consumes. The full history is
// the ordered list of resume steps, one entry per resume, and is what replay
// and minimization work from.
//
// Events refer to tasks by id. They copy the method name, argument tuple and
// result out of the task at recording time, so a history stays meaningful
// after the tasks it came from have been restarted or torn down.
package history
