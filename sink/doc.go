// Package sink provides ready-made delivery targets for finished research
// runs. A sink receives the orchestrator's Outcome exactly once per run.
//
// Implementations:
//
//   - Memory: an in-process store for tests, examples and single-process
//     prototypes.
//   - Writer: streams outcomes as JSON documents to any io.Writer, one
//     document per run.
//
// Custom targets (databases, queues, object stores) implement
// orchestrator.Sink directly or wrap a function with orchestrator.SinkFunc.
package sink
