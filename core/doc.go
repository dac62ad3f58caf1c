// Package core provides the foundational domain types, interfaces and execution
// contexts used by ResearchMesh. It defines the core abstractions for:
//
//   - Subjects (the company a run investigates)
//   - Agents (units of research work with declared read/write dependencies)
//   - Field values (found / not applicable / failed outcomes per field)
//   - Results and usage accounting (cost, calls, elapsed time)
//   - Reports (the quality gate verdict that drives run termination)
//
// The package intentionally keeps implementation concerns (state merging,
// orchestration, concrete agents, providers) out of scope, exposing small
// interfaces to enable custom backends and extensions. All exported
// identifiers include concise documentation to aid discoverability and
// external consumption.
package core
