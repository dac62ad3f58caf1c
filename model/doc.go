// Package model defines the provider‑agnostic abstractions and concrete
// helpers for text synthesis inside ResearchMesh.
//
// Core goals:
//   - Keep request/response shapes minimal and transport independent
//   - Surface token usage and spend so runs can account for model cost
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (e.g. OpenAI, Anthropic) implement the Model interface from this
// package so agents remain decoupled from vendor SDKs.
package model
