// Package artifact provides the in-memory core.ArtifactStore. Every
// (session, name) pair owns a version counter that starts at 1 and never
// rewinds, not even across Delete. Payloads are copied on the way in and out.
//
// The sqlite sub-package is the durable variant with the same contract.
package artifact
