// Package imagegen acquires illustrations from a primary generation backend
// and, when the primary refuses the request for account tier or quota
// reasons, from a secondary backend.
//
// The Fetcher drives one acquisition:
//
//	Init -> PrimaryAttempt -> Success | Classify
//	Classify -> FallbackAttempt | Terminal
//	FallbackAttempt -> Success | Terminal
//	Success -> Saved | Terminal (empty payload)
//
// Classify decides fallback eligibility from a typed BackendError reason when
// the backend provides one, and otherwise from the similarity between the
// failure message and a known billing signature (threshold 0.8). At most one
// fallback hop is made per acquisition.
package imagegen
