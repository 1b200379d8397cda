// Package performance aggregates a learner's recent quiz results.
//
// Each session owns a ScoreWindow of at most 25 percentages kept in session
// state under the "recent_percentages" key. Tracker.RecordAndAggregate appends
// a new score (evicting the oldest one when full) and reports the rounded mean
// of the window as the overall percentage.
//
// Scores are always percentages in [0,100]. Raw point scores must be converted
// with Percent before submission; out of range values are rejected with a
// *ValidationError and never clamped.
package performance
