package tool

import (
	"errors"

	"github.com/hupe1980/learnmesh/core"
	"github.com/hupe1980/learnmesh/internal/util"
	"github.com/hupe1980/learnmesh/performance"
)

// PerformanceToolName is the name of the score aggregation tool.
const PerformanceToolName = "get_student_overall_performance"

type performanceInput struct {
	CurrentQuizPercentage float64 `json:"current_quiz_percentage" description:"Percentage scored on the quiz just completed (0-100)." minimum:"0" maximum:"100"`
}

// NewPerformanceTool exposes tracker as a tool. The current quiz result is
// appended to the session's rolling window and the overall percentage over
// the most recent results is returned.
func NewPerformanceTool(tracker *performance.Tracker) *FunctionTool {
	return NewFunctionToolFromStruct(
		PerformanceToolName,
		"Record the student's latest quiz percentage and return the overall percentage across the most recent quizzes.",
		performanceInput{},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			score, _ := util.ToFloat(args["current_quiz_percentage"])
			res, err := tracker.RecordAndAggregate(tc.Context(), tc, score)
			if err != nil {
				var verr *performance.ValidationError
				if errors.As(err, &verr) {
					return nil, &ToolError{Message: verr.Error(), Code: CodeValidation, Err: err}
				}
				return nil, &ToolError{Message: err.Error(), Code: CodeStoreFailure, Err: err}
			}
			return map[string]any{
				"status":             res.Status,
				"overall_percentage": res.OverallPercentage,
				"quizzes_counted":    res.Count,
			}, nil
		},
	)
}
