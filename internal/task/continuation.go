package task

import "fmt"

// Sentinel strings shared across the dispatcher, tools, and tasks.
const (
	SentinelAsyncTask  = "[ASYNC_TASK]"
	SentinelCannotCraft = "[CANNOT_CRAFT]"
)

// Continuation bridges a completed or failed task back into the
// conversation: planContext recalls why the plan exists, nextSteps is
// either a deterministic "Call tool_name({json})" directive or free-form
// guidance for the LLM.
type Continuation struct {
	OwnerID     string
	PlanContext string
	NextSteps   string

	// FallbackStrategies lists alternative approaches offered on failure,
	// appended to the failure message as a numbered list.
	FallbackStrategies []string
}

// SuccessMessage embeds the task result, the plan context, and the literal
// next steps, prefixed with the task-complete sentinel.
func (c *Continuation) SuccessMessage(taskDesc, result string) string {
	return fmt.Sprintf("[TASK_COMPLETE] %s — %s\nPlan context: %s\nNext: %s",
		taskDesc, result, c.PlanContext, c.NextSteps)
}

// FailureMessage embeds the failure reason, forbids re-invoking the
// originating planner tool, and lists enumerated fallback strategies.
func (c *Continuation) FailureMessage(taskDesc, reason string) string {
	msg := fmt.Sprintf("[TASK_FAILED] %s — Reason: %s\nPlan context: %s\nDo not re-invoke the tool that produced this plan.",
		taskDesc, reason, c.PlanContext)
	if len(c.FallbackStrategies) == 0 {
		return msg
	}
	for i, s := range c.FallbackStrategies {
		msg += fmt.Sprintf("\n%d. %s", i+1, s)
	}
	return msg
}
