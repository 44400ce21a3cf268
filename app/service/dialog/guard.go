package dialog

import (
	"fairwaydesk/app/service/session"

	"github.com/elliotchance/pie/v2"
)

// shouldSuppress reports whether the candidate task repeats the most recent
// task in history with no company turn in between. Without new backend data
// a retry cannot go differently, so the orchestrator substitutes a canned
// apology instead of executing it again.
func shouldSuppress(candidate *session.Task, history []session.Turn) bool {
	prevIdx := -1
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == session.RoleAssistant && history[i].Task != nil {
			prevIdx = i
			break
		}
	}

	if prevIdx < 0 {
		return false
	}

	if !history[prevIdx].Task.Equal(candidate) {
		return false
	}

	return !pie.Any(history[prevIdx+1:], func(turn session.Turn) bool {
		return turn.Role == session.RoleCompany
	})
}
