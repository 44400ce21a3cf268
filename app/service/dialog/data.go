package dialog

import (
	"encoding/json"
	"fairwaydesk/app/service/session"
)

// FallbackMessage is the only text a caller ever sees when the agent itself
// fails. Deterministic on purpose, a broken model must not get a second
// chance to phrase the apology.
const FallbackMessage = "I'm sorry, I couldn't process that just now. " +
	"Would you like me to try a different phrasing, or connect you with a human agent (Mon-Fri, 9am-5pm ET)?"

// loopApologyMessage terminates a turn when the model keeps asking for the
// same task without new backend data.
const loopApologyMessage = "Sorry, I couldn't find relevant information for that just now. " +
	"Would you like me to try a different phrasing, or connect you with a human agent (Mon-Fri, 9am-5pm ET)?"

// Decision is the per-cycle model output: either a user-facing message,
// terminal for this turn, or a task request to run before deciding again.
// Exactly one side is ever set, Normalize guarantees it by construction.
type Decision struct {
	MessageToUser string
	Task          *session.Task
}

// encode renders the wire form stored in assistant turns, matching the
// output contract the model is prompted with.
func (d Decision) encode() string {
	if d.Task != nil {
		obj := make(map[string]any, len(d.Task.Params)+1)
		for k, v := range d.Task.Params {
			obj[k] = v
		}
		obj["app_task"] = d.Task.Kind

		data, _ := json.Marshal(obj)
		return string(data)
	}

	data, _ := json.Marshal(map[string]string{"message_to_user": d.MessageToUser})
	return string(data)
}
