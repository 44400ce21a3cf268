package session

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleCompany   Role = "company"
	RoleSystem    Role = "system"
)

// Task is a structured backend request extracted from a model decision.
// Params holds the full kind-specific mapping, equality covers every key
// so new parameters automatically participate in repetition checks.
type Task struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

func (t *Task) Equal(other *Task) bool {
	if t == nil || other == nil {
		return t == other
	}

	if t.Kind != other.Kind || len(t.Params) != len(other.Params) {
		return false
	}

	for k, v := range t.Params {
		if ov, ok := other.Params[k]; !ok || ov != v {
			return false
		}
	}

	return true
}

// Turn is one role-tagged message of a conversation. Assistant turns carry
// the serialized decision as Content and, when the decision was a task, the
// parsed Task as well, so history scans never re-parse Content.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Task    *Task  `json:"task,omitempty"`
}
