package dialog

import (
	"encoding/json"
	"fairwaydesk/app/service/session"
	"regexp"
	"strings"
)

// First non-nested JSON object carrying the task key, used to rescue task
// requests the model buried in prose.
var appTaskRe = regexp.MustCompile(`\{[^{}]*"app_task"[^{}]*\}`)

// Normalize turns whatever the model produced into exactly one well-formed
// Decision. Total by design: malformed output degrades to a plain message,
// it never errors.
func Normalize(raw string) Decision {
	cleaned := stripFences(raw)

	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil || obj == nil {
		obj = extractEmbeddedTask(cleaned)
		if obj == nil {
			return Decision{MessageToUser: strings.TrimSpace(raw)}
		}
	}

	return enforceSingleChannel(obj)
}

// stripFences removes the markdown code fence some models wrap JSON in.
func stripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.Trim(cleaned, "`")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimPrefix(cleaned, "json")

	return strings.TrimSpace(cleaned)
}

func extractEmbeddedTask(s string) map[string]any {
	match := appTaskRe.FindString(s)
	if match == "" {
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(match), &obj); err != nil {
		return nil
	}

	return obj
}

// enforceSingleChannel resolves objects that carry both channels. A task
// embedded inside the message string wins over the message, a bare task key
// wins over a sibling message key, anything without either key becomes a
// message of its own serialization.
func enforceSingleChannel(obj map[string]any) Decision {
	if text, ok := obj["message_to_user"].(string); ok {
		if embedded := extractEmbeddedTask(text); embedded != nil {
			if _, hasTask := embedded["app_task"]; hasTask {
				return taskDecision(embedded)
			}
		}
	}

	if _, ok := obj["app_task"]; ok {
		return taskDecision(obj)
	}

	if v, ok := obj["message_to_user"]; ok {
		return Decision{MessageToUser: stringify(v)}
	}

	data, _ := json.Marshal(obj)
	return Decision{MessageToUser: string(data)}
}

func taskDecision(obj map[string]any) Decision {
	params := make(map[string]string, len(obj)-1)
	for k, v := range obj {
		if k == "app_task" || k == "message_to_user" {
			continue
		}
		params[k] = stringify(v)
	}

	return Decision{Task: &session.Task{
		Kind:   stringify(obj["app_task"]),
		Params: params,
	}}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		data, _ := json.Marshal(t)
		return string(data)
	}
}
