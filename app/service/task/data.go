package task

import "strings"

const (
	KindQueryUser        = "query_user"
	KindQueryGeneralData = "query_general_data"

	ParamUserEmail = "user_email"
	ParamQuestion  = "question"
)

const (
	MarkerGeneralData = "GENERAL_DATA_RESULT"
	MarkerUserLookup  = "USER_LOOKUP_RESULT"
	MarkerUnknownTask = "UNKNOWN_TASK"

	SentinelNoResult  = "NO_RESULT"
	SentinelNoAccount = "NO_ACCOUNT"
)

// Result is an executor outcome as it re-enters the conversation: an origin
// marker plus the payload text, which is either real data or a sentinel.
type Result struct {
	Marker  string
	Payload string
}

// Text renders the company-turn content the model sees on its next call.
func (r Result) Text() string {
	return r.Marker + "\n" + r.Payload
}

func markerFor(kind string) string {
	switch kind {
	case KindQueryUser:
		return MarkerUserLookup
	case KindQueryGeneralData:
		return MarkerGeneralData
	default:
		return strings.ToUpper(kind) + "_RESULT"
	}
}
