// Package envelope decodes coordinator payloads that arrive either as direct
// Lambda invocations or wrapped in SNS notification records.
package envelope

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"

	"github.com/AfricanTobacco/Daily-Coordinator/internal/domain"
)

const snsEventSource = "aws:sns"

// notice mirrors the loosely shaped update payloads posted by callers.
type notice struct {
	TaskName      string `json:"task_name"`
	Task          string `json:"task"`
	CoordinatorID string `json:"coordinator_id"`
	Status        string `json:"status"`
	Details       string `json:"details"`
	Message       string `json:"message"`
}

// Event extracts the coordinator event carried by raw. The boolean is false
// when the payload carries no event data at all: an empty object, or an SNS
// envelope without an aws:sns record. A plain-text SNS message yields a zero
// event so the caller still notifies with defaults.
func Event(raw json.RawMessage) (domain.CoordinatorEvent, bool) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil || probe == nil {
		return domain.CoordinatorEvent{}, false
	}

	if _, ok := probe["Records"]; ok {
		var env events.SNSEvent
		if err := json.Unmarshal(raw, &env); err != nil {
			return domain.CoordinatorEvent{}, false
		}
		for _, record := range env.Records {
			if record.EventSource != snsEventSource {
				continue
			}
			var event domain.CoordinatorEvent
			if err := json.Unmarshal([]byte(record.SNS.Message), &event); err != nil {
				return domain.CoordinatorEvent{}, true
			}
			return event, true
		}
		return domain.CoordinatorEvent{}, false
	}

	if len(probe) == 0 {
		return domain.CoordinatorEvent{}, false
	}

	var event domain.CoordinatorEvent
	_ = json.Unmarshal(raw, &event)
	return event, true
}

// Summarize builds a concise digest of the payload for relay targets that
// only need the task name, status and optional context lines.
func Summarize(raw json.RawMessage) domain.Summary {
	summary := domain.Summary{
		Task:   "Daily Coordinator",
		Status: "updated",
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil || probe == nil {
		return summary
	}

	if _, ok := probe["Records"]; ok {
		var env events.SNSEvent
		if err := json.Unmarshal(raw, &env); err != nil {
			return summary
		}
		for _, record := range env.Records {
			if record.EventSource != snsEventSource {
				continue
			}
			summary.Subject = record.SNS.Subject
			summary.Details = record.SNS.Message

			var decoded notice
			if err := json.Unmarshal([]byte(record.SNS.Message), &decoded); err == nil {
				summary.Task = firstNonEmpty(decoded.TaskName, decoded.Task, summary.Task)
				summary.Status = firstNonEmpty(decoded.Status, summary.Status)
				summary.Details = firstNonEmpty(decoded.Details, decoded.Message, summary.Details)
			}
			break
		}
		return summary
	}

	var decoded notice
	_ = json.Unmarshal(raw, &decoded)
	summary.Task = firstNonEmpty(decoded.TaskName, decoded.Task, decoded.CoordinatorID, summary.Task)
	summary.Status = firstNonEmpty(decoded.Status, summary.Status)
	summary.Details = firstNonEmpty(decoded.Details, decoded.Message)
	return summary
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
