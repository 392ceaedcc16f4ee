package convert

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kaptinlin/jsonrepair"

	"github.com/mfalcone/bridgo/providers/ai"
	"github.com/mfalcone/bridgo/providers/store"
)

// ErrUnrecognizedRole is returned when a stored message carries a role outside
// the closed set. The store is expected to never produce such a value, so this
// is surfaced to the caller instead of being coerced away.
var ErrUnrecognizedRole = errors.New("bridgo: unrecognized message role")

// ToolResultRecord is the stored JSON encoding of one tool result. Only the
// call ID and the raw result survive persistence; the tool name and arguments
// are not retained, which makes reconstruction lossy by design.
type ToolResultRecord struct {
	ID     string `json:"id"`
	Result any    `json:"result"`
}

// ToProvider converts a stored message into its provider-facing form.
//
// System, user, and plain assistant messages preserve content verbatim.
// Tool-call messages become assistant messages with empty content and the
// parsed call list; tool-result messages become tool messages whose entries
// carry only the call ID and result (see [ToolResultRecord]).
func ToProvider(message store.Message) (ai.Message, error) {
	switch message.Role {
	case store.RoleSystem:
		return ai.Message{Role: ai.RoleSystem, Content: message.Content}, nil

	case store.RoleUser:
		return ai.Message{Role: ai.RoleUser, Content: message.Content}, nil

	case store.RoleAssistant:
		return ai.Message{Role: ai.RoleAssistant, Content: message.Content}, nil

	case store.RoleToolCall:
		// Tool-calling turns carry no prose: content stays empty even if the
		// stored record had text alongside the payload.
		return ai.Message{
			Role:      ai.RoleAssistant,
			ToolCalls: parseJSONList[ai.ToolCall](message.Content),
		}, nil

	case store.RoleToolResult:
		records := parseJSONList[ToolResultRecord](message.Content)
		toolResults := make([]ai.ToolResult, 0, len(records))
		for _, record := range records {
			toolResults = append(toolResults, ai.ToolResult{
				ToolCallID: record.ID,
				Result:     record.Result,
			})
		}
		return ai.Message{Role: ai.RoleTool, ToolResults: toolResults}, nil

	default:
		return ai.Message{}, fmt.Errorf("%w: %q", ErrUnrecognizedRole, message.Role)
	}
}

// AllToProvider converts a stored history into provider messages, preserving
// order. The first unrecognized role aborts the conversion.
func AllToProvider(messages []store.Message) ([]ai.Message, error) {
	out := make([]ai.Message, 0, len(messages))
	for _, message := range messages {
		converted, err := ToProvider(message)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

// EncodeToolCalls renders tool calls into the JSON array form stored in a
// tool_call message's content.
func EncodeToolCalls(calls []ai.ToolCall) (string, error) {
	payload, err := json.Marshal(calls)
	if err != nil {
		return "", fmt.Errorf("bridgo: encode tool calls: %w", err)
	}
	return string(payload), nil
}

// EncodeToolResults renders tool results into the JSON array form stored in a
// tool_result message's content.
func EncodeToolResults(results []ToolResultRecord) (string, error) {
	payload, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("bridgo: encode tool results: %w", err)
	}
	return string(payload), nil
}

// parseJSONList unmarshals content as a JSON array of T. Malformed payloads
// get one jsonrepair retry; anything still unparseable degrades to an empty
// list so a single corrupted record cannot poison a whole conversation.
func parseJSONList[T any](content string) []T {
	if content == "" {
		return nil
	}

	var items []T
	if err := json.Unmarshal([]byte(content), &items); err == nil {
		return items
	}

	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		return nil
	}

	items = nil
	if err := json.Unmarshal([]byte(repaired), &items); err != nil {
		return nil
	}
	return items
}
