// Package models defines the conversation data shared by the controller and its renderers.
package models

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single chat message within a conversation.
// Messages are never mutated once appended to a log.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a message authored by the user.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds a message authored by the assistant.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ActivityState describes what the assistant is currently doing.
type ActivityState int

const (
	ActivityIdle ActivityState = iota
	ActivityThinking
	ActivitySpeaking
)

// String returns the lowercase state name used in status lines.
func (s ActivityState) String() string {
	switch s {
	case ActivityIdle:
		return "idle"
	case ActivityThinking:
		return "thinking"
	case ActivitySpeaking:
		return "speaking"
	default:
		return "unknown"
	}
}
