package models

// Role identifies who produced a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleInfo marks local notices. They never reach the backend.
	RoleInfo Role = "info"
)

// ParseRole maps a backend role string onto a display role.
// Anything that is not "user" is treated as the assistant.
func ParseRole(s string) Role {
	if s == string(RoleUser) {
		return RoleUser
	}
	return RoleAssistant
}

// Message represents a chat message for TUI display
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Label returns the prefix shown before the message content
func (m Message) Label() string {
	switch m.Role {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Neuro"
	default:
		return ""
	}
}
