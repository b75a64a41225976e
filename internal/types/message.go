package types

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatMessage is one entry of a chat transcript.
type ChatMessage struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// MessageView is a transcript entry together with its inline formatting.
type MessageView struct {
	Message   ChatMessage
	Fragments []Fragment
	// Pending is set on the model placeholder until its first chunk arrives.
	Pending bool
}
