package domain

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one entry in the chat transcript. The transcript is
// append-only; insertion order is the conversation order and is also what
// gets sent to the relay as recent history.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// FallbackReply is returned when the LLM provider produced no usable reply.
const FallbackReply = "Sorry, I couldn't generate a reply."
