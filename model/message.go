package model

// Message roles understood by every completion backend.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents one entry of a run's context.
//
// Name carries the tool name on tool-role messages so adapters can render
// "Tool '<name>' returned:" turns for backends without a tool role.
type Message struct {
	Role       string
	Content    string
	Name       string
	ToolCallID string
}

// Context is an append-only sequence of messages owned by a single run.
type Context []Message

// Append returns the context extended by msg. The receiver is never modified
// in place, so slices handed to a provider stay stable.
func (c Context) Append(msg Message) Context {
	next := make(Context, len(c), len(c)+1)
	copy(next, c)
	return append(next, msg)
}
