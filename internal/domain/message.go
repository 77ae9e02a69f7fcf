package domain

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MediaPart is a raw attachment destined for the LLM provider.
type MediaPart struct {
	Data     []byte
	MimeType string
}

// FilePart is a media part with an optional original filename.
type FilePart struct {
	MediaPart
	Name string
}

// ChatMessage is the provider-agnostic representation of one conversation
// turn. Content may be empty as long as at least one media sequence is not.
type ChatMessage struct {
	Role    string
	Content string
	Images  []MediaPart
	Files   []FilePart
	Audios  []MediaPart
}

// Empty reports whether the message carries neither text nor media.
// The normalizer never emits such a message.
func (m ChatMessage) Empty() bool {
	return m.Content == "" && len(m.Images) == 0 && len(m.Files) == 0 && len(m.Audios) == 0
}
