package domain

import (
	"strings"
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single prior turn threaded through the generation
// provider. The history is owned by the chat engine and replaced wholesale
// with whatever the provider reports after each turn; it is never edited
// locally.
type ChatMessage struct {
	// Role is "user" or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// Citation links a span of generated response text to the corpus documents
// that justify it. Start and End are byte offsets into the response text,
// not into the source documents.
type Citation struct {
	// ID is assigned by the store on persistence; zero until then.
	ID int64

	// MessageID links to the persisted assistant message; zero until stored.
	MessageID int64

	// Start is the inclusive start offset into the response text.
	Start int

	// End is the exclusive end offset into the response text.
	End int

	// Text is the cited span.
	Text string

	// DocumentIDs are the retrieved-chunk ids backing this span, in the
	// order the provider reported them.
	DocumentIDs []string
}

// docIDDelimiter separates document ids when a citation's id list is
// persisted as a single column.
const docIDDelimiter = ","

// JoinDocumentIDs serialises a citation id list for storage.
func JoinDocumentIDs(ids []string) string {
	return strings.Join(ids, docIDDelimiter)
}

// SplitDocumentIDs reverses JoinDocumentIDs. An empty string yields nil,
// so a zero-length list round-trips.
func SplitDocumentIDs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, docIDDelimiter)
}

// ChatResult is the outcome of one completed turn.
type ChatResult struct {
	// Text is the full assistant response, text fragments concatenated
	// in arrival order.
	Text string

	// Citations are spans into Text. Empty when the turn was ungrounded
	// or the provider reported none.
	Citations []Citation

	// Documents are the retrieved chunks the provider actually used.
	Documents []RetrievedChunk
}

// ChatSession groups persisted messages under one conversation.
type ChatSession struct {
	// ID is a generated UUID.
	ID string

	// Title is user-supplied or defaulted at creation time.
	Title string

	// CreatedAt is when the session was created.
	CreatedAt time.Time
}

// DefaultSessionTitle builds the fallback title for a session created
// without one.
func DefaultSessionTitle(now time.Time) string {
	return "Chat " + now.Format("2006-01-02 15:04")
}

// Message is a persisted chat message. Assistant messages may carry the
// citations produced by the turn that generated them.
type Message struct {
	// ID is assigned by the store.
	ID int64

	// SessionID links to the owning ChatSession.
	SessionID string

	// Role is "user" or "assistant".
	Role string

	// Content is the message text.
	Content string

	// AIModel identifies the model that produced an assistant message.
	AIModel string

	// Link is an optional URL associated with the message.
	Link string

	// CreatedAt is when the message was stored.
	CreatedAt time.Time

	// Citations are the spans backing an assistant message.
	Citations []Citation
}

// ValidRole reports whether role is one of the accepted message roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}
