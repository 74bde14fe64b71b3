package models

// FilePosted is an inbound "a file was posted" event. Only events whose
// ChatID matches the configured source channel are indexed.
type FilePosted struct {
	// ChatID is the origin chat of the post.
	ChatID int64
	// UniqueID is the transport's stable identity for the underlying file,
	// empty if the platform does not provide one.
	UniqueID string
	// TransmitHandle is the raw re-send token carried by the event.
	TransmitHandle string
	// Name is the raw file name; may be empty.
	Name string
	// RawKind is the transport's kind discriminator ("document", "video", ...).
	RawKind string
	// Caption is optional text attached to the post.
	Caption string
}

// TextMessage is an inbound text message from a user or chat.
type TextMessage struct {
	ChatID      int64
	IsPrivate   bool
	SenderIsBot bool
	Text        string
}

// CallbackSelection is a user's pick of one search result. Payload carries
// the record identity, not the display label, so duplicate names stay
// independently selectable.
type CallbackSelection struct {
	ChatID  int64
	Payload string
}
