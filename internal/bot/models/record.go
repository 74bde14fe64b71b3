// Package models defines the data model persisted by the bot and the
// inbound event shapes produced by the messaging transport.
package models

import "time"

// Kind classifies an indexed file and selects the re-transmission call
// used to deliver it.
type Kind string

const (
	KindDocument Kind = "document"
	KindVideo    Kind = "video"
	KindPhoto    Kind = "photo"
	KindUnknown  Kind = "unknown"
)

// ParseKind maps a raw kind discriminator to a Kind. Anything unrecognized
// becomes KindUnknown; such records are indexed but not deliverable.
func ParseKind(raw string) Kind {
	switch Kind(raw) {
	case KindDocument, KindVideo, KindPhoto:
		return Kind(raw)
	default:
		return KindUnknown
	}
}

// Placeholder returns a display name used when the source event carries
// no file name, so the record stays searchable.
func (k Kind) Placeholder() string {
	switch k {
	case KindDocument:
		return "Document"
	case KindVideo:
		return "Video"
	case KindPhoto:
		return "Photo"
	default:
		return "File"
	}
}

// FileRecord is one indexed file.
type FileRecord struct {
	// ID is the stable record identity. It never changes once the record
	// exists, even when the transport reissues the transmit handle.
	ID string
	// TransmitHandle is the opaque token used to re-send the file without
	// holding the binary locally. May change across the record's lifetime.
	TransmitHandle string
	// Name is the display name, matched case-insensitively by search.
	Name string
	// Kind selects the re-transmission operation.
	Kind Kind
	// Caption is optional text sent along with the delivered file.
	Caption string
	// CreatedAt is the insertion instant; search results are ordered by it.
	CreatedAt time.Time
}
