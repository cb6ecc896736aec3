// Package collab provides the replicated-document and peer-transport
// collaborators the room registry coordinates. The merge algorithm itself is
// out of scope: a Document is an opaque shared text with change
// notifications, and a Provider is an opaque transport session exposing
// presence and a status field.
package collab

// Document is a handle to the shared replicated content of one room.
type Document interface {
	// Text returns the current serialized content.
	Text() string

	// SetText replaces the content, notifying update listeners. Used both
	// for remote updates and for seeding from a durable record.
	SetText(s string)

	// OnUpdate registers a change-notification callback. Callbacks run
	// synchronously on the goroutine applying the update.
	OnUpdate(fn func())

	// Destroy detaches the document; later updates are dropped.
	Destroy()
}

// Provider is a handle to the peer-transport session bound to a document.
type Provider interface {
	// Peers reports the current presence count, including the local replica.
	Peers() int

	// SetStatusField broadcasts a field of the local awareness state, e.g.
	// the save status shown to connected editors.
	SetStatusField(key, value string)

	// Destroy tears down the transport session.
	Destroy()
}

// Factory creates the document/provider pair for a room. The registry owns
// no transport details beyond this.
type Factory interface {
	Join(roomID string) (Document, Provider, error)
}
