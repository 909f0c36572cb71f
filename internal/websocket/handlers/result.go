package handlers

// EmissionScope describes where an outbound event should be delivered.
type EmissionScope int

const (
	emissionScopeUnknown EmissionScope = iota
	emissionScopeCaller
	emissionScopeRoom
)

// Emission describes a single outbound event produced by a handler call. The
// transport adapter performs the actual delivery.
type Emission struct {
	scope      EmissionScope
	documentID string
	event      string
	payload    any
	skipSelf   bool
}

func newCallerReply(event string, payload any) Emission {
	return Emission{scope: emissionScopeCaller, event: event, payload: payload}
}

func newRoomBroadcast(documentID, event string, payload any) Emission {
	return Emission{scope: emissionScopeRoom, documentID: documentID, event: event, payload: payload, skipSelf: true}
}

// IsCaller reports whether the event goes back to the calling socket only.
func (e Emission) IsCaller() bool { return e.scope == emissionScopeCaller }

// IsRoom reports whether the event fans out to the document room.
func (e Emission) IsRoom() bool { return e.scope == emissionScopeRoom }

// DocumentID returns the target room for room-scoped emissions.
func (e Emission) DocumentID() string { return e.documentID }

// Event returns the event name.
func (e Emission) Event() string { return e.event }

// Payload returns the event payload.
func (e Emission) Payload() any { return e.payload }

// SkipSelf reports whether the transport adapter must not echo the event back
// to the calling socket.
func (e Emission) SkipSelf() bool { return e.skipSelf }

// EventResult is the output of a handler invocation.
type EventResult struct {
	joinedDocumentID string
	leftDocumentID   string
	emissions        []Emission
}

// NewEventResult constructs a handler result.
func NewEventResult(emissions []Emission) EventResult {
	return EventResult{emissions: emissions}
}

// Emissions returns the outbound events requested by the handler.
func (r EventResult) Emissions() []Emission { return r.emissions }

// JoinedDocumentID is non-empty when the handler moved the caller socket into
// a document room; the transport adapter records it on the socket state.
func (r EventResult) JoinedDocumentID() string { return r.joinedDocumentID }

// LeftDocumentID is non-empty when the handler removed the caller socket from
// a document room.
func (r EventResult) LeftDocumentID() string { return r.leftDocumentID }
