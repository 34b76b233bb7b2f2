package conduit

import "errors"

var (
	// Bus errors.
	ErrBusClosed         = errors.New("conduit: message bus closed")
	ErrAlreadySubscribed = errors.New("conduit: queue already has a subscription")
	ErrNotConnected      = errors.New("conduit: not connected to broker")

	// Lookup errors.
	ErrUnknownWorkflow = errors.New("conduit: unknown workflow type")
)
