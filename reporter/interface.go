package reporter

import (
	"context"

	"github.com/aalemi-dev/oboe/event"
	"github.com/aalemi-dev/oboe/metadata"
)

//go:generate mockgen -destination=mock_reporter.go -package=reporter github.com/aalemi-dev/oboe/reporter Reporter

// Reporter delivers finished events. *Client implements it.
type Reporter interface {
	// Report stamps e, encodes it and hands it to the transport exactly
	// once. md is the position of the reporting context and must belong to
	// the event's trace. It returns the number of bytes written.
	Report(ctx context.Context, md metadata.Metadata, e *event.Event) (int, error)

	// Close releases the transport. Reports after Close fail with ErrClosed.
	Close() error
}

// transport is one delivery mechanism. payload is the encoded event.
type transport interface {
	send(ctx context.Context, md metadata.Metadata, e *event.Event, payload []byte) (int, error)
	close() error
}
