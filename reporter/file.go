package reporter

import (
	"context"
	"os"
	"sync"

	"github.com/aalemi-dev/oboe/event"
	"github.com/aalemi-dev/oboe/metadata"
)

// fileTransport appends encoded events to one file.
type fileTransport struct {
	mu   sync.Mutex
	file *os.File
}

func newFileTransport(cfg FileConfig) (*fileTransport, error) {
	f, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &fileTransport{file: f}, nil
}

func (t *fileTransport) send(_ context.Context, _ metadata.Metadata, _ *event.Event, payload []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.file.Write(payload)
}

func (t *fileTransport) close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.file.Close()
}

// noopTransport discards events.
type noopTransport struct{}

func (noopTransport) send(_ context.Context, _ metadata.Metadata, _ *event.Event, payload []byte) (int, error) {
	return len(payload), nil
}

func (noopTransport) close() error { return nil }
