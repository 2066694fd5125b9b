package reporter

import (
	"context"
	"net"
	"sync"

	"github.com/aalemi-dev/oboe/event"
	"github.com/aalemi-dev/oboe/metadata"
)

// udpTransport sends one BSON datagram per event.
type udpTransport struct {
	address string

	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

func newUDPTransport(cfg UDPConfig) (*udpTransport, error) {
	u := &udpTransport{address: cfg.Address}
	if cfg.Connect {
		if _, err := u.connection(context.Background()); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// connection dials on first use and keeps the socket for later reports.
// It never dials once the transport is closed.
func (u *udpTransport) connection(ctx context.Context) (net.Conn, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return nil, ErrClosed
	}
	if u.conn != nil {
		return u.conn, nil
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", u.address)
	if err != nil {
		return nil, err
	}
	u.conn = conn
	return conn, nil
}

func (u *udpTransport) send(ctx context.Context, _ metadata.Metadata, _ *event.Event, payload []byte) (int, error) {
	conn, err := u.connection(ctx)
	if err != nil {
		return 0, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetWriteDeadline(deadline); err != nil {
			return 0, err
		}
	}
	return conn.Write(payload)
}

func (u *udpTransport) close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.closed = true
	if u.conn == nil {
		return nil
	}
	err := u.conn.Close()
	u.conn = nil
	return err
}
