package hub

import "sync"

// Conn is one live client connection known to the hub. The transport
// layer drains Outbound and watches Closed; the hub never touches the
// network itself.
type Conn struct {
	send   chan []byte
	closed chan struct{}
	once   sync.Once
}

func newConn(buffer int) *Conn {
	return &Conn{
		send:   make(chan []byte, buffer),
		closed: make(chan struct{}),
	}
}

// Outbound is the stream of marshaled events for this connection,
// in per-topic publish order.
func (c *Conn) Outbound() <-chan []byte {
	return c.send
}

// Closed is signalled when the hub tears the connection down.
func (c *Conn) Closed() <-chan struct{} {
	return c.closed
}

func (c *Conn) close() {
	c.once.Do(func() {
		close(c.closed)
	})
}
