package chat

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Conn is the transport surface the chat core needs from one accepted
// connection. The descriptor returned by Fd doubles as the registry slot id
// and as the readiness-poll key.
type Conn interface {
	io.ReadWriteCloser
	Fd() int
}

// Client represents a connected participant: its slot id, display nickname,
// and the inbox ring holding bytes read but not yet framed into messages.
type Client struct {
	id      int
	nick    string
	inbox   *RingBuffer
	conn    Conn
	session string
}

func newClient(conn Conn, inboxSize int) *Client {
	id := conn.Fd()
	return &Client{
		id:      id,
		nick:    fmt.Sprintf("user:%d", id),
		inbox:   NewRingBuffer(inboxSize),
		conn:    conn,
		session: uuid.NewString(),
	}
}

// ID returns the registry slot id.
func (c *Client) ID() int { return c.id }

// Nick returns the current display nickname.
func (c *Client) Nick() string { return c.nick }

// SetNick replaces the nickname verbatim; duplicates are permitted.
func (c *Client) SetNick(nick string) { c.nick = nick }

// Session returns the correlation id minted at registration, used only in
// log lines.
func (c *Client) Session() string { return c.session }

// deliver writes payload to the client's transport without retry or
// queueing. Short and failed writes are dropped so a slow peer can never
// stall the loop or grow server memory.
func (c *Client) deliver(payload []byte) {
	_, _ = c.conn.Write(payload)
}
