package chat

import "errors"

// Registration failure modes. Both mean the connection cannot be admitted;
// the caller decides whether to notify the peer before closing it.
var (
	// ErrSlotOccupied is returned when a connection id is already registered.
	ErrSlotOccupied = errors.New("connection id already registered")

	// ErrIDOutOfRange is returned when a connection id does not fit the
	// registry's slot table.
	ErrIDOutOfRange = errors.New("connection id out of range")
)

// Registry owns every live Client, keyed by connection id in a fixed slot
// table. The high-water mark tracks the greatest occupied slot so iteration
// never scans the whole id space.
//
// Invariants: highWater == -1 exactly when count == 0; every occupied slot
// index is <= highWater; no two clients share an id.
type Registry struct {
	slots     []*Client
	highWater int
	count     int
	inboxSize int
}

// NewRegistry returns an empty registry admitting ids in [0, capacity).
// Every registered client receives an inbox ring of inboxSize total bytes.
func NewRegistry(capacity, inboxSize int) *Registry {
	return &Registry{
		slots:     make([]*Client, capacity),
		highWater: -1,
		inboxSize: inboxSize,
	}
}

// Register admits the connection under its descriptor id and returns the
// new Client with its default "user:<id>" nickname and an empty inbox.
func (r *Registry) Register(conn Conn) (*Client, error) {
	id := conn.Fd()
	if id < 0 || id >= len(r.slots) {
		return nil, ErrIDOutOfRange
	}
	if r.slots[id] != nil {
		return nil, ErrSlotOccupied
	}

	c := newClient(conn, r.inboxSize)
	r.slots[id] = c
	if id > r.highWater {
		r.highWater = id
	}
	r.count++
	return c, nil
}

// Unregister removes the client at id, closing its transport. Buffered but
// unframed inbox bytes are discarded with the client. Unknown ids are
// ignored.
func (r *Registry) Unregister(id int) {
	if id < 0 || id >= len(r.slots) || r.slots[id] == nil {
		return
	}

	c := r.slots[id]
	r.slots[id] = nil
	r.count--
	_ = c.conn.Close()

	if id == r.highWater {
		r.highWater = -1
		for j := id - 1; j >= 0; j-- {
			if r.slots[j] != nil {
				r.highWater = j
				break
			}
		}
	}
}

// Get returns the client registered at id, or nil.
func (r *Registry) Get(id int) *Client {
	if id < 0 || id >= len(r.slots) {
		return nil
	}
	return r.slots[id]
}

// Count returns the number of registered clients.
func (r *Registry) Count() int { return r.count }

// HighWater returns the greatest occupied slot id, or -1 when empty.
func (r *Registry) HighWater() int { return r.highWater }

// ForEach calls fn for every registered client in ascending id order.
func (r *Registry) ForEach(fn func(*Client)) {
	for id := 0; id <= r.highWater; id++ {
		if c := r.slots[id]; c != nil {
			fn(c)
		}
	}
}

// appendIDs appends every registered client id to dst in ascending order
// and returns it. The event loop uses this to rebuild its poll interest set
// each iteration without allocating.
func (r *Registry) appendIDs(dst []int) []int {
	for id := 0; id <= r.highWater; id++ {
		if r.slots[id] != nil {
			dst = append(dst, id)
		}
	}
	return dst
}
