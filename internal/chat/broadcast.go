package chat

// Broadcast writes payload to every registered client except excludeID, in
// ascending id order. Delivery is fire-and-forget: no retry, no partial
// write accounting, no outbound queue. An exclude id matching no client
// (for example -1) delivers to everyone.
func (r *Registry) Broadcast(excludeID int, payload []byte) {
	r.ForEach(func(c *Client) {
		if c.id == excludeID {
			return
		}
		c.deliver(payload)
	})
}

// formatChatLine renders "<nick>> <line>" capped at max bytes. The line
// keeps whatever separator the framer popped with it, so complete messages
// arrive newline-terminated on the wire while forced-flush truncations do
// not.
func formatChatLine(nick string, line []byte, max int) []byte {
	msg := make([]byte, 0, len(nick)+2+len(line))
	msg = append(msg, nick...)
	msg = append(msg, '>', ' ')
	msg = append(msg, line...)
	if max > 0 && len(msg) > max {
		msg = msg[:max]
	}
	return msg
}
