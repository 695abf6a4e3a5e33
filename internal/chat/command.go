package chat

import "strings"

// commandMarker on the first byte of a message makes it a command rather
// than chat text.
const commandMarker = '/'

const cmdNick = "/nick"

// unsupportedNotice goes only to the issuer of a command the server does
// not recognize.
var unsupportedNotice = []byte("Unsupported command\n")

func isCommand(msg []byte) bool {
	return len(msg) > 0 && msg[0] == commandMarker
}

// parseCommand splits a command message into name and optional argument.
// The line is cut at the first carriage return or newline, then split at
// the first space. hasArg distinguishes "/nick" from "/nick " — an argument
// that is present but empty still counts as supplied.
func parseCommand(msg []byte) (name, arg string, hasArg bool) {
	line := string(msg)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	return strings.Cut(line, " ")
}

// handleCommand mutates client state for recognized commands and answers
// everything else with the unsupported notice. Only the issuer ever sees
// the outcome; the registry is not touched.
func (s *Server) handleCommand(c *Client, msg []byte) {
	name, arg, hasArg := parseCommand(msg)
	if name == cmdNick && hasArg {
		c.SetNick(arg)
		s.log.Debug("nickname changed", "id", c.ID(), "session", c.Session(), "nick", arg)
		return
	}

	c.deliver(unsupportedNotice)
	s.log.Debug("unsupported command", "id", c.ID(), "command", name)
}
