// Package sock provides raw-descriptor TCP helpers: creating a listening
// socket, accepting and configuring connections, and dialing out. The chat
// core works with plain integer descriptors because the descriptor doubles
// as the client id and the readiness-poll key.
package sock

import (
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

const listenBacklog = 511

// Listener wraps a listening TCP socket descriptor.
type Listener struct {
	fd   int
	port int
}

// Listen binds a TCP listener on the given port on all interfaces. Port 0
// asks the kernel for an ephemeral port; Port reports whichever was bound.
func Listen(port int) (*Listener, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("sock: create socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("sock: set SO_REUSEADDR: %w", err)
	}

	sa := &unix.SockaddrInet4{Port: port}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("sock: bind port %d: %w", port, err)
	}

	if err := unix.Listen(fd, listenBacklog); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("sock: listen: %w", err)
	}

	bound, err := unix.Getsockname(fd)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("sock: query bound address: %w", err)
	}
	if in4, ok := bound.(*unix.SockaddrInet4); ok {
		port = in4.Port
	}

	return &Listener{fd: fd, port: port}, nil
}

// Fd returns the listening descriptor for readiness polling.
func (l *Listener) Fd() int { return l.fd }

// Port returns the bound TCP port.
func (l *Listener) Port() int { return l.port }

// Accept takes one pending connection and configures it non-blocking with
// TCP_NODELAY before handing it over.
func (l *Listener) Accept() (*Conn, error) {
	fd, sa, err := unix.Accept(l.fd)
	if err != nil {
		return nil, fmt.Errorf("sock: accept: %w", err)
	}

	if err := SetNonBlockNoDelay(fd); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &Conn{fd: fd, remote: formatAddr(sa)}, nil
}

// Close releases the listening descriptor.
func (l *Listener) Close() error {
	if err := unix.Close(l.fd); err != nil {
		return fmt.Errorf("sock: close listener: %w", err)
	}
	return nil
}

// SetNonBlockNoDelay puts the descriptor in non-blocking mode and disables
// send coalescing so small chat lines go out immediately.
func SetNonBlockNoDelay(fd int) error {
	if err := unix.SetNonblock(fd, true); err != nil {
		return fmt.Errorf("sock: set non-blocking: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
		return fmt.Errorf("sock: set TCP_NODELAY: %w", err)
	}
	return nil
}

func formatAddr(sa unix.Sockaddr) string {
	in4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return "unknown"
	}
	a := in4.Addr
	return fmt.Sprintf("%d.%d.%d.%d:%d", a[0], a[1], a[2], a[3], in4.Port)
}

// Conn wraps one connected TCP descriptor.
type Conn struct {
	fd     int
	remote string
}

// Fd returns the connection descriptor.
func (c *Conn) Fd() int { return c.fd }

// RemoteAddr returns the peer address captured at accept or dial time.
func (c *Conn) RemoteAddr() string { return c.remote }

// Read fills p from the socket. End-of-stream is reported as io.EOF so
// callers can treat orderly and failed disconnects uniformly.
func (c *Conn) Read(p []byte) (int, error) {
	n, err := unix.Read(c.fd, p)
	if err != nil {
		return 0, fmt.Errorf("sock: read: %w", err)
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write sends p to the socket. Partial writes are reported, not retried;
// the caller decides whether a short write matters.
func (c *Conn) Write(p []byte) (int, error) {
	n, err := unix.Write(c.fd, p)
	if err != nil {
		return 0, fmt.Errorf("sock: write: %w", err)
	}
	return n, nil
}

// Close releases the descriptor.
func (c *Conn) Close() error {
	if err := unix.Close(c.fd); err != nil {
		return fmt.Errorf("sock: close: %w", err)
	}
	return nil
}
