package sock

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// Dial opens a TCP connection to host:port. With nonblock set the
// descriptor is switched to non-blocking before connect, so the call may
// return with the handshake still in flight (EINPROGRESS is not an error);
// otherwise the connect blocks until established.
func Dial(host string, port int, nonblock bool) (*Conn, error) {
	addr, err := resolveIPv4(host)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("sock: create socket: %w", err)
	}

	if nonblock {
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("sock: set non-blocking: %w", err)
		}
	}

	sa := &unix.SockaddrInet4{Port: port, Addr: addr}
	if err := unix.Connect(fd, sa); err != nil && !(nonblock && err == unix.EINPROGRESS) {
		unix.Close(fd)
		return nil, fmt.Errorf("sock: connect %s:%d: %w", host, port, err)
	}

	return &Conn{fd: fd, remote: fmt.Sprintf("%s:%d", host, port)}, nil
}

func resolveIPv4(host string) ([4]byte, error) {
	var addr [4]byte

	ips, err := net.LookupIP(host)
	if err != nil {
		return addr, fmt.Errorf("sock: resolve %q: %w", host, err)
	}
	for _, ip := range ips {
		if ip4 := ip.To4(); ip4 != nil {
			copy(addr[:], ip4)
			return addr, nil
		}
	}
	return addr, fmt.Errorf("sock: no IPv4 address for %q", host)
}
