// Package netpoll waits for read readiness across a set of raw descriptors.
// It exposes the smallest possible surface — register an interest set, wait
// with a timeout, get back the ready subset — so the multiplexing mechanism
// can change without touching anything above it.
package netpoll

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Poller performs level-triggered readiness waits with poll(2). It holds
// only scratch storage reused across calls and must be used from a single
// goroutine.
type Poller struct {
	pfds  []unix.PollFd
	ready []int
}

// New returns a Poller with no interest registered yet.
func New() *Poller {
	return &Poller{}
}

// Wait blocks until at least one descriptor in fds is readable, an error or
// hangup is flagged, or timeout elapses. It returns the ready descriptors
// in interest order; an empty result means timeout. Hangup and error
// conditions count as readable so the caller discovers them through its
// next read. EINTR is retried internally with the remaining time.
//
// The returned slice is reused by the next call.
func (p *Poller) Wait(fds []int, timeout time.Duration) ([]int, error) {
	p.pfds = p.pfds[:0]
	for _, fd := range fds {
		p.pfds = append(p.pfds, unix.PollFd{
			Fd:     int32(fd),
			Events: unix.POLLIN,
		})
	}

	deadline := time.Now().Add(timeout)
	for {
		ms := int(time.Until(deadline).Milliseconds())
		if ms < 0 {
			ms = 0
		}

		n, err := unix.Poll(p.pfds, ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("netpoll: poll: %w", err)
		}
		if n == 0 {
			return nil, nil
		}
		break
	}

	p.ready = p.ready[:0]
	for _, pfd := range p.pfds {
		if pfd.Revents&(unix.POLLIN|unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			p.ready = append(p.ready, int(pfd.Fd))
		}
	}
	return p.ready, nil
}
