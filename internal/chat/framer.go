package chat

import "bytes"

// Framer turns freshly read byte chunks into separator-delimited messages,
// keeping partial lines in each client's inbox between reads.
type Framer struct {
	sep byte
	pat []byte
}

// NewFramer returns a framer splitting messages on the given byte.
func NewFramer(sep byte) *Framer {
	return &Framer{sep: sep, pat: []byte{sep}}
}

// Ingest appends chunk to the inbox and extracts every message that is now
// complete. Extraction runs when the chunk carried at least one separator,
// or when at most one byte of room remains after the push. The latter is
// the forced-flush overflow policy: rather than grow or block, the buffered
// content is emitted as one message even though no separator arrived.
//
// With k separators in the chunk, extraction runs max(k, 1) rounds; each
// round pops bytes until a separator is popped or the inbox drains.
// Messages therefore keep their trailing separator when one was found, and
// bytes after the last separator stay buffered for the next read.
func (f *Framer) Ingest(inbox *RingBuffer, chunk []byte) [][]byte {
	seps := bytes.Count(chunk, f.pat)
	inbox.PushSlice(chunk)

	forced := inbox.Remaining() <= 1
	if seps == 0 && !forced {
		return nil
	}

	rounds := seps
	if rounds == 0 {
		rounds = 1
	}

	msgs := make([][]byte, 0, rounds)
	for i := 0; i < rounds; i++ {
		msg := f.popMessage(inbox)
		if len(msg) == 0 {
			break
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

func (f *Framer) popMessage(inbox *RingBuffer) []byte {
	msg := make([]byte, 0, inbox.Len())
	for {
		b, ok := inbox.Pop()
		if !ok {
			break
		}
		msg = append(msg, b)
		if b == f.sep {
			break
		}
	}
	return msg
}
