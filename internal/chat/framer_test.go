package chat

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFramerExtractsOneMessagePerSeparator(t *testing.T) {
	f := NewFramer('\n')
	inbox := NewRingBuffer(128)

	msgs := f.Ingest(inbox, []byte("nice\nto\nmeet\nyou"))
	require.Len(t, msgs, 3)
	require.Equal(t, []byte("nice\n"), msgs[0])
	require.Equal(t, []byte("to\n"), msgs[1])
	require.Equal(t, []byte("meet\n"), msgs[2])

	// The unseparated tail stays buffered for the next read.
	require.Equal(t, 3, inbox.Len())

	msgs = f.Ingest(inbox, []byte("!\n"))
	require.Len(t, msgs, 1)
	require.Equal(t, []byte("you!\n"), msgs[0])
	require.Equal(t, 0, inbox.Len())
}

func TestFramerBuffersPartialLine(t *testing.T) {
	f := NewFramer('\n')
	inbox := NewRingBuffer(128)

	require.Empty(t, f.Ingest(inbox, []byte("par")))
	require.Equal(t, 3, inbox.Len())

	msgs := f.Ingest(inbox, []byte("tial\n"))
	require.Len(t, msgs, 1)
	require.Equal(t, []byte("partial\n"), msgs[0])
}

func TestFramerSeparatorOnly(t *testing.T) {
	f := NewFramer('\n')
	inbox := NewRingBuffer(128)

	msgs := f.Ingest(inbox, []byte("\n"))
	require.Len(t, msgs, 1)
	require.Equal(t, []byte("\n"), msgs[0])
}

func TestFramerCommandAndChatInOneChunk(t *testing.T) {
	f := NewFramer('\n')
	inbox := NewRingBuffer(128)

	msgs := f.Ingest(inbox, []byte("/nick Zed\nhi\n"))
	require.Len(t, msgs, 2)
	require.Equal(t, []byte("/nick Zed\n"), msgs[0])
	require.Equal(t, []byte("hi\n"), msgs[1])
}

func TestFramerForcedFlushWithoutSeparator(t *testing.T) {
	f := NewFramer('\n')
	inbox := NewRingBuffer(128)

	payload := bytes.Repeat([]byte("x"), 127)
	msgs := f.Ingest(inbox, payload)
	require.Len(t, msgs, 1, "full inbox must flush even without a separator")
	require.Equal(t, payload, msgs[0])
	require.Equal(t, 0, inbox.Len())
}

func TestFramerForcedFlushReachedIncrementally(t *testing.T) {
	f := NewFramer('\n')
	inbox := NewRingBuffer(128)

	// 100 then 27 bytes: the second chunk tips the inbox over the
	// forced-flush threshold and the whole 127 bytes come out as one
	// message.
	require.Empty(t, f.Ingest(inbox, bytes.Repeat([]byte("a"), 100)))
	msgs := f.Ingest(inbox, bytes.Repeat([]byte("b"), 27))
	require.Len(t, msgs, 1)
	require.Len(t, msgs[0], 127)
}

func TestFramerSeparatorNearFullExtractsOnlyCountedRounds(t *testing.T) {
	f := NewFramer('\n')
	inbox := NewRingBuffer(128)

	require.Empty(t, f.Ingest(inbox, bytes.Repeat([]byte("q"), 120)))

	// One separator plus filler: one message through the separator, the
	// filler stays buffered even though the inbox crossed the threshold
	// before extraction.
	msgs := f.Ingest(inbox, []byte("\nabcdef"))
	require.Len(t, msgs, 1)
	require.Equal(t, 121, len(msgs[0]))
	require.Equal(t, byte('\n'), msgs[0][120])
	require.Equal(t, 6, inbox.Len())
}

func TestFramerCustomSeparator(t *testing.T) {
	f := NewFramer('A')
	inbox := NewRingBuffer(64)

	msgs := f.Ingest(inbox, []byte("niceAtoAmeetAyou"))
	require.Len(t, msgs, 3)
	require.Equal(t, []byte("niceA"), msgs[0])
	require.Equal(t, []byte("toA"), msgs[1])
	require.Equal(t, []byte("meetA"), msgs[2])
	require.Equal(t, 3, inbox.Len())
}

func TestFramerSmallChunksEventuallyFrame(t *testing.T) {
	f := NewFramer('\n')
	inbox := NewRingBuffer(128)

	var got [][]byte
	for _, b := range []byte("hello\nworld\n") {
		got = append(got, f.Ingest(inbox, []byte{b})...)
	}
	require.Len(t, got, 2)
	require.Equal(t, []byte("hello\n"), got[0])
	require.Equal(t, []byte("world\n"), got[1])
}
