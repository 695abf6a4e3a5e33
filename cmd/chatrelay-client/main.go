// Command chatrelay-client is a minimal terminal client for the relay: it
// connects, pumps stdin to the server, and prints whatever the server
// sends. It exits when either side reaches end-of-stream.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"chatrelay/pkg/sock"
)

func main() {
	host := flag.String("host", "127.0.0.1", "Server host")
	port := flag.Int("port", 7711, "Server port")
	flag.Parse()

	conn, err := sock.Dial(*host, *port, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chatrelay-client: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	done := make(chan error, 2)
	go pump(conn, os.Stdin, done)
	go pump(os.Stdout, conn, done)

	if err := <-done; err != nil && err != io.EOF {
		fmt.Fprintf(os.Stderr, "chatrelay-client: %v\n", err)
		os.Exit(1)
	}
}

func pump(dst io.Writer, src io.Reader, done chan<- error) {
	_, err := io.Copy(dst, src)
	if err == nil {
		err = io.EOF
	}
	done <- err
}
