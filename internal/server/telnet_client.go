package server

import (
	"bufio"
	"encoding/json"
	"net"
	"strings"
)

// TelnetClient speaks the inspector protocol over a raw TCP connection: one
// command per line in, one JSON document per line out.
type TelnetClient struct {
	conn    net.Conn
	scanner *bufio.Scanner
	enc     *json.Encoder
	writer  *bufio.Writer
}

// NewTelnetClient creates a new TelnetClient from a TCP connection.
func NewTelnetClient(conn net.Conn) *TelnetClient {
	w := bufio.NewWriter(conn)
	return &TelnetClient{
		conn:    conn,
		scanner: bufio.NewScanner(conn),
		enc:     json.NewEncoder(w),
		writer:  w,
	}
}

// ReadLine returns the next non-blank line, trimmed.
func (c *TelnetClient) ReadLine() (string, error) {
	for c.scanner.Scan() {
		if line := strings.TrimSpace(c.scanner.Text()); line != "" {
			return line, nil
		}
	}
	if err := c.scanner.Err(); err != nil {
		return "", err
	}
	// Scanner finished without error means EOF/connection closed
	return "", net.ErrClosed
}

// WriteJSON writes v followed by a newline.
func (c *TelnetClient) WriteJSON(v any) error {
	if err := c.enc.Encode(v); err != nil {
		return err
	}
	return c.writer.Flush()
}

// Close closes the underlying connection.
func (c *TelnetClient) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the remote address as a string.
func (c *TelnetClient) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
