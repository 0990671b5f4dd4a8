// Package testclient drives a running inspector over its TCP line protocol.
package testclient

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/lawnchairsociety/deepcave/internal/command"
)

// DefaultTimeout bounds each request/response round trip.
const DefaultTimeout = 10 * time.Second

// TestClient is one inspector connection. Each command line is answered by
// exactly one JSON response, so Send is a plain request/response call.
type TestClient struct {
	Name    string
	Welcome command.Response
	Timeout time.Duration

	conn   net.Conn
	dec    *json.Decoder
	writer *bufio.Writer
	sent   []string
}

// Dial connects to address and reads the welcome response.
func Dial(name, address string) (*TestClient, error) {
	conn, err := net.DialTimeout("tcp", address, DefaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	c, err := NewTestClient(name, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// NewTestClient wraps an open connection and reads the welcome response.
func NewTestClient(name string, conn net.Conn) (*TestClient, error) {
	c := &TestClient{
		Name:    name,
		Timeout: DefaultTimeout,
		conn:    conn,
		dec:     json.NewDecoder(bufio.NewReader(conn)),
		writer:  bufio.NewWriter(conn),
	}
	welcome, err := c.read()
	if err != nil {
		return nil, fmt.Errorf("failed to read welcome: %w", err)
	}
	if !welcome.OK {
		return nil, fmt.Errorf("connection refused: %s", welcome.Error)
	}
	c.Welcome = welcome
	return c, nil
}

func (c *TestClient) read() (command.Response, error) {
	var resp command.Response
	c.conn.SetReadDeadline(time.Now().Add(c.Timeout))
	if err := c.dec.Decode(&resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Send writes one command line and returns the server's response.
func (c *TestClient) Send(line string) (command.Response, error) {
	c.conn.SetWriteDeadline(time.Now().Add(c.Timeout))
	if _, err := c.writer.WriteString(strings.TrimSpace(line) + "\n"); err != nil {
		return command.Response{}, fmt.Errorf("failed to send %q: %w", line, err)
	}
	if err := c.writer.Flush(); err != nil {
		return command.Response{}, fmt.Errorf("failed to send %q: %w", line, err)
	}
	c.sent = append(c.sent, line)

	resp, err := c.read()
	if err != nil {
		return resp, fmt.Errorf("no response to %q: %w", line, err)
	}
	return resp, nil
}

// MustSucceed sends a command and turns a failed response into an error.
func (c *TestClient) MustSucceed(line string) (command.Response, error) {
	resp, err := c.Send(line)
	if err != nil {
		return resp, err
	}
	if !resp.OK {
		return resp, fmt.Errorf("%q failed: %s", line, resp.Error)
	}
	return resp, nil
}

// Sent returns the command lines sent so far.
func (c *TestClient) Sent() []string {
	return append([]string(nil), c.sent...)
}

// Close closes the connection.
func (c *TestClient) Close() error {
	return c.conn.Close()
}
