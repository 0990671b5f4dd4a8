package server

import (
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// WebSocketClient wraps a WebSocket connection for browser-based inspectors.
type WebSocketClient struct {
	conn    *websocket.Conn
	readBuf []string // lines left over from a multi-line message
	mu      sync.Mutex
	writeMu sync.Mutex
}

// NewWebSocketClient creates a new WebSocketClient from a WebSocket connection.
func NewWebSocketClient(conn *websocket.Conn) *WebSocketClient {
	return &WebSocketClient{conn: conn}
}

// ReadLine returns the next command line. A message holding several lines is
// split and the extra lines are returned by later calls. Blank messages are skipped.
func (c *WebSocketClient) ReadLine() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.readBuf) == 0 {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		for _, line := range strings.Split(string(message), "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				c.readBuf = append(c.readBuf, trimmed)
			}
		}
	}

	line := c.readBuf[0]
	c.readBuf = c.readBuf[1:]
	return line, nil
}

// WriteJSON sends v as a single text message.
func (c *WebSocketClient) WriteJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// Close sends a normal close frame and closes the connection.
func (c *WebSocketClient) Close() error {
	c.writeMu.Lock()
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	return c.conn.Close()
}

// RemoteAddr returns the remote address as a string.
func (c *WebSocketClient) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
