package server

// Client is one inspector connection, over a raw line socket or a WebSocket.
type Client interface {
	// ReadLine blocks until a non-empty command line arrives.
	ReadLine() (string, error)

	// WriteJSON sends one response document.
	WriteJSON(v any) error

	Close() error

	// RemoteAddr returns the client's address for logging.
	RemoteAddr() string
}
