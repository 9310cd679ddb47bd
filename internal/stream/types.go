package stream

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
	ErrMalformedFrame  = errors.New("malformed frame")
	ErrStopped         = errors.New("stream adapter stopped")
)

// DefaultURL is the combined-stream endpoint.
const DefaultURL = "wss://stream.binance.com:9443/stream"

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// State is the adapter's connection state.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON stats.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL              string        // Full stream URL including the streams query
	PingInterval     time.Duration // Interval between keepalive pings
	PingTimeout      time.Duration // Max time without ping/pong before considering connection stale
	WriteTimeout     time.Duration // Write deadline for control frames
	HandshakeTimeout time.Duration // Dial handshake timeout
	BufferSize       int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingInterval:     30 * time.Second,
		PingTimeout:      90 * time.Second,
		WriteTimeout:     5 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		BufferSize:       1024,
	}
}

// Config configures an Adapter.
type Config struct {
	URL     string   // Combined-stream base URL (default: DefaultURL)
	Pairs   []string // Lowercase pairs, e.g. "btcusdt"
	Backoff Backoff  // Reconnect policy (default: ConstantBackoff{5s})
	Client  ClientConfig
}

// Stats is a point-in-time view of adapter counters.
type Stats struct {
	State       State
	SessionID   string // Current or last connection session
	Connects    int64
	Disconnects int64
	Frames      int64
	ParseErrors int64
}
