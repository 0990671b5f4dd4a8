package server

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/lawnchairsociety/deepcave/internal/config"
)

// ConnLimiter caps concurrent inspector connections per IP and in total.
type ConnLimiter struct {
	mu       sync.Mutex
	perIP    map[string]int
	total    int
	maxPerIP int
	maxTotal int
}

// ConnStats is a point-in-time view of the limiter.
type ConnStats struct {
	Total     int `json:"total"`
	UniqueIPs int `json:"unique_ips"`
}

// NewConnLimiter creates a limiter from the connections config. Zero limits are unlimited.
func NewConnLimiter(cfg config.ConnectionsConfig) *ConnLimiter {
	return &ConnLimiter{
		perIP:    make(map[string]int),
		maxPerIP: cfg.MaxPerIP,
		maxTotal: cfg.MaxTotal,
	}
}

// TryAcquire takes a slot for ip, reporting false when a limit is reached.
func (c *ConnLimiter) TryAcquire(ip string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxTotal > 0 && c.total >= c.maxTotal {
		return false
	}
	if c.maxPerIP > 0 && c.perIP[ip] >= c.maxPerIP {
		return false
	}
	c.perIP[ip]++
	c.total++
	return true
}

// Release returns a slot taken by TryAcquire.
func (c *ConnLimiter) Release(ip string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n := c.perIP[ip]; n > 1 {
		c.perIP[ip] = n - 1
	} else {
		delete(c.perIP, ip)
	}
	if c.total > 0 {
		c.total--
	}
}

// Stats returns the current counts.
func (c *ConnLimiter) Stats() ConnStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ConnStats{Total: c.total, UniqueIPs: len(c.perIP)}
}

// IPCount returns the open connections for one IP.
func (c *ConnLimiter) IPCount(ip string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.perIP[ip]
}

// extractIP strips the port from an ip:port address.
func extractIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// getRealIP prefers X-Forwarded-For, then X-Real-IP, then the socket address.
func getRealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// "client, proxy1, proxy2"
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return extractIP(r.RemoteAddr)
}
