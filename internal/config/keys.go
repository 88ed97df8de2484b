package config

import (
	"net"
	"strconv"
)

// MaskToken masks a bearer token for display, showing only the first and
// last 6 characters.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 16 {
		return "***"
	}
	return token[:6] + "..." + token[len(token)-6:]
}

// Addr returns the host:port the gateway listens on.
func (g GatewayConfig) Addr() string {
	return net.JoinHostPort(g.Host, strconv.Itoa(g.Port))
}
