package util

import (
	"fmt"
	"net"
	"strconv"
)

// FormatAddr returns "host:port".
func FormatAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// PeerString renders a remote address as "ip:port", falling back to
// the address's own String form for non-TCP addresses.
func PeerString(addr net.Addr) string {
	if addr == nil {
		return "unknown"
	}
	if ta, ok := addr.(*net.TCPAddr); ok {
		return FormatAddr(ta.IP.String(), ta.Port)
	}
	return addr.String()
}

// FindFreePort returns an available TCP port on 127.0.0.1.
func FindFreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("finding free port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
