package net

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// LinkScheme prefixes share links handed to viewers.
const LinkScheme = "paint3d://"

// OutgoingIP finds the preferred local IP address for the share link.
func OutgoingIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// No route to the internet, fall back to checking local interfaces.
		return localIPFallback()
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

// localIPFallback is used on networks without internet access.
func localIPFallback() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}
	for _, address := range addrs {
		if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String(), nil
			}
		}
	}
	return "127.0.0.1", nil
}

// ShareLink builds a paint3d://host:port link.
func ShareLink(host string, port int) string {
	return LinkScheme + net.JoinHostPort(host, strconv.Itoa(port))
}

// ParseShareLink accepts either a paint3d:// link or a bare host:port and
// returns the WebSocket URL of the share.
func ParseShareLink(link string) (string, error) {
	addr := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(link), LinkScheme), "/")
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("bad share link %q: %w", link, err)
	}
	if _, err := strconv.Atoi(port); err != nil {
		return "", fmt.Errorf("bad share link %q: port %q", link, port)
	}
	return "ws://" + net.JoinHostPort(host, port) + SharePath, nil
}
