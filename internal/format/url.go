package format

import (
	"hash/fnv"
	"net"
	"strconv"
	"strings"
	"time"
)

// Port range for {port} derivation. Starts above the common dev server
// defaults so hashed ports rarely collide with hand-picked ones.
const (
	portBase  = 10000
	portRange = 50000
)

// BranchPort derives a stable port for a branch name. The same branch
// always maps to the same port, so dev servers keep their addresses
// across invocations without any registry.
func BranchPort(branch string) int {
	h := fnv.New32a()
	h.Write([]byte(branch))
	return portBase + int(h.Sum32()%portRange)
}

// ExpandURL substitutes {branch} and {port} in a URL template.
func ExpandURL(template, branch string) string {
	url := strings.ReplaceAll(template, "{branch}", branch)
	url = strings.ReplaceAll(url, "{port}", strconv.Itoa(BranchPort(branch)))
	return url
}

// ParsePort extracts the port number from an HTTP(S) URL, e.g.
// "http://localhost:12345/path" yields 12345. Returns 0 when the URL
// has no explicit port.
func ParsePort(url string) int {
	rest, ok := strings.CutPrefix(url, "http://")
	if !ok {
		rest, ok = strings.CutPrefix(url, "https://")
		if !ok {
			return 0
		}
	}
	hostPort := rest
	if idx := strings.IndexAny(hostPort, "/?#"); idx != -1 {
		hostPort = hostPort[:idx]
	}
	idx := strings.LastIndex(hostPort, ":")
	if idx == -1 {
		return 0
	}
	port, err := strconv.Atoi(hostPort[idx+1:])
	if err != nil || port <= 0 || port > 65535 {
		return 0
	}
	return port
}

// probeTimeout keeps the liveness check fast enough to run once per row
// without delaying the listing.
const probeTimeout = 50 * time.Millisecond

// PortActive reports whether something is listening on the port at
// localhost. A URL without an explicit port is never active.
func PortActive(url string) bool {
	port := ParsePort(url)
	if port == 0 {
		return false
	}
	conn, err := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), probeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
