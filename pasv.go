package ftp

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// PassiveAddress is the data-channel address advertised by a PASV response.
type PassiveAddress struct {
	// IP is the dotted-quad IPv4 address, e.g. "192.168.0.1"
	IP string

	// Port is the TCP port, p1*256 + p2
	Port int
}

// String returns the address in host:port form, suitable for dialing.
func (a PassiveAddress) String() string {
	return net.JoinHostPort(a.IP, strconv.Itoa(a.Port))
}

// Encode formats the address as the six-number PASV tuple body.
// Converts {"192.168.1.100", 50000} to "192,168,1,100,195,80".
func (a PassiveAddress) Encode() (string, error) {
	ip := net.ParseIP(a.IP)
	if ip == nil || ip.To4() == nil {
		return "", fmt.Errorf("not an IPv4 address: %q", a.IP)
	}
	if a.Port < 0 || a.Port > 65535 {
		return "", fmt.Errorf("port out of range: %d", a.Port)
	}
	ip = ip.To4()
	return fmt.Sprintf("%d,%d,%d,%d,%d,%d", ip[0], ip[1], ip[2], ip[3], a.Port/256, a.Port%256), nil
}

// DecodePassiveAddress extracts the data-channel address from a PASV response.
//
// Example: "227 Entering Passive Mode (192,168,1,1,195,149)."
// Returns: {IP: "192.168.1.1", Port: 50069} (195*256 + 149 = 50069)
//
// The tuple must be enclosed in parentheses and contain exactly six
// comma-separated unsigned decimal integers in [0,255]. Spaces around each
// number are allowed; signs are not.
func DecodePassiveAddress(raw string) (PassiveAddress, error) {
	start := strings.IndexByte(raw, '(')
	if start < 0 {
		return PassiveAddress{}, protocolError("", "PASV", 0, "no address tuple in response: %q", raw)
	}
	end := strings.IndexByte(raw[start:], ')')
	if end < 0 {
		return PassiveAddress{}, protocolError("", "PASV", 0, "unterminated address tuple in response: %q", raw)
	}

	parts := strings.Split(raw[start+1:start+end], ",")
	if len(parts) != 6 {
		return PassiveAddress{}, protocolError("", "PASV", 0, "address tuple has %d fields, want 6: %q", len(parts), raw)
	}

	var n [6]int
	for i, p := range parts {
		field := strings.TrimSpace(p)
		if !isDigits(field) {
			return PassiveAddress{}, protocolError("", "PASV", 0, "invalid address tuple field %q", p)
		}
		val, err := strconv.Atoi(field)
		if err != nil || val > 255 {
			return PassiveAddress{}, protocolError("", "PASV", 0, "invalid address tuple field %q", p)
		}
		n[i] = val
	}

	return PassiveAddress{
		IP:   fmt.Sprintf("%d.%d.%d.%d", n[0], n[1], n[2], n[3]),
		Port: n[4]*256 + n[5],
	}, nil
}

// isDigits reports whether s is a non-empty run of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// resolveDataAddr returns the address to dial for a passive data channel.
// If the server advertises 0.0.0.0, the control connection host is used.
func resolveDataAddr(addr PassiveAddress, controlHost string) string {
	if addr.IP == "0.0.0.0" && controlHost != "" {
		return net.JoinHostPort(controlHost, strconv.Itoa(addr.Port))
	}
	return addr.String()
}
