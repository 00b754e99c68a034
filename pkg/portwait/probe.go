package portwait

import (
	"context"
	"net"
	"strconv"
	"strings"
)

// Loopback is the host used whenever a caller does not supply one.
const Loopback = "127.0.0.1"

const (
	// maxPort is the highest valid TCP port number (2^16 - 1).
	maxPort = 65535
)

// Check reports whether something is accepting TCP connections on the given
// port of the loopback interface. It is a single-shot connect probe: exactly
// one connection attempt is made, and any connection it opens is closed
// before returning.
func Check(ctx context.Context, port int) (bool, error) {
	return CheckOnHost(ctx, port, Loopback)
}

// CheckOnHost is the host-aware variant of Check. An empty (or
// all-whitespace) host defaults to the loopback address.
//
// A successful connection means the port is in use; connection-refused means
// it is free. Any other dial failure (unreachable host, DNS failure, caller
// cancellation) is returned as an error rather than being interpreted as
// either state.
func CheckOnHost(ctx context.Context, port int, host string) (bool, error) {
	if err := validatePort(port); err != nil {
		return false, err
	}
	return connectProbe(ctx, normalizeHost(host), port)
}

// validatePort rejects port numbers outside [0, 65535]. Every public entry
// point calls this before opening any socket.
func validatePort(port int) error {
	if port < 0 || port > maxPort {
		return &InvalidPortError{Port: port}
	}
	return nil
}

// normalizeHost applies the loopback default for absent hosts.
func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return Loopback
	}
	return host
}

// connectProbe performs one outbound connection attempt. It reports true when
// the connection succeeds (something is listening) and false on
// connection-refused. The dial honors ctx, so cancelling the session closes
// an in-flight attempt.
func connectProbe(ctx context.Context, host string, port int) (bool, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		if isConnRefused(err) {
			return false, nil
		}
		return false, err
	}
	// The probe only needed the connect outcome.
	_ = conn.Close()
	return true, nil
}

// bindProbe performs one listen attempt on all local interfaces. It reports
// true (in use) when the bind fails with address-in-use, and false (free)
// when the bind succeeds — the listener is closed immediately. Any other
// bind failure is returned as an error.
//
// This reflects whether the local process could claim the port, which is a
// different observation than connectProbe's "is something accepting
// connections": a privileged or otherwise reserved port can be unclaimable
// with no listener present.
func bindProbe(ctx context.Context, port int) (bool, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", ":"+strconv.Itoa(port))
	if err != nil {
		if isAddrInUse(err) {
			return true, nil
		}
		return false, err
	}
	_ = ln.Close()
	return false, nil
}
