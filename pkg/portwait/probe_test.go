package portwait

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listenLoopback starts a TCP listener on an OS-assigned loopback port and
// returns the listener plus the port number. Using ":0" avoids hardcoded
// ports that might be taken on CI machines.
func listenLoopback(t *testing.T) (net.Listener, int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "failed to start test listener")

	tcpAddr, ok := ln.Addr().(*net.TCPAddr)
	require.True(t, ok)
	return ln, tcpAddr.Port
}

// freePort asks the OS for an unused port and releases it again. There is a
// small window in which another process could grab it, but tests only need a
// port that is free right now.
func freePort(t *testing.T) int {
	t.Helper()

	ln, port := listenLoopback(t)
	require.NoError(t, ln.Close())
	return port
}

// TestCheck_UsedPort verifies that Check reports true while a listener holds
// the port, and false again once the listener is gone.
func TestCheck_UsedPort(t *testing.T) {
	ln, port := listenLoopback(t)
	defer func() { _ = ln.Close() }()

	inUse, err := Check(context.Background(), port)
	require.NoError(t, err)
	assert.True(t, inUse, "port %d has a listener, Check should report in use", port)

	require.NoError(t, ln.Close())

	inUse, err = Check(context.Background(), port)
	require.NoError(t, err)
	assert.False(t, inUse, "port %d was released, Check should report free", port)
}

// TestCheck_FreePort verifies the connection-refused path: probing a port
// with no listener reports free, not an error.
func TestCheck_FreePort(t *testing.T) {
	port := freePort(t)

	inUse, err := Check(context.Background(), port)
	require.NoError(t, err)
	assert.False(t, inUse)
}

// TestCheck_Idempotent verifies that repeated probes of an unchanged port
// yield the same result each time and leak nothing that would flip later
// probes.
func TestCheck_Idempotent(t *testing.T) {
	ln, port := listenLoopback(t)
	defer func() { _ = ln.Close() }()

	for i := 0; i < 10; i++ {
		inUse, err := Check(context.Background(), port)
		require.NoError(t, err, "probe %d failed", i)
		assert.True(t, inUse, "probe %d disagreed with earlier probes", i)
	}
}

// TestCheck_InvalidPort verifies that out-of-range ports are rejected before
// any socket is opened, with the offending value carried in the error.
func TestCheck_InvalidPort(t *testing.T) {
	for _, port := range []int{-1, 65536, 700000} {
		inUse, err := Check(context.Background(), port)
		assert.False(t, inUse)
		require.Error(t, err)

		var invalid *InvalidPortError
		require.ErrorAs(t, err, &invalid, "port %d should produce InvalidPortError", port)
		assert.Equal(t, port, invalid.Port)
		assert.Contains(t, err.Error(), "invalid port:")
	}
}

// TestCheckOnHost_DefaultsToLoopback verifies that an empty or whitespace
// host is treated as the loopback address.
func TestCheckOnHost_DefaultsToLoopback(t *testing.T) {
	ln, port := listenLoopback(t)
	defer func() { _ = ln.Close() }()

	for _, host := range []string{"", "   "} {
		inUse, err := CheckOnHost(context.Background(), port, host)
		require.NoError(t, err)
		assert.True(t, inUse, "host %q should default to loopback", host)
	}
}

// TestCheckOnHost_UnresolvableHost verifies that a dial failure other than
// connection-refused (here: a guaranteed-NXDOMAIN name per RFC 6761) is
// surfaced as an error rather than interpreted as free or used.
func TestCheckOnHost_UnresolvableHost(t *testing.T) {
	_, err := CheckOnHost(context.Background(), 80, "portwait-test.invalid")
	assert.Error(t, err)
}

// TestCheck_SequentialSessions runs many probe sessions back to back. If a
// probe leaked its socket, later binds in the loop would start failing.
func TestCheck_SequentialSessions(t *testing.T) {
	for i := 0; i < 100; i++ {
		ln, port := listenLoopback(t)

		inUse, err := Check(context.Background(), port)
		require.NoError(t, err, "iteration %d", i)
		assert.True(t, inUse, "iteration %d", i)

		require.NoError(t, ln.Close())
	}
}

func TestNormalizeHost(t *testing.T) {
	assert.Equal(t, Loopback, normalizeHost(""))
	assert.Equal(t, Loopback, normalizeHost("  \t"))
	assert.Equal(t, "example.com", normalizeHost(" example.com "))
	assert.Equal(t, "::1", normalizeHost("::1"))
}

// TestBindProbe covers the listen-based probe directly: a held port reports
// in use via address-in-use, a released port reports free.
func TestBindProbe(t *testing.T) {
	// Bind on all interfaces so the probe's own ":port" bind collides.
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	tcpAddr, ok := ln.Addr().(*net.TCPAddr)
	require.True(t, ok)
	port := tcpAddr.Port

	inUse, err := bindProbe(context.Background(), port)
	require.NoError(t, err)
	assert.True(t, inUse)

	require.NoError(t, ln.Close())

	inUse, err = bindProbe(context.Background(), port)
	require.NoError(t, err)
	assert.False(t, inUse)
}
