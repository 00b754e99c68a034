//go:build !windows

package portwait

import (
	"errors"
	"syscall"
)

// isConnRefused reports whether err is the active-rejection outcome of a
// connection attempt, i.e. nothing is listening on the target port.
func isConnRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}

// isAddrInUse reports whether err is a bind failure caused by another
// listener already holding the address.
func isAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}
