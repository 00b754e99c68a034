//go:build windows

package portwait

import (
	"errors"
	"syscall"
)

// Windows socket calls fail with Winsock errno values, which do not match
// the POSIX-style constants in the syscall package, so both are checked.
const (
	wsaeAddrInUse   = syscall.Errno(10048) // WSAEADDRINUSE
	wsaeConnRefused = syscall.Errno(10061) // WSAECONNREFUSED
)

func isConnRefused(err error) bool {
	return errors.Is(err, wsaeConnRefused) || errors.Is(err, syscall.ECONNREFUSED)
}

func isAddrInUse(err error) bool {
	return errors.Is(err, wsaeAddrInUse) || errors.Is(err, syscall.EADDRINUSE)
}
