// Package portwait reports whether a local or remote TCP port is in use and
// waits, with bounded polling, for a port to become free or used.
//
// Two probe flavors exist and are deliberately kept distinct:
//
//   - The connect probe (Check, CheckOnHost, the *OnHost wait variants and
//     WaitUntilUsed) dials the target and interprets connection-refused as
//     "free". It answers "is something accepting connections there?" and
//     works against remote hosts.
//   - The bind probe (used internally by WaitUntilFree) attempts to listen
//     on the port on all local interfaces and interprets address-in-use as
//     "used". It answers "could this process claim the port?" and is only
//     meaningful for the local machine.
//
// The two observations differ: a port can be unclaimable locally while
// nothing accepts connections on it, and vice versa across hosts. Callers
// pick the variant whose failure domain matches their use case, typically
// WaitUntilUsed to synchronize with a service starting up and WaitUntilFree
// to synchronize with one shutting down.
//
// Every wait invocation is an independent session: it owns its own deadline,
// retry timer and at most one socket at a time, probes strictly sequentially,
// and settles exactly once — with nil on success, an error wrapping
// ErrTimeout when the deadline elapses first, or the first probe error
// propagated verbatim.
package portwait
