package portwait

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Default retry intervals and timeouts per operation. A zero Options field
// takes the corresponding default; retry interval and timeout default
// independently of each other.
const (
	// DefaultFreeRetryInterval is the pause between probes when waiting for
	// a port to become free. Shutdowns release ports quickly, so the free
	// wait polls at a tighter cadence than the used wait.
	DefaultFreeRetryInterval = 100 * time.Millisecond

	// DefaultFreeTimeout bounds a free wait when no timeout is given.
	DefaultFreeTimeout = 1 * time.Second

	// DefaultUsedRetryInterval is the pause between probes when waiting for
	// a port to become used.
	DefaultUsedRetryInterval = 250 * time.Millisecond

	// DefaultUsedTimeout bounds a used wait when no timeout is given.
	// Service startup is slower than shutdown, hence the larger default.
	DefaultUsedTimeout = 2 * time.Second
)

// Options configures a single wait session. The zero value selects the
// per-operation defaults above. Options are copied into the session at
// construction; there is no shared mutable configuration.
type Options struct {
	// RetryInterval is the polling cadence. The first probe is issued
	// immediately, subsequent probes once per interval. Non-positive values
	// take the operation's default.
	RetryInterval time.Duration

	// Timeout is the hard deadline for the whole session, measured from
	// invocation. Non-positive values take the operation's default.
	Timeout time.Duration
}

// withDefaults substitutes the given defaults for unset fields. Each field
// defaults on its own — a missing timeout never inherits the retry default.
func (o Options) withDefaults(retry, timeout time.Duration) Options {
	if o.RetryInterval <= 0 {
		o.RetryInterval = retry
	}
	if o.Timeout <= 0 {
		o.Timeout = timeout
	}
	return o
}

// prober is one observation of a port's state. True means in use.
type prober func(ctx context.Context) (bool, error)

// WaitUntilFree blocks until the port can be claimed by this process, using
// the bind probe against all local interfaces. It returns nil once the port
// is observed free, an error wrapping ErrTimeout if the deadline elapses
// first, or the probe's own error if an attempt fails with anything other
// than address-in-use.
//
// This variant answers for the local machine only. To watch a remote host's
// port become free, use WaitUntilFreeOnHost, which observes via connection
// attempts instead.
func WaitUntilFree(ctx context.Context, port int, opts Options) error {
	if err := validatePort(port); err != nil {
		return err
	}
	probe := func(ctx context.Context) (bool, error) {
		return bindProbe(ctx, port)
	}
	return waitForState(ctx, probe, false, opts.withDefaults(DefaultFreeRetryInterval, DefaultFreeTimeout), Loopback, port)
}

// WaitUntilFreeOnHost blocks until connection attempts to host:port are
// refused, meaning nothing accepts connections there anymore. An empty host
// defaults to loopback. Note the observation differs from WaitUntilFree's
// bind probe: this variant can watch remote hosts, but cannot tell whether
// the local process could actually claim the port.
func WaitUntilFreeOnHost(ctx context.Context, port int, host string, opts Options) error {
	if err := validatePort(port); err != nil {
		return err
	}
	host = normalizeHost(host)
	probe := func(ctx context.Context) (bool, error) {
		return connectProbe(ctx, host, port)
	}
	return waitForState(ctx, probe, false, opts.withDefaults(DefaultFreeRetryInterval, DefaultFreeTimeout), host, port)
}

// WaitUntilUsed blocks until something accepts TCP connections on the port
// of the loopback interface. It returns nil once a connection succeeds, an
// error wrapping ErrTimeout if the deadline elapses first, or the probe's
// own error on any dial failure other than connection-refused.
func WaitUntilUsed(ctx context.Context, port int, opts Options) error {
	return WaitUntilUsedOnHost(ctx, port, Loopback, opts)
}

// WaitUntilUsedOnHost is the host-aware variant of WaitUntilUsed. An empty
// host defaults to loopback.
func WaitUntilUsedOnHost(ctx context.Context, port int, host string, opts Options) error {
	if err := validatePort(port); err != nil {
		return err
	}
	host = normalizeHost(host)
	probe := func(ctx context.Context) (bool, error) {
		return connectProbe(ctx, host, port)
	}
	return waitForState(ctx, probe, true, opts.withDefaults(DefaultUsedRetryInterval, DefaultUsedTimeout), host, port)
}

// waitForState drives one poll session: an immediate first probe, then one
// probe per retry interval, until the observed state matches want or the
// deadline elapses.
//
// The deadline is the session context's timeout, which also cancels an
// in-flight probe, so at settlement no socket or timer belonging to the
// session remains open. Probes run strictly sequentially — the next one is
// never issued before the previous attempt has completed. A probe that is
// killed by the deadline firing mid-flight is reported as a timeout, never
// as a probe failure, so the deadline/probe race settles deterministically
// and exactly once.
func waitForState(ctx context.Context, probe prober, want bool, opts Options, host string, port int) error {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	ticker := time.NewTicker(opts.RetryInterval)
	defer ticker.Stop()

	for {
		inUse, err := probe(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return settled(ctx, host, port)
			}
			// Fatal for the session: the probe is trusted to classify
			// refused/in-use itself, so anything it surfaces is not retried.
			return err
		}
		if inUse == want {
			return nil
		}

		select {
		case <-ctx.Done():
			return settled(ctx, host, port)
		case <-ticker.C:
		}
	}
}

// settled maps the session context's termination cause onto the public error
// taxonomy: the session deadline becomes ErrTimeout (carrying the target
// address), caller cancellation surfaces as the context's own error.
func settled(ctx context.Context, host string, port int) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrTimeout, net.JoinHostPort(host, strconv.Itoa(port)))
	}
	return ctx.Err()
}
