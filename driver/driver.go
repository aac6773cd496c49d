package driver

import "context"

// Driver is the byte-level transport contract for an ANT radio module.
// Implementations are thread-confined: Transport calls Read from exactly
// one goroutine and Write from exactly one (possibly different) goroutine,
// per §4.1/§5 of the specification.
type Driver interface {
	// Open locates the module, claims it, and prepares it for Read/Write.
	// Returns [pkg.ErrDriverNotFound] if no compatible module is present.
	Open(ctx context.Context) error

	// Read blocks for at most a short, implementation-defined timeout and
	// returns whatever bytes arrived. A zero-length, nil-error return is
	// legal and must not be treated as an error by the caller.
	Read(ctx context.Context, buf []byte) (int, error)

	// Write blocks until the bytes are handed to the module or the write
	// stalls, in which case it returns [pkg.ErrDriverTimeout].
	Write(ctx context.Context, data []byte) (int, error)

	// Close releases the module. Safe to call after a partial or failed
	// Open.
	Close() error
}

// Factory probes for one kind of compatible hardware and, if present,
// returns a [Driver] ready to be opened. The bool return reports whether
// that hardware was found at all, so [Registry] can try the next factory
// without treating absence as an error.
type Factory func() (Driver, bool)
