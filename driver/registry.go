package driver

import "github.com/go-ant/antcore/pkg"

// Registry is an explicit, caller-ordered list of driver factories. It
// replaces the source's lazy, package-level mutable driver list (§9 Design
// Note) with plain dependency injection: the caller builds one and passes
// it to node.New instead of the module discovering drivers through global
// state.
type Registry []Factory

// DefaultRegistry returns the built-in factories in priority order: USB
// bulk first, CDC serial as fallback. Callers that want different ordering
// or additional/custom drivers build their own Registry instead of using
// this one.
func DefaultRegistry() Registry {
	return Registry{NewUSBDriver, NewSerialDriver}
}

// Find tries each factory in order and returns the first Driver whose
// hardware is present, unopened. Returns [pkg.ErrDriverNotFound] if none
// match; the caller still must call Open on the result.
func (r Registry) Find() (Driver, error) {
	for _, factory := range r {
		d, found := factory()
		if !found {
			continue
		}
		return d, nil
	}
	return nil, pkg.ErrDriverNotFound
}
