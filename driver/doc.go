// Package driver provides the byte-level I/O contract Transport runs its
// reader/writer loop over, plus two concrete backends: a USB bulk driver
// for the ANT USB stick and a CDC-serial fallback for its virtual COM
// port. The Driver is the only component allowed to touch OS USB/serial
// APIs; everything above it deals only in bytes.
package driver
