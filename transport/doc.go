// Package transport owns the Driver and runs the single reader loop that
// turns a byte stream into classified, dispatched ANT messages: responses,
// channel events, broadcast/acknowledge/burst data. It also owns the
// outgoing timeslot queue that injects at most one acknowledged frame or
// one complete burst group per broadcast tick.
package transport
