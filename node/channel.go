package node

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-ant/antcore/frame"
	"github.com/go-ant/antcore/pkg"
	"github.com/go-ant/antcore/transport"
)

// ChannelState is a channel's position in its state machine.
type ChannelState int

// Channel states, per the state diagram in §4.5.
const (
	StateUnassigned ChannelState = iota
	StateAssigned
	StateSearching
	StateTracking
	StateClosed
)

// String returns a human-readable state name.
func (s ChannelState) String() string {
	switch s {
	case StateUnassigned:
		return "unassigned"
	case StateAssigned:
		return "assigned"
	case StateSearching:
		return "searching"
	case StateTracking:
		return "tracking"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Callbacks holds the per-channel application callback slots invoked by the
// dispatch loop. Callbacks are invoked synchronously from the dispatch
// goroutine and must not block indefinitely.
type Callbacks struct {
	OnBroadcast   func(payload []byte)
	OnAcknowledge func(payload []byte)
	OnBurst       func(payload []byte)
}

// Channel is one module-assigned channel slot: its configuration, state
// machine, and acknowledged/burst send operations.
type Channel struct {
	node *Node
	id   uint8
	cfg  ChannelConfig

	mu    sync.Mutex
	state ChannelState
	cb    Callbacks
}

func newChannel(n *Node, id uint8, cfg ChannelConfig) *Channel {
	return &Channel{node: n, id: id, cfg: cfg, state: StateUnassigned}
}

// ID returns the module-assigned channel number.
func (c *Channel) ID() uint8 { return c.id }

// State returns the channel's current state.
func (c *Channel) State() ChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetCallbacks installs the application callback slots for this channel.
func (c *Channel) SetCallbacks(cb Callbacks) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cb = cb
}

func (c *Channel) setState(s ChannelState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// assign sends ASSIGN_CHANNEL and blocks on its acknowledgement.
func (c *Channel) assign(ctx context.Context) error {
	payload := []byte{c.id, byte(c.cfg.Type), c.cfg.NetworkNumber}
	if err := c.node.writeAndAwaitAck(ctx, frame.AssignChannel, payload, int(c.id)); err != nil {
		return err
	}
	c.setState(StateAssigned)
	return nil
}

// Unassign sends UNASSIGN_CHANNEL, returning the channel to Unassigned.
// Its acknowledgement arrives channel-less per classification rule 2, so
// the wait is not scoped to this channel's number.
func (c *Channel) Unassign(ctx context.Context) error {
	if err := c.node.writeAndAwaitAck(ctx, frame.UnassignChannel, []byte{c.id}, NoChannelOwner); err != nil {
		return err
	}
	c.setState(StateUnassigned)
	return nil
}

// SetID configures the channel's device number, device type, and
// transmission type.
func (c *Channel) SetID(ctx context.Context, deviceNumber uint16, deviceType, transmissionType uint8) error {
	payload := []byte{
		c.id,
		byte(deviceNumber), byte(deviceNumber >> 8),
		deviceType, transmissionType,
	}
	if err := c.node.writeAndAwaitAck(ctx, frame.SetChannelID, payload, int(c.id)); err != nil {
		return err
	}
	c.cfg.DeviceNumber = deviceNumber
	c.cfg.DeviceType = deviceType
	c.cfg.TransmissionType = transmissionType
	return nil
}

// SetPeriod configures the channel message period, in 1/32768 s units.
func (c *Channel) SetPeriod(ctx context.Context, period uint16) error {
	payload := []byte{c.id, byte(period), byte(period >> 8)}
	if err := c.node.writeAndAwaitAck(ctx, frame.SetChannelPeriod, payload, int(c.id)); err != nil {
		return err
	}
	c.cfg.Period = period
	return nil
}

// SetSearchTimeout configures the search timeout in 2.5 s units.
func (c *Channel) SetSearchTimeout(ctx context.Context, timeout uint8) error {
	payload := []byte{c.id, timeout}
	if err := c.node.writeAndAwaitAck(ctx, frame.SetSearchTimeout, payload, int(c.id)); err != nil {
		return err
	}
	c.cfg.SearchTimeout = timeout
	return nil
}

// SetRFFreq configures the RF frequency offset from 2400 MHz, in [0, 124].
func (c *Channel) SetRFFreq(ctx context.Context, offset uint8) error {
	if offset > 124 {
		return pkg.ErrInvalidParameter
	}
	payload := []byte{c.id, offset}
	if err := c.node.writeAndAwaitAck(ctx, frame.SetChannelRFFreq, payload, int(c.id)); err != nil {
		return err
	}
	c.cfg.RFFrequency = offset
	return nil
}

// EnableExtendedMessages toggles extended receive headers (device
// number/type/transmission type appended to broadcast payloads).
func (c *Channel) EnableExtendedMessages(ctx context.Context, enable bool) error {
	var flag byte
	if enable {
		flag = 1
	}
	if err := c.node.writeAndAwaitAck(ctx, frame.EnableExtRXMessages, []byte{flag}, NoChannelOwner); err != nil {
		return err
	}
	c.cfg.ExtendedRXEnabled = enable
	return nil
}

// Open sends OPEN_CHANNEL and transitions the channel to Searching. The
// channel transitions onward to Tracking the first time data is delivered
// for it by the dispatch loop. A search timeout does not change the state
// recorded here; it surfaces only as [pkg.ErrSearchTimeout] from a
// pending event wait.
func (c *Channel) Open(ctx context.Context) error {
	if err := c.node.writeAndAwaitAck(ctx, frame.OpenChannel, []byte{c.id}, int(c.id)); err != nil {
		return err
	}
	c.setState(StateSearching)
	return nil
}

// OpenRXScanMode opens the channel in promiscuous receive mode: wildcard
// device ID, matching broadcasts from any master, extended headers
// required to identify the originating device (see [Scanner]).
func (c *Channel) OpenRXScanMode(ctx context.Context) error {
	if err := c.node.writeAndAwaitAck(ctx, frame.OpenRXScanMode, []byte{c.id}, int(c.id)); err != nil {
		return err
	}
	c.setState(StateSearching)
	return nil
}

// Close sends CLOSE_CHANNEL, then blocks for EVENT_CHANNEL_CLOSED, which
// signals the channel has fully quiesced. CLOSE_CHANNEL's own
// acknowledgement arrives channel-less per classification rule 2.
func (c *Channel) Close(ctx context.Context) error {
	if err := c.node.writeAndAwaitAck(ctx, frame.CloseChannel, []byte{c.id}, NoChannelOwner); err != nil {
		return err
	}
	if _, err := c.node.t.AwaitEvent(ctx, int(c.id), frame.EventChannelClosed); err != nil {
		return err
	}
	c.setState(StateClosed)
	return nil
}

// RequestChannelStatus requests and returns the module's reported status
// byte for this channel.
func (c *Channel) RequestChannelStatus(ctx context.Context) ([]byte, error) {
	r, err := c.requestChannelMessage(ctx, frame.ResponseChannelStatus)
	if err != nil {
		return nil, err
	}
	return r.Payload, nil
}

// RequestChannelID requests and returns the module's reported device
// number/type/transmission type for this channel.
func (c *Channel) RequestChannelID(ctx context.Context) ([]byte, error) {
	r, err := c.requestChannelMessage(ctx, frame.ResponseChannelID)
	if err != nil {
		return nil, err
	}
	return r.Payload, nil
}

func (c *Channel) requestChannelMessage(ctx context.Context, want frame.MessageID) (transport.Response, error) {
	reqCtx, cancel := context.WithTimeout(ctx, DefaultResponseTimeout)
	defer cancel()
	resultCh := make(chan transport.Response, 1)
	errCh := make(chan error, 1)
	go func() {
		for {
			r, err := c.node.t.AwaitResponse(reqCtx, want)
			if err != nil {
				errCh <- err
				return
			}
			if r.Channel == int(c.id) {
				resultCh <- r
				return
			}
		}
	}()
	if err := c.node.t.WriteImmediate(ctx, frame.Encode(frame.RequestMessage, []byte{c.id, byte(want)})); err != nil {
		return transport.Response{}, err
	}
	select {
	case r := <-resultCh:
		return r, nil
	case err := <-errCh:
		return transport.Response{}, err
	}
}

// SendAcknowledged queues payload as an ACKNOWLEDGED_DATA frame and blocks
// for its completion, retrying once on a reported transfer failure before
// propagating the error to the caller.
func (c *Channel) SendAcknowledged(ctx context.Context, payload []byte) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		c.node.t.EnqueueAcknowledged(int(c.id), payload)
		_, err := c.node.t.AwaitEvent(ctx, int(c.id), frame.EventTransferTXComplete)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("channel %d: acknowledged send failed after retry: %w", c.id, lastErr)
}

// SendBurst queues payload as a burst transfer group and blocks for its
// start and completion events, retrying once on a reported transfer
// failure before propagating the error to the caller.
func (c *Channel) SendBurst(ctx context.Context, payload []byte) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		c.node.t.EnqueueBurst(int(c.id), payload)
		if _, err := c.node.t.AwaitEvent(ctx, int(c.id), frame.EventTransferTXStart); err != nil {
			lastErr = err
			continue
		}
		if _, err := c.node.t.AwaitEvent(ctx, int(c.id), frame.EventTransferTXComplete); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("channel %d: burst send failed after retry: %w", c.id, lastErr)
}

// deliver routes one dispatched data message to this channel's callbacks,
// advancing Searching to Tracking on first contact with a master.
func (c *Channel) deliver(msg transport.DataMessage) {
	c.mu.Lock()
	if c.state == StateSearching {
		c.state = StateTracking
	}
	cb := c.cb
	c.mu.Unlock()

	switch msg.Kind {
	case transport.KindBroadcast:
		if cb.OnBroadcast != nil {
			cb.OnBroadcast(msg.Payload)
		}
	case transport.KindAcknowledge:
		if cb.OnAcknowledge != nil {
			cb.OnAcknowledge(msg.Payload)
		}
	case transport.KindBurst:
		if cb.OnBurst != nil {
			cb.OnBurst(msg.Payload)
		}
	}
}
