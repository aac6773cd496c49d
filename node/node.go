package node

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-ant/antcore/driver"
	"github.com/go-ant/antcore/frame"
	"github.com/go-ant/antcore/pkg"
	"github.com/go-ant/antcore/transport"
)

// DefaultResponseTimeout is the default wait window for configuration
// responses and channel events, per §5 of the specification.
const DefaultResponseTimeout = 5 * time.Second

// Node is the top-level ANT stack facade: it owns the Transport, the
// network-key table, the channel table, and the application dispatch loop
// that invokes per-channel callbacks for broadcast/acknowledge/burst data.
type Node struct {
	t   *transport.Transport
	drv driver.Driver

	mu      sync.RWMutex
	running bool

	MaxChannels uint8
	MaxNetworks uint8
	Serial      uint32
	ANTVersion  string
	Caps        CapabilitySet

	networkKeys [][]byte
	channels    []*Channel

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New locates hardware via reg and returns an unopened Node. Call Start to
// bring the stack up.
func New(reg driver.Registry) (*Node, error) {
	d, err := reg.Find()
	if err != nil {
		return nil, err
	}
	return &Node{
		drv: d,
		t:   transport.New(d),
	}, nil
}

// Start opens the Transport, resets the module, requests its capabilities,
// ANT version, and serial number, and spawns the application dispatch
// loop.
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	if n.running {
		n.mu.Unlock()
		return pkg.ErrAlreadyRunning
	}
	n.running = true
	n.mu.Unlock()

	if err := n.t.Start(ctx); err != nil {
		n.mu.Lock()
		n.running = false
		n.mu.Unlock()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	n.cancel = cancel

	if err := n.resetAndQuery(ctx); err != nil {
		n.Stop()
		return err
	}

	n.wg.Add(1)
	go n.dispatchLoop(runCtx)

	pkg.LogInfo(pkg.ComponentNode, "node started",
		"max_channels", n.MaxChannels, "max_networks", n.MaxNetworks,
		"serial", n.Serial, "ant_version", n.ANTVersion)
	return nil
}

func (n *Node) resetAndQuery(ctx context.Context) error {
	startupCtx, cancel := context.WithTimeout(ctx, DefaultResponseTimeout)
	defer cancel()
	waitCh := make(chan error, 1)
	go func() {
		_, err := n.t.AwaitResponse(startupCtx, frame.StartupMessage)
		waitCh <- err
	}()
	if err := n.t.WriteImmediate(ctx, frame.Encode(frame.ResetSystem, []byte{0})); err != nil {
		return err
	}
	if err := <-waitCh; err != nil {
		return err
	}

	caps, err := n.requestMessage(ctx, frame.ResponseCapabilities)
	if err != nil {
		return err
	}
	n.Caps = decodeCapabilities(caps.Payload)
	if len(caps.Payload) >= 2 {
		n.MaxChannels = caps.Payload[0]
		n.MaxNetworks = caps.Payload[1]
	}
	n.channels = make([]*Channel, n.MaxChannels)
	n.networkKeys = make([][]byte, n.MaxNetworks)

	ver, err := n.requestMessage(ctx, frame.ResponseANTVersion)
	if err != nil {
		return err
	}
	n.ANTVersion = string(ver.Payload)

	ser, err := n.requestMessage(ctx, frame.ResponseSerialNumber)
	if err != nil {
		return err
	}
	if len(ser.Payload) >= 4 {
		n.Serial = uint32(ser.Payload[0]) | uint32(ser.Payload[1])<<8 |
			uint32(ser.Payload[2])<<16 | uint32(ser.Payload[3])<<24
	}
	return nil
}

// requestMessage sends REQUEST_MESSAGE for the given response ID and awaits
// the corresponding channel-less response.
func (n *Node) requestMessage(ctx context.Context, want frame.MessageID) (transport.Response, error) {
	reqCtx, cancel := context.WithTimeout(ctx, DefaultResponseTimeout)
	defer cancel()
	waitCh := make(chan transport.Response, 1)
	errCh := make(chan error, 1)
	go func() {
		r, err := n.t.AwaitResponse(reqCtx, want)
		if err != nil {
			errCh <- err
			return
		}
		waitCh <- r
	}()
	if err := n.t.WriteImmediate(ctx, frame.Encode(frame.RequestMessage, []byte{0, byte(want)})); err != nil {
		return transport.Response{}, err
	}
	select {
	case r := <-waitCh:
		return r, nil
	case err := <-errCh:
		return transport.Response{}, err
	}
}

// SetNetworkKey programs the given network number's 8-byte key and blocks
// for the module's acknowledgement.
func (n *Node) SetNetworkKey(ctx context.Context, network uint8, key [8]byte) error {
	n.mu.Lock()
	if int(network) >= len(n.networkKeys) {
		n.mu.Unlock()
		return pkg.ErrInvalidParameter
	}
	n.networkKeys[network] = append([]byte(nil), key[:]...)
	n.mu.Unlock()

	payload := append([]byte{network}, key[:]...)
	return n.writeAndAwaitAck(ctx, frame.SetNetworkKey, payload, NoChannelOwner)
}

// NewChannel allocates the lowest-indexed free channel, assigns it per cfg,
// and blocks on the ASSIGN_CHANNEL response.
func (n *Node) NewChannel(ctx context.Context, cfg ChannelConfig) (*Channel, error) {
	n.mu.Lock()
	idx := -1
	for i, c := range n.channels {
		if c == nil {
			idx = i
			break
		}
	}
	if idx < 0 {
		n.mu.Unlock()
		return nil, pkg.ErrNoChannels
	}
	ch := newChannel(n, uint8(idx), cfg)
	n.channels[idx] = ch
	n.mu.Unlock()

	if err := ch.assign(ctx); err != nil {
		n.mu.Lock()
		n.channels[idx] = nil
		n.mu.Unlock()
		return nil, err
	}
	return ch, nil
}

// writeAndAwaitAck writes a configuration frame and awaits its
// RESPONSE_CHANNEL acknowledgement (classification rule 4), filtering out
// responses intended for a different channel than owner (use
// NoChannelOwner for channel-less commands such as SET_NETWORK_KEY).
func (n *Node) writeAndAwaitAck(ctx context.Context, id frame.MessageID, payload []byte, owner int) error {
	ackCtx, cancel := context.WithTimeout(ctx, DefaultResponseTimeout)
	defer cancel()

	resultCh := make(chan error, 1)
	go func() {
		for {
			r, err := n.t.AwaitResponse(ackCtx, id)
			if err != nil {
				resultCh <- err
				return
			}
			if owner == NoChannelOwner || r.Channel == owner {
				if r.Code != frame.ResponseNoError {
					resultCh <- fmt.Errorf("%w: %s returned %s", pkg.ErrProtocolViolation, id, r.Code)
					return
				}
				resultCh <- nil
				return
			}
		}
	}()

	if err := n.t.WriteImmediate(ctx, frame.Encode(id, payload)); err != nil {
		return err
	}
	return <-resultCh
}

// NoChannelOwner marks a writeAndAwaitAck call that isn't scoped to a
// specific channel.
const NoChannelOwner = -1

func (n *Node) dispatchLoop(ctx context.Context) {
	defer n.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-n.t.Data:
			if !ok {
				return
			}
			n.mu.RLock()
			var ch *Channel
			if msg.Channel >= 0 && msg.Channel < len(n.channels) {
				ch = n.channels[msg.Channel]
			}
			n.mu.RUnlock()
			if ch == nil {
				continue
			}
			ch.deliver(msg)
		}
	}
}

// Stop cancels the dispatch loop, stops the Transport, and releases the
// Driver. Idempotent: a second call on an already-stopped Node returns
// pkg.ErrNotRunning.
func (n *Node) Stop() error {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return pkg.ErrNotRunning
	}
	n.running = false
	n.mu.Unlock()

	if n.cancel != nil {
		n.cancel()
	}
	n.wg.Wait()
	return n.t.Stop()
}
