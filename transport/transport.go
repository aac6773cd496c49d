package transport

import (
	"context"
	"sync"

	"github.com/go-ant/antcore/driver"
	"github.com/go-ant/antcore/frame"
	"github.com/go-ant/antcore/pkg"
)

// readChunk is the per-Read scratch buffer size.
const readChunk = 512

// Transport owns a [driver.Driver] and the single goroutine that reads
// bytes from it, decodes frames, classifies each one against the eight
// dispatch rules, and routes the result to waiting callers or to Data for
// the node's application dispatch loop. It also owns the outgoing timeslot
// queue: whenever a BROADCAST_DATA frame is observed, Transport drains at
// most one queued group and writes it immediately after.
type Transport struct {
	drv driver.Driver

	queue *OutgoingQueue

	mu         sync.Mutex
	respWait   map[frame.MessageID][]chan Response
	evtSub     map[int][]chan ChannelEvent
	burstBuf   map[int]*burstReassembler
	lastBcast  map[int][]byte

	// Data carries dispatched broadcast, acknowledge, and reassembled-burst
	// payloads for the node's application dispatch loop to consume.
	Data chan DataMessage

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Transport over an already-constructed, not-yet-opened
// driver. Callers must call Start before any frame traffic will flow.
func New(d driver.Driver) *Transport {
	return &Transport{
		drv:       d,
		queue:     NewOutgoingQueue(),
		respWait:  make(map[frame.MessageID][]chan Response),
		evtSub:    make(map[int][]chan ChannelEvent),
		burstBuf:  make(map[int]*burstReassembler),
		lastBcast: make(map[int][]byte),
		Data:      make(chan DataMessage, 64),
	}
}

// Start opens the underlying driver and spawns the reader goroutine.
func (t *Transport) Start(ctx context.Context) error {
	if err := t.drv.Open(ctx); err != nil {
		return err
	}
	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.readLoop(runCtx)
	return nil
}

// Stop cancels the reader goroutine, waits for it to exit, and closes the
// driver.
func (t *Transport) Stop() error {
	if t.cancel != nil {
		t.cancel()
	}
	if t.done != nil {
		<-t.done
	}
	return t.drv.Close()
}

// WriteImmediate writes one encoded frame directly, bypassing the outgoing
// timeslot queue. Used for configuration and control messages, which are
// not subject to the broadcast-tick injection discipline.
func (t *Transport) WriteImmediate(ctx context.Context, payload []byte) error {
	_, err := t.drv.Write(ctx, payload)
	return err
}

// EnqueueAcknowledged queues a single ACKNOWLEDGED_DATA frame for
// injection at the next broadcast tick.
func (t *Transport) EnqueueAcknowledged(channel int, payload []byte) {
	buf := make([]byte, 0, len(payload)+1)
	buf = append(buf, byte(channel&0xFF))
	buf = append(buf, payload...)
	t.queue.Enqueue([][]byte{frame.Encode(frame.AcknowledgedData, buf)})
}

// EnqueueBurst splits payload into 8-byte data packets (the first byte of
// each packet's encoded frame payload carries the burst header) and queues
// them as a single atomic group.
func (t *Transport) EnqueueBurst(channel int, payload []byte) {
	const chunkSize = 8
	var packets [][]byte
	seqNum := uint8(0)
	for off := 0; off < len(payload) || len(packets) == 0; {
		end := off + chunkSize
		if end > len(payload) {
			end = len(payload)
		}
		chunk := payload[off:end]
		last := end >= len(payload)

		seq := seqNum
		if last {
			seq |= 0x4
		}
		buf := make([]byte, 0, chunkSize+1)
		buf = append(buf, burstHeader(channel, seq))
		buf = append(buf, chunk...)
		for len(buf) < chunkSize+1 {
			buf = append(buf, 0)
		}
		packets = append(packets, frame.Encode(frame.BurstTransferData, buf))

		if last {
			break
		}
		seqNum = nextBurstSeqNum(burstSeqNum(seqNum))
		off = end
	}
	t.queue.Enqueue(packets)
}

// AwaitResponse registers for the next Response carrying the given message
// ID and blocks until it arrives or ctx is cancelled.
func (t *Transport) AwaitResponse(ctx context.Context, id frame.MessageID) (Response, error) {
	ch := make(chan Response, 1)
	t.mu.Lock()
	t.respWait[id] = append(t.respWait[id], ch)
	t.mu.Unlock()

	select {
	case r := <-ch:
		return r, nil
	case <-ctx.Done():
		t.removeRespWaiter(id, ch)
		return Response{}, pkg.ErrResponseTimeout
	}
}

func (t *Transport) removeRespWaiter(id frame.MessageID, ch chan Response) {
	t.mu.Lock()
	defer t.mu.Unlock()
	waiters := t.respWait[id]
	for i, w := range waiters {
		if w == ch {
			t.respWait[id] = append(waiters[:i], waiters[i+1:]...)
			return
		}
	}
}

// AwaitEvent blocks until a [ChannelEvent] arrives on the given channel
// whose code is one of want, returning it. An event whose code reports
// [frame.EventCode.IsFailure] and is not itself in want terminates the wait
// with [pkg.ErrTransferFailed] (or, for EVENT_RX_SEARCH_TIMEOUT,
// [pkg.ErrSearchTimeout]).
func (t *Transport) AwaitEvent(ctx context.Context, channel int, want ...frame.EventCode) (frame.EventCode, error) {
	ch := make(chan ChannelEvent, 8)
	t.mu.Lock()
	t.evtSub[channel] = append(t.evtSub[channel], ch)
	t.mu.Unlock()
	defer t.removeEvtSub(channel, ch)

	for {
		select {
		case evt := <-ch:
			for _, w := range want {
				if evt.Code == w {
					return evt.Code, nil
				}
			}
			if evt.Code.IsFailure() {
				if evt.Code == frame.EventRXSearchTimeout {
					return evt.Code, pkg.ErrSearchTimeout
				}
				return evt.Code, pkg.ErrTransferFailed
			}
		case <-ctx.Done():
			return 0, pkg.ErrEventTimeout
		}
	}
}

func (t *Transport) removeEvtSub(channel int, ch chan ChannelEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	subs := t.evtSub[channel]
	for i, s := range subs {
		if s == ch {
			t.evtSub[channel] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func (t *Transport) readLoop(ctx context.Context) {
	defer close(t.done)
	buf := make([]byte, 0, 4096)
	chunk := make([]byte, readChunk)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := t.drv.Read(ctx, chunk)
		if err != nil {
			pkg.LogError(pkg.ComponentTransport, "driver read failed", "err", err)
			return
		}
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}

		for {
			f, consumed, ok, derr := frame.Decode(buf)
			if derr != nil {
				pkg.LogWarn(pkg.ComponentTransport, "dropping byte after decode error", "err", derr)
				buf = buf[1:]
				continue
			}
			if !ok {
				break
			}
			buf = buf[consumed:]
			t.dispatch(ctx, f)
		}
	}
}

// dispatch classifies one decoded frame against the eight message
// classification rules and routes it to the appropriate waiter or data
// channel.
func (t *Transport) dispatch(ctx context.Context, f frame.Frame) {
	switch f.ID {
	case frame.StartupMessage, frame.SerialErrorMessage:
		t.deliverResponse(Response{ID: f.ID, Channel: NoChannel, Payload: f.Payload})
		return

	case frame.ResponseANTVersion, frame.ResponseCapabilities, frame.ResponseSerialNumber,
		frame.UnassignChannel, frame.CloseChannel, frame.EnableExtRXMessages:
		t.deliverResponse(Response{ID: f.ID, Channel: NoChannel, Payload: f.Payload})
		return

	case frame.ResponseChannelStatus, frame.ResponseChannelID:
		if len(f.Payload) < 1 {
			return
		}
		t.deliverResponse(Response{ID: f.ID, Channel: int(f.Payload[0]), Payload: f.Payload})
		return

	case frame.ResponseChannel:
		if len(f.Payload) < 2 {
			return
		}
		channel := int(f.Payload[0])
		subID := frame.MessageID(f.Payload[1])
		if subID != 0x01 {
			if len(f.Payload) < 3 {
				return
			}
			t.deliverResponse(Response{
				ID:      subID,
				Channel: channel,
				Code:    frame.EventCode(f.Payload[2]),
				Payload: f.Payload,
			})
			return
		}
		if len(f.Payload) < 3 {
			return
		}
		t.deliverEvent(ChannelEvent{Channel: channel, Code: frame.EventCode(f.Payload[2])})
		return

	case frame.BroadcastData:
		if len(f.Payload) < 1 {
			return
		}
		channel := int(f.Payload[0])
		data := f.Payload[1:]
		if last, ok := t.lastBcast[channel]; !ok || !bytesEqual(last, data) {
			t.lastBcast[channel] = append([]byte(nil), data...)
			t.deliverData(ctx, DataMessage{Kind: KindBroadcast, Channel: channel, Payload: data})
		}
		t.drainTimeslot(ctx)
		return

	case frame.AcknowledgedData:
		if len(f.Payload) < 1 {
			return
		}
		channel := int(f.Payload[0])
		t.deliverData(ctx, DataMessage{Kind: KindAcknowledge, Channel: channel, Payload: f.Payload[1:]})
		return

	case frame.BurstTransferData:
		if len(f.Payload) < 1 {
			return
		}
		header := f.Payload[0]
		channel := burstChannel(header)
		seq := burstSequence(header)

		t.mu.Lock()
		r, ok := t.burstBuf[channel]
		if !ok {
			r = &burstReassembler{}
			t.burstBuf[channel] = r
		}
		t.mu.Unlock()

		done, result, err := r.Feed(seq, f.Payload[1:])
		if err != nil {
			pkg.LogWarn(pkg.ComponentTransport, "burst protocol violation", "channel", channel, "err", err)
			return
		}
		if done {
			t.deliverData(ctx, DataMessage{Kind: KindBurst, Channel: channel, Payload: result})
		}
		return

	default:
		pkg.LogDebug(pkg.ComponentTransport, "unclassified frame", "id", f.ID.String())
	}
}

// drainTimeslot writes the next queued outgoing group, if any, immediately
// after observing a broadcast tick.
func (t *Transport) drainTimeslot(ctx context.Context) {
	group, ok := t.queue.Pop()
	if !ok {
		return
	}
	for _, buf := range group {
		if _, err := t.drv.Write(ctx, buf); err != nil {
			pkg.LogError(pkg.ComponentTransport, "timeslot write failed", "err", err)
			return
		}
	}
}

func (t *Transport) deliverResponse(r Response) {
	t.mu.Lock()
	waiters := t.respWait[r.ID]
	delete(t.respWait, r.ID)
	t.mu.Unlock()
	for _, w := range waiters {
		w <- r
	}
}

func (t *Transport) deliverEvent(e ChannelEvent) {
	t.mu.Lock()
	subs := append([]chan ChannelEvent(nil), t.evtSub[e.Channel]...)
	t.mu.Unlock()
	for _, s := range subs {
		select {
		case s <- e:
		default:
		}
	}
}

func (t *Transport) deliverData(ctx context.Context, m DataMessage) {
	select {
	case t.Data <- m:
	case <-ctx.Done():
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
