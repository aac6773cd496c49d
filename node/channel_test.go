package node

import (
	"context"
	"testing"
	"time"

	"github.com/go-ant/antcore/frame"
	"github.com/go-ant/antcore/transport"
)

func startedNodeWithChannel(t *testing.T) (*Node, *Channel, *mockDriver) {
	t.Helper()
	d := newMockDriver()
	d.onWrite = func(data []byte) []byte {
		f, _, ok, err := frame.Decode(data)
		if err != nil || !ok {
			return nil
		}
		switch f.ID {
		case frame.ResetSystem:
			return frame.Encode(frame.StartupMessage, []byte{0})
		case frame.RequestMessage:
			switch frame.MessageID(f.Payload[1]) {
			case frame.ResponseCapabilities:
				return frame.Encode(frame.ResponseCapabilities, []byte{8, 1, 0, 0})
			case frame.ResponseANTVersion:
				return frame.Encode(frame.ResponseANTVersion, []byte("3.1\x00"))
			case frame.ResponseSerialNumber:
				return frame.Encode(frame.ResponseSerialNumber, []byte{1, 0, 0, 0})
			}
		case frame.AssignChannel, frame.OpenChannel:
			channel := f.Payload[0]
			return frame.Encode(frame.ResponseChannel, []byte{channel, byte(f.ID), byte(frame.ResponseNoError)})
		case frame.CloseChannel:
			return frame.Encode(frame.ResponseChannel, []byte{0, byte(frame.CloseChannel), byte(frame.ResponseNoError)})
		}
		return nil
	}

	n := &Node{drv: d, t: transport.New(d)}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := n.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { n.Stop() })

	ch, err := n.NewChannel(ctx, DefaultChannelConfig())
	if err != nil {
		t.Fatalf("NewChannel() error = %v", err)
	}
	return n, ch, d
}

func TestChannel_Open_TransitionsToSearching(t *testing.T) {
	_, ch, _ := startedNodeWithChannel(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := ch.Open(ctx); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if ch.State() != StateSearching {
		t.Errorf("State() = %v, want searching", ch.State())
	}
}

func TestChannel_Deliver_SearchingToTracking(t *testing.T) {
	_, ch, _ := startedNodeWithChannel(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ch.Open(ctx); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	var gotPayload []byte
	ch.SetCallbacks(Callbacks{OnBroadcast: func(p []byte) { gotPayload = p }})
	ch.deliver(transport.DataMessage{Kind: transport.KindBroadcast, Channel: int(ch.ID()), Payload: []byte{1, 2, 3}})

	if ch.State() != StateTracking {
		t.Errorf("State() = %v, want tracking", ch.State())
	}
	if string(gotPayload) != "\x01\x02\x03" {
		t.Errorf("gotPayload = %v, want [1 2 3]", gotPayload)
	}
}

func TestChannel_Close_WaitsForChannelClosedEvent(t *testing.T) {
	n, ch, d := startedNodeWithChannel(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := ch.Open(ctx); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	closeResult := make(chan error, 1)
	go func() {
		closeResult <- ch.Close(ctx)
	}()

	// CLOSE_CHANNEL's own ack was already scripted via onWrite; the
	// module also emits EVENT_CHANNEL_CLOSED as a channel event, which
	// this test injects directly to simulate the radio's second message.
	time.Sleep(20 * time.Millisecond)
	d.feed(frame.Encode(frame.ResponseChannel, []byte{ch.ID(), 0x01, byte(frame.EventChannelClosed)}))

	select {
	case err := <-closeResult:
		if err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Close() to observe EVENT_CHANNEL_CLOSED")
	}
	if ch.State() != StateClosed {
		t.Errorf("State() = %v, want closed", ch.State())
	}
	_ = n
}

func TestChannel_SendAcknowledged_RetriesOnceThenSucceeds(t *testing.T) {
	_, ch, d := startedNodeWithChannel(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ch.Open(ctx); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	attempts := 0
	d.onWrite = func(data []byte) []byte {
		f, _, ok, err := frame.Decode(data)
		if err != nil || !ok || f.ID != frame.AcknowledgedData {
			return nil
		}
		attempts++
		if attempts == 1 {
			return frame.Encode(frame.ResponseChannel, []byte{ch.ID(), 0x01, byte(frame.EventTransferTXFailed)})
		}
		return frame.Encode(frame.ResponseChannel, []byte{ch.ID(), 0x01, byte(frame.EventTransferTXComplete)})
	}

	// the outgoing queue only drains on a broadcast tick; drive one per
	// attempt.
	go func() {
		for i := 0; i < 4; i++ {
			time.Sleep(10 * time.Millisecond)
			d.feed(frame.Encode(frame.BroadcastData, []byte{ch.ID(), 0}))
		}
	}()

	if err := ch.SendAcknowledged(ctx, []byte{0xAA}); err != nil {
		t.Fatalf("SendAcknowledged() error = %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2 (one retry)", attempts)
	}
}
