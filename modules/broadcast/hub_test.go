package broadcast

import (
	"encoding/json"
	"testing"
	"time"
)

// fakeConn captures frames the writer goroutine delivers.
type fakeConn struct {
	written chan []byte
	closed  chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		written: make(chan []byte, 128),
		closed:  make(chan struct{}),
	}
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.written <- data
	return nil
}

func (f *fakeConn) Close() error {
	close(f.closed)
	return nil
}

func (f *fakeConn) next(t *testing.T) Frame {
	t.Helper()
	select {
	case data := <-f.written:
		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			t.Fatalf("Failed to decode frame: %v", err)
		}
		return frame
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for frame")
		return Frame{}
	}
}

func (f *fakeConn) expectNone(t *testing.T) {
	t.Helper()
	select {
	case data := <-f.written:
		t.Fatalf("Unexpected frame delivered: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_BroadcastReachesRoomMembersIncludingSender(t *testing.T) {
	hub := NewHub()
	sender, peer, outsider := newFakeConn(), newFakeConn(), newFakeConn()

	hub.Register("sender", sender)
	hub.Register("peer", peer)
	hub.Register("outsider", outsider)
	hub.Join("sender", "room-a")
	hub.Join("peer", "room-a")
	hub.Join("outsider", "room-b")

	d := hub.Broadcast("room-a", Frame{Type: FrameMessageBroadcast, RoomID: "room-a", Body: "hello"})
	if d.Queued != 2 || d.Dropped != 0 {
		t.Fatalf("Delivery = %+v, want 2 queued, 0 dropped", d)
	}

	for _, conn := range []*fakeConn{sender, peer} {
		frame := conn.next(t)
		if frame.Type != FrameMessageBroadcast || frame.Body != "hello" {
			t.Errorf("Frame = %+v, want message-broadcast with body %q", frame, "hello")
		}
	}
	outsider.expectNone(t)
}

func TestHub_JoinMovesConnectionBetweenRooms(t *testing.T) {
	hub := NewHub()
	conn := newFakeConn()

	hub.Register("conn-1", conn)
	hub.Join("conn-1", "room-a")
	hub.Join("conn-1", "room-b")

	if room, _ := hub.Room("conn-1"); room != "room-b" {
		t.Errorf("Room() = %q, want room-b", room)
	}

	hub.Broadcast("room-a", Frame{Type: FrameMessageBroadcast, Body: "old room"})
	conn.expectNone(t)

	hub.Broadcast("room-b", Frame{Type: FrameMessageBroadcast, Body: "new room"})
	if frame := conn.next(t); frame.Body != "new room" {
		t.Errorf("Frame body = %q, want %q", frame.Body, "new room")
	}
}

func TestHub_EmptyRoomIsDropped(t *testing.T) {
	hub := NewHub()
	conn := newFakeConn()

	hub.Register("conn-1", conn)
	hub.Join("conn-1", "room-a")
	if got := hub.RoomCount(); got != 1 {
		t.Fatalf("RoomCount() = %d, want 1", got)
	}

	hub.Leave("conn-1")
	if got := hub.RoomCount(); got != 0 {
		t.Errorf("RoomCount() after last leave = %d, want 0", got)
	}
}

func TestHub_UnregisterRemovesMembershipAndClosesConn(t *testing.T) {
	hub := NewHub()
	conn := newFakeConn()

	hub.Register("conn-1", conn)
	hub.Join("conn-1", "room-a")
	hub.Unregister("conn-1")

	select {
	case <-conn.closed:
	case <-time.After(time.Second):
		t.Fatal("Connection was not closed on unregister")
	}

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("ClientCount() = %d, want 0", got)
	}
	if d := hub.Broadcast("room-a", Frame{Type: FrameMessageBroadcast}); d.Queued != 0 {
		t.Errorf("Broadcast after unregister queued %d frames, want 0", d.Queued)
	}

	// Unknown ids are a no-op.
	hub.Unregister("conn-1")
	hub.Unregister("never-registered")
}

// blockedConn never acknowledges writes, so its queue stays full once
// the buffer is saturated.
type blockedConn struct {
	release chan struct{}
}

func (b *blockedConn) WriteMessage(_ int, _ []byte) error {
	<-b.release
	return nil
}

func (b *blockedConn) Close() error { return nil }

func TestHub_SlowConsumerDoesNotBlockBroadcast(t *testing.T) {
	hub := NewHub()
	slow := &blockedConn{release: make(chan struct{})}
	fast := newFakeConn()
	defer close(slow.release)

	hub.Register("slow", slow)
	hub.Register("fast", fast)
	hub.Join("slow", "room-a")
	hub.Join("fast", "room-a")

	// Saturate the slow client's queue: one frame may be in flight in
	// the writer, so overshoot the buffer.
	for i := 0; i < sendBuffer+2; i++ {
		hub.Broadcast("room-a", Frame{Type: FrameMessageBroadcast, Body: "flood"})
	}

	done := make(chan Delivery, 1)
	go func() {
		done <- hub.Broadcast("room-a", Frame{Type: FrameMessageBroadcast, Body: "after flood"})
	}()

	select {
	case d := <-done:
		if d.Dropped == 0 {
			t.Errorf("Delivery = %+v, want at least one drop for the slow client", d)
		}
		if d.Queued == 0 {
			t.Errorf("Delivery = %+v, want the fast client still queued", d)
		}
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a slow consumer")
	}
}

func TestHub_SendToTargetsSingleConnection(t *testing.T) {
	hub := NewHub()
	target, other := newFakeConn(), newFakeConn()

	hub.Register("target", target)
	hub.Register("other", other)
	hub.Join("target", "room-a")
	hub.Join("other", "room-a")

	if !hub.SendTo("target", Frame{Type: FrameError, Code: CodeValidation, Detail: "invalid message: body"}) {
		t.Fatal("SendTo() = false, want true")
	}

	frame := target.next(t)
	if frame.Type != FrameError || frame.Code != CodeValidation {
		t.Errorf("Frame = %+v, want error frame with validation code", frame)
	}
	other.expectNone(t)

	if hub.SendTo("unknown", Frame{Type: FrameError}) {
		t.Error("SendTo(unknown) = true, want false")
	}
}
