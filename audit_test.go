package firegate

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

// blockingSink holds every Emit until released.
type blockingSink struct {
	release chan struct{}
	once    sync.Once
}

func newBlockingSink() *blockingSink {
	return &blockingSink{release: make(chan struct{})}
}

func (s *blockingSink) Emit(_ context.Context, _ AuditEvent) {
	<-s.release
}

func (s *blockingSink) Release() {
	s.once.Do(func() { close(s.release) })
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	sink := NewChannelSink(8)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 8}, sink)

	for i, eventType := range []string{EventLoginSuccess, EventLoginFailure, EventForbidden} {
		d.Emit(context.Background(), AuditEvent{
			EventType: eventType,
			UserID:    string(rune('a' + i)),
		})
	}
	d.Close()

	want := []string{EventLoginSuccess, EventLoginFailure, EventForbidden}
	for _, expected := range want {
		select {
		case event := <-sink.Events():
			if event.EventType != expected {
				t.Fatalf("expected %s, got %s", expected, event.EventType)
			}
		case <-time.After(time.Second):
			t.Fatal("dispatcher did not deliver before timeout")
		}
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sink := newBlockingSink()
	defer sink.Release()

	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// One event blocks in the sink, one fills the buffer, the rest drop.
	for i := 0; i < 6; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: EventAdmissionDenied})
	}

	if d.Dropped() == 0 {
		t.Fatal("expected dropped events under backpressure")
	}

	sink.Release()
	d.Close()
}

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, NewChannelSink(1))
	if d != nil {
		t.Fatal("disabled audit must not allocate a dispatcher")
	}

	// Nil dispatcher methods are no-ops.
	d.Emit(context.Background(), AuditEvent{EventType: EventLoginSuccess})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reports zero drops")
	}
}

func TestJSONWriterSinkOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		Timestamp: time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
		EventType: EventAuthRejected,
		Path:      "/api/v1/data",
		Error:     "invalid credential",
	})
	sink.Emit(context.Background(), AuditEvent{
		EventType: EventLoginSuccess,
		UserID:    "u-1",
		Success:   true,
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var first AuditEvent
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 0 is not valid JSON: %v", err)
	}
	if first.EventType != EventAuthRejected || first.Path != "/api/v1/data" {
		t.Fatalf("unexpected decoded event: %+v", first)
	}
}
