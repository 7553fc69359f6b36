package transport

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/nativeui-go/nativeui/pkg/log"
	"github.com/nativeui-go/nativeui/pkg/wire"
)

func TestFrameWriterReader(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"small message", []byte("hello")},
		{"medium message", bytes.Repeat([]byte("x"), 1000)},
		{"max size message", bytes.Repeat([]byte("y"), DefaultMaxMessageSize)},
		{"single byte", []byte{0x42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)

			if err := NewFrameWriter(buf).WriteFrame(tt.payload); err != nil {
				t.Fatalf("WriteFrame failed: %v", err)
			}
			if buf.Len() != FrameSize(len(tt.payload)) {
				t.Errorf("frame size = %d, want %d", buf.Len(), FrameSize(len(tt.payload)))
			}

			got, err := NewFrameReader(buf).ReadFrame()
			if err != nil {
				t.Fatalf("ReadFrame failed: %v", err)
			}
			if !bytes.Equal(got, tt.payload) {
				t.Error("payload mismatch")
			}
		})
	}
}

func TestFrameWriterRejects(t *testing.T) {
	w := NewFrameWriterWithMaxSize(io.Discard, 8)

	if err := w.WriteFrame(nil); !errors.Is(err, ErrMessageEmpty) {
		t.Errorf("empty: got %v", err)
	}
	if err := w.WriteFrame(make([]byte, 9)); !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("too large: got %v", err)
	}
}

func TestFrameReaderErrors(t *testing.T) {
	t.Run("eof", func(t *testing.T) {
		_, err := NewFrameReader(bytes.NewReader(nil)).ReadFrame()
		if err != io.EOF {
			t.Errorf("got %v, want io.EOF", err)
		}
	})

	t.Run("truncated prefix", func(t *testing.T) {
		_, err := NewFrameReader(bytes.NewReader([]byte{0, 0})).ReadFrame()
		if !errors.Is(err, ErrFrameTruncated) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("truncated payload", func(t *testing.T) {
		var b bytes.Buffer
		binary.Write(&b, binary.BigEndian, uint32(10))
		b.Write([]byte("abc"))
		_, err := NewFrameReader(&b).ReadFrame()
		if !errors.Is(err, ErrFrameTruncated) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("zero length", func(t *testing.T) {
		_, err := NewFrameReader(bytes.NewReader([]byte{0, 0, 0, 0})).ReadFrame()
		if !errors.Is(err, ErrMessageEmpty) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("too large", func(t *testing.T) {
		r := NewFrameReaderWithMaxSize(bytes.NewReader([]byte{0, 0, 1, 0}), 16)
		if _, err := r.ReadFrame(); !errors.Is(err, ErrMessageTooLarge) {
			t.Errorf("got %v", err)
		}
	})
}

func TestWireFrameRoundTripLogs(t *testing.T) {
	var events []log.Event
	logger := log.LoggerFunc(func(e log.Event) { events = append(events, e) })

	buf := new(bytes.Buffer)
	f := NewFramer(buf)
	f.SetLogger(logger, "sess-1", log.RoleScript)

	req := &wire.Request{
		MessageName: wire.MessageName,
		CallID:      "create-btn1",
		Operation:   wire.OpCreate,
		EntityID:    "btn1",
		WidgetType:  "Button",
	}
	if err := f.WriteWireFrame(wire.RequestFrame(1, req)); err != nil {
		t.Fatalf("WriteWireFrame failed: %v", err)
	}

	got, err := f.ReadWireFrame()
	if err != nil {
		t.Fatalf("ReadWireFrame failed: %v", err)
	}
	if got.Request == nil || got.Request.CallID != "create-btn1" {
		t.Fatalf("unexpected frame: %+v", got)
	}

	// frame out, message out, frame in, message in
	if len(events) != 4 {
		t.Fatalf("got %d log events, want 4", len(events))
	}
	if events[0].Layer != log.LayerTransport || events[0].Direction != log.DirectionOut {
		t.Errorf("event 0: %+v", events[0])
	}
	if events[1].Layer != log.LayerWire || events[1].EntityID != "btn1" {
		t.Errorf("event 1: %+v", events[1])
	}
	if events[3].Direction != log.DirectionIn || events[3].Message == nil {
		t.Errorf("event 3: %+v", events[3])
	}
	if events[0].SessionID != "sess-1" {
		t.Errorf("session id: got %q", events[0].SessionID)
	}
}

func TestReadWireFrameMalformed(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := NewFrameWriter(buf).WriteFrame([]byte{0xa0}); err != nil { // empty CBOR map
		t.Fatalf("WriteFrame failed: %v", err)
	}

	_, err := NewFrameReader(buf).ReadWireFrame()
	if !errors.Is(err, ErrMalformedFrame) {
		t.Errorf("got %v, want ErrMalformedFrame", err)
	}
}
