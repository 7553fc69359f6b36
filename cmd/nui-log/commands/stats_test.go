package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/nativeui-go/nativeui/pkg/log"
	"github.com/nativeui-go/nativeui/pkg/wire"
)

func TestStatsCounts(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	create := wire.OpCreate
	set := wire.OpSetProperty
	bad := wire.ResultInvalidPropertyName
	events := []log.Event{
		{Timestamp: ts, SessionID: "s1", EntityID: "a", Layer: log.LayerWire,
			Message: &log.MessageEvent{Type: log.MessageTypeRequest, Operation: &create}},
		{Timestamp: ts, SessionID: "s1", EntityID: "a", Layer: log.LayerWire,
			Message: &log.MessageEvent{Type: log.MessageTypeRequest, Operation: &set}},
		{Timestamp: ts, SessionID: "s1", EntityID: "b", Layer: log.LayerWire,
			Message: &log.MessageEvent{Type: log.MessageTypeRequest, Operation: &set}},
		{Timestamp: ts.Add(time.Second), SessionID: "s1", EntityID: "a", Layer: log.LayerWire, Direction: log.DirectionIn,
			Message: &log.MessageEvent{Type: log.MessageTypeCompletion, Code: &bad}},
		{Timestamp: ts.Add(2 * time.Second), SessionID: "s2", Layer: log.LayerSession, Category: log.CategoryError,
			Error: &log.ErrorEventData{Message: "boom"}},
	}
	path := createTestLogFile(t, events)

	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer reader.Close()

	stats, err := Collect(reader)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if stats.TotalEvents != 5 {
		t.Errorf("TotalEvents = %d, want 5", stats.TotalEvents)
	}
	if stats.Operations[wire.OpSetProperty] != 2 || stats.Operations[wire.OpCreate] != 1 {
		t.Errorf("Operations = %v", stats.Operations)
	}
	if stats.NativeErrors[wire.ResultInvalidPropertyName] != 1 {
		t.Errorf("NativeErrors = %v", stats.NativeErrors)
	}
	if len(stats.Sessions) != 2 {
		t.Errorf("Sessions = %d, want 2", len(stats.Sessions))
	}
	if n := len(stats.Sessions["s1"].Entities); n != 2 {
		t.Errorf("s1 entities = %d, want 2", n)
	}
	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", stats.Errors)
	}
	if got := stats.TimeRange.End.Sub(stats.TimeRange.Start); got != 2*time.Second {
		t.Errorf("time range = %s", got)
	}
}

func TestRunStatsOutput(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	show := wire.OpScreenShow
	path := createTestLogFile(t, []log.Event{
		{Timestamp: ts, SessionID: "abcdef0123", Layer: log.LayerTransport, Frame: &log.FrameEvent{Size: 10}},
		{Timestamp: ts, SessionID: "abcdef0123", Layer: log.LayerWire,
			Message: &log.MessageEvent{Type: log.MessageTypeRequest, Operation: &show}},
		{Timestamp: ts, SessionID: "abcdef0123", Layer: log.LayerSession, Category: log.CategoryState,
			StateChange: &log.StateChangeEvent{NewState: "OPEN"}},
	})

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Total Events: 3",
		"TRANSPORT:",
		"WIRE:",
		"SESSION:",
		"STATE:",
		"screenShow:",
		"Sessions: 1",
		"[abcdef01] 3 events",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got:\n%s", want, output)
		}
	}
}

func TestRunStatsEmpty(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}
