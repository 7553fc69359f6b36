package log

import "go.uber.org/zap"

// ZapAdapter writes protocol events to a zap.Logger at Debug level.
type ZapAdapter struct {
	logger *zap.Logger
}

// NewZapAdapter creates a ZapAdapter. A nil logger is replaced by zap.NewNop().
func NewZapAdapter(logger *zap.Logger) *ZapAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapAdapter{logger: logger}
}

// Log writes the event as structured zap fields.
func (a *ZapAdapter) Log(event Event) {
	if ce := a.logger.Check(zap.DebugLevel, "protocol"); ce != nil {
		ce.Write(zapFields(event)...)
	}
}

func zapFields(event Event) []zap.Field {
	fields := []zap.Field{
		zap.String("session_id", event.SessionID),
		zap.Stringer("direction", event.Direction),
		zap.Stringer("layer", event.Layer),
		zap.Stringer("category", event.Category),
	}
	if event.EntityID != "" {
		fields = append(fields, zap.String("entity_id", event.EntityID))
	}

	switch {
	case event.Frame != nil:
		fields = append(fields,
			zap.Int("frame_size", event.Frame.Size),
			zap.Bool("truncated", event.Frame.Truncated),
		)
	case event.Message != nil:
		m := event.Message
		fields = append(fields, zap.Stringer("msg_type", m.Type))
		if m.Seq != 0 {
			fields = append(fields, zap.Uint32("seq", m.Seq))
		}
		if m.CallID != "" {
			fields = append(fields, zap.String("call_id", m.CallID))
		}
		if m.Operation != nil {
			fields = append(fields, zap.Stringer("operation", *m.Operation))
		}
		if m.Handle != nil {
			fields = append(fields, zap.Int32("handle", int32(*m.Handle)))
		}
		if m.Completion != nil {
			fields = append(fields, zap.Stringer("completion", *m.Completion))
		}
		if m.Code != nil {
			fields = append(fields, zap.Stringer("code", *m.Code))
		}
		if m.EventType != "" {
			fields = append(fields, zap.String("event_type", string(m.EventType)))
		}
		if len(m.Data) > 0 {
			fields = append(fields, zap.Int32s("data", m.Data))
		}
	case event.StateChange != nil:
		fields = append(fields,
			zap.Stringer("entity", event.StateChange.Entity),
			zap.String("old_state", event.StateChange.OldState),
			zap.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			fields = append(fields, zap.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		fields = append(fields,
			zap.Stringer("error_layer", event.Error.Layer),
			zap.String("error_msg", event.Error.Message),
			zap.String("error_context", event.Error.Context),
		)
		if event.Error.Code != nil {
			fields = append(fields, zap.Int("error_code", *event.Error.Code))
		}
	}
	return fields
}

// Compile-time interface satisfaction check.
var _ Logger = (*ZapAdapter)(nil)
