package wire

import (
	"errors"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		frame *Frame
	}{
		{
			name: "create request",
			frame: RequestFrame(1, &Request{
				MessageName: MessageName,
				CallID:      "create-btn1",
				Operation:   OpCreate,
				EntityID:    "btn1",
				WidgetType:  "Button",
			}),
		},
		{
			name: "insert child append",
			frame: RequestFrame(7, &Request{
				MessageName: MessageName,
				CallID:      "insertChild-panel-btn1--1",
				Operation:   OpInsertChild,
				Parent:      3,
				Child:       4,
				Index:       -1,
			}),
		},
		{
			name:  "ack",
			frame: AckFrame(42),
		},
		{
			name: "created completion",
			frame: CompletionFrame(&Completion{
				Kind:     CompletionCreated,
				CallID:   "create-btn1",
				EntityID: "btn1",
				Handle:   5,
			}),
		},
		{
			name: "error completion",
			frame: CompletionFrame(&Completion{
				Kind:   CompletionError,
				CallID: "setProperty-btn1-bogus-1",
				Code:   ResultInvalidPropertyName,
			}),
		},
		{
			name: "event with data",
			frame: EventFrame(&Event{
				Handle: 5,
				Type:   EventSliderValueChanged,
				Data:   []int32{17},
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeFrame(tt.frame)
			if err != nil {
				t.Fatalf("EncodeFrame failed: %v", err)
			}

			decoded, err := DecodeFrame(data)
			if err != nil {
				t.Fatalf("DecodeFrame failed: %v", err)
			}

			if !Equal(tt.frame, decoded) {
				t.Errorf("round trip mismatch: got %+v, want %+v", decoded, tt.frame)
			}
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	f := RequestFrame(3, &Request{
		MessageName: MessageName,
		CallID:      "setProperty-btn1-text-Go",
		Operation:   OpSetProperty,
		Widget:      5,
		Property:    "text",
		Value:       "Go",
	})

	a, err := EncodeFrame(f)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}
	b, err := EncodeFrame(f)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}
	if string(a) != string(b) {
		t.Error("encoding is not deterministic")
	}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"valid create", Request{CallID: "c", Operation: OpCreate, EntityID: "a", WidgetType: "Label"}, nil},
		{"create without type", Request{CallID: "c", Operation: OpCreate, EntityID: "a"}, ErrMissingField},
		{"create without entity", Request{CallID: "c", Operation: OpCreate, WidgetType: "Label"}, ErrMissingField},
		{"missing call id", Request{Operation: OpDestroy, Widget: 1}, ErrMissingCallID},
		{"unknown operation", Request{CallID: "c", Operation: 99}, ErrInvalidOperation},
		{"zero operation", Request{CallID: "c"}, ErrInvalidOperation},
		{"insert below -1", Request{CallID: "c", Operation: OpInsertChild, Parent: 1, Child: 2, Index: -2}, ErrInvalidIndex},
		{"insert append", Request{CallID: "c", Operation: OpInsertChild, Parent: 1, Child: 2, Index: -1}, nil},
		{"add child without parent", Request{CallID: "c", Operation: OpAddChild, Child: 2}, ErrMissingField},
		{"set property without name", Request{CallID: "c", Operation: OpSetProperty, Widget: 1}, ErrMissingField},
		{"listener without type", Request{CallID: "c", Operation: OpRegisterListener, Widget: 1}, ErrMissingField},
		{"stack push", Request{CallID: "c", Operation: OpStackPush, Widget: 1, Child: 2}, nil},
		{"show without widget", Request{CallID: "c", Operation: OpScreenShow}, ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeFrameRejectsMismatchedPayload(t *testing.T) {
	// Kind says completion but no completion is present.
	data, err := Marshal(&Frame{Kind: FrameCompletion, Event: &Event{Handle: 1, Type: EventClicked}})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if _, err := DecodeFrame(data); !errors.Is(err, ErrInvalidFrame) {
		t.Errorf("expected ErrInvalidFrame, got %v", err)
	}
}

func TestEventValidateDataLimit(t *testing.T) {
	e := &Event{Handle: 1, Type: EventClicked, Data: []int32{1, 2, 3, 4}}
	if err := e.Validate(); !errors.Is(err, ErrTooMuchEventData) {
		t.Errorf("expected ErrTooMuchEventData, got %v", err)
	}
}

func TestOperationNames(t *testing.T) {
	for op := OpCreate; op <= OpRegisterListener; op++ {
		if !op.IsValid() {
			t.Errorf("%d should be valid", op)
		}
		if op.String() == "unknown" || op.Action() == "" {
			t.Errorf("%d has no name", op)
		}
	}
	if Operation(0).IsValid() || Operation(14).IsValid() {
		t.Error("out-of-range operations should be invalid")
	}
	if OpInsertChild.Action() != "maWidgetInsertChild" {
		t.Errorf("Action() = %q", OpInsertChild.Action())
	}
}

func TestResultCode(t *testing.T) {
	if !ResultOK.IsSuccess() || !ResultCode(7).IsSuccess() {
		t.Error("zero and positive codes are success")
	}
	if ResultInvalidHandle.IsSuccess() {
		t.Error("negative codes are failures")
	}
	if ResultInvalidHandle.String() != "INVALID_HANDLE" {
		t.Errorf("String() = %q", ResultInvalidHandle.String())
	}
}

func TestHandleValid(t *testing.T) {
	if Handle(0).Valid() || Handle(-5).Valid() {
		t.Error("non-positive handles are invalid")
	}
	if !Handle(1).Valid() {
		t.Error("positive handles are valid")
	}
}
