package collab

import (
	"bytes"
	"testing"
)

func TestParseMessageType(t *testing.T) {
	if got := ParseMessageType([]byte{0, 1, 2}); got != MessageSync {
		t.Errorf("Expected sync, got %d", got)
	}
	if got := ParseMessageType([]byte{1, 1, 2}); got != MessageAwareness {
		t.Errorf("Expected awareness, got %d", got)
	}
}

func TestEncodeAndPayload(t *testing.T) {
	frame := EncodeMessage(MessageSync, []byte("content"))

	if ParseMessageType(frame) != MessageSync {
		t.Error("Encoded frame lost its type byte")
	}
	if !bytes.Equal(Payload(frame), []byte("content")) {
		t.Errorf("Expected payload 'content', got '%s'", Payload(frame))
	}
}

func TestPayloadShortFrame(t *testing.T) {
	if Payload([]byte{0}) != nil {
		t.Error("Type-only frame should have nil payload")
	}
	if Payload(nil) != nil {
		t.Error("Empty frame should have nil payload")
	}
}

func TestValidateMessage(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"Empty message", []byte{}, true},
		{"Sync message", []byte{0, 1, 2, 3}, false},
		{"Bare sync", []byte{0}, false},
		{"Awareness message", []byte{1, '{', '}'}, false},
		{"Awareness without payload", []byte{1}, true},
		{"Unknown type", []byte{9, 1, 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMessage(tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMessage(%v) error = %v, wantErr %v", tt.data, err, tt.wantErr)
			}
		})
	}
}
