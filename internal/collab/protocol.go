package collab

import "fmt"

// The wire protocol is one byte of message type followed by the payload.
type MessageType byte

const (
	// Full-document sync update; payload is the UTF-8 serialized content
	MessageSync MessageType = 0

	// Awareness broadcast (presence, save status); payload is JSON
	MessageAwareness MessageType = 1
)

// Extracts the message type from the first byte
func ParseMessageType(data []byte) MessageType {
	if len(data) == 0 {
		return MessageSync
	}
	return MessageType(data[0])
}

// Payload returns the frame body after the type byte.
func Payload(data []byte) []byte {
	if len(data) < 2 {
		return nil
	}
	return data[1:]
}

// EncodeMessage prepends the type byte to a payload.
func EncodeMessage(t MessageType, payload []byte) []byte {
	frame := make([]byte, 0, len(payload)+1)
	frame = append(frame, byte(t))
	return append(frame, payload...)
}

// ValidateMessage rejects frames that cannot be dispatched.
func ValidateMessage(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty message")
	}

	switch MessageType(data[0]) {
	case MessageSync:
		return nil
	case MessageAwareness:
		if len(data) < 2 {
			return fmt.Errorf("awareness message too short")
		}
		return nil
	default:
		return fmt.Errorf("unknown message type: %d", data[0])
	}
}
