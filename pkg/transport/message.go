package transport

import (
	"errors"
	"fmt"

	"github.com/logview-io/logview-go/pkg/log"
)

// MessageType identifies the payload of a frame on the viewer link.
type MessageType uint8

const (
	// MessageEvent carries one log event from server to viewer.
	MessageEvent MessageType = 1
	// MessagePing asks the peer to answer with a pong.
	MessagePing MessageType = 2
	// MessagePong answers a ping with the same sequence number.
	MessagePong MessageType = 3
	// MessageClose announces that the sender is closing the link.
	MessageClose MessageType = 4
)

// String returns the message type name.
func (t MessageType) String() string {
	switch t {
	case MessageEvent:
		return "EVENT"
	case MessagePing:
		return "PING"
	case MessagePong:
		return "PONG"
	case MessageClose:
		return "CLOSE"
	default:
		return "UNKNOWN"
	}
}

// ErrInvalidMessage is returned for frames that decode but make no sense.
var ErrInvalidMessage = errors.New("invalid message")

// Message is the CBOR envelope carried in each frame.
type Message struct {
	Type     MessageType `cbor:"1,keyasint"`
	Sequence uint32      `cbor:"2,keyasint,omitempty"`
	Event    *log.Event  `cbor:"3,keyasint,omitempty"`
}

// EncodeMessage encodes a message for framing.
func EncodeMessage(msg Message) ([]byte, error) {
	return log.Marshal(msg)
}

// DecodeMessage decodes a frame payload and checks it is well formed.
func DecodeMessage(data []byte) (Message, error) {
	var msg Message
	if err := log.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	switch msg.Type {
	case MessageEvent:
		if msg.Event == nil {
			return Message{}, fmt.Errorf("%w: event message without event", ErrInvalidMessage)
		}
	case MessagePing, MessagePong, MessageClose:
	default:
		return Message{}, fmt.Errorf("%w: type %d", ErrInvalidMessage, msg.Type)
	}
	return msg, nil
}

// EncodeEvent wraps an event in an event message.
func EncodeEvent(event log.Event) ([]byte, error) {
	return EncodeMessage(Message{Type: MessageEvent, Event: &event})
}

// EncodePing encodes a ping control message.
func EncodePing(seq uint32) ([]byte, error) {
	return EncodeMessage(Message{Type: MessagePing, Sequence: seq})
}

// EncodePong encodes a pong control message.
func EncodePong(seq uint32) ([]byte, error) {
	return EncodeMessage(Message{Type: MessagePong, Sequence: seq})
}

// EncodeClose encodes a close control message.
func EncodeClose() ([]byte, error) {
	return EncodeMessage(Message{Type: MessageClose})
}
