package wshistory

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vango-dev/querystate/pkg/location"
)

// FrameType identifies the type of frame.
type FrameType uint8

const (
	FrameHello FrameType = 0x00 // Client → Server, first frame
	FramePop   FrameType = 0x01 // Client → Server, client-side navigation
	FramePush  FrameType = 0x02 // Server → Client, server-side navigation
	FrameError FrameType = 0x05 // Server → Client, fatal error
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameHello:
		return "Hello"
	case FramePop:
		return "Pop"
	case FramePush:
		return "Push"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// ErrInvalidFrame is returned when a frame cannot be decoded.
var ErrInvalidFrame = errors.New("wshistory: invalid frame")

// Message is the payload of every frame.
type Message struct {
	Pathname string           `msgpack:"pathname"`
	Search   string           `msgpack:"search,omitempty"`
	State    location.Options `msgpack:"state,omitempty"`

	// Code and Error are only set on error frames.
	Code  string `msgpack:"code,omitempty"`
	Error string `msgpack:"error,omitempty"`
}

// MessageFromLocation builds a Message for loc.
func MessageFromLocation(loc location.Location) Message {
	return Message{Pathname: loc.Pathname, Search: loc.Search, State: loc.State}
}

// Location returns the location carried by m.
func (m Message) Location() location.Location {
	return location.Location{Pathname: m.Pathname, Search: m.Search, State: m.State}
}

// EncodeFrame encodes a frame of the given type.
func EncodeFrame(ft FrameType, msg Message) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(byte(ft))
	if err := msgpack.NewEncoder(&buf).Encode(&msg); err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", ft, err)
	}
	return buf.Bytes(), nil
}

// DecodeFrame decodes a frame. Integers inside State decode as int64 or
// uint64 and floats as float64.
func DecodeFrame(data []byte) (FrameType, Message, error) {
	var msg Message
	if len(data) < 2 {
		return 0, msg, ErrInvalidFrame
	}
	ft := FrameType(data[0])
	if ft.String() == "Unknown" {
		return ft, msg, fmt.Errorf("%w: type 0x%02x", ErrInvalidFrame, data[0])
	}

	dec := msgpack.NewDecoder(bytes.NewReader(data[1:]))
	dec.UseLooseInterfaceDecoding(true)
	if err := dec.Decode(&msg); err != nil {
		return ft, msg, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	return ft, msg, nil
}
