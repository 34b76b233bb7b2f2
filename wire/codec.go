package wire

// Codec defines the serialization contract for wire messages.
// Implementations handle encoding/decoding messages to/from bytes.
// Both sides of a queue must agree on the codec in use.
type Codec interface {
	// Encode serializes a message to bytes.
	Encode(msg any) ([]byte, error)

	// Decode deserializes bytes into the given message.
	Decode(data []byte, msg any) error

	// Name returns the codec identifier (e.g., "json", "msgpack").
	Name() string
}

// CodecName constants for format negotiation.
const (
	CodecNameJSON    = "json"
	CodecNameMsgpack = "msgpack"
)

// GetCodec returns a codec by name. Defaults to JSON.
func GetCodec(name string) Codec {
	switch name {
	case CodecNameMsgpack:
		return &MsgpackCodec{}
	case CodecNameJSON, "":
		return &JSONCodec{}
	default:
		return &JSONCodec{}
	}
}
