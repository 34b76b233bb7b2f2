package wire

import "encoding/json"

// JSONCodec encodes/decodes wire messages as JSON.
type JSONCodec struct{}

func (c *JSONCodec) Encode(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (c *JSONCodec) Decode(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}

func (c *JSONCodec) Name() string { return CodecNameJSON }
