package wire

import "github.com/vmihailenco/msgpack/v5"

// MsgpackCodec encodes/decodes wire messages as MessagePack.
type MsgpackCodec struct{}

func (c *MsgpackCodec) Encode(msg any) ([]byte, error) {
	return msgpack.Marshal(msg)
}

func (c *MsgpackCodec) Decode(data []byte, msg any) error {
	return msgpack.Unmarshal(data, msg)
}

func (c *MsgpackCodec) Name() string { return CodecNameMsgpack }
