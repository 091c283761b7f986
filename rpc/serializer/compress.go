package serializer

import (
	"github.com/keydex/keydex/rpc/common"
	"github.com/klauspost/compress/s2"
)

// NewCompressedSerializer wraps another serializer with s2 block
// compression. Worth it for large hash payloads; the frame layout is
// unchanged, only the payload bytes are compressed.
func NewCompressedSerializer(inner IRPCSerializer) IRPCSerializer {
	return &compressedSerializerImpl{inner: inner}
}

type compressedSerializerImpl struct {
	inner IRPCSerializer
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (c compressedSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	b, err := c.inner.Serialize(msg)
	if err != nil {
		return nil, err
	}
	return s2.Encode(nil, b), nil
}

func (c compressedSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	decoded, err := s2.Decode(nil, b)
	if err != nil {
		return err
	}
	return c.inner.Deserialize(decoded, msg)
}
