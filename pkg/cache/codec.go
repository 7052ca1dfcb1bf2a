package cache

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Delmat237/XCCM1-BACKEND/pkg/config"
)

// Codec encodes cached values to bytes and back.
type Codec interface {
	Name() string
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

// JSONCodec is the default encoding.
type JSONCodec struct{}

func (JSONCodec) Name() string                               { return config.CacheCodecJSON }
func (JSONCodec) Marshal(v interface{}) ([]byte, error)      { return json.Marshal(v) }
func (JSONCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }

// MsgpackCodec trades readability for smaller payloads.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string                               { return config.CacheCodecMsgpack }
func (MsgpackCodec) Marshal(v interface{}) ([]byte, error)      { return msgpack.Marshal(v) }
func (MsgpackCodec) Unmarshal(data []byte, v interface{}) error { return msgpack.Unmarshal(data, v) }

// CBORCodec encodes values as RFC 8949 CBOR. Times are written as RFC3339Nano
// so cached timestamps keep their sub-second precision.
type CBORCodec struct{}

var cborEnc, cborDec = cborModes()

func cborModes() (cbor.EncMode, cbor.DecMode) {
	eo := cbor.PreferredUnsortedEncOptions()
	eo.Time = cbor.TimeRFC3339Nano
	enc, err := eo.EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor enc mode: %v", err))
	}
	dec, err := (cbor.DecOptions{}).DecMode()
	if err != nil {
		panic(fmt.Sprintf("cbor dec mode: %v", err))
	}
	return enc, dec
}

func (CBORCodec) Name() string                               { return config.CacheCodecCBOR }
func (CBORCodec) Marshal(v interface{}) ([]byte, error)      { return cborEnc.Marshal(v) }
func (CBORCodec) Unmarshal(data []byte, v interface{}) error { return cborDec.Unmarshal(data, v) }

// NewCodec resolves a codec by its configured name. Empty selects JSON.
func NewCodec(name string) (Codec, error) {
	switch name {
	case "", config.CacheCodecJSON:
		return JSONCodec{}, nil
	case config.CacheCodecMsgpack:
		return MsgpackCodec{}, nil
	case config.CacheCodecCBOR:
		return CBORCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown cache codec %q", name)
	}
}
