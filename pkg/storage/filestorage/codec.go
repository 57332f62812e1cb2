package filestorage

import (
	"encoding/json"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Records is the decoded file content: exported records keyed "Kind.id".
type Records map[string]map[string]any

// Codec encodes the record set to and from bytes.
type Codec interface {
	Name() string
	Marshal(Records) ([]byte, error)
	Unmarshal([]byte, *Records) error
}

// JSONCodec writes the historical format: one JSON object of records.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(r Records) ([]byte, error) {
	return json.Marshal(r)
}

func (JSONCodec) Unmarshal(data []byte, r *Records) error {
	return json.Unmarshal(data, r)
}

// CBORCodec writes the same records as deterministic CBOR.
// Nested maps decode as map[string]any, as they do from JSON.
type CBORCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func NewCBORCodec() (*CBORCodec, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	dec, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		return nil, err
	}
	return &CBORCodec{enc: enc, dec: dec}, nil
}

func (*CBORCodec) Name() string { return "cbor" }

func (c *CBORCodec) Marshal(r Records) ([]byte, error) {
	return c.enc.Marshal(r)
}

func (c *CBORCodec) Unmarshal(data []byte, r *Records) error {
	return c.dec.Unmarshal(data, r)
}

// CodecFor picks the codec matching the file extension: ".cbor" selects
// CBOR, anything else JSON.
func CodecFor(path string) (Codec, error) {
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		return NewCBORCodec()
	}
	return JSONCodec{}, nil
}
