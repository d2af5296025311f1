package codec

import (
	"io"

	gojson "github.com/goccy/go-json"
)

// GoJSON is backed by github.com/goccy/go-json. It is the default.
type GoJSON struct{}

func (GoJSON) Name() string { return "go-json" }

func (GoJSON) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

func (GoJSON) NewEncoder(w io.Writer) Encoder {
	enc := gojson.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}

func (GoJSON) NewDecoder(r io.Reader) Decoder { return gojson.NewDecoder(r) }
