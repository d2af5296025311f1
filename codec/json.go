package codec

import (
	"encoding/json"
	"io"
)

// JSON uses encoding/json, for output that must match other Go tools byte for byte.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (JSON) NewEncoder(w io.Writer) Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}

func (JSON) NewDecoder(r io.Reader) Decoder { return json.NewDecoder(r) }
