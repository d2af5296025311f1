// Package codec centralizes output encoding and stream compression.
//
// Architectures are written as JSON lines by a Codec; hit inputs and result
// files may be zstd or lz4 compressed, selected by file suffix.
package codec

import "io"

// Codec encodes and decodes values. Implementations are safe for concurrent use.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	// NewEncoder returns an encoder that writes one value per line.
	// HTML characters are not escaped.
	NewEncoder(w io.Writer) Encoder
	// NewDecoder returns a decoder for a stream of concatenated values.
	NewDecoder(r io.Reader) Decoder
}

// Encoder writes values to a stream.
type Encoder interface {
	Encode(v any) error
}

// Decoder reads values from a stream. Decode returns io.EOF at the end.
type Decoder interface {
	Decode(v any) error
}

// Default is the codec used when none is configured.
var Default Codec = GoJSON{}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case JSON{}.Name():
		return JSON{}, true
	case GoJSON{}.Name():
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Names lists the built-in codec names.
func Names() []string {
	return []string{JSON{}.Name(), GoJSON{}.Name()}
}
