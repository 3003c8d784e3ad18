package iotf

import (
	"encoding/base64"
	"encoding/json"
	"io"
)

// DecoderFunc is used to create a Decoder from io.Reader stream
// of payload bytes when InboundMessage payloads are decoded.
type DecoderFunc func(io.Reader) Decoder

// Decoder helps to decode payload bytes into the desired object
type Decoder interface {
	// Decode decodes payload bytes into the passed object
	Decode(v interface{}) error
}

// DefaultDecoderFunc is a DecoderFunc that uses a json.Decoder as the Decoder.
func DefaultDecoderFunc(r io.Reader) Decoder {
	return json.NewDecoder(r)
}

// Base64JSONDecoderFunc decodes base64 encoded JSON payloads.
func Base64JSONDecoderFunc(r io.Reader) Decoder {
	return json.NewDecoder(base64.NewDecoder(base64.StdEncoding, r))
}

// WithCustomDecoder allows to decode payload bytes into the desired object.
func WithCustomDecoder(decoderFunc DecoderFunc) ClientOption {
	return optionFunc(func(o *clientOptions) {
		if decoderFunc != nil {
			o.newDecoder = decoderFunc
		}
	})
}
