package svcmap

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

// Encoder encodes response values to a wire format.
type Encoder interface {
	ContentType() string
	Encode(w io.Writer, v any) error
}

// Decoder decodes request bodies from a wire format.
type Decoder interface {
	ContentType() string
	Decode(r io.Reader, v any) error
}

// jsonCodec implements both Encoder and Decoder for JSON.
type jsonCodec struct{}

func (jsonCodec) ContentType() string { return "application/json" }

func (jsonCodec) Encode(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

func (jsonCodec) Decode(r io.Reader, v any) error {
	err := json.NewDecoder(r).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// xmlCodec implements both Encoder and Decoder for XML.
type xmlCodec struct{}

func (xmlCodec) ContentType() string { return "application/xml" }

func (xmlCodec) Encode(w io.Writer, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(v)
}

func (xmlCodec) Decode(r io.Reader, v any) error {
	err := xml.NewDecoder(r).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// yamlCodec implements both Encoder and Decoder for YAML.
type yamlCodec struct{}

func (yamlCodec) ContentType() string { return "application/yaml" }

func (yamlCodec) Encode(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func (yamlCodec) Decode(r io.Reader, v any) error {
	err := yaml.NewDecoder(r).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// codecSet holds all registered encoders and decoders. Index 0 is always
// JSON, the default representation.
type codecSet struct {
	encoders []Encoder
	decoders []Decoder
}

// newCodecSet builds the set with JSON first, then XML and YAML, then
// any user-registered codecs.
func newCodecSet(userEncoders []Encoder, userDecoders []Decoder) *codecSet {
	cs := &codecSet{
		encoders: make([]Encoder, 0, 3+len(userEncoders)),
		decoders: make([]Decoder, 0, 3+len(userDecoders)),
	}
	cs.encoders = append(cs.encoders, jsonCodec{}, xmlCodec{}, yamlCodec{})
	cs.encoders = append(cs.encoders, userEncoders...)
	cs.decoders = append(cs.decoders, jsonCodec{}, xmlCodec{}, yamlCodec{})
	cs.decoders = append(cs.decoders, userDecoders...)
	return cs
}

// offers returns the encoders usable for an operation: all of them when
// produces is empty, otherwise only those whose content type was
// declared. Declared order decides the default.
func (cs *codecSet) offers(produces []string) []Encoder {
	if len(produces) == 0 {
		return cs.encoders
	}
	offered := make([]Encoder, 0, len(produces))
	for _, ct := range produces {
		for _, enc := range cs.encoders {
			if enc.ContentType() == ct {
				offered = append(offered, enc)
				break
			}
		}
	}
	return offered
}

// decoderFor returns the decoder matching the given media type. Returns
// (JSON decoder, true) for an empty media type.
func (cs *codecSet) decoderFor(mediaType string) (Decoder, bool) {
	if mediaType == "" {
		return cs.decoders[0], true
	}
	for _, dec := range cs.decoders {
		if dec.ContentType() == mediaType {
			return dec, true
		}
	}
	return nil, false
}
