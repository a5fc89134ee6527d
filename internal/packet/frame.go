package packet

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"io"

	"github.com/pkg/errors"

	"bancho/internal/streams"
)

// ErrMalformedFrame re-exports streams.ErrMalformedFrame so callers outside
// this package can match on it without importing streams directly.
var ErrMalformedFrame = streams.ErrMalformedFrame

// Frame is one decoded packet off the wire: its kind, and its (already
// decompressed) payload.
type Frame struct {
	ID      uint16
	Payload []byte
}

// Encode serializes id and payload into the 7-byte-header wire format
// (§4.2). The client never sets the compression bit — only servers compress.
func Encode(id uint16, payload []byte) []byte {
	out := streams.NewOut()
	out.U16(id)
	out.Bool(false)
	out.U32(uint32(len(payload)))
	out.Write(payload)
	return out.Bytes()
}

// ReadOne reads a single 7-byte header plus its payload from in, decoding
// the payload with decompress (useGzip true selects gzip, false selects
// zlib, per the transport currently in use — see §4.2 and §9's noted
// asymmetry) if the compression flag is set.
func ReadOne(in *streams.In, useGzip bool) (Frame, error) {
	id, err := in.U16()
	if err != nil {
		return Frame{}, err
	}
	compressed, err := in.Bool()
	if err != nil {
		return Frame{}, err
	}
	length, err := in.U32()
	if err != nil {
		return Frame{}, err
	}
	payload, err := in.Read(int(length))
	if err != nil {
		return Frame{}, err
	}
	if compressed {
		payload, err = decompress(payload, useGzip)
		if err != nil {
			return Frame{}, errors.Wrap(err, "decompress packet payload")
		}
	}
	return Frame{ID: id, Payload: payload}, nil
}

// DecodeStream decodes every frame in data, in order, stopping at EOF.
// A server response body is a concatenation of zero or more frames (§4.2).
func DecodeStream(data []byte, useGzip bool) ([]Frame, error) {
	in := streams.NewIn(data)
	var frames []Frame
	for !in.EOF() {
		f, err := ReadOne(in, useGzip)
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func decompress(payload []byte, useGzip bool) ([]byte, error) {
	var r io.ReadCloser
	var err error
	if useGzip {
		r, err = gzip.NewReader(bytes.NewReader(payload))
	} else {
		r, err = zlib.NewReader(bytes.NewReader(payload))
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
