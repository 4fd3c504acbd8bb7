// Package snapshot serializes topology snapshots. The payload is
// deterministic CBOR, optionally zstd compressed, behind a small header:
//
//	"MTOP" | version byte | codec byte | payload
//
// Equal snapshots always produce identical bytes, so Digest can be used to
// compare two builds.
package snapshot

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"github.com/notargets/meshtopo/topology"
)

const (
	version = 1

	codecNone byte = 0
	codecZstd byte = 1
)

var (
	magic = []byte("MTOP")

	ErrFormat = errors.New("snapshot: not a topology snapshot")
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode

	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("snapshot: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		MaxArrayElements: 1<<31 - 1,
	}.DecMode()
	if err != nil {
		panic("snapshot: CBOR decoder initialization failed: " + err.Error())
	}
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("snapshot: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("snapshot: zstd decoder initialization failed: " + err.Error())
	}
}

// Encode returns the deterministic CBOR encoding of s
func Encode(s *topology.Snapshot) ([]byte, error) {
	return encMode.Marshal(s)
}

func Decode(data []byte) (*topology.Snapshot, error) {
	s := new(topology.Snapshot)
	if err := decMode.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	return s, nil
}

// Marshal frames the CBOR encoding of s, zstd compressed when compress is set
func Marshal(s *topology.Snapshot, compress bool) ([]byte, error) {
	payload, err := Encode(s)
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	codec := codecNone
	if compress {
		codec = codecZstd
		payload = zstdEncoder.EncodeAll(payload, nil)
	}
	out := make([]byte, 0, len(magic)+2+len(payload))
	out = append(out, magic...)
	out = append(out, version, codec)
	return append(out, payload...), nil
}

func Unmarshal(data []byte) (*topology.Snapshot, error) {
	hdr := len(magic) + 2
	if len(data) < hdr || !bytes.Equal(data[:len(magic)], magic) {
		return nil, ErrFormat
	}
	if v := data[len(magic)]; v != version {
		return nil, fmt.Errorf("snapshot: unsupported version %d", v)
	}
	payload := data[hdr:]
	switch codec := data[len(magic)+1]; codec {
	case codecNone:
	case codecZstd:
		var err error
		if payload, err = zstdDecoder.DecodeAll(payload, nil); err != nil {
			return nil, fmt.Errorf("snapshot: zstd decompress: %w", err)
		}
	default:
		return nil, fmt.Errorf("snapshot: unknown codec %d", codec)
	}
	return Decode(payload)
}

func WriteFile(path string, s *topology.Snapshot, compress bool) error {
	data, err := Marshal(s, compress)
	if err != nil {
		return err
	}
	if err = os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}

func ReadFile(path string) (*topology.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return Unmarshal(data)
}

// Hash is a BLAKE3-256 digest
type Hash [32]byte

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// Digest hashes the deterministic encoding, so equal digests mean
// byte-identical derived tables.
func Digest(s *topology.Snapshot) (Hash, error) {
	data, err := Encode(s)
	if err != nil {
		return Hash{}, fmt.Errorf("snapshot: encode: %w", err)
	}
	return blake3.Sum256(data), nil
}
