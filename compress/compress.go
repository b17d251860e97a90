// Package compress encodes whole objects as one compressed block.
//
// Format: [UncompressedSize uint32][CompressedSize uint32][Data...]
// CompressedSize == 0 marks a block stored as-is because compression did not
// pay off. Empty input encodes to an empty block so that empty objects stay
// zero-length.
package compress

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type selects the compression algorithm.
type Type uint8

const (
	// None stores objects unchanged.
	None Type = 0
	// LZ4 is fast block compression.
	LZ4 Type = 1
	// ZSTD trades speed for a better ratio.
	ZSTD Type = 2
)

const headerSize = 8

var (
	// ErrCorrupt is returned when a block cannot be decoded.
	ErrCorrupt = errors.New("compress: corrupt block")
	// ErrTooLarge is returned for inputs that do not fit the block header.
	ErrTooLarge = errors.New("compress: block too large")
	// ErrUnknownType is returned for an unsupported Type.
	ErrUnknownType = errors.New("compress: unknown type")
)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return "unknown"
	}
}

// Encode compresses data into a block. With None, data is returned unchanged.
func Encode(data []byte, t Type) ([]byte, error) {
	if t == None || len(data) == 0 {
		return data, nil
	}
	if uint64(len(data)) > math.MaxUint32 {
		return nil, ErrTooLarge
	}

	var (
		compressed []byte
		err        error
	)
	switch t {
	case LZ4:
		compressed, err = encodeLZ4(data)
	case ZSTD:
		compressed, err = encodeZSTD(data)
	default:
		return nil, ErrUnknownType
	}
	if err != nil {
		return nil, err
	}

	// Store raw if the ratio is worse than 0.9.
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		out := make([]byte, headerSize+len(data))
		binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
		copy(out[headerSize:], data)
		return out, nil
	}

	out := make([]byte, headerSize+len(compressed))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed)))
	copy(out[headerSize:], compressed)
	return out, nil
}

func encodeLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	// n == 0: incompressible.
	return compressed[:n], nil
}

func encodeZSTD(data []byte) ([]byte, error) {
	enc, err := getZstdEncoder()
	if err != nil {
		return nil, err
	}
	defer zstdEncoderPool.Put(enc)
	return enc.EncodeAll(data, nil), nil
}

// Decode reverses Encode.
func Decode(data []byte, t Type) ([]byte, error) {
	if t == None || len(data) == 0 {
		return data, nil
	}
	if len(data) < headerSize {
		return nil, ErrCorrupt
	}

	size := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])
	payload := data[headerSize:]

	if compressedSize == 0 {
		if uint64(len(payload)) < uint64(size) {
			return nil, ErrCorrupt
		}
		return payload[:size], nil
	}
	if uint64(len(payload)) < uint64(compressedSize) {
		return nil, ErrCorrupt
	}
	payload = payload[:compressedSize]

	switch t {
	case LZ4:
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, err
		}
		if uint32(n) != size {
			return nil, ErrCorrupt
		}
		return out, nil
	case ZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(payload, make([]byte, 0, size))
		if err != nil {
			return nil, err
		}
		if uint32(len(out)) != size {
			return nil, ErrCorrupt
		}
		return out, nil
	default:
		return nil, ErrUnknownType
	}
}
