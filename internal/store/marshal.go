package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/roach88/driftcrew/internal/state"
)

type codec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// sharedCodec builds the zstd codec once. EncodeAll and DecodeAll are safe
// for concurrent use.
var sharedCodec = sync.OnceValues(func() (*codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &codec{enc: enc, dec: dec}, nil
})

// marshalDocument renders doc as compressed canonical JSON and returns it
// with its digest.
func marshalDocument(doc state.Document) ([]byte, string, error) {
	data, err := state.MarshalCanonical(doc)
	if err != nil {
		return nil, "", fmt.Errorf("marshal document: %w", err)
	}
	digest, err := state.Digest(doc)
	if err != nil {
		return nil, "", fmt.Errorf("marshal document: %w", err)
	}
	c, err := sharedCodec()
	if err != nil {
		return nil, "", fmt.Errorf("compress document: %w", err)
	}
	return c.enc.EncodeAll(data, nil), digest, nil
}

// unmarshalDocument decompresses blob and checks it against digest.
func unmarshalDocument(blob []byte, digest string) (state.Document, error) {
	var doc state.Document
	c, err := sharedCodec()
	if err != nil {
		return doc, fmt.Errorf("decompress document: %w", err)
	}
	data, err := c.dec.DecodeAll(blob, nil)
	if err != nil {
		return doc, fmt.Errorf("decompress document: %w", err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("unmarshal document: %w", err)
	}
	got, err := state.Digest(doc)
	if err != nil {
		return doc, fmt.Errorf("unmarshal document: %w", err)
	}
	if got != digest {
		return doc, fmt.Errorf("%w: stored %s, computed %s", ErrDigestMismatch, digest, got)
	}
	return doc, nil
}

// marshalArgs renders command arguments as canonical JSON TEXT.
// Empty arguments are stored as "{}".
func marshalArgs(args json.RawMessage) (string, error) {
	if len(args) == 0 {
		return "{}", nil
	}
	var generic any
	if err := json.Unmarshal(args, &generic); err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	data, err := state.MarshalCanonical(generic)
	if err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	return string(data), nil
}
