package kv

import (
	"github.com/DataDog/zstd"
	"github.com/kelindar/binary"
)

func encodeTrace(tr ArchivedTrace) ([]byte, error) {
	encoded, err := binary.Marshal(tr)
	if err != nil {
		return nil, err
	}
	return compress(encoded)
}

func decodeTrace(bb []byte) (ArchivedTrace, error) {
	var tr ArchivedTrace
	decompressed, err := decompress(bb)
	if err != nil {
		return tr, err
	}
	err = binary.Unmarshal(decompressed, &tr)
	return tr, err
}

func encodeRefs(refs []TraceRef) ([]byte, error) {
	return binary.Marshal(refs)
}

func decodeRefs(bb []byte) ([]TraceRef, error) {
	var refs []TraceRef
	err := binary.Unmarshal(bb, &refs)
	return refs, err
}

func compress(bb []byte) ([]byte, error) {
	var bbCompressed []byte
	bbCompressed, err := zstd.Compress(bbCompressed, bb)
	if err != nil {
		return []byte{}, err
	}
	return bbCompressed, nil
}

func decompress(bbCompressed []byte) ([]byte, error) {
	var bb []byte
	bb, err := zstd.Decompress(bb, bbCompressed)
	if err != nil {
		return []byte{}, err
	}
	return bb, nil
}
