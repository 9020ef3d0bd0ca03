package datastructure

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// CompressTrace zstd-compresses a serialized navigation trace for export.
func CompressTrace(trace []byte, bbufOut *bytes.Buffer) error {
	encoder, err := zstd.NewWriter(bbufOut, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	if _, err = io.Copy(encoder, bytes.NewBuffer(trace)); err != nil {
		encoder.Close()
		return err
	}
	return encoder.Close()
}

func DecompressTrace(compressed []byte, out io.Writer) error {
	d, err := zstd.NewReader(bytes.NewBuffer(compressed))
	if err != nil {
		return err
	}
	defer d.Close()

	_, err = io.Copy(out, d)
	return err
}
