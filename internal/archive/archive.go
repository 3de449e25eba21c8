// Package archive writes conversation transcripts as JSON lines, optionally
// zstd-compressed, and reads them back.
package archive

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/suykerbuyk/devflow/internal/conversation"
)

const (
	plainExt      = ".jsonl"
	compressedExt = ".jsonl.zst"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Write stores entries at path, one JSON object per line. With compress
// set the stream is zstd-encoded.
func Write(path string, entries []conversation.Entry, compress bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}

	dest, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer dest.Close()

	var w io.Writer = dest
	var encoder *zstd.Encoder
	if compress {
		encoder, err = zstd.NewWriter(dest)
		if err != nil {
			return fmt.Errorf("create zstd encoder: %w", err)
		}
		w = encoder
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, e := range entries {
		if err := enc.Encode(e); err != nil {
			if encoder != nil {
				encoder.Close()
			}
			return fmt.Errorf("encode entry %d: %w", i, err)
		}
	}

	if encoder != nil {
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("finalize compression: %w", err)
		}
	}
	return dest.Close()
}

// Read loads entries from an archive written by Write. Compressed and
// plain files are told apart by content, not by name.
func Read(path string) ([]conversation.Entry, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer src.Close()

	br := bufio.NewReader(src)
	var r io.Reader = br
	if head, _ := br.Peek(len(zstdMagic)); bytes.Equal(head, zstdMagic) {
		decoder, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		defer decoder.Close()
		r = decoder
	}

	var entries []conversation.Entry
	dec := json.NewDecoder(r)
	for {
		var e conversation.Entry
		err := dec.Decode(&e)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode entry %d: %w", len(entries), err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ArchivePath returns the deterministic archive path for a conversation ID.
func ArchivePath(id, archiveDir string, compress bool) string {
	if compress {
		return filepath.Join(archiveDir, id+compressedExt)
	}
	return filepath.Join(archiveDir, id+plainExt)
}

// IsArchived reports whether an archive, in either form, exists for id.
func IsArchived(id, archiveDir string) bool {
	for _, compress := range []bool{true, false} {
		if _, err := os.Stat(ArchivePath(id, archiveDir, compress)); err == nil {
			return true
		}
	}
	return false
}

// IDFromPath recovers the conversation ID from an archive file name.
func IDFromPath(path string) string {
	base := filepath.Base(path)
	if strings.HasSuffix(base, compressedExt) {
		return strings.TrimSuffix(base, compressedExt)
	}
	if strings.HasSuffix(base, plainExt) {
		return strings.TrimSuffix(base, plainExt)
	}
	return ""
}
