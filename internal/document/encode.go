package document

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCBOR:
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("unknown output format: %q", s)
	}
}

var cborEncMode = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

var cborDecMode = func() cbor.DecMode {
	mode, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// Encode writes doc to w. JSON output is indented with two spaces and has
// sorted object keys; CBOR output uses core deterministic encoding.
func Encode(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding json document: %w", err)
		}
		return nil
	case FormatCBOR:
		if err := cborEncMode.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("encoding cbor document: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %q", format)
	}
}

// Decode reads a document in either format; JSON is recognised by a
// leading '{'.
func Decode(data []byte) (*Document, error) {
	var doc Document
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("decoding json document: %w", err)
		}
		return &doc, nil
	}
	if err := cborDecMode.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding cbor document: %w", err)
	}
	return &doc, nil
}

// WriteFile writes doc to path, creating parent directories. A ".zst" or
// ".lz4" extension compresses the output. The file is written to a
// temporary sibling first and renamed, so a failed run leaves no partial
// document behind.
func WriteFile(path string, doc *Document, format Format) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	buffered := bufio.NewWriter(tmp)
	w, err := compressor(buffered, path)
	if err != nil {
		return err
	}
	if err := Encode(w, doc, format); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("compressing output: %w", err)
	}
	if err := buffered.Flush(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming output: %w", err)
	}
	return nil
}

// ReadFile loads a document written by WriteFile.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	defer f.Close()

	r, err := decompressor(f, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", path, err)
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func compressor(w io.Writer, path string) (io.WriteCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("creating zstd writer: %w", err)
		}
		return enc, nil
	case ".lz4":
		return lz4.NewWriter(w), nil
	default:
		return nopCloser{w}, nil
	}
}

func decompressor(r io.Reader, path string) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		return dec.IOReadCloser(), nil
	case ".lz4":
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return io.NopCloser(r), nil
	}
}
