// Package archive reads entries out of a server distribution jar. Newer
// distributions are "bundlers": the outer jar carries the real server jar
// as an entry under META-INF/versions/, and all game data lives in that
// nested jar. Open detects this and reads from the nested jar transparently.
package archive

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/zeebo/blake3"
)

var ErrOpen = errors.New("cannot open archive")

// InnerPattern selects the nested archive entry of a bundler jar.
type InnerPattern struct {
	Prefix string `yaml:"prefix"`
	Suffix string `yaml:"suffix"`
}

func DefaultInnerPattern() InnerPattern {
	return InnerPattern{Prefix: "META-INF/versions/", Suffix: ".jar"}
}

func (p InnerPattern) Match(name string) bool {
	if p.Prefix == "" && p.Suffix == "" {
		return false
	}
	return strings.HasPrefix(name, p.Prefix) && strings.HasSuffix(name, p.Suffix)
}

// Entry is one file read out of the archive.
type Entry struct {
	Path string
	Data []byte
}

type Archive struct {
	files  map[string]*zip.File
	names  []string
	inner  string
	digest string
}

func Open(path string, pattern InnerPattern) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, path, err)
	}
	a, err := OpenBytes(data, pattern)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// OpenBytes opens an in-memory archive. The first entry matching pattern,
// in central directory order, becomes the active container.
func OpenBytes(data []byte, pattern InnerPattern) (*Archive, error) {
	outer, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	sum := blake3.Sum256(data)
	a := &Archive{digest: hex.EncodeToString(sum[:])}

	active := outer
	for _, file := range outer.File {
		if file.FileInfo().IsDir() || !pattern.Match(file.Name) {
			continue
		}
		nested, err := openNested(file)
		if err != nil {
			return nil, fmt.Errorf("%w: nested archive %s: %w", ErrOpen, file.Name, err)
		}
		active = nested
		a.inner = file.Name
		break
	}

	a.files = make(map[string]*zip.File, len(active.File))
	for _, file := range active.File {
		if file.FileInfo().IsDir() {
			continue
		}
		if _, exists := a.files[file.Name]; exists {
			continue
		}
		a.files[file.Name] = file
		a.names = append(a.names, file.Name)
	}
	sort.Strings(a.names)

	return a, nil
}

func openNested(file *zip.File) (*zip.Reader, error) {
	data, err := readFile(file)
	if err != nil {
		return nil, err
	}
	return zip.NewReader(bytes.NewReader(data), int64(len(data)))
}

// Inner returns the path of the nested archive, or "" for a flat archive.
func (a *Archive) Inner() string {
	return a.inner
}

// Digest is the hex BLAKE3-256 digest of the outer archive bytes.
func (a *Archive) Digest() string {
	return a.digest
}

func (a *Archive) Len() int {
	return len(a.names)
}

// Entries lists file paths under prefix in lexical order. A prefix segment
// of "*" matches any single path segment.
func (a *Archive) Entries(prefix string) []string {
	var out []string
	for _, name := range a.names {
		if HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}

func (a *Archive) Read(name string) ([]byte, error) {
	file, ok := a.files[name]
	if !ok {
		return nil, fmt.Errorf("entry %s: %w", name, fs.ErrNotExist)
	}
	data, err := readFile(file)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", name, err)
	}
	return data, nil
}

func readFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// HasPrefix reports whether name lies under prefix, where "*" segments in
// prefix match exactly one segment of name.
func HasPrefix(name, prefix string) bool {
	if !strings.Contains(prefix, "*") {
		return strings.HasPrefix(name, prefix)
	}

	prefixSegments := strings.Split(prefix, "/")
	nameSegments := strings.Split(name, "/")
	last := len(prefixSegments) - 1
	for i, segment := range prefixSegments {
		if i >= len(nameSegments) {
			return false
		}
		if i == last {
			return segment == "*" || strings.HasPrefix(nameSegments[i], segment)
		}
		if i == len(nameSegments)-1 {
			return false
		}
		if segment != "*" && segment != nameSegments[i] {
			return false
		}
	}
	return true
}

// PrefixDepth is the number of complete path segments in prefix.
func PrefixDepth(prefix string) int {
	return strings.Count(prefix, "/")
}
