package quotexlsx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// Archive is a read-only, random-access view over an xlsx package.
type Archive struct {
	names []string
	files map[string]*zip.File
}

// OpenArchive opens an in-memory package.
func OpenArchive(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening package: %w", err)
	}

	a := &Archive{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		if _, dup := a.files[f.Name]; dup {
			continue
		}
		a.files[f.Name] = f
		a.names = append(a.names, f.Name)
	}
	return a, nil
}

// OpenArchiveFile reads a package from disk.
func OpenArchiveFile(filename string) (*Archive, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading package %q: %w", filename, err)
	}
	return OpenArchive(data)
}

// Names returns part names in their original order.
func (a *Archive) Names() []string {
	out := make([]string, len(a.names))
	copy(out, a.names)
	return out
}

// Has reports whether the package contains the named part.
func (a *Archive) Has(name string) bool {
	_, ok := a.files[name]
	return ok
}

// Read returns the raw bytes of a part.
func (a *Archive) Read(name string) ([]byte, error) {
	f, ok := a.files[name]
	if !ok {
		return nil, fmt.Errorf("part %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening part %q: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading part %q: %w", name, err)
	}
	return data, nil
}

// ArchiveWriter assembles a new package into a fresh buffer.
type ArchiveWriter struct {
	buf     *bytes.Buffer
	zw      *zip.Writer
	written map[string]bool
	closed  bool
}

// NewArchiveWriter creates an empty package writer using deflate compression.
func NewArchiveWriter() *ArchiveWriter {
	buf := new(bytes.Buffer)
	return &ArchiveWriter{
		buf:     buf,
		zw:      zip.NewWriter(buf),
		written: make(map[string]bool),
	}
}

// Write adds a part. Duplicate or invalid names are rejected.
func (w *ArchiveWriter) Write(name string, data []byte) error {
	if w.closed {
		return &ArchiveWriteError{Part: name, Err: errors.New("writer already closed")}
	}
	if err := validPartName(name); err != nil {
		return &ArchiveWriteError{Part: name, Err: err}
	}
	if w.written[name] {
		return &ArchiveWriteError{Part: name, Err: errors.New("duplicate part name")}
	}

	fw, err := w.zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return &ArchiveWriteError{Part: name, Err: err}
	}
	if _, err := fw.Write(data); err != nil {
		return &ArchiveWriteError{Part: name, Err: err}
	}
	w.written[name] = true
	return nil
}

// Len returns the number of parts written so far.
func (w *ArchiveWriter) Len() int {
	return len(w.written)
}

// Bytes finalizes the package and returns its content.
func (w *ArchiveWriter) Bytes() ([]byte, error) {
	if !w.closed {
		if err := w.zw.Close(); err != nil {
			return nil, &ArchiveWriteError{Part: "<central directory>", Err: err}
		}
		w.closed = true
	}
	return w.buf.Bytes(), nil
}

func validPartName(name string) error {
	switch {
	case name == "":
		return errors.New("empty part name")
	case strings.HasPrefix(name, "/"):
		return errors.New("part name must be relative")
	case strings.Contains(name, `\`):
		return errors.New("part name contains backslash")
	case strings.HasSuffix(name, "/"):
		return errors.New("part name is a directory")
	case path.Clean(name) != name:
		return errors.New("part name is not canonical")
	}
	return nil
}
