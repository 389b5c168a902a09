// Package docx reads, renders and builds Word documents. Rendering follows
// the brace-tag template convention ({tag}, {#loop}...{/loop}) so templates
// authored for the web tooling keep working unchanged.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrCorruptTemplate marks template bytes that are not a readable Word
// package.
var ErrCorruptTemplate = errors.New("docx: corrupt template")

const documentPath = "word/document.xml"

// Container is an opened Word package. Entries keep their original order so
// a rendered copy differs from the template only in document.xml.
type Container struct {
	entries []entry
}

type entry struct {
	name string
	data []byte
}

// Open parses template bytes into a Container.
func Open(b []byte) (*Container, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptTemplate, err)
	}

	c := &Container{entries: make([]entry, 0, len(zr.File))}
	hasDocument := false
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening %s: %v", ErrCorruptTemplate, f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrCorruptTemplate, f.Name, err)
		}
		if f.Name == documentPath {
			hasDocument = true
		}
		c.entries = append(c.entries, entry{name: f.Name, data: data})
	}
	if !hasDocument {
		return nil, fmt.Errorf("%w: missing %s", ErrCorruptTemplate, documentPath)
	}
	return c, nil
}

// Document returns the main document part.
func (c *Container) Document() string {
	for _, e := range c.entries {
		if e.name == documentPath {
			return string(e.data)
		}
	}
	return ""
}

// SetDocument replaces the main document part.
func (c *Container) SetDocument(xml string) {
	for i, e := range c.entries {
		if e.name == documentPath {
			c.entries[i].data = []byte(xml)
			return
		}
	}
	c.entries = append(c.entries, entry{name: documentPath, data: []byte(xml)})
}

// Bytes serializes the package back into a docx file.
func (c *Container) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range c.entries {
		w, err := zw.Create(e.name)
		if err != nil {
			return nil, fmt.Errorf("writing %s: %w", e.name, err)
		}
		if _, err := w.Write(e.data); err != nil {
			return nil, fmt.Errorf("writing %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing package: %w", err)
	}
	return buf.Bytes(), nil
}
