package gositemapgenerator

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/renameio/v2"
)

// SitemapNamespace is the xmlns of both urlset and sitemapindex roots.
const SitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

const xmlProlog = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// ===================== Targets =====================

// documentTarget decides where a named document is materialized.
type documentTarget interface {
	open(name string) (documentSink, error)
}

// documentSink receives the bytes of one document. Exactly one of commit or discard ends it.
type documentSink interface {
	io.Writer
	path() string
	commit() error
	discard() error
}

type fileTarget struct {
	dir string
}

func (t fileTarget) path(name string) string {
	return filepath.Join(t.dir, name)
}

func (t fileTarget) open(name string) (documentSink, error) {
	full := t.path(name)
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return nil, &ErrIO{Path: full, Err: err}
	}
	pending, err := renameio.NewPendingFile(full, renameio.WithPermissions(0o644))
	if err != nil {
		return nil, &ErrIO{Path: full, Err: err}
	}
	return &fileSink{pending: pending, name: full}, nil
}

type fileSink struct {
	pending *renameio.PendingFile
	name    string
}

func (s *fileSink) Write(p []byte) (int, error) {
	return s.pending.Write(p)
}

func (s *fileSink) path() string {
	return s.name
}

func (s *fileSink) commit() error {
	if err := s.pending.CloseAtomicallyReplace(); err != nil {
		_ = s.pending.Cleanup()
		return err
	}
	return nil
}

func (s *fileSink) discard() error {
	return s.pending.Cleanup()
}

type memoryTarget struct{}

func (memoryTarget) open(string) (documentSink, error) {
	return &memorySink{}, nil
}

type memorySink struct {
	bytes.Buffer
}

func (s *memorySink) path() string {
	return ""
}

func (s *memorySink) commit() error {
	return nil
}

func (s *memorySink) discard() error {
	s.Reset()
	return nil
}

// ===================== Emitter =====================

// countingWriter tracks how many bytes reached the sink.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// emitter streams one XML document into a sink.
type emitter struct {
	sink documentSink
	out  *countingWriter
	enc  *xml.Encoder
	root xml.Name
}

func newEmitter(sink documentSink) *emitter {
	out := &countingWriter{w: sink}
	enc := xml.NewEncoder(out)
	enc.Indent("", "  ")
	return &emitter{sink: sink, out: out, enc: enc}
}

func (e *emitter) startDocument(root string) error {
	if _, err := io.WriteString(e.out, xmlProlog); err != nil {
		return e.wrap(err)
	}
	e.root = xml.Name{Local: root}
	start := xml.StartElement{
		Name: e.root,
		Attr: []xml.Attr{{Name: xml.Name{Local: "xmlns"}, Value: SitemapNamespace}},
	}
	return e.wrap(e.enc.EncodeToken(start))
}

func (e *emitter) startElement(name string) error {
	return e.wrap(e.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: name}}))
}

func (e *emitter) endElement(name string) error {
	return e.wrap(e.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}}))
}

func (e *emitter) leaf(name, value string) error {
	return e.wrap(e.enc.EncodeElement(value, xml.StartElement{Name: xml.Name{Local: name}}))
}

func (e *emitter) floatLeaf(name string, value float64) error {
	return e.leaf(name, strconv.FormatFloat(value, 'f', -1, 64))
}

// endDocument closes the root, flushes the encoder, and commits the sink.
func (e *emitter) endDocument() error {
	if err := e.enc.EncodeToken(xml.EndElement{Name: e.root}); err != nil {
		return e.wrap(err)
	}
	if err := e.enc.Flush(); err != nil {
		return e.wrap(err)
	}
	if _, err := io.WriteString(e.out, "\n"); err != nil {
		return e.wrap(err)
	}
	return e.wrap(e.sink.commit())
}

func (e *emitter) abort() {
	_ = e.sink.discard()
}

func (e *emitter) written() int64 {
	return e.out.n
}

func (e *emitter) wrap(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*ErrIO); ok {
		return err
	}
	return &ErrIO{Path: e.sink.path(), Err: err}
}
