package gositemapgenerator

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

const (
	// DefaultItemsPerDocument is the protocol limit of entries in one sitemap file.
	DefaultItemsPerDocument = 50000
	// DefaultBaseFilename names the first document sitemap.xml.
	DefaultBaseFilename = "sitemap"
	// DefaultIndexLastMod is used when BuildIndex gets an empty lastmod.
	DefaultIndexLastMod = "Today"
)

// ===================== Configuration =====================

// Options configures document naming, splitting, and output.
type Options struct {
	Domain           string
	OutputMode       OutputMode
	OutputPath       string
	BaseFilename     string
	ItemsPerDocument int

	// RepeatIndexLocation writes the BuildIndex loc unchanged into every index entry
	// instead of appending each document's file name.
	RepeatIndexLocation bool

	Location *time.Location
	Now      func() time.Time
	Logger   *slog.Logger
	Metrics  *Metrics
}

// sequence is the cross-document state of a generator.
type sequence struct {
	items     int
	documents int
	active    *emitter
}

// Generator writes sitemap entries into capped documents and implements SitemapWriter.
// It is not safe for concurrent use.
type Generator struct {
	opts    Options
	domain  string
	target  documentTarget
	dates   *DateParser
	logger  *slog.Logger
	metrics *Metrics

	seq    sequence
	closed bool
	err    error

	files     []string
	documents []string
	index     string
}

var _ SitemapWriter = (*Generator)(nil)

// ===================== Public API =====================

// New builds a Generator with defaults applied.
func New(opts Options) *Generator {
	if opts.ItemsPerDocument <= 0 {
		opts.ItemsPerDocument = DefaultItemsPerDocument
	}
	if opts.BaseFilename == "" {
		opts.BaseFilename = DefaultBaseFilename
	}
	if opts.OutputPath == "" {
		opts.OutputPath = "."
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var target documentTarget = fileTarget{dir: opts.OutputPath}
	if opts.OutputMode == OutputString {
		target = memoryTarget{}
	}

	return &Generator{
		opts:    opts,
		domain:  opts.Domain,
		target:  target,
		dates:   NewDateParser(opts.Location, opts.Now),
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

// Domain returns the prefix prepended to every location.
func (g *Generator) Domain() string {
	return g.domain
}

// SetDomain changes the prefix for entries added from now on.
func (g *Generator) SetDomain(domain string) {
	g.domain = domain
}

// Mode returns the output mode fixed at construction.
func (g *Generator) Mode() OutputMode {
	return g.opts.OutputMode
}

// ItemCount returns the number of entries added across all documents.
func (g *Generator) ItemCount() int {
	return g.seq.items
}

// DocumentCount returns the number of documents opened so far.
func (g *Generator) DocumentCount() int {
	return g.seq.documents
}

// DocumentName returns the file name of document i: sitemap.xml, sitemap-1.xml, sitemap-2.xml, ...
func (g *Generator) DocumentName(i int) string {
	if i == 0 {
		return g.opts.BaseFilename + ".xml"
	}
	return fmt.Sprintf("%s-%d.xml", g.opts.BaseFilename, i)
}

// IndexName returns the file name of the sitemap index.
func (g *Generator) IndexName() string {
	return g.opts.BaseFilename + "-index.xml"
}

// Add writes one entry. The location is prefixed with the domain; the caller keeps it
// within the 2048 characters the protocol allows.
func (g *Generator) Add(loc string, opts ...ItemOption) error {
	if g.err != nil {
		return g.err
	}
	if g.closed {
		return &ErrClosed{}
	}

	it := item{priority: DefaultPriority}
	for _, opt := range opts {
		opt(&it)
	}
	lastMod, err := g.lastMod(it)
	if err != nil {
		return err
	}

	if g.seq.items%g.opts.ItemsPerDocument == 0 {
		if err := g.closeActive(); err != nil {
			return g.fail(err)
		}
		if err := g.openDocument(); err != nil {
			return g.fail(err)
		}
	}
	g.seq.items++

	if err := g.writeItem(g.domain+loc, it, lastMod); err != nil {
		return g.fail(err)
	}
	g.metrics.observeItem()
	return nil
}

// Close finalizes the open document. A generator without entries still produces one empty urlset.
// Calling Close again is a no-op.
func (g *Generator) Close() error {
	if g.err != nil {
		return g.err
	}
	if g.closed {
		return nil
	}
	if g.seq.active == nil {
		if err := g.openDocument(); err != nil {
			return g.fail(err)
		}
	}
	if err := g.closeActive(); err != nil {
		return g.fail(err)
	}
	g.closed = true
	return nil
}

// DocumentString returns the most recently finalized document in OutputString mode.
func (g *Generator) DocumentString() (string, error) {
	if g.opts.OutputMode != OutputString {
		return "", &ErrConfigurationMismatch{Op: "DocumentString", Mode: g.opts.OutputMode}
	}
	if len(g.documents) == 0 {
		return "", nil
	}
	return g.documents[len(g.documents)-1], nil
}

// Documents returns every finalized document in OutputString mode, in order.
func (g *Generator) Documents() ([]string, error) {
	if g.opts.OutputMode != OutputString {
		return nil, &ErrConfigurationMismatch{Op: "Documents", Mode: g.opts.OutputMode}
	}
	out := make([]string, len(g.documents))
	copy(out, g.documents)
	return out, nil
}

// Files returns the paths of finalized documents in OutputFile mode, in order.
func (g *Generator) Files() []string {
	out := make([]string, len(g.files))
	copy(out, g.files)
	return out
}

// ===================== Sequencing =====================

func (g *Generator) openDocument() error {
	name := g.DocumentName(g.seq.documents)
	sink, err := g.target.open(name)
	if err != nil {
		return err
	}
	e := newEmitter(sink)
	if err := e.startDocument("urlset"); err != nil {
		e.abort()
		return err
	}
	g.seq.active = e
	g.seq.documents++
	g.logger.Debug(fmt.Sprintf("opened document %d (%s)", g.seq.documents-1, name))
	return nil
}

// closeActive finalizes the active document, if any, and records its output.
func (g *Generator) closeActive() error {
	e := g.seq.active
	if e == nil {
		return nil
	}
	g.seq.active = nil
	if err := e.endDocument(); err != nil {
		e.abort()
		return err
	}
	g.record(e, "urlset")
	g.logger.Debug(fmt.Sprintf("closed document %d after %d items", g.seq.documents-1, g.seq.items))
	return nil
}

func (g *Generator) record(e *emitter, kind string) {
	g.metrics.observeDocument(kind, e.written())
	if mem, ok := e.sink.(*memorySink); ok {
		text := mem.String()
		if kind == "urlset" {
			g.documents = append(g.documents, text)
		} else {
			g.index = text
		}
		return
	}
	if kind == "urlset" {
		g.files = append(g.files, e.sink.path())
	}
}

func (g *Generator) writeItem(loc string, it item, lastMod string) error {
	e := g.seq.active
	if err := e.startElement("url"); err != nil {
		return err
	}
	if err := e.leaf("loc", loc); err != nil {
		return err
	}
	if !it.omitPriority {
		if err := e.floatLeaf("priority", it.priority); err != nil {
			return err
		}
	}
	if it.changeFreq != "" {
		if err := e.leaf("changefreq", string(it.changeFreq)); err != nil {
			return err
		}
	}
	if lastMod != "" {
		if err := e.leaf("lastmod", lastMod); err != nil {
			return err
		}
	}
	return e.endElement("url")
}

func (g *Generator) lastMod(it item) (string, error) {
	if it.lastModTime != nil {
		return g.dates.Format(*it.lastModTime), nil
	}
	if it.lastMod == "" {
		return "", nil
	}
	return g.dates.Normalize(it.lastMod)
}

// fail discards the active document and makes err sticky.
func (g *Generator) fail(err error) error {
	if g.seq.active != nil {
		g.seq.active.abort()
		g.seq.active = nil
	}
	g.err = err
	g.metrics.observeWriteError()
	g.logger.Error(fmt.Sprintf("sitemap generation stopped: %v", err))
	return err
}
