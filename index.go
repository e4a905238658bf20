package gositemapgenerator

import "fmt"

// BuildIndex closes the generator and writes a sitemapindex with one <sitemap> per document.
//
// loc is the public base URL the documents are served from. Each entry gets loc followed by
// the document's file name, or loc unchanged when Options.RepeatIndexLocation is set.
// An empty lastmod means DefaultIndexLastMod. In OutputString mode the index XML is returned;
// in OutputFile mode it is written to {OutputPath}/{BaseFilename}-index.xml and the result is "".
func (g *Generator) BuildIndex(loc, lastmod string) (string, error) {
	if err := g.Close(); err != nil {
		return "", err
	}
	if lastmod == "" {
		lastmod = DefaultIndexLastMod
	}
	date, err := g.dates.Normalize(lastmod)
	if err != nil {
		return "", err
	}

	name := g.IndexName()
	sink, err := g.target.open(name)
	if err != nil {
		g.metrics.observeWriteError()
		return "", err
	}
	e := newEmitter(sink)
	if err := g.writeIndex(e, loc, date); err != nil {
		e.abort()
		g.metrics.observeWriteError()
		return "", err
	}
	g.record(e, "sitemapindex")
	g.logger.Debug(fmt.Sprintf("wrote index %s with %d entries", name, g.seq.documents))

	if g.opts.OutputMode == OutputString {
		return g.index, nil
	}
	return "", nil
}

// IndexString returns the last index built in OutputString mode.
func (g *Generator) IndexString() (string, error) {
	if g.opts.OutputMode != OutputString {
		return "", &ErrConfigurationMismatch{Op: "IndexString", Mode: g.opts.OutputMode}
	}
	return g.index, nil
}

// IndexPath returns where BuildIndex writes in OutputFile mode.
func (g *Generator) IndexPath() (string, error) {
	if g.opts.OutputMode != OutputFile {
		return "", &ErrConfigurationMismatch{Op: "IndexPath", Mode: g.opts.OutputMode}
	}
	return fileTarget{dir: g.opts.OutputPath}.path(g.IndexName()), nil
}

func (g *Generator) writeIndex(e *emitter, loc, date string) error {
	if err := e.startDocument("sitemapindex"); err != nil {
		return err
	}
	for i := 0; i < g.seq.documents; i++ {
		if err := e.startElement("sitemap"); err != nil {
			return err
		}
		if err := e.leaf("loc", g.indexLocation(loc, i)); err != nil {
			return err
		}
		if err := e.leaf("lastmod", date); err != nil {
			return err
		}
		if err := e.endElement("sitemap"); err != nil {
			return err
		}
	}
	return e.endDocument()
}

func (g *Generator) indexLocation(loc string, i int) string {
	if g.opts.RepeatIndexLocation {
		return loc
	}
	return loc + g.DocumentName(i)
}
