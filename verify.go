package gositemapgenerator

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Summary describes a sitemap or sitemap index document.
type Summary struct {
	// Kind is the root element: "urlset" or "sitemapindex".
	Kind      string
	Namespace string
	Entries   int
	Locations []string
	LastMods  []string
	// ChangeFreqs and Priorities hold the raw text of urlset entries, "" when absent.
	// They stay nil for a sitemap index.
	ChangeFreqs []string
	Priorities  []string
}

type xmlURLEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type xmlSitemapEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

// InspectFile reads a document from disk and summarizes it.
func InspectFile(path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ErrIO{Path: path, Err: err}
	}
	defer f.Close()

	summary, err := Inspect(bufio.NewReader(f))
	if err != nil {
		var parseErr *ErrSitemapParse
		if errors.As(err, &parseErr) {
			parseErr.Path = path
		}
		return nil, err
	}
	return summary, nil
}

// Inspect stream-decodes a document and summarizes it.
func Inspect(r io.Reader) (*Summary, error) {
	summary := &Summary{}
	decoder := xml.NewDecoder(r)

	for {
		tok, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &ErrSitemapParse{Err: err}
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if summary.Kind == "" {
			switch start.Name.Local {
			case "urlset", "sitemapindex":
				summary.Kind = start.Name.Local
				summary.Namespace = start.Name.Space
				continue
			default:
				return nil, &ErrSitemapParse{Err: fmt.Errorf("unexpected root element <%s>", start.Name.Local)}
			}
		}
		switch start.Name.Local {
		case "url":
			var entry xmlURLEntry
			if err := decoder.DecodeElement(&entry, &start); err != nil {
				return nil, &ErrSitemapParse{Err: err}
			}
			summary.add(entry.Loc, entry.LastMod)
			summary.ChangeFreqs = append(summary.ChangeFreqs, strings.TrimSpace(entry.ChangeFreq))
			summary.Priorities = append(summary.Priorities, strings.TrimSpace(entry.Priority))
		case "sitemap":
			var entry xmlSitemapEntry
			if err := decoder.DecodeElement(&entry, &start); err != nil {
				return nil, &ErrSitemapParse{Err: err}
			}
			summary.add(entry.Loc, entry.LastMod)
		}
	}

	if summary.Kind == "" {
		return nil, &ErrSitemapParse{Err: errors.New("no root element")}
	}
	return summary, nil
}

func (s *Summary) add(loc, lastMod string) {
	s.Entries++
	s.Locations = append(s.Locations, strings.TrimSpace(loc))
	s.LastMods = append(s.LastMods, strings.TrimSpace(lastMod))
}
