// Package source reads sitemap entries from line files and SQL databases and filters them
// before they reach the generator.
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	gositemapgenerator "github.com/kotylevskiy/go-sitemap-generator"
)

// Entry is one location read from a source.
type Entry struct {
	Loc string
	// Priority is nil when the source did not give one; the generator default applies.
	Priority *float64
	// OmitPriority suppresses <priority> entirely.
	OmitPriority bool
	ChangeFreq   string
	LastMod      string
}

// Options converts the entry into generator item options.
func (e Entry) Options() []gositemapgenerator.ItemOption {
	var opts []gositemapgenerator.ItemOption
	switch {
	case e.OmitPriority:
		opts = append(opts, gositemapgenerator.WithoutPriority())
	case e.Priority != nil:
		opts = append(opts, gositemapgenerator.WithPriority(*e.Priority))
	}
	if e.ChangeFreq != "" {
		opts = append(opts, gositemapgenerator.WithChangeFrequency(gositemapgenerator.ChangeFrequency(e.ChangeFreq)))
	}
	if e.LastMod != "" {
		opts = append(opts, gositemapgenerator.WithLastMod(e.LastMod))
	}
	return opts
}

// Source yields entries in order until it is exhausted or yield fails.
type Source interface {
	Each(ctx context.Context, yield func(Entry) error) error
}

// ErrLine indicates a malformed line in a line source.
type ErrLine struct {
	Line int
	Err  error
}

func (e *ErrLine) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ErrLine) Unwrap() error {
	return e.Err
}

// LineSource reads one entry per line: loc, then optional priority, changefreq and lastmod,
// separated by tabs. Blank lines and lines starting with # are skipped. A priority of "-"
// suppresses the element; an empty priority keeps the default.
type LineSource struct {
	Reader io.Reader
}

func (s LineSource) Each(ctx context.Context, yield func(Entry) error) error {
	scanner := bufio.NewScanner(s.Reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lineNo int
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		entry, err := parseLine(line)
		if err != nil {
			return &ErrLine{Line: lineNo, Err: err}
		}
		if err := yield(entry); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func parseLine(line string) (Entry, error) {
	fields := strings.Split(line, "\t")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	entry := Entry{Loc: fields[0]}
	if entry.Loc == "" {
		return Entry{}, fmt.Errorf("missing location")
	}
	if len(fields) > 1 {
		switch fields[1] {
		case "":
		case "-":
			entry.OmitPriority = true
		default:
			p, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return Entry{}, fmt.Errorf("invalid priority %q: %w", fields[1], err)
			}
			entry.Priority = &p
		}
	}
	if len(fields) > 2 {
		entry.ChangeFreq = fields[2]
	}
	if len(fields) > 3 {
		entry.LastMod = fields[3]
	}
	return entry, nil
}

// Pipe feeds every entry of src that passes filter into add. A nil filter allows everything.
func Pipe(ctx context.Context, src Source, filter *Filter, add func(Entry) error) (added, skipped int, err error) {
	err = src.Each(ctx, func(entry Entry) error {
		if !filter.Allow(entry.Loc) {
			skipped++
			return nil
		}
		if err := add(entry); err != nil {
			return err
		}
		added++
		return nil
	})
	return added, skipped, err
}
