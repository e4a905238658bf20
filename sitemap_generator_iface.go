package gositemapgenerator

import "time"

// SitemapWriter accepts sitemap entries and splits them across capped documents.
type SitemapWriter interface {
	// Add writes one <url> entry, rolling over to a new document when the current one is full.
	Add(loc string, opts ...ItemOption) error
	// Close finalizes the document that is currently open.
	Close() error
	// BuildIndex writes a sitemap index that lists every document produced so far.
	BuildIndex(loc, lastmod string) (string, error)
}

// OutputMode selects where generated documents go.
type OutputMode int

const (
	// OutputFile writes each document to a named file under Options.OutputPath.
	OutputFile OutputMode = iota
	// OutputString keeps documents in memory and returns them as strings.
	OutputString
)

func (m OutputMode) String() string {
	switch m {
	case OutputFile:
		return "file"
	case OutputString:
		return "string"
	default:
		return "unknown"
	}
}

// ChangeFrequency is the optional <changefreq> value of an entry.
type ChangeFrequency string

const (
	Always  ChangeFrequency = "always"
	Hourly  ChangeFrequency = "hourly"
	Daily   ChangeFrequency = "daily"
	Weekly  ChangeFrequency = "weekly"
	Monthly ChangeFrequency = "monthly"
	Yearly  ChangeFrequency = "yearly"
	Never   ChangeFrequency = "never"
)

// Valid reports whether f is one of the protocol values.
func (f ChangeFrequency) Valid() bool {
	switch f {
	case Always, Hourly, Daily, Weekly, Monthly, Yearly, Never:
		return true
	}
	return false
}

// DefaultPriority is written when an entry does not set a priority.
const DefaultPriority = 0.5

type item struct {
	priority     float64
	omitPriority bool
	changeFreq   ChangeFrequency
	lastMod      string
	lastModTime  *time.Time
}

// ItemOption customizes a single Add call.
type ItemOption func(*item)

// WithPriority sets <priority>. Zero is written as is.
func WithPriority(p float64) ItemOption {
	return func(it *item) {
		it.priority = p
		it.omitPriority = false
	}
}

// WithoutPriority suppresses the <priority> element.
func WithoutPriority() ItemOption {
	return func(it *item) {
		it.omitPriority = true
	}
}

// WithChangeFrequency sets <changefreq>. An empty value writes nothing.
func WithChangeFrequency(f ChangeFrequency) ItemOption {
	return func(it *item) {
		it.changeFreq = f
	}
}

// WithLastMod sets <lastmod> from a Unix timestamp in decimal digits or a free-form date expression.
func WithLastMod(value string) ItemOption {
	return func(it *item) {
		it.lastMod = value
		it.lastModTime = nil
	}
}

// WithLastModUnix sets <lastmod> from Unix seconds.
func WithLastModUnix(sec int64) ItemOption {
	return WithLastModTime(time.Unix(sec, 0))
}

// WithLastModTime sets <lastmod> from t.
func WithLastModTime(t time.Time) ItemOption {
	return func(it *item) {
		it.lastMod = ""
		it.lastModTime = &t
	}
}
