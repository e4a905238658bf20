package gositemapgenerator

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// DateLayout is the W3C date form written into <lastmod>.
const DateLayout = "2006-01-02"

var (
	errNoDate      = errors.New("no date found")
	errPartialDate = errors.New("text around the date expression")
)

// dateFormats extends the jinzhu/now layouts with English month-name forms.
var dateFormats = append(append([]string{}, now.TimeFormats...),
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
)

// DateParser turns Unix timestamps and free-form date text into sitemap dates.
type DateParser struct {
	// Location is the zone dates are rendered in. Nil means UTC.
	Location *time.Location
	// Now is the reference for relative expressions such as "today". Nil means time.Now.
	Now func() time.Time

	natural *when.Parser
}

// NewDateParser builds a DateParser with the given zone and clock.
func NewDateParser(loc *time.Location, clock func() time.Time) *DateParser {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = time.Now
	}
	natural := when.New(nil)
	natural.Add(en.All...)
	natural.Add(common.All...)
	return &DateParser{Location: loc, Now: clock, natural: natural}
}

var defaultDateParser = NewDateParser(time.UTC, nil)

// NormalizeDate renders input as YYYY-MM-DD in UTC.
func NormalizeDate(input string) (string, error) {
	return defaultDateParser.Normalize(input)
}

// Normalize renders input as YYYY-MM-DD.
func (p *DateParser) Normalize(input string) (string, error) {
	t, err := p.Parse(input)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// Format renders t as YYYY-MM-DD in the parser's zone.
func (p *DateParser) Format(t time.Time) string {
	return t.In(p.location()).Format(DateLayout)
}

// Parse interprets input as Unix seconds when it is all digits, otherwise as date text.
func (p *DateParser) Parse(input string) (time.Time, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return time.Time{}, &ErrDateParse{Input: input, Err: errors.New("empty date")}
	}
	loc := p.location()
	if isDigits(trimmed) {
		sec, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return time.Time{}, &ErrDateParse{Input: input, Err: err}
		}
		return time.Unix(sec, 0).In(loc), nil
	}

	ref := p.clock()().In(loc)
	cfg := &now.Config{TimeLocation: loc, TimeFormats: dateFormats}
	if t, err := cfg.With(ref).Parse(trimmed); err == nil {
		return t.In(loc), nil
	}

	natural := p.natural
	if natural == nil {
		natural = defaultDateParser.natural
	}
	res, err := natural.Parse(trimmed, ref)
	if err != nil {
		return time.Time{}, &ErrDateParse{Input: input, Err: err}
	}
	if res == nil {
		return time.Time{}, &ErrDateParse{Input: input, Err: errNoDate}
	}
	// when picks a date expression out of surrounding text; only an exact match counts.
	if res.Index != 0 || len(res.Text) != len(trimmed) {
		return time.Time{}, &ErrDateParse{Input: input, Err: errPartialDate}
	}
	return res.Time.In(loc), nil
}

func (p *DateParser) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

func (p *DateParser) clock() func() time.Time {
	if p.Now == nil {
		return time.Now
	}
	return p.Now
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
