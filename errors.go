package gositemapgenerator

import "fmt"

// ErrConfigurationMismatch indicates an operation that is not available in the generator's output mode.
type ErrConfigurationMismatch struct {
	Op   string
	Mode OutputMode
}

func (e *ErrConfigurationMismatch) Error() string {
	return fmt.Sprintf("%s is not available in %s output mode", e.Op, e.Mode)
}

// ErrDateParse indicates a lastmod value that could not be interpreted as a date.
type ErrDateParse struct {
	Input string
	Err   error
}

func (e *ErrDateParse) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cannot parse date %q", e.Input)
	}
	return fmt.Sprintf("cannot parse date %q: %v", e.Input, e.Err)
}

func (e *ErrDateParse) Unwrap() error {
	return e.Err
}

// ErrIO indicates a failure while writing a document.
type ErrIO struct {
	Path string
	Err  error
}

func (e *ErrIO) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("sitemap write failed: %v", e.Err)
	}
	return fmt.Sprintf("sitemap write failed for %s: %v", e.Path, e.Err)
}

func (e *ErrIO) Unwrap() error {
	return e.Err
}

// ErrClosed indicates an item was added after the generator was closed.
type ErrClosed struct{}

func (e *ErrClosed) Error() string {
	return "sitemap generator is closed"
}

// ErrSitemapParse indicates a failure while reading back a sitemap document.
type ErrSitemapParse struct {
	Path string
	Err  error
}

func (e *ErrSitemapParse) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("sitemap parse failed: %v", e.Err)
	}
	return fmt.Sprintf("sitemap parse failed for %s: %v", e.Path, e.Err)
}

func (e *ErrSitemapParse) Unwrap() error {
	return e.Err
}
