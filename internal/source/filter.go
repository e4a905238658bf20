package source

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/temoto/robotstxt"
)

// Filter decides which locations make it into the sitemap.
type Filter struct {
	Include []*regexp.Regexp // nil => include all
	Exclude []*regexp.Regexp // nil => exclude none
	// Robots, when set, drops locations its rules disallow.
	Robots *robotstxt.Group
}

// ParseRobots reads robots.txt content and returns the group that applies to userAgent.
func ParseRobots(data []byte, userAgent string) (*robotstxt.Group, error) {
	robots, err := robotstxt.FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}
	return robots.FindGroup(userAgent), nil
}

// CompilePatterns compiles each expression, failing on the first invalid one.
func CompilePatterns(exprs []string) ([]*regexp.Regexp, error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", expr, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Allow reports whether loc passes the include, exclude and robots rules.
func (f *Filter) Allow(loc string) bool {
	if f == nil {
		return true
	}
	if len(f.Include) > 0 {
		matched := false
		for _, re := range f.Include {
			if re != nil && re.MatchString(loc) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, re := range f.Exclude {
		if re != nil && re.MatchString(loc) {
			return false
		}
	}
	return f.allowedByRobots(loc)
}

func (f *Filter) allowedByRobots(loc string) bool {
	if f.Robots == nil {
		return true
	}
	parsed, err := url.Parse(loc)
	if err != nil {
		return true
	}
	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	if parsed.RawQuery != "" {
		path += "?" + parsed.RawQuery
	}
	return f.Robots.Test(path)
}
