package io

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// source is a resolved read location: either an absolute local path or a
// remote URL.
type source struct {
	location string
	remote   bool
}

// resolveSource expands ~, converts file:// URLs to local paths and makes
// local paths absolute. http(s) URLs are kept as they are.
func resolveSource(p string) (source, error) {
	if p == "" {
		return source{}, fmt.Errorf("no path or URL given")
	}

	if strings.Contains(p, "://") {
		u, err := url.Parse(p)
		if err != nil {
			return source{}, fmt.Errorf("parsing URL %q: %w", p, err)
		}
		switch strings.ToLower(u.Scheme) {
		case "file":
			p = u.Path
			if u.Host != "" && u.Host != "localhost" {
				p = "//" + u.Host + u.Path
			}
		case "http", "https":
			return source{location: p, remote: true}, nil
		default:
			return source{}, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
		}
	}

	expanded, err := homedir.Expand(p)
	if err != nil {
		return source{}, fmt.Errorf("expanding %q: %w", p, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return source{}, fmt.Errorf("resolving %q: %w", p, err)
	}
	return source{location: abs}, nil
}

// extension returns the lower-cased extension of the source without its
// dot. For URLs the query string is ignored.
func (s source) extension() string {
	name := s.location
	if s.remote {
		if u, err := url.Parse(s.location); err == nil {
			name = u.Path
		}
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// base is the file name shown in log lines.
func (s source) base() string {
	if s.remote {
		return s.location
	}
	return filepath.Base(s.location)
}
