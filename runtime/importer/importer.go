// Package importer implements the default file resolver a host hands to
// runtime/parser.Parse as its Importer: given a plain-string @import entry
// it cannot itself handle, the host chains to a Resolver here to look the
// path up on disk (spec §4.6, §6). The core parser never imports this
// package directly — file I/O stays outside it, reached only through the
// Importer interface it already defines.
package importer

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cascadelang/cascade/core/ast"
	"github.com/cascadelang/cascade/core/types"
)

// extensions are tried, in order, for a candidate path that doesn't
// already carry one.
var extensions = []string{".dialect", ".dl"}

// indexNames are tried when a candidate resolves to a directory.
var indexNames = []string{"_index", "index"}

// Option configures a Resolver's construction.
type Option func(*config)

type config struct {
	logger       *slog.Logger
	includePaths []string
}

// WithLogger overrides the default slog.Logger used for cache-hit/load
// trace entries.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithIncludePaths adds additional search roots consulted after the
// importing file's own directory, in the order given.
func WithIncludePaths(paths ...string) Option {
	return func(c *config) { c.includePaths = append(c.includePaths, paths...) }
}

// Resolver is the default file resolver: it widens a plain import URL into
// the candidate paths a partial-aware lookup would try (underscore-prefixed
// partials, `.dialect`/`.dl` extensions, directory-index fallback) and
// satisfies them from disk. Safe for concurrent use; a Resolver may be
// shared across parses.
type Resolver struct {
	includePaths []string
	logger       *slog.Logger
	cache        *cache
}

// NewResolver constructs a Resolver. With no options, only the importing
// file's own directory is searched.
func NewResolver(opts ...Option) *Resolver {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	return &Resolver{
		includePaths: c.includePaths,
		logger:       c.logger,
		cache:        newCache(),
	}
}

// Resolve implements the method shape runtime/parser.Importer expects,
// deliberately without importing that package: the host wires a *Resolver
// (or a *WatchingResolver) in directly as its Importer, or chains it behind
// a plugin-specific Importer that falls through to it on NotHandled.
func (r *Resolver) Resolve(importURL, importingPath string, sourceRange types.SourceRange) ([]ast.ImportStub, bool) {
	if strings.HasPrefix(importURL, "http://") || strings.HasPrefix(importURL, "https://") || strings.HasPrefix(importURL, "//") {
		return nil, false
	}

	for _, root := range r.searchRoots(importingPath) {
		for _, candidate := range candidatePaths(root, importURL) {
			data, err := os.ReadFile(candidate)
			if err != nil {
				continue
			}
			resolved, err := filepath.Abs(candidate)
			if err != nil {
				resolved = candidate
			}
			changed := r.cache.store(resolved, data)
			if changed {
				r.logger.Debug("import loaded", "path", resolved)
			} else {
				r.logger.Debug("import cache hit", "path", resolved)
			}
			return []ast.ImportStub{{Base: ast.Base{Range: sourceRange}, ResolvedPath: resolved}}, true
		}
	}
	return nil, false
}

// searchRoots returns the importing file's own directory followed by the
// configured include paths, matching the order a partial lookup tries them
// in (local directory takes precedence over shared include paths).
func (r *Resolver) searchRoots(importingPath string) []string {
	roots := make([]string, 0, len(r.includePaths)+1)
	if importingPath != "" {
		roots = append(roots, filepath.Dir(importingPath))
	}
	roots = append(roots, r.includePaths...)
	if len(roots) == 0 {
		roots = append(roots, ".")
	}
	return roots
}

// candidatePaths widens url into the ordered list of on-disk paths worth
// trying under root: the literal path, the underscore-prefixed partial
// form, each with every known extension tried in turn, then (if url names
// a directory) the directory-index forms of the same.
func candidatePaths(root, url string) []string {
	base := filepath.Join(root, url)
	dir, name := filepath.Dir(base), filepath.Base(base)

	var candidates []string
	hasExt := hasKnownExtension(name)

	addNamed := func(n string) {
		if hasExt {
			candidates = append(candidates, filepath.Join(dir, n))
			return
		}
		for _, ext := range extensions {
			candidates = append(candidates, filepath.Join(dir, n+ext))
		}
	}
	addNamed(name)
	addNamed("_" + name)

	for _, idx := range indexNames {
		for _, ext := range extensions {
			candidates = append(candidates, filepath.Join(base, idx+ext))
		}
	}

	return candidates
}

func hasKnownExtension(name string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
