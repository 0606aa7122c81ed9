// Package pathfilter decides which files under the project root belong in the
// source snapshot.
package pathfilter

import (
	"regexp"
	"slices"
	"strings"

	"github.com/taigrr/annotate/internal/types"
)

// PathFilter filters paths by extension allow-list and ignore globs.
// It is safe for concurrent use once built.
type PathFilter struct {
	ignoredPatterns   []*regexp.Regexp
	allowedExtensions []string
}

// New creates a new PathFilter with the given configuration. A nil config
// allows nothing, since the extension set is empty.
func New(config *types.PathFilterConfig) *PathFilter {
	pf := &PathFilter{}
	if config == nil {
		return pf
	}

	pf.allowedExtensions = NormalizeExtensions(config.AllowedExtensions)
	for _, pattern := range config.IgnoredPatterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if re, err := compileGlob(pattern); err == nil {
			pf.ignoredPatterns = append(pf.ignoredPatterns, re)
		}
	}

	return pf
}

// NormalizeExtensions strips a leading dot and surrounding whitespace from
// each extension, dropping empties and duplicates while keeping order.
func NormalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext == "" || slices.Contains(out, ext) {
			continue
		}
		out = append(out, ext)
	}
	return out
}

// compileGlob converts a glob pattern to an anchored regex.
func compileGlob(pattern string) (*regexp.Regexp, error) {
	// Normalize pattern path separators (Windows compatibility)
	normalizedPattern := strings.ReplaceAll(pattern, "\\", "/")

	regexPattern := regexp.QuoteMeta(normalizedPattern)

	regexPattern = strings.ReplaceAll(regexPattern, `\*\*`, ".*")  // ** matches any
	regexPattern = strings.ReplaceAll(regexPattern, `\*`, "[^/]*") // * matches non-slash
	regexPattern = strings.ReplaceAll(regexPattern, `\?`, "[^/]")  // ? matches single char

	return regexp.Compile("^" + regexPattern + "$")
}

// Extensions returns a copy of the normalized extension allow-list.
func (pf *PathFilter) Extensions() []string {
	return slices.Clone(pf.allowedExtensions)
}

// Suffix returns the part of the last path component after its final dot.
// Names without a dot, dotfiles such as ".bashrc", and names ending in a dot
// have no suffix.
func Suffix(path string) string {
	name := path
	if i := strings.LastIndexAny(name, `/\`); i != -1 {
		name = name[i+1:]
	}
	dot := strings.LastIndex(name, ".")
	if dot <= 0 || dot == len(name)-1 {
		return ""
	}
	return name[dot+1:]
}

// MatchesExtension reports whether the file's suffix is exactly one of the
// allowed extensions. Matching is case-sensitive.
func (pf *PathFilter) MatchesExtension(path string) bool {
	suffix := Suffix(path)
	if suffix == "" {
		return false
	}
	return slices.Contains(pf.allowedExtensions, suffix)
}

// IsIgnored reports whether a root-relative path matches an ignore pattern.
func (pf *PathFilter) IsIgnored(path string) bool {
	normalizedPath := strings.ReplaceAll(path, "\\", "/")
	for _, re := range pf.ignoredPatterns {
		if re.MatchString(normalizedPath) {
			return true
		}
	}
	return false
}

// IsIgnoredDir reports whether a root-relative directory should not be
// descended into. A pattern like "build/**" excludes the "build" directory.
func (pf *PathFilter) IsIgnoredDir(path string) bool {
	normalizedPath := strings.TrimSuffix(strings.ReplaceAll(path, "\\", "/"), "/")
	return pf.IsIgnored(normalizedPath) || pf.IsIgnored(normalizedPath+"/")
}

// IsAllowed checks if a root-relative file path belongs in the snapshot.
func (pf *PathFilter) IsAllowed(path string) bool {
	if pf.IsIgnored(path) {
		return false
	}
	return pf.MatchesExtension(path)
}
