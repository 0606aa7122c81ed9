// Package search provides full-text search over a source snapshot.
package search

import (
	"regexp"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/taigrr/annotate/internal/types"
)

const (
	defaultContextLines = 2
	defaultLimit        = 15
	patternCacheSize    = 128
)

type patternKey struct {
	query         string
	useRegex      bool
	caseSensitive bool
}

// Service searches snapshots. Only compiled patterns are kept between calls,
// never file content.
type Service struct {
	patterns *lru.Cache[patternKey, *regexp.Regexp]
}

// New creates a new search Service.
func New() *Service {
	patterns, _ := lru.New[patternKey, *regexp.Regexp](patternCacheSize)
	return &Service{patterns: patterns}
}

// SearchAdvanced searches every file of the snapshot, line by line, with
// optional regex support and context lines.
// Returns results sorted by path, with the total number of matching files
// for pagination.
func (s *Service) SearchAdvanced(snapshot types.Snapshot, params types.SearchParams) ([]types.SearchResult, int, error) {
	query := params.Query
	if strings.TrimSpace(query) == "" {
		return nil, 0, &SearchError{Message: "Search query cannot be empty"}
	}

	contextLines := params.ContextLines
	if contextLines <= 0 {
		contextLines = defaultContextLines
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	offset := max(params.Offset, 0)

	searchPattern, err := s.pattern(query, params.UseRegex, params.CaseSensitive)
	if err != nil {
		return nil, 0, err
	}

	paths := make([]string, 0, len(snapshot))
	for path := range snapshot {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	allResults := []types.SearchResult{}
	for _, path := range paths {
		lines := snapshot[path]

		var matches []types.SearchMatch
		for lineNum, line := range lines {
			if !searchPattern.MatchString(line) {
				continue
			}

			startLine := max(lineNum-contextLines, 0)
			endLine := min(lineNum+contextLines+1, len(lines))

			matches = append(matches, types.SearchMatch{
				Line:    lineNum + 1,
				Context: strings.Join(lines[startLine:endLine], "\n"),
			})
		}

		if len(matches) > 0 {
			allResults = append(allResults, types.SearchResult{
				Path:    path,
				Matches: matches,
			})
		}
	}

	totalFiles := len(allResults)

	if offset >= len(allResults) {
		return []types.SearchResult{}, totalFiles, nil
	}

	endIdx := min(offset+limit, len(allResults))

	return allResults[offset:endIdx], totalFiles, nil
}

// pattern returns the compiled pattern for a query, reusing recent ones.
func (s *Service) pattern(query string, useRegex, caseSensitive bool) (*regexp.Regexp, error) {
	key := patternKey{query: query, useRegex: useRegex, caseSensitive: caseSensitive}
	if re, ok := s.patterns.Get(key); ok {
		return re, nil
	}

	re, err := compile(query, useRegex, caseSensitive)
	if err != nil {
		return nil, err
	}
	s.patterns.Add(key, re)
	return re, nil
}

func compile(query string, useRegex, caseSensitive bool) (*regexp.Regexp, error) {
	pattern := query
	if !useRegex {
		pattern = regexp.QuoteMeta(query)
	}
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		if useRegex {
			return nil, &SearchError{Message: "Invalid regex pattern: " + err.Error()}
		}
		return nil, &SearchError{Message: "Search error: " + err.Error()}
	}
	return re, nil
}

// SearchError represents a search error.
type SearchError struct {
	Message string
}

func (e *SearchError) Error() string {
	return e.Message
}
