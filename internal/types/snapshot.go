// Package types defines all data structures shared across the annotate server.
package types

type (
	// SourceFile is the ordered list of lines of one source file, with
	// trailing whitespace removed from every line.
	SourceFile []string

	// Snapshot maps a root-relative, slash-separated path to its lines.
	Snapshot map[string]SourceFile

	// SkippedFile records a file that matched the extension filter but could
	// not be read into the snapshot.
	SkippedFile struct {
		Path   string `json:"path"`
		Reason string `json:"reason"`
	}

	// BuildResult is the outcome of one snapshot build.
	BuildResult struct {
		Snapshot Snapshot      `json:"snapshot"`
		Skipped  []SkippedFile `json:"skipped,omitempty"`
	}
)

// SkippedPaths returns the paths of the skipped files, in order.
func (r BuildResult) SkippedPaths() []string {
	paths := make([]string, 0, len(r.Skipped))
	for _, s := range r.Skipped {
		paths = append(paths, s.Path)
	}
	return paths
}
