package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/taigrr/annotate/internal/types"
)

// ErrNotText is returned for files whose content is not valid UTF-8.
var ErrNotText = errors.New("not valid UTF-8 text")

// ReadSourceFile reads a file and splits it into trimmed lines.
func ReadSourceFile(path string) (types.SourceFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, types.NewError(types.KindRead, path, fmt.Errorf("file not found: %w", err))
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, types.NewError(types.KindRead, path, fmt.Errorf("permission denied: %w", err))
		}
		return nil, types.NewError(types.KindRead, path, err)
	}

	if !utf8.Valid(content) {
		return nil, types.NewError(types.KindRead, path, ErrNotText)
	}

	return SplitLines(string(content)), nil
}

// SplitLines splits text on "\n", "\r\n" and lone "\r", stripping trailing
// whitespace from every line. A final terminator does not open a new line,
// so empty text yields an empty (non-nil) slice.
func SplitLines(content string) types.SourceFile {
	lines := types.SourceFile{}
	for len(content) > 0 {
		var line string
		i := strings.IndexAny(content, "\r\n")
		switch {
		case i == -1:
			line, content = content, ""
		case content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n':
			line, content = content[:i], content[i+2:]
		default:
			line, content = content[:i], content[i+1:]
		}
		lines = append(lines, strings.TrimRightFunc(line, isTrailingSpace))
	}
	return lines
}

// isTrailingSpace also treats the ASCII information separators as space,
// matching what most editors strip.
func isTrailingSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
