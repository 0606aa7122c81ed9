package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/taigrr/annotate/internal/types"
	"github.com/zeebo/xxh3"
)

// Encode serializes a snapshot as compact JSON with keys in sorted order and
// without HTML escaping, so an unchanged tree always encodes to the same
// bytes.
func Encode(s types.Snapshot) ([]byte, error) {
	if s == nil {
		s = types.Snapshot{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Fingerprint returns a quoted entity tag for encoded snapshot bytes.
func Fingerprint(data []byte) string {
	return fmt.Sprintf(`"%016x"`, xxh3.Hash(data))
}
