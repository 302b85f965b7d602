package content

import (
	"path/filepath"
	"strings"
)

// Kind is one of the two recognized file kinds in a posts directory.
type Kind int

const (
	// KindBody is a gemtext post body.
	KindBody Kind = iota + 1
	// KindMetadata is the YAML sidecar describing a post.
	KindMetadata
)

// Ext returns the extension for the kind, without the leading dot.
func (k Kind) Ext() string {
	switch k {
	case KindBody:
		return "gmi"
	case KindMetadata:
		return "yaml"
	default:
		return ""
	}
}

// Counterpart returns the kind that pairs with k.
func (k Kind) Counterpart() Kind {
	switch k {
	case KindBody:
		return KindMetadata
	case KindMetadata:
		return KindBody
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case KindBody:
		return "gemtext"
	case KindMetadata:
		return "YAML metadata"
	default:
		return "unknown"
	}
}

// KindForPath classifies a path by its extension. ok is false for
// unrecognized or missing extensions.
func KindForPath(path string) (kind Kind, ok bool) {
	switch strings.TrimPrefix(filepath.Ext(path), ".") {
	case KindBody.Ext():
		return KindBody, true
	case KindMetadata.Ext():
		return KindMetadata, true
	default:
		return 0, false
	}
}

// CounterpartPath returns the path of the file that would pair with path,
// in the same directory with the same stem.
func CounterpartPath(path string) (string, bool) {
	kind, ok := KindForPath(path)
	if !ok {
		return "", false
	}
	return WithKind(path, kind.Counterpart()), true
}

// WithKind replaces the extension of path with the one for kind.
func WithKind(path string, kind Kind) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + kind.Ext()
}

// Stem returns the file name without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
