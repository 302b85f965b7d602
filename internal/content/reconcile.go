// Package content discovers post files and pairs each gemtext body with its
// YAML sidecar.
package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Pair is a gemtext body and its metadata sidecar. Both share the same
// parent directory and stem.
type Pair struct {
	Body     string
	Metadata string
}

// Slug returns the shared stem of the pair.
func (p Pair) Slug() string {
	return Stem(p.Body)
}

// WarnFunc receives human-readable text for non-fatal discovery problems.
type WarnFunc func(msg string)

// Reconcile scans the direct entries of dir and returns one Pair for each
// stem that has both a body and a metadata file.
//
// Files with an unrecognized extension, subdirectories, and files missing
// their counterpart are reported through warn and skipped. Pairs are returned
// sorted by body path so later stages see a stable discovery order.
func Reconcile(dir string, warn WarnFunc) ([]Pair, error) {
	if warn == nil {
		warn = func(string) {}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadDir, dir, err)
	}

	found := map[Kind]map[string]struct{}{
		KindBody:     {},
		KindMetadata: {},
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		// Info forces a stat for entries whose type is unknown; surface
		// failures instead of guessing.
		if _, err := entry.Info(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrReadDir, path, err)
		}

		kind, ok := KindForPath(path)
		if !ok || entry.IsDir() {
			warn(fmt.Sprintf("This is not a .%s or .%s file: %s", KindBody.Ext(), KindMetadata.Ext(), path))
			continue
		}
		found[kind][path] = struct{}{}
	}

	pairs := make([]Pair, 0, len(found[KindBody]))
	for _, kind := range []Kind{KindMetadata, KindBody} {
		for _, path := range sortedKeys(found[kind]) {
			counterpart, _ := CounterpartPath(path)
			if _, ok := found[kind.Counterpart()][counterpart]; !ok {
				warn(fmt.Sprintf("This %s file does not have an accompanying %s file: %s", kind, kind.Counterpart(), path))
				continue
			}
			if kind == KindBody {
				pairs = append(pairs, Pair{Body: path, Metadata: counterpart})
			}
		}
	}

	return pairs, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
