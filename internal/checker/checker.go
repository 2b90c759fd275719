// Package checker validates that a store.Store is internally consistent:
// every present document is reachable from the root through a chain of
// directory listings that actually name it.
package checker

import (
	"fmt"
	"strings"

	"mc2/internal/path"
	"mc2/internal/store"
)

// ConsistencyError collects every consistency violation found in a single
// pass over a Store. A Store can be simultaneously missing more than one
// link, so all violations are reported together rather than stopping at
// the first.
type ConsistencyError struct {
	Errors []string
}

func (e *ConsistencyError) Error() string {
	return strings.Join(e.Errors, "; ")
}

// Check walks every present document key in s and verifies that each of
// its ancestor directories is present, is a Dir (not a Doc), and lists the
// next name on the path down to the document. It returns nil if the store is consistent, or a
// *ConsistencyError naming every violation otherwise.
func Check(s *store.Store) error {
	var errs []string

	for _, key := range s.Keys() {
		p := path.New(key)
		if !p.IsDoc() {
			continue
		}
		if _, ok := s.Read(key); !ok {
			continue
		}
		errs = append(errs, checkDoc(s, p)...)
	}

	if len(errs) == 0 {
		return nil
	}
	return &ConsistencyError{Errors: errs}
}

func checkDoc(s *store.Store, doc path.Path) []string {
	var errs []string

	for _, link := range doc.Links() {
		v, ok := s.Read(link.Dir)
		if !ok {
			errs = append(errs, fmt.Sprintf(
				"dir '%s', required by doc '%s', is missing", link.Dir, doc))
			continue
		}
		dir, ok := v.(store.Dir)
		if !ok {
			errs = append(errs, fmt.Sprintf(
				"dir '%s', required by doc '%s', is missing", link.Dir, doc))
			continue
		}
		if _, has := dir.Entries[link.Name]; !has {
			errs = append(errs, fmt.Sprintf(
				"dir '%s' does not include name '%s', required by doc '%s'",
				link.Dir, link.Name, doc))
		}
	}

	return errs
}
