// Package path decomposes a hierarchical store key into the chain of
// directory links it requires.
//
// A key is a string beginning with "/". A trailing "/" marks a directory;
// its absence marks a document. "/a/b/x.json" requires three links to exist
// before the document is reachable from the root: "/" -> "a/", "/a/" ->
// "b/", "/a/b/" -> "x.json".
package path

import "strings"

const sep = "/"

// Link is one edge in the chain from a directory to a child name.
// Name carries a trailing "/" when the child is itself a directory.
type Link struct {
	Dir  string
	Name string
}

// Path is a parsed view over a key. It is an immutable value type; the zero
// value is not meaningful, use New.
type Path struct {
	original string
	links    []Link
}

// New parses key into a Path. key is expected to start with "/"; callers
// that need to validate untrusted input should check that before calling New.
func New(key string) Path {
	return Path{original: key, links: parseLinks(key)}
}

// parseLinks mirrors splitting the key on "/" and re-attaching the
// separator to every part but the last, then pairing each part with the
// joined prefix of all the parts before it.
func parseLinks(key string) []Link {
	parts := strings.Split(key, sep)
	n := len(parts)
	for i := 0; i < n-1; i++ {
		parts[i] += sep
	}
	if n > 0 && parts[n-1] == "" {
		parts = parts[:n-1]
	}

	links := make([]Link, 0, len(parts)-1)
	prefix := ""
	for i, part := range parts {
		if i == 0 {
			prefix = part
			continue
		}
		links = append(links, Link{Dir: prefix, Name: part})
		prefix += part
	}
	return links
}

// String returns the original key exactly as passed to New.
func (p Path) String() string {
	return p.original
}

// IsValid reports whether the key is rooted (begins with "/"). Callers that
// accept untrusted keys should check this before relying on Dirs/Links.
func (p Path) IsValid() bool {
	return strings.HasPrefix(p.original, sep)
}

// IsDir reports whether the key denotes a directory (trailing "/").
func (p Path) IsDir() bool {
	return strings.HasSuffix(p.original, sep)
}

// IsDoc reports whether the key denotes a document.
func (p Path) IsDoc() bool {
	return !p.IsDir()
}

// Dirs returns the ordered sequence of ancestor directories, root first,
// excluding the key itself.
func (p Path) Dirs() []string {
	dirs := make([]string, len(p.links))
	for i, l := range p.links {
		dirs[i] = l.Dir
	}
	return dirs
}

// Links returns the ordered sequence of (parent dir, child name) edges from
// the root down to and including the key.
func (p Path) Links() []Link {
	out := make([]Link, len(p.links))
	copy(out, p.links)
	return out
}
