// Package planner compiles high-level client operations (update a
// document, remove a document) into the partial order of primitive Acts a
// real client would perform, as a graph.Graph of Acts ready for the model
// checker to enumerate.
package planner

import (
	"fmt"
	"iter"

	"mc2/internal/actor"
	"mc2/internal/graph"
	"mc2/internal/path"
)

// OpKind identifies which store primitive an Act performs.
type OpKind int

const (
	OpGet OpKind = iota
	OpPut
	OpRm
	OpList
	OpLink
	OpUnlink
)

func (k OpKind) String() string {
	switch k {
	case OpGet:
		return "get"
	case OpPut:
		return "put"
	case OpRm:
		return "rm"
	case OpList:
		return "list"
	case OpLink:
		return "link"
	case OpUnlink:
		return "unlink"
	default:
		return "?"
	}
}

// Act is one primitive store operation belonging to one simulated client.
// Name carries the entry for Link/Unlink; Update carries the transform for
// Put. Both are the zero value for every other Kind.
type Act struct {
	ClientID string
	Path     path.Path
	Kind     OpKind
	Name     string
	Update   actor.UpdateFn
}

func (a *Act) String() string {
	switch a.Kind {
	case OpLink, OpUnlink:
		return fmt.Sprintf("Act[%s: %s('%s', '%s')]", a.ClientID, a.Kind, a.Path, a.Name)
	default:
		return fmt.Sprintf("Act[%s: %s('%s')]", a.ClientID, a.Kind, a.Path)
	}
}

// Planner accumulates the Acts of every registered Client into a single
// dependency graph.
type Planner struct {
	graph   *graph.Graph[*Act]
	clients map[string]bool
}

// New returns an empty Planner.
func New() *Planner {
	return &Planner{graph: graph.New[*Act](), clients: make(map[string]bool)}
}

// Reset discards every planned Act and registered client, letting the same
// Planner be reused to compile a fresh scenario.
func (p *Planner) Reset() {
	p.graph = graph.New[*Act]()
	p.clients = make(map[string]bool)
}

// Client returns a handle for planning the operations of the client named
// id, registering id if this is its first use.
func (p *Planner) Client(id string) *Client {
	p.clients[id] = true
	return &Client{id: id, planner: p}
}

// Clients returns every registered client id, sorted for determinism.
func (p *Planner) Clients() []string {
	ids := make([]string, 0, len(p.clients))
	for id := range p.clients {
		ids = append(ids, id)
	}
	sortStrings(ids)
	return ids
}

// Orderings returns every distinct legal interleaving of the planned Acts.
func (p *Planner) Orderings() iter.Seq[[]*Act] {
	return p.graph.Orderings()
}

// Describe exposes the planned graph's shape, for tests that assert on
// which Acts depend on which without caring about ordering.
func (p *Planner) Describe() []graph.NodeInfo[*Act] {
	return p.graph.Describe()
}

func sortStrings(ss []string) {
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && ss[j-1] > ss[j]; j-- {
			ss[j-1], ss[j] = ss[j], ss[j-1]
		}
	}
}

// Client plans the Acts of a single simulated client against the shared
// Planner graph.
type Client struct {
	id      string
	planner *Planner
}

func (c *Client) act(p path.Path, kind OpKind) *Act {
	return &Act{ClientID: c.id, Path: p, Kind: kind}
}

// doReads plans one List per ancestor directory of path plus one Get of
// path itself, all independent of one another, and returns their ids.
func (c *Client) doReads(p path.Path) []graph.Id {
	reads := make([]graph.Id, 0, len(p.Dirs())+1)
	for _, dir := range p.Dirs() {
		reads = append(reads, c.planner.graph.Add(nil, c.act(path.New(dir), OpList)))
	}
	reads = append(reads, c.planner.graph.Add(nil, c.act(p, OpGet)))
	return reads
}

// Update plans a document update: read the document and every ancestor
// directory listing, then link each name along the path into its parent
// directory (each link depending on every read), then Put the new content
// (depending on every link).
func (c *Client) Update(key string, update actor.UpdateFn) {
	p := path.New(key)
	reads := c.doReads(p)

	links := make([]graph.Id, 0, len(p.Links()))
	for _, link := range p.Links() {
		act := c.act(path.New(link.Dir), OpLink)
		act.Name = link.Name
		links = append(links, c.planner.graph.Add(reads, act))
	}

	put := c.act(p, OpPut)
	put.Update = update
	c.planner.graph.Add(links, put)
}

// Remove plans a document deletion: read the document and every ancestor
// directory listing, then Rm the document (depending on every read), then
// unlink its name from its parent, its parent's name from its
// grandparent, and so on up to the root — each unlink depending on the
// previous one, since a directory can only be considered for removal
// after its child link has been removed.
func (c *Client) Remove(key string) {
	p := path.New(key)
	reads := c.doReads(p)

	op := c.planner.graph.Add(reads, c.act(p, OpRm))

	links := p.Links()
	for i := len(links) - 1; i >= 0; i-- {
		link := links[i]
		act := c.act(path.New(link.Dir), OpUnlink)
		act.Name = link.Name
		op = c.planner.graph.Add([]graph.Id{op}, act)
	}
}
