package layout

import (
	"fmt"

	"github.com/badu/synergy"
)

type clientSpec struct {
	name string
	pos  Position
}

// Builder accumulates client screens before producing an immutable
// Layout. Invalid combinations are reported by Build, not by panicking
// from AddClient.
type Builder struct {
	serverSize synergy.Size
	clients    []clientSpec
}

// NewBuilder starts a Builder for a server screen of the given dimensions.
func NewBuilder(serverWidth, serverHeight int) *Builder {
	return &Builder{serverSize: synergy.NewSize(serverWidth, serverHeight)}
}

// AddClient registers a client screen name at one of the four cardinal
// positions. Geometry for the client itself is not supplied here: it is
// learned at runtime from the client's own Info message, via
// Layout.SetScreenGeometry.
func (b *Builder) AddClient(name string, pos Position) *Builder {
	b.clients = append(b.clients, clientSpec{name: name, pos: pos})
	return b
}

// Build validates the accumulated clients and returns an immutable Layout,
// or the first LayoutError encountered.
func (b *Builder) Build() (*Layout, error) {
	byName := make(map[string]*screen, len(b.clients))
	byEdge := make(map[Position]*screen, 4)

	for _, c := range b.clients {
		if len(c.name) == 0 || len(c.name) > 255 {
			return nil, &Error{Kind: ErrUnknownClient, Detail: fmt.Sprintf("client name %q is empty or exceeds 255 bytes", c.name)}
		}
		if _, dup := byName[c.name]; dup {
			return nil, &Error{Kind: ErrDuplicateName, Detail: fmt.Sprintf("client %q added more than once", c.name)}
		}
		if c.pos != Left && c.pos != Right && c.pos != Top && c.pos != Bottom {
			return nil, &Error{Kind: ErrEdgeOverlap, Detail: fmt.Sprintf("client %q has an unsupported position %v (only the four cardinal edges are supported)", c.name, c.pos)}
		}
		if existing, taken := byEdge[c.pos]; taken {
			return nil, &Error{Kind: ErrEdgeOverlap, Detail: fmt.Sprintf("clients %q and %q both claim edge %v", existing.name, c.name, c.pos)}
		}

		s := &screen{name: c.name, pos: c.pos}
		byName[c.name] = s
		byEdge[c.pos] = s
	}

	// Cycle check: in this star topology every client's only neighbour is
	// the server, so a cycle can only arise from a client masquerading as
	// the server's own name. Guard against that one degenerate case
	// rather than building a general graph walk for a topology that is a
	// tree by construction.
	for name := range byName {
		if name == serverPseudoName {
			return nil, &Error{Kind: ErrCycle, Detail: "a client cannot share the server's reserved name"}
		}
	}

	return &Layout{
		server: screen{name: serverPseudoName, size: b.serverSize},
		byEdge: byEdge,
		byName: byName,
	}, nil
}

// serverPseudoName is never used as a lookup key (the server is always
// addressed by "", see Layout.active) - it exists only so Build can guard
// against a client claiming it.
const serverPseudoName = "\x00server"
