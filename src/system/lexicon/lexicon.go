// Package lexicon holds the vocabulary graph: a directed, typed,
// bidirectional multigraph of words discovered in a session. Nodes are
// identity-distinct even when their values collide, a value -> node-set
// index supports lookup by name.
package lexicon

import (
	"sort"
	"strings"

	"github.com/voodooEntity/vocabrain/src/system/relations"
)

// WordNode represents one occurrence of a discovered name or literal.
// Two nodes may carry the same value in unrelated contexts, identity is
// the stable integer index assigned by the graph.
type WordNode struct {
	id          int
	value       string
	connections map[WordEdge]struct{}
}

// WordEdge is the directed triple (first, second, relation), read as
// "first is relation of second". Edges are comparable, their set
// semantics are the triple itself.
type WordEdge struct {
	First    *WordNode
	Second   *WordNode
	Relation *relations.Relation
}

func newWordNode(id int, value string) *WordNode {
	return &WordNode{
		id:          id,
		value:       value,
		connections: make(map[WordEdge]struct{}),
	}
}

func (n *WordNode) ID() int {
	return n.id
}

func (n *WordNode) Value() string {
	return n.value
}

// Connections returns the node's outgoing edges ordered by target index.
func (n *WordNode) Connections() []WordEdge {
	edges := make([]WordEdge, 0, len(n.connections))
	for edge := range n.connections {
		edges = append(edges, edge)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Second.id != edges[j].Second.id {
			return edges[i].Second.id < edges[j].Second.id
		}
		return edges[i].Relation.Name() < edges[j].Relation.Name()
	})
	return edges
}

// addConnection inserts the typed edge towards peer and its inverse on
// the peer's own connection set, keeping traversal bidirectional.
func (n *WordNode) addConnection(peer *WordNode, relation *relations.Relation) {
	n.connections[WordEdge{First: n, Second: peer, Relation: relation}] = struct{}{}
	peer.connections[WordEdge{First: peer, Second: n, Relation: relation.Opposite()}] = struct{}{}
}

// detach removes every edge between n and peer, in both directions.
func (n *WordNode) detach(peer *WordNode) {
	for edge := range n.connections {
		if edge.Second == peer {
			delete(n.connections, edge)
		}
	}
	for edge := range peer.connections {
		if edge.Second == n {
			delete(peer.connections, edge)
		}
	}
}

func (n *WordNode) String() string {
	if len(n.connections) == 0 {
		return "Node(" + n.value + ")"
	}
	parts := make([]string, 0, len(n.connections))
	for _, edge := range n.Connections() {
		parts = append(parts, edge.Relation.Name()+" : Node("+edge.Second.value+")")
	}
	return "Node(" + n.value + ") -> [" + strings.Join(parts, ", ") + "]"
}

// VocabGraph owns every node reachable through AddNode. The index maps
// a value onto the set of nodes carrying it (true set semantics). The
// revision counter bumps on every mutation so an observer can poll for
// quiescence.
type VocabGraph struct {
	index    map[string]map[*WordNode]struct{}
	nextID   int
	revision uint64
}

func New(defaultWords ...string) *VocabGraph {
	graph := &VocabGraph{
		index: make(map[string]map[*WordNode]struct{}),
	}
	for _, word := range defaultWords {
		graph.AddNode(word, nil, nil)
	}
	return graph
}

// AddNode creates a new node for value, never deduplicating by value,
// wires it bidirectionally to context (unless context is nil) and
// indexes it. The new node is returned for use as a deeper context.
//
// A nil relation falls back to the self-opposite UNKNOWN. Such edges
// carry no orientation, so a cascade passing through the parent
// detaches them but cannot descend into them (it could not tell child
// from context). Children meant to be cascade-removable must be
// attached with an oriented relation.
func (g *VocabGraph) AddNode(value string, context *WordNode, relation *relations.Relation) *WordNode {
	node := newWordNode(g.nextID, value)
	g.nextID++

	if context != nil {
		if relation == nil {
			relation = relations.Unknown
		}
		node.addConnection(context, relation)
	}

	set, ok := g.index[value]
	if !ok {
		set = make(map[*WordNode]struct{})
		g.index[value] = set
	}
	set[node] = struct{}{}
	g.revision++

	return node
}

// RemoveNodeByValue detaches the edges from context to nodes carrying
// value, optionally filtered by relation (either orientation of the
// pair matches). A value never attached to context is a silent no-op,
// the caller cannot know in advance whether a name was ever recorded.
//
// With recursive set, a breadth-first cascade removes each reached node
// from the value index, detaches it from all neighbours and schedules
// its children (derived-orientation edges only, so the cascade never
// climbs back up; self-opposite edges are detached but not followed,
// see AddNode). A node already absent from the index short-circuits,
// which guarantees termination on arbitrarily cyclic graphs.
func (g *VocabGraph) RemoveNodeByValue(value string, context *WordNode, recursive bool, initial *relations.Relation) {
	if context == nil {
		return
	}

	var matched []*WordNode
	for edge := range context.connections {
		if edge.Second.value == value && relationMatches(edge.Relation, initial) {
			matched = append(matched, edge.Second)
		}
	}
	if len(matched) == 0 {
		return
	}

	for _, node := range matched {
		context.detach(node)
	}
	g.revision++

	if !recursive {
		return
	}
	g.cascade(matched)
}

// RemoveNode detaches one specific node from context, optionally
// cascading its subtree. Counterpart to RemoveNodeByValue for callers
// that hold the node itself, sequence element repair needs to drop a
// single node out of several carrying the same value.
func (g *VocabGraph) RemoveNode(node *WordNode, context *WordNode, recursive bool) {
	if node == nil || context == nil {
		return
	}
	context.detach(node)
	g.revision++
	if recursive {
		g.cascade([]*WordNode{node})
	}
}

func (g *VocabGraph) cascade(queue []*WordNode) {
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		set, ok := g.index[node.value]
		if !ok {
			continue
		}
		if _, present := set[node]; !present {
			// already processed, cycle guard
			continue
		}
		delete(set, node)
		if len(set) == 0 {
			delete(g.index, node.value)
		}

		for _, edge := range node.Connections() {
			if !edge.Relation.Primary() {
				queue = append(queue, edge.Second)
			}
			node.detach(edge.Second)
		}
	}
}

func relationMatches(edgeRelation *relations.Relation, filter *relations.Relation) bool {
	if filter == nil {
		return true
	}
	return edgeRelation == filter || edgeRelation == filter.Opposite()
}

// NodesByValue returns every node carrying value, ordered by index.
func (g *VocabGraph) NodesByValue(value string) []*WordNode {
	set, ok := g.index[value]
	if !ok {
		return nil
	}
	nodes := make([]*WordNode, 0, len(set))
	for node := range set {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].id < nodes[j].id })
	return nodes
}

// EdgesFrom returns node's edges towards nodes carrying value,
// optionally filtered by an exact relation.
func (g *VocabGraph) EdgesFrom(node *WordNode, value string, relation *relations.Relation) []WordEdge {
	if node == nil {
		return nil
	}
	var edges []WordEdge
	for _, edge := range node.Connections() {
		if edge.Second.value != value {
			continue
		}
		if relation != nil && edge.Relation != relation {
			continue
		}
		edges = append(edges, edge)
	}
	return edges
}

// Contains reports whether node is still present in the value index.
func (g *VocabGraph) Contains(node *WordNode) bool {
	if node == nil {
		return false
	}
	set, ok := g.index[node.value]
	if !ok {
		return false
	}
	_, present := set[node]
	return present
}

// Each visits every indexed node ordered by index.
func (g *VocabGraph) Each(fn func(*WordNode)) {
	nodes := make([]*WordNode, 0, g.Len())
	for _, set := range g.index {
		for node := range set {
			nodes = append(nodes, node)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].id < nodes[j].id })
	for _, node := range nodes {
		fn(node)
	}
}

func (g *VocabGraph) Len() int {
	count := 0
	for _, set := range g.index {
		count += len(set)
	}
	return count
}

// Revision returns the mutation counter.
func (g *VocabGraph) Revision() uint64 {
	return g.revision
}
