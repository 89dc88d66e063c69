package lexicon

import (
	"testing"

	"github.com/voodooEntity/vocabrain/src/system/relations"
)

// Every edge added through AddNode must have its inverse present on the
// peer's own connection set.
func TestBidirectionality(t *testing.T) {
	graph := New()
	root := graph.AddNode("model", nil, nil)
	child := graph.AddNode("scheduler", root, relations.IsAttrOf)

	forward := graph.EdgesFrom(child, "model", relations.IsAttrOf)
	if len(forward) != 1 {
		t.Fatalf("expected 1 forward edge, got %d", len(forward))
	}
	inverse := graph.EdgesFrom(root, "scheduler", relations.HasAttr)
	if len(inverse) != 1 {
		t.Fatalf("expected 1 inverse edge, got %d", len(inverse))
	}
	if inverse[0].Relation != forward[0].Relation.Opposite() {
		t.Fatal("inverse edge must carry the opposite relation")
	}
}

func TestAddNodeNeverDeduplicatesByValue(t *testing.T) {
	graph := New()
	root := graph.AddNode("model", nil, nil)
	first := graph.AddNode("name", root, relations.IsAttrOf)
	second := graph.AddNode("name", root, relations.IsAttrOf)

	if first == second {
		t.Fatal("nodes must stay identity distinct")
	}
	if first.ID() == second.ID() {
		t.Fatal("node indices must be unique")
	}
	if len(graph.NodesByValue("name")) != 2 {
		t.Fatalf("expected 2 indexed nodes for value, got %d", len(graph.NodesByValue("name")))
	}
}

func TestDefaultWordsAreSeeded(t *testing.T) {
	graph := New("epoch", "loss")
	if len(graph.NodesByValue("epoch")) != 1 || len(graph.NodesByValue("loss")) != 1 {
		t.Fatal("default words must be indexed as free nodes")
	}
}

// Removing a value never attached to the context must not touch the graph.
func TestRemoveSilentMiss(t *testing.T) {
	graph := New()
	root := graph.AddNode("model", nil, nil)
	graph.AddNode("layers", root, relations.IsAttrOf)
	before := graph.Len()

	graph.RemoveNodeByValue("never_recorded", root, true, nil)

	if graph.Len() != before {
		t.Fatal("silent miss must leave the graph unchanged")
	}
	if len(graph.EdgesFrom(root, "layers", nil)) != 1 {
		t.Fatal("silent miss must leave existing edges intact")
	}
}

func TestRemoveRespectsRelationFilter(t *testing.T) {
	graph := New()
	root := graph.AddNode("model", nil, nil)
	graph.AddNode("fit", root, relations.IsMethodOf)

	// filter names a different relation, nothing may be removed
	graph.RemoveNodeByValue("fit", root, true, relations.IsAttrOf)
	if len(graph.NodesByValue("fit")) != 1 {
		t.Fatal("mismatching relation filter must not remove the node")
	}

	// the caller passes the primary orientation while the context holds
	// the derived one, both must match
	graph.RemoveNodeByValue("fit", root, true, relations.IsMethodOf)
	if len(graph.NodesByValue("fit")) != 0 {
		t.Fatal("matching relation filter must remove the node")
	}
}

// Cascade removal over a cyclic subtree must terminate and remove
// exactly the reachable subtree.
func TestCascadeTerminatesOnCycles(t *testing.T) {
	graph := New()
	root := graph.AddNode("model", nil, nil)
	optimizer := graph.AddNode("optimizer", root, relations.IsAttrOf)
	schedule := graph.AddNode("schedule", optimizer, relations.IsAttrOf)
	// close a cycle below the removal point
	graph.AddNode("optimizer", schedule, relations.IsAttrOf)
	// unrelated sibling branch
	graph.AddNode("layers", root, relations.IsAttrOf)

	graph.RemoveNodeByValue("optimizer", root, true, nil)

	if len(graph.NodesByValue("schedule")) != 0 {
		t.Fatal("cascade must remove the nested subtree")
	}
	if len(graph.NodesByValue("optimizer")) != 0 {
		t.Fatal("cascade must remove cyclic duplicates of the removed value")
	}
	if len(graph.NodesByValue("layers")) != 1 {
		t.Fatal("cascade must leave unrelated nodes untouched")
	}
	if !graph.Contains(root) {
		t.Fatal("cascade must never climb up to the context")
	}
	if len(graph.EdgesFrom(root, "optimizer", nil)) != 0 {
		t.Fatal("edges from the context must be detached")
	}
}

// UNKNOWN edges carry no orientation, the cascade detaches them but
// must not follow them in either direction.
func TestCascadeDoesNotFollowUnknownEdges(t *testing.T) {
	graph := New()
	root := graph.AddNode("model", nil, nil)
	history := graph.AddNode("history", root, relations.IsAttrOf)
	free := graph.AddNode("annotation", history, nil)

	graph.RemoveNodeByValue("history", root, true, nil)

	if len(graph.NodesByValue("history")) != 0 {
		t.Fatal("the matched node must be removed")
	}
	// the untyped child survives as a free node, fully detached
	if !graph.Contains(free) {
		t.Fatal("untyped children must stay indexed")
	}
	if len(free.Connections()) != 0 {
		t.Fatal("untyped children must be detached from the removed node")
	}
	if !graph.Contains(root) {
		t.Fatal("the cascade must never reach the context")
	}
}

func TestNonRecursiveRemoveOnlyDetachesEdges(t *testing.T) {
	graph := New()
	root := graph.AddNode("model", nil, nil)
	history := graph.AddNode("history", root, relations.IsAttrOf)
	graph.AddNode("epochs", history, relations.IsAttrOf)

	graph.RemoveNodeByValue("history", root, false, nil)

	if len(graph.EdgesFrom(root, "history", nil)) != 0 {
		t.Fatal("edges from the context must be gone")
	}
	// without the cascade the subtree stays indexed
	if len(graph.NodesByValue("epochs")) != 1 {
		t.Fatal("non recursive removal must not cascade")
	}
}

func TestEdgesFromFilters(t *testing.T) {
	graph := New()
	root := graph.AddNode("model", nil, nil)
	graph.AddNode("name", root, relations.IsAttrOf)
	graph.AddNode("compile", root, relations.IsMethodOf)

	if len(graph.EdgesFrom(root, "name", relations.HasAttr)) != 1 {
		t.Fatal("expected the derived attribute edge")
	}
	if len(graph.EdgesFrom(root, "name", relations.HasMethod)) != 0 {
		t.Fatal("relation filter must exclude other kinds")
	}
	if len(graph.EdgesFrom(root, "compile", nil)) != 1 {
		t.Fatal("nil filter must match any relation")
	}
}

func TestRevisionBumpsOnMutation(t *testing.T) {
	graph := New()
	before := graph.Revision()
	root := graph.AddNode("model", nil, nil)
	if graph.Revision() == before {
		t.Fatal("AddNode must bump the revision")
	}
	graph.AddNode("layers", root, relations.IsAttrOf)
	mid := graph.Revision()
	graph.RemoveNodeByValue("layers", root, true, nil)
	if graph.Revision() == mid {
		t.Fatal("removal must bump the revision")
	}
	after := graph.Revision()
	graph.RemoveNodeByValue("layers", root, true, nil)
	if graph.Revision() != after {
		t.Fatal("a silent miss must not bump the revision")
	}
}

func TestEachVisitsInIndexOrder(t *testing.T) {
	graph := New()
	graph.AddNode("a", nil, nil)
	graph.AddNode("b", nil, nil)
	graph.AddNode("c", nil, nil)

	var seen []string
	graph.Each(func(node *WordNode) {
		seen = append(seen, node.Value())
	})
	if len(seen) != 3 || seen[0] != "a" || seen[1] != "b" || seen[2] != "c" {
		t.Fatalf("unexpected visit order: %v", seen)
	}
}
