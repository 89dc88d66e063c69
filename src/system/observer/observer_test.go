package observer

import (
	"testing"

	"github.com/voodooEntity/vocabrain/src/system/archivist"
	"github.com/voodooEntity/vocabrain/src/system/lexicon"
	"github.com/voodooEntity/vocabrain/src/system/memory"
	"github.com/voodooEntity/vocabrain/src/system/relations"
)

func newTestObserver(cb func(*memory.Memory)) (*Observer, *lexicon.VocabGraph) {
	graph := lexicon.New()
	logger := archivist.New(&archivist.Config{LogLevel: archivist.LEVEL_FATAL})
	mem := memory.New(graph, logger, "observer")
	return New(graph, mem, cb, logger), graph
}

func TestReachedEndgameRequiresQuiescence(t *testing.T) {
	o, graph := newTestObserver(func(mi *memory.Memory) {})

	for i := 0; i < 4; i++ {
		if o.ReachedEndgame() {
			t.Fatal("endgame must not trigger before the inactivity threshold")
		}
	}
	// a mutation resets the inactivity counter
	graph.AddNode("model", nil, nil)
	if o.ReachedEndgame() {
		t.Fatal("a fresh mutation must reset the countdown")
	}
	if o.InactiveIncrement != 0 {
		t.Fatalf("expected reset counter, got %d", o.InactiveIncrement)
	}

	settled := false
	for i := 0; i < 10; i++ {
		if o.ReachedEndgame() {
			settled = true
			break
		}
	}
	if !settled {
		t.Fatal("an unchanged graph must eventually reach the endgame")
	}
}

func TestEndgameSyncsAndRunsCallback(t *testing.T) {
	ran := false
	o, graph := newTestObserver(func(mi *memory.Memory) {
		ran = true
		if len(mi.Words("model")) != 1 {
			t.Fatal("the callback must see the synced mirror")
		}
	})
	root := graph.AddNode("model", nil, nil)
	graph.AddNode("Name", root, relations.IsAttrOf)

	o.Endgame()
	if !ran {
		t.Fatal("endgame must execute the callback")
	}
}
