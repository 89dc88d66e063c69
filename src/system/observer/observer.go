// Package observer watches a vocabulary session for quiescence. The
// graph bumps a revision on every mutation, once the revision stops
// moving for long enough the observer syncs the memory mirror a final
// time and hands it to the callback.
package observer

import (
	"time"

	"github.com/voodooEntity/gits"

	"github.com/voodooEntity/vocabrain/src/system/archivist"
	"github.com/voodooEntity/vocabrain/src/system/lexicon"
	"github.com/voodooEntity/vocabrain/src/system/memory"
)

type Observer struct {
	InactiveIncrement int
	graph             *lexicon.VocabGraph
	memory            *memory.Memory
	callback          func(memoryInstance *memory.Memory)
	lastRevision      uint64
	log               *archivist.Archivist
	tickFunction      *func(gits *gits.Gits, logger *archivist.Archivist)
	tickRate          int
}

func New(graph *lexicon.VocabGraph, memoryInstance *memory.Memory, cb func(memoryInstance *memory.Memory), logger *archivist.Archivist) *Observer {
	logger.Info("Creating observer")
	return &Observer{
		InactiveIncrement: 0,
		graph:             graph,
		memory:            memoryInstance,
		callback:          cb,
		lastRevision:      graph.Revision(),
		log:               logger,
		tickRate:          25,
		tickFunction:      nil,
	}
}

func (o *Observer) RegisterTickFunction(tickFn *func(gits *gits.Gits, logger *archivist.Archivist)) {
	o.tickFunction = tickFn
}

func (o *Observer) SetTickRate(tickRate int) {
	o.tickRate = tickRate
}

func (o *Observer) tick() {
	(*o.tickFunction)(o.memory.Gits, o.log)
}

// Loop blocks until the vocabulary has settled, then executes the
// endgame. An optional tick function runs every tickRate iterations.
func (o *Observer) Loop() {
	i := 0
	for !o.ReachedEndgame() {
		i++
		o.log.Debug(archivist.DEBUG_LEVEL_MAX, "Observer looping:")
		if nil != o.tickFunction && i == o.tickRate {
			o.tick()
			i = 0
		}

		time.Sleep(100 * time.Millisecond)
	}
	o.Endgame()
	o.log.Info("Vocabulary settled, observer exiting")
}

// ReachedEndgame reports whether the graph revision has stayed
// unchanged for more than five consecutive checks. Any mutation in
// between resets the counter.
func (o *Observer) ReachedEndgame() bool {
	revision := o.graph.Revision()
	o.log.Debug(archivist.DEBUG_LEVEL_MAX, "Observer: graph revision", revision)
	if revision != o.lastRevision {
		o.lastRevision = revision
		o.InactiveIncrement = 0
		return false
	}
	if o.InactiveIncrement > 5 {
		return true
	}
	o.InactiveIncrement++
	return false
}

// Endgame syncs the mirror one last time and runs the callback with the
// memory instance provided.
func (o *Observer) Endgame() {
	o.log.Info("executing endgame")
	o.memory.Sync()
	o.callback(o.memory)
}
