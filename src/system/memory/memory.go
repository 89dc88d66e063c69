// Package memory mirrors the vocabulary graph into a gits instance so
// the vocabulary becomes queryable alongside everything else a session
// stores there. The in-process graph stays the source of truth, the
// mirror is rebuilt on demand.
package memory

import (
	"github.com/voodooEntity/gits"
	"github.com/voodooEntity/gits/src/query"
	"github.com/voodooEntity/gits/src/storage"
	"github.com/voodooEntity/gits/src/transport"

	"github.com/voodooEntity/vocabrain/src/system/archivist"
	"github.com/voodooEntity/vocabrain/src/system/lexicon"
	"github.com/voodooEntity/vocabrain/src/system/relations"
	"github.com/voodooEntity/vocabrain/src/system/util"
)

const (
	TypeWord     = "Word"
	TypeRelation = "Relation"
)

// Memory owns the gits mirror of one vocabulary graph. Words map onto
// Word entities, edges onto intermediate Relation entities between the
// two words, stored in the primary orientation only.
type Memory struct {
	Gits  *gits.Gits
	graph *lexicon.VocabGraph
	demux *Demultiplexer
	log   *archivist.Archivist
	ident string

	lastSignature string
}

// Match is one resolved neighbour of a word in the mirror.
type Match struct {
	Word     string
	Relation string
	ID       int
}

func New(graph *lexicon.VocabGraph, logger *archivist.Archivist, ident string) *Memory {
	return &Memory{
		graph: graph,
		demux: NewDemultiplexer(),
		log:   logger,
		ident: ident,
	}
}

// Sync rebuilds the mirror from the current graph state. A fresh gits
// instance is created per sync and set as default, stale instances are
// left to the runtime. Returns false when the graph signature has not
// changed since the last sync.
func (m *Memory) Sync() bool {
	snapshot := m.Snapshot()
	signature := util.GenerateSignature(snapshot)
	if signature == m.lastSignature {
		m.log.Debug(archivist.DEBUG_LEVEL_TRACE, "syncing SYNC skipped, signature unchanged")
		return false
	}

	instanceName := "vocabrain_" + m.ident + "_" + util.RandomIdent(10)
	m.Gits = gits.NewInstance(instanceName)
	gits.SetDefault(instanceName)

	idMap := make(map[int]int)
	m.graph.Each(func(node *lexicon.WordNode) {
		mapped := m.Gits.MapData(transport.TransportEntity{
			ID:         storage.MAP_FORCE_CREATE,
			Type:       TypeWord,
			Value:      node.Value(),
			Context:    m.ident,
			Properties: map[string]string{"nid": util.Itoa(node.ID())},
		})
		idMap[node.ID()] = mapped.ID
	})

	edges := 0
	m.graph.Each(func(node *lexicon.WordNode) {
		for _, edge := range node.Connections() {
			if !edge.Relation.Primary() {
				continue
			}
			// self-opposite relations appear primary from both ends,
			// keep the lower index as the canonical direction
			if edge.Relation == edge.Relation.Opposite() && edge.Second.ID() < node.ID() {
				continue
			}
			m.mapEdge(idMap[node.ID()], idMap[edge.Second.ID()], edge.Relation.Name())
			edges++
		}
	})

	m.lastSignature = signature
	m.log.Info("Synced vocabulary into memory", m.graph.Len(), edges)
	return true
}

// mapEdge stores one edge as Word -> Relation -> Word.
func (m *Memory) mapEdge(fromID int, toID int, relationName string) {
	relationEntity := m.Gits.MapData(transport.TransportEntity{
		ID:         storage.MAP_FORCE_CREATE,
		Type:       TypeRelation,
		Value:      relationName,
		Context:    m.ident,
		Properties: map[string]string{},
	})

	m.Gits.Query().Execute(query.New().Link(TypeWord).Match("ID", "==", util.Itoa(fromID)).To(
		query.New().Find(TypeRelation).Match("ID", "==", util.Itoa(relationEntity.ID)),
	))
	m.Gits.Query().Execute(query.New().Link(TypeRelation).Match("ID", "==", util.Itoa(relationEntity.ID)).To(
		query.New().Find(TypeWord).Match("ID", "==", util.Itoa(toID)),
	))
}

// Snapshot renders the graph as a canonical transport tree, the basis
// of the sync signature.
func (m *Memory) Snapshot() transport.TransportEntity {
	root := transport.TransportEntity{
		Type:       "Vocabulary",
		Value:      m.ident,
		Context:    m.ident,
		Properties: map[string]string{},
	}
	m.graph.Each(func(node *lexicon.WordNode) {
		wordEntity := transport.TransportEntity{
			Type:       TypeWord,
			Value:      node.Value(),
			Context:    m.ident,
			Properties: map[string]string{"nid": util.Itoa(node.ID())},
		}
		for _, edge := range node.Connections() {
			if !edge.Relation.Primary() {
				continue
			}
			wordEntity.ChildRelations = append(wordEntity.ChildRelations, transport.TransportRelation{
				Target: transport.TransportEntity{
					Type:       TypeRelation,
					Value:      edge.Relation.Name(),
					Context:    m.ident,
					Properties: map[string]string{"to": util.Itoa(edge.Second.ID())},
				},
			})
		}
		root.ChildRelations = append(root.ChildRelations, transport.TransportRelation{Target: wordEntity})
	})
	return root
}

// Words returns every mirrored word entity carrying value.
func (m *Memory) Words(value string) []transport.TransportEntity {
	if m.Gits == nil {
		return nil
	}
	result := m.Gits.Query().Execute(query.New().Read(TypeWord).Match("Value", "==", value))
	return result.Entities
}

// Related resolves the neighbours of value in the mirror. A primary
// relation walks down the stored direction, a derived relation flips
// the query so only child traversal is needed. A nil relation returns
// every downward neighbour regardless of kind.
func (m *Memory) Related(value string, relation *relations.Relation) []Match {
	if m.Gits == nil {
		return nil
	}
	if relation == nil || relation.Primary() {
		return m.relatedDown(value, relation)
	}
	return m.relatedUp(value, relation)
}

func (m *Memory) relatedDown(value string, relation *relations.Relation) []Match {
	inner := query.New().Read(TypeRelation)
	if relation != nil {
		inner = inner.Match("Value", "==", relation.Name())
	}
	qry := query.New().Read(TypeWord).Match("Value", "==", value).To(
		inner.To(query.New().Read(TypeWord)),
	)
	result := m.Gits.Query().Execute(qry)

	var matches []Match
	for _, entity := range result.Entities {
		for _, flat := range m.demux.Parse(entity) {
			if len(flat.ChildRelations) == 0 {
				continue
			}
			relationEntity := flat.ChildRelations[0].Target
			if len(relationEntity.ChildRelations) == 0 {
				continue
			}
			target := relationEntity.ChildRelations[0].Target
			matches = append(matches, Match{
				Word:     target.Value,
				Relation: relationEntity.Value,
				ID:       target.ID,
			})
		}
	}
	return matches
}

func (m *Memory) relatedUp(value string, relation *relations.Relation) []Match {
	primary := relation.Opposite()
	qry := query.New().Read(TypeWord).To(
		query.New().Read(TypeRelation).Match("Value", "==", primary.Name()).To(
			query.New().Read(TypeWord).Match("Value", "==", value),
		),
	)
	result := m.Gits.Query().Execute(qry)

	var matches []Match
	for _, entity := range result.Entities {
		for _, flat := range m.demux.Parse(entity) {
			if len(flat.ChildRelations) == 0 {
				continue
			}
			// report in the orientation the caller asked for
			matches = append(matches, Match{
				Word:     flat.Value,
				Relation: relation.Name(),
				ID:       flat.ID,
			})
		}
	}
	return matches
}

// Stats returns the mirrored word and relation entity counts.
func (m *Memory) Stats() (int, int) {
	if m.Gits == nil {
		return 0, 0
	}
	words := m.Gits.Query().Execute(query.New().Read(TypeWord))
	rels := m.Gits.Query().Execute(query.New().Read(TypeRelation))
	return words.Amount, rels.Amount
}
