package memory

import (
	"github.com/voodooEntity/gits/src/transport"

	"github.com/voodooEntity/vocabrain/src/system/util"
)

// Demultiplexer flattens nested query results. A word entity returned
// with several relation children is split into one entity per child
// path, so callers can treat every result as a single word -> relation
// -> word chain.
type Demultiplexer struct {
}

func NewDemultiplexer() *Demultiplexer {
	return &Demultiplexer{}
}

func (d *Demultiplexer) Parse(entity transport.TransportEntity) []transport.TransportEntity {
	var ret []transport.TransportEntity
	typeLookup := make(map[string]int)
	var typePointer [][]*transport.TransportEntity
	if 0 < len(entity.ChildRelations) {
		// collect children pointers grouped by type string
		for key := range entity.ChildRelations {
			if val, ok := typeLookup[entity.ChildRelations[key].Target.Type]; ok {
				typePointer[val] = append(typePointer[val], &(entity.ChildRelations[key].Target))
			} else {
				typePointer = append(typePointer, []*transport.TransportEntity{&(entity.ChildRelations[key].Target)})
				typeLookup[entity.ChildRelations[key].Target.Type] = len(typePointer) - 1
			}
		}

		// demultiplex every child on its own before recombining
		demultiplexedTypePointer := make([][]*transport.TransportEntity, len(typePointer))
		for typeId, typePointerList := range typePointer {
			for _, singlePointer := range typePointerList {
				demultiplexedTypePointer[typeId] = append(demultiplexedTypePointer[typeId], d.generateEntityPointerList(d.Parse(*singlePointer))...)
			}
		}

		// build every recombination in which each child type occurs once
		recombinations := d.generateRecombinations(demultiplexedTypePointer)

		for _, recombinationSet := range recombinations {
			var tmpChildren []transport.TransportRelation
			for key := range recombinationSet {
				// deep copy so combinations stay independent of each other
				copied := d.deepCopyEntity(*recombinationSet[key])
				tmpChildren = append(tmpChildren, transport.TransportRelation{
					Target: copied,
				})
			}
			ret = append(ret, transport.TransportEntity{
				Type:           entity.Type,
				ID:             entity.ID,
				Value:          entity.Value,
				Context:        entity.Context,
				Properties:     util.CopyStringStringMap(entity.Properties),
				ChildRelations: tmpChildren,
			})
		}
	} else {
		ret = append(ret, d.deepCopyEntity(entity))
	}
	return ret
}

func (d *Demultiplexer) generateEntityPointerList(data []transport.TransportEntity) []*transport.TransportEntity {
	var ret []*transport.TransportEntity
	for k := range data {
		ret = append(ret, &(data[k]))
	}
	return ret
}

func (d *Demultiplexer) generateRecombinations(data [][]*transport.TransportEntity) [][]*transport.TransportEntity {
	if len(data) == 0 {
		return [][]*transport.TransportEntity{}
	}

	var result [][]*transport.TransportEntity
	firstRow := data[0]
	remainingRows := d.generateRecombinations(data[1:])

	if len(remainingRows) == 0 {
		for _, val := range firstRow {
			result = append(result, []*transport.TransportEntity{val})
		}
		return result
	}

	for _, val := range firstRow {
		for _, comb := range remainingRows {
			result = append(result, append([]*transport.TransportEntity{val}, comb...))
		}
	}

	return result
}

// deepCopyEntity copies an entity including properties and both
// relation directions.
func (d *Demultiplexer) deepCopyEntity(src transport.TransportEntity) transport.TransportEntity {
	dst := transport.TransportEntity{
		Type:       src.Type,
		ID:         src.ID,
		Value:      src.Value,
		Context:    src.Context,
		Properties: util.CopyStringStringMap(src.Properties),
	}
	if len(src.ChildRelations) > 0 {
		dst.ChildRelations = make([]transport.TransportRelation, 0, len(src.ChildRelations))
		for _, cr := range src.ChildRelations {
			var relProps map[string]string
			if cr.Properties != nil {
				relProps = util.CopyStringStringMap(cr.Properties)
			}
			dst.ChildRelations = append(dst.ChildRelations, transport.TransportRelation{
				Context:    cr.Context,
				Properties: relProps,
				Target:     d.deepCopyEntity(cr.Target),
			})
		}
	}
	if len(src.ParentRelations) > 0 {
		dst.ParentRelations = make([]transport.TransportRelation, 0, len(src.ParentRelations))
		for _, pr := range src.ParentRelations {
			var relProps map[string]string
			if pr.Properties != nil {
				relProps = util.CopyStringStringMap(pr.Properties)
			}
			dst.ParentRelations = append(dst.ParentRelations, transport.TransportRelation{
				Context:    pr.Context,
				Properties: relProps,
				Target:     d.deepCopyEntity(pr.Target),
			})
		}
	}
	return dst
}
