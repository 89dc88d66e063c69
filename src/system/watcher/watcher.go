// Package watcher keeps the vocabulary graph consistent with live
// objects after extraction. Hosts are wrapped in explicit proxies, all
// later mutations go through the proxy which writes the host and
// repairs the graph in the same step.
package watcher

import (
	"errors"
	"reflect"
	"sync"

	"github.com/voodooEntity/vocabrain/src/system/archivist"
	"github.com/voodooEntity/vocabrain/src/system/inspector"
	"github.com/voodooEntity/vocabrain/src/system/lexicon"
	"github.com/voodooEntity/vocabrain/src/system/relations"
)

var (
	ErrUnknownMember = errors.New("watcher: no such member on host")
	ErrNotAssignable = errors.New("watcher: value not assignable to member")
	ErrNotASequence  = errors.New("watcher: member is not a sequence")
	ErrOutOfRange    = errors.New("watcher: sequence index out of range")
)

const itemSuffix = "_Item"

type hostKind int

const (
	hostStruct hostKind = iota
	hostMap
)

// Watcher owns the proxy registry. Installing the same host twice
// returns the existing proxy, identity is the host pointer.
type Watcher struct {
	graph   *lexicon.VocabGraph
	log     *archivist.Archivist
	descend func(obj interface{}, context *lexicon.WordNode)

	mutex   sync.Mutex
	proxies map[uintptr]*Proxy
}

// Proxy mediates access to one tracked host. It remembers the type of
// every member it has seen so a later write can tell a plain value
// update from a type change.
type Proxy struct {
	watcher *Watcher
	host    reflect.Value
	kind    hostKind
	context *lexicon.WordNode
	types   map[string]reflect.Type
}

func New(graph *lexicon.VocabGraph, logger *archivist.Archivist) *Watcher {
	return &Watcher{
		graph:   graph,
		log:     logger,
		proxies: make(map[uintptr]*Proxy),
	}
}

// SetDescend wires the deep-walk hook used when a written value carries
// structure of its own. Without it new structural members get a single
// node and no subtree.
func (w *Watcher) SetDescend(fn func(obj interface{}, context *lexicon.WordNode)) {
	w.descend = fn
}

// Install wraps host in a proxy bound to its graph context. Supported
// hosts are pointers to structs (closed member layout) and maps with
// string keys (dynamic member layout). Anything else is sealed and
// yields nil, the caller keeps working with the bare object.
func (w *Watcher) Install(host interface{}, context *lexicon.WordNode) *Proxy {
	if host == nil || context == nil {
		return nil
	}
	v := reflect.ValueOf(host)

	var kind hostKind
	switch {
	case v.Kind() == reflect.Ptr && !v.IsNil() && v.Elem().Kind() == reflect.Struct:
		kind = hostStruct
	case v.Kind() == reflect.Map && !v.IsNil() && v.Type().Key().Kind() == reflect.String:
		kind = hostMap
	default:
		w.log.Debug(archivist.DEBUG_LEVEL_DETAIL, "tracking TRACK host sealed, not proxied type=", v.Kind().String())
		return nil
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()
	if existing, ok := w.proxies[v.Pointer()]; ok {
		return existing
	}

	proxy := &Proxy{
		watcher: w,
		host:    v,
		kind:    kind,
		context: context,
		types:   make(map[string]reflect.Type),
	}
	proxy.snapshot()
	w.proxies[v.Pointer()] = proxy
	w.log.Debug(archivist.DEBUG_LEVEL_TRACE, "tracking TRACK proxy installed context=", context.Value())
	return proxy
}

// Tracked returns the amount of installed proxies.
func (w *Watcher) Tracked() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return len(w.proxies)
}

// snapshot records the current member types of the host.
func (p *Proxy) snapshot() {
	switch p.kind {
	case hostStruct:
		elem := p.host.Elem()
		t := elem.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			p.types[field.Name] = dynamicType(elem.Field(i))
		}
	case hostMap:
		iter := p.host.MapRange()
		for iter.Next() {
			p.types[iter.Key().String()] = dynamicType(iter.Value())
		}
	}
}

func (p *Proxy) Context() *lexicon.WordNode {
	return p.context
}

// Get reads a member by name through the proxy.
func (p *Proxy) Get(name string) (interface{}, bool) {
	value, ok := p.read(name)
	if !ok || !value.IsValid() || !value.CanInterface() {
		return nil, false
	}
	return value.Interface(), true
}

// Set writes a member and repairs the graph. An unseen name gets a
// fresh node when its dynamic type is non-terminal, a type change
// cascades the stale subtree away before the member is recorded anew
// under the same condition, a plain value update only refreshes the
// recorded literal. Terminal-typed additions change the host only.
func (p *Proxy) Set(name string, value interface{}) error {
	previous, existed := p.read(name)
	previous = unwrap(previous)
	previousLiteral := ""
	if existed && previous.IsValid() && previous.Kind() == reflect.String {
		previousLiteral = previous.String()
	}

	if err := p.write(name, value); err != nil {
		return err
	}

	newType := dynamicTypeOf(value)
	oldType, seen := p.types[name]

	switch {
	case !seen:
		if structural(newType) {
			p.watcher.log.Debug(archivist.DEBUG_LEVEL_TRACE, "tracking TRACK new member name=", name)
			p.record(name, value)
		}
	case oldType != newType:
		p.watcher.log.Debug(archivist.DEBUG_LEVEL_TRACE, "tracking TRACK member type changed name=", name)
		p.watcher.graph.RemoveNodeByValue(name, p.context, true, impliedRelation(previous))
		if structural(newType) {
			p.record(name, value)
		}
	default:
		// same type, only the literal may have moved
		if node := p.memberNode(name); node != nil && newType != nil && newType.Kind() == reflect.String {
			if previousLiteral != "" {
				p.watcher.graph.RemoveNodeByValue(previousLiteral, node, true, relations.IsValueOf)
			}
			if content := reflect.ValueOf(value).String(); content != "" {
				p.watcher.graph.AddNode(content, node, relations.IsValueOf)
			}
		}
	}
	p.types[name] = newType
	return nil
}

// Delete removes a member and cascades its subtree out of the graph,
// filtered by the relation the old value implied. Struct hosts cannot
// lose a field, the member is zeroed instead.
func (p *Proxy) Delete(name string) error {
	previous, _ := p.read(name)
	previous = unwrap(previous)
	switch p.kind {
	case hostStruct:
		field := p.host.Elem().FieldByName(name)
		if !field.IsValid() || !field.CanSet() {
			return ErrUnknownMember
		}
		field.Set(reflect.Zero(field.Type()))
	case hostMap:
		key := reflect.ValueOf(name)
		if !p.host.MapIndex(key).IsValid() {
			return ErrUnknownMember
		}
		p.host.SetMapIndex(key, reflect.Value{})
	}
	delete(p.types, name)
	p.watcher.graph.RemoveNodeByValue(name, p.context, true, impliedRelation(previous))
	p.watcher.log.Debug(archivist.DEBUG_LEVEL_TRACE, "tracking TRACK member removed name=", name)
	return nil
}

// SetItem replaces one element of a sequence member and repairs its
// element node. Element nodes are named after the member, not the
// position, so the repair swaps one node regardless of the index.
func (p *Proxy) SetItem(name string, index int, value interface{}) error {
	sequence, ok := p.read(name)
	if !ok {
		return ErrUnknownMember
	}
	sequence = unwrap(sequence)
	if sequence.Kind() != reflect.Slice {
		return ErrNotASequence
	}
	if index < 0 || index >= sequence.Len() {
		return ErrOutOfRange
	}

	old := unwrap(sequence.Index(index))
	incoming := reflect.ValueOf(value)
	if !incoming.IsValid() || !incoming.Type().AssignableTo(sequence.Type().Elem()) {
		return ErrNotAssignable
	}

	if err := p.writeSequence(name, sequence, index, incoming, false); err != nil {
		return err
	}

	node := p.memberNode(name)
	if node == nil {
		return nil
	}
	if old.IsValid() && !inspector.IsTerminal(old.Type()) {
		if item := p.itemNode(node, name); item != nil {
			p.watcher.graph.RemoveNode(item, node, true)
		}
	}
	if !inspector.IsTerminal(incoming.Type()) {
		elemContext := p.watcher.graph.AddNode(name+itemSuffix, node, relations.IsElemOfList)
		if p.watcher.descend != nil && incoming.CanInterface() {
			p.watcher.descend(incoming.Interface(), elemContext)
		}
	}
	return nil
}

// DeleteItem drops one element of a sequence member.
func (p *Proxy) DeleteItem(name string, index int) error {
	sequence, ok := p.read(name)
	if !ok {
		return ErrUnknownMember
	}
	sequence = unwrap(sequence)
	if sequence.Kind() != reflect.Slice {
		return ErrNotASequence
	}
	if index < 0 || index >= sequence.Len() {
		return ErrOutOfRange
	}

	old := unwrap(sequence.Index(index))
	if err := p.writeSequence(name, sequence, index, reflect.Value{}, true); err != nil {
		return err
	}

	if old.IsValid() && !inspector.IsTerminal(old.Type()) {
		if node := p.memberNode(name); node != nil {
			if item := p.itemNode(node, name); item != nil {
				p.watcher.graph.RemoveNode(item, node, true)
			}
		}
	}
	return nil
}

// itemNode picks one element node of a sequence member. Element names
// are not positional, any one of them stands in for the dropped slot.
func (p *Proxy) itemNode(member *lexicon.WordNode, name string) *lexicon.WordNode {
	for _, edge := range member.Connections() {
		if edge.Second.Value() == name+itemSuffix && edge.Relation == relations.HasListElem {
			return edge.Second
		}
	}
	return nil
}

func (p *Proxy) read(name string) (reflect.Value, bool) {
	switch p.kind {
	case hostStruct:
		field := p.host.Elem().FieldByName(name)
		if !field.IsValid() {
			return reflect.Value{}, false
		}
		return field, true
	case hostMap:
		value := p.host.MapIndex(reflect.ValueOf(name))
		if !value.IsValid() {
			return reflect.Value{}, false
		}
		return value, true
	}
	return reflect.Value{}, false
}

func (p *Proxy) write(name string, value interface{}) error {
	incoming := reflect.ValueOf(value)
	switch p.kind {
	case hostStruct:
		field := p.host.Elem().FieldByName(name)
		if !field.IsValid() || !field.CanSet() {
			// closed layout, a struct cannot grow members
			return ErrUnknownMember
		}
		if value == nil {
			field.Set(reflect.Zero(field.Type()))
			return nil
		}
		if !incoming.Type().AssignableTo(field.Type()) {
			return ErrNotAssignable
		}
		field.Set(incoming)
	case hostMap:
		if value == nil {
			p.host.SetMapIndex(reflect.ValueOf(name), reflect.Zero(p.host.Type().Elem()))
			return nil
		}
		if !incoming.Type().AssignableTo(p.host.Type().Elem()) {
			return ErrNotAssignable
		}
		p.host.SetMapIndex(reflect.ValueOf(name), incoming)
	}
	return nil
}

// writeSequence mutates a slice member in place. Map-held slices are
// value copies, the mutated copy is stored back under its key.
func (p *Proxy) writeSequence(name string, sequence reflect.Value, index int, incoming reflect.Value, remove bool) error {
	result := sequence
	if remove {
		result = reflect.AppendSlice(sequence.Slice(0, index), sequence.Slice(index+1, sequence.Len()))
	} else if sequence.Index(index).CanSet() {
		sequence.Index(index).Set(incoming)
		return nil
	} else {
		result = reflect.MakeSlice(sequence.Type(), sequence.Len(), sequence.Len())
		reflect.Copy(result, sequence)
		result.Index(index).Set(incoming)
	}
	return p.write(name, result.Interface())
}

// record registers a member node for a freshly written non-terminal
// value and deep-walks it through the descend hook.
func (p *Proxy) record(name string, value interface{}) {
	kind := inspector.ClassifyInterface(value, false)
	node := p.watcher.graph.AddNode(name, p.context, relations.ForAttribute(kind))

	v := unwrap(reflect.ValueOf(value))
	if !v.IsValid() {
		return
	}
	if p.watcher.descend != nil && v.CanInterface() {
		p.watcher.descend(v.Interface(), node)
	}
}

// structural reports whether a member of dynamic type t deserves a
// graph node, terminal types only live on the host.
func structural(t reflect.Type) bool {
	return t != nil && !inspector.IsTerminal(t)
}

// impliedRelation derives the relation a member's previous value was
// recorded under, the removal filter for type changes and deletes.
func impliedRelation(previous reflect.Value) *relations.Relation {
	if !previous.IsValid() {
		return nil
	}
	return relations.ForAttribute(inspector.ClassifyValue(previous, false))
}

// memberNode resolves the graph node of a member through the context's
// derived edges.
func (p *Proxy) memberNode(name string) *lexicon.WordNode {
	for _, edge := range p.context.Connections() {
		if edge.Second.Value() == name && !edge.Relation.Primary() {
			return edge.Second
		}
	}
	return nil
}

func unwrap(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	return v
}

func dynamicType(v reflect.Value) reflect.Type {
	v = unwrap(v)
	if !v.IsValid() {
		return nil
	}
	return v.Type()
}

func dynamicTypeOf(value interface{}) reflect.Type {
	if value == nil {
		return nil
	}
	return dynamicType(reflect.ValueOf(value))
}
