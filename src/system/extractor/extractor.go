// Package extractor implements the recursive vocabulary walk: it
// discovers the member names of a live object through reflection and
// records them as nodes in the vocabulary graph, consulting the
// inspector at each step and handling containers, strings and
// callables through dedicated branches.
package extractor

import (
	"fmt"
	"reflect"

	"github.com/voodooEntity/vocabrain/src/system/archivist"
	"github.com/voodooEntity/vocabrain/src/system/inspector"
	"github.com/voodooEntity/vocabrain/src/system/lexicon"
	"github.com/voodooEntity/vocabrain/src/system/relations"
	"github.com/voodooEntity/vocabrain/src/system/watcher"
)

const (
	// maximum recursion depth of objects to explore
	DefaultMaxDepth = 2
	// maximum length of a container to explore
	DefaultMaxContainerLen = 50

	// synthetic name suffixes for container elements and callable
	// parameters. Element names are deliberately not positional so the
	// graph does not churn when elements are inserted or removed.
	itemSuffix = "_Item"
	argSuffix  = "_Arg"
)

type Config struct {
	MaxDepth        int
	MaxContainerLen int
	DynamicUpdates  bool
}

type Extractor struct {
	graph   *lexicon.VocabGraph
	watcher *watcher.Watcher
	log     *archivist.Archivist
	cfg     Config

	// callables flagged for deferred documentation learning, they
	// declared a variadic catch-all whose real parameter names can only
	// be found in their docs
	docQueue []string
}

func New(graph *lexicon.VocabGraph, watcherInstance *watcher.Watcher, logger *archivist.Archivist, cfg Config) *Extractor {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.MaxContainerLen <= 0 {
		cfg.MaxContainerLen = DefaultMaxContainerLen
	}
	return &Extractor{
		graph:   graph,
		watcher: watcherInstance,
		log:     logger,
		cfg:     cfg,
	}
}

// Extract walks obj and records every discovered name under context.
// The visited set is keyed by object identity and lives for a single
// extraction call, guarding wide cyclic object graphs beyond what the
// depth cap alone can bound.
func (e *Extractor) Extract(obj interface{}, context *lexicon.WordNode) {
	if obj == nil || context == nil {
		return
	}
	visited := make(map[uintptr]bool)
	e.rExtract(reflect.ValueOf(obj), context, 0, visited)
}

// PendingDocLearning returns the callables flagged for documentation
// learning. Stub extension point, consumers may drain it later.
func (e *Extractor) PendingDocLearning() []string {
	return append([]string(nil), e.docQueue...)
}

func (e *Extractor) rExtract(v reflect.Value, context *lexicon.WordNode, depth int, visited map[uintptr]bool) {
	if depth >= e.cfg.MaxDepth || !v.IsValid() {
		return
	}

	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return
		}
		ptr := v.Pointer()
		if visited[ptr] {
			return
		}
		visited[ptr] = true
	}

	host := v
	elem := v
	if elem.Kind() == reflect.Ptr {
		elem = elem.Elem()
	}
	if !elem.IsValid() || inspector.IsTerminal(elem.Type()) {
		return
	}
	if elem.Kind() != reflect.Struct {
		return
	}

	t := elem.Type()
	e.log.Debug(archivist.DEBUG_LEVEL_TRACE, "extracting EXTRACT begin type=", t.String(), " depth=", depth)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			if hasExportedCounterpart(t, field.Name) {
				// private name shadowed by a public counterpart on the
				// same type, skip it to avoid duplicate nodes
				continue
			}
			e.log.Debug(archivist.DEBUG_LEVEL_DETAIL, "extracting EXTRACT member not retrievable name=", field.Name)
			continue
		}
		value, ok := e.retrieve(elem, i)
		if !ok {
			continue
		}
		e.processMember(field.Name, value, false, context, depth, visited)
	}

	ht := host.Type()
	for i := 0; i < ht.NumMethod(); i++ {
		method := ht.Method(i)
		if !method.IsExported() {
			continue
		}
		e.processMember(method.Name, host.Method(i), true, context, depth, visited)
	}

	// hand the visited object over for live tracking, mutations on it
	// then repair the graph incrementally instead of forcing a re-walk
	if e.cfg.DynamicUpdates && e.watcher != nil && host.CanInterface() {
		e.watcher.Install(host.Interface(), context)
	}
}

func (e *Extractor) processMember(name string, v reflect.Value, fromMethodSet bool, context *lexicon.WordNode, depth int, visited map[uintptr]bool) {
	kind := inspector.ClassifyValue(v, fromMethodSet)
	relation := relations.ForAttribute(kind)
	next := e.graph.AddNode(name, context, relation)
	e.log.Debug(archivist.DEBUG_LEVEL_DETAIL, "extracting EXTRACT member name=", name, " relation=", relation.Name())

	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if !v.IsValid() || (v.Kind() == reflect.Interface && v.IsNil()) {
		return
	}

	// entering a container costs two depth units, one for the container
	// member itself and one for its elements
	switch v.Kind() {
	case reflect.Map:
		if v.Len() > e.cfg.MaxContainerLen {
			e.log.Debug(archivist.DEBUG_LEVEL_DETAIL, "extracting EXTRACT container over cap, not descending name=", name)
			return
		}
		iter := v.MapRange()
		for iter.Next() {
			value := unwrap(iter.Value())
			if !value.IsValid() || inspector.IsTerminal(value.Type()) {
				continue
			}
			keyContext := e.graph.AddNode(keyString(iter.Key()), next, relations.IsElemOfDict)
			e.rExtract(value, keyContext, depth+2, visited)
		}
	case reflect.Slice, reflect.Array:
		if v.Len() > e.cfg.MaxContainerLen {
			e.log.Debug(archivist.DEBUG_LEVEL_DETAIL, "extracting EXTRACT container over cap, not descending name=", name)
			return
		}
		for i := 0; i < v.Len(); i++ {
			item := unwrap(v.Index(i))
			if !item.IsValid() || inspector.IsTerminal(item.Type()) {
				continue
			}
			elemContext := e.graph.AddNode(name+itemSuffix, next, relations.IsElemOfList)
			e.rExtract(item, elemContext, depth+2, visited)
		}
	case reflect.String:
		// record the literal itself, a question like "what is the
		// learning rate of CNN1" needs the value of model.Name, not
		// just the fact that a Name attribute exists
		if content := v.String(); content != "" {
			e.graph.AddNode(content, next, relations.IsValueOf)
		}
	case reflect.Func:
		e.extractParameters(name, v, next)
	default:
		e.rExtract(v, next, depth+1, visited)
	}
}

// extractParameters harvests a callable's declared parameters. Go
// reflection exposes no parameter names, so each parameter becomes a
// synthetic node. A variadic catch-all produces no node, its real names
// live in the callable's documentation, which is deferred to the
// documentation learning hook.
func (e *Extractor) extractParameters(name string, fn reflect.Value, context *lexicon.WordNode) {
	ft := fn.Type()
	learnFromDoc := false
	for i := 0; i < ft.NumIn(); i++ {
		if ft.IsVariadic() && i == ft.NumIn()-1 {
			learnFromDoc = true
			continue
		}
		e.graph.AddNode(name+argSuffix, context, relations.IsArgOf)
	}
	if learnFromDoc {
		e.learnFromDoc(name)
	}
}

// learnFromDoc is the deferred extension point for harvesting catch-all
// parameter names out of documentation.
func (e *Extractor) learnFromDoc(name string) {
	e.docQueue = append(e.docQueue, name)
	e.log.Debug(archivist.DEBUG_LEVEL_TRACE, "extracting EXTRACT flagged for doc learning name=", name)
}

// retrieve guards member access. Framework objects hide lazily
// initialized state that may not be readable yet, a failed retrieval
// skips the name without recording it.
func (e *Extractor) retrieve(v reflect.Value, index int) (field reflect.Value, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Debug(archivist.DEBUG_LEVEL_DETAIL, "extracting EXTRACT member retrieval failed", r)
			field, ok = reflect.Value{}, false
		}
	}()
	field = v.Field(index)
	if !field.CanInterface() {
		return reflect.Value{}, false
	}
	return field, true
}

func hasExportedCounterpart(t reflect.Type, name string) bool {
	if name == "" {
		return false
	}
	counterpart := string(upper(name[0])) + name[1:]
	if counterpart == name {
		return false
	}
	_, ok := t.FieldByName(counterpart)
	return ok
}

func upper(b byte) byte {
	if 'a' <= b && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func unwrap(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	return v
}

func keyString(key reflect.Value) string {
	key = unwrap(key)
	if key.Kind() == reflect.String {
		return key.String()
	}
	return fmt.Sprint(key.Interface())
}
