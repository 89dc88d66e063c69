// Package inspector provides the type predicates that gate recursion
// during vocabulary extraction: terminal types are leaves the builder
// never descends into, callable types get their parameters harvested.
package inspector

import (
	"reflect"
	"regexp"
	"runtime"

	"github.com/voodooEntity/vocabrain/src/system/relations"
)

// terminalKinds covers scalars of every width, strings, the built-in
// containers and the opaque built-ins. Containers classify terminal for
// generic recursion, the extractor walks their elements through its
// dedicated branches instead.
var terminalKinds = map[reflect.Kind]bool{
	reflect.Bool:          true,
	reflect.Int:           true,
	reflect.Int8:          true,
	reflect.Int16:         true,
	reflect.Int32:         true,
	reflect.Int64:         true,
	reflect.Uint:          true,
	reflect.Uint8:         true,
	reflect.Uint16:        true,
	reflect.Uint32:        true,
	reflect.Uint64:        true,
	reflect.Uintptr:       true,
	reflect.Float32:       true,
	reflect.Float64:       true,
	reflect.Complex64:     true,
	reflect.Complex128:    true,
	reflect.String:        true,
	reflect.Map:           true,
	reflect.Slice:         true,
	reflect.Array:         true,
	reflect.Chan:          true,
	reflect.UnsafePointer: true,
}

// terminalTypes holds explicitly registered framework scalar types,
// the dtype analog. Extended during setup, read-only afterwards.
var terminalTypes = map[reflect.Type]bool{}

// RegisterTerminal marks a type as terminal regardless of its kind.
func RegisterTerminal(t reflect.Type) {
	if t != nil {
		terminalTypes[t] = true
	}
}

// IsTerminal reports whether the builder should treat t as a leaf.
// Pointers classify as what they point at, named types over terminal
// kinds inherit the classification of their underlying kind.
func IsTerminal(t reflect.Type) bool {
	if t == nil {
		return true
	}
	if terminalTypes[t] {
		return true
	}
	switch t.Kind() {
	case reflect.Ptr:
		return IsTerminal(t.Elem())
	case reflect.Interface:
		// static interface types carry no structure of their own, the
		// extractor unwraps the dynamic value before classifying
		return false
	case reflect.Func:
		return false
	}
	return terminalKinds[t.Kind()]
}

// IsCallable reports whether t is a func type.
func IsCallable(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Func
}

// closure symbols look like pkg.Parent.func1 or pkg.Parent.func2.1,
// bound method values carry a -fm suffix
var anonSymbol = regexp.MustCompile(`\.func[0-9]+(\.[0-9]+)*$`)
var methodValueSymbol = regexp.MustCompile(`-fm$`)

// ClassifyValue determines the callable kind of a member value. Members
// discovered through the method set are bound methods by construction,
// func values are separated into named functions and anonymous ones by
// their runtime symbol.
func ClassifyValue(v reflect.Value, fromMethodSet bool) relations.CallableKind {
	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if !v.IsValid() || v.Kind() != reflect.Func {
		return relations.CallableNone
	}
	if fromMethodSet {
		return relations.CallableMethod
	}
	if v.IsNil() {
		return relations.CallableFunction
	}
	symbol := ""
	if fn := runtime.FuncForPC(v.Pointer()); fn != nil {
		symbol = fn.Name()
	}
	if methodValueSymbol.MatchString(symbol) {
		return relations.CallableMethod
	}
	if anonSymbol.MatchString(symbol) {
		return relations.CallableLambda
	}
	return relations.CallableFunction
}

// ClassifyInterface is ClassifyValue over a plain interface value.
func ClassifyInterface(value interface{}, fromMethodSet bool) relations.CallableKind {
	if value == nil {
		return relations.CallableNone
	}
	return ClassifyValue(reflect.ValueOf(value), fromMethodSet)
}
