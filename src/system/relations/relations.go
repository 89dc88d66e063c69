// Package relations holds the closed taxonomy of word relation kinds.
// Every relation has exactly one designated opposite (possibly itself),
// so each edge in the vocabulary graph can be traversed in both
// directions without a separate reverse index.
package relations

import "fmt"

// Relation is a single entry of the taxonomy. Relations are package
// level singletons, so comparing pointers is comparing names and using
// a Relation as a map key hashes consistently with that equality.
type Relation struct {
	name     string
	opposite *Relation
	primary  bool
}

func (r *Relation) Name() string {
	return r.name
}

func (r *Relation) Opposite() *Relation {
	return r.opposite
}

// Primary reports whether r is the IS_* orientation of its pair. The
// derived HAS_* side is the one stored on a context node pointing down
// to its discovered children.
func (r *Relation) Primary() bool {
	return r.primary
}

func (r *Relation) String() string {
	return r.name
}

var registry = make(map[string]*Relation)

// Opposites builds a linked relation pair and registers both sides.
// The first name becomes the primary orientation. Passing the same name
// twice yields a self-opposite relation.
func Opposites(a string, b string) (*Relation, *Relation) {
	first := &Relation{name: a, primary: true}
	second := first
	if a != b {
		second = &Relation{name: b}
	}
	first.opposite = second
	second.opposite = first
	registry[first.name] = first
	registry[second.name] = second
	return first, second
}

var (
	Unknown, _ = Opposites("UNKNOWN", "UNKNOWN")

	IsAttrOf, HasAttr             = Opposites("IS_ATTR_OF", "HAS_ATTR")
	IsMethodOf, HasMethod         = Opposites("IS_METHOD_OF", "HAS_METHOD")
	IsFuncAttrOf, HasFuncAttr     = Opposites("IS_FUNC_ATTR_OF", "HAS_FUNC_ATTR")
	IsLambdaAttrOf, HasLambdaAttr = Opposites("IS_LAMBDA_ATTR_OF", "HAS_LAMBDA_ATTR")
	IsArgOf, HasArg               = Opposites("IS_ARG_OF", "HAS_ARG")
	IsKwargOf, HasKwarg           = Opposites("IS_KWARG_OF", "HAS_KWARG")
	IsVargOf, HasVarg             = Opposites("IS_VARG_OF", "HAS_VARG")
	IsVkwargOf, HasVkwarg         = Opposites("IS_VKWARG_OF", "HAS_VKWARG")
	IsElemOfList, HasListElem     = Opposites("IS_ELEM_OF_L", "HAS_L_ELEM")
	IsElemOfDict, HasDictElem     = Opposites("IS_ELEM_OF_D", "HAS_D_ELEM")
	IsValueOf, HasValue           = Opposites("IS_VALUE_OF", "HAS_VALUE")

	IsLayerOf, HasLayer       = Opposites("IS_LAYER_OF", "HAS_LAYER")
	IsCallbackOf, HasCallback = Opposites("IS_CALLBACK_OF", "HAS_CALLBACK")
)

// ByName resolves a relation from its name, nil for unregistered names.
func ByName(name string) *Relation {
	return registry[name]
}

// All returns every registered relation.
func All() []*Relation {
	all := make([]*Relation, 0, len(registry))
	for _, relation := range registry {
		all = append(all, relation)
	}
	return all
}

// CallableKind classifies how a member value is callable, if at all.
type CallableKind int

const (
	CallableNone CallableKind = iota
	CallableFunction
	CallableMethod
	CallableLambda
)

// ClassifyCallable maps a callable kind onto its relation. Anything
// that is not a recognized callable kind falls back to IS_ARG_OF.
func ClassifyCallable(kind CallableKind) *Relation {
	switch kind {
	case CallableFunction:
		return IsFuncAttrOf
	case CallableMethod:
		return IsMethodOf
	case CallableLambda:
		return IsLambdaAttrOf
	}
	return IsArgOf
}

// ForAttribute returns the relation implied by a member's runtime kind:
// callables classify per ClassifyCallable, everything else is a plain
// attribute.
func ForAttribute(kind CallableKind) *Relation {
	if kind == CallableNone {
		return IsAttrOf
	}
	return ClassifyCallable(kind)
}

func init() {
	// the taxonomy is closed, verify totality of the opposite mapping
	// once at startup
	for name, relation := range registry {
		if relation.name != name {
			panic(fmt.Sprintf("relation registered under wrong name: %s as %s", relation.name, name))
		}
		if relation.opposite == nil {
			panic(fmt.Sprintf("relation without opposite: %s", name))
		}
		if relation.opposite.opposite != relation {
			panic(fmt.Sprintf("relation opposite mapping is not total for: %s", name))
		}
	}
}
