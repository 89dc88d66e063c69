package relations

import "testing"

// Every taxonomy entry must satisfy relation.Opposite().Opposite() == relation.
func TestOppositeMappingIsTotalAndIdempotent(t *testing.T) {
	all := All()
	if len(all) == 0 {
		t.Fatal("empty relation registry")
	}
	for _, relation := range all {
		if relation.Opposite() == nil {
			t.Fatalf("relation %s has no opposite", relation.Name())
		}
		if relation.Opposite().Opposite() != relation {
			t.Fatalf("relation %s opposite mapping is not idempotent", relation.Name())
		}
	}
}

func TestPairOrientation(t *testing.T) {
	cases := []struct {
		primary *Relation
		derived *Relation
	}{
		{IsAttrOf, HasAttr},
		{IsMethodOf, HasMethod},
		{IsElemOfList, HasListElem},
		{IsElemOfDict, HasDictElem},
		{IsValueOf, HasValue},
		{IsLayerOf, HasLayer},
		{IsCallbackOf, HasCallback},
	}
	for _, tc := range cases {
		if !tc.primary.Primary() {
			t.Errorf("%s should be the primary orientation", tc.primary.Name())
		}
		if tc.derived.Primary() {
			t.Errorf("%s should be the derived orientation", tc.derived.Name())
		}
		if tc.primary.Opposite() != tc.derived {
			t.Errorf("%s opposite mismatch", tc.primary.Name())
		}
	}
}

func TestSelfOppositeUnknown(t *testing.T) {
	if Unknown.Opposite() != Unknown {
		t.Fatal("UNKNOWN must be its own opposite")
	}
}

func TestByName(t *testing.T) {
	if ByName("IS_ATTR_OF") != IsAttrOf {
		t.Fatal("ByName must resolve to the singleton instance")
	}
	if ByName("HAS_ATTR") != HasAttr {
		t.Fatal("ByName must resolve derived orientations too")
	}
	if ByName("NO_SUCH_RELATION") != nil {
		t.Fatal("unregistered names must resolve to nil")
	}
}

// Relations are used as map keys in edge sets, hashing must be
// consistent with name equality.
func TestHashConsistency(t *testing.T) {
	seen := make(map[*Relation]string)
	for _, relation := range All() {
		if previous, ok := seen[relation]; ok && previous != relation.Name() {
			t.Fatalf("relation %s collides with %s", relation.Name(), previous)
		}
		seen[relation] = relation.Name()
	}
	if len(seen) != len(All()) {
		t.Fatal("registry contains duplicate relation instances")
	}
}

func TestClassifyCallable(t *testing.T) {
	cases := []struct {
		kind     CallableKind
		expected *Relation
	}{
		{CallableFunction, IsFuncAttrOf},
		{CallableMethod, IsMethodOf},
		{CallableLambda, IsLambdaAttrOf},
		{CallableNone, IsArgOf},
	}
	for _, tc := range cases {
		if got := ClassifyCallable(tc.kind); got != tc.expected {
			t.Errorf("ClassifyCallable(%d) = %s, expected %s", tc.kind, got.Name(), tc.expected.Name())
		}
	}
}

func TestForAttribute(t *testing.T) {
	if ForAttribute(CallableNone) != IsAttrOf {
		t.Fatal("non callable members are plain attributes")
	}
	if ForAttribute(CallableMethod) != IsMethodOf {
		t.Fatal("method members must classify as IS_METHOD_OF")
	}
}
