// Package testutil provides fixture object graphs and helpers shared by the
// objtok test suites.
package testutil

// Pair is an association-list element (string key, string value).
type Pair struct {
	Key   string
	Value string
}

// ChildObject is nested inside TestObject, and inside itself for
// grandchild paths.
type ChildObject struct {
	Property1  string
	Property2  string
	GrandChild *ChildObject
}

// TestObject exercises every field shape the walker dispatches on.
type TestObject struct {
	Prop1            string
	Prop2            string
	Prop3            string
	Prop4            int
	ReadonlyProp     string `tokens:"readonly"`
	Child            *ChildObject
	ObjectCollection []*ChildObject
	Collection       []string
	ArrayStrings     [3]string
	KeyValPair       []Pair
	Dictionary       map[string]string
}

// NewTestObject returns a TestObject whose read-only field holds a token.
func NewTestObject() *TestObject {
	return &TestObject{ReadonlyProp: "@Prop1@"}
}

// SecondTestObject is a lookup root of a different type than TestObject.
type SecondTestObject struct {
	Prop1 string
	Prop2 string
	Child *ChildObject
}
