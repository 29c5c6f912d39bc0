package resolve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type country string

type grandChild struct {
	Property1 string
}

type child struct {
	Property1  string
	GrandChild *grandChild
}

type root struct {
	Prop1        string
	Count        int
	Child        *child
	Collection   []string
	ArrayStrings [3]string
	Countries    []country
	ReadOnly     string `tokens:"readonly"`
	Started      time.Duration
}

func TestResolve(t *testing.T) {
	r := &root{
		Prop1: "Test1",
		Count: 7,
		Child: &child{
			Property1:  "TestChild",
			GrandChild: &grandChild{Property1: "Deep"},
		},
		Collection:   []string{"USA", "CA", "AU"},
		ArrayStrings: [3]string{"USA", "CA", "AU"},
		Countries:    []country{"NZ", "UK"},
		ReadOnly:     "locked",
		Started:      2 * time.Second,
	}

	tests := []struct {
		name string
		path string
		want any
	}{
		{"bare field", "Prop1", "Test1"},
		{"lower case", "prop1", "Test1"},
		{"upper case", "PROP1", "Test1"},
		{"one level", "child.property1", "TestChild"},
		{"two levels", "child.grandchild.property1", "Deep"},
		{"int returned as-is", "count", 7},
		{"slice joined", "collection", "USA, CA, AU"},
		{"array joined", "arrayStrings", "USA, CA, AU"},
		{"named strings joined", "countries", "NZ, UK"},
		{"read-only readable", "readonly", "locked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(r, tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_Absent(t *testing.T) {
	r := &root{Prop1: "x"}

	tests := []struct {
		name string
		root any
		path string
	}{
		{"nil root", nil, "prop1"},
		{"nil pointer root", (*root)(nil), "prop1"},
		{"missing field", r, "prop"},
		{"nil intermediate", r, "child.property1"},
		{"missing nested", &root{Child: &child{}}, "child.nope"},
		{"path through scalar", r, "prop1.length"},
		{"nil slice", r, "collection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.root, tt.path)
			assert.False(t, ok)
			assert.Nil(t, got)
		})
	}
}

func TestResolve_Documents(t *testing.T) {
	doc := map[string]any{
		"service": map[string]any{
			"Name":    "billing",
			"regions": []any{"eu", "us"},
			"ports":   []any{80, 443},
		},
	}

	got, ok := Resolve(doc, "SERVICE.name")
	require.True(t, ok)
	assert.Equal(t, "billing", got)

	got, ok = Resolve(doc, "service.regions")
	require.True(t, ok)
	assert.Equal(t, "eu, us", got)

	got, ok = Resolve(doc, "service.ports")
	require.True(t, ok)
	assert.Equal(t, []any{80, 443}, got, "mixed collections are not rendered")
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "abc", Stringify("abc"))
	assert.Equal(t, "NZ", Stringify(country("NZ")))
	assert.Equal(t, "42", Stringify(42))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, "2s", Stringify(2*time.Second))
}
