package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/objtok/internal/testutil"
)

func TestInspect(t *testing.T) {
	obj := testutil.NewTestObject()
	obj.Prop1 = "Test1"
	obj.Prop2 = "@prop1@ and @missing@"
	obj.Child = &testutil.ChildObject{Property1: "@child.property2@", Property2: "x"}

	findings, err := New().Inspect(obj, nil)
	require.NoError(t, err)

	assert.Equal(t, []Finding{
		{Token: "@prop1@", Path: "prop1", Resolved: true, Value: "Test1"},
		{Token: "@missing@", Path: "missing"},
		{Token: "@child.property2@", Path: "child.property2", Resolved: true, Value: "x"},
	}, findings, "read-only fields are not scanned")

	assert.Equal(t, "@prop1@ and @missing@", obj.Prop2, "nothing is substituted")
	assert.Equal(t, []Finding{{Token: "@missing@", Path: "missing"}}, Unresolved(findings))
}

func TestInspect_SeparateLookup(t *testing.T) {
	obj := &testutil.TestObject{Prop1: "@prop2@"}
	lookup := &testutil.SecondTestObject{Prop2: "Test2"}

	findings, err := New().Inspect(obj, lookup)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.True(t, findings[0].Resolved)
	assert.Equal(t, "Test2", findings[0].Value)
}

func TestInspect_NoTokens(t *testing.T) {
	findings, err := New().Inspect(&testutil.TestObject{Prop1: "plain"}, nil)
	require.NoError(t, err)
	assert.Empty(t, findings)
	assert.Empty(t, Unresolved(findings))
}
