package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/objtok/internal/ir"
)

func TestRun_Cascade(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/cascade.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, 2, result.Passes)
	assert.Empty(t, result.ErrorCode)
	assert.Equal(t, "https://api.example.com/v1", result.Output["endpoint"])
}

func TestRun_DoesNotMutateScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/cascade.yaml")
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, "@service_url@/v1", s.Document["endpoint"])
	assert.Equal(t, first.Trace, second.Trace, "fresh clock per run")
}

func TestRun_ExpectedErrors(t *testing.T) {
	for _, name := range []string{"self_reference", "strict_unresolved"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
			require.NoError(t, err)

			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Equal(t, s.Expect.Error, result.ErrorCode)
		})
	}
}

func TestRun_Failures(t *testing.T) {
	t.Run("unexpected error", func(t *testing.T) {
		s := &Scenario{Name: "x", Description: "d", Document: map[string]any{"a": "@a@"}}
		result, err := Run(s)
		require.NoError(t, err)
		assert.False(t, result.Pass)
		assert.Contains(t, result.Errors[0], "unexpected error")
	})

	t.Run("missing expected error", func(t *testing.T) {
		s := &Scenario{
			Name: "x", Description: "d",
			Document: map[string]any{"a": "plain"},
			Expect:   &ExpectClause{Error: "UNRESOLVED_TOKEN"},
		}
		result, err := Run(s)
		require.NoError(t, err)
		assert.False(t, result.Pass)
		assert.Contains(t, result.Errors[0], "expected error UNRESOLVED_TOKEN, run succeeded")
	})

	t.Run("document mismatch", func(t *testing.T) {
		s := &Scenario{
			Name: "x", Description: "d",
			Document: map[string]any{"a": "1", "nested": map[string]any{"b": "@a@"}},
			Expect: &ExpectClause{Document: map[string]any{
				"nested": map[string]any{"b": "2"},
				"gone":   "x",
			}},
		}
		result, err := Run(s)
		require.NoError(t, err)
		assert.False(t, result.Pass)
		assert.Equal(t, []string{
			"expect.document.gone: field missing",
			"expect.document.nested.b: expected 2, got 1",
		}, result.Errors)
	})
}

func TestRun_MaxPasses(t *testing.T) {
	s := &Scenario{
		Name: "long_chain", Description: "d",
		Document: map[string]any{
			"a": "@b@", "b": "@c@", "c": "@d@", "d": "@e@", "e": "@f@",
			"f": "@g@", "g": "@h@", "h": "@i@", "i": "@j@", "j": "x",
		},
		MaxPasses: 3,
		Expect:    &ExpectClause{Error: "PASS_LIMIT_EXCEEDED"},
	}
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, 3, result.Passes)
}

func TestRun_RepeatedSelfReference(t *testing.T) {
	s := &Scenario{
		Name: "doubling", Description: "d",
		Document: map[string]any{"a": "@a@ @a@"},
		Expect:   &ExpectClause{Error: "SELF_REFERENCING_TOKEN"},
	}
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, 1, result.Passes)
}

func TestCopyValue(t *testing.T) {
	orig := map[string]any{"a": []any{map[string]any{"b": "c"}}}
	cp := copyValue(orig).(map[string]any)
	cp["a"].([]any)[0].(map[string]any)["b"] = "changed"

	assert.Equal(t, "c", orig["a"].([]any)[0].(map[string]any)["b"])
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, valuesEqual("a", "a"))
	assert.True(t, valuesEqual(8080, int64(8080)))
	assert.False(t, valuesEqual("a", "b"))
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
	assert.Equal(t, []ir.Resolution{}, r.Trace)
}
