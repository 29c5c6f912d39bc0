package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/objtok/internal/document"
	"github.com/roach88/objtok/internal/ir"
)

type renderResponse struct {
	Status string         `json:"status"`
	Data   []RenderResult `json:"data"`
	Error  *CLIError      `json:"error"`
}

func decodeRender(t *testing.T, stdout string) renderResponse {
	t.Helper()
	var resp renderResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), stdout)
	return resp
}

func TestRender_Stdout(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "svc.yaml", "name: svc\nurl: http://@name@.local\n")

	stdout, _, err := execute(t, "render", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "url: http://svc.local")
	assert.Contains(t, readFile(t, path), "@name@", "input is not modified")
}

func TestRender_StdoutJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.json", `{"a": "x@missing@", "b": "@a@!"}`)

	stdout, _, err := execute(t, "render", path, "--format", "json")
	require.NoError(t, err)

	resp := decodeRender(t, stdout)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 1)

	res := resp.Data[0]
	assert.Equal(t, path, res.File)
	assert.Equal(t, ir.RunStatusDone, res.Status)
	assert.Equal(t, []string{"@missing@"}, res.Blanked)
	assert.Equal(t, map[string]any{"a": "x", "b": "x!"}, res.Output)
	assert.NotEmpty(t, res.RunID)
	assert.Empty(t, res.Written)
}

func TestRender_InPlace(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.json", `{"a": "@b@", "b": "x", "n": 3}`)

	stdout, _, err := execute(t, "render", path, "--in-place")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ "+path)

	doc, err := document.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "x", doc.Root["a"])
	assert.Equal(t, json.Number("3"), doc.Root["n"])
}

func TestRender_LookupAndOut(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "input.yaml", "greeting: \"hello @user.name@\"\n")
	lookup := writeFile(t, dir, "lookup.json", `{"user": {"name": "ada"}}`)
	out := filepath.Join(dir, "out.yaml")

	_, _, err := execute(t, "render", input, "--lookup", lookup, "--out", out)
	require.NoError(t, err)

	doc, err := document.Load(out)
	require.NoError(t, err)
	assert.Equal(t, "hello ada", doc.Root["greeting"])
}

func TestRender_GlobInPlace(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a/one.yaml", "v: \"@w@\"\nw: one\n")
	b := writeFile(t, dir, "b/c/two.yaml", "v: \"@w@\"\nw: two\n")

	stdout, _, err := execute(t, "render", filepath.Join(dir, "**", "*.yaml"), "--in-place")
	require.NoError(t, err)
	assert.Contains(t, stdout, a)
	assert.Contains(t, stdout, b)

	assert.Contains(t, readFile(t, a), "v: one")
	assert.Contains(t, readFile(t, b), "v: two")
}

func TestRender_StrictUnresolved(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.yaml", "a: \"@missing@\"\n")
	before := readFile(t, path)

	_, _, err := execute(t, "render", path, "--in-place", "--strict")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "UNRESOLVED_TOKEN", ErrorCode(err))
	assert.Equal(t, before, readFile(t, path), "failed documents are not written")
}

func TestRender_SelfReferenceJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.json", `{"a": "@a@"}`)

	stdout, _, err := execute(t, "render", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.True(t, exitErr.Reported)

	resp := decodeRender(t, stdout)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SELF_REFERENCING_TOKEN", resp.Error.Code)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, ir.RunStatusFailed, resp.Data[0].Status)
	assert.Nil(t, resp.Data[0].Output)
}

func TestRender_MaxPasses(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.json", `{"a": "@b@", "b": "@c@", "c": "x"}`)

	_, _, err := execute(t, "render", path, "--max-passes", "1")
	require.Error(t, err)
	assert.Equal(t, "PASS_LIMIT_EXCEEDED", ErrorCode(err))

	stdout, _, err := execute(t, "render", path, "--max-passes", "2", "--format", "json")
	require.NoError(t, err)
	resp := decodeRender(t, stdout)
	assert.Equal(t, 2, resp.Data[0].Passes)
	assert.Equal(t, map[string]any{"a": "x", "b": "x", "c": "x"}, resp.Data[0].Output)
}

func TestRender_CommandErrors(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", "a: 1\n")
	b := writeFile(t, dir, "b.yaml", "b: 1\n")
	txt := writeFile(t, dir, "notes.txt", "hello")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"out and in-place", []string{"render", a, "--out", b, "--in-place"}, "mutually exclusive"},
		{"several to stdout", []string{"render", a, b}, "requires --in-place"},
		{"no match", []string{"render", filepath.Join(dir, "*.cue")}, "E204"},
		{"unsupported extension", []string{"render", txt}, "E201"},
		{"missing lookup", []string{"render", a, "--lookup", filepath.Join(dir, "nope.json")}, "lookup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRender_JournalsRuns(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "runs.db")
	ok := writeFile(t, dir, "ok.yaml", "a: \"@b@\"\nb: x\n")
	bad := writeFile(t, dir, "bad.yaml", "a: \"@a@\"\n")

	_, _, err := execute(t, "render", ok, "--db", db)
	require.NoError(t, err)
	_, _, err = execute(t, "render", bad, "--db", db)
	require.Error(t, err)

	stdout, _, err := execute(t, "history", "--db", db, "--format", "json")
	require.NoError(t, err)

	var history struct {
		Status string   `json:"status"`
		Data   []ir.Run `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &history))
	require.Len(t, history.Data, 2)

	byInput := map[string]ir.Run{}
	for _, run := range history.Data {
		byInput[run.Input] = run
	}

	done := byInput[ok]
	assert.Equal(t, ir.RunStatusDone, done.Status)
	assert.Equal(t, 1, done.Substitutions)
	assert.NotEmpty(t, done.InputDigest)
	assert.NotEmpty(t, done.OutputDigest)
	assert.NotEqual(t, done.InputDigest, done.OutputDigest)

	failed := byInput[bad]
	assert.Equal(t, ir.RunStatusFailed, failed.Status)
	assert.Equal(t, "SELF_REFERENCING_TOKEN", failed.ErrorCode)
	assert.Contains(t, failed.ErrorMessage, "@a@ token is self referencing")
	assert.Empty(t, failed.OutputDigest)

	stdout, _, err = execute(t, "trace", "--db", db, "--run", done.ID, "--format", "json")
	require.NoError(t, err)

	var trace struct {
		Data TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &trace))
	assert.Equal(t, done.ID, trace.Data.Run.ID)
	require.Len(t, trace.Data.Resolutions, 1)
	assert.Equal(t, ir.Resolution{
		Seq:     1,
		Pass:    1,
		Token:   "@b@",
		Path:    "b",
		Outcome: ir.OutcomeSubstituted,
		Value:   "x",
	}, trace.Data.Resolutions[0])
}
