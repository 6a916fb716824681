package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustUnmarshal(t *testing.T, s string) Value {
	t.Helper()
	v, err := Unmarshal([]byte(s))
	require.NoError(t, err)
	return v
}

func TestMergePatch(t *testing.T) {
	doc := mustUnmarshal(t, `{"score": 10, "tags": ["a"], "old": true}`)
	patch := mustUnmarshal(t, `{"score": 11, "old": null, "new": {"x": 1}}`)

	got, err := MergePatch(doc, patch)
	require.NoError(t, err)

	want := mustUnmarshal(t, `{"score": 11, "tags": ["a"], "new": {"x": 1}}`)
	assert.True(t, Equal(want, got), "got %v", got)
}

func TestMergePatch_NonObjectTarget(t *testing.T) {
	got, err := MergePatch(Int(5), mustUnmarshal(t, `{"a": 1}`))
	require.NoError(t, err)
	assert.True(t, Equal(Object{"a": Int(1)}, got))

	got, err = MergePatch(Null{}, mustUnmarshal(t, `{"a": 1}`))
	require.NoError(t, err)
	assert.True(t, Equal(Object{"a": Int(1)}, got))
}

func TestMergePatch_NonObjectPatchReplaces(t *testing.T) {
	doc := mustUnmarshal(t, `{"a": 1}`)

	tests := []struct {
		name  string
		patch Value
		want  Value
	}{
		{"int", Int(5), Int(5)},
		{"string", String("x"), String("x")},
		{"array", Array{Int(1)}, Array{Int(1)}},
		{"null", Null{}, Null{}},
		{"nil", nil, Null{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MergePatch(doc, tt.patch)
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, got), "got %v", got)
		})
	}
}

func TestApplyPatch(t *testing.T) {
	doc := mustUnmarshal(t, `{"tags": ["a", "b"], "n": 1}`)
	ops := mustUnmarshal(t, `[
		{"op": "add", "path": "/tags/-", "value": "c"},
		{"op": "replace", "path": "/n", "value": 2},
		{"op": "remove", "path": "/tags/0"}
	]`)

	got, err := ApplyPatch(doc, ops)
	require.NoError(t, err)

	want := mustUnmarshal(t, `{"tags": ["b", "c"], "n": 2}`)
	assert.True(t, Equal(want, got), "got %v", got)
}

func TestApplyPatch_Errors(t *testing.T) {
	doc := mustUnmarshal(t, `{"n": 1}`)

	_, err := ApplyPatch(doc, Object{})
	assert.Error(t, err)

	_, err = ApplyPatch(doc, mustUnmarshal(t, `[{"op": "remove", "path": "/missing"}]`))
	assert.Error(t, err)

	_, err = ApplyPatch(doc, mustUnmarshal(t, `[{"op": "bogus", "path": "/n"}]`))
	assert.Error(t, err)
}
