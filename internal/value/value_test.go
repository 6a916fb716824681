package value

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	// Compile-time check that every variant satisfies Value
	var _ Value = Null{}
	var _ Value = Bool(true)
	var _ Value = Int(42)
	var _ Value = Float(1.5)
	var _ Value = String("test")
	var _ Value = Array{String("a"), Int(1)}
	var _ Value = Object{"key": String("value")}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		v    Value
		want Kind
	}{
		{nil, KindNull},
		{Null{}, KindNull},
		{Bool(false), KindBool},
		{Int(3), KindInt},
		{Float(0.5), KindFloat},
		{String(""), KindString},
		{Array{}, KindArray},
		{Object{}, KindObject},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.v))
		})
	}
}

func TestObjectSortedKeys(t *testing.T) {
	obj := Object{
		"zebra":  String("z"),
		"apple":  String("a"),
		"banana": String("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestObjectSortedKeysRFC8785Order(t *testing.T) {
	// 'A' = 65, 'a' = 97
	obj := Object{
		"a":  Int(1),
		"A":  Int(2),
		"aa": Int(3),
		"aA": Int(4),
		"Aa": Int(5),
		"AA": Int(6),
	}

	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestCompareKeysSurrogates(t *testing.T) {
	// U+1F600 encodes as surrogates 0xD83D 0xDE00, which sort before U+FF5E
	// in UTF-16 even though its UTF-8 bytes sort after.
	assert.Less(t, compareKeysRFC8785("\U0001F600", "～"), 0)
	assert.Greater(t, "\U0001F600", "～")
}

func TestCloneIsDeep(t *testing.T) {
	orig := Object{
		"nested": Object{"count": Int(1)},
		"list":   Array{Int(1), Object{"x": Bool(true)}},
	}

	cp := orig.Clone()
	cp["nested"].(Object)["count"] = Int(2)
	cp["list"].(Array)[1].(Object)["x"] = Bool(false)

	assert.Equal(t, Int(1), orig["nested"].(Object)["count"])
	assert.Equal(t, Bool(true), orig["list"].(Array)[1].(Object)["x"])
}

func TestCloneNil(t *testing.T) {
	assert.Equal(t, Null{}, Clone(nil))
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"null vs nil", Null{}, nil, true},
		{"int vs float same", Int(2), Float(2), true},
		{"int vs float different", Int(2), Float(2.5), false},
		{"string vs int", String("1"), Int(1), false},
		{"arrays", Array{Int(1), String("a")}, Array{Int(1), String("a")}, true},
		{"array order matters", Array{Int(1), Int(2)}, Array{Int(2), Int(1)}, false},
		{"objects ignore insertion order", NewObject(O("a", Int(1)), O("b", Int(2))), NewObject(O("b", Int(2)), O("a", Int(1))), true},
		{"objects missing key", Object{"a": Null{}}, Object{"b": Null{}}, false},
		{"nested", Object{"a": Object{"b": Int(1)}}, Object{"a": Object{"b": Int(1)}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.b, tt.a))
		})
	}
}

func TestAsInt(t *testing.T) {
	n, ok := AsInt(Int(7))
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)

	n, ok = AsInt(Float(3))
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)

	_, ok = AsInt(Float(3.5))
	assert.False(t, ok)

	_, ok = AsInt(String("7"))
	assert.False(t, ok)

	_, ok = AsInt(Null{})
	assert.False(t, ok)
}

func TestMarshalDeterministic(t *testing.T) {
	obj := Object{
		"b": Int(2),
		"a": Array{Null{}, Bool(true), Float(1.5), String("<&>")},
		"c": Object{},
	}

	data, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":[null,true,1.5,"<&>"],"b":2,"c":{}}`, string(data))

	// Repeated encoding yields identical bytes
	for i := 0; i < 10; i++ {
		again, err := Marshal(obj)
		require.NoError(t, err)
		assert.Equal(t, data, again)
	}
}

func TestMarshalRejectsNaN(t *testing.T) {
	_, err := Marshal(Array{Float(0), Object{"x": Float(nan())}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "array[1]")
}

func TestMarshalRejectsInvalidUTF8(t *testing.T) {
	tests := map[string]Value{
		"string":        String("a\xffb"),
		"key":           Object{"bad\xfekey": Int(1)},
		"nested string": Array{Object{"k": String("\xc3")}},
	}
	for name, v := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Marshal(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid UTF-8")
		})
	}

	data, err := Marshal(String("caf\u00e9 \U0001F600"))
	require.NoError(t, err)
	assert.Equal(t, "\"caf\u00e9 \U0001F600\"", string(data))
}

func TestMarshalIndent(t *testing.T) {
	data, err := MarshalIndent(Object{"pings": Int(5)}, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"pings\": 5\n}", string(data))
}

func TestUnmarshalVariants(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{`null`, Null{}},
		{`true`, Bool(true)},
		{`5`, Int(5)},
		{`-12`, Int(-12)},
		{`1.25`, Float(1.25)},
		{`1e3`, Float(1000)},
		{`9223372036854775807`, Int(9223372036854775807)},
		{`"hi"`, String("hi")},
		{`[1,"a",null]`, Array{Int(1), String("a"), Null{}}},
		{`{"a":{"b":[true]}}`, Object{"a": Object{"b": Array{Bool(true)}}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Unmarshal([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ``},
		{"truncated object", `{"a":1`},
		{"trailing data", `{"a":1} {"b":2}`},
		{"garbage", `nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestUnmarshalAllowsSurroundingWhitespace(t *testing.T) {
	got, err := Unmarshal([]byte("  {\"pings\":5}\n"))
	require.NoError(t, err)
	assert.Equal(t, Object{"pings": Int(5)}, got)
}

func TestCounterRoundTrip(t *testing.T) {
	// Small counters must survive encode/decode exactly.
	for _, n := range []int64{0, 1, 41, 1 << 40, -7} {
		data, err := Marshal(Int(n))
		require.NoError(t, err)
		got, err := Unmarshal(data)
		require.NoError(t, err)
		assert.Equal(t, Int(n), got)
	}
}

func TestStdlibInterop(t *testing.T) {
	obj := Object{"missing": Null{}, "list": Array{Int(1)}}

	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"list":[1],"missing":null}`, string(data))

	var decoded Object
	require.NoError(t, json.Unmarshal(data, &decoded))
	_, isNull := decoded["missing"].(Null)
	assert.True(t, isNull, "expected Null, got %T", decoded["missing"])

	var arr Array
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &arr))
}

func TestFromGoAndToGo(t *testing.T) {
	in := map[string]any{
		"n":     3,
		"f":     2.5,
		"whole": 4.0,
		"s":     "x",
		"b":     true,
		"nil":   nil,
		"list":  []any{int64(1), "two"},
	}

	v, err := FromGo(in)
	require.NoError(t, err)

	obj := v.(Object)
	assert.Equal(t, Int(3), obj["n"])
	assert.Equal(t, Float(2.5), obj["f"])
	assert.Equal(t, Int(4), obj["whole"])
	assert.Equal(t, Null{}, obj["nil"])
	assert.Equal(t, Array{Int(1), String("two")}, obj["list"])

	back := ToGo(v).(map[string]any)
	assert.Equal(t, int64(3), back["n"])
	assert.Nil(t, back["nil"])
	assert.Equal(t, []any{int64(1), "two"}, back["list"])
}

func TestFromGoRejectsUnsupported(t *testing.T) {
	_, err := FromGo(struct{}{})
	assert.Error(t, err)

	_, err = FromGo([]any{uint64(1 << 63)})
	assert.Error(t, err)
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}
