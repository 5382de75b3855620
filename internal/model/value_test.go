package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseToken(t *testing.T) {
	tests := []struct {
		in   string
		want Value
	}{
		{"1.0", Scalar(1)},
		{"-2.5e3", Scalar(-2500)},
		{"+.5", Scalar(0.5)},
		{"6378.1366", Scalar(6378.1366)},
		{"1.5D3", Scalar(1500)},
		{"3d-2", Scalar(0.03)},
		{"42", Scalar(42)},
		{"12abc", Text("12abc")},
		{"TEXT", Text("TEXT")},
		{"@2000-JAN-01", Text("@2000-JAN-01")},
		{"1.2.3", Text("1.2.3")},
		{"e5", Text("e5")},
		{"", Text("")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseToken(tt.in)
			assert.True(t, got.Equal(tt.want), "ParseToken(%q) = %v (%s), want %v (%s)",
				tt.in, got, got.Kind(), tt.want, tt.want.Kind())
		})
	}
}

func TestParseToken_Overflow(t *testing.T) {
	got := ParseToken("1e999")
	f, ok := got.AsFloat()
	require.True(t, ok)
	assert.True(t, math.IsInf(f, 1))
}

func TestVector_EmptyIsNotNil(t *testing.T) {
	v := Vector()
	assert.True(t, v.IsVector())
	assert.Equal(t, 0, v.Len())
	assert.NotNil(t, v.Elems())

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestValue_Floats(t *testing.T) {
	fs, ok := Floats(1, 2, 3).Floats()
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, fs)

	_, ok = Vector(Scalar(1), Text("x")).Floats()
	assert.False(t, ok, "mixed vector must not report as numeric")

	fs, ok = Scalar(7).Floats()
	require.True(t, ok)
	assert.Equal(t, []float64{7}, fs)
}

func TestValue_Append(t *testing.T) {
	got := Floats(1, 2).Append(Vector(Scalar(3), Text("A")))
	want := Vector(Scalar(1), Scalar(2), Scalar(3), Text("A"))
	assert.True(t, got.Equal(want), "got %v", got)

	got = Text("A").Append(Text("B"))
	assert.True(t, got.Equal(Vector(Text("A"), Text("B"))), "got %v", got)
}

func TestValue_String(t *testing.T) {
	v := Vector(Scalar(1), Scalar(2.5), Text("TEXT"))
	assert.Equal(t, "(1 2.5 TEXT)", v.String())
	assert.Equal(t, "()", Vector().String())
}

func TestValue_MarshalJSON(t *testing.T) {
	v := Vector(Scalar(1), Text("A"), Vector(Scalar(2)))
	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `[1, "A", [2]]`, string(data))

	data, err = json.Marshal(Scalar(math.Inf(1)))
	require.NoError(t, err)
	assert.Equal(t, `"+Inf"`, string(data))
}

func TestValue_MarshalYAML(t *testing.T) {
	data, err := yaml.Marshal(map[string]Value{"BODY399_RADII": Floats(6378.1, 6378.1, 6356.8)})
	require.NoError(t, err)

	var back map[string][]float64
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, []float64{6378.1, 6378.1, 6356.8}, back["BODY399_RADII"])
}

func TestQuantity_Marshal(t *testing.T) {
	q := Quantity{Value: Floats(1, 2, 3), Unit: UnitKilometers}
	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":[1,2,3],"unit":"km"}`, string(data))

	data, err = json.Marshal(Quantity{Value: Text("x")})
	require.NoError(t, err)
	assert.JSONEq(t, `"x"`, string(data))

	assert.Equal(t, "(1 2 3) km", q.String())
}
