package schema

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBooleanCodec(t *testing.T) {
	assert.Equal(t, false, Boolean.ParseForStore("false"))
	assert.Equal(t, true, Boolean.ParseForStore("true"))
	assert.Equal(t, true, Boolean.ParseForStore(true))
	assert.Equal(t, false, Boolean.ParseForStore("TRUE"))
	assert.Equal(t, false, Boolean.ParseForStore("1"))
	assert.Equal(t, false, Boolean.ParseForStore([]string{"true"}))
	assert.Equal(t, false, Boolean.ParseForStore(nil))

	assert.Equal(t, "true", Boolean.ParseForLocation(true))
	assert.Equal(t, "false", Boolean.ParseForLocation(false))
	assert.Equal(t, "true", Boolean.ParseForLocation("yes"))
	assert.Equal(t, "false", Boolean.ParseForLocation(""))
}

func TestStringCodec(t *testing.T) {
	assert.Equal(t, "Alice", String.ParseForStore("Alice"))
	assert.Equal(t, []string{"a", "b"}, String.ParseForStore([]string{"a", "b"}))
	assert.Equal(t, "42", String.ParseForStore(float64(42)))
	assert.Equal(t, "", String.ParseForStore(nil))

	assert.Equal(t, "shoes", String.ParseForLocation("shoes"))
	assert.Equal(t, []string{"1", "2.5"}, String.ParseForLocation([]float64{1, 2.5}))
	assert.Equal(t, "true", String.ParseForLocation(true))
}

func TestNumberCodec(t *testing.T) {
	t.Run("store", func(t *testing.T) {
		assert.Equal(t, float64(30), Number.ParseForStore("30"))
		assert.Equal(t, float64(42), Number.ParseForStore("42abc"))
		assert.Equal(t, float64(-7), Number.ParseForStore("  -7"))
		assert.Equal(t, float64(3), Number.ParseForStore(3.9))
		assert.Equal(t, float64(5), Number.ParseForStore(5))
		assert.True(t, math.IsNaN(Number.ParseForStore("abc").(float64)))
		assert.True(t, math.IsNaN(Number.ParseForStore("").(float64)))
		assert.Equal(t, []float64{1, 2}, Number.ParseForStore([]string{"1", "2"}))
	})

	t.Run("location", func(t *testing.T) {
		assert.Equal(t, "42", Number.ParseForLocation(float64(42)))
		assert.Equal(t, "42", Number.ParseForLocation(42))
		assert.Equal(t, "", Number.ParseForLocation(0))
		assert.Equal(t, "", Number.ParseForLocation(math.NaN()))
		assert.Equal(t, "", Number.ParseForLocation(nil))
		assert.Equal(t, []string{"1", "0"}, Number.ParseForLocation([]float64{1, 0}))
	})
}

func TestIdentityCodec(t *testing.T) {
	var zero Codec
	assert.Equal(t, KindIdentity, zero.Kind)
	assert.Equal(t, "x", zero.ParseForStore("x"))
	assert.Equal(t, 12, Identity.ParseForStore(12))
	assert.Equal(t, "12", Identity.ParseForLocation(12))
	assert.Equal(t, "", Identity.ParseForLocation(nil))
}

func TestCustomCodec(t *testing.T) {
	upper := Custom(
		func(v any) any { return "<" + Stringify(v) + ">" },
		func(v any) any { return 7 },
	)
	assert.Equal(t, KindCustom, upper.Kind)
	assert.Equal(t, "<a>", upper.ParseForStore("a"))
	assert.Equal(t, "7", upper.ParseForLocation("a"))

	half := Custom(nil, nil)
	assert.Equal(t, "a", half.ParseForStore("a"))
	assert.Equal(t, "a", half.ParseForLocation("a"))
}

func TestRoundTrip(t *testing.T) {
	assert.Equal(t, true, Boolean.ParseForStore(Boolean.ParseForLocation(true)))
	assert.Equal(t, float64(42), Number.ParseForStore(Number.ParseForLocation(float64(42))))
	assert.Equal(t, "hi there", String.ParseForStore(String.ParseForLocation("hi there")))
}

func TestTruthyAndEmpty(t *testing.T) {
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy(0.0))
	assert.False(t, Truthy(math.NaN()))
	assert.True(t, Truthy([]string{}))
	assert.True(t, Truthy("0"))

	assert.True(t, IsEmpty([]string{}))
	assert.True(t, IsEmpty([]float64{}))
	assert.False(t, IsEmpty([]float64{0}))
	assert.True(t, IsEmpty(math.NaN()))
	assert.False(t, IsEmpty(true))
}

func TestParseKind(t *testing.T) {
	for name, want := range map[string]Kind{
		"boolean": KindBoolean,
		"Bool":    KindBoolean,
		"string":  KindString,
		"number":  KindNumber,
		"":        KindIdentity,
	} {
		got, err := ParseKind(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseKind("date")
	require.Error(t, err)
	assert.Equal(t, "number", KindNumber.String())
}

func TestFromKinds(t *testing.T) {
	sch, err := FromKinds(map[string]string{"name": "string", "age": "number"})
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "name"}, sch.Fields())

	c, ok := sch.Lookup("age")
	require.True(t, ok)
	assert.Equal(t, KindNumber, c.Kind)

	_, err = FromKinds(map[string]string{"when": "date"})
	require.Error(t, err)
}

func TestSchemaMerge(t *testing.T) {
	merged := Schema{"a": String, "b": String}.Merge(Schema{"b": Number})
	assert.Equal(t, KindString, merged["a"].Kind)
	assert.Equal(t, KindNumber, merged["b"].Kind)
}

// Two conversions are chosen on purpose rather than following a plain
// toString/string-compare rule:
//   - Number and Identity lists go to the location as a list, which the
//     query encoder writes as repeated keys ("ids=1&ids=2"), not as one
//     comma-joined value ("ids=1,2"). Repeated keys read back as a list.
//   - Boolean.ParseForStore accepts the Go bool true as well as the string
//     "true", so initial state given as a bool is not silently flipped.
func TestListAndBoolConversionChoices(t *testing.T) {
	assert.Equal(t, []string{"1", "2"}, Number.ParseForLocation([]float64{1, 2}))
	assert.Equal(t, []string{"a", "b"}, Identity.ParseForLocation([]any{"a", "b"}))
	assert.Equal(t, []float64{1, 2}, Number.ParseForStore(Number.ParseForLocation([]float64{1, 2})))

	assert.Equal(t, true, Boolean.ParseForStore(true))
	assert.Equal(t, false, Boolean.ParseForStore(false))
}
