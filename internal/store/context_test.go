package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueJSONShapes(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte(`"빨강"`), &v))
	assert.Equal(t, KindString, v.Kind())
	assert.Equal(t, "빨강", v.String())

	require.NoError(t, json.Unmarshal([]byte(`["a.png", "b.png"]`), &v))
	assert.Equal(t, KindList, v.Kind())
	assert.Equal(t, []string{"a.png", "b.png"}, v.List())
	assert.Equal(t, "a.png, b.png", v.String())

	// Non-string scalars are kept as literal text
	require.NoError(t, json.Unmarshal([]byte(`12900`), &v))
	assert.Equal(t, "12900", v.String())

	out, err := json.Marshal(ListValue([]string{"x"}))
	require.NoError(t, err)
	assert.JSONEq(t, `["x"]`, string(out))
}

func TestContextHasIgnoresTruthiness(t *testing.T) {
	c := Context{"reference_url": StringValue("")}

	assert.True(t, c.Has("reference_url"))
	assert.False(t, c.Has("product_name"))
	assert.Equal(t, "", c.GetString("reference_url", "fallback"))
	assert.Equal(t, "fallback", c.GetString("product_name", "fallback"))
}

func TestContextCloneIsIndependent(t *testing.T) {
	original := Context{"product_name": StringValue("A")}
	clone := original.Clone()
	clone["product_name"] = StringValue("B")
	clone["mood"] = StringValue("심플한")

	assert.Equal(t, "A", original.GetString("product_name", ""))
	assert.False(t, original.Has("mood"))
	assert.Equal(t, "B", clone.GetString("product_name", ""))
}
