package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	q := Query{
		Filters: []Filter{
			{Col: "published", Opr: OpEquals, Value: true},
			{Col: "dashboard_title", Opr: OpTitleOrSlug, Value: "sales"},
		},
		OrderColumn:    "dashboard_title",
		OrderDirection: Asc,
		Page:           2,
		PageSize:       25,
	}

	raw, err := q.Encode()
	require.NoError(t, err)

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, q.OrderColumn, got.OrderColumn)
	assert.Equal(t, 50, got.Offset())
	require.Len(t, got.Filters, 2)
	assert.Equal(t, true, got.Filters[0].Value)
	assert.Equal(t, "sales", got.Filters[1].Value)
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "malformed json", raw: "{"},
		{name: "unknown operator", raw: `{"filters":[{"col":"id","opr":"like","value":1}]}`},
		{name: "missing column", raw: `{"filters":[{"opr":"eq","value":1}]}`},
		{name: "bad direction", raw: `{"order_direction":"up"}`},
		{name: "negative page", raw: `{"page":-1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	q, err := Decode("  ")
	require.NoError(t, err)
	assert.Equal(t, Query{}, q)
}

func TestIDs(t *testing.T) {
	raw := EncodeIDs([]int64{3, 4})
	assert.Equal(t, "[3,4]", raw)

	ids, err := DecodeIDs(raw)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, ids)

	_, err = DecodeIDs("3,4")
	assert.Error(t, err)
}

func TestValueConversions(t *testing.T) {
	b, err := BoolValue("true")
	require.NoError(t, err)
	assert.True(t, b)

	b, err = BoolValue(float64(0))
	require.NoError(t, err)
	assert.False(t, b)

	_, err = BoolValue([]int{1})
	assert.Error(t, err)

	id, err := IntValue(float64(7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	_, err = IntValue(1.5)
	assert.Error(t, err)

	_, err = IntValue(math.Inf(1))
	assert.Error(t, err)

	id, err = IntValue("12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	assert.Equal(t, "3", StringValue(3))
	assert.Equal(t, "", StringValue(nil))
}

func TestClone(t *testing.T) {
	q := Query{Filters: []Filter{{Col: "id", Opr: OpEquals, Value: 1}}}
	c := q.Clone()
	c.Filters[0].Col = "slug"
	assert.Equal(t, "id", q.Filters[0].Col)
}

func TestDecodeRelated(t *testing.T) {
	raw, err := RelatedQuery{Filter: "ada", Page: 1, PageSize: 10}.Encode()
	require.NoError(t, err)

	got, err := DecodeRelated(raw)
	require.NoError(t, err)
	assert.Equal(t, RelatedQuery{Filter: "ada", Page: 1, PageSize: 10}, got)

	_, err = DecodeRelated(`{"page":-2}`)
	assert.Error(t, err)
}
