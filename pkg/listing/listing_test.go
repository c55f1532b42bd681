package listing

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var utilityKinds = []string{"ELECTRICITY", "WATER", "OTHER"}

func TestPageOffsetAndTotals(t *testing.T) {
	cases := []struct {
		page, limit, offset int
	}{
		{1, 20, 0},
		{2, 20, 20},
		{5, 7, 28},
		{10, 100, 900},
	}
	for _, tc := range cases {
		p := Page{Number: tc.page, Limit: tc.limit}
		assert.Equal(t, tc.offset, p.Offset())
	}

	p := Page{Number: 1, Limit: 20}
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(20))
	assert.Equal(t, 2, p.TotalPages(21))
	assert.Equal(t, &Meta{Page: 1, Limit: 20, Total: 41, TotalPages: 3}, p.Meta(41))
}

func TestNormalizerPageDefaults(t *testing.T) {
	n := NewNormalizer(url.Values{})
	assert.Equal(t, Page{Number: 1, Limit: 20}, n.Page())
	assert.Empty(t, n.Warnings())
}

func TestNormalizerPageFallbacks(t *testing.T) {
	n := NewNormalizer(url.Values{"page": {"abc"}, "limit": {"500"}})
	page := n.Page()
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, MaxLimit, page.Limit)
	require.Len(t, n.Warnings(), 2)
	assert.Equal(t, "page", n.Warnings()[0].Field)
	assert.Equal(t, "limit", n.Warnings()[1].Field)

	n = NewNormalizer(url.Values{"page": {"0"}, "limit": {"-3"}})
	assert.Equal(t, Page{Number: 1, Limit: 20}, n.Page())
	assert.Len(t, n.Warnings(), 2)
}

func TestNormalizerPageNeverOverflowsOffset(t *testing.T) {
	n := NewNormalizer(url.Values{"page": {"9223372036854775807"}, "limit": {"20"}})
	page := n.Page()
	assert.Equal(t, MaxOffset/20+1, page.Number)
	assert.GreaterOrEqual(t, page.Offset(), 0)
	assert.LessOrEqual(t, page.Offset(), MaxOffset)
	require.Len(t, n.Warnings(), 1)
	assert.Equal(t, "page", n.Warnings()[0].Field)

	assert.Equal(t, MaxOffset, Page{Number: math.MaxInt, Limit: 100}.Offset())
	assert.Equal(t, MaxOffset/100+1, NewPage(math.MaxInt, 100).Number)
}

func TestNormalizerWithLimits(t *testing.T) {
	n := NewNormalizer(url.Values{"limit": {"60"}}).WithLimits(10, 50)
	assert.Equal(t, Page{Number: 1, Limit: 50}, n.Page())

	n = NewNormalizer(url.Values{}).WithLimits(10, 50)
	assert.Equal(t, 10, n.Page().Limit)
}

func TestNormalizerInt(t *testing.T) {
	n := NewNormalizer(url.Values{"month": {"3"}, "year": {"NaN"}, "bad": {"13"}})
	require.NotNil(t, n.Int("month"))
	assert.Equal(t, 3, *n.Int("month"))
	assert.Nil(t, n.Int("year"))
	assert.Nil(t, n.IntInRange("bad", 1, 12))
	assert.Nil(t, n.Int("missing"))
	assert.Len(t, n.Warnings(), 2)
}

func TestNormalizerFloat(t *testing.T) {
	n := NewNormalizer(url.Values{"minFee": {"1500000.5"}, "maxFee": {"NaN"}, "fee": {"Inf"}, "other": {"abc"}})
	require.NotNil(t, n.Float("minFee"))
	assert.Equal(t, 1500000.5, *n.Float("minFee"))
	assert.Nil(t, n.Float("maxFee"))
	assert.Nil(t, n.Float("fee"))
	assert.Nil(t, n.Float("other"))
	assert.Nil(t, n.Float("missing"))

	warnings := n.Warnings()
	require.Len(t, warnings, 3)
	assert.Equal(t, Warning{Field: "maxFee", Value: "NaN", Reason: "not a number"}, warnings[0])
}

func TestNormalizerEnum(t *testing.T) {
	n := NewNormalizer(url.Values{"type": {"electricity"}})
	assert.Equal(t, EnumFilter{Values: []string{"ELECTRICITY"}}, n.Enum("type", utilityKinds, "OTHER"))

	n = NewNormalizer(url.Values{"type": {"OTHER"}})
	filter := n.Enum("type", utilityKinds, "OTHER")
	assert.Empty(t, filter.Values)
	assert.Equal(t, []string{"ELECTRICITY", "WATER"}, filter.Exclude)
	assert.Empty(t, n.Warnings())
}

func TestNormalizerEnumMalformed(t *testing.T) {
	for _, raw := range []string{"[object Object]", `{"value":"WATER"}`, `["WATER"]`, "GAS"} {
		n := NewNormalizer(url.Values{"type": {raw}})
		filter := n.Enum("type", utilityKinds, "OTHER")
		assert.False(t, filter.Active(), raw)
		require.Len(t, n.Warnings(), 1, raw)
		assert.Equal(t, raw, n.Warnings()[0].Value)
	}
}

func TestNormalizerUUIDBoolDate(t *testing.T) {
	n := NewNormalizer(url.Values{
		"roomId":  {"6F9619FF-8B86-D011-B42D-00CF4FC964FF"},
		"bad":     {"42"},
		"active":  {"yes"},
		"enabled": {"1"},
		"from":    {"2024-05-01"},
		"to":      {"yesterday"},
	})
	assert.Equal(t, "6f9619ff-8b86-d011-b42d-00cf4fc964ff", n.UUID("roomId"))
	assert.Equal(t, "", n.UUID("bad"))
	assert.Nil(t, n.Bool("active"))
	require.NotNil(t, n.Bool("enabled"))
	assert.True(t, *n.Bool("enabled"))
	require.NotNil(t, n.Date("from"))
	assert.Equal(t, 2024, n.Date("from").Year())
	assert.Nil(t, n.Date("to"))
	assert.Len(t, n.Warnings(), 3)
}

func TestPredicateComposition(t *testing.T) {
	p := NewPredicate()
	p.Eq("ur.room_id", "room-1").
		Enum("ur.type", EnumFilter{Exclude: []string{"ELECTRICITY", "WATER"}}).
		AnyContains("leak", "ur.notes", "r.number")

	assert.Equal(t, " WHERE ur.room_id = $1 AND ur.type NOT IN ($2, $3) AND (ur.notes ILIKE $4 OR r.number ILIKE $4)", p.Where())
	assert.Equal(t, []interface{}{"room-1", "ELECTRICITY", "WATER", "%leak%"}, p.Args())
	assert.Equal(t, 3, p.Len())
}

func TestPredicateInitialArgsAndCond(t *testing.T) {
	p := NewPredicate("ACTIVE")
	p.Cond("(t.from_room_id = %[1]s OR t.to_room_id = %[1]s)", "room-9").Raw("r.occupancy < r.capacity")
	assert.Equal(t, " WHERE (t.from_room_id = $2 OR t.to_room_id = $2) AND r.occupancy < r.capacity", p.Where())
	assert.Equal(t, []interface{}{"ACTIVE", "room-9"}, p.Args())
}

func TestPredicateEmpty(t *testing.T) {
	p := NewPredicate()
	p.In("x").NotIn("y").AnyContains("z")
	assert.Equal(t, "", p.Where())
	assert.Empty(t, p.Args())
}

func TestPredicateEscapesLikePatterns(t *testing.T) {
	p := NewPredicate().Contains("notes", `50%_off\`)
	assert.Equal(t, []interface{}{`%50\%\_off\\%`}, p.Args())
}

func TestRoomSearchNumberWithBuilding(t *testing.T) {
	p := NewPredicate().RoomSearch("306 (B3)", "r.number", "b.name")
	assert.Equal(t, " WHERE r.number ILIKE $1 AND b.name ILIKE $2", p.Where())
	assert.Equal(t, []interface{}{"%306%", "%B3%"}, p.Args())
}

func TestRoomSearchLettersOnly(t *testing.T) {
	p := NewPredicate().RoomSearch("Tòa A", "r.number", "b.name")
	assert.Equal(t, " WHERE b.name ILIKE $1", p.Where())
	assert.Equal(t, []interface{}{"%Tòa A%"}, p.Args())
}

func TestRoomSearchPlainNumber(t *testing.T) {
	p := NewPredicate().RoomSearch("B3-306", "r.number", "b.name")
	assert.Equal(t, " WHERE r.number ILIKE $1", p.Where())
	assert.Equal(t, []interface{}{"%B3-306%"}, p.Args())

	empty := NewPredicate().RoomSearch("   ", "r.number", "b.name")
	assert.Equal(t, 0, empty.Len())
}
