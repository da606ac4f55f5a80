package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlots(t *testing.T) {
	slots, err := ParseSlots(" gkp:2, DEF:5 ,MID:5,FWD:3,")
	require.NoError(t, err)
	assert.Equal(t, []SlotCapacity{
		{Position: "GKP", Capacity: 2},
		{Position: "DEF", Capacity: 5},
		{Position: "MID", Capacity: 5},
		{Position: "FWD", Capacity: 3},
	}, slots)

	for _, bad := range []string{"", "MID", "MID:x", "MID:-1", ":3", "MID:1,mid:2"} {
		_, err := ParseSlots(bad)
		assert.Error(t, err, bad)
	}
}

func TestNormalizeLeagueID(t *testing.T) {
	id, ok := NormalizeLeagueID("  12345 ")
	assert.True(t, ok)
	assert.Equal(t, "12345", id)

	for _, bad := range []string{"", "12 34", "abc", "1e5", "-3"} {
		_, ok := NormalizeLeagueID(bad)
		assert.False(t, ok, bad)
	}
}

func TestOrderMarshalJSON(t *testing.T) {
	b, err := Unranked.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	b, err = Order(3).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "3", string(b))
}
