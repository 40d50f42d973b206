package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemJSONRoundTrip(t *testing.T) {
	raw := []byte(`{"category":"wallet","date":"2024-06-01","id":"abc","location":{"street":"Main St","city":"Springfield"},"status":"lost","title":"Black wallet"}`)

	var item Item
	require.NoError(t, json.Unmarshal(raw, &item))
	assert.Equal(t, "abc", item.ID)
	assert.Equal(t, "lost", item.Status)
	assert.Equal(t, "2024-06-01", item.Date)
	assert.JSONEq(t, `{"street":"Main St","city":"Springfield"}`, string(item.Extra["location"]))

	out, err := json.Marshal(&item)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(out))
}

func TestItemUnknownFieldsSurviveStatusChange(t *testing.T) {
	raw := []byte(`{"date":"2024-06-01","notes":"left pocket torn","status":"lost"}`)

	var item Item
	require.NoError(t, json.Unmarshal(raw, &item))
	before := string(item.Extra["notes"])

	item.Status = "recovered"
	out, err := json.Marshal(&item)
	require.NoError(t, err)

	var reread Item
	require.NoError(t, json.Unmarshal(out, &reread))
	assert.Equal(t, "recovered", reread.Status)
	assert.Equal(t, "2024-06-01", reread.Date)
	assert.Equal(t, before, string(reread.Extra["notes"]))
}

func TestItemDateScore(t *testing.T) {
	for _, tc := range []struct {
		date string
		zero bool
	}{
		{"2024-06-01", false},
		{"2024-06-01T15:04:05Z", false},
		{"", true},
		{"yesterday-ish", true},
	} {
		item := Item{Date: tc.date}
		if tc.zero {
			assert.Zero(t, item.DateScore(), "date %q", tc.date)
		} else {
			assert.Positive(t, item.DateScore(), "date %q", tc.date)
		}
	}
}

func TestItemDateScoreOrdering(t *testing.T) {
	older := Item{Date: "2024-01-01"}
	newer := Item{Date: "2024-06-01"}
	assert.Less(t, older.DateScore(), newer.DateScore())
}

func TestRecoveredItemJSON(t *testing.T) {
	raw := []byte(`{"originalItemId":"abc","recoveredBy":{"email":"finder@example.com","name":"Finder"},"recoveredDate":"2024-07-01"}`)

	var rec RecoveredItem
	require.NoError(t, json.Unmarshal(raw, &rec))
	assert.Equal(t, "abc", rec.OriginalItemID)
	assert.Equal(t, "finder@example.com", rec.Email)
	assert.Equal(t, `"2024-07-01"`, string(rec.Extra["recoveredDate"]))

	rec.ID = "claim-1"
	out, err := json.Marshal(&rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"claim-1","originalItemId":"abc","recoveredBy":{"email":"finder@example.com","name":"Finder"},"recoveredDate":"2024-07-01"}`, string(out))
}
