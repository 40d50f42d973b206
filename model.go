package main

import (
	"encoding/json"
	"time"
)

// Item is a lost/found object report. The server only interprets the id,
// status and date fields; everything else the client sends is carried as-is
// in Extra and round-trips byte-for-byte.
type Item struct {
	ID     string
	Status string
	Date   string
	Extra  map[string]json.RawMessage
}

// UnmarshalJSON splits the known fields off the open attribute bag.
func (it *Item) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for key, dst := range map[string]*string{"id": &it.ID, "status": &it.Status, "date": &it.Date} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err == nil {
			delete(fields, key)
		}
	}
	it.Extra = fields
	return nil
}

// MarshalJSON merges the known fields back into the attribute bag.
func (it Item) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(it.Extra)+3)
	for k, v := range it.Extra {
		fields[k] = v
	}
	for key, val := range map[string]string{"id": it.ID, "status": it.Status, "date": it.Date} {
		if val == "" {
			continue
		}
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		fields[key] = raw
	}
	return json.Marshal(fields)
}

// DateScore converts the item's date into a sort score for the date index.
// Unparsable or absent dates score zero and sort last under date_desc.
func (it *Item) DateScore() float64 {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, it.Date); err == nil {
			return float64(t.Unix())
		}
	}
	return 0
}

// RecoveredItem asserts that a given item was recovered by a specific
// person. The server reads originalItemId and recoveredBy.email; the rest of
// the claim is opaque.
type RecoveredItem struct {
	ID             string
	OriginalItemID string
	RecoveredBy    json.RawMessage
	Email          string
	Extra          map[string]json.RawMessage
}

func (rec *RecoveredItem) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for key, dst := range map[string]*string{"id": &rec.ID, "originalItemId": &rec.OriginalItemID} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err == nil {
			delete(fields, key)
		}
	}
	if raw, ok := fields["recoveredBy"]; ok {
		rec.RecoveredBy = raw
		delete(fields, "recoveredBy")
		var by struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(raw, &by); err == nil {
			rec.Email = by.Email
		}
	}
	rec.Extra = fields
	return nil
}

func (rec RecoveredItem) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(rec.Extra)+3)
	for k, v := range rec.Extra {
		fields[k] = v
	}
	for key, val := range map[string]string{"id": rec.ID, "originalItemId": rec.OriginalItemID} {
		if val == "" {
			continue
		}
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		fields[key] = raw
	}
	if len(rec.RecoveredBy) > 0 {
		fields["recoveredBy"] = rec.RecoveredBy
	}
	return json.Marshal(fields)
}
