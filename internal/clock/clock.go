// Package clock holds the millisecond timestamp used throughout the save
// document.
package clock

import (
	"encoding/json"
	"time"
)

// Timestamp is a point in time that serializes as Unix milliseconds.
type Timestamp struct {
	time.Time
}

// At truncates t to millisecond precision so a value survives a save/load
// round trip unchanged.
func At(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{time.UnixMilli(t.UnixMilli()).UTC()}
}

// Millis returns the Unix millisecond value, 0 for the zero timestamp.
func (ts Timestamp) Millis() int64 {
	if ts.IsZero() {
		return 0
	}
	return ts.UnixMilli()
}

// HoursSince returns the hours elapsed between ts and now. A zero timestamp
// counts as no time elapsed.
func (ts Timestamp) HoursSince(now time.Time) float64 {
	if ts.IsZero() {
		return 0
	}
	return now.Sub(ts.Time).Hours()
}

// Later returns whichever of a and b is later.
func Later(a, b Timestamp) Timestamp {
	if b.After(a.Time) {
		return b
	}
	return a
}

// MarshalJSON implements json.Marshaler
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.Millis())
}

// UnmarshalJSON implements json.Unmarshaler. Fractional millisecond values
// are accepted and truncated.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*ts = Timestamp{}
		return nil
	}
	var ms float64
	if err := json.Unmarshal(data, &ms); err != nil {
		return err
	}
	if ms == 0 {
		*ts = Timestamp{}
		return nil
	}
	*ts = Timestamp{time.UnixMilli(int64(ms)).UTC()}
	return nil
}
