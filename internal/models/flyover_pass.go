package models

import (
	"encoding/json"
	"time"
)

// FlyoverPass is one predicted ISS pass over a location
//
// The record shape belongs to the upstream service. Risetime and Duration are
// decoded for convenience, but the upstream JSON is kept and written back
// unmodified by MarshalJSON so unknown fields survive the round trip.
type FlyoverPass struct {
	Risetime int64 `json:"risetime"` // Unix timestamp (seconds) when the ISS rises
	Duration int64 `json:"duration"` // Visibility window in seconds

	raw json.RawMessage
}

// NewFlyoverPass builds a pass from its two known fields
func NewFlyoverPass(risetime, duration int64) FlyoverPass {
	return FlyoverPass{Risetime: risetime, Duration: duration}
}

// RiseTime returns the rise time as a time.Time in UTC
func (p FlyoverPass) RiseTime() time.Time {
	return time.Unix(p.Risetime, 0).UTC()
}

// DurationTime returns the visibility window as a time.Duration
func (p FlyoverPass) DurationTime() time.Duration {
	return time.Duration(p.Duration) * time.Second
}

// Raw returns the JSON the pass was decoded from (nil for passes built in code)
func (p FlyoverPass) Raw() json.RawMessage {
	return p.raw
}

// UnmarshalJSON keeps a copy of data and extracts risetime/duration when they are numbers
func (p *FlyoverPass) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	*p = FlyoverPass{raw: append(json.RawMessage(nil), data...)}

	if v, ok := probe["risetime"]; ok {
		p.Risetime = numberField(v)
	}
	if v, ok := probe["duration"]; ok {
		p.Duration = numberField(v)
	}
	return nil
}

// MarshalJSON re-emits the upstream bytes when present
func (p FlyoverPass) MarshalJSON() ([]byte, error) {
	if len(p.raw) > 0 {
		return p.raw, nil
	}
	return json.Marshal(struct {
		Risetime int64 `json:"risetime"`
		Duration int64 `json:"duration"`
	}{p.Risetime, p.Duration})
}

// numberField reads an integer-valued JSON number, returning 0 for anything else
func numberField(v json.RawMessage) int64 {
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return 0
	}
	return int64(f)
}
