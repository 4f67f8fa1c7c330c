package form

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Flex accepts a JSON string, number, or null and keeps its text.
type Flex string

func (f *Flex) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Flex(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return errors.New("expected string or number")
		}
		*f = Flex(n.String())
		return nil
	}
}

// RawTrip is a trip submission as it arrives over JSON. Numeric fields may
// be sent as numbers or strings.
type RawTrip struct {
	Destination Flex `json:"destination"`
	Budget      Flex `json:"budget"`
	Duration    Flex `json:"duration"`
	People      Flex `json:"people"`
	Month       Flex `json:"month"`
}

// Input converts r to form input for ParseTrip.
func (r RawTrip) Input() TripInput {
	return TripInput{
		Destination: string(r.Destination),
		Budget:      string(r.Budget),
		Duration:    string(r.Duration),
		People:      string(r.People),
		Month:       string(r.Month),
	}
}
