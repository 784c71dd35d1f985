package catalog

import (
	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// movieFields has Movie's layout without its JSON methods.
type movieFields Movie

var movieKeys = []string{"_id", "title", "plot", "genres", "runtime", "cast", "directors", "year", "comments"}

// MarshalJSON renders the typed fields and Extra as one object. Typed fields
// win on a key clash.
func (m Movie) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(movieFields(m))
	if err != nil || len(m.Extra) == 0 {
		return base, err
	}

	var known map[string]json.RawMessage
	if err := json.Unmarshal(base, &known); err != nil {
		return nil, err
	}
	merged := make(map[string]any, len(known)+len(m.Extra))
	for k, v := range m.Extra {
		merged[k] = v
	}
	for k, v := range known {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// UnmarshalJSON fills the typed fields and collects every other key in Extra.
func (m *Movie) UnmarshalJSON(data []byte) error {
	var fields movieFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var rest map[string]any
	if err := json.Unmarshal(data, &rest); err != nil {
		return err
	}
	for _, k := range movieKeys {
		delete(rest, k)
	}
	fields.Extra = nil
	if len(rest) > 0 {
		fields.Extra = bson.M(rest)
	}

	*m = Movie(fields)
	return nil
}
