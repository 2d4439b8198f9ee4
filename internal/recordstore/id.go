package recordstore

import (
	"bytes"
	"encoding/json"
)

// ID is a record identifier as found in a persisted collection. Files edited
// by hand may carry bare numeric ids; those decode to their literal spelling
// (101 becomes "101"). Any other non-string value decodes as the empty id,
// which never matches a lookup.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*id = ""
		return nil
	}

	switch c := data[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*id = ID(n.String())
	default:
		*id = ""
	}
	return nil
}
