package main

import (
	"encoding/json"
	"io"
)

// OutputJSON writes structured data as JSON to w. Compact output drops the
// indentation.
func OutputJSON(w io.Writer, data interface{}, compact bool) error {
	encoder := json.NewEncoder(w)
	if !compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}
