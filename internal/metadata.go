package internal

import (
	"encoding/json"
	"fmt"
)

// StringifyMetadata converts free-form JSON metadata into the string map
// accepted by the payment provider. Strings are kept as they are, any other
// value is encoded as JSON text. A nil map returns an empty map.
func StringifyMetadata(metadata map[string]any) map[string]string {
	res := make(map[string]string, len(metadata))
	for k, v := range metadata {
		switch value := v.(type) {
		case string:
			res[k] = value
		default:
			b, err := json.Marshal(value)
			if err != nil {
				res[k] = fmt.Sprint(value)
				continue
			}
			res[k] = string(b)
		}
	}
	return res
}

// MergeMetadata returns a new map with the entries of base overwritten by
// the ones of fixed.
func MergeMetadata(base, fixed map[string]string) map[string]string {
	res := make(map[string]string, len(base)+len(fixed))
	for k, v := range base {
		res[k] = v
	}
	for k, v := range fixed {
		res[k] = v
	}
	return res
}
