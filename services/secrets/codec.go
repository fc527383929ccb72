// Package secrets re-masks and unmasks the sensitive portion of a database
// record's encrypted extra blob. API clients only ever see masked values;
// on update the masked payload is merged back against the stored secrets.
package secrets

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// PasswordMask is the sentinel clients send back for secret values they were
// never shown. Any field still carrying it on update keeps its stored value.
const PasswordMask = "XXXXXXXXXX"

// UnmaskEncryptedExtra merges a masked encrypted-extra payload with the
// stored blob: fields equal to PasswordMask (at any nesting depth) are
// replaced by the stored value at the same path, everything else wins over
// the stored blob. Malformed input never fails the update; it is passed
// through as an opaque blob.
func UnmaskEncryptedExtra(stored datatypes.JSON, masked string) datatypes.JSON {
	// Absent masked payload means the client did not touch the secrets.
	if masked == "" {
		return stored
	}

	var maskedFields map[string]interface{}
	if err := json.Unmarshal([]byte(masked), &maskedFields); err != nil {
		return datatypes.JSON(masked)
	}

	var storedFields map[string]interface{}
	if len(stored) > 0 {
		if err := json.Unmarshal(stored, &storedFields); err != nil {
			storedFields = nil
		}
	}

	merged := unmask(storedFields, maskedFields)
	out, err := json.Marshal(merged)
	if err != nil {
		return datatypes.JSON(masked)
	}
	return datatypes.JSON(out)
}

// MaskEncryptedExtra renders the stored blob with every string value replaced
// by PasswordMask, for returning a record to API clients.
func MaskEncryptedExtra(stored datatypes.JSON) string {
	var fields map[string]interface{}
	if err := json.Unmarshal(stored, &fields); err != nil {
		return "{}"
	}
	out, err := json.Marshal(mask(fields))
	if err != nil {
		return "{}"
	}
	return string(out)
}

func unmask(stored, masked map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(masked))
	for key, value := range masked {
		switch v := value.(type) {
		case string:
			if v == PasswordMask {
				if prev, ok := stored[key]; ok {
					merged[key] = prev
					continue
				}
			}
			merged[key] = v
		case map[string]interface{}:
			var prev map[string]interface{}
			if nested, ok := stored[key].(map[string]interface{}); ok {
				prev = nested
			}
			merged[key] = unmask(prev, v)
		default:
			merged[key] = v
		}
	}
	return merged
}

func mask(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		switch v := value.(type) {
		case string:
			out[key] = PasswordMask
		case map[string]interface{}:
			out[key] = mask(v)
		default:
			out[key] = v
		}
	}
	return out
}
