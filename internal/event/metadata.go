package event

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// Category-specific attendee metadata. The metadata column is free-form
// JSON; these structs capture the keys the close side effects read.
// Unknown keys pass through untouched.

// RefugeMetadata is read for attendees of refuge ceremony events.
type RefugeMetadata struct {
	RefugeName string `json:"refuge_name"`
	Completed  bool   `json:"completed"`
}

// BodhipushpanjaliMetadata is read for attendees of bodhipushpanjali
// events.
type BodhipushpanjaliMetadata struct {
	HasTakenRefuge bool   `json:"has_taken_refuge"`
	ReferralMedium string `json:"referral_medium"`
}

// decodeMetadata round-trips a JSONMap into a typed struct. A nil map
// decodes into the zero value.
func decodeMetadata(m datatypes.JSONMap, out interface{}) error {
	if m == nil {
		return nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// mergeMetadata applies patch onto base key by key (shallow). A nil
// value in the patch deletes the key. The base map is not mutated.
func mergeMetadata(base datatypes.JSONMap, patch map[string]interface{}) datatypes.JSONMap {
	merged := datatypes.JSONMap{}
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range patch {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return merged
}
