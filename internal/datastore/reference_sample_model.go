package datastore

import (
	"database/sql"
	"encoding/json"
	"time"
)

// ReferenceSample maps to the reference_samples table. The audio itself
// lives in object storage; AudioObjectKey points at it.
type ReferenceSample struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	LanguageCode   sql.NullString  `json:"language_code,omitempty"`
	AudioObjectKey string          `json:"audio_object_key"`
	Transcript     string          `json:"transcript"`
	KeyTerms       json.RawMessage `json:"key_terms,omitempty"` // e.g., ["vaporeon", "pokemon"]
	Tags           json.RawMessage `json:"tags,omitempty"`      // e.g., ["short_audio", "noisy"]
	Description    sql.NullString  `json:"description,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// KeyTermList decodes the key_terms JSONB column into a string slice.
func (s *ReferenceSample) KeyTermList() ([]string, error) {
	return unmarshalStringSlice(s.KeyTerms)
}

func unmarshalStringSlice(data json.RawMessage) ([]string, error) {
	if data == nil || string(data) == "null" || string(data) == "" {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func marshalStringSlice(values []string) json.RawMessage {
	if values == nil {
		return json.RawMessage("[]")
	}
	data, err := json.Marshal(values)
	if err != nil {
		return json.RawMessage("[]")
	}
	return json.RawMessage(data)
}
