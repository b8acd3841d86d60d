package datastore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CreateReferenceSample inserts a new reference sample and returns its ID.
func (s *Store) CreateReferenceSample(sample *ReferenceSample) (int, error) {
	query := `
		INSERT INTO reference_samples (name, language_code, audio_object_key, transcript, key_terms, tags, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	sample.CreatedAt = time.Now()
	sample.UpdatedAt = time.Now()

	var keyTermsJSON, tagsJSON []byte
	if len(sample.KeyTerms) > 0 {
		keyTermsJSON = sample.KeyTerms
	} else {
		keyTermsJSON = json.RawMessage("null")
	}
	if len(sample.Tags) > 0 {
		tagsJSON = sample.Tags
	} else {
		tagsJSON = json.RawMessage("null")
	}

	var id int
	err := s.db.QueryRow(
		query,
		sample.Name,
		sample.LanguageCode,
		sample.AudioObjectKey,
		sample.Transcript,
		keyTermsJSON,
		tagsJSON,
		sample.Description,
		sample.CreatedAt,
		sample.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create reference sample: %w", err)
	}
	sample.ID = id
	return id, nil
}

// GetReferenceSample retrieves a reference sample by ID.
func (s *Store) GetReferenceSample(id int) (*ReferenceSample, error) {
	query := `
		SELECT id, name, language_code, audio_object_key, transcript, key_terms, tags, description, created_at, updated_at
		FROM reference_samples
		WHERE id = $1
	`
	sample := &ReferenceSample{}
	var keyTermsJSON, tagsJSON []byte

	err := s.db.QueryRow(query, id).Scan(
		&sample.ID,
		&sample.Name,
		&sample.LanguageCode,
		&sample.AudioObjectKey,
		&sample.Transcript,
		&keyTermsJSON,
		&tagsJSON,
		&sample.Description,
		&sample.CreatedAt,
		&sample.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reference sample with ID %d not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to get reference sample: %w", err)
	}
	if keyTermsJSON != nil && string(keyTermsJSON) != "null" {
		sample.KeyTerms = json.RawMessage(keyTermsJSON)
	}
	if tagsJSON != nil && string(tagsJSON) != "null" {
		sample.Tags = json.RawMessage(tagsJSON)
	}
	return sample, nil
}

// ListReferenceSamples lists reference samples, optionally filtered by
// language_code and tags.
// languageCode: exact match for language_code.
// tagsQuery: comma-separated string of tags; uses JSONB containment `?&`.
func (s *Store) ListReferenceSamples(languageCode string, tagsQuery string) ([]*ReferenceSample, error) {
	var conditions []string
	var args []interface{}
	argID := 1

	if languageCode != "" {
		conditions = append(conditions, fmt.Sprintf("language_code = $%d", argID))
		args = append(args, languageCode)
		argID++
	}

	if tagsQuery != "" {
		var validTags []string
		for _, t := range strings.Split(tagsQuery, ",") {
			trimmed := strings.TrimSpace(t)
			if trimmed != "" {
				validTags = append(validTags, trimmed)
			}
		}
		if len(validTags) > 0 {
			conditions = append(conditions, fmt.Sprintf("tags ?& $%d::text[]", argID))
			args = append(args, validTags)
			argID++
		}
	}

	query := "SELECT id, name, language_code, audio_object_key, transcript, key_terms, tags, description, created_at, updated_at FROM reference_samples"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reference samples: %w", err)
	}
	defer rows.Close()

	samples := []*ReferenceSample{}
	for rows.Next() {
		sample := &ReferenceSample{}
		var keyTermsJSON, tagsJSON []byte
		if err := rows.Scan(
			&sample.ID,
			&sample.Name,
			&sample.LanguageCode,
			&sample.AudioObjectKey,
			&sample.Transcript,
			&keyTermsJSON,
			&tagsJSON,
			&sample.Description,
			&sample.CreatedAt,
			&sample.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reference sample row: %w", err)
		}
		if keyTermsJSON != nil && string(keyTermsJSON) != "null" {
			sample.KeyTerms = json.RawMessage(keyTermsJSON)
		}
		if tagsJSON != nil && string(tagsJSON) != "null" {
			sample.Tags = json.RawMessage(tagsJSON)
		}
		samples = append(samples, sample)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for reference samples: %w", err)
	}
	return samples, nil
}

// UpdateReferenceSample updates the metadata fields of an existing sample.
// The audio object key is immutable here; re-uploading audio creates a new
// sample.
func (s *Store) UpdateReferenceSample(id int, update map[string]interface{}) (*ReferenceSample, error) {
	var setClauses []string
	var args []interface{}
	argID := 1

	allowedFields := map[string]string{
		"name":          "string",
		"language_code": "sql.NullString",
		"transcript":    "string",
		"key_terms":     "json.RawMessage",
		"tags":          "json.RawMessage",
		"description":   "sql.NullString",
	}

	for key, value := range update {
		fieldType, ok := allowedFields[key]
		if !ok {
			continue
		}

		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", key, argID))

		switch fieldType {
		case "sql.NullString":
			if strVal, ok := value.(string); ok && strVal != "" {
				args = append(args, sql.NullString{String: strVal, Valid: true})
			} else {
				args = append(args, sql.NullString{Valid: false})
			}
		case "json.RawMessage":
			if rawMsg, ok := value.(json.RawMessage); ok && len(rawMsg) > 0 && json.Valid(rawMsg) {
				args = append(args, rawMsg)
			} else if strVal, ok := value.(string); ok && strVal != "" && json.Valid([]byte(strVal)) {
				args = append(args, json.RawMessage(strVal))
			} else {
				args = append(args, json.RawMessage("null"))
			}
		default:
			args = append(args, value)
		}
		argID++
	}

	if len(setClauses) == 0 {
		return nil, errors.New("no updatable metadata fields provided")
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, time.Now())
	argID++

	query := fmt.Sprintf("UPDATE reference_samples SET %s WHERE id = $%d", strings.Join(setClauses, ", "), argID)
	args = append(args, id)

	result, err := s.db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update reference sample with ID %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected for reference sample ID %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("reference sample with ID %d not found for update", id)
	}

	return s.GetReferenceSample(id)
}

// DeleteReferenceSample deletes a reference sample by ID.
func (s *Store) DeleteReferenceSample(id int) error {
	result, err := s.db.Exec("DELETE FROM reference_samples WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete reference sample with ID %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for reference sample ID %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("reference sample with ID %d not found for deletion", id)
	}
	return nil
}
