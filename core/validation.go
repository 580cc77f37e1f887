// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Field constraints.
const (
	MaxPathLength        = 512
	MaxDescriptionLength = 2048
	MaxTagCount          = 50
	MaxTagLength         = 64

	// PlaceholderDescription is used when derivation from a path yields
	// nothing usable.
	PlaceholderDescription = "audio material"

	DefaultSearchLimit = 10
	MaxSearchLimit     = 100
)

// durationRule defines exclusive duration bounds for an audio type.
// A zero max means unbounded above.
type durationRule struct {
	min  int
	max  int
	desc string
}

var durationRules = map[AudioType]durationRule{
	AudioTypeAction:     {min: 1, max: 10, desc: "action sound effects must be between 1-10 seconds"},
	AudioTypeTransition: {min: 1, max: 10, desc: "transition sound effects must be between 1-10 seconds"},
	AudioTypeAmbient:    {min: 60, desc: "ambient sound effects must be longer than 60 seconds"},
	AudioTypeMusic:      {min: 60, desc: "music must be longer than 60 seconds"},
	AudioTypeMood:       {min: 30, desc: "mood sound effects must be longer than 30 seconds"},
}

// ValidateRecord validates a fully populated AudioRecord.
//
// Validation rules:
//   - Path non-empty after trim, at most MaxPathLength
//   - Description non-empty after trim, at most MaxDescriptionLength
//   - Type must be a member of the closed enumeration
//   - Tags must already be normalized (see NormalizeTags)
//   - Duration must be positive and inside the bounds for the type
//
// NOT validated:
//   - Vector (maintained by the catalog, may be empty before embedding)
//   - ID (0 is valid before the sequence assigns one)
func ValidateRecord(record *AudioRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}
	if err := validatePath(record.Path); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if err := validateDescription(record.Description); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if _, ok := audioTypeNames[record.Type]; !ok {
		return fmt.Errorf("%w: %w: value %d", ErrInvalidRecord, ErrInvalidAudioType, record.Type)
	}
	if err := validateTags(record.Tags); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if err := ValidateDuration(record.Type, record.Duration); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return nil
}

// ValidateDuration checks a duration against the bound table for its type.
// Bounds are exclusive on both ends.
func ValidateDuration(audioType AudioType, duration int) error {
	if duration <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, duration)
	}
	rule, ok := durationRules[audioType]
	if !ok {
		return nil
	}
	if duration <= rule.min {
		return fmt.Errorf("%w: %s, got %d seconds", ErrDurationOutOfRange, rule.desc, duration)
	}
	if rule.max != 0 && duration >= rule.max {
		return fmt.Errorf("%w: %s, got %d seconds", ErrDurationOutOfRange, rule.desc, duration)
	}
	return nil
}

// NormalizeTags trims tags, drops empties, and deduplicates with set
// semantics. The result is sorted so normalization is deterministic.
// Returns ErrTagLimitExceeded or ErrTagTooLong on violation.
func NormalizeTags(tags []string) ([]string, error) {
	if tags == nil {
		return nil, nil
	}
	seen := make(map[string]bool, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		if len([]rune(tag)) > MaxTagLength {
			return nil, fmt.Errorf("%w: %q", ErrTagTooLong, tag)
		}
		seen[tag] = true
		normalized = append(normalized, tag)
	}
	if len(normalized) > MaxTagCount {
		return nil, fmt.Errorf("%w: %d tags, maximum %d", ErrTagLimitExceeded, len(normalized), MaxTagCount)
	}
	sort.Strings(normalized)
	return normalized, nil
}

var (
	digitsRE     = regexp.MustCompile(`\d+`)
	nonLexicalRE = regexp.MustCompile(`[^\x{4e00}-\x{9fff}a-z\s]`)
	spacesRE     = regexp.MustCompile(`\s+`)
)

// DeriveDescription generates a description from the filename stem of a path.
// ASCII letters are lowercased, digits stripped, and every character that is
// not a CJK ideograph, lowercase letter, or whitespace becomes a space before
// runs of whitespace collapse. Falls back to PlaceholderDescription when the
// result is empty. Pure and idempotent.
func DeriveDescription(path string) string {
	stem := path
	if i := strings.LastIndexAny(stem, "/\\"); i >= 0 {
		stem = stem[i+1:]
	}
	if i := strings.LastIndex(stem, "."); i > 0 {
		stem = stem[:i]
	}

	description := strings.ToLower(stem)
	description = digitsRE.ReplaceAllString(description, "")
	description = nonLexicalRE.ReplaceAllString(description, " ")
	description = strings.TrimSpace(spacesRE.ReplaceAllString(description, " "))

	if description == "" {
		return PlaceholderDescription
	}
	return description
}

// NewRecord builds a validated AudioRecord from create parameters.
// The description is derived from the path when absent. The duration must
// already be known; derivation by probing the payload is the caller's job.
func NewRecord(create RecordCreate) (*AudioRecord, error) {
	path := strings.TrimSpace(create.Path)
	description := strings.TrimSpace(create.Description)
	if description == "" && path != "" {
		description = DeriveDescription(path)
	}

	tags, err := NormalizeTags(create.Tags)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	record := &AudioRecord{
		Path:        path,
		Description: description,
		Type:        create.Type,
		Tags:        tags,
		Duration:    create.Duration,
	}
	if err := ValidateRecord(record); err != nil {
		return nil, err
	}
	return record, nil
}

// ApplyPatch merges a patch into an existing record with patch-wins
// semantics, then revalidates the merged record. The existing record is not
// modified. Returns the merged record and whether the description changed;
// when it did not, the stored vector is carried over unchanged.
func ApplyPatch(existing *AudioRecord, patch *RecordPatch) (*AudioRecord, bool, error) {
	if existing == nil {
		return nil, false, fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}
	merged := existing.Clone()

	if patch.Path != nil {
		merged.Path = strings.TrimSpace(*patch.Path)
	}
	if patch.Description != nil {
		merged.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Type != nil {
		merged.Type = *patch.Type
	}
	if patch.Tags != nil {
		tags, err := NormalizeTags(patch.Tags)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
		merged.Tags = tags
	}
	if patch.Duration != nil {
		merged.Duration = *patch.Duration
	}

	if err := ValidateRecord(merged); err != nil {
		return nil, false, err
	}

	descriptionChanged := merged.Description != existing.Description
	if descriptionChanged {
		// The old vector no longer matches; the caller re-embeds before
		// persisting.
		merged.Vector = nil
	}
	return merged, descriptionChanged, nil
}

// ValidateSearchRequest normalizes and validates a search request in place.
// Tag filters are trimmed and deduplicated; an empty list after normalization
// is treated as absent. A zero limit defaults to DefaultSearchLimit.
func ValidateSearchRequest(req *SearchRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidSearchRequest)
	}
	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSearchRequest, ErrEmptyQuery)
	}
	if req.Type != nil {
		if _, ok := audioTypeNames[*req.Type]; !ok {
			return fmt.Errorf("%w: %w", ErrInvalidSearchRequest, ErrInvalidAudioType)
		}
	}

	tags, err := NormalizeTags(req.Tags)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSearchRequest, err)
	}
	if len(tags) == 0 {
		tags = nil
	}
	req.Tags = tags

	if req.MinDuration < 0 || req.MaxDuration < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSearchRequest, ErrInvalidDurationRange)
	}
	if req.MinDuration > 0 && req.MaxDuration > 0 && req.MinDuration > req.MaxDuration {
		return fmt.Errorf("%w: %w: min %d > max %d",
			ErrInvalidSearchRequest, ErrInvalidDurationRange, req.MinDuration, req.MaxDuration)
	}

	if req.Limit == 0 {
		req.Limit = DefaultSearchLimit
	}
	if req.Limit < 1 || req.Limit > MaxSearchLimit {
		return fmt.Errorf("%w: %w: %d", ErrInvalidSearchRequest, ErrInvalidLimit, req.Limit)
	}
	return nil
}

func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return fmt.Errorf("%w: %d chars, maximum %d", ErrPathTooLong, len(path), MaxPathLength)
	}
	return nil
}

func validateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return ErrEmptyDescription
	}
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: %d chars, maximum %d", ErrDescriptionTooLong, len(description), MaxDescriptionLength)
	}
	return nil
}

func validateTags(tags []string) error {
	if len(tags) > MaxTagCount {
		return fmt.Errorf("%w: %d tags, maximum %d", ErrTagLimitExceeded, len(tags), MaxTagCount)
	}
	for _, tag := range tags {
		if len([]rune(tag)) > MaxTagLength {
			return fmt.Errorf("%w: %q", ErrTagTooLong, tag)
		}
	}
	return nil
}
