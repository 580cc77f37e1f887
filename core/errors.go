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

import "errors"

// Domain validation errors
var (
	// ErrInvalidRecord indicates an AudioRecord failed validation.
	ErrInvalidRecord = errors.New("invalid audio record")

	// ErrEmptyPath indicates the Path field is empty after trimming.
	ErrEmptyPath = errors.New("path cannot be empty")

	// ErrPathTooLong indicates the Path field exceeds MaxPathLength.
	ErrPathTooLong = errors.New("path too long")

	// ErrEmptyDescription indicates the Description field is empty after trimming.
	ErrEmptyDescription = errors.New("description cannot be empty")

	// ErrDescriptionTooLong indicates the Description field exceeds MaxDescriptionLength.
	ErrDescriptionTooLong = errors.New("description too long")

	// ErrInvalidAudioType indicates a value outside the closed AudioType enumeration.
	ErrInvalidAudioType = errors.New("invalid audio type")

	// ErrTagLimitExceeded indicates more than MaxTagCount tags after deduplication.
	ErrTagLimitExceeded = errors.New("tag limit exceeded")

	// ErrTagTooLong indicates a tag exceeds MaxTagLength.
	ErrTagTooLong = errors.New("tag too long")

	// ErrInvalidDuration indicates a non-positive duration.
	ErrInvalidDuration = errors.New("duration must be positive")

	// ErrDurationOutOfRange indicates a duration outside the bounds for its type.
	ErrDurationOutOfRange = errors.New("duration out of range for type")

	// ErrDurationUnavailable indicates the duration could not be derived from
	// the audio payload.
	ErrDurationUnavailable = errors.New("duration unavailable")

	// ErrInvalidSearchRequest indicates a SearchRequest failed validation.
	ErrInvalidSearchRequest = errors.New("invalid search request")

	// ErrEmptyQuery indicates the search query is empty.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrInvalidLimit indicates a limit outside [1, MaxSearchLimit].
	ErrInvalidLimit = errors.New("invalid result limit")

	// ErrInvalidDurationRange indicates min_duration > max_duration or a
	// non-positive bound.
	ErrInvalidDurationRange = errors.New("invalid duration range")
)
