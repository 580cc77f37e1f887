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


package probe

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable indicates the duration could not be derived from the
	// payload at the given path.
	ErrUnavailable = errors.New("audio duration unavailable")
)

// Prober derives the duration of an audio payload.
// Implementations must be safe for concurrent use.
type Prober interface {
	// Probe returns the payload duration in seconds, rounded to the
	// nearest integer. Returns an error wrapping ErrUnavailable when the
	// payload cannot be parsed.
	Probe(ctx context.Context, path string) (int, error)
}
