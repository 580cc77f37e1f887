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

package badger

import (
	"strconv"

	"github.com/poiesic/audex/core"
)

// Key prefixes for the audio record keyspace. The record prefix ends in a
// colon so that prefix scans over records never pick up the sequence key.
const (
	recordKeyPrefix = "audrec:"
	pathKeyPrefix   = "audpath:"
	sequenceKey     = "audrecseq"
)

func recordKey(id core.ID) []byte {
	return []byte(recordKeyPrefix + strconv.FormatUint(uint64(id), 10))
}

func pathKey(path string) []byte {
	return []byte(pathKeyPrefix + strconv.FormatUint(core.PathKey(path), 10))
}
