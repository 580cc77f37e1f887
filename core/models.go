package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is the surrogate key for catalog entities. IDs are generated from a
// database sequence and exposed to callers as opaque tokens.
type ID uint64

// PathKey returns a deterministic 64-bit fingerprint of a storage path using
// BLAKE2b hashing. It keys the unique-path index; identical paths always
// produce identical keys.
func PathKey(path string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(path))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// AudioType classifies an audio asset and drives duration validation.
type AudioType int

const (
	// AudioTypeMusic is background music.
	AudioTypeMusic AudioType = iota + 1
	// AudioTypeAmbient is a long-running environmental bed.
	AudioTypeAmbient
	// AudioTypeMood is a sustained emotional underscore.
	AudioTypeMood
	// AudioTypeAction is a short action sound effect.
	AudioTypeAction
	// AudioTypeTransition is a short scene-change effect.
	AudioTypeTransition
)

var audioTypeNames = map[AudioType]string{
	AudioTypeMusic:      "music",
	AudioTypeAmbient:    "ambient",
	AudioTypeMood:       "mood",
	AudioTypeAction:     "action",
	AudioTypeTransition: "transition",
}

// String returns the canonical lowercase name of the type.
func (t AudioType) String() string {
	if name, ok := audioTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseAudioType parses a canonical type name.
// Returns ErrInvalidAudioType for anything outside the closed enumeration.
func ParseAudioType(s string) (AudioType, error) {
	for t, name := range audioTypeNames {
		if s == name {
			return t, nil
		}
	}
	return 0, ErrInvalidAudioType
}

// AudioRecord is a cataloged audio asset. The Vector field is maintained by
// the catalog and always reflects the current Description; callers never
// set it directly.
type AudioRecord struct {
	Id          ID
	Path        string
	Description string
	Type        AudioType
	Tags        []string
	Duration    int // seconds
	Vector      []float32
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// Clone returns a deep copy of the record.
func (r *AudioRecord) Clone() *AudioRecord {
	dup := *r
	if r.Tags != nil {
		dup.Tags = append([]string(nil), r.Tags...)
	}
	if r.Vector != nil {
		dup.Vector = append([]float32(nil), r.Vector...)
	}
	return &dup
}

// RecordCreate carries caller-supplied fields for a new record.
// Description and Duration are optional; absent values are derived before the
// record enters the index.
type RecordCreate struct {
	Path        string
	Description string // derived from the path stem when empty
	Type        AudioType
	Tags        []string
	Duration    int // derived by probing the audio payload when zero
}

// RecordPatch carries a partial update. Nil fields keep the existing value.
type RecordPatch struct {
	Path        *string
	Description *string
	Type        *AudioType
	Tags        []string // nil keeps existing tags; empty slice clears them
	Duration    *int
}

// IsEmpty reports whether the patch changes nothing.
func (p *RecordPatch) IsEmpty() bool {
	return p.Path == nil && p.Description == nil && p.Type == nil &&
		p.Tags == nil && p.Duration == nil
}

// SearchRequest holds parameters for a hybrid search.
// Zero values mean "no filter" for the optional fields.
type SearchRequest struct {
	Query       string
	Type        *AudioType // nil matches every type
	Tags        []string   // all listed tags must be present
	MinDuration int        // inclusive, 0 = unbounded
	MaxDuration int        // inclusive, 0 = unbounded
	Limit       int        // defaults to DefaultSearchLimit
}

// Match is a single sub-index hit. Scores are internal to the sub-index that
// produced them and are not comparable across sub-indexes.
type Match struct {
	Id    ID
	Score float32
}

// SearchResult pairs a record with its fused relevance score.
type SearchResult struct {
	Record *AudioRecord
	Score  float32
}

// FieldSchema describes one indexed field for stats reporting.
type FieldSchema struct {
	Type        string
	Description string
}

// CatalogStats summarizes the state of the catalog.
type CatalogStats struct {
	TotalCount int
	TypeCounts map[string]int
	Schema     map[string]FieldSchema
}
