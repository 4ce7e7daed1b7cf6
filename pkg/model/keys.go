package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidKey is returned when a composite key cannot be parsed.
var ErrInvalidKey = errors.New("invalid composite key")

// KeyKind identifies the sub-type encoded in a composite key.
type KeyKind string

const (
	KindProgram   KeyKind = "program"
	KindComponent KeyKind = "component"
	KindPartner   KeyKind = "partner"
	KindSector    KeyKind = "sector"
	KindSubSector KeyKind = "subsector"
	KindMarker    KeyKind = "marker"
	KindSubMarker KeyKind = "submarker"
)

var allKinds = []KeyKind{
	KindProgram, KindComponent, KindPartner,
	KindSector, KindSubSector, KindMarker, KindSubMarker,
}

// IsValid reports whether k is a known kind.
func (k KeyKind) IsValid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

// IsSubLevel reports whether the kind is the child level of a two-level
// taxonomy (component, subsector, submarker).
func (k KeyKind) IsSubLevel() bool {
	switch k {
	case KindComponent, KindSubSector, KindSubMarker:
		return true
	default:
		return false
	}
}

// Dimension returns the filter dimension a kind belongs to.
func (k KeyKind) Dimension() Dimension {
	switch k {
	case KindProgram, KindComponent:
		return DimPrograms
	case KindPartner:
		return DimPartners
	case KindSector, KindSubSector:
		return DimSectors
	case KindMarker, KindSubMarker:
		return DimMarkers
	default:
		return ""
	}
}

// Key is a selection-set key encoding both the sub-type and the numeric id,
// e.g. "sector-12" or "subsector-45".
type Key string

// NewKey builds a composite key.
func NewKey(kind KeyKind, id int) Key {
	return Key(string(kind) + "-" + strconv.Itoa(id))
}

// ParseKey splits a composite key into its kind and id.
func ParseKey(s string) (KeyKind, int, error) {
	idx := strings.LastIndexByte(s, '-')
	if idx <= 0 || idx == len(s)-1 {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	kind := KeyKind(s[:idx])
	if !kind.IsValid() {
		return "", 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidKey, kind)
	}
	id, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q: %v", ErrInvalidKey, s, err)
	}
	return kind, id, nil
}

// Kind returns the key's kind, or "" when the key is malformed.
func (k Key) Kind() KeyKind {
	kind, _, err := ParseKey(string(k))
	if err != nil {
		return ""
	}
	return kind
}

// ID returns the numeric id, or 0 when the key is malformed.
func (k Key) ID() int {
	_, id, err := ParseKey(string(k))
	if err != nil {
		return 0
	}
	return id
}

// Valid reports whether the key parses.
func (k Key) Valid() bool {
	_, _, err := ParseKey(string(k))
	return err == nil
}

func (k Key) String() string { return string(k) }
