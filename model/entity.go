package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntityType classifies a named entity. The enumeration is open: extractors
// may produce other values, which are stored as-is.
type EntityType string

const (
	EntityTypePerson       EntityType = "person"
	EntityTypeOrganization EntityType = "organization"
	EntityTypeCompany      EntityType = "company"
	EntityTypeLocation     EntityType = "location"
	EntityTypeTime         EntityType = "time"
	EntityTypeOther        EntityType = "other"
)

// Valid reports whether the type is one of the known enumeration values.
func (t EntityType) Valid() bool {
	switch t {
	case EntityTypePerson, EntityTypeOrganization, EntityTypeCompany,
		EntityTypeLocation, EntityTypeTime, EntityTypeOther:
		return true
	}
	return false
}

// Entity represents a named entity extracted from chunk text. An entity is
// shared across chunks and documents; its lifetime is independent of any one
// chunk. Embedding is the vector of the entity name.
type Entity struct {
	ID        int64      `json:"id"`
	RID       uuid.UUID  `json:"rid"`
	Name      string     `json:"name"`
	Type      EntityType `json:"entity_type"`
	Embedding []float32  `json:"embedding,omitempty"`
	Metadata  Metadata   `json:"metadata,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NormalizedName returns the name form used to find merge candidates:
// lowercased with surrounding whitespace removed.
func (e *Entity) NormalizedName() string {
	return strings.ToLower(strings.TrimSpace(e.Name))
}
