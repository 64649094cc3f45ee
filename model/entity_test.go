package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizedName(t *testing.T) {
	t.Run("Lowercases and trims", func(t *testing.T) {
		entity := &Entity{Name: "  OpenAI "}
		assert.Equal(t, "openai", entity.NormalizedName())
	})

	t.Run("Already normalized name is unchanged", func(t *testing.T) {
		entity := &Entity{Name: "openai"}
		assert.Equal(t, "openai", entity.NormalizedName())
	})

	t.Run("Internal whitespace is preserved", func(t *testing.T) {
		entity := &Entity{Name: "Grace Hopper"}
		assert.Equal(t, "grace hopper", entity.NormalizedName())
	})
}

func TestEntityTypeValid(t *testing.T) {
	for _, entityType := range []EntityType{
		EntityTypePerson, EntityTypeOrganization, EntityTypeCompany,
		EntityTypeLocation, EntityTypeTime, EntityTypeOther,
	} {
		assert.True(t, entityType.Valid(), "Expected %q to be valid", entityType)
	}

	assert.False(t, EntityType("robot").Valid())
	assert.False(t, EntityType("").Valid())
}
