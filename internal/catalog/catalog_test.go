// Package catalog_test tests the preset speaker catalog.
package catalog_test

import (
	"testing"

	"github.com/book-expert/voice-service/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_KnownSpeaker(t *testing.T) {
	t.Parallel()

	speaker, ok := catalog.Lookup("Ryan")
	require.True(t, ok)
	assert.Equal(t, "Ryan", speaker.Name)
	assert.Equal(t, "English", speaker.Language)
}

func TestLookup_UnknownSpeaker(t *testing.T) {
	t.Parallel()

	_, ok := catalog.Lookup("nobody")
	assert.False(t, ok)
}

func TestSpeakers_ReturnsCopy(t *testing.T) {
	t.Parallel()

	first := catalog.Speakers()
	first[0].Name = "mutated"

	second := catalog.Speakers()
	assert.Equal(t, "Ryan", second[0].Name)
}

func TestCatalogDescriptors(t *testing.T) {
	t.Parallel()

	assert.Len(t, catalog.Modes(), 3)
	assert.Len(t, catalog.Models(), 2)
	assert.Contains(t, catalog.Languages(), "Auto")
}
