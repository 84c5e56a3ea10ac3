package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProfile(t *testing.T) {
	p, err := NewProfile(DefaultDocumentModel, RoleDocument)
	require.NoError(t, err)
	assert.Equal(t, "document:solar-embedding-1-large-passage", p.Name)
	assert.Equal(t, "solar-embedding-1-large", p.ModelFamily())

	_, err = NewProfile("", RoleQuery)
	assert.Error(t, err)

	_, err = NewProfile("m", Role("writer"))
	assert.Error(t, err)
}

func TestProfile_Compatible(t *testing.T) {
	doc := Profile{Name: "d", Model: DefaultDocumentModel, Role: RoleDocument}
	query := Profile{Name: "q", Model: DefaultQueryModel, Role: RoleQuery}
	other := Profile{Name: "o", Model: "text-embedding-3-small", Role: RoleQuery}
	pinned := Profile{Name: "p", Model: "text-embedding-3-small", Role: RoleQuery, Family: "solar-embedding-1-large"}

	assert.True(t, doc.Compatible(query))
	assert.False(t, doc.Compatible(other))
	assert.True(t, doc.Compatible(pinned))
}

func TestProfiles_Validate(t *testing.T) {
	doc := NewHashEmbedder(Profile{Name: "d", Model: "m", Role: RoleDocument}, 4)
	query := NewHashEmbedder(Profile{Name: "q", Model: "m", Role: RoleQuery}, 4)

	assert.NoError(t, Profiles{Document: doc, Query: query}.Validate())
	assert.Error(t, Profiles{Document: doc}.Validate())
	assert.Error(t, Profiles{Document: doc, Query: doc}.Validate())
	assert.Error(t, Profiles{Document: query, Query: doc}.Validate())
}
