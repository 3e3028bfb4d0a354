package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	for _, typ := range Types {
		got, err := ParseType(string(typ))
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}

	_, err := ParseType("widgets")
	assert.Error(t, err)
}

func TestTypesDependencyOrder(t *testing.T) {
	pos := make(map[Type]int, len(Types))
	for i, typ := range Types {
		pos[typ] = i
	}

	// Referenced types come before the types that reference them.
	assert.Less(t, pos[TypeOrganization], pos[TypeGroup])
	assert.Less(t, pos[TypeLocation], pos[TypeGroup])
	assert.Less(t, pos[TypeGroup], pos[TypeUser])
	assert.Less(t, pos[TypePillar], pos[TypeUserActivity])
	assert.Less(t, pos[TypeUser], pos[TypeUserActivity])
	assert.Less(t, pos[TypeUserActivity], pos[TypeFeedback])
}
