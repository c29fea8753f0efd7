package card

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenderForNumberAlternatesByParity(t *testing.T) {
	assert.Equal(t, Girl, GenderForNumber(1))
	assert.Equal(t, Boy, GenderForNumber(2))
	assert.Equal(t, Girl, GenderForNumber(9))
	assert.Equal(t, Boy, GenderForNumber(10))
}

func TestNewDerivesGenderFromNumber(t *testing.T) {
	c := New(4, 0, 7, Blue)
	assert.Equal(t, Girl, c.Gender)
}

func TestColorValid(t *testing.T) {
	assert.True(t, Red.Valid())
	assert.False(t, Color("purple").Valid())
}

func TestCardJSONRoundTrip(t *testing.T) {
	original := New(12, 2, 6, Green)

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Card
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestCardUnmarshalRejectsUnknownColor(t *testing.T) {
	var c Card
	err := json.Unmarshal([]byte(`{"index":0,"player_id":0,"number":1,"color":"purple","gender":"girl"}`), &c)
	assert.Error(t, err)
}

func TestCardUnmarshalIgnoresWireGenderRederivesFromNumber(t *testing.T) {
	var c Card
	// number 2 is Boy; a malicious/stale wire payload claiming Girl must not
	// survive decode.
	err := json.Unmarshal([]byte(`{"index":0,"player_id":0,"number":2,"color":"red","gender":"girl"}`), &c)
	require.NoError(t, err)
	assert.Equal(t, Boy, c.Gender)
}
