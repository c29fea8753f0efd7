package deck

import (
	"math/rand"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateProducesFortyCardsPerPlayer(t *testing.T) {
	d, err := Generate(3)
	require.NoError(t, err)
	assert.Equal(t, 120, d.Len())

	for p := 0; p < 3; p++ {
		seen := make(map[int]bool)
		for n := 0; n < CardsPerPlayer; n++ {
			c, err := d.Card(p*CardsPerPlayer + n)
			require.NoError(t, err)
			assert.Equal(t, p, c.OwnerPlayer)
			seen[c.Number] = true
		}
		assert.Len(t, seen, 10, "player %d's slice must cover every number 1..10:\n%s", p, spew.Sdump(seen))
	}
}

func TestGenerateRejectsZeroPlayers(t *testing.T) {
	_, err := Generate(0)
	assert.Error(t, err)
}

func TestDealPlayerPartitionIsDisjointAndCovers40(t *testing.T) {
	d, err := Generate(1)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(7))

	deal, err := d.DealPlayer(rng, 0, 3)
	require.NoError(t, err)

	all := make(map[int]bool)
	add := func(idx int) {
		if all[idx] {
			t.Fatalf("duplicate index %d across deal partitions:\n%s", idx, spew.Sdump(deal))
		}
		all[idx] = true
	}
	for _, i := range deal.InHand {
		add(i)
	}
	for _, i := range deal.Blitz {
		add(i)
	}
	for _, seed := range deal.PostPiles {
		for _, i := range seed {
			add(i)
		}
	}
	assert.Len(t, all, CardsPerPlayer)
	assert.Len(t, deal.Blitz, 10)
	assert.Len(t, deal.PostPiles, 3)
}

func TestDealPlayerRejectsOversizedPostPiles(t *testing.T) {
	d, err := Generate(1)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))
	_, err = d.DealPlayer(rng, 0, 31)
	assert.Error(t, err)
}

func TestDealPlayerIsDeterministicForAFixedSeed(t *testing.T) {
	d, err := Generate(1)
	require.NoError(t, err)

	first, err := d.DealPlayer(rand.New(rand.NewSource(99)), 0, 3)
	require.NoError(t, err)
	second, err := d.DealPlayer(rand.New(rand.NewSource(99)), 0, 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
