package modelcard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"llmsettings/pkg/types"
)

func TestReduce_AddToEmpty(t *testing.T) {
	got := Reduce(nil, Add{Card: types.ModelCard{ID: "a"}})
	assert.Equal(t, []types.ModelCard{{ID: "a"}}, got)
}

func TestReduce_AddExistingReplacesInPlace(t *testing.T) {
	cards := []types.ModelCard{{ID: "first"}, {ID: "a", DisplayName: "x"}, {ID: "last"}}
	got := Reduce(cards, Add{Card: types.ModelCard{ID: "a", DisplayName: "y"}})
	assert.Equal(t, []types.ModelCard{{ID: "first"}, {ID: "a", DisplayName: "y"}, {ID: "last"}}, got)

	single := Reduce(Reduce(nil, Add{Card: types.ModelCard{ID: "a", DisplayName: "x"}}),
		Add{Card: types.ModelCard{ID: "a", DisplayName: "y"}})
	assert.Equal(t, []types.ModelCard{{ID: "a", DisplayName: "y"}}, single)
}

func TestReduce_UpdateNamedFieldsOnly(t *testing.T) {
	cards := []types.ModelCard{
		{ID: "a", DisplayName: "A", Tokens: 4096, Vision: true},
		{ID: "b", DisplayName: "B"},
	}
	got := Reduce(cards, Update{ID: "a", Patch: types.ModelCardPatch{
		DisplayName:  types.Ptr("A2"),
		FunctionCall: types.Ptr(true),
	}})
	assert.Equal(t, []types.ModelCard{
		{ID: "a", DisplayName: "A2", Tokens: 4096, Vision: true, FunctionCall: true},
		{ID: "b", DisplayName: "B"},
	}, got)
	// input untouched
	assert.Equal(t, "A", cards[0].DisplayName)
}

func TestReduce_UpdateUnknownIDIsNoop(t *testing.T) {
	cards := []types.ModelCard{{ID: "a", DisplayName: "A"}}
	got := Reduce(cards, Update{ID: "missing", Patch: types.ModelCardPatch{DisplayName: types.Ptr("zzz")}})
	assert.Equal(t, cards, got)
}

func TestReduce_DeleteIsIdempotent(t *testing.T) {
	cards := []types.ModelCard{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	once := Reduce(cards, Delete{ID: "b"})
	twice := Reduce(once, Delete{ID: "b"})
	assert.Equal(t, []types.ModelCard{{ID: "a"}, {ID: "c"}}, once)
	assert.Equal(t, once, twice)
	assert.Len(t, cards, 3)
}

func TestReduce_DeleteUnknownIDIsNoop(t *testing.T) {
	cards := []types.ModelCard{{ID: "a"}}
	assert.Equal(t, cards, Reduce(cards, Delete{ID: "nope"}))
}

func TestReduce_ReplaceDeduplicatesByID(t *testing.T) {
	got := Reduce([]types.ModelCard{{ID: "old"}}, Replace{Cards: []types.ModelCard{
		{ID: "a", DisplayName: "1"},
		{ID: "b"},
		{ID: "a", DisplayName: "2"},
	}})
	assert.Equal(t, []types.ModelCard{{ID: "a", DisplayName: "2"}, {ID: "b"}}, got)
}

func TestReduce_ReplaceWithNothingClears(t *testing.T) {
	got := Reduce([]types.ModelCard{{ID: "a"}}, Replace{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReduce_AddDoesNotAliasInput(t *testing.T) {
	cards := make([]types.ModelCard, 1, 4)
	cards[0] = types.ModelCard{ID: "a"}
	got := Reduce(cards, Add{Card: types.ModelCard{ID: "b"}})
	got[0].DisplayName = "changed"
	assert.Equal(t, "", cards[0].DisplayName)
}
