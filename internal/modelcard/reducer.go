// Package modelcard edits ordered collections of user-defined model cards.
// Every operation addresses cards by id, never by position.
package modelcard

import (
	"slices"

	"llmsettings/pkg/types"
)

// Op is one edit applied by Reduce. The concrete types are Add, Update,
// Delete and Replace.
type Op interface {
	isOp()
}

// Add appends Card, or replaces the card with the same id in place.
type Add struct{ Card types.ModelCard }

// Update applies Patch to the card with id ID.
type Update struct {
	ID    string
	Patch types.ModelCardPatch
}

// Delete removes the card with id ID.
type Delete struct{ ID string }

// Replace swaps the whole collection for Cards. Later duplicates of an id
// overwrite earlier ones at the earlier position.
type Replace struct{ Cards []types.ModelCard }

func (Add) isOp()     {}
func (Update) isOp()  {}
func (Delete) isOp()  {}
func (Replace) isOp() {}

// Reduce returns the collection produced by applying op to cards. cards is
// never modified. Update and Delete of an unknown id return an equal copy.
func Reduce(cards []types.ModelCard, op Op) []types.ModelCard {
	out := slices.Clone(cards)
	switch op := op.(type) {
	case Add:
		if i := indexOf(out, op.Card.ID); i >= 0 {
			out[i] = op.Card
			return out
		}
		return append(out, op.Card)
	case Update:
		if i := indexOf(out, op.ID); i >= 0 {
			out[i] = applyPatch(out[i], op.Patch)
		}
		return out
	case Delete:
		return slices.DeleteFunc(out, func(c types.ModelCard) bool { return c.ID == op.ID })
	case Replace:
		next := make([]types.ModelCard, 0, len(op.Cards))
		for _, c := range op.Cards {
			if i := indexOf(next, c.ID); i >= 0 {
				next[i] = c
				continue
			}
			next = append(next, c)
		}
		return next
	}
	return out
}

func indexOf(cards []types.ModelCard, id string) int {
	return slices.IndexFunc(cards, func(c types.ModelCard) bool { return c.ID == id })
}

func applyPatch(c types.ModelCard, p types.ModelCardPatch) types.ModelCard {
	if p.DisplayName != nil {
		c.DisplayName = *p.DisplayName
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Tokens != nil {
		c.Tokens = *p.Tokens
	}
	if p.FunctionCall != nil {
		c.FunctionCall = *p.FunctionCall
	}
	if p.Vision != nil {
		c.Vision = *p.Vision
	}
	if p.Files != nil {
		c.Files = *p.Files
	}
	if p.Enabled != nil {
		c.Enabled = *p.Enabled
	}
	if p.Hidden != nil {
		c.Hidden = *p.Hidden
	}
	if p.Legacy != nil {
		c.Legacy = *p.Legacy
	}
	if p.DeploymentName != nil {
		c.DeploymentName = *p.DeploymentName
	}
	return c
}
