// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package workflow

import "golang.org/x/exp/slices"

// RankedProposal is a proposal together with its index in the proposal list.
type RankedProposal struct {
	ProposalID int
	Proposal
}

// RankedProposals returns every slot ordered by vote count, highest first.
// The sort is stable: equal counts keep ascending index order. Cancelled
// slots are included with a zero count.
func (w *Workflow) RankedProposals() []RankedProposal {
	w.mu.Lock()
	ranked := make([]RankedProposal, len(w.proposals))
	for i, p := range w.proposals {
		ranked[i] = RankedProposal{ProposalID: i, Proposal: p}
	}
	w.mu.Unlock()

	slices.SortStableFunc(ranked, func(a, b RankedProposal) int {
		return b.VoteCount - a.VoteCount
	})
	return ranked
}
