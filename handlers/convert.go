// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/registry"
	"github.com/danielhkuo/quickly-vote/workflow"
)

// A cancelled slot is the only one with an empty description, since
// registration rejects empty descriptions.
func toProposal(index int, p workflow.Proposal) models.Proposal {
	return models.Proposal{
		ProposalID:  index,
		Description: p.Description,
		VoteCount:   p.VoteCount,
		Cancelled:   p.Description == "",
	}
}

func toProposals(ps []workflow.Proposal) []models.Proposal {
	out := make([]models.Proposal, len(ps))
	for i, p := range ps {
		out[i] = toProposal(i, p)
	}
	return out
}

func toWorkflow(s workflow.Snapshot) models.Workflow {
	out := models.Workflow{
		ID:          s.ID,
		Title:       s.Title,
		Admin:       s.Admin,
		Phase:       s.Phase.String(),
		VotersCount: s.VotersCount,
		Proposals:   toProposals(s.Proposals),
		EventCount:  s.Seq,
		CreatedAt:   s.CreatedAt,
	}
	if s.WinningProposalID.IsSome() {
		id := s.WinningProposalID.Unwrap()
		out.WinningProposalID = &id
	}
	return out
}

func toVoter(identity string, v workflow.Voter) models.Voter {
	out := models.Voter{
		Identity:     identity,
		IsRegistered: v.IsRegistered,
		HasVoted:     v.HasVoted,
	}
	if v.VotedProposalID.IsSome() {
		id := v.VotedProposalID.Unwrap()
		out.VotedProposalID = &id
	}
	return out
}

// toRanking numbers places in list order, so equal counts still get distinct
// places.
func toRanking(wf *workflow.Workflow, ranked []workflow.RankedProposal) models.Ranking {
	out := models.Ranking{
		WorkflowID: wf.ID(),
		Phase:      wf.Phase().String(),
		Proposals:  make([]models.RankedProposal, len(ranked)),
	}
	for i, rp := range ranked {
		out.Proposals[i] = models.RankedProposal{
			Proposal: toProposal(rp.ProposalID, rp.Proposal),
			Place:    i + 1,
			Ordinal:  humanize.Ordinal(i + 1),
		}
	}
	return out
}

func toEvent(ev workflow.Event) models.Event {
	return models.Event{
		Seq:         ev.Seq,
		Kind:        string(ev.Kind),
		Identity:    ev.Identity,
		ProposalID:  ev.ProposalID,
		Description: ev.Description,
		From:        ev.From.String(),
		To:          ev.To.String(),
		At:          ev.At,
	}
}

func toMembership(m registry.Membership) models.Membership {
	return models.Membership{
		WorkflowID: m.WorkflowID,
		Title:      m.Title,
		Role:       m.Role,
		Phase:      m.Phase.String(),
		CreatedAt:  m.CreatedAt,
	}
}
