// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/moznion/go-optional"
)

// Voter is the registry entry for one identity.
type Voter struct {
	IsRegistered    bool
	HasVoted        bool
	VotedProposalID optional.Option[int]
}

// Proposal is one slot in the proposal list. A cancelled slot keeps its
// index with an empty description and a zero count.
type Proposal struct {
	Description string `json:"description"`
	VoteCount   int    `json:"vote_count"`
}

// Snapshot is a consistent copy of the workflow state.
type Snapshot struct {
	ID                string
	Admin             string
	Title             string
	CreatedAt         time.Time
	Phase             Phase
	VotersCount       int
	Proposals         []Proposal
	WinningProposalID optional.Option[int]
	Seq               uint64
}

type Option func(*Workflow)

func WithJournal(j Journal) Option {
	return func(w *Workflow) { w.journal = j }
}

func WithNotifier(n Notifier) Option {
	return func(w *Workflow) { w.notifier = n }
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithTitle(title string) Option {
	return func(w *Workflow) { w.title = strings.TrimSpace(title) }
}

func WithCreatedAt(t time.Time) Option {
	return func(w *Workflow) { w.createdAt = t.UTC() }
}

// WithClock overrides the clock used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		if now != nil {
			w.now = now
		}
	}
}

// Workflow is a single voting workflow. All methods are safe for concurrent
// use; one mutex guards the whole state.
type Workflow struct {
	mu sync.Mutex

	id        string
	admin     string
	title     string
	createdAt time.Time

	phase             Phase
	voters            map[string]Voter
	proposals         []Proposal
	votersCount       int
	winningProposalID int

	seq    uint64
	events []Event

	journal  Journal
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a workflow in RegisteringVoters with admin registered as the
// first voter.
func New(id, admin string, opts ...Option) *Workflow {
	w := &Workflow{
		id:     id,
		admin:  strings.TrimSpace(admin),
		voters: make(map[string]Voter),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.createdAt.IsZero() {
		w.createdAt = w.now().UTC()
	}
	w.voters[w.admin] = Voter{IsRegistered: true}
	w.votersCount = 1
	return w
}

// Restore rebuilds a workflow from journalled events. Events are applied
// without being journalled or notified again.
func Restore(id, admin string, events []Event, opts ...Option) (*Workflow, error) {
	w := New(id, admin, opts...)
	for _, ev := range events {
		if ev.Seq != w.seq+1 {
			return nil, fmt.Errorf("restore workflow %s: event seq %d after %d", id, ev.Seq, w.seq)
		}
		if err := w.check(ev); err != nil {
			return nil, fmt.Errorf("restore workflow %s: event %d: %w", id, ev.Seq, err)
		}
		w.apply(ev)
	}
	return w, nil
}

func (w *Workflow) ID() string           { return w.id }
func (w *Workflow) Admin() string        { return w.admin }
func (w *Workflow) Title() string        { return w.title }
func (w *Workflow) CreatedAt() time.Time { return w.createdAt }

// RegisterVoter adds identity to the voter registry.
func (w *Workflow) RegisterVoter(ctx context.Context, caller, identity string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	identity = strings.TrimSpace(identity)
	if err := w.requireAdmin(caller); err != nil {
		return w.reject("register_voter", caller, err)
	}
	if identity == "" {
		return w.reject("register_voter", caller, fmt.Errorf("%w: identity is required", ErrInvalidArgument))
	}
	if err := w.requirePhase(RegisteringVoters); err != nil {
		return w.reject("register_voter", caller, err)
	}
	if w.voters[identity].IsRegistered {
		return w.reject("register_voter", caller, fmt.Errorf("%w: %s", ErrDuplicateRegistration, identity))
	}
	return w.commit(ctx, Event{Kind: EventVoterRegistered, Identity: identity})
}

func (w *Workflow) StartProposalRegistration(ctx context.Context, caller string) error {
	return w.transition(ctx, caller, RegisteringVoters, true)
}

func (w *Workflow) EndProposalRegistration(ctx context.Context, caller string) error {
	return w.transition(ctx, caller, ProposalsRegistrationStarted, false)
}

func (w *Workflow) StartVotingSession(ctx context.Context, caller string) error {
	return w.transition(ctx, caller, ProposalsRegistrationEnded, true)
}

func (w *Workflow) EndVotingSession(ctx context.Context, caller string) error {
	return w.transition(ctx, caller, VotingSessionStarted, false)
}

// TallyVotes moves the workflow to VotesTallied and fixes the winner: the
// first proposal whose count is strictly greater than every earlier one,
// starting from a baseline of zero votes at index 0.
func (w *Workflow) TallyVotes(ctx context.Context, caller string) error {
	return w.transition(ctx, caller, VotingSessionEnded, false)
}

// transition moves from the required phase to the next one.
func (w *Workflow) transition(ctx context.Context, caller string, from Phase, needVoters bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	to, _ := from.Next()
	op := "transition_to_" + to.String()
	if err := w.requireAdmin(caller); err != nil {
		return w.reject(op, caller, err)
	}
	if err := w.requirePhase(from); err != nil {
		return w.reject(op, caller, err)
	}
	if needVoters && w.votersCount <= 1 {
		return w.reject(op, caller, fmt.Errorf("%w: have %d", ErrInsufficientVoters, w.votersCount))
	}
	return w.commit(ctx, Event{Kind: EventWorkflowStatusChange, From: from, To: to})
}

// RegisterProposal appends a proposal and returns its index.
func (w *Workflow) RegisterProposal(ctx context.Context, caller, description string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireVoter(caller); err != nil {
		return 0, w.reject("register_proposal", caller, err)
	}
	if err := w.requirePhase(ProposalsRegistrationStarted); err != nil {
		return 0, w.reject("register_proposal", caller, err)
	}
	if strings.TrimSpace(description) == "" {
		return 0, w.reject("register_proposal", caller, fmt.Errorf("%w: description is required", ErrInvalidArgument))
	}
	index := len(w.proposals)
	err := w.commit(ctx, Event{
		Kind:        EventProposalRegistered,
		Identity:    strings.TrimSpace(caller),
		ProposalID:  index,
		Description: description,
	})
	if err != nil {
		return 0, err
	}
	return index, nil
}

// CancelProposal clears the slot at index. The slot stays in the list so
// later indices do not move.
func (w *Workflow) CancelProposal(ctx context.Context, caller string, index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireVoter(caller); err != nil {
		return w.reject("cancel_proposal", caller, err)
	}
	if err := w.requirePhase(ProposalsRegistrationStarted); err != nil {
		return w.reject("cancel_proposal", caller, err)
	}
	if err := w.requireIndex(index); err != nil {
		return w.reject("cancel_proposal", caller, err)
	}
	return w.commit(ctx, Event{
		Kind:       EventProposalCancelled,
		Identity:   strings.TrimSpace(caller),
		ProposalID: index,
	})
}

// CastVote records the caller's single vote for the proposal at index.
func (w *Workflow) CastVote(ctx context.Context, caller string, index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	caller = strings.TrimSpace(caller)
	if err := w.requireVoter(caller); err != nil {
		return w.reject("cast_vote", caller, err)
	}
	if err := w.requirePhase(VotingSessionStarted); err != nil {
		return w.reject("cast_vote", caller, err)
	}
	if w.voters[caller].HasVoted {
		return w.reject("cast_vote", caller, ErrAlreadyVoted)
	}
	if err := w.requireIndex(index); err != nil {
		return w.reject("cast_vote", caller, err)
	}
	return w.commit(ctx, Event{Kind: EventVoted, Identity: caller, ProposalID: index})
}

// WithdrawVote removes the caller's vote. index must equal the recorded
// vote. Afterwards the voter has no recorded vote and may vote again.
func (w *Workflow) WithdrawVote(ctx context.Context, caller string, index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	caller = strings.TrimSpace(caller)
	if err := w.requireVoter(caller); err != nil {
		return w.reject("withdraw_vote", caller, err)
	}
	if err := w.requirePhase(VotingSessionStarted); err != nil {
		return w.reject("withdraw_vote", caller, err)
	}
	voter := w.voters[caller]
	if !voter.HasVoted {
		return w.reject("withdraw_vote", caller, ErrNotYetVoted)
	}
	if recorded := voter.VotedProposalID.TakeOr(-1); recorded != index {
		return w.reject("withdraw_vote", caller, fmt.Errorf("%w: voted for %d, not %d", ErrVoteMismatch, recorded, index))
	}
	return w.commit(ctx, Event{Kind: EventVoteWithdrawn, Identity: caller, ProposalID: index})
}

// Winner returns the winning proposal. It fails with ErrPhaseViolation until
// votes are tallied.
func (w *Workflow) Winner() (Proposal, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requirePhase(VotesTallied); err != nil {
		return Proposal{}, err
	}
	if err := w.requireIndex(w.winningProposalID); err != nil {
		return Proposal{}, err
	}
	return w.proposals[w.winningProposalID], nil
}

// WinningProposalID returns the index fixed by TallyVotes.
func (w *Workflow) WinningProposalID() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requirePhase(VotesTallied); err != nil {
		return 0, err
	}
	return w.winningProposalID, nil
}

func (w *Workflow) Proposal(index int) (Proposal, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireIndex(index); err != nil {
		return Proposal{}, err
	}
	return w.proposals[index], nil
}

func (w *Workflow) Proposals() []Proposal {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Proposal, len(w.proposals))
	copy(out, w.proposals)
	return out
}

func (w *Workflow) VotersCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.votersCount
}

func (w *Workflow) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// Voter returns the registry entry for identity. The second result is false
// when the identity was never registered.
func (w *Workflow) Voter(identity string) (Voter, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	v, ok := w.voters[strings.TrimSpace(identity)]
	return v, ok
}

// IsMember reports whether identity is the admin or a registered voter.
func (w *Workflow) IsMember(identity string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	identity = strings.TrimSpace(identity)
	return identity == w.admin || w.voters[identity].IsRegistered
}

// Events returns a copy of every accepted event in order.
func (w *Workflow) Events() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Event, len(w.events))
	copy(out, w.events)
	return out
}

func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Snapshot{
		ID:          w.id,
		Admin:       w.admin,
		Title:       w.title,
		CreatedAt:   w.createdAt,
		Phase:       w.phase,
		VotersCount: w.votersCount,
		Proposals:   make([]Proposal, len(w.proposals)),
		Seq:         w.seq,
	}
	copy(s.Proposals, w.proposals)
	if w.phase == VotesTallied {
		s.WinningProposalID = optional.Some(w.winningProposalID)
	}
	return s
}

func (w *Workflow) requireAdmin(caller string) error {
	if strings.TrimSpace(caller) != w.admin {
		return fmt.Errorf("%w: admin role required", ErrAuthorizationViolation)
	}
	return nil
}

func (w *Workflow) requireVoter(caller string) error {
	if !w.voters[strings.TrimSpace(caller)].IsRegistered {
		return fmt.Errorf("%w: registered voter required", ErrAuthorizationViolation)
	}
	return nil
}

func (w *Workflow) requirePhase(want Phase) error {
	if w.phase != want {
		return fmt.Errorf("%w: in %s, requires %s", ErrPhaseViolation, w.phase, want)
	}
	return nil
}

func (w *Workflow) requireIndex(index int) error {
	if index < 0 || index >= len(w.proposals) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, index, len(w.proposals))
	}
	return nil
}

func (w *Workflow) reject(op, caller string, err error) error {
	w.logger.Debug("workflow operation rejected",
		"workflow_id", w.id,
		"operation", op,
		"caller", caller,
		"phase", w.phase.String(),
		"error", err,
	)
	return err
}

// commit journals, applies, and publishes ev. Must be called with mu held and
// only after every precondition has been checked.
func (w *Workflow) commit(ctx context.Context, ev Event) error {
	ev.WorkflowID = w.id
	ev.Seq = w.seq + 1
	ev.At = w.now().UTC()
	if ev.Kind != EventWorkflowStatusChange {
		ev.From, ev.To = w.phase, w.phase
	}

	if w.journal != nil {
		if err := w.journal.Append(ctx, ev); err != nil {
			w.logger.Error("failed to journal workflow event",
				"workflow_id", w.id,
				"kind", string(ev.Kind),
				"seq", ev.Seq,
				"error", err,
			)
			return fmt.Errorf("journal %s event: %w", ev.Kind, err)
		}
	}
	w.apply(ev)
	if w.notifier != nil {
		w.notifier.Notify(ev)
	}
	return nil
}

// check validates that a stored event can be applied to the current state.
// Live operations validate through their own preconditions; check guards
// Restore against a corrupt or foreign journal.
func (w *Workflow) check(ev Event) error {
	switch ev.Kind {
	case EventVoterRegistered:
		if ev.Identity == "" || w.voters[ev.Identity].IsRegistered {
			return ErrDuplicateRegistration
		}
	case EventWorkflowStatusChange:
		if next, ok := w.phase.Next(); ev.From != w.phase || !ok || ev.To != next {
			return ErrPhaseViolation
		}
	case EventProposalRegistered:
		if ev.ProposalID != len(w.proposals) {
			return ErrOutOfRange
		}
	case EventVoted:
		if err := w.requireVoter(ev.Identity); err != nil {
			return err
		}
		if w.voters[ev.Identity].HasVoted {
			return ErrAlreadyVoted
		}
		return w.requireIndex(ev.ProposalID)
	case EventVoteWithdrawn:
		if err := w.requireVoter(ev.Identity); err != nil {
			return err
		}
		voter := w.voters[ev.Identity]
		if !voter.HasVoted {
			return ErrNotYetVoted
		}
		if voter.VotedProposalID.TakeOr(-1) != ev.ProposalID {
			return ErrVoteMismatch
		}
	case EventProposalCancelled:
		return w.requireIndex(ev.ProposalID)
	default:
		return fmt.Errorf("%w: unknown event kind %q", ErrInvalidArgument, ev.Kind)
	}
	return nil
}

// apply is the only place state changes.
func (w *Workflow) apply(ev Event) {
	switch ev.Kind {
	case EventVoterRegistered:
		w.voters[ev.Identity] = Voter{IsRegistered: true}
		w.votersCount++
	case EventWorkflowStatusChange:
		w.phase = ev.To
		if ev.To == VotesTallied {
			w.winningProposalID = w.tally()
		}
	case EventProposalRegistered:
		w.proposals = append(w.proposals, Proposal{Description: ev.Description})
	case EventProposalCancelled:
		w.proposals[ev.ProposalID] = Proposal{}
	case EventVoted:
		voter := w.voters[ev.Identity]
		voter.HasVoted = true
		voter.VotedProposalID = optional.Some(ev.ProposalID)
		w.voters[ev.Identity] = voter
		w.proposals[ev.ProposalID].VoteCount++
	case EventVoteWithdrawn:
		voter := w.voters[ev.Identity]
		voter.HasVoted = false
		voter.VotedProposalID = optional.None[int]()
		w.voters[ev.Identity] = voter
		w.proposals[ev.ProposalID].VoteCount--
	}
	w.seq = ev.Seq
	w.events = append(w.events, ev)
}

func (w *Workflow) tally() int {
	winner, best := 0, 0
	for i, p := range w.proposals {
		if p.VoteCount > best {
			winner, best = i, p.VoteCount
		}
	}
	return winner
}
