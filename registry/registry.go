// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package registry hosts many independent voting workflows keyed by id.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/metrics"
	"github.com/danielhkuo/quickly-vote/workflow"
)

var ErrWorkflowNotFound = errors.New("workflow not found")

const (
	RoleAdmin = "admin"
	RoleVoter = "voter"
)

// Store persists workflow metadata and events. *db.Journal satisfies it.
type Store interface {
	workflow.Journal
	SaveWorkflow(ctx context.Context, rec db.WorkflowRecord) error
	GetWorkflow(ctx context.Context, id string) (db.WorkflowRecord, error)
	ListWorkflows(ctx context.Context) ([]db.WorkflowRecord, error)
	LoadEvents(ctx context.Context, workflowID string) ([]workflow.Event, error)
}

type Config struct {
	// Store is optional; without it workflows live only in memory.
	Store    Store
	Notifier workflow.Notifier
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// Membership describes one workflow an identity takes part in.
type Membership struct {
	WorkflowID string
	Title      string
	Role       string
	Phase      workflow.Phase
	CreatedAt  time.Time
}

type Registry struct {
	mu        sync.RWMutex
	workflows map[string]*workflow.Workflow

	store    Store
	notifier workflow.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	newID    func() string
	now      func() time.Time
}

func New(cfg Config) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		workflows: make(map[string]*workflow.Workflow),
		store:     cfg.Store,
		notifier:  cfg.Notifier,
		metrics:   cfg.Metrics,
		logger:    logger,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Create starts a new workflow administered by admin.
func (r *Registry) Create(ctx context.Context, admin, title string) (*workflow.Workflow, error) {
	admin = strings.TrimSpace(admin)
	if admin == "" {
		return nil, fmt.Errorf("%w: admin identity is required", workflow.ErrInvalidArgument)
	}

	rec := db.WorkflowRecord{
		ID:        r.newID(),
		Admin:     admin,
		Title:     strings.TrimSpace(title),
		CreatedAt: r.now().UTC(),
	}
	if r.store != nil {
		if err := r.store.SaveWorkflow(ctx, rec); err != nil {
			return nil, err
		}
	}

	wf := workflow.New(rec.ID, rec.Admin, r.options(rec)...)

	r.mu.Lock()
	r.workflows[rec.ID] = wf
	n := len(r.workflows)
	r.mu.Unlock()
	r.metrics.SetWorkflows(n)

	r.logger.Info("workflow created", "workflow_id", rec.ID, "admin", rec.Admin, "title", rec.Title)
	return wf, nil
}

// Get returns the workflow with the given id. On a miss it falls back to the
// store, so workflows written by another instance sharing the database are
// restored on first use.
func (r *Registry) Get(ctx context.Context, id string) (*workflow.Workflow, error) {
	if wf, ok := r.cached(id); ok {
		return wf, nil
	}
	if r.store == nil {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}

	rec, err := r.store.GetWorkflow(ctx, id)
	if errors.Is(err, db.ErrWorkflowNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	wf, err := r.restore(ctx, rec)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if existing, ok := r.workflows[id]; ok {
		wf = existing
	} else {
		r.workflows[id] = wf
	}
	n := len(r.workflows)
	r.mu.Unlock()
	r.metrics.SetWorkflows(n)

	r.logger.Info("workflow restored on demand", "workflow_id", id)
	return wf, nil
}

func (r *Registry) cached(id string) (*workflow.Workflow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wf, ok := r.workflows[id]
	return wf, ok
}

func (r *Registry) restore(ctx context.Context, rec db.WorkflowRecord) (*workflow.Workflow, error) {
	evs, err := r.store.LoadEvents(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	return workflow.Restore(rec.ID, rec.Admin, evs, r.options(rec)...)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workflows)
}

// Load restores every stored workflow by replaying its journal. Workflows
// already in memory are left untouched.
func (r *Registry) Load(ctx context.Context) (int, error) {
	if r.store == nil {
		return 0, nil
	}
	records, err := r.store.ListWorkflows(ctx)
	if err != nil {
		return 0, err
	}

	restored, events := 0, 0
	for _, rec := range records {
		if _, ok := r.cached(rec.ID); ok {
			continue
		}
		wf, err := r.restore(ctx, rec)
		if err != nil {
			return restored, err
		}
		r.mu.Lock()
		if _, ok := r.workflows[rec.ID]; !ok {
			r.workflows[rec.ID] = wf
			restored++
			events += len(wf.Events())
		}
		r.mu.Unlock()
	}
	r.metrics.SetWorkflows(r.Len())

	r.logger.Info("workflows restored",
		"workflows", humanize.Comma(int64(restored)),
		"events", humanize.Comma(int64(events)),
	)
	return restored, nil
}

// Memberships lists the workflows where identity is the admin or a
// registered voter, oldest first.
func (r *Registry) Memberships(identity string) []Membership {
	identity = strings.TrimSpace(identity)

	r.mu.RLock()
	all := make([]*workflow.Workflow, 0, len(r.workflows))
	for _, wf := range r.workflows {
		all = append(all, wf)
	}
	r.mu.RUnlock()

	out := []Membership{}
	for _, wf := range all {
		if !wf.IsMember(identity) {
			continue
		}
		role := RoleVoter
		if wf.Admin() == identity {
			role = RoleAdmin
		}
		out = append(out, Membership{
			WorkflowID: wf.ID(),
			Title:      wf.Title(),
			Role:       role,
			Phase:      wf.Phase(),
			CreatedAt:  wf.CreatedAt(),
		})
	}
	slices.SortFunc(out, func(a, b Membership) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.WorkflowID, b.WorkflowID)
	})
	return out
}

func (r *Registry) options(rec db.WorkflowRecord) []workflow.Option {
	opts := []workflow.Option{
		workflow.WithTitle(rec.Title),
		workflow.WithCreatedAt(rec.CreatedAt),
		workflow.WithLogger(r.logger),
	}
	if r.store != nil {
		opts = append(opts, workflow.WithJournal(r.store))
	}
	if r.notifier != nil {
		opts = append(opts, workflow.WithNotifier(r.notifier))
	}
	return opts
}
