package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"threadmerge/internal/events"
	"threadmerge/internal/metrics"
	"threadmerge/internal/models"
	"threadmerge/internal/renumber"
	"threadmerge/internal/storage"
)

type MergeService interface {
	Merge(ctx context.Context, req models.MergeRequest) (*models.Thread, error)
}

type Translator interface {
	T(key string) string
}

type MergeNotifier interface {
	DispatchThreadMerged(ctx context.Context, event events.ThreadMerged) error
}

// commitFailures maps a failed commit step to the message shown to the user.
var commitFailures = map[models.MergePhase]string{
	models.PhaseMerging:  "merge.error.merging_failed",
	models.PhaseUpdating: "merge.error.updating_failed",
	models.PhaseDeleting: "merge.error.deleting_failed",
}

type mergeServiceImpl struct {
	storage    storage.MergeStorage
	policy     MergePolicy
	translator Translator
	notifier   MergeNotifier
	log        *slog.Logger
}

func NewMergeService(ms storage.MergeStorage, policy MergePolicy, translator Translator, notifier MergeNotifier, log *slog.Logger) MergeService {
	return &mergeServiceImpl{
		storage:    ms,
		policy:     policy,
		translator: translator,
		notifier:   notifier,
		log:        log,
	}
}

func (s *mergeServiceImpl) Merge(ctx context.Context, req models.MergeRequest) (thread *models.Thread, err error) {
	started := time.Now()
	defer func() {
		metrics.ObserveMerge(req.Commit, mergeOutcome(err), started)
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	destination, err := s.storage.GetThreadWithPosts(ctx, req.DestinationID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load destination thread %d: %w", req.DestinationID, err)
	}

	if !s.policy.CanMerge(req.Actor, destination) {
		return nil, models.ErrPermissionDenied
	}

	if err := s.reserveHeadroom(ctx, destination, req.SourceIDs); err != nil {
		return nil, err
	}

	sources, incoming, err := s.collectSources(ctx, req.SourceIDs)
	if err != nil {
		return nil, err
	}

	all := make([]*models.Post, 0, len(destination.Posts)+len(incoming))
	all = append(all, destination.Posts...)
	all = append(all, incoming...)
	renumber.CompactRenumber(destination, all)

	if !req.Commit {
		s.log.DebugContext(ctx, "merge preview prepared",
			"thread_id", destination.ID, "sources", len(sources), "posts", len(destination.Posts))
		return destination, nil
	}

	if err := s.commit(ctx, destination, sources); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "threads merged",
		"thread_id", destination.ID, "actor", req.Actor.Nickname,
		"sources", len(sources), "posts", len(destination.Posts))

	event := events.NewThreadMerged(req.Actor, incoming, destination, sources)
	if err := s.notifier.DispatchThreadMerged(ctx, event); err != nil {
		s.log.ErrorContext(ctx, "merge notification failed", "thread_id", destination.ID, "error", err)
		return destination, fmt.Errorf("%w: %v", models.ErrMergeNotification, err)
	}

	return destination, nil
}

// reserveHeadroom moves the destination's posts out of the range the final
// numbering will use and persists that in its own transaction.
func (s *mergeServiceImpl) reserveHeadroom(ctx context.Context, destination *models.Thread, sourceIDs []int64) error {
	incoming := 0
	for _, id := range sourceIDs {
		n, err := s.storage.CountThreadPosts(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to count posts of thread %d: %w", id, err)
		}
		incoming += n
	}

	if _, err := renumber.ReserveHeadroom(destination, incoming); err != nil {
		return err
	}

	err := s.storage.WithinTx(ctx, func(tx storage.MergeTx) error {
		if err := tx.LockThread(ctx, destination.ID); err != nil {
			return err
		}
		return tx.SavePosts(ctx, destination)
	})
	if err != nil {
		return fmt.Errorf("failed to reserve post numbers in thread %d: %w", destination.ID, err)
	}
	return nil
}

// collectSources loads the source threads. Ids that no longer resolve are
// skipped.
func (s *mergeServiceImpl) collectSources(ctx context.Context, ids []int64) ([]*models.Thread, []*models.Post, error) {
	var sources []*models.Thread
	var posts []*models.Post
	for _, id := range ids {
		thread, err := s.storage.GetThreadWithPosts(ctx, id)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				s.log.DebugContext(ctx, "skipping missing source thread", "thread_id", id)
				continue
			}
			return nil, nil, fmt.Errorf("failed to load source thread %d: %w", id, err)
		}
		sources = append(sources, thread)
		posts = append(posts, thread.Posts...)
	}
	return sources, posts, nil
}

func (s *mergeServiceImpl) commit(ctx context.Context, destination *models.Thread, sources []*models.Thread) error {
	err := s.storage.WithinTx(ctx, func(tx storage.MergeTx) error {
		if err := tx.LockThread(ctx, destination.ID); err != nil {
			return s.commitFailure(ctx, models.PhaseMerging, err)
		}
		if err := tx.SavePosts(ctx, destination); err != nil {
			return s.commitFailure(ctx, models.PhaseMerging, err)
		}

		destination.ApplyAggregates(models.ComputeAggregates(destination.Posts))
		if err := tx.SaveAggregates(ctx, destination); err != nil {
			return s.commitFailure(ctx, models.PhaseUpdating, err)
		}

		for _, source := range sources {
			if err := tx.DeleteThread(ctx, source.ID); err != nil {
				return s.commitFailure(ctx, models.PhaseDeleting, err)
			}
		}
		return nil
	})
	if err == nil {
		return nil
	}

	var commitErr *models.MergeCommitError
	if errors.As(err, &commitErr) {
		return commitErr
	}
	// The transaction itself failed to begin or commit.
	return s.commitFailure(ctx, models.PhaseMerging, err)
}

func (s *mergeServiceImpl) commitFailure(ctx context.Context, phase models.MergePhase, cause error) error {
	msg := s.translator.T(commitFailures[phase])
	s.log.ErrorContext(ctx, "[thread-merge] "+msg, "phase", string(phase), "error", cause)
	return models.NewMergeCommitError(phase, msg, cause)
}

func mergeOutcome(err error) string {
	var commitErr *models.MergeCommitError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &commitErr):
		return "commit_failed"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrPermissionDenied):
		return "forbidden"
	case errors.Is(err, models.ErrEmptyDestination):
		return "empty_destination"
	case errors.Is(err, models.ErrInvalidMergeRequest):
		return "invalid"
	case errors.Is(err, models.ErrMergeNotification):
		return "notify_failed"
	default:
		return "error"
	}
}
