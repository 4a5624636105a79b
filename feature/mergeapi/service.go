package mergeapi

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"scene-merge/core/history"
	"scene-merge/core/merge"
	"scene-merge/core/snapshot"
	"scene-merge/core/storage"
)

// CreateSessionRequest names the five storage objects a merge needs.
type CreateSessionRequest struct {
	// Base is the object name of the common ancestor snapshot.
	Base string `json:"base"`
	// Source is the object name of the snapshot changes come from.
	Source string `json:"source"`
	// Target is the object name of the snapshot changes go into.
	Target string `json:"target"`
	// BaseToSource is the comparison document between base and source.
	BaseToSource string `json:"base_to_source"`
	// BaseToTarget is the comparison document between base and target.
	BaseToTarget string `json:"base_to_target"`
}

// SessionInfo is the client-facing view of a created session.
type SessionInfo struct {
	ID         string        `json:"id"`
	BaseName   string        `json:"base_name"`
	SourceName string        `json:"source_name"`
	TargetName string        `json:"target_name"`
	Summary    merge.Summary `json:"summary"`
}

// ActionInfo is the client-facing view of a single merge action.
type ActionInfo struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Summary  string `json:"summary"`
	Conflict bool   `json:"conflict"`
	// Decision is only set for conflict actions.
	Decision string `json:"decision,omitempty"`
}

// ApplyRequest controls how a session's actions are applied.
type ApplyRequest struct {
	// AcceptConflicts accepts every still-pending conflict before applying.
	AcceptConflicts bool `json:"accept_conflicts"`
	// SaveTo uploads the merged snapshot under this object name.
	SaveTo string `json:"save_to,omitempty"`
}

// ApplyResult carries the merged snapshot and apply counts.
type ApplyResult struct {
	Applied  int                `json:"applied"`
	Skipped  int                `json:"skipped"`
	Snapshot *snapshot.Document `json:"snapshot"`
}

// snapshotCacheTTL bounds how long a fetched snapshot may serve new
// sessions before it is re-fetched from storage.
const snapshotCacheTTL = 30 * time.Second

// Service handles merge session operations.
type Service struct {
	loader    *snapshot.Loader
	snapshots *snapshot.CachedLoader
	sessions  *SessionStore
	logger    *zap.Logger
	runs      *history.Store
}

// NewService creates a new merge session service. db may be nil, in
// which case no run history is recorded.
func NewService(client storage.Client, bucket string, logger *zap.Logger, db *gorm.DB) *Service {
	loader := snapshot.NewLoader(client, bucket)
	s := &Service{
		loader:    loader,
		snapshots: snapshot.NewCachedLoader(loader, snapshotCacheTTL),
		sessions:  NewSessionStore(),
		logger:    logger,
	}
	if db != nil {
		s.runs = history.NewStore(db)
	}
	return s
}

// CreateSession loads the snapshots and comparisons, reconciles them
// into a merge operation and registers a session holding it.
func (s *Service) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	baseDoc, err := s.snapshots.Snapshot(ctx, req.Base)
	if err != nil {
		return nil, fmt.Errorf("failed to load base snapshot: %w", err)
	}
	sourceDoc, err := s.snapshots.Snapshot(ctx, req.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to load source snapshot: %w", err)
	}
	targetDoc, err := s.snapshots.Snapshot(ctx, req.Target)
	if err != nil {
		return nil, fmt.Errorf("failed to load target snapshot: %w", err)
	}

	base, err := baseDoc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build base graph: %w", err)
	}
	source, err := sourceDoc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build source graph: %w", err)
	}
	target, err := targetDoc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build target graph: %w", err)
	}

	baseToSourceCmp, err := s.loader.Comparison(ctx, req.BaseToSource)
	if err != nil {
		return nil, fmt.Errorf("failed to load base/source comparison: %w", err)
	}
	baseToTargetCmp, err := s.loader.Comparison(ctx, req.BaseToTarget)
	if err != nil {
		return nil, fmt.Errorf("failed to load base/target comparison: %w", err)
	}

	baseToSource, err := baseToSourceCmp.Resolve(base, source)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base/source comparison: %w", err)
	}
	baseToTarget, err := baseToTargetCmp.Resolve(base, target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base/target comparison: %w", err)
	}

	op, err := merge.NewOperation(baseToSource, baseToTarget)
	if err != nil {
		return nil, err
	}

	session := newSession(baseDoc.Name, sourceDoc.Name, targetDoc.Name, op)
	s.sessions.Put(session)

	summary := op.Summarize()
	s.logger.Info("Merge session created",
		zap.String("session_id", session.ID),
		zap.Int("actions", summary.Total),
		zap.Int("conflicts", summary.Conflicts),
	)

	return &SessionInfo{
		ID:         session.ID,
		BaseName:   session.BaseName,
		SourceName: session.SourceName,
		TargetName: session.TargetName,
		Summary:    summary,
	}, nil
}

// Actions returns the session's action list in merge order.
func (s *Service) Actions(sessionID string) ([]ActionInfo, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	actions := session.Operation.Actions()
	infos := make([]ActionInfo, 0, len(actions))
	for _, a := range actions {
		info := ActionInfo{
			ID:      a.ID(),
			Kind:    string(a.Kind()),
			Summary: a.Describe(),
		}
		if conflict, ok := a.(merge.ConflictAction); ok {
			info.Conflict = true
			info.Decision = string(conflict.Decision())
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// SetDecision records an accept/reject choice on a conflict action.
func (s *Service) SetDecision(sessionID, actionID string, decision merge.Decision) error {
	if decision != merge.DecisionAccepted && decision != merge.DecisionRejected && decision != merge.DecisionPending {
		return fmt.Errorf("invalid decision: %s", decision)
	}

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	action, ok := session.Action(actionID)
	if !ok {
		return fmt.Errorf("unknown action in session %s: %s", sessionID, actionID)
	}
	conflict, ok := action.(merge.ConflictAction)
	if !ok {
		return fmt.Errorf("action %s is not a conflict", actionID)
	}

	conflict.SetDecision(decision)
	return nil
}

// Apply runs the session's actions against its target graph and returns
// the merged snapshot. The session stays registered afterwards.
func (s *Service) Apply(ctx context.Context, sessionID string, req ApplyRequest) (*ApplyResult, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	applied, skipped, err := session.Operation.Apply(merge.ApplyOptions{
		AcceptConflicts: req.AcceptConflicts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply merge actions: %w", err)
	}

	merged := snapshot.FromGraph(session.TargetName, session.Operation.Target())
	if req.SaveTo != "" {
		if err := s.loader.Put(ctx, req.SaveTo, merged); err != nil {
			return nil, err
		}
		// The uploaded object may shadow a cached snapshot.
		s.snapshots.Invalidate(req.SaveTo)
	}

	summary := session.Operation.Summarize()
	s.recordRun(session, summary)

	s.logger.Info("Merge session applied",
		zap.String("session_id", session.ID),
		zap.Int("applied", applied),
		zap.Int("skipped", skipped),
	)

	return &ApplyResult{
		Applied:  applied,
		Skipped:  skipped,
		Snapshot: merged,
	}, nil
}

func (s *Service) recordRun(session *Session, summary merge.Summary) {
	if s.runs == nil {
		return
	}
	record := &history.Record{
		SessionID:     session.ID,
		BaseName:      session.BaseName,
		SourceName:    session.SourceName,
		TargetName:    session.TargetName,
		ActionCount:   summary.Total,
		ConflictCount: summary.Conflicts,
		Applied:       true,
	}
	if err := s.runs.Save(record); err != nil {
		s.logger.Warn("Failed to record merge run", zap.Error(err))
	}
}
