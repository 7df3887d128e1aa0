package badger

import (
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/concord/internal/interfaces"
	"github.com/ternarybob/concord/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ErrResultNotFound is returned when no result exists for a conversation id.
var ErrResultNotFound = errors.New("debate result not found")

// DebateStorage implements the DebateStorage interface for Badger
type DebateStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDebateStorage creates a new DebateStorage instance
func NewDebateStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DebateStorage {
	return &DebateStorage{
		db:     db,
		logger: logger,
	}
}

// SaveResult upserts one debate result keyed by conversation id.
func (s *DebateStorage) SaveResult(result *models.DebateResult) error {
	if result.ConversationID == "" {
		return fmt.Errorf("conversation ID is required")
	}

	if err := s.db.Store().Upsert(result.ConversationID, result); err != nil {
		return fmt.Errorf("failed to save debate result: %w", err)
	}

	s.logger.Debug().
		Str("conversation_id", result.ConversationID).
		Str("phase", string(result.Phase)).
		Msg("Debate result saved")
	return nil
}

// GetResult fetches one debate result by conversation id.
func (s *DebateStorage) GetResult(conversationID string) (*models.DebateResult, error) {
	var result models.DebateResult
	if err := s.db.Store().Get(conversationID, &result); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w: %s", ErrResultNotFound, conversationID)
		}
		return nil, fmt.Errorf("failed to get debate result: %w", err)
	}
	return &result, nil
}

// ListResults returns stored results, most recently started first.
func (s *DebateStorage) ListResults(opts *interfaces.ListOptions) ([]*models.DebateResult, error) {
	query := badgerhold.Where("ConversationID").Ne("").SortBy("StartedAt").Reverse()

	if opts != nil {
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
		if opts.Offset > 0 {
			query = query.Skip(opts.Offset)
		}
	}

	var results []models.DebateResult
	if err := s.db.Store().Find(&results, query); err != nil {
		return nil, fmt.Errorf("failed to list debate results: %w", err)
	}

	out := make([]*models.DebateResult, len(results))
	for i := range results {
		out[i] = &results[i]
	}
	return out, nil
}

// DeleteResult removes one debate result. Deleting an absent result is an
// error surfaced as ErrResultNotFound.
func (s *DebateStorage) DeleteResult(conversationID string) error {
	if err := s.db.Store().Delete(conversationID, &models.DebateResult{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("%w: %s", ErrResultNotFound, conversationID)
		}
		return fmt.Errorf("failed to delete debate result: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *DebateStorage) Close() error {
	return s.db.Close()
}
