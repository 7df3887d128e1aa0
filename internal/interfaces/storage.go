package interfaces

import "github.com/ternarybob/concord/internal/models"

// ListOptions controls result listing pagination.
type ListOptions struct {
	Limit  int
	Offset int
}

// DebateStorage persists completed (and aborted) debate results.
type DebateStorage interface {
	SaveResult(result *models.DebateResult) error
	GetResult(conversationID string) (*models.DebateResult, error)
	ListResults(opts *ListOptions) ([]*models.DebateResult, error)
	DeleteResult(conversationID string) error
	Close() error
}
