package repository

import (
	"context"

	"loan-approval/domain"
)

// DecisionRepository records scored applications for later audit.
type DecisionRepository interface {
	Save(ctx context.Context, record domain.DecisionRecord) error
}
