package services

import (
	"context"
	"time"

	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/google/uuid"
)

// ComplaintStore is the persistence collaborator for complaints.
// Listings are sorted newest first. FindByID returns (nil, nil) when
// no complaint has the id. Update returns (nil, nil) and Delete returns
// false when the id is missing or the ifStatus precondition does not hold.
type ComplaintStore interface {
	Insert(ctx context.Context, c *models.Complaint) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Complaint, error)
	FindAll(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error)
	Update(ctx context.Context, id uuid.UUID, patch models.ComplaintPatch) (*models.Complaint, error)
	Delete(ctx context.Context, id uuid.UUID, ifStatus *models.Status) (bool, error)
	Count(ctx context.Context, filter models.ComplaintFilter) (int64, error)
	CountGroupedBy(ctx context.Context, field models.GroupField) (map[string]int64, error)
}

// UserStore is the persistence collaborator for accounts.
// FindUserByEmail and FindUserByID return (nil, nil) when nothing matches.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenDenylist remembers revoked token ids until they would have expired anyway
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
