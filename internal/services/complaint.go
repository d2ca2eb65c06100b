// Package services contains business logic layers.
// Services are called by handlers and talk to storage through the ports in ports.go.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/aawaaz/complaint-desk/internal/metrics"
	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ComplaintService handles complaint business logic
type ComplaintService struct {
	store  ComplaintStore
	users  UserStore
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewComplaintService creates a new complaint service
func NewComplaintService(store ComplaintStore, users UserStore, logger *zap.SugaredLogger) *ComplaintService {
	return &ComplaintService{store: store, users: users, logger: logger, now: time.Now}
}

// NewComplaint validates input and builds a Pending complaint owned by ownerID
func NewComplaint(ownerID uuid.UUID, in models.ComplaintInput, now time.Time) (*models.Complaint, error) {
	fields := complaintFields{
		Category:    strings.TrimSpace(in.Category),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
	}
	if strings.TrimSpace(fields.Description) == "" {
		fields.Description = ""
	}
	if err := validate.Struct(fields); err != nil {
		return nil, fromValidator(err)
	}

	return &models.Complaint{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Category:     models.Category(fields.Category),
		Title:        fields.Title,
		Description:  fields.Description,
		Status:       models.StatusPending,
		AdminRemarks: "",
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Create files a new complaint on behalf of the principal
func (s *ComplaintService) Create(ctx context.Context, p *models.Principal, in models.ComplaintInput) (*models.Complaint, error) {
	if err := authenticated(p, nil); err != nil {
		return nil, err
	}

	c, err := NewComplaint(p.UserID, in, s.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.store.Insert(ctx, c); err != nil {
		return nil, internal("insert complaint", err)
	}
	metrics.ComplaintsCreated.Inc()

	s.logger.Infow("Complaint submitted",
		"id", c.ID,
		"owner", c.OwnerID,
		"category", c.Category,
	)
	return c, nil
}

// Get returns one complaint; students may only read their own
func (s *ComplaintService) Get(ctx context.Context, p *models.Principal, id uuid.UUID) (*models.Complaint, error) {
	if err := authenticated(p, nil); err != nil {
		return nil, err
	}

	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(p, ActionRead, c); err != nil {
		return nil, err
	}

	s.attachOwners(ctx, []*models.Complaint{c})
	return c, nil
}

// ListMine returns the principal's own complaints, newest first
func (s *ComplaintService) ListMine(ctx context.Context, p *models.Principal) ([]models.Complaint, error) {
	if err := Authorize(p, ActionListMine, nil); err != nil {
		return nil, err
	}

	list, err := s.store.FindByOwner(ctx, p.UserID)
	if err != nil {
		return nil, internal("find complaints by owner", err)
	}
	return nonNil(list), nil
}

// ListAll returns every complaint matching filter, newest first (admin only)
func (s *ComplaintService) ListAll(ctx context.Context, p *models.Principal, filter models.ComplaintFilter) ([]models.Complaint, error) {
	if err := Authorize(p, ActionListAll, nil); err != nil {
		return nil, err
	}

	list, err := s.store.FindAll(ctx, filter)
	if err != nil {
		return nil, internal("find complaints", err)
	}

	ptrs := make([]*models.Complaint, len(list))
	for i := range list {
		ptrs[i] = &list[i]
	}
	s.attachOwners(ctx, ptrs)
	return nonNil(list), nil
}

// Count returns how many complaints match filter (admin only)
func (s *ComplaintService) Count(ctx context.Context, p *models.Principal, filter models.ComplaintFilter) (int64, error) {
	if err := Authorize(p, ActionListAll, nil); err != nil {
		return 0, err
	}

	n, err := s.store.Count(ctx, filter)
	if err != nil {
		return 0, internal("count complaints", err)
	}
	return n, nil
}

// Update edits category, title or description. Only the owner may edit,
// and only while the complaint is still Pending. Empty input fields are
// left unchanged.
func (s *ComplaintService) Update(ctx context.Context, p *models.Principal, id uuid.UUID, in models.ComplaintInput) (*models.Complaint, error) {
	if err := authenticated(p, nil); err != nil {
		return nil, err
	}

	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(p, ActionEdit, c); err != nil {
		return nil, err
	}

	patch, err := editPatch(in)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return c, nil
	}

	pending := models.StatusPending
	patch.IfStatus = &pending
	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, internal("update complaint", err)
	}
	if updated == nil {
		return nil, s.writeSkipped(ctx, id)
	}

	s.logger.Infow("Complaint updated", "id", id, "owner", p.UserID)
	return updated, nil
}

// Delete withdraws a Pending complaint; only its owner may do so
func (s *ComplaintService) Delete(ctx context.Context, p *models.Principal, id uuid.UUID) error {
	if err := authenticated(p, nil); err != nil {
		return err
	}

	c, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := Authorize(p, ActionDelete, c); err != nil {
		return err
	}

	pending := models.StatusPending
	deleted, err := s.store.Delete(ctx, id, &pending)
	if err != nil {
		return internal("delete complaint", err)
	}
	if !deleted {
		return s.writeSkipped(ctx, id)
	}
	metrics.ComplaintsDeleted.Inc()

	s.logger.Infow("Complaint deleted", "id", id, "owner", p.UserID)
	return nil
}

// UpdateStatus lets an administrator move a complaint to any status, in any
// order, optionally replacing the remarks.
func (s *ComplaintService) UpdateStatus(ctx context.Context, p *models.Principal, id uuid.UUID, in models.StatusInput) (*models.Complaint, error) {
	if err := Authorize(p, ActionSetStatus, nil); err != nil {
		return nil, err
	}

	fields := statusFields{Status: strings.TrimSpace(in.Status)}
	if err := validate.Struct(fields); err != nil {
		return nil, fromValidator(err)
	}
	status := models.Status(fields.Status)

	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, id, models.ComplaintPatch{
		Status:       &status,
		AdminRemarks: in.AdminRemarks,
	})
	if err != nil {
		return nil, internal("update complaint status", err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	metrics.StatusChanges.WithLabelValues(string(status)).Inc()

	s.logger.Infow("Complaint status changed",
		"id", id,
		"status", status,
		"admin", p.UserID,
		"remarks_set", in.AdminRemarks != nil,
	)
	return updated, nil
}

func (s *ComplaintService) find(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, internal("find complaint", err)
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

// writeSkipped explains a conditional write that matched no row: the
// complaint was removed or left Pending after it was read.
func (s *ComplaintService) writeSkipped(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return ErrInvalidState
}

// attachOwners fills in owner name and email. A missing owner is not an error.
func (s *ComplaintService) attachOwners(ctx context.Context, list []*models.Complaint) {
	if s.users == nil {
		return
	}

	owners := make(map[uuid.UUID]*models.UserSummary)
	for _, c := range list {
		summary, seen := owners[c.OwnerID]
		if !seen {
			u, err := s.users.FindUserByID(ctx, c.OwnerID)
			if err != nil {
				s.logger.Warnw("Owner lookup failed", "owner", c.OwnerID, "error", err)
			}
			if u != nil {
				summary = u.Summary()
			}
			owners[c.OwnerID] = summary
		}
		c.Owner = summary
	}
}

// editPatch turns owner input into a patch; blank fields are skipped
func editPatch(in models.ComplaintInput) (models.ComplaintPatch, error) {
	var patch models.ComplaintPatch
	verr := &ValidationError{}

	if in.Category != "" {
		cat, err := models.ParseCategory(strings.TrimSpace(in.Category))
		if err != nil {
			verr.add("category", "must be one of: "+joinValues(models.Categories))
		} else {
			patch.Category = &cat
		}
	}
	if in.Title != "" {
		title := strings.TrimSpace(in.Title)
		if title == "" {
			verr.add("title", "must not be blank")
		} else {
			patch.Title = &title
		}
	}
	if in.Description != "" {
		if strings.TrimSpace(in.Description) == "" {
			verr.add("description", "must not be blank")
		} else {
			desc := in.Description
			patch.Description = &desc
		}
	}

	if err := verr.orNil(); err != nil {
		return models.ComplaintPatch{}, err
	}
	return patch, nil
}

func nonNil(list []models.Complaint) []models.Complaint {
	if list == nil {
		return []models.Complaint{}
	}
	return list
}
