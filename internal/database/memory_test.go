package database

import (
	"context"
	"testing"
	"time"

	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/aawaaz/complaint-desk/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func complaintAt(owner uuid.UUID, cat models.Category, status models.Status, at time.Time) *models.Complaint {
	return &models.Complaint{
		ID:          uuid.New(),
		OwnerID:     owner,
		Category:    cat,
		Title:       "title",
		Description: "description",
		Status:      status,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func TestMemoryStore_ListingsNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	owner := uuid.New()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	old := complaintAt(owner, models.CategoryHostel, models.StatusPending, base)
	newer := complaintAt(owner, models.CategoryHostel, models.StatusPending, base.Add(time.Hour))
	sameTimeLater := complaintAt(owner, models.CategoryCanteen, models.StatusPending, base.Add(time.Hour))
	for _, c := range []*models.Complaint{newer, old, sameTimeLater} {
		require.NoError(t, m.Insert(ctx, c))
	}
	require.NoError(t, m.Insert(ctx, complaintAt(uuid.New(), models.CategoryHostel, models.StatusPending, base)))

	list, err := m.FindByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, sameTimeLater.ID, list[0].ID, "ties go to the later insert")
	assert.Equal(t, newer.ID, list[1].ID)
	assert.Equal(t, old.ID, list[2].ID)

	all, err := m.FindAll(ctx, models.ComplaintFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestMemoryStore_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	c := complaintAt(uuid.New(), models.CategoryHostel, models.StatusPending, time.Now())
	require.NoError(t, m.Insert(ctx, c))

	status := models.StatusResolved
	remarks := "done"
	updated, err := m.Update(ctx, c.ID, models.ComplaintPatch{Status: &status, AdminRemarks: &remarks})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, updated.Status)
	assert.Equal(t, "done", updated.AdminRemarks)
	assert.Equal(t, c.Title, updated.Title)

	// Returned values are copies
	updated.Title = "mutated"
	again, err := m.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "title", again.Title)

	missing, err := m.Update(ctx, uuid.New(), models.ComplaintPatch{Status: &status})
	require.NoError(t, err)
	assert.Nil(t, missing)

	deleted, err := m.Delete(ctx, c.ID, nil)
	require.NoError(t, err)
	assert.True(t, deleted)
	gone, err := m.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestMemoryStore_StatusPreconditions(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	c := complaintAt(uuid.New(), models.CategoryHostel, models.StatusInProgress, time.Now())
	require.NoError(t, m.Insert(ctx, c))

	pending := models.StatusPending
	title := "changed"
	updated, err := m.Update(ctx, c.ID, models.ComplaintPatch{Title: &title, IfStatus: &pending})
	require.NoError(t, err)
	assert.Nil(t, updated)

	deleted, err := m.Delete(ctx, c.ID, &pending)
	require.NoError(t, err)
	assert.False(t, deleted)

	stored, err := m.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "title", stored.Title)

	inProgress := models.StatusInProgress
	deleted, err = m.Delete(ctx, c.ID, &inProgress)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestMemoryStore_CountsAndGrouping(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	now := time.Now()
	for _, c := range []*models.Complaint{
		complaintAt(uuid.New(), models.CategoryHostel, models.StatusPending, now),
		complaintAt(uuid.New(), models.CategoryHostel, models.StatusResolved, now),
		complaintAt(uuid.New(), models.CategoryCanteen, models.StatusPending, now),
	} {
		require.NoError(t, m.Insert(ctx, c))
	}

	pending := models.StatusPending
	n, err := m.Count(ctx, models.ComplaintFilter{Status: &pending})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	byCategory, err := m.CountGroupedBy(ctx, models.GroupByCategory)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Hostel": 2, "Canteen": 1}, byCategory)

	byStatus, err := m.CountGroupedBy(ctx, models.GroupByStatus)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Pending": 2, "Resolved": 1}, byStatus)

	_, err = m.CountGroupedBy(ctx, models.GroupField("title"))
	assert.Error(t, err)
}

func TestMemoryStore_Users(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	u := &models.User{ID: uuid.New(), Name: "Asha", Email: "asha@college.edu", Role: models.RoleStudent}
	require.NoError(t, m.CreateUser(ctx, u))

	err := m.CreateUser(ctx, &models.User{ID: uuid.New(), Email: "asha@college.edu"})
	assert.ErrorIs(t, err, services.ErrConflict)

	byEmail, err := m.FindUserByEmail(ctx, "asha@college.edu")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := m.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", byID.Name)

	none, err := m.FindUserByEmail(ctx, "nobody@college.edu")
	require.NoError(t, err)
	assert.Nil(t, none)
}
