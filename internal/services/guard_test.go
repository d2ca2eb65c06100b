package services_test

import (
	"testing"

	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/aawaaz/complaint-desk/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	owner := &models.Principal{UserID: uuid.New(), Role: models.RoleStudent}
	other := &models.Principal{UserID: uuid.New(), Role: models.RoleStudent}
	admin := &models.Principal{UserID: uuid.New(), Role: models.RoleAdmin}

	pending := &models.Complaint{ID: uuid.New(), OwnerID: owner.UserID, Status: models.StatusPending}
	resolved := &models.Complaint{ID: uuid.New(), OwnerID: owner.UserID, Status: models.StatusResolved}

	tests := []struct {
		name      string
		principal *models.Principal
		action    services.Action
		complaint *models.Complaint
		want      error
	}{
		{"anonymous read", nil, services.ActionRead, pending, services.ErrUnauthenticated},
		{"anonymous list mine", nil, services.ActionListMine, nil, services.ErrUnauthenticated},
		{"anonymous stats", nil, services.ActionStatistics, nil, services.ErrUnauthenticated},
		{"anonymous edit", nil, services.ActionEdit, resolved, services.ErrUnauthenticated},

		{"owner reads", owner, services.ActionRead, resolved, nil},
		{"other student reads", other, services.ActionRead, pending, services.ErrForbidden},
		{"admin reads", admin, services.ActionRead, pending, nil},

		{"student lists mine", other, services.ActionListMine, nil, nil},
		{"student lists all", owner, services.ActionListAll, nil, services.ErrForbidden},
		{"admin lists all", admin, services.ActionListAll, nil, nil},

		{"owner edits pending", owner, services.ActionEdit, pending, nil},
		{"owner edits resolved", owner, services.ActionEdit, resolved, services.ErrInvalidState},
		{"other edits pending", other, services.ActionEdit, pending, services.ErrForbidden},
		{"other edits resolved checks ownership first", other, services.ActionEdit, resolved, services.ErrForbidden},
		{"admin edits fields", admin, services.ActionEdit, pending, services.ErrForbidden},

		{"owner deletes pending", owner, services.ActionDelete, pending, nil},
		{"owner deletes resolved", owner, services.ActionDelete, resolved, services.ErrInvalidState},
		{"other deletes resolved", other, services.ActionDelete, resolved, services.ErrForbidden},

		{"student sets status", owner, services.ActionSetStatus, nil, services.ErrForbidden},
		{"admin sets status", admin, services.ActionSetStatus, nil, nil},
		{"student stats", owner, services.ActionStatistics, nil, services.ErrForbidden},
		{"admin stats", admin, services.ActionStatistics, nil, nil},

		{"unknown action", admin, services.Action("archive"), nil, services.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := services.Authorize(tt.principal, tt.action, tt.complaint)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRequirePrincipalAndAdmin(t *testing.T) {
	student := &models.Principal{UserID: uuid.New(), Role: models.RoleStudent}
	admin := &models.Principal{UserID: uuid.New(), Role: models.RoleAdmin}

	assert.ErrorIs(t, services.RequirePrincipal(nil), services.ErrUnauthenticated)
	assert.NoError(t, services.RequirePrincipal(student))

	assert.ErrorIs(t, services.RequireAdmin(nil), services.ErrUnauthenticated)
	assert.ErrorIs(t, services.RequireAdmin(student), services.ErrForbidden)
	assert.NoError(t, services.RequireAdmin(admin))
}
