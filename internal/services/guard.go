package services

import (
	"github.com/aawaaz/complaint-desk/internal/models"
)

// Action names an operation the guard can authorize
type Action string

const (
	ActionRead       Action = "read"
	ActionListMine   Action = "list_mine"
	ActionListAll    Action = "list_all"
	ActionEdit       Action = "edit"
	ActionDelete     Action = "delete"
	ActionSetStatus  Action = "set_status"
	ActionStatistics Action = "statistics"
)

// rule inspects the principal and, for per-complaint actions, the target complaint
type rule func(p *models.Principal, c *models.Complaint) error

func authenticated(p *models.Principal, _ *models.Complaint) error {
	if p == nil {
		return ErrUnauthenticated
	}
	return nil
}

func adminOnly(p *models.Principal, _ *models.Complaint) error {
	if !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func adminOrOwner(p *models.Principal, c *models.Complaint) error {
	if p.IsAdmin() || c.OwnerID == p.UserID {
		return nil
	}
	return ErrForbidden
}

func ownerOnly(p *models.Principal, c *models.Complaint) error {
	if c.OwnerID != p.UserID {
		return ErrForbidden
	}
	return nil
}

func stillPending(_ *models.Principal, c *models.Complaint) error {
	if c.Status != models.StatusPending {
		return ErrInvalidState
	}
	return nil
}

// rules is evaluated top to bottom; the first failing rule decides the error
var rules = map[Action][]rule{
	ActionRead:       {authenticated, adminOrOwner},
	ActionListMine:   {authenticated},
	ActionListAll:    {authenticated, adminOnly},
	ActionEdit:       {authenticated, ownerOnly, stillPending},
	ActionDelete:     {authenticated, ownerOnly, stillPending},
	ActionSetStatus:  {authenticated, adminOnly},
	ActionStatistics: {authenticated, adminOnly},
}

// Authorize runs the rule table for action. c may be nil for actions that do
// not target a single complaint.
func Authorize(p *models.Principal, action Action, c *models.Complaint) error {
	chain, ok := rules[action]
	if !ok {
		return ErrForbidden
	}
	for _, check := range chain {
		if err := check(p, c); err != nil {
			return err
		}
	}
	return nil
}

// RequirePrincipal runs the authentication rule on its own, for callers that
// must reject anonymous requests before reading any input
func RequirePrincipal(p *models.Principal) error {
	return authenticated(p, nil)
}

// RequireAdmin runs the authentication and role rules of the admin-only actions
func RequireAdmin(p *models.Principal) error {
	return Authorize(p, ActionListAll, nil)
}
