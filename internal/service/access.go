package service

import (
	"github.com/iliyamo/hospitality-reservation/internal/apperr"
	"github.com/iliyamo/hospitality-reservation/internal/model"
)

// Capability names one protected operation family.
type Capability string

const (
	CapBookingCreate   Capability = "booking:create"
	CapBookingReadOwn  Capability = "booking:read-own"
	CapBookingManage   Capability = "booking:manage"
	CapBillingManage   Capability = "billing:manage"
	CapInventoryManage Capability = "inventory:manage"
	CapDashboardView   Capability = "dashboard:view"
	CapUsersManage     Capability = "users:manage"
)

// roleCapabilities is the single place that says what each role may do.
var roleCapabilities = map[model.Role][]Capability{
	model.RoleCustomer: {CapBookingCreate, CapBookingReadOwn},
	model.RoleAgent:    {CapBookingCreate, CapBookingReadOwn},
	model.RoleAdmin: {
		CapBookingCreate, CapBookingReadOwn, CapBookingManage, CapBillingManage,
		CapInventoryManage, CapDashboardView, CapUsersManage,
	},
}

// Principal is the authenticated caller, built from the freshly loaded
// user record.
type Principal struct {
	UserID   uint64
	Email    string
	FullName string
	Phone    string
	Roles    []model.Role
}

// NewPrincipal builds the caller from a freshly loaded user record.
func NewPrincipal(u model.User) *Principal {
	return &Principal{
		UserID:   u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Phone:    u.Phone,
		Roles:    append([]model.Role{}, u.Roles...),
	}
}

// Can reports whether any of the principal's roles grants c.
func (p *Principal) Can(c Capability) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		for _, have := range roleCapabilities[r] {
			if have == c {
				return true
			}
		}
	}
	return false
}

// Authorize fails with an authentication error for a missing principal
// and with an authorization error when no role grants c.
func Authorize(p *Principal, c Capability) error {
	if p == nil {
		return apperr.Authentication("authentication required")
	}
	if !p.Can(c) {
		return apperr.Authorization("insufficient permissions")
	}
	return nil
}

// ownerFilter returns nil for callers who may see every booking and the
// caller's id otherwise.
func ownerFilter(p *Principal) (*uint64, error) {
	if err := Authorize(p, CapBookingReadOwn); err != nil {
		return nil, err
	}
	if p.Can(CapBookingManage) {
		return nil, nil
	}
	id := p.UserID
	return &id, nil
}
