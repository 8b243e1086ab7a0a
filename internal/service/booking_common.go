package service

import (
	"strings"

	"github.com/iliyamo/hospitality-reservation/internal/apperr"
	"github.com/iliyamo/hospitality-reservation/internal/model"
)

// resolveContact applies the guest-contact rule. An authenticated actor's
// profile fills absent fields; an anonymous request must carry a name and
// at least one of email or phone.
func resolveContact(p *Principal, name, email, phone string) (model.Contact, error) {
	c := model.Contact{
		Name:  strings.TrimSpace(name),
		Email: strings.ToLower(strings.TrimSpace(email)),
		Phone: strings.TrimSpace(phone),
	}
	if p != nil {
		if c.Name == "" {
			c.Name = p.FullName
		}
		if c.Email == "" {
			c.Email = p.Email
		}
		if c.Phone == "" {
			c.Phone = p.Phone
		}
	} else {
		if c.Name == "" {
			return c, apperr.Validation("guest name is required when not logged in")
		}
		if c.Email == "" && c.Phone == "" {
			return c, apperr.Validation("guest email or phone is required when not logged in")
		}
	}
	if c.Email != "" && !validEmail(c.Email) {
		return c, apperr.Validation("guest email is not valid")
	}
	return c, nil
}

// unavailable turns a negative verdict into the error returned to
// callers.
func unavailable(what string, a Availability) error {
	if a.ConflictingID != nil {
		return apperr.Conflict("%s is already booked for the requested time", what)
	}
	return apperr.Conflict("%s cannot be booked: %s", what, a.Reason)
}

func ownerID(p *Principal) *uint64 {
	if p == nil {
		return nil
	}
	id := p.UserID
	return &id
}
