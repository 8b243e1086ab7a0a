package service

import (
	"errors"

	"github.com/iliyamo/hospitality-reservation/internal/apperr"
	"github.com/iliyamo/hospitality-reservation/internal/repository"
)

// storeErr classifies a store failure. what names the entity for
// not-found messages.
func storeErr(op, what string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(what)
	case errors.Is(err, repository.ErrSlotTaken):
		return apperr.Conflict("%s is already booked for the requested time", what)
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Conflict("%s already exists", what)
	case errors.Is(err, repository.ErrInUse):
		return apperr.Conflict("%s has active reservations", what)
	case errors.Is(err, repository.ErrEmailExists):
		return apperr.Conflict("email already registered")
	}
	return apperr.Internal(op, err)
}
