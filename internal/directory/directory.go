package directory

import (
	"context"
	"errors"

	driververrors "fleetdesk/internal/drivers/errors"
	driverrepo "fleetdesk/internal/drivers/repository"
	proferrors "fleetdesk/internal/professionals/errors"
	profrepo "fleetdesk/internal/professionals/repository"
	"fleetdesk/pkg/model"
)

// Directory resolves the availability metadata the booking validator
// needs from the driver and professional collections. Every resolution
// hits the store; availability is never cached across requests.
type Directory struct {
	drivers       driverrepo.DriverRepository
	professionals profrepo.ProfessionalRepository
}

func New(drivers driverrepo.DriverRepository, professionals profrepo.ProfessionalRepository) *Directory {
	return &Directory{
		drivers:       drivers,
		professionals: professionals,
	}
}

func (d *Directory) DriverAvailability(ctx context.Context, id string) (model.Availability, bool, error) {
	driver, err := d.drivers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, driververrors.ErrNotFound) || errors.Is(err, driververrors.ErrInvalidID) {
			return model.Availability{}, false, nil
		}
		return model.Availability{}, false, err
	}
	return driver.Availability(), true, nil
}

func (d *Directory) ProfessionalAvailability(ctx context.Context, id string) (model.Availability, bool, error) {
	professional, err := d.professionals.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, proferrors.ErrNotFound) || errors.Is(err, proferrors.ErrInvalidID) {
			return model.Availability{}, false, nil
		}
		return model.Availability{}, false, err
	}
	return professional.Availability(), true, nil
}
