package types

import (
	"fmt"
	"time"
)

// LocationDetails is the field group of the active location. The set of
// implementations is closed: DepositDetails, RentalDetails,
// MaintenanceDetails and InspectionDetails.
type LocationDetails interface {
	LocationType() LocationType
	apply(cols *LocationColumns)
}

type DepositDetails struct {
	Description  string
	Collaborator string
}

func (DepositDetails) LocationType() LocationType { return LocationDeposit }

func (d DepositDetails) apply(cols *LocationColumns) {
	cols.DepositoDescription = strPtr(d.Description)
	cols.MaltaCollaborator = strPtr(d.Collaborator)
}

type RentalDetails struct {
	Company        string
	WorkSite       string
	StartDate      time.Time
	EndDate        *time.Time
	ContractNumber string
}

func (RentalDetails) LocationType() LocationType { return LocationRental }

func (r RentalDetails) apply(cols *LocationColumns) {
	cols.RentalCompany = strPtr(r.Company)
	cols.RentalWorkSite = strPtr(r.WorkSite)
	cols.RentalStartDate = datePtr(r.StartDate)
	cols.RentalEndDate = copyDate(r.EndDate)
	cols.RentalContractNumber = strPtr(r.ContractNumber)
}

type MaintenanceDetails struct {
	Company           string
	WorkSite          string
	ArrivalDate       time.Time
	DepartureDate     *time.Time
	Description       string
	DelayObservations string
}

func (MaintenanceDetails) LocationType() LocationType { return LocationMaintenance }

func (m MaintenanceDetails) apply(cols *LocationColumns) {
	cols.MaintenanceCompany = strPtr(m.Company)
	cols.MaintenanceWorkSite = strPtr(m.WorkSite)
	cols.MaintenanceArrivalDate = datePtr(m.ArrivalDate)
	cols.MaintenanceDepartureDate = copyDate(m.DepartureDate)
	cols.MaintenanceDescription = strPtr(m.Description)
	cols.MaintenanceDelayObservations = strPtr(m.DelayObservations)
}

// InspectionDetails holds the awaiting-inspection state. Groups of the
// previous location are carried so a later decision can archive or reuse them.
type InspectionDetails struct {
	StartDate   time.Time
	Deposit     *DepositDetails
	Rental      *RentalDetails
	Maintenance *MaintenanceDetails
}

func (InspectionDetails) LocationType() LocationType { return LocationInspection }

func (i InspectionDetails) apply(cols *LocationColumns) {
	if i.Deposit != nil {
		i.Deposit.apply(cols)
	}
	if i.Rental != nil {
		i.Rental.apply(cols)
	}
	if i.Maintenance != nil {
		i.Maintenance.apply(cols)
	}
	cols.InspectionStartDate = datePtr(i.StartDate)
}

// Carry builds the inspection state that keeps the given previous group.
func Carry(previous LocationDetails, startDate time.Time) InspectionDetails {
	insp := InspectionDetails{StartDate: startDate}
	switch p := previous.(type) {
	case DepositDetails:
		insp.Deposit = &p
	case RentalDetails:
		insp.Rental = &p
	case MaintenanceDetails:
		insp.Maintenance = &p
	case InspectionDetails:
		insp.Deposit, insp.Rental, insp.Maintenance = p.Deposit, p.Rental, p.Maintenance
	}
	return insp
}

// LocationColumns is the flat, nullable storage and wire form of the
// location field groups.
type LocationColumns struct {
	DepositoDescription *string `json:"deposito_description"`
	MaltaCollaborator   *string `json:"malta_collaborator"`

	RentalCompany        *string    `json:"rental_company"`
	RentalWorkSite       *string    `json:"rental_work_site"`
	RentalStartDate      *time.Time `json:"rental_start_date"`
	RentalEndDate        *time.Time `json:"rental_end_date"`
	RentalContractNumber *string    `json:"rental_contract_number"`

	MaintenanceCompany           *string    `json:"maintenance_company"`
	MaintenanceWorkSite          *string    `json:"maintenance_work_site"`
	MaintenanceArrivalDate       *time.Time `json:"maintenance_arrival_date"`
	MaintenanceDepartureDate     *time.Time `json:"maintenance_departure_date"`
	MaintenanceDescription       *string    `json:"maintenance_description"`
	MaintenanceDelayObservations *string    `json:"maintenance_delay_observations"`

	InspectionStartDate *time.Time `json:"inspection_start_date"`
}

func (c LocationColumns) HasDeposit() bool {
	return c.DepositoDescription != nil || c.MaltaCollaborator != nil
}

func (c LocationColumns) HasRental() bool {
	return c.RentalCompany != nil || c.RentalWorkSite != nil || c.RentalStartDate != nil ||
		c.RentalEndDate != nil || c.RentalContractNumber != nil
}

func (c LocationColumns) HasMaintenance() bool {
	return c.MaintenanceCompany != nil || c.MaintenanceWorkSite != nil || c.MaintenanceArrivalDate != nil ||
		c.MaintenanceDepartureDate != nil || c.MaintenanceDescription != nil || c.MaintenanceDelayObservations != nil
}

// DetailsFromColumns rebuilds the location group of a stored row. Columns of
// inactive groups are ignored except in aguardando_laudo, where they are
// carried.
func DetailsFromColumns(lt LocationType, c LocationColumns) (LocationDetails, error) {
	switch lt {
	case LocationDeposit:
		return depositFrom(c), nil
	case LocationRental:
		return rentalFrom(c), nil
	case LocationMaintenance:
		return maintenanceFrom(c), nil
	case LocationInspection:
		insp := InspectionDetails{StartDate: deref(c.InspectionStartDate)}
		if c.HasDeposit() {
			d := depositFrom(c)
			insp.Deposit = &d
		}
		if c.HasRental() {
			r := rentalFrom(c)
			insp.Rental = &r
		}
		if c.HasMaintenance() {
			m := maintenanceFrom(c)
			insp.Maintenance = &m
		}
		return insp, nil
	default:
		return nil, fmt.Errorf("unknown location type: %q", lt)
	}
}

func depositFrom(c LocationColumns) DepositDetails {
	return DepositDetails{
		Description:  derefStr(c.DepositoDescription),
		Collaborator: derefStr(c.MaltaCollaborator),
	}
}

func rentalFrom(c LocationColumns) RentalDetails {
	return RentalDetails{
		Company:        derefStr(c.RentalCompany),
		WorkSite:       derefStr(c.RentalWorkSite),
		StartDate:      deref(c.RentalStartDate),
		EndDate:        copyDate(c.RentalEndDate),
		ContractNumber: derefStr(c.RentalContractNumber),
	}
}

func maintenanceFrom(c LocationColumns) MaintenanceDetails {
	return MaintenanceDetails{
		Company:           derefStr(c.MaintenanceCompany),
		WorkSite:          derefStr(c.MaintenanceWorkSite),
		ArrivalDate:       deref(c.MaintenanceArrivalDate),
		DepartureDate:     copyDate(c.MaintenanceDepartureDate),
		Description:       derefStr(c.MaintenanceDescription),
		DelayObservations: derefStr(c.MaintenanceDelayObservations),
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func datePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func copyDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := *t
	return &d
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
