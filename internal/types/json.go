package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// assetJSON is the flat wire form of an Asset. Dates are YYYY-MM-DD.
type assetJSON struct {
	ID                 uuid.UUID           `json:"id"`
	AssetCode          string              `json:"asset_code"`
	EquipmentName      string              `json:"equipment_name"`
	Manufacturer       string              `json:"manufacturer"`
	Model              string              `json:"model"`
	SerialNumber       string              `json:"serial_number"`
	VoltageCombustion  string              `json:"voltage_combustion"`
	Supplier           string              `json:"supplier"`
	PurchaseDate       *string             `json:"purchase_date"`
	UnitValue          decimal.NullDecimal `json:"unit_value"`
	EquipmentCondition EquipmentCondition  `json:"equipment_condition"`
	LocationType       LocationType        `json:"location_type"`

	DepositoDescription *string `json:"deposito_description"`
	MaltaCollaborator   *string `json:"malta_collaborator"`

	RentalCompany        *string `json:"rental_company"`
	RentalWorkSite       *string `json:"rental_work_site"`
	RentalStartDate      *string `json:"rental_start_date"`
	RentalEndDate        *string `json:"rental_end_date"`
	RentalContractNumber *string `json:"rental_contract_number"`

	MaintenanceCompany           *string `json:"maintenance_company"`
	MaintenanceWorkSite          *string `json:"maintenance_work_site"`
	MaintenanceArrivalDate       *string `json:"maintenance_arrival_date"`
	MaintenanceDepartureDate     *string `json:"maintenance_departure_date"`
	MaintenanceDescription       *string `json:"maintenance_description"`
	MaintenanceDelayObservations *string `json:"maintenance_delay_observations"`

	InspectionStartDate *string `json:"inspection_start_date"`

	WasReplaced       bool       `json:"was_replaced"`
	ReplacedByAssetID *uuid.UUID `json:"replaced_by_asset_id"`
	ReplacementReason string     `json:"replacement_reason"`

	AvailableForRental       bool              `json:"available_for_rental"`
	NextMaintenanceHourmeter *float64          `json:"next_maintenance_hourmeter"`
	MaintenanceStatus        MaintenanceStatus `json:"maintenance_status"`

	RegisteredOn string    `json:"registered_on"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a Asset) MarshalJSON() ([]byte, error) {
	cols := a.Columns()
	return json.Marshal(assetJSON{
		ID:                 a.ID,
		AssetCode:          a.AssetCode,
		EquipmentName:      a.EquipmentName,
		Manufacturer:       a.Manufacturer,
		Model:              a.Model,
		SerialNumber:       a.SerialNumber,
		VoltageCombustion:  a.VoltageCombustion,
		Supplier:           a.Supplier,
		PurchaseDate:       FormatDatePtr(a.PurchaseDate),
		UnitValue:          a.UnitValue,
		EquipmentCondition: a.EquipmentCondition,
		LocationType:       a.LocationType(),

		DepositoDescription: cols.DepositoDescription,
		MaltaCollaborator:   cols.MaltaCollaborator,

		RentalCompany:        cols.RentalCompany,
		RentalWorkSite:       cols.RentalWorkSite,
		RentalStartDate:      FormatDatePtr(cols.RentalStartDate),
		RentalEndDate:        FormatDatePtr(cols.RentalEndDate),
		RentalContractNumber: cols.RentalContractNumber,

		MaintenanceCompany:           cols.MaintenanceCompany,
		MaintenanceWorkSite:          cols.MaintenanceWorkSite,
		MaintenanceArrivalDate:       FormatDatePtr(cols.MaintenanceArrivalDate),
		MaintenanceDepartureDate:     FormatDatePtr(cols.MaintenanceDepartureDate),
		MaintenanceDescription:       cols.MaintenanceDescription,
		MaintenanceDelayObservations: cols.MaintenanceDelayObservations,

		InspectionStartDate: FormatDatePtr(cols.InspectionStartDate),

		WasReplaced:       a.WasReplaced,
		ReplacedByAssetID: a.ReplacedByAssetID,
		ReplacementReason: a.ReplacementReason,

		AvailableForRental:       a.AvailableForRental,
		NextMaintenanceHourmeter: a.NextMaintenanceHourmeter,
		MaintenanceStatus:        a.MaintenanceStatus,

		RegisteredOn: a.RegisteredOn.Format(DateLayout),
		Version:      a.Version,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	})
}

func FormatDatePtr(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
