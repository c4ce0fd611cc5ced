package lifecycle

import (
	"context"
)

// Source tells where a request entered the system.
type Source string

const (
	SourceApp  Source = "app"
	SourceSync Source = "sync"
)

type RegisterInput struct {
	AssetCode          string `json:"asset_code" yaml:"asset_code"`
	EquipmentName      string `json:"equipment_name" yaml:"equipment_name"`
	Manufacturer       string `json:"manufacturer" yaml:"manufacturer"`
	Model              string `json:"model" yaml:"model"`
	SerialNumber       string `json:"serial_number" yaml:"serial_number"`
	VoltageCombustion  string `json:"voltage_combustion" yaml:"voltage_combustion"`
	Supplier           string `json:"supplier" yaml:"supplier"`
	PurchaseDate       string `json:"purchase_date" yaml:"purchase_date"`
	UnitValue          string `json:"unit_value" yaml:"unit_value"`
	EquipmentCondition string `json:"equipment_condition" yaml:"equipment_condition"`
	RegisteredOn       string `json:"registered_on" yaml:"registered_on"`
	Source             Source `json:"-" yaml:"-"`
}

// LocationInput carries the flat location fields of a move or decision.
// Only the group of the target location is read.
type LocationInput struct {
	DepositoDescription *string `json:"deposito_description"`
	MaltaCollaborator   *string `json:"malta_collaborator"`
	AvailableForRental  *bool   `json:"available_for_rental"`

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

	RetroactiveJustification string `json:"retroactive_justification"`
	ExpectedVersion          *int   `json:"expected_version"`
}

// DescriptivePatch updates descriptive fields only. Nil fields are left as is.
type DescriptivePatch struct {
	EquipmentName      *string `json:"equipment_name"`
	Manufacturer       *string `json:"manufacturer"`
	Model              *string `json:"model"`
	SerialNumber       *string `json:"serial_number"`
	VoltageCombustion  *string `json:"voltage_combustion"`
	Supplier           *string `json:"supplier"`
	PurchaseDate       *string `json:"purchase_date"`
	UnitValue          *string `json:"unit_value"`
	EquipmentCondition *string `json:"equipment_condition"`
	ExpectedVersion    *int    `json:"expected_version"`
	Source             Source  `json:"-"`
}

func (p DescriptivePatch) Empty() bool {
	return p.EquipmentName == nil && p.Manufacturer == nil && p.Model == nil && p.SerialNumber == nil &&
		p.VoltageCombustion == nil && p.Supplier == nil && p.PurchaseDate == nil && p.UnitValue == nil &&
		p.EquipmentCondition == nil
}

// SubstituteInput names the replacement asset of a substitution.
type SubstituteInput struct {
	NewAssetCode    string `json:"new_asset_code"`
	Reason          string `json:"reason"`
	Notes           string `json:"notes"`
	ExpectedVersion *int   `json:"expected_version"`
}

type actorKey struct{}

const DefaultActor = "sistema"

// WithActor attaches the user recorded as usuario_modificacao.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFrom(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return DefaultActor
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
