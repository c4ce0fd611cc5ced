package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/KevinKickass/OpenAssetCore/internal/calendar"
	"github.com/KevinKickass/OpenAssetCore/internal/types"
	"github.com/shopspring/decimal"
)

// requiredFields is the required-field table per target location.
var requiredFields = map[types.LocationType][]string{
	types.LocationRental:      {"rental_company", "rental_work_site", "rental_start_date"},
	types.LocationMaintenance: {"maintenance_company", "maintenance_work_site", "maintenance_arrival_date", "maintenance_description"},
	types.LocationDeposit:     {},
}

var fieldLabels = map[string]string{
	"rental_company":             "Empresa da locação",
	"rental_work_site":           "Obra da locação",
	"rental_start_date":          "Data de início da locação",
	"rental_end_date":            "Data de término da locação",
	"maintenance_company":        "Empresa de manutenção",
	"maintenance_work_site":      "Obra da manutenção",
	"maintenance_arrival_date":   "Data de chegada na manutenção",
	"maintenance_departure_date": "Data de saída da manutenção",
	"maintenance_description":    "Descrição da manutenção",
}

func (in LocationInput) field(name string) *string {
	switch name {
	case "rental_company":
		return in.RentalCompany
	case "rental_work_site":
		return in.RentalWorkSite
	case "rental_start_date":
		return in.RentalStartDate
	case "maintenance_company":
		return in.MaintenanceCompany
	case "maintenance_work_site":
		return in.MaintenanceWorkSite
	case "maintenance_arrival_date":
		return in.MaintenanceArrivalDate
	case "maintenance_description":
		return in.MaintenanceDescription
	}
	return nil
}

// MissingFields returns the required fields of target absent from in.
func MissingFields(target types.LocationType, in LocationInput) []string {
	var missing []string
	for _, name := range requiredFields[target] {
		if strings.TrimSpace(value(in.field(name))) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// buildDetails validates in against target and builds its field group. No
// date policy is applied here.
func (e *Engine) buildDetails(target types.LocationType, in LocationInput) (types.LocationDetails, error) {
	verr := &ValidationError{}
	for _, name := range MissingFields(target, in) {
		verr.add(name, fmt.Sprintf("%s é obrigatório", fieldLabels[name]))
	}

	switch target {
	case types.LocationDeposit:
		description := strings.TrimSpace(value(in.DepositoDescription))
		if description == "" {
			description = e.opts.ReturnDescription
		}
		if err := verr.orNil(); err != nil {
			return nil, err
		}
		return types.DepositDetails{
			Description:  description,
			Collaborator: strings.TrimSpace(value(in.MaltaCollaborator)),
		}, nil

	case types.LocationRental:
		start := e.parseDateField(verr, "rental_start_date", in.RentalStartDate)
		end := e.parseDateField(verr, "rental_end_date", in.RentalEndDate)
		if err := verr.orNil(); err != nil {
			return nil, err
		}
		return types.RentalDetails{
			Company:        strings.TrimSpace(value(in.RentalCompany)),
			WorkSite:       strings.TrimSpace(value(in.RentalWorkSite)),
			StartDate:      *start,
			EndDate:        end,
			ContractNumber: strings.TrimSpace(value(in.RentalContractNumber)),
		}, nil

	case types.LocationMaintenance:
		arrival := e.parseDateField(verr, "maintenance_arrival_date", in.MaintenanceArrivalDate)
		departure := e.parseDateField(verr, "maintenance_departure_date", in.MaintenanceDepartureDate)
		if err := verr.orNil(); err != nil {
			return nil, err
		}
		return types.MaintenanceDetails{
			Company:           strings.TrimSpace(value(in.MaintenanceCompany)),
			WorkSite:          strings.TrimSpace(value(in.MaintenanceWorkSite)),
			ArrivalDate:       *arrival,
			DepartureDate:     departure,
			Description:       strings.TrimSpace(value(in.MaintenanceDescription)),
			DelayObservations: strings.TrimSpace(value(in.MaintenanceDelayObservations)),
		}, nil
	}

	verr.add("location_type", fmt.Sprintf("Destino inválido: %q", target))
	return nil, verr
}

func (e *Engine) parseDateField(verr *ValidationError, field string, raw *string) *time.Time {
	s := strings.TrimSpace(value(raw))
	if s == "" {
		return nil
	}
	t, err := e.clock.ParseDate(s)
	if err != nil {
		verr.add(field, fmt.Sprintf("Data inválida em %s: use AAAA-MM-DD", field))
		return nil
	}
	return &t
}

type datedGroup struct {
	startField string
	endField   string
	start      time.Time
	end        *time.Time
}

func datesOf(details types.LocationDetails) (datedGroup, bool) {
	switch d := details.(type) {
	case types.RentalDetails:
		return datedGroup{"rental_start_date", "rental_end_date", d.StartDate, d.EndDate}, true
	case types.MaintenanceDetails:
		return datedGroup{"maintenance_arrival_date", "maintenance_departure_date", d.ArrivalDate, d.DepartureDate}, true
	}
	return datedGroup{}, false
}

// checkDates applies the date policy: start not before registration nor in
// the future, end not before start, and a justification when start is older
// than the retroactive window.
func (e *Engine) checkDates(asset *types.Asset, details types.LocationDetails, justification string) error {
	g, ok := datesOf(details)
	if !ok {
		return nil
	}

	today := e.clock.Today()
	if g.start.Before(asset.RegisteredOn) {
		return &InvalidDateRange{Field: g.startField, Bound: BoundRegistration, AssetCode: asset.AssetCode}
	}
	if g.start.After(today) {
		return &InvalidDateRange{Field: g.startField, Bound: BoundFuture, AssetCode: asset.AssetCode}
	}
	if g.end != nil && g.end.Before(g.start) {
		return &InvalidDateRange{Field: g.endField, Bound: BoundStart, AssetCode: asset.AssetCode}
	}
	if calendar.DaysBetween(g.start, today) > e.opts.RetroactiveDays && strings.TrimSpace(justification) == "" {
		return &ValidationError{Fields: []FieldError{{
			Field:   "retroactive_justification",
			Message: fmt.Sprintf("Justificativa obrigatória para datas com mais de %d dias no passado", e.opts.RetroactiveDays),
		}}}
	}
	return nil
}

// parsedRegistration is a validated RegisterInput.
type parsedRegistration struct {
	code         string
	purchaseDate *time.Time
	unitValue    decimal.NullDecimal
	condition    types.EquipmentCondition
	registeredOn time.Time
}

func (e *Engine) parseRegistration(in RegisterInput, code string, codeErr error) (*parsedRegistration, error) {
	verr := &ValidationError{}
	if codeErr != nil {
		verr.add("asset_code", "Código PAT deve conter exatamente 6 dígitos numéricos")
	}
	if strings.TrimSpace(in.EquipmentName) == "" {
		verr.add("equipment_name", "Nome do equipamento é obrigatório")
	}

	p := &parsedRegistration{code: code, registeredOn: e.clock.Today()}
	p.purchaseDate = e.parseDateField(verr, "purchase_date", &in.PurchaseDate)

	if raw := strings.TrimSpace(in.UnitValue); raw != "" {
		v, err := types.ParseMoney(raw)
		if err != nil || v.IsNegative() {
			verr.add("unit_value", "Valor unitário inválido")
		} else {
			p.unitValue = decimal.NewNullDecimal(v)
		}
	}

	p.condition = types.EquipmentCondition(strings.ToUpper(strings.TrimSpace(in.EquipmentCondition)))
	if !p.condition.Valid() {
		verr.add("equipment_condition", "Condição deve ser NOVO ou USADO")
	}

	if registered := e.parseDateField(verr, "registered_on", &in.RegisteredOn); registered != nil {
		if registered.After(p.registeredOn) {
			verr.add("registered_on", "Data de cadastro não pode estar no futuro")
		} else {
			p.registeredOn = *registered
		}
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return p, nil
}
