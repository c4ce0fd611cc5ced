package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

type LocationType string

const (
	LocationDeposit     LocationType = "deposito_malta"
	LocationRental      LocationType = "locacao"
	LocationMaintenance LocationType = "em_manutencao"
	LocationInspection  LocationType = "aguardando_laudo"
)

func (l LocationType) Valid() bool {
	switch l {
	case LocationDeposit, LocationRental, LocationMaintenance, LocationInspection:
		return true
	}
	return false
}

// Label returns the pt-BR display name used in history narratives.
func (l LocationType) Label() string {
	switch l {
	case LocationDeposit:
		return "Depósito Malta"
	case LocationRental:
		return "Locação"
	case LocationMaintenance:
		return "Em Manutenção"
	case LocationInspection:
		return "Aguardando Laudo"
	default:
		return string(l)
	}
}

type EquipmentCondition string

const (
	ConditionNew  EquipmentCondition = "NOVO"
	ConditionUsed EquipmentCondition = "USADO"
)

func (c EquipmentCondition) Valid() bool {
	return c == "" || c == ConditionNew || c == ConditionUsed
}

type MaintenanceStatus string

const (
	MaintenanceUpToDate MaintenanceStatus = "em_dia"
	MaintenanceDueSoon  MaintenanceStatus = "proxima_manutencao"
	MaintenanceOverdue  MaintenanceStatus = "atrasada"
)

// Asset is one physical piece of equipment identified by its PAT code.
type Asset struct {
	ID        uuid.UUID
	AssetCode string

	EquipmentName      string
	Manufacturer       string
	Model              string
	SerialNumber       string
	VoltageCombustion  string
	Supplier           string
	PurchaseDate       *time.Time
	UnitValue          decimal.NullDecimal
	EquipmentCondition EquipmentCondition

	Location LocationDetails

	WasReplaced       bool
	ReplacedByAssetID *uuid.UUID
	ReplacementReason string

	AvailableForRental       bool
	NextMaintenanceHourmeter *float64
	MaintenanceStatus        MaintenanceStatus

	RegisteredOn time.Time
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LocationType returns the active lifecycle state.
func (a *Asset) LocationType() LocationType {
	if a.Location == nil {
		return ""
	}
	return a.Location.LocationType()
}

// Columns flattens the active location group into nullable columns.
func (a *Asset) Columns() LocationColumns {
	var cols LocationColumns
	if a.Location != nil {
		a.Location.apply(&cols)
	}
	return cols
}

// Clone returns a deep copy, location group included.
func (a *Asset) Clone() *Asset {
	if a == nil {
		return nil
	}
	c := *a
	if a.PurchaseDate != nil {
		d := *a.PurchaseDate
		c.PurchaseDate = &d
	}
	if a.ReplacedByAssetID != nil {
		id := *a.ReplacedByAssetID
		c.ReplacedByAssetID = &id
	}
	if a.NextMaintenanceHourmeter != nil {
		h := *a.NextMaintenanceHourmeter
		c.NextMaintenanceHourmeter = &h
	}
	if a.Location != nil {
		c.Location, _ = DetailsFromColumns(a.LocationType(), a.Columns())
	}
	return &c
}

type AssetFilter struct {
	Location LocationType
	Query    string
	Limit    int
}

// HistoryEvent is an append-only audit record.
type HistoryEvent struct {
	ID                 uuid.UUID `json:"id"`
	PatID              uuid.UUID `json:"pat_id"`
	CodigoPat          string    `json:"codigo_pat"`
	TipoEvento         string    `json:"tipo_evento"`
	CampoAlterado      *string   `json:"campo_alterado"`
	ValorAntigo        *string   `json:"valor_antigo"`
	ValorNovo          *string   `json:"valor_novo"`
	DetalhesEvento     string    `json:"detalhes_evento"`
	DataModificacao    time.Time `json:"data_modificacao"`
	UsuarioModificacao string    `json:"usuario_modificacao"`
}

const (
	EventMovement           = "MOVIMENTAÇÃO"
	EventInspectionDecision = "DECISÃO PÓS-LAUDO"
	EventSyncCreate         = "SYNC_CREATE"
	EventSyncUpdate         = "SYNC_UPDATE"
	EventUpdate             = "ATUALIZAÇÃO"
)

type CycleKind string

const (
	CycleRental      CycleKind = "locacao"
	CycleMaintenance CycleKind = "manutencao"
)

// LifecycleCycle archives a closed rental or maintenance period.
type LifecycleCycle struct {
	ID             uuid.UUID  `json:"id"`
	AssetID        uuid.UUID  `json:"asset_id"`
	AssetCode      string     `json:"asset_code"`
	Kind           CycleKind  `json:"kind"`
	Company        string     `json:"company"`
	WorkSite       string     `json:"work_site"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	ContractNumber string     `json:"contract_number,omitempty"`
	Description    string     `json:"description,omitempty"`
	ClosedAt       time.Time  `json:"closed_at"`
	ClosedBy       string     `json:"closed_by"`
}

type MaintenanceRecord struct {
	ID          uuid.UUID           `json:"id"`
	AssetID     uuid.UUID           `json:"asset_id"`
	Hourmeter   float64             `json:"hourmeter"`
	Preventive  bool                `json:"preventive"`
	Cost        decimal.NullDecimal `json:"cost"`
	Description string              `json:"description"`
	PerformedOn time.Time           `json:"performed_on"`
	CreatedBy   string              `json:"created_by"`
	CreatedAt   time.Time           `json:"created_at"`
}
