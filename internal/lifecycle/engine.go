package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KevinKickass/OpenAssetCore/internal/calendar"
	"github.com/KevinKickass/OpenAssetCore/internal/interfaces"
	"github.com/KevinKickass/OpenAssetCore/internal/maintenance"
	"github.com/KevinKickass/OpenAssetCore/internal/patcode"
	"github.com/KevinKickass/OpenAssetCore/internal/textnorm"
	"github.com/KevinKickass/OpenAssetCore/internal/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultRegisterDescription = "Aguardando definição de localização"
	DefaultReturnDescription   = "Retornado ao depósito"
	DefaultRetroactiveDays     = 7
)

type Options struct {
	RegisterDescription string
	ReturnDescription   string
	RetroactiveDays     int
	Maintenance         maintenance.Policy
}

func DefaultOptions() Options {
	return Options{
		RegisterDescription: DefaultRegisterDescription,
		ReturnDescription:   DefaultReturnDescription,
		RetroactiveDays:     DefaultRetroactiveDays,
		Maintenance:         maintenance.DefaultPolicy(),
	}
}

// Engine owns the location_type state of assets. Each operation validates
// before writing and commits its writes in one store transaction.
type Engine struct {
	store    interfaces.AssetStore
	hours    interfaces.MaintenanceRepository
	clock    *calendar.Clock
	notifier Notifier
	logger   *zap.Logger
	opts     Options
}

func NewEngine(store interfaces.AssetStore, clock *calendar.Clock, opts Options, logger *zap.Logger) *Engine {
	if opts.RegisterDescription == "" {
		opts.RegisterDescription = DefaultRegisterDescription
	}
	if opts.ReturnDescription == "" {
		opts.ReturnDescription = DefaultReturnDescription
	}
	if opts.RetroactiveDays <= 0 {
		opts.RetroactiveDays = DefaultRetroactiveDays
	}
	if opts.Maintenance.IntervalHours <= 0 {
		opts.Maintenance = maintenance.DefaultPolicy()
	}
	return &Engine{
		store:    store,
		clock:    clock,
		notifier: NopNotifier{},
		logger:   logger,
		opts:     opts,
	}
}

// SetNotifier replaces the event sink. Call before serving requests.
func (e *Engine) SetNotifier(n Notifier) {
	if n == nil {
		n = NopNotifier{}
	}
	e.notifier = n
}

// SetMaintenanceRepository enables RefreshMaintenanceStatus.
func (e *Engine) SetMaintenanceRepository(repo interfaces.MaintenanceRepository) {
	e.hours = repo
}

func (e *Engine) Clock() *calendar.Clock {
	return e.clock
}

// RegisterAsset creates an asset in deposito_malta.
func (e *Engine) RegisterAsset(ctx context.Context, in RegisterInput) (*types.Asset, error) {
	code, codeErr := patcode.Normalize(in.AssetCode)
	parsed, err := e.parseRegistration(in, code, codeErr)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	asset := &types.Asset{
		ID:                 uuid.New(),
		AssetCode:          parsed.code,
		EquipmentName:      strings.TrimSpace(in.EquipmentName),
		Manufacturer:       strings.TrimSpace(in.Manufacturer),
		Model:              strings.TrimSpace(in.Model),
		SerialNumber:       strings.TrimSpace(in.SerialNumber),
		VoltageCombustion:  strings.TrimSpace(in.VoltageCombustion),
		Supplier:           strings.TrimSpace(in.Supplier),
		PurchaseDate:       parsed.purchaseDate,
		UnitValue:          parsed.unitValue,
		EquipmentCondition: parsed.condition,
		Location:           types.DepositDetails{Description: e.opts.RegisterDescription},
		AvailableForRental: true,
		MaintenanceStatus:  types.MaintenanceUpToDate,
		RegisteredOn:       parsed.registeredOn,
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = e.run(ctx, func(tx interfaces.AssetTx) error {
		existing, err := tx.GetAssetByCode(ctx, asset.AssetCode)
		if err == nil {
			return &DuplicateAssetCode{Code: asset.AssetCode, ExistingID: existing.ID}
		}
		if !errors.Is(err, interfaces.ErrNotFound) {
			return err
		}

		if err := tx.CreateAsset(ctx, asset); err != nil {
			if errors.Is(err, interfaces.ErrDuplicateCode) {
				return &DuplicateAssetCode{Code: asset.AssetCode}
			}
			return err
		}

		if in.Source == SourceSync {
			return e.record(ctx, tx, asset, types.EventSyncCreate, nil,
				narrative("Criado via sincronização", describe(asset.Location)...))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Asset registered",
		zap.String("asset_code", asset.AssetCode),
		zap.String("source", string(in.Source)))
	e.publish(ctx, EventAssetRegistered, asset, "", types.LocationDeposit, "")
	return asset, nil
}

// MoveAsset moves an asset between the three operating locations.
func (e *Engine) MoveAsset(ctx context.Context, assetID uuid.UUID, target types.LocationType, in LocationInput) (*types.Asset, error) {
	if !IsMoveTarget(target) {
		return nil, &ValidationError{Fields: []FieldError{{
			Field:   "location_type",
			Message: fmt.Sprintf("Destino inválido: %q", target),
		}}}
	}

	var (
		result *types.Asset
		from   types.LocationType
	)
	err := e.run(ctx, func(tx interfaces.AssetTx) error {
		asset, err := e.load(ctx, tx, assetID, in.ExpectedVersion)
		if err != nil {
			return err
		}
		if err := ValidateTransition(asset, OpMove); err != nil {
			return err
		}
		details, err := e.buildDetails(target, in)
		if err != nil {
			return err
		}
		if err := e.checkDates(asset, details, in.RetroactiveJustification); err != nil {
			return err
		}

		previous := asset.Location
		from = asset.LocationType()
		asset.Location = details
		asset.AvailableForRental = target == types.LocationDeposit &&
			(in.AvailableForRental == nil || *in.AvailableForRental)

		if err := e.save(ctx, tx, asset); err != nil {
			return err
		}
		change := &fieldChange{field: "location_type", old: string(from), new: string(target)}
		if err := e.record(ctx, tx, asset, types.EventMovement, change,
			moveNarrative(previous, details, in.RetroactiveJustification)); err != nil {
			return err
		}
		result = asset
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Asset moved",
		zap.String("asset_code", result.AssetCode),
		zap.String("from", string(from)),
		zap.String("to", string(target)))
	e.publish(ctx, EventAssetMoved, result, from, target, "")
	return result, nil
}

// SendToInspection puts an asset in aguardando_laudo. The groups of the
// previous location are carried, not cleared. An asset already waiting for
// inspection is returned unchanged.
func (e *Engine) SendToInspection(ctx context.Context, assetID uuid.UUID, expectedVersion *int) (*types.Asset, error) {
	var (
		result *types.Asset
		from   types.LocationType
		noop   bool
	)
	err := e.run(ctx, func(tx interfaces.AssetTx) error {
		asset, err := e.load(ctx, tx, assetID, expectedVersion)
		if err != nil {
			return err
		}
		if err := ValidateTransition(asset, OpSendToInspection); err != nil {
			return err
		}
		if asset.LocationType() == types.LocationInspection {
			result, noop = asset, true
			return nil
		}

		previous := asset.Location
		from = asset.LocationType()
		asset.Location = types.Carry(previous, e.clock.Today())
		asset.AvailableForRental = false

		if err := e.save(ctx, tx, asset); err != nil {
			return err
		}
		change := &fieldChange{field: "location_type", old: string(from), new: string(types.LocationInspection)}
		if err := e.record(ctx, tx, asset, types.EventMovement, change, inspectionNarrative(previous)); err != nil {
			return err
		}
		result = asset
		return nil
	})
	if err != nil {
		return nil, err
	}

	if noop {
		return result, nil
	}
	e.logger.Info("Asset sent to inspection", zap.String("asset_code", result.AssetCode))
	e.publish(ctx, EventAssetMoved, result, from, types.LocationInspection, "")
	return result, nil
}

// ResolveInspection applies the decision taken for an asset in
// aguardando_laudo. Approving archives the carried rental and maintenance
// groups as lifecycle cycles before clearing them.
func (e *Engine) ResolveInspection(ctx context.Context, assetID uuid.UUID, decision Decision, in LocationInput) (*types.Asset, error) {
	if !decision.Valid() {
		return nil, &ValidationError{Fields: []FieldError{{
			Field:   "decision",
			Message: "Decisão deve ser approve, maintenance ou return",
		}}}
	}

	var result *types.Asset
	target := decision.Target()
	err := e.run(ctx, func(tx interfaces.AssetTx) error {
		asset, err := e.load(ctx, tx, assetID, in.ExpectedVersion)
		if err != nil {
			return err
		}
		if err := ValidateTransition(asset, OpResolveInspection); err != nil {
			return err
		}
		carried, _ := asset.Location.(types.InspectionDetails)

		if decision != DecisionApprove {
			in = fillFromCarried(in, carried, target)
		}
		details, err := e.buildDetails(target, in)
		if err != nil {
			return err
		}
		if err := e.checkDates(asset, details, in.RetroactiveJustification); err != nil {
			return err
		}

		archived := 0
		if decision == DecisionApprove {
			for _, cycle := range e.cyclesOf(ctx, asset, carried) {
				if err := tx.ArchiveCycle(ctx, cycle); err != nil {
					return fmt.Errorf("failed to archive %s cycle: %w", cycle.Kind, err)
				}
				archived++
			}
		}

		asset.Location = details
		asset.AvailableForRental = decision == DecisionApprove

		if err := e.save(ctx, tx, asset); err != nil {
			return err
		}
		change := &fieldChange{field: "location_type", old: string(types.LocationInspection), new: string(target)}
		if err := e.record(ctx, tx, asset, types.EventInspectionDecision, change,
			decisionNarrative(decision, details, archived, in.RetroactiveJustification)); err != nil {
			return err
		}
		result = asset
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Inspection resolved",
		zap.String("asset_code", result.AssetCode),
		zap.String("decision", string(decision)))
	e.publish(ctx, EventInspectionResolved, result, types.LocationInspection, target, "")
	return result, nil
}

// SubstitutionResult holds both assets after a substitution.
type SubstitutionResult struct {
	Old *types.Asset `json:"old"`
	New *types.Asset `json:"new"`
}

// SubstituteAsset replaces an asset by one waiting in deposito_malta. The
// replacement inherits the active location group with start dates reset to
// today; the replaced asset goes to aguardando_laudo.
func (e *Engine) SubstituteAsset(ctx context.Context, oldAssetID uuid.UUID, in SubstituteInput) (*SubstitutionResult, error) {
	reason := strings.TrimSpace(in.Reason)
	verr := &ValidationError{}
	if reason == "" {
		verr.add("reason", "Motivo da substituição é obrigatório")
	}
	newCode, codeErr := patcode.Normalize(in.NewAssetCode)
	if codeErr != nil {
		verr.add("new_asset_code", "Código PAT deve conter exatamente 6 dígitos numéricos")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	var (
		result *SubstitutionResult
		from   types.LocationType
	)
	err := e.run(ctx, func(tx interfaces.AssetTx) error {
		old, err := e.load(ctx, tx, oldAssetID, in.ExpectedVersion)
		if err != nil {
			return err
		}
		if err := ValidateTransition(old, OpSubstitute); err != nil {
			return err
		}

		replacement, err := tx.GetAssetByCode(ctx, newCode)
		if errors.Is(err, interfaces.ErrNotFound) {
			return &SubstituteNotEligible{Code: newCode, Reason: ReasonNotFound}
		}
		if err != nil {
			return err
		}
		if replacement.ID == old.ID {
			return &SubstituteNotEligible{Code: newCode, Reason: ReasonSameAsset, Location: replacement.LocationType()}
		}
		if replacement.LocationType() != types.LocationDeposit {
			return &SubstituteNotEligible{Code: newCode, Reason: ReasonWrongLocation, Location: replacement.LocationType()}
		}

		today := e.clock.Today()
		from = old.LocationType()
		inherited := inherit(old.Location, today)
		newFrom := replacement.LocationType()

		old.Location = types.Carry(old.Location, today)
		old.WasReplaced = true
		old.ReplacedByAssetID = &replacement.ID
		old.ReplacementReason = reason
		old.AvailableForRental = false

		replacement.Location = inherited
		replacement.AvailableForRental = true

		if err := e.save(ctx, tx, old); err != nil {
			return err
		}
		if err := e.save(ctx, tx, replacement); err != nil {
			return err
		}

		oldChange := &fieldChange{field: "replaced_by_asset_id", new: replacement.ID.String()}
		if err := e.record(ctx, tx, old, types.EventMovement, oldChange,
			substitutedNarrative(replacement.AssetCode, reason, in.Notes)); err != nil {
			return err
		}
		newChange := &fieldChange{field: "location_type", old: string(newFrom), new: string(inherited.LocationType())}
		if err := e.record(ctx, tx, replacement, types.EventMovement, newChange,
			replacementNarrative(old.AssetCode, inherited, reason, in.Notes)); err != nil {
			return err
		}

		result = &SubstitutionResult{Old: old, New: replacement}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Asset substituted",
		zap.String("asset_code", result.Old.AssetCode),
		zap.String("replaced_by", result.New.AssetCode),
		zap.String("reason", reason))
	e.publish(ctx, EventAssetSubstituted, result.Old, from, types.LocationInspection, result.New.AssetCode)
	e.publish(ctx, EventAssetSubstituted, result.New, types.LocationDeposit, result.New.LocationType(), result.Old.AssetCode)
	return result, nil
}

// UpdateDescriptive patches the descriptive fields of an asset. The code and
// the location are never touched. One event is recorded per changed field.
func (e *Engine) UpdateDescriptive(ctx context.Context, rawCode string, patch DescriptivePatch) (*types.Asset, error) {
	code, err := patcode.Normalize(rawCode)
	if err != nil {
		return nil, &NotFound{Ref: rawCode}
	}

	var (
		result  *types.Asset
		changes []fieldChange
	)
	err = e.run(ctx, func(tx interfaces.AssetTx) error {
		asset, err := tx.GetAssetByCode(ctx, code)
		if errors.Is(err, interfaces.ErrNotFound) {
			return &NotFound{Ref: code}
		}
		if err != nil {
			return err
		}
		if err := checkVersion(asset, patch.ExpectedVersion); err != nil {
			return err
		}

		changes, err = applyPatch(e.clock, asset, patch)
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			result = asset
			return nil
		}

		if err := e.save(ctx, tx, asset); err != nil {
			return err
		}
		kind := types.EventUpdate
		if patch.Source == SourceSync {
			kind = types.EventSyncUpdate
		}
		for i := range changes {
			c := changes[i]
			details := fmt.Sprintf("Campo %s alterado", c.field)
			if err := e.record(ctx, tx, asset, kind, &c, details); err != nil {
				return err
			}
		}
		result = asset
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(changes) > 0 {
		e.logger.Info("Asset updated",
			zap.String("asset_code", result.AssetCode),
			zap.Int("changed_fields", len(changes)))
		e.publish(ctx, EventAssetUpdated, result, "", "", "")
	}
	return result, nil
}

// RefreshMaintenanceStatus recomputes next_maintenance_hourmeter and
// maintenance_status from the hourmeter aggregates.
func (e *Engine) RefreshMaintenanceStatus(ctx context.Context, assetID uuid.UUID) (*types.Asset, error) {
	if e.hours == nil {
		return nil, &StoreFailure{Err: errors.New("maintenance repository not configured")}
	}
	total, err := e.hours.TotalHourmeter(ctx, assetID)
	if err != nil {
		return nil, &StoreFailure{Err: fmt.Errorf("failed to read total hourmeter: %w", err)}
	}
	last, err := e.hours.LastHourmeter(ctx, assetID)
	if err != nil {
		return nil, &StoreFailure{Err: fmt.Errorf("failed to read last hourmeter: %w", err)}
	}
	next, status := maintenance.Status(total, last, e.opts.Maintenance)

	var result *types.Asset
	err = e.run(ctx, func(tx interfaces.AssetTx) error {
		asset, err := e.load(ctx, tx, assetID, nil)
		if err != nil {
			return err
		}
		result = asset
		if asset.MaintenanceStatus == status && asset.NextMaintenanceHourmeter != nil && *asset.NextMaintenanceHourmeter == next {
			return nil
		}
		asset.NextMaintenanceHourmeter = &next
		asset.MaintenanceStatus = status
		return e.save(ctx, tx, asset)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) GetAsset(ctx context.Context, id uuid.UUID) (*types.Asset, error) {
	asset, err := e.store.GetAsset(ctx, id)
	if err != nil {
		return nil, e.translate(err, id.String())
	}
	return asset, nil
}

// GetAssetByCode accepts any code form patcode.Normalize understands.
func (e *Engine) GetAssetByCode(ctx context.Context, rawCode string) (*types.Asset, error) {
	code, err := patcode.Normalize(rawCode)
	if err != nil {
		return nil, &NotFound{Ref: rawCode}
	}
	asset, err := e.store.GetAssetByCode(ctx, code)
	if err != nil {
		return nil, e.translate(err, code)
	}
	return asset, nil
}

// ListAssets filters by location in the store and by the accent-insensitive
// query here.
func (e *Engine) ListAssets(ctx context.Context, filter types.AssetFilter) ([]*types.Asset, error) {
	if filter.Location != "" && !filter.Location.Valid() {
		return nil, &ValidationError{Fields: []FieldError{{
			Field:   "location_type",
			Message: fmt.Sprintf("Situação inválida: %q", filter.Location),
		}}}
	}
	assets, err := e.store.ListAssets(ctx, types.AssetFilter{Location: filter.Location})
	if err != nil {
		return nil, &StoreFailure{Err: err}
	}

	out := make([]*types.Asset, 0, len(assets))
	for _, a := range assets {
		if filter.Query != "" && !matches(a, filter.Query) {
			continue
		}
		out = append(out, a)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func matches(a *types.Asset, query string) bool {
	cols := a.Columns()
	return textnorm.ContainsAny(query,
		a.AssetCode, a.EquipmentName, a.Manufacturer, a.Model, a.SerialNumber, a.Supplier,
		value(cols.RentalCompany), value(cols.RentalWorkSite), value(cols.MaintenanceCompany))
}

func (e *Engine) History(ctx context.Context, assetID uuid.UUID) ([]*types.HistoryEvent, error) {
	events, err := e.store.ListHistory(ctx, assetID)
	if err != nil {
		return nil, &StoreFailure{Err: err}
	}
	return events, nil
}

func (e *Engine) Cycles(ctx context.Context, assetID uuid.UUID) ([]*types.LifecycleCycle, error) {
	cycles, err := e.store.ListCycles(ctx, assetID)
	if err != nil {
		return nil, &StoreFailure{Err: err}
	}
	return cycles, nil
}

// run executes fn in a store transaction and maps store errors to engine
// errors. Engine errors returned by fn pass through unchanged.
func (e *Engine) run(ctx context.Context, fn func(tx interfaces.AssetTx) error) error {
	err := e.store.InTx(ctx, fn)
	if err == nil {
		return nil
	}
	var ue UserError
	if errors.As(err, &ue) {
		return ue
	}
	e.logger.Error("Store operation failed", zap.Error(err))
	return &StoreFailure{Err: err}
}

func (e *Engine) translate(err error, ref string) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return &NotFound{Ref: ref}
	}
	return &StoreFailure{Err: err}
}

func (e *Engine) load(ctx context.Context, tx interfaces.AssetTx, id uuid.UUID, expected *int) (*types.Asset, error) {
	asset, err := tx.GetAsset(ctx, id)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, &NotFound{Ref: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load asset: %w", err)
	}
	if err := checkVersion(asset, expected); err != nil {
		return nil, err
	}
	return asset, nil
}

func checkVersion(asset *types.Asset, expected *int) error {
	if expected != nil && *expected != asset.Version {
		return &StaleVersion{AssetCode: asset.AssetCode, Expected: *expected, Actual: asset.Version}
	}
	return nil
}

// save writes asset guarded by the version it was read with.
func (e *Engine) save(ctx context.Context, tx interfaces.AssetTx, asset *types.Asset) error {
	read := asset.Version
	asset.UpdatedAt = e.clock.Now()
	err := tx.UpdateAsset(ctx, asset)
	if errors.Is(err, interfaces.ErrVersionConflict) {
		stale := &StaleVersion{AssetCode: asset.AssetCode, Expected: read, Actual: read}
		if current, gerr := tx.GetAsset(ctx, asset.ID); gerr == nil {
			stale.Actual = current.Version
		}
		return stale
	}
	if err != nil {
		return fmt.Errorf("failed to update asset %s: %w", asset.AssetCode, err)
	}
	return nil
}

type fieldChange struct {
	field string
	old   string
	new   string
}

func (e *Engine) record(ctx context.Context, tx interfaces.AssetTx, asset *types.Asset, kind string, change *fieldChange, details string) error {
	event := &types.HistoryEvent{
		ID:                 uuid.New(),
		PatID:              asset.ID,
		CodigoPat:          asset.AssetCode,
		TipoEvento:         kind,
		DetalhesEvento:     details,
		DataModificacao:    e.clock.Now(),
		UsuarioModificacao: ActorFrom(ctx),
	}
	if change != nil {
		event.CampoAlterado = optional(change.field)
		event.ValorAntigo = optional(change.old)
		event.ValorNovo = optional(change.new)
	}
	if err := tx.AppendHistory(ctx, event); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

func (e *Engine) publish(ctx context.Context, kind EventType, asset *types.Asset, from, to types.LocationType, related string) {
	e.notifier.Publish(Event{
		Type:      kind,
		AssetID:   asset.ID,
		AssetCode: asset.AssetCode,
		From:      from,
		To:        to,
		Related:   related,
		Actor:     ActorFrom(ctx),
		At:        e.clock.Now(),
	})
}

// cyclesOf returns the closed periods carried by an asset in inspection.
func (e *Engine) cyclesOf(ctx context.Context, asset *types.Asset, carried types.InspectionDetails) []*types.LifecycleCycle {
	today := e.clock.Today()
	closedAt := e.clock.Now()
	actor := ActorFrom(ctx)
	end := func(t *time.Time) *time.Time {
		if t != nil {
			d := *t
			return &d
		}
		d := today
		return &d
	}

	var cycles []*types.LifecycleCycle
	if r := carried.Rental; r != nil {
		start := r.StartDate
		cycles = append(cycles, &types.LifecycleCycle{
			ID:             uuid.New(),
			AssetID:        asset.ID,
			AssetCode:      asset.AssetCode,
			Kind:           types.CycleRental,
			Company:        r.Company,
			WorkSite:       r.WorkSite,
			StartDate:      nonZero(start),
			EndDate:        end(r.EndDate),
			ContractNumber: r.ContractNumber,
			ClosedAt:       closedAt,
			ClosedBy:       actor,
		})
	}
	if m := carried.Maintenance; m != nil {
		start := m.ArrivalDate
		cycles = append(cycles, &types.LifecycleCycle{
			ID:          uuid.New(),
			AssetID:     asset.ID,
			AssetCode:   asset.AssetCode,
			Kind:        types.CycleMaintenance,
			Company:     m.Company,
			WorkSite:    m.WorkSite,
			StartDate:   nonZero(start),
			EndDate:     end(m.DepartureDate),
			Description: m.Description,
			ClosedAt:    closedAt,
			ClosedBy:    actor,
		})
	}
	return cycles
}

// inherit copies a location group for a replacement asset. Start dates move
// to today; end dates are kept.
func inherit(details types.LocationDetails, today time.Time) types.LocationDetails {
	switch d := details.(type) {
	case types.RentalDetails:
		d.StartDate = today
		return d
	case types.MaintenanceDetails:
		d.ArrivalDate = today
		return d
	case types.InspectionDetails:
		d.StartDate = today
		return d
	default:
		return details
	}
}

// fillFromCarried completes blank text fields of a maintenance or return
// decision from the group carried into inspection. Dates are never filled.
func fillFromCarried(in LocationInput, carried types.InspectionDetails, target types.LocationType) LocationInput {
	fill := func(dst **string, v string) {
		if strings.TrimSpace(value(*dst)) == "" && v != "" {
			s := v
			*dst = &s
		}
	}
	switch target {
	case types.LocationMaintenance:
		if m := carried.Maintenance; m != nil {
			fill(&in.MaintenanceCompany, m.Company)
			fill(&in.MaintenanceWorkSite, m.WorkSite)
			fill(&in.MaintenanceDescription, m.Description)
		} else if r := carried.Rental; r != nil {
			fill(&in.MaintenanceWorkSite, r.WorkSite)
		}
	case types.LocationRental:
		if r := carried.Rental; r != nil {
			fill(&in.RentalCompany, r.Company)
			fill(&in.RentalWorkSite, r.WorkSite)
			fill(&in.RentalContractNumber, r.ContractNumber)
		}
	}
	return in
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonZero(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Ping checks the store.
func (e *Engine) Ping(ctx context.Context) error {
	return e.store.Ping(ctx)
}
