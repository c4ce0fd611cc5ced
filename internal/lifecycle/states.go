package lifecycle

import (
	"github.com/KevinKickass/OpenAssetCore/internal/types"
)

type Operation string

const (
	OpMove              Operation = "move"
	OpSendToInspection  Operation = "send_to_inspection"
	OpResolveInspection Operation = "resolve_inspection"
	OpSubstitute        Operation = "substitute"
)

// Decision is the outcome of an inspection.
type Decision string

const (
	DecisionApprove     Decision = "approve"
	DecisionMaintenance Decision = "maintenance"
	DecisionReturn      Decision = "return"
)

func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionMaintenance || d == DecisionReturn
}

// Target returns the location a decision leads to.
func (d Decision) Target() types.LocationType {
	switch d {
	case DecisionMaintenance:
		return types.LocationMaintenance
	case DecisionReturn:
		return types.LocationRental
	default:
		return types.LocationDeposit
	}
}

func (d Decision) Label() string {
	switch d {
	case DecisionApprove:
		return "Aprovado"
	case DecisionMaintenance:
		return "Enviar para manutenção"
	case DecisionReturn:
		return "Retornar à locação"
	default:
		return string(d)
	}
}

var activeLocations = []types.LocationType{
	types.LocationDeposit,
	types.LocationRental,
	types.LocationMaintenance,
}

var allLocations = []types.LocationType{
	types.LocationDeposit,
	types.LocationRental,
	types.LocationMaintenance,
	types.LocationInspection,
}

// allowedSources lists the locations each operation may start from.
// aguardando_laudo is left only through an inspection decision.
var allowedSources = map[Operation][]types.LocationType{
	OpMove:              activeLocations,
	OpSendToInspection:  allLocations,
	OpSubstitute:        activeLocations,
	OpResolveInspection: {types.LocationInspection},
}

// ValidateTransition checks that op may run on an asset currently at from.
func ValidateTransition(asset *types.Asset, op Operation) error {
	from := asset.LocationType()
	for _, allowed := range allowedSources[op] {
		if allowed == from {
			return nil
		}
	}
	return &InvalidStateTransition{AssetCode: asset.AssetCode, From: from, Operation: op}
}

// IsMoveTarget reports whether lt can be reached with MoveAsset.
func IsMoveTarget(lt types.LocationType) bool {
	for _, l := range activeLocations {
		if l == lt {
			return true
		}
	}
	return false
}
