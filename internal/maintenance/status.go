package maintenance

import (
	"github.com/KevinKickass/OpenAssetCore/internal/types"
)

// Policy holds the preventive maintenance interval of a fleet, in hours.
type Policy struct {
	IntervalHours float64
	WarningHours  float64
}

func DefaultPolicy() Policy {
	return Policy{IntervalHours: 250, WarningHours: 25}
}

// Status derives the next preventive hourmeter and the maintenance status
// from the current total and the hourmeter of the last preventive service.
func Status(total, lastPreventive float64, p Policy) (float64, types.MaintenanceStatus) {
	next := lastPreventive + p.IntervalHours
	switch {
	case total >= next:
		return next, types.MaintenanceOverdue
	case next-total <= p.WarningHours:
		return next, types.MaintenanceDueSoon
	default:
		return next, types.MaintenanceUpToDate
	}
}
