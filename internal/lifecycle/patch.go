package lifecycle

import (
	"strings"

	"github.com/KevinKickass/OpenAssetCore/internal/calendar"
	"github.com/KevinKickass/OpenAssetCore/internal/types"
	"github.com/shopspring/decimal"
)

// applyPatch mutates asset with the non-nil fields of patch and returns the
// fields whose value actually changed.
func applyPatch(clock *calendar.Clock, asset *types.Asset, patch DescriptivePatch) ([]fieldChange, error) {
	verr := &ValidationError{}
	var changes []fieldChange

	text := func(field string, dst *string, src *string, required bool) {
		if src == nil {
			return
		}
		v := strings.TrimSpace(*src)
		if required && v == "" {
			verr.add(field, "Nome do equipamento é obrigatório")
			return
		}
		if v != *dst {
			changes = append(changes, fieldChange{field: field, old: *dst, new: v})
			*dst = v
		}
	}

	text("equipment_name", &asset.EquipmentName, patch.EquipmentName, true)
	text("manufacturer", &asset.Manufacturer, patch.Manufacturer, false)
	text("model", &asset.Model, patch.Model, false)
	text("serial_number", &asset.SerialNumber, patch.SerialNumber, false)
	text("voltage_combustion", &asset.VoltageCombustion, patch.VoltageCombustion, false)
	text("supplier", &asset.Supplier, patch.Supplier, false)

	if patch.PurchaseDate != nil {
		old := formatOptionalDate(asset)
		raw := strings.TrimSpace(*patch.PurchaseDate)
		if raw == "" {
			if asset.PurchaseDate != nil {
				changes = append(changes, fieldChange{field: "purchase_date", old: old})
				asset.PurchaseDate = nil
			}
		} else if d, err := clock.ParseDate(raw); err != nil {
			verr.add("purchase_date", "Data inválida em purchase_date: use AAAA-MM-DD")
		} else if asset.PurchaseDate == nil || !asset.PurchaseDate.Equal(d) {
			changes = append(changes, fieldChange{field: "purchase_date", old: old, new: calendar.FormatDate(d)})
			asset.PurchaseDate = &d
		}
	}

	if patch.UnitValue != nil {
		old := ""
		if asset.UnitValue.Valid {
			old = asset.UnitValue.Decimal.StringFixed(2)
		}
		raw := strings.TrimSpace(*patch.UnitValue)
		if raw == "" {
			if asset.UnitValue.Valid {
				changes = append(changes, fieldChange{field: "unit_value", old: old})
				asset.UnitValue = decimal.NullDecimal{}
			}
		} else if v, err := types.ParseMoney(raw); err != nil || v.IsNegative() {
			verr.add("unit_value", "Valor unitário inválido")
		} else if !asset.UnitValue.Valid || !asset.UnitValue.Decimal.Equal(v) {
			changes = append(changes, fieldChange{field: "unit_value", old: old, new: v.StringFixed(2)})
			asset.UnitValue = decimal.NewNullDecimal(v)
		}
	}

	if patch.EquipmentCondition != nil {
		c := types.EquipmentCondition(strings.ToUpper(strings.TrimSpace(*patch.EquipmentCondition)))
		if !c.Valid() {
			verr.add("equipment_condition", "Condição deve ser NOVO ou USADO")
		} else if c != asset.EquipmentCondition {
			changes = append(changes, fieldChange{field: "equipment_condition", old: string(asset.EquipmentCondition), new: string(c)})
			asset.EquipmentCondition = c
		}
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return changes, nil
}

func formatOptionalDate(asset *types.Asset) string {
	if asset.PurchaseDate == nil {
		return ""
	}
	return calendar.FormatDate(*asset.PurchaseDate)
}
