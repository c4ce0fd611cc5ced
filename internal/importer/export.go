package importer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/KevinKickass/OpenAssetCore/internal/types"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Patrimônio"

type exportColumn struct {
	header string
	width  float64
	value  func(a *types.Asset, cols types.LocationColumns) interface{}
}

var exportColumns = []exportColumn{
	{"PAT", 10, func(a *types.Asset, _ types.LocationColumns) interface{} { return a.AssetCode }},
	{"Equipamento", 30, func(a *types.Asset, _ types.LocationColumns) interface{} { return a.EquipmentName }},
	{"Fabricante", 18, func(a *types.Asset, _ types.LocationColumns) interface{} { return a.Manufacturer }},
	{"Modelo", 18, func(a *types.Asset, _ types.LocationColumns) interface{} { return a.Model }},
	{"Nº de Série", 18, func(a *types.Asset, _ types.LocationColumns) interface{} { return a.SerialNumber }},
	{"Voltagem/Combustão", 18, func(a *types.Asset, _ types.LocationColumns) interface{} { return a.VoltageCombustion }},
	{"Fornecedor", 20, func(a *types.Asset, _ types.LocationColumns) interface{} { return a.Supplier }},
	{"Data de Compra", 14, func(a *types.Asset, _ types.LocationColumns) interface{} { return dateCell(a.PurchaseDate) }},
	{"Valor Unitário", 14, func(a *types.Asset, _ types.LocationColumns) interface{} {
		if !a.UnitValue.Valid {
			return nil
		}
		return a.UnitValue.Decimal.InexactFloat64()
	}},
	{"Condição", 10, func(a *types.Asset, _ types.LocationColumns) interface{} { return string(a.EquipmentCondition) }},
	{"Situação", 18, func(a *types.Asset, _ types.LocationColumns) interface{} { return a.LocationType().Label() }},
	{"Empresa", 25, func(a *types.Asset, c types.LocationColumns) interface{} { return str(firstOf(c.RentalCompany, c.MaintenanceCompany)) }},
	{"Obra", 25, func(a *types.Asset, c types.LocationColumns) interface{} { return str(firstOf(c.RentalWorkSite, c.MaintenanceWorkSite)) }},
	{"Início", 12, func(a *types.Asset, c types.LocationColumns) interface{} {
		if c.RentalStartDate != nil {
			return dateCell(c.RentalStartDate)
		}
		if c.MaintenanceArrivalDate != nil {
			return dateCell(c.MaintenanceArrivalDate)
		}
		return dateCell(c.InspectionStartDate)
	}},
	{"Disponível p/ Locação", 12, func(a *types.Asset, _ types.LocationColumns) interface{} {
		if a.AvailableForRental {
			return "Sim"
		}
		return "Não"
	}},
	{"Manutenção", 18, func(a *types.Asset, _ types.LocationColumns) interface{} { return string(a.MaintenanceStatus) }},
	{"Substituído", 12, func(a *types.Asset, _ types.LocationColumns) interface{} {
		if a.WasReplaced {
			return "Sim"
		}
		return ""
	}},
}

// ExportAssets renders assets as an xlsx workbook with a frozen header row.
func ExportAssets(assets []*types.Asset) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo needs the file open, so Close is explicit on every path.

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, col := range exportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(exportSheet, cell, col.header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(exportSheet, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(exportSheet, name, name, col.width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for r, asset := range assets {
		cols := asset.Columns()
		for c, col := range exportColumns {
			v := col.value(asset, cols)
			if v == nil || v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func dateCell(t *time.Time) interface{} {
	if s := types.FormatDatePtr(t); s != nil {
		return *s
	}
	return nil
}

func firstOf(values ...*string) *string {
	for _, v := range values {
		if v != nil && *v != "" {
			return v
		}
	}
	return nil
}

func str(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
