// Package importer loads asset spreadsheets and seed files into the
// lifecycle engine, and renders the asset export workbook.
package importer

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KevinKickass/OpenAssetCore/internal/lifecycle"
	"github.com/KevinKickass/OpenAssetCore/internal/textnorm"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Row is one asset read from a source file. Line is the 1-based line or
// spreadsheet row it came from.
type Row struct {
	Line  int
	Input lifecycle.RegisterInput
}

// headerAliases maps folded header text to RegisterInput fields.
var headerAliases = map[string]string{
	"pat":                 "asset_code",
	"codigo pat":          "asset_code",
	"codigo":              "asset_code",
	"asset_code":          "asset_code",
	"equipamento":         "equipment_name",
	"nome do equipamento": "equipment_name",
	"equipment_name":      "equipment_name",
	"fabricante":          "manufacturer",
	"marca":               "manufacturer",
	"manufacturer":        "manufacturer",
	"modelo":              "model",
	"model":               "model",
	"numero de serie":     "serial_number",
	"nº de serie":         "serial_number",
	"serie":               "serial_number",
	"serial_number":       "serial_number",
	"voltagem/combustao":  "voltage_combustion",
	"voltagem":            "voltage_combustion",
	"voltage_combustion":  "voltage_combustion",
	"fornecedor":          "supplier",
	"supplier":            "supplier",
	"data de compra":      "purchase_date",
	"purchase_date":       "purchase_date",
	"valor unitario":      "unit_value",
	"valor":               "unit_value",
	"unit_value":          "unit_value",
	"condicao":            "equipment_condition",
	"equipment_condition": "equipment_condition",
	"data de cadastro":    "registered_on",
	"registered_on":       "registered_on",
}

// ReadFile picks the reader by extension: .xlsx or .yaml/.yml.
func ReadFile(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(bytes.NewReader(data))
	case ".yaml", ".yml":
		return ReadYAML(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported file type %q: expected .xlsx, .yaml or .yml", filepath.Ext(path))
	}
}

// ReadXLSX reads the first sheet. The first row is the header; unknown
// columns are ignored and blank rows skipped.
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns := make(map[int]string, len(rows[0]))
	for i, header := range rows[0] {
		if field, ok := headerAliases[textnorm.Fold(strings.TrimSpace(header))]; ok {
			columns[i] = field
		}
	}
	if !hasField(columns, "asset_code") {
		return nil, fmt.Errorf("sheet %s has no PAT column", sheets[0])
	}

	out := make([]Row, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		var in lifecycle.RegisterInput
		blank := true
		for col, cell := range cells {
			field, ok := columns[col]
			cell = strings.TrimSpace(cell)
			if !ok || cell == "" {
				continue
			}
			blank = false
			setField(&in, field, cell)
		}
		if blank {
			continue
		}
		out = append(out, Row{Line: i + 2, Input: in})
	}
	return out, nil
}

func hasField(columns map[int]string, field string) bool {
	for _, f := range columns {
		if f == field {
			return true
		}
	}
	return false
}

func setField(in *lifecycle.RegisterInput, field, v string) {
	switch field {
	case "asset_code":
		in.AssetCode = v
	case "equipment_name":
		in.EquipmentName = v
	case "manufacturer":
		in.Manufacturer = v
	case "model":
		in.Model = v
	case "serial_number":
		in.SerialNumber = v
	case "voltage_combustion":
		in.VoltageCombustion = v
	case "supplier":
		in.Supplier = v
	case "purchase_date":
		in.PurchaseDate = isoDate(v)
	case "unit_value":
		in.UnitValue = v
	case "equipment_condition":
		in.EquipmentCondition = v
	case "registered_on":
		in.RegisteredOn = isoDate(v)
	}
}

// isoDate turns DD/MM/YYYY into YYYY-MM-DD and leaves anything else for
// the engine to validate.
func isoDate(v string) string {
	parts := strings.Split(v, "/")
	if len(parts) != 3 || len(parts[2]) != 4 {
		return v
	}
	return parts[2] + "-" + pad2(parts[1]) + "-" + pad2(parts[0])
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

type seedFile struct {
	Assets []lifecycle.RegisterInput `yaml:"assets"`
}

// ReadYAML reads a document with a top-level assets list.
func ReadYAML(r io.Reader) ([]Row, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	var seed seedFile
	if err := root.Decode(&seed); err != nil {
		return nil, fmt.Errorf("failed to decode assets: %w", err)
	}

	lines := assetLines(&root)
	out := make([]Row, 0, len(seed.Assets))
	for i, in := range seed.Assets {
		line := 0
		if i < len(lines) {
			line = lines[i]
		}
		out = append(out, Row{Line: line, Input: in})
	}
	return out, nil
}

// assetLines returns the source line of every item of the assets list.
func assetLines(root *yaml.Node) []int {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	m := root.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value != "assets" {
			continue
		}
		var lines []int
		for _, item := range m.Content[i+1].Content {
			lines = append(lines, item.Line)
		}
		return lines
	}
	return nil
}
