package importer

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/KevinKickass/OpenAssetCore/internal/calendar"
	"github.com/KevinKickass/OpenAssetCore/internal/lifecycle"
	"github.com/KevinKickass/OpenAssetCore/internal/storage"
	"github.com/KevinKickass/OpenAssetCore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func newEngine(t *testing.T) *lifecycle.Engine {
	t.Helper()
	clock, err := calendar.NewFixedClock(calendar.DefaultTimezone, time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return lifecycle.NewEngine(storage.NewMemoryStore(), clock, lifecycle.DefaultOptions(), zap.NewNop())
}

func workbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadXLSX(t *testing.T) {
	data := workbook(t, [][]interface{}{
		{"PAT", "Equipamento", "Fabricante", "Data de Compra", "Valor Unitário", "Condição", "Observação"},
		{"1234", "Betoneira 400L", "CSM", "2/9/2024", "R$ 3.450,00", "novo", "ignorada"},
		{},
		{"PAT-77", "Andaime tubular", "", "", "", "USADO", ""},
	})

	rows, err := ReadXLSX(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "1234", rows[0].Input.AssetCode)
	assert.Equal(t, "Betoneira 400L", rows[0].Input.EquipmentName)
	assert.Equal(t, "2024-09-02", rows[0].Input.PurchaseDate)
	assert.Equal(t, "R$ 3.450,00", rows[0].Input.UnitValue)

	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "PAT-77", rows[1].Input.AssetCode)
}

func TestReadXLSX_RequiresCodeColumn(t *testing.T) {
	data := workbook(t, [][]interface{}{{"Equipamento"}, {"Gerador"}})

	_, err := ReadXLSX(bytes.NewReader(data))
	assert.Error(t, err)
}

func TestReadYAML(t *testing.T) {
	doc := `
assets:
  - asset_code: "000101"
    equipment_name: Compactador de solo
    manufacturer: Wacker
    equipment_condition: USADO
  - asset_code: "102"
    equipment_name: Martelete
`
	rows, err := ReadYAML(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "000101", rows[0].Input.AssetCode)
	assert.Equal(t, "Wacker", rows[0].Input.Manufacturer)
	assert.Equal(t, 3, rows[0].Line)
	assert.Equal(t, 7, rows[1].Line)
}

func TestReadYAML_Malformed(t *testing.T) {
	_, err := ReadYAML(strings.NewReader("assets: [\n"))
	assert.Error(t, err)
}

func TestImport_Report(t *testing.T) {
	engine := newEngine(t)
	im := New(engine, zap.NewNop())

	rows := []Row{
		{Line: 2, Input: lifecycle.RegisterInput{AssetCode: "101", EquipmentName: "Gerador"}},
		{Line: 3, Input: lifecycle.RegisterInput{AssetCode: "000101", EquipmentName: "Gerador duplicado"}},
		{Line: 4, Input: lifecycle.RegisterInput{AssetCode: "abc", EquipmentName: "Inválido"}},
		{Line: 5, Input: lifecycle.RegisterInput{AssetCode: "102", EquipmentName: "Martelete"}},
	}

	report, err := im.Import(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Failed)

	require.Len(t, report.Rows, 4)
	assert.Equal(t, "000101", report.Rows[0].AssetCode)
	assert.Equal(t, StatusSkipped, report.Rows[1].Status)
	assert.Equal(t, StatusFailed, report.Rows[2].Status)
	assert.NotEmpty(t, report.Rows[2].Message)

	asset, err := engine.GetAssetByCode(context.Background(), "102")
	require.NoError(t, err)
	assert.Equal(t, types.LocationDeposit, asset.LocationType())
}

func TestImport_StopsOnCancelledContext(t *testing.T) {
	im := New(newEngine(t), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := im.Import(ctx, []Row{{Line: 2, Input: lifecycle.RegisterInput{AssetCode: "1", EquipmentName: "x"}}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Rows)
}

func TestExportAssets_RoundTrip(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()
	_, err := engine.RegisterAsset(ctx, lifecycle.RegisterInput{
		AssetCode:     "501",
		EquipmentName: "Placa vibratória",
		PurchaseDate:  "2024-03-15",
		UnitValue:     "2890.90",
	})
	require.NoError(t, err)
	assets, err := engine.ListAssets(ctx, types.AssetFilter{})
	require.NoError(t, err)

	data, err := ExportAssets(assets)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "PAT", rows[0][0])
	assert.Equal(t, "000501", rows[1][0])
	assert.Equal(t, "Placa vibratória", rows[1][1])
	assert.Equal(t, "2024-03-15", rows[1][7])
	assert.Equal(t, "Depósito Malta", rows[1][10])

	// The export is readable by the importer.
	back, err := ReadXLSX(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, "000501", back[0].Input.AssetCode)
}
