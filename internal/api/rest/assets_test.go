package rest

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerBody(code string) map[string]any {
	return map[string]any{
		"asset_code":     code,
		"equipment_name": "GERADOR 55KVA",
		"manufacturer":   "CUMMINS",
		"registered_on":  "2025-01-02",
	}
}

func rentalBody() map[string]any {
	return map[string]any{
		"location_type":     "locacao",
		"rental_company":    "ACME",
		"rental_work_site":  "Obra X",
		"rental_start_date": "2025-01-05",
	}
}

func TestAppAPIRequiresToken(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/api/v1/assets", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))

	w = ts.do(t, http.MethodGet, "/api/v1/assets", nil, map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterAndGetAsset(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.app(t, http.MethodPost, "/api/v1/assets", registerBody("1234"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "001234", created["asset_code"])
	assert.Equal(t, "deposito_malta", created["location_type"])
	assert.Equal(t, "Aguardando definição de localização", created["deposito_description"])

	w = ts.app(t, http.MethodGet, "/api/v1/assets/PAT-1234", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created["id"], decode(t, w)["id"])

	w = ts.app(t, http.MethodPost, "/api/v1/assets", registerBody("001234"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_ASSET_CODE", errorCode(t, w))
}

func TestRegisterAssetValidationError(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.app(t, http.MethodPost, "/api/v1/assets", map[string]any{"asset_code": "12AB"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errBody["code"])
	assert.ElementsMatch(t, []any{"asset_code", "equipment_name"}, errBody["fields"])
}

func TestGetAssetNotFound(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.app(t, http.MethodGet, "/api/v1/assets/009999", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
}

func TestMoveAssetLifecycle(t *testing.T) {
	ts := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, ts.app(t, http.MethodPost, "/api/v1/assets", registerBody("1234")).Code)

	w := ts.app(t, http.MethodPost, "/api/v1/assets/1234/move", map[string]any{
		"location_type":  "locacao",
		"rental_company": "ACME",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	w = ts.app(t, http.MethodPost, "/api/v1/assets/1234/move", rentalBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	moved := decode(t, w)
	assert.Equal(t, "locacao", moved["location_type"])
	assert.Equal(t, false, moved["available_for_rental"])

	w = ts.app(t, http.MethodPost, "/api/v1/assets/1234/inspection", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "aguardando_laudo", decode(t, w)["location_type"])

	w = ts.app(t, http.MethodPost, "/api/v1/assets/1234/move", rentalBody())
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_STATE_TRANSITION", errorCode(t, w))

	w = ts.app(t, http.MethodPost, "/api/v1/assets/1234/inspection/resolve", map[string]any{"decision": "approve"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	approved := decode(t, w)
	assert.Equal(t, "deposito_malta", approved["location_type"])
	assert.Equal(t, true, approved["available_for_rental"])

	w = ts.app(t, http.MethodGet, "/api/v1/assets/1234/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode(t, w)["count"])

	w = ts.app(t, http.MethodGet, "/api/v1/assets/1234/cycles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])
}

func TestStaleVersionConflict(t *testing.T) {
	ts := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, ts.app(t, http.MethodPost, "/api/v1/assets", registerBody("1234")).Code)

	w := ts.app(t, http.MethodPatch, "/api/v1/assets/1234", map[string]any{
		"model":            "C55D5",
		"expected_version": 7,
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "STALE_VERSION", errorCode(t, w))
}

func TestSubstituteAssetEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, ts.app(t, http.MethodPost, "/api/v1/assets", registerBody("1234")).Code)
	require.Equal(t, http.StatusCreated, ts.app(t, http.MethodPost, "/api/v1/assets", registerBody("5678")).Code)
	require.Equal(t, http.StatusOK, ts.app(t, http.MethodPost, "/api/v1/assets/1234/move", rentalBody()).Code)

	w := ts.app(t, http.MethodPost, "/api/v1/assets/1234/substitute", map[string]any{
		"new_asset_code": "1234",
		"reason":         "Equipamento com falha recorrente no motor",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "SUBSTITUTE_NOT_ELIGIBLE", errorCode(t, w))

	w = ts.app(t, http.MethodPost, "/api/v1/assets/1234/substitute", map[string]any{
		"new_asset_code": "5678",
		"reason":         "Equipamento com falha recorrente no motor",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode(t, w)
	replacement := result["new"].(map[string]any)
	assert.Equal(t, "locacao", replacement["location_type"])
	assert.Equal(t, "ACME", replacement["rental_company"])
	old := result["old"].(map[string]any)
	assert.Equal(t, true, old["was_replaced"])
}

func TestMaintenanceRecords(t *testing.T) {
	ts := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, ts.app(t, http.MethodPost, "/api/v1/assets", registerBody("1234")).Code)

	w := ts.app(t, http.MethodPost, "/api/v1/assets/1234/maintenance-records", map[string]any{
		"hourmeter":    120,
		"preventive":   true,
		"performed_on": "2025-01-08",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	record := decode(t, w)["record"].(map[string]any)
	assert.Equal(t, "operador@malta.com.br", record["created_by"])

	w = ts.app(t, http.MethodPost, "/api/v1/assets/1234/maintenance-records", map[string]any{"hourmeter": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_READING", errorCode(t, w))

	w = ts.app(t, http.MethodGet, "/api/v1/assets/1234/maintenance-records", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["count"])
	assert.EqualValues(t, 370, body["next_maintenance_hourmeter"])
}

func TestListAndExportAssets(t *testing.T) {
	ts := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, ts.app(t, http.MethodPost, "/api/v1/assets", registerBody("1234")).Code)
	require.Equal(t, http.StatusCreated, ts.app(t, http.MethodPost, "/api/v1/assets", registerBody("5678")).Code)
	require.Equal(t, http.StatusOK, ts.app(t, http.MethodPost, "/api/v1/assets/5678/move", rentalBody()).Code)

	w := ts.app(t, http.MethodGet, "/api/v1/assets?location_type=locacao", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = ts.app(t, http.MethodGet, "/api/v1/assets?limit=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.app(t, http.MethodGet, "/api/v1/assets/export.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "patrimonio-2025-01-10.xlsx")
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestCompanyLookupUnavailable(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.app(t, http.MethodGet, "/api/v1/companies/11222333000181", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
