package rest

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/KevinKickass/OpenAssetCore/internal/ratelimit"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertEnvelope(t *testing.T, body map[string]any) {
	t.Helper()
	id, _ := body["sync_id"].(string)
	_, err := uuid.Parse(id)
	assert.NoError(t, err, "sync_id")
	ts, _ := body["timestamp"].(string)
	_, err = time.Parse(time.RFC3339, ts)
	assert.NoError(t, err, "timestamp")
}

func syncAsset(code string) map[string]any {
	return map[string]any{
		"asset_code":          code,
		"equipment_name":      "BETONEIRA 400L",
		"unit_value":          "1.234,56",
		"equipment_condition": "USADO",
	}
}

func syncRentalBody(start string) map[string]any {
	return map[string]any{
		"location_type":     "locacao",
		"rental_company":    "ACME",
		"rental_work_site":  "Obra X",
		"rental_start_date": start,
	}
}

func TestSyncRequiresAPIKey(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodPost, "/sync/create", syncAsset("42"), nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode(t, w)
	assert.NotEmpty(t, body["error"])
	assertEnvelope(t, body)

	w = ts.do(t, http.MethodPost, "/sync/create", syncAsset("42"), map[string]string{"x-api-key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSyncCreate(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.sync(t, http.MethodPost, "/sync/create", syncAsset("PAT-42"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assertEnvelope(t, body)
	asset := body["asset"].(map[string]any)
	assert.Equal(t, "000042", asset["asset_code"])
	assert.Equal(t, "1234.56", asset["unit_value"])

	w = ts.app(t, http.MethodGet, "/api/v1/assets/42/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode(t, w)["history"].([]any)
	require.Len(t, history, 1)
	event := history[0].(map[string]any)
	assert.Equal(t, "SYNC_CREATE", event["tipo_evento"])
	assert.Equal(t, "sync-api", event["usuario_modificacao"])

	w = ts.sync(t, http.MethodPost, "/sync/create", syncAsset("000042"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assertEnvelope(t, decode(t, w))
}

func TestSyncCreateValidation(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.sync(t, http.MethodPost, "/sync/create", map[string]any{
		"asset_code":          "42",
		"purchase_date":       "10/01/2025",
		"equipment_condition": "SEMINOVO",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assertEnvelope(t, body)
	assert.Len(t, body["errors"], 3)

	w = ts.sync(t, http.MethodPost, "/sync/create", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.sync(t, http.MethodPost, "/sync/create", syncAsset("12AB"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncUpdate(t *testing.T) {
	ts := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, ts.sync(t, http.MethodPost, "/sync/create", syncAsset("42")).Code)

	w := ts.sync(t, http.MethodPut, "/sync/update/42", map[string]any{"model": "CSM 400"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assertEnvelope(t, body)
	assert.Equal(t, "CSM 400", body["asset"].(map[string]any)["model"])

	w = ts.sync(t, http.MethodPut, "/sync/update/999", map[string]any{"model": "X"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assertEnvelope(t, decode(t, w))
}

func TestSyncMove(t *testing.T) {
	ts := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, ts.sync(t, http.MethodPost, "/sync/create", syncAsset("42")).Code)

	w := ts.sync(t, http.MethodPatch, "/sync/move/42", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.sync(t, http.MethodPatch, "/sync/move/42", syncRentalBody("2025-01-10"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "locacao", decode(t, w)["asset"].(map[string]any)["location_type"])

	w = ts.sync(t, http.MethodPatch, "/sync/move/42", map[string]any{"location_type": "aguardando_laudo"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "aguardando_laudo", decode(t, w)["asset"].(map[string]any)["location_type"])

	w = ts.sync(t, http.MethodPatch, "/sync/move/42", syncRentalBody("2025-01-10"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertEnvelope(t, decode(t, w))

	w = ts.sync(t, http.MethodPatch, "/sync/move/999", syncRentalBody("2025-01-10"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSyncMoveRejectsStartBeforeRegistration(t *testing.T) {
	ts := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, ts.sync(t, http.MethodPost, "/sync/create", syncAsset("42")).Code)

	w := ts.sync(t, http.MethodPatch, "/sync/move/42", syncRentalBody("2025-01-05"))

	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	body := decode(t, w)
	assertEnvelope(t, body)
	assert.Contains(t, body["error"], "anterior ao cadastro")
}

func TestSyncMoveStaleVersionIsClientError(t *testing.T) {
	ts := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, ts.sync(t, http.MethodPost, "/sync/create", syncAsset("42")).Code)

	body := syncRentalBody("2025-01-10")
	body["expected_version"] = 99
	w := ts.sync(t, http.MethodPatch, "/sync/move/42", body)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assertEnvelope(t, decode(t, w))

	w = ts.sync(t, http.MethodPatch, "/sync/move/42", map[string]any{
		"location_type":    "aguardando_laudo",
		"expected_version": 99,
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assertEnvelope(t, decode(t, w))
}

func TestSyncBulkUpsert(t *testing.T) {
	ts := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, ts.sync(t, http.MethodPost, "/sync/create", syncAsset("42")).Code)

	w := ts.sync(t, http.MethodPost, "/sync/bulk", map[string]any{
		"mode": "upsert",
		"assets": []any{
			map[string]any{"asset_code": "42", "model": "CSM 400"},
			map[string]any{"asset_code": "43", "equipment_name": "COMPACTADOR", "unit_value": 1500.5},
			map[string]any{"asset_code": "44"},
			map[string]any{"asset_code": "ABC"},
		},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assertEnvelope(t, body)
	assert.EqualValues(t, 4, body["total"])
	assert.EqualValues(t, 2, body["succeeded"])
	assert.EqualValues(t, 2, body["failed"])

	results := body["results"].([]any)
	actions := make([]string, 0, len(results))
	for _, r := range results {
		res := r.(map[string]any)
		actions = append(actions, fmt.Sprintf("%v:%v:%v", res["asset_code"], res["action"], res["success"]))
	}
	assert.Equal(t, []string{
		"000042:updated:true",
		"000043:created:true",
		"000044:created:false",
		"ABC:rejected:false",
	}, actions)

	w = ts.app(t, http.MethodGet, "/api/v1/assets/43", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1500.5", decode(t, w)["unit_value"])
}

func TestSyncBulkModes(t *testing.T) {
	ts := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, ts.sync(t, http.MethodPost, "/sync/create", syncAsset("42")).Code)

	batch := func(mode string) []any {
		w := ts.sync(t, http.MethodPost, "/sync/bulk", map[string]any{
			"mode": mode,
			"assets": []any{
				map[string]any{"asset_code": "42", "equipment_name": "BETONEIRA"},
				map[string]any{"asset_code": "50", "equipment_name": "ANDAIME"},
			},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decode(t, w)["results"].([]any)
	}

	insert := batch("insert_only")
	assert.Equal(t, "skipped", insert[0].(map[string]any)["action"])
	assert.Equal(t, "created", insert[1].(map[string]any)["action"])

	update := batch("update_only")
	assert.Equal(t, "updated", update[0].(map[string]any)["action"])
	assert.Equal(t, "updated", update[1].(map[string]any)["action"])
}

func TestSyncBulkRejectsMalformedBatch(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name string
		body any
	}{
		{"json invalido", "{"},
		{"modo desconhecido", map[string]any{"mode": "merge", "assets": []any{map[string]any{"asset_code": "1"}}}},
		{"lote vazio", map[string]any{"assets": []any{}}},
		{"campo desconhecido", map[string]any{"assets": []any{map[string]any{"asset_code": "1", "color": "red"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.sync(t, http.MethodPost, "/sync/bulk", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			body := decode(t, w)
			assert.NotEmpty(t, body["error"])
			assertEnvelope(t, body)
		})
	}
}

func TestSyncRateLimited(t *testing.T) {
	ts := newTestServer(t, ratelimit.NewMemoryLimiter(1, time.Minute))

	w := ts.sync(t, http.MethodPut, "/sync/update/42", map[string]any{"model": "X"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.sync(t, http.MethodPut, "/sync/update/42", map[string]any{"model": "X"})
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assertEnvelope(t, decode(t, w))
}
