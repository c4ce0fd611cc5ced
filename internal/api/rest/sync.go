package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/KevinKickass/OpenAssetCore/internal/lifecycle"
	"github.com/KevinKickass/OpenAssetCore/internal/patcode"
	"github.com/KevinKickass/OpenAssetCore/internal/schema"
	"github.com/KevinKickass/OpenAssetCore/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	syncIDKey        = "sync_id"
	syncTimestampKey = "sync_timestamp"
)

type BulkMode string

const (
	BulkUpsert     BulkMode = "upsert"
	BulkInsertOnly BulkMode = "insert_only"
	BulkUpdateOnly BulkMode = "update_only"
)

type syncCreateRequest struct {
	AssetCode          string `json:"asset_code" validate:"required,max=12"`
	EquipmentName      string `json:"equipment_name" validate:"required,max=200"`
	Manufacturer       string `json:"manufacturer" validate:"max=120"`
	Model              string `json:"model" validate:"max=120"`
	SerialNumber       string `json:"serial_number" validate:"max=120"`
	VoltageCombustion  string `json:"voltage_combustion" validate:"max=60"`
	Supplier           string `json:"supplier" validate:"max=200"`
	PurchaseDate       string `json:"purchase_date" validate:"omitempty,datetime=2006-01-02"`
	UnitValue          string `json:"unit_value" validate:"max=32"`
	EquipmentCondition string `json:"equipment_condition" validate:"omitempty,oneof=NOVO USADO novo usado"`
}

func (r syncCreateRequest) input() lifecycle.RegisterInput {
	return lifecycle.RegisterInput{
		AssetCode:          r.AssetCode,
		EquipmentName:      r.EquipmentName,
		Manufacturer:       r.Manufacturer,
		Model:              r.Model,
		SerialNumber:       r.SerialNumber,
		VoltageCombustion:  r.VoltageCombustion,
		Supplier:           r.Supplier,
		PurchaseDate:       r.PurchaseDate,
		UnitValue:          r.UnitValue,
		EquipmentCondition: r.EquipmentCondition,
		Source:             lifecycle.SourceSync,
	}
}

type syncMoveRequest struct {
	LocationType types.LocationType `json:"location_type" validate:"required"`
	lifecycle.LocationInput
}

// bulkItem is one asset of a bulk batch. Nil fields are left untouched on
// update.
type bulkItem struct {
	AssetCode          string    `json:"asset_code"`
	EquipmentName      *string   `json:"equipment_name"`
	Manufacturer       *string   `json:"manufacturer"`
	Model              *string   `json:"model"`
	SerialNumber       *string   `json:"serial_number"`
	VoltageCombustion  *string   `json:"voltage_combustion"`
	Supplier           *string   `json:"supplier"`
	PurchaseDate       *string   `json:"purchase_date"`
	UnitValue          *flexText `json:"unit_value"`
	EquipmentCondition *string   `json:"equipment_condition"`
}

// flexText accepts a JSON string or number.
type flexText string

func (f *flexText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("unit_value must be a string or a number")
	}
	*f = flexText(n.String())
	return nil
}

func (b bulkItem) registerInput() lifecycle.RegisterInput {
	in := lifecycle.RegisterInput{
		AssetCode:          b.AssetCode,
		EquipmentName:      deref(b.EquipmentName),
		Manufacturer:       deref(b.Manufacturer),
		Model:              deref(b.Model),
		SerialNumber:       deref(b.SerialNumber),
		VoltageCombustion:  deref(b.VoltageCombustion),
		Supplier:           deref(b.Supplier),
		PurchaseDate:       deref(b.PurchaseDate),
		EquipmentCondition: deref(b.EquipmentCondition),
		Source:             lifecycle.SourceSync,
	}
	if b.UnitValue != nil {
		in.UnitValue = string(*b.UnitValue)
	}
	return in
}

func (b bulkItem) patch() lifecycle.DescriptivePatch {
	p := lifecycle.DescriptivePatch{
		EquipmentName:      b.EquipmentName,
		Manufacturer:       b.Manufacturer,
		Model:              b.Model,
		SerialNumber:       b.SerialNumber,
		VoltageCombustion:  b.VoltageCombustion,
		Supplier:           b.Supplier,
		PurchaseDate:       b.PurchaseDate,
		EquipmentCondition: b.EquipmentCondition,
		Source:             lifecycle.SourceSync,
	}
	if b.UnitValue != nil {
		v := string(*b.UnitValue)
		p.UnitValue = &v
	}
	return p
}

type bulkRequest struct {
	Mode   BulkMode   `json:"mode"`
	Assets []bulkItem `json:"assets"`
}

type bulkResult struct {
	Index     int    `json:"index"`
	AssetCode string `json:"asset_code"`
	Action    string `json:"action"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// syncEnvelope assigns the request-scoped sync id.
func (s *Server) syncEnvelope(c *gin.Context) {
	c.Set(syncIDKey, uuid.NewString())
	c.Next()
}

// syncJSON writes body with sync_id and timestamp added.
func syncJSON(c *gin.Context, status int, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["sync_id"] = c.GetString(syncIDKey)
	body["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	c.JSON(status, body)
}

func syncReject(c *gin.Context, status int, message string) {
	syncJSON(c, status, gin.H{"error": message})
}

// syncError writes an engine error. The sync API answers only 400, 404 and
// 500, so state and version conflicts are reported as client errors.
func (s *Server) syncError(c *gin.Context, err error) {
	status, _ := classify(err)
	var (
		te *lifecycle.InvalidStateTransition
		sv *lifecycle.StaleVersion
	)
	if errors.As(err, &te) || errors.As(err, &sv) {
		status = http.StatusBadRequest
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("Sync request failed", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
	}

	body := gin.H{"error": userMessage(err)}
	if fields := fieldErrors(err); len(fields) > 1 {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
		}
		body["errors"] = msgs
	}
	syncJSON(c, status, body)
}

func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := jsonName(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s é obrigatório", field))
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("%s deve estar no formato AAAA-MM-DD", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s deve ser um de: %s", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s excede %s caracteres", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s inválido (%s)", field, fe.Tag()))
		}
	}
	return msgs
}

// jsonName turns a Go field name like EquipmentName into equipment_name.
func jsonName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// POST /sync/create
func (s *Server) syncCreate(c *gin.Context) {
	var req syncCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		syncJSON(c, http.StatusBadRequest, gin.H{"error": "JSON inválido", "errors": []string{err.Error()}})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		syncJSON(c, http.StatusBadRequest, gin.H{"error": "Validação falhou", "errors": validationMessages(err)})
		return
	}

	asset, err := s.engine.RegisterAsset(c.Request.Context(), req.input())
	if err != nil {
		s.syncError(c, err)
		return
	}
	syncJSON(c, http.StatusCreated, gin.H{"asset": asset})
}

// PUT /sync/update/:code
func (s *Server) syncUpdate(c *gin.Context) {
	var patch lifecycle.DescriptivePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		syncJSON(c, http.StatusBadRequest, gin.H{"error": "JSON inválido", "errors": []string{err.Error()}})
		return
	}
	patch.Source = lifecycle.SourceSync

	asset, err := s.engine.UpdateDescriptive(c.Request.Context(), c.Param("code"), patch)
	if err != nil {
		s.syncError(c, err)
		return
	}
	syncJSON(c, http.StatusOK, gin.H{"asset": asset})
}

// PATCH /sync/move/:code
func (s *Server) syncMove(c *gin.Context) {
	var req syncMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		syncJSON(c, http.StatusBadRequest, gin.H{"error": "JSON inválido", "errors": []string{err.Error()}})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		syncJSON(c, http.StatusBadRequest, gin.H{"error": "Validação falhou", "errors": validationMessages(err)})
		return
	}

	ctx := c.Request.Context()
	current, err := s.engine.GetAssetByCode(ctx, c.Param("code"))
	if err != nil {
		s.syncError(c, err)
		return
	}

	var asset *types.Asset
	if req.LocationType == types.LocationInspection {
		asset, err = s.engine.SendToInspection(ctx, current.ID, req.ExpectedVersion)
	} else {
		asset, err = s.engine.MoveAsset(ctx, current.ID, req.LocationType, req.LocationInput)
	}
	if err != nil {
		s.syncError(c, err)
		return
	}
	syncJSON(c, http.StatusOK, gin.H{"asset": asset})
}

// POST /sync/bulk
func (s *Server) syncBulk(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		syncJSON(c, http.StatusBadRequest, gin.H{"error": "Falha ao ler o corpo da requisição"})
		return
	}
	if s.schema != nil {
		if err := s.schema.ValidateBulk(body); err != nil {
			var serr *schema.Error
			if errors.As(err, &serr) {
				syncJSON(c, http.StatusBadRequest, gin.H{"error": "Lote inválido", "errors": serr.Messages()})
				return
			}
			s.syncError(c, err)
			return
		}
	}

	var req bulkRequest
	if err := json.Unmarshal(body, &req); err != nil {
		syncJSON(c, http.StatusBadRequest, gin.H{"error": "Lote inválido", "errors": []string{err.Error()}})
		return
	}
	if req.Mode == "" {
		req.Mode = BulkUpsert
	}
	switch req.Mode {
	case BulkUpsert, BulkInsertOnly, BulkUpdateOnly:
	default:
		syncJSON(c, http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Modo inválido: %q", req.Mode)})
		return
	}
	if limit := s.cfg.Sync.BulkMaxOps; len(req.Assets) == 0 || len(req.Assets) > limit {
		syncJSON(c, http.StatusBadRequest, gin.H{"error": fmt.Sprintf("O lote deve conter entre 1 e %d itens", limit)})
		return
	}

	results := make([]bulkResult, 0, len(req.Assets))
	succeeded := 0
	for i, item := range req.Assets {
		r := s.applyBulkItem(c, req.Mode, i, item)
		if r.Success {
			succeeded++
		}
		results = append(results, r)
	}

	s.logger.Info("Bulk sync processed",
		zap.String("sync_id", c.GetString(syncIDKey)),
		zap.String("mode", string(req.Mode)),
		zap.Int("total", len(results)),
		zap.Int("succeeded", succeeded))

	syncJSON(c, http.StatusOK, gin.H{
		"mode":      req.Mode,
		"total":     len(results),
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
		"results":   results,
	})
}

func (s *Server) applyBulkItem(c *gin.Context, mode BulkMode, index int, item bulkItem) bulkResult {
	ctx := c.Request.Context()
	r := bulkResult{Index: index, AssetCode: item.AssetCode}

	code, err := patcode.Normalize(item.AssetCode)
	if err != nil {
		r.Action = "rejected"
		r.Error = "Código PAT deve conter exatamente 6 dígitos numéricos"
		return r
	}
	r.AssetCode = code
	item.AssetCode = code

	_, err = s.engine.GetAssetByCode(ctx, code)
	var nf *lifecycle.NotFound
	exists := err == nil
	if err != nil && !errors.As(err, &nf) {
		r.Action = "rejected"
		r.Error = userMessage(err)
		return r
	}

	switch {
	case exists && mode == BulkInsertOnly:
		r.Action = "skipped"
		r.Error = fmt.Sprintf("Código PAT %s já cadastrado", code)
		return r
	case !exists && mode == BulkUpdateOnly:
		r.Action = "skipped"
		r.Error = fmt.Sprintf("Equipamento %s não encontrado", code)
		return r
	case exists:
		r.Action = "updated"
		_, err = s.engine.UpdateDescriptive(ctx, code, item.patch())
	default:
		r.Action = "created"
		_, err = s.engine.RegisterAsset(ctx, item.registerInput())
	}

	if err != nil {
		r.Error = userMessage(err)
		return r
	}
	r.Success = true
	return r
}
