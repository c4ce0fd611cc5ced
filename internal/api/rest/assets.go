package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/KevinKickass/OpenAssetCore/internal/auth"
	"github.com/KevinKickass/OpenAssetCore/internal/importer"
	"github.com/KevinKickass/OpenAssetCore/internal/lifecycle"
	"github.com/KevinKickass/OpenAssetCore/internal/maintenance"
	"github.com/KevinKickass/OpenAssetCore/internal/types"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type moveRequest struct {
	LocationType types.LocationType `json:"location_type"`
	lifecycle.LocationInput
}

type resolveRequest struct {
	Decision lifecycle.Decision `json:"decision"`
	lifecycle.LocationInput
}

type versionRequest struct {
	ExpectedVersion *int `json:"expected_version"`
}

// GET /api/v1/assets
func (s *Server) listAssets(c *gin.Context) {
	filter := types.AssetFilter{
		Location: types.LocationType(c.Query("location_type")),
		Query:    c.Query("q"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			badRequest(c, "limit inválido", nil)
			return
		}
		filter.Limit = limit
	}

	assets, err := s.engine.ListAssets(c.Request.Context(), filter)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assets": assets,
		"count":  len(assets),
	})
}

// POST /api/v1/assets
func (s *Server) registerAsset(c *gin.Context) {
	var req lifecycle.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Corpo da requisição inválido", err.Error())
		return
	}
	req.Source = lifecycle.SourceApp

	asset, err := s.engine.RegisterAsset(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, asset)
}

// GET /api/v1/assets/:code
func (s *Server) getAsset(c *gin.Context) {
	asset, err := s.engine.GetAssetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

// PATCH /api/v1/assets/:code
func (s *Server) updateAsset(c *gin.Context) {
	var patch lifecycle.DescriptivePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Corpo da requisição inválido", err.Error())
		return
	}
	patch.Source = lifecycle.SourceApp

	asset, err := s.engine.UpdateDescriptive(c.Request.Context(), c.Param("code"), patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

// POST /api/v1/assets/:code/move
func (s *Server) moveAsset(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Corpo da requisição inválido", err.Error())
		return
	}

	ctx := c.Request.Context()
	current, err := s.engine.GetAssetByCode(ctx, c.Param("code"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	asset, err := s.engine.MoveAsset(ctx, current.ID, req.LocationType, req.LocationInput)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

// POST /api/v1/assets/:code/inspection
func (s *Server) sendToInspection(c *gin.Context) {
	var req versionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Corpo da requisição inválido", err.Error())
			return
		}
	}

	ctx := c.Request.Context()
	current, err := s.engine.GetAssetByCode(ctx, c.Param("code"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	asset, err := s.engine.SendToInspection(ctx, current.ID, req.ExpectedVersion)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

// POST /api/v1/assets/:code/inspection/resolve
func (s *Server) resolveInspection(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Corpo da requisição inválido", err.Error())
		return
	}

	ctx := c.Request.Context()
	current, err := s.engine.GetAssetByCode(ctx, c.Param("code"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	asset, err := s.engine.ResolveInspection(ctx, current.ID, req.Decision, req.LocationInput)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

// POST /api/v1/assets/:code/substitute
func (s *Server) substituteAsset(c *gin.Context) {
	var req lifecycle.SubstituteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Corpo da requisição inválido", err.Error())
		return
	}

	ctx := c.Request.Context()
	current, err := s.engine.GetAssetByCode(ctx, c.Param("code"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	result, err := s.engine.SubstituteAsset(ctx, current.ID, req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/v1/assets/:code/history
func (s *Server) assetHistory(c *gin.Context) {
	ctx := c.Request.Context()
	asset, err := s.engine.GetAssetByCode(ctx, c.Param("code"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	events, err := s.engine.History(ctx, asset.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"asset_code": asset.AssetCode,
		"history":    events,
		"count":      len(events),
	})
}

// GET /api/v1/assets/:code/cycles
func (s *Server) assetCycles(c *gin.Context) {
	ctx := c.Request.Context()
	asset, err := s.engine.GetAssetByCode(ctx, c.Param("code"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	cycles, err := s.engine.Cycles(ctx, asset.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"asset_code": asset.AssetCode,
		"cycles":     cycles,
		"count":      len(cycles),
	})
}

// GET /api/v1/assets/:code/maintenance-records
func (s *Server) listMaintenanceRecords(c *gin.Context) {
	asset, records, err := s.maintenance.ListReadings(c.Request.Context(), c.Param("code"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"asset_code":                 asset.AssetCode,
		"next_maintenance_hourmeter": asset.NextMaintenanceHourmeter,
		"maintenance_status":         asset.MaintenanceStatus,
		"records":                    records,
		"count":                      len(records),
	})
}

// POST /api/v1/assets/:code/maintenance-records
func (s *Server) recordMaintenance(c *gin.Context) {
	var req maintenance.ReadingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Corpo da requisição inválido", err.Error())
		return
	}

	record, asset, err := s.maintenance.RecordReading(c.Request.Context(), c.Param("code"), req, auth.Actor(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"record": record,
		"asset":  asset,
	})
}

// GET /api/v1/assets/export.xlsx
func (s *Server) exportAssets(c *gin.Context) {
	assets, err := s.engine.ListAssets(c.Request.Context(), types.AssetFilter{
		Location: types.LocationType(c.Query("location_type")),
		Query:    c.Query("q"),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	data, err := importer.ExportAssets(assets)
	if err != nil {
		s.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("patrimonio-%s.xlsx", s.engine.Clock().Today().Format(types.DateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
