package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/KevinKickass/OpenAssetCore/internal/cnpj"
	"github.com/KevinKickass/OpenAssetCore/internal/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GET /health
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.engine.Ping(ctx); err != nil {
		s.logger.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unavailable",
			"error":     err.Error(),
			"timestamp": time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// GET /api/v1/system/status
func (s *Server) getSystemStatus(c *gin.Context) {
	if s.status == nil {
		c.JSON(http.StatusServiceUnavailable, types.NewErrorResponse("SYSTEM_503", "Status not available", nil))
		return
	}
	c.JSON(http.StatusOK, s.status.GetCurrentStatus())
}

// GET /api/v1/ws/status
func (s *Server) wsStatus(c *gin.Context) {
	clients := 0
	if s.hub != nil {
		clients = s.hub.GetClientCount()
	}
	c.JSON(http.StatusOK, gin.H{
		"connected_clients": clients,
	})
}

// GET /api/v1/companies/:cnpj
func (s *Server) lookupCompany(c *gin.Context) {
	if s.companies == nil {
		c.JSON(http.StatusServiceUnavailable, types.NewErrorResponse("CNPJ_503", "Consulta de CNPJ indisponível", nil))
		return
	}

	company, err := s.companies.Lookup(c.Request.Context(), c.Param("cnpj"))
	switch {
	case errors.Is(err, cnpj.ErrInvalid):
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("INVALID_CNPJ", "CNPJ inválido", nil).WithFields("cnpj"))
	case errors.Is(err, cnpj.ErrNotFound):
		c.JSON(http.StatusNotFound, types.NewErrorResponse("NOT_FOUND", "CNPJ não encontrado", nil))
	case err != nil:
		c.JSON(http.StatusBadGateway, types.NewErrorResponse("CNPJ_502", "Falha ao consultar o CNPJ", err.Error()))
	default:
		c.JSON(http.StatusOK, gin.H{
			"company":      company,
			"display_name": company.DisplayName(),
			"formatted":    cnpj.Format(company.CNPJ),
		})
	}
}
