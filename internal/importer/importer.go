package importer

import (
	"context"
	"errors"

	"github.com/KevinKickass/OpenAssetCore/internal/lifecycle"
	"github.com/KevinKickass/OpenAssetCore/internal/types"
	"go.uber.org/zap"
)

type Registrar interface {
	RegisterAsset(ctx context.Context, in lifecycle.RegisterInput) (*types.Asset, error)
}

type RowStatus string

const (
	StatusCreated RowStatus = "created"
	StatusSkipped RowStatus = "skipped"
	StatusFailed  RowStatus = "failed"
)

type RowResult struct {
	Line      int       `json:"line"`
	AssetCode string    `json:"asset_code"`
	Status    RowStatus `json:"status"`
	Message   string    `json:"message,omitempty"`
}

type Report struct {
	Created int         `json:"created"`
	Skipped int         `json:"skipped"`
	Failed  int         `json:"failed"`
	Rows    []RowResult `json:"rows"`
}

type Importer struct {
	registrar Registrar
	logger    *zap.Logger
}

func New(registrar Registrar, logger *zap.Logger) *Importer {
	return &Importer{registrar: registrar, logger: logger}
}

// Import registers every row. Codes already registered are skipped; other
// failures are reported per row and do not stop the import. Only a done
// context ends it early.
func (im *Importer) Import(ctx context.Context, rows []Row) (*Report, error) {
	report := &Report{Rows: make([]RowResult, 0, len(rows))}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result := RowResult{Line: row.Line, AssetCode: row.Input.AssetCode}
		asset, err := im.registrar.RegisterAsset(ctx, row.Input)

		var dup *lifecycle.DuplicateAssetCode
		switch {
		case err == nil:
			result.Status = StatusCreated
			result.AssetCode = asset.AssetCode
			report.Created++
		case errors.As(err, &dup):
			result.Status = StatusSkipped
			result.AssetCode = dup.Code
			result.Message = dup.UserMessage()
			report.Skipped++
		default:
			result.Status = StatusFailed
			result.Message = userMessage(err)
			report.Failed++
			im.logger.Warn("Import row failed",
				zap.Int("line", row.Line),
				zap.String("asset_code", row.Input.AssetCode),
				zap.Error(err))
		}
		report.Rows = append(report.Rows, result)
	}

	im.logger.Info("Import finished",
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

func userMessage(err error) string {
	var ue lifecycle.UserError
	if errors.As(err, &ue) {
		return ue.UserMessage()
	}
	return err.Error()
}
