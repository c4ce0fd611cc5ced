package cnpj

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/KevinKickass/OpenAssetCore/internal/config"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("CNPJ not found")

// Company is the registry entry of a rental or maintenance company.
type Company struct {
	CNPJ         string `json:"cnpj"`
	RazaoSocial  string `json:"razao_social"`
	NomeFantasia string `json:"nome_fantasia"`
	Situacao     string `json:"descricao_situacao_cadastral"`
	Municipio    string `json:"municipio"`
	UF           string `json:"uf"`
}

// DisplayName prefers the trade name.
func (c *Company) DisplayName() string {
	if c.NomeFantasia != "" {
		return c.NomeFantasia
	}
	return c.RazaoSocial
}

type apiError struct {
	Message string `json:"message"`
}

type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

func NewClient(cfg config.CNPJConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Accept", "application/json")

	return &Client{httpClient: client, logger: logger}
}

// Lookup fetches the company registered under raw.
func (c *Client) Lookup(ctx context.Context, raw string) (*Company, error) {
	digits, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	var company Company
	var apiErr apiError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("cnpj", digits).
		SetResult(&company).
		SetError(&apiErr).
		Get("/{cnpj}")
	if err != nil {
		c.logger.Error("CNPJ lookup failed", zap.String("cnpj", digits), zap.Error(err))
		return nil, fmt.Errorf("failed to call CNPJ registry: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.IsError():
		c.logger.Warn("CNPJ registry returned error",
			zap.String("cnpj", digits),
			zap.Int("status", resp.StatusCode()),
			zap.String("message", apiErr.Message))
		return nil, fmt.Errorf("CNPJ registry error: %s (status: %d)", apiErr.Message, resp.StatusCode())
	}

	if company.CNPJ == "" {
		company.CNPJ = digits
	}
	return &company, nil
}
