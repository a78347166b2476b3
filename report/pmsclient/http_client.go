// Package pmsclient implementa el cliente HTTP del property-management system.
package pmsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Abraxas-365/craftable/logx"

	"github.com/pelangilabs/moltbot/pkg/config"
	"github.com/pelangilabs/moltbot/report"
)

// Client cliente token-autenticado del API del PMS
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

func NewClient(cfg config.PMSConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiToken:   cfg.APIToken,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetOccupancy consulta las estadísticas de ocupación
func (c *Client) GetOccupancy(ctx context.Context) (*report.OccupancyStats, error) {
	var stats report.OccupancyStats
	if err := c.get(ctx, "/api/occupancy", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListCapsules consulta el estado de todas las cápsulas
func (c *Client) ListCapsules(ctx context.Context) ([]report.Capsule, error) {
	var capsules []report.Capsule
	if err := c.get(ctx, "/api/capsules", &capsules); err != nil {
		return nil, err
	}
	return capsules, nil
}

// CountCheckedInGuests cuenta los huéspedes con check-in activo
func (c *Client) CountCheckedInGuests(ctx context.Context) (int, error) {
	var page struct {
		Data  []json.RawMessage `json:"data"`
		Total int               `json:"total"`
	}
	if err := c.get(ctx, "/api/guests/checked-in?page=1&limit=1", &page); err != nil {
		return 0, err
	}
	return page.Total, nil
}

// ListOverdueGuests consulta los huéspedes con checkout vencido
func (c *Client) ListOverdueGuests(ctx context.Context) ([]report.OverdueGuest, error) {
	var overdue []report.OverdueGuest
	if err := c.get(ctx, "/api/guests/overdue", &overdue); err != nil {
		return nil, err
	}
	return overdue, nil
}

// ListMaintenanceIssues consulta las incidencias de mantenimiento abiertas
func (c *Client) ListMaintenanceIssues(ctx context.Context) ([]report.MaintenanceIssue, error) {
	var issues []report.MaintenanceIssue
	if err := c.get(ctx, "/api/problems?status=open", &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return report.ErrPMSUnavailable().WithCause(err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logx.Error("❌ PMS request failed: %s: %v", path, err)
		return report.ErrPMSUnavailable().WithCause(err).WithDetail("path", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		logx.Error("❌ PMS returned %d for %s", resp.StatusCode, path)
		return report.ErrPMSUnavailable().
			WithDetail("path", path).
			WithDetail("status", resp.StatusCode).
			WithDetail("response", string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return report.ErrPMSUnavailable().WithCause(err).WithDetail("path", path).WithDetail("reason", "unparseable response")
	}

	return nil
}

// HealthCheck verifica que el PMS responde
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return report.ErrPMSUnavailable().WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return report.ErrPMSUnavailable().WithDetail("status", fmt.Sprintf("%d", resp.StatusCode))
	}
	return nil
}
