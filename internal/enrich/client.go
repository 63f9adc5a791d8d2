package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gpsys/internal/config"
)

// commissionedByRelID is the registry's relationship-type code for
// "Commissioned By".
const commissionedByRelID = "RE4"

var ErrOrganisationNotFound = errors.New("organisation not found in registry")

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.RegistryTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(time.Duration(cfg.RegistryDelayMs) * time.Millisecond),
	}
}

type organisationResponse struct {
	Organisation struct {
		Rels struct {
			Rel []struct {
				ID     string `json:"id"`
				Status string `json:"Status"`
				Target struct {
					OrgID struct {
						Extension string `json:"extension"`
					} `json:"OrgId"`
				} `json:"Target"`
			} `json:"Rel"`
		} `json:"Rels"`
	} `json:"Organisation"`
}

// CommissionerCode looks up the active "Commissioned By" relationship for an
// ODS code. A 429 is retried exactly once after a fixed backoff. An empty
// result with nil error means the organisation exists but carries no such
// relationship.
func (c *Client) CommissionerCode(ctx context.Context, odsCode string) (string, error) {
	url := strings.TrimRight(c.cfg.RegistryBaseURL, "/") + "/organisations/" + odsCode

	resp, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		drain(resp)
		fmt.Printf("registry rate limit hit, waiting %ds\n", c.cfg.RegistryBackoffSec)
		time.Sleep(time.Duration(c.cfg.RegistryBackoffSec) * time.Second)
		resp, err = c.get(ctx, url)
		if err != nil {
			return "", err
		}
	}
	defer drain(resp)

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", ErrOrganisationNotFound, odsCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("registry status %d for %s", resp.StatusCode, odsCode)
	}

	var payload organisationResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("parsing registry response for %s: %w", odsCode, err)
	}

	for _, rel := range payload.Organisation.Rels.Rel {
		if rel.Status == "Active" && rel.ID == commissionedByRelID {
			if ext := strings.TrimSpace(rel.Target.OrgID.Extension); ext != "" {
				return ext, nil
			}
		}
	}
	return "", nil
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	c.limiter.WaitTurn()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return c.httpClient.Do(req)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
