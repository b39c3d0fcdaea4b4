package locks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stayflow/access-service/internal/constants"
	"github.com/stayflow/access-service/internal/models"
	"github.com/stayflow/access-service/internal/utils"
)

// VendorClient talks to the lock-aggregation vendor's REST API. The vendor
// fronts the individual lock platforms, so the platform travels in the
// request path and the vendor routes it onward.
type VendorClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewVendorClient(baseURL, apiKey string) *VendorClient {
	return &VendorClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: constants.LockGatewayTimeout,
		},
	}
}

type createCodeRequest struct {
	Name      string `json:"name"`
	Code      string `json:"code"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Weekdays  []int  `json:"weekdays,omitempty"`
	TimeStart *int   `json:"time_start,omitempty"`
	TimeEnd   *int   `json:"time_end,omitempty"`
}

// CreateAccessCode implements Gateway. A non-2xx vendor response is an
// error; callers own the per-lock failure isolation.
func (c *VendorClient) CreateAccessCode(
	ctx context.Context,
	platform models.LockPlatformType,
	externalLockID string,
	params ProvisionParams,
) error {
	body := createCodeRequest{
		Name:      params.Name,
		Code:      params.Code,
		StartDate: params.StartDate.UTC().Format(time.RFC3339),
		EndDate:   params.EndDate.UTC().Format(time.RFC3339),
		Weekdays:  params.Weekdays,
	}
	// A full-day window means "no schedule" to the vendor; omit the bounds.
	if params.TimeStart != constants.FullDayStartMin || params.TimeEnd != constants.FullDayEndMin {
		body.TimeStart = utils.Ptr(params.TimeStart)
		body.TimeEnd = utils.Ptr(params.TimeEnd)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v1/platforms/%s/locks/%s/access-codes",
		c.baseURL, strings.ToLower(string(platform)), externalLockID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("lock gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("lock gateway returned %d for lock %s: %s",
			resp.StatusCode, externalLockID, strings.TrimSpace(string(snippet)))
	}

	utils.Logger.Debugf("Provisioned code on %s lock %s (window %s - %s)",
		platform, externalLockID, body.StartDate, body.EndDate)
	return nil
}
