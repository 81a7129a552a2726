// Package platform implements the outbound client for the external
// logistics platform: one JSON POST per pending vehicle.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/pacpoom/interface-vdc/internal/server/models"
)

// Outcome classifies one push attempt.
type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeRejected     Outcome = "rejected"
	OutcomeNetworkError Outcome = "network_error"
)

// productionDateLayout is the platform's fixed textual date format.
const productionDateLayout = "2006/01/02 15:04:05"

// acceptedCode is the embedded status code the platform returns for an
// accepted record.
const acceptedCode = "200"

// payload is the fixed wire shape the platform expects. Field names are
// part of the platform contract and intentionally inconsistent.
type payload struct {
	VINCode        string `json:"vinCode"`
	MaterialCode   string `json:"materialCode"`
	EngineCode     string `json:"engine_code"`
	ProductionDate string `json:"productionDate"`
	Flag           string `json:"flag"`
}

type platformResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the classified outcome of pushing one vehicle.
type Result struct {
	VIN     string
	Outcome Outcome
	Message string
}

// Pusher is the interface the sync engine depends on.
type Pusher interface {
	Push(ctx context.Context, v *models.Vehicle) Result
}

// Client posts hand-off records to the platform. Every call carries the
// identifying application/API-code header pair and runs under a bounded
// per-call timeout, so one unreachable endpoint cannot stall a whole batch.
type Client struct {
	httpClient *http.Client
	url        string
	appID      string
	apiCode    string
	timeout    time.Duration
}

func NewClient(url, appID, apiCode string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		appID:      appID,
		apiCode:    apiCode,
		timeout:    timeout,
	}
}

// Push sends one vehicle and classifies the response. Transport errors are
// retried a couple of times within the per-call budget; the platform's
// answer, once received, is never retried.
func (c *Client) Push(ctx context.Context, v *models.Vehicle) Result {
	body, err := json.Marshal(payload{
		VINCode:        v.VIN,
		MaterialCode:   v.VehicleCode,
		EngineCode:     v.EngineCode,
		ProductionDate: v.GaOffTime.Format(productionDateLayout),
		Flag:           fmt.Sprintf("%d", v.ReceivedFlag),
	})
	if err != nil {
		return Result{VIN: v.VIN, Outcome: OutcomeNetworkError, Message: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp platformResponse
	var httpStatus int

	backoff := retry.WithMaxRetries(2, retry.NewConstant(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-App-Id", c.appID)
		req.Header.Set("X-Api-Code", c.apiCode)

		res, err := c.httpClient.Do(req)
		if err != nil {
			// transport failure, worth another attempt
			return retry.RetryableError(err)
		}
		defer res.Body.Close()

		httpStatus = res.StatusCode
		if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
			return fmt.Errorf("malformed response: %w", err)
		}
		return nil
	})

	if err != nil {
		return Result{VIN: v.VIN, Outcome: OutcomeNetworkError, Message: err.Error()}
	}

	// a rejection is an answer; only HTTP success carries one
	if httpStatus < 200 || httpStatus >= 300 {
		return Result{
			VIN:     v.VIN,
			Outcome: OutcomeNetworkError,
			Message: fmt.Sprintf("http %d code %s: %s", httpStatus, resp.Code, resp.Message),
		}
	}

	if resp.Code == acceptedCode {
		return Result{VIN: v.VIN, Outcome: OutcomeSuccess, Message: resp.Message}
	}

	return Result{
		VIN:     v.VIN,
		Outcome: OutcomeRejected,
		Message: fmt.Sprintf("http %d code %s: %s", httpStatus, resp.Code, resp.Message),
	}
}
