// Package leads sends a finished brief to the lead intake API.
package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/turanweb/turan/internal/brief"
)

// Path is where the intake API accepts new leads.
const Path = "/api/leads"

// Payload is the intake API's lead schema.
type Payload struct {
	Name                string `json:"name"`
	BusinessName        string `json:"businessName"`
	BusinessType        string `json:"businessType"`
	BusinessDescription string `json:"businessDescription"`
	TargetAudience      string `json:"targetAudience"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	SelectedTheme       string `json:"selectedTheme"`
	PreferredColors     string `json:"preferredColors"`
	WebsiteGoal         string `json:"websiteGoal"`
	// FeaturesNeeded is a JSON array encoded as a string.
	FeaturesNeeded  string `json:"featuresNeeded"`
	HasLogo         bool   `json:"hasLogo"`
	HasContent      bool   `json:"hasContent"`
	HasPhotos       bool   `json:"hasPhotos"`
	Competitors     string `json:"competitors"`
	AdditionalNotes string `json:"additionalNotes"`
	BudgetRange     string `json:"budgetRange"`
	Deadline        string `json:"deadline"`
	AgreedToTerms   bool   `json:"agreedToTerms"`
}

func NewPayload(b brief.LeadBrief) (Payload, error) {
	features := b.FeaturesNeeded
	if features == nil {
		features = []string{}
	}
	encoded, err := json.Marshal(features)
	if err != nil {
		return Payload{}, fmt.Errorf("leads: encode features: %w", err)
	}

	return Payload{
		Name:                b.Name,
		BusinessName:        b.BusinessName,
		BusinessType:        b.BusinessType,
		BusinessDescription: b.BusinessDescription,
		TargetAudience:      b.TargetAudience,
		Email:               b.Email,
		Phone:               b.Phone,
		SelectedTheme:       b.SelectedTheme,
		PreferredColors:     b.PreferredColors,
		WebsiteGoal:         b.WebsiteGoal,
		FeaturesNeeded:      string(encoded),
		HasLogo:             b.HasLogo,
		HasContent:          b.HasContent,
		HasPhotos:           b.HasPhotos,
		Competitors:         b.Competitors,
		AdditionalNotes:     b.AdditionalNotes,
		BudgetRange:         b.BudgetRange,
		Deadline:            b.Deadline,
		AgreedToTerms:       true,
	}, nil
}

type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Outcome is the result of one submission. Failures carry a reason and the
// HTTP status when the API answered at all.
type Outcome struct {
	Status     Status
	Reason     string
	StatusCode int
}

func Ok(code int) Outcome {
	return Outcome{Status: StatusOK, StatusCode: code}
}

func Failed(reason string, code int) Outcome {
	return Outcome{Status: StatusFailed, Reason: reason, StatusCode: code}
}

func (o Outcome) OK() bool {
	return o.Status == StatusOK
}

// Client posts briefs to the intake API.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

// NewClient targets baseURL+Path. A nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + Path,
		http:     httpClient,
		logger:   logger,
	}
}

// Submit sends the brief once. It never returns an error: failures are
// logged and reported through the Outcome.
func (c *Client) Submit(ctx context.Context, b brief.LeadBrief) Outcome {
	out := c.submit(ctx, b)
	if !out.OK() {
		c.logger.LogAttrs(
			ctx,
			slog.LevelError,
			"error submitting brief",
			slog.String("error", out.Reason),
			slog.Int("status", out.StatusCode),
		)
	}
	return out
}

func (c *Client) submit(ctx context.Context, b brief.LeadBrief) Outcome {
	payload, err := NewPayload(b)
	if err != nil {
		return Failed(err.Error(), 0)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Failed(fmt.Sprintf("leads: encode payload: %s", err), 0)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Failed(fmt.Sprintf("leads: build request: %s", err), 0)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Failed(fmt.Sprintf("leads: post: %s", err), 0)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Failed(fmt.Sprintf("leads: unexpected status %d", resp.StatusCode), resp.StatusCode)
	}
	return Ok(resp.StatusCode)
}
