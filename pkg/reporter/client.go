// Package reporter is a client for the NIH RePORTER v2 search API. It
// belongs to the acquisition stage: pagination and network retry live
// here, outside the sequential graph-construction core.
package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nihkg/reporterkg/internal/util"
	"github.com/nihkg/reporterkg/pkg/logger"
)

// DefaultBaseURL is the public RePORTER v2 API root.
const DefaultBaseURL = "https://api.reporter.nih.gov/v2/"

// BatchLimit is the maximum page size the API accepts.
const BatchLimit = 500

const parallelBatches = 4

// Client calls the RePORTER search endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

// NewClientParams configures a Client.
type NewClientParams struct {
	BaseURL    string
	MaxRetries int
	Timeout    time.Duration
}

func NewClient(params NewClientParams) *Client {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := params.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: params.MaxRetries,
	}
}

// SearchRequest is the payload of one paged search call.
type SearchRequest struct {
	Criteria      map[string]any `json:"criteria"`
	IncludeFields []string       `json:"include_fields,omitempty"`
	ExcludeFields []string       `json:"exclude_fields,omitempty"`
	Offset        int            `json:"offset"`
	Limit         int            `json:"limit"`
	SortField     string         `json:"sort_field,omitempty"`
	SortOrder     string         `json:"sort_order,omitempty"`
}

type searchResponse struct {
	Results []map[string]any `json:"results"`
}

// SearchProjects runs one page of the projects search.
func (c *Client) SearchProjects(ctx context.Context, req SearchRequest) ([]map[string]any, error) {
	return c.search(ctx, "projects/search", req)
}

// SearchPublications runs one page of the publications search.
func (c *Client) SearchPublications(ctx context.Context, req SearchRequest) ([]map[string]any, error) {
	return c.search(ctx, "publications/search", req)
}

func (c *Client) search(ctx context.Context, endpoint string, req SearchRequest) ([]map[string]any, error) {
	if req.Criteria == nil {
		req.Criteria = map[string]any{}
	}
	if req.Limit == 0 {
		req.Limit = BatchLimit
	}
	if req.SortOrder == "" {
		req.SortOrder = "asc"
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", endpoint, err)
	}

	return util.RetryWithContext(ctx, c.maxRetries, func(ctx context.Context) ([]map[string]any, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("build %s request: %w", endpoint, err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("call %s: %w", endpoint, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("%s returned %d: %s", endpoint, resp.StatusCode, body)
		}

		var decoded searchResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return nil, fmt.Errorf("decode %s response: %w", endpoint, err)
		}
		return decoded.Results, nil
	})
}

// FetchBatches pulls the given number of pages of BatchLimit records
// each, with a bounded fan-out of parallelBatches in-flight requests.
// The combined result is ordered by page offset regardless of
// completion order.
func (c *Client) FetchBatches(
	ctx context.Context,
	endpoint string,
	template SearchRequest,
	batches int,
) ([]map[string]any, error) {
	results := make([][]map[string]any, batches)

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(parallelBatches)

	for i := 0; i < batches; i++ {
		batch := i
		eg.Go(func() error {
			req := template
			req.Offset = batch * BatchLimit
			req.Limit = BatchLimit

			page, err := c.search(gCtx, endpoint, req)
			if err != nil {
				return fmt.Errorf("batch %d/%d: %w", batch+1, batches, err)
			}
			results[batch] = page
			logger.Debug("Fetched batch", "endpoint", endpoint, "batch", batch+1, "of", batches, "records", len(page))
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	combined := make([]map[string]any, 0, batches*BatchLimit)
	for _, page := range results {
		combined = append(combined, page...)
	}
	return combined, nil
}

// ProjectIncludeFields is the field set requested from the projects
// search; it mirrors the columns the downstream stages read.
var ProjectIncludeFields = []string{
	"ApplId", "ActivityCode", "AgencyIcAdmin", "AwardType", "AwardNoticeDate",
	"BudgetStart", "BudgetEnd", "CfdaCode", "CoreProjectNum", "OrganizationType",
	"OpportunityNumber", "ProjectNum", "AgencyIcFundings", "FundingMechanism",
	"FiscalYear", "SpendingCategoriesDesc", "Organization", "PhrText",
	"ProjectStartDate", "ProjectEndDate", "PrefTerms", "ProjectTitle",
	"ProjectSerialNum", "FullStudySection", "SubprojectId", "ProjectNumSplit",
	"DirectCostAmt", "IndirectCostAmt", "AwardAmount", "IsActive", "IsNew",
	"AbstractText", "AgencyCode", "ProjectDetailUrl", "DateAdded",
}
