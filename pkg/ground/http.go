package ground

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nihkg/reporterkg/internal/util"
)

// HTTPAnnotator grounds text through a Gilda-style REST endpoint:
// POST <url> with {"text": ...} returns a JSON array of annotations,
// each with its candidate matches in rank order.
type HTTPAnnotator struct {
	url        string
	client     *http.Client
	maxRetries int
}

// NewHTTPAnnotatorParams configures an HTTPAnnotator.
type NewHTTPAnnotatorParams struct {
	URL        string
	MaxRetries int
	Timeout    time.Duration
}

func NewHTTPAnnotator(params NewHTTPAnnotatorParams) *HTTPAnnotator {
	timeout := params.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &HTTPAnnotator{
		url:        params.URL,
		client:     &http.Client{Timeout: timeout},
		maxRetries: params.MaxRetries,
	}
}

// Annotate sends text to the grounding service and returns its ordered
// annotation spans. Transient failures are retried up to the configured
// bound; the last error wins.
func (a *HTTPAnnotator) Annotate(ctx context.Context, text string) ([]Annotation, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("encode annotation request: %w", err)
	}

	return util.RetryWithContext(ctx, a.maxRetries, func(ctx context.Context) ([]Annotation, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("build annotation request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := a.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("call grounding service: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("grounding service returned %d: %s", resp.StatusCode, body)
		}

		var annotations []Annotation
		if err := json.NewDecoder(resp.Body).Decode(&annotations); err != nil {
			return nil, fmt.Errorf("decode annotation response: %w", err)
		}
		return annotations, nil
	})
}
