package explainer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// HTTPExplainer calls a remote text-generation service. Any transport or
// decoding failure surfaces as ErrUnavailable so callers can fall back to
// the template explainer.
type HTTPExplainer struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewHTTPExplainer creates a client for the explanation service. The rate
// limiter keeps analysis fan-out from hammering the collaborator.
func NewHTTPExplainer(baseURL string, timeout time.Duration) *HTTPExplainer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPExplainer{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(2), 4),
	}
}

func (h *HTTPExplainer) Name() string {
	return "http"
}

type generateResponse struct {
	Explanation []string `json:"explanation"`
}

// Generate posts the facts and returns the service's prose strings.
func (h *HTTPExplainer) Generate(ctx context.Context, facts Facts) ([]string, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	body, err := json.Marshal(facts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode facts: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/v1/explain", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(out.Explanation) == 0 {
		return nil, fmt.Errorf("%w: empty explanation", ErrUnavailable)
	}
	return out.Explanation, nil
}
