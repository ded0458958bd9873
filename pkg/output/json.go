package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/runixlabs/runix/pkg/engine"
)

// JSONHandler renders analysis results as indented JSON for scripting.
type JSONHandler struct {
	w io.Writer
}

// NewJSONHandler creates a JSON handler writing to w.
func NewJSONHandler(w io.Writer) *JSONHandler {
	return &JSONHandler{w: w}
}

func (h *JSONHandler) Format() string {
	return "json"
}

func (h *JSONHandler) DisplayResults(_ context.Context, results []*engine.Result) error {
	enc := json.NewEncoder(h.w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// DisplaySummary is a no-op for JSON output; the result objects already
// carry the cost figures.
func (h *JSONHandler) DisplaySummary(context.Context, float64, int) error {
	return nil
}
