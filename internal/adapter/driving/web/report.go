package web

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ericfisherdev/prresolver/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/prresolver/internal/domain/model"
)

// Render writes the HTML review report for prCtx to w. Output is buffered so
// a render failure never leaves a partial file behind.
func Render(ctx context.Context, w io.Writer, prCtx *model.PRContext) error {
	var buf bytes.Buffer
	if err := templates.Report(toReportViewModel(prCtx)).Render(ctx, &buf); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
