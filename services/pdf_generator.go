package services

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// PDFOptions controls page size and margins. Margins are in points (72 = 1 inch).
type PDFOptions struct {
	Landscape    bool
	PageSize     string // letter, legal, A4
	MarginTop    int
	MarginBottom int
	MarginLeft   int
	MarginRight  int
	ChromePath   string
}

// DefaultPDFOptions returns letter portrait with one-inch margins
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageSize:     "letter",
		MarginTop:    72,
		MarginBottom: 72,
		MarginLeft:   72,
		MarginRight:  72,
	}
}

func paperSize(size string) (float64, float64) {
	switch size {
	case "legal":
		return 8.5, 14.0
	case "A4":
		return 8.27, 11.69
	default:
		return 8.5, 11.0
	}
}

// GeneratePDF renders HTML to PDF using headless Chrome
func GeneratePDF(ctx context.Context, htmlContent string, options PDFOptions) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	if options.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(options.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	width, height := paperSize(options.PageSize)
	if options.Landscape {
		width, height = height, width
	}

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.Sleep(100*time.Millisecond),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(width).
				WithPaperHeight(height).
				WithMarginTop(float64(options.MarginTop) / 72.0).
				WithMarginBottom(float64(options.MarginBottom) / 72.0).
				WithMarginLeft(float64(options.MarginLeft) / 72.0).
				WithMarginRight(float64(options.MarginRight) / 72.0).
				WithPrintBackground(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return pdf, nil
}
