// Package generator sequences the order-to-invoice pipeline: fetch the
// order, render the document, optionally upload it to the cloud drive.
package generator

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/Porky3112/shopify-webhook/internal/domain/order"
	"github.com/Porky3112/shopify-webhook/internal/graph"
	"github.com/Porky3112/shopify-webhook/internal/invoice"
	"github.com/Porky3112/shopify-webhook/internal/shopify"
)

// OrderFetcher retrieves one order record from the order platform.
type OrderFetcher interface {
	FetchOrder(ctx context.Context, id string) (*order.Order, error)
}

// Renderer produces a local invoice document for an order.
type Renderer interface {
	Render(o *order.Order, filenameBase string) (*invoice.RenderedInvoice, error)
}

// Uploader stores a rendered document in the cloud drive. Configured reports
// whether its credentials are complete; uploads are skipped otherwise.
type Uploader interface {
	Configured() bool
	Upload(ctx context.Context, filePath, filename string) (*invoice.UploadResult, error)
}

// ErrorKind classifies a pipeline failure so callers can branch on kind
// rather than message content.
type ErrorKind string

const (
	KindUpstream ErrorKind = "upstream"
	KindRender   ErrorKind = "render"
	KindAuth     ErrorKind = "auth"
	KindUpload   ErrorKind = "upload"
	KindInternal ErrorKind = "internal"
)

// Result is the discriminated outcome of one pipeline run. Exactly one
// variant is populated: the success fields, or ErrorKind plus Error.
type Result struct {
	Success       bool
	OrderNumber   string
	LocalFilePath string
	Cloud         *invoice.UploadResult

	ErrorKind ErrorKind
	Error     string
}

// Options control local retention and cloud upload for one run.
type Options struct {
	SaveLocal     bool
	UploadToCloud bool
}

// Service is the invoice orchestrator. It is the single point that converts
// component failures into a tagged Result; components below it propagate
// typed errors unmodified.
type Service struct {
	orders   OrderFetcher
	renderer Renderer
	uploader Uploader
	now      func() time.Time
}

// NewService creates the orchestrator with its component dependencies.
// The uploader may be nil when no cloud provider is configured.
func NewService(orders OrderFetcher, renderer Renderer, uploader Uploader) *Service {
	return &Service{
		orders:   orders,
		renderer: renderer,
		uploader: uploader,
		now:      time.Now,
	}
}

// Generate runs the pipeline for one order id. It never returns an error:
// every failure is folded into the Result failure variant.
func (s *Service) Generate(ctx context.Context, orderID string, opts Options) *Result {
	lg := zctx.From(ctx)

	lg.Info("Fetching order", zap.String("order_id", orderID))
	o, err := s.orders.FetchOrder(ctx, orderID)
	if err != nil {
		lg.Error("Order fetch failed", zap.Error(err))
		return failure(err)
	}

	base := fmt.Sprintf("Factura_%s_%d", o.Number, s.now().Unix())
	lg.Info("Rendering invoice", zap.String("order_number", string(o.Number)), zap.String("file", base+".pdf"))
	rendered, err := s.renderer.Render(o, base)
	if err != nil {
		lg.Error("Render failed", zap.Error(err))
		return failure(err)
	}

	result := &Result{
		Success:       true,
		OrderNumber:   string(o.Number),
		LocalFilePath: rendered.Path,
	}

	if opts.UploadToCloud && s.uploader != nil && s.uploader.Configured() {
		lg.Info("Uploading invoice", zap.String("file", base+".pdf"))
		cloud, err := s.uploader.Upload(ctx, rendered.Path, base)
		if err != nil {
			lg.Error("Upload failed", zap.Error(err))
			return failure(err)
		}
		result.Cloud = cloud

		if !opts.SaveLocal {
			if err := os.Remove(rendered.Path); err != nil {
				lg.Error("Local cleanup failed", zap.Error(err))
				return failure(errors.Wrap(err, "remove local document"))
			}
			result.LocalFilePath = ""
		}
	}

	lg.Info("Invoice generated", zap.String("order_number", result.OrderNumber))
	return result
}

// failure builds the failure variant, classifying the component error.
func failure(err error) *Result {
	return &Result{
		ErrorKind: classify(err),
		Error:     err.Error(),
	}
}

func classify(err error) ErrorKind {
	var (
		reqErr    *shopify.RequestError
		renderErr *invoice.RenderError
		authErr   *graph.AuthError
		uploadErr *graph.UploadError
	)
	switch {
	case errors.As(err, &reqErr):
		return KindUpstream
	case errors.As(err, &renderErr):
		return KindRender
	case errors.As(err, &authErr):
		return KindAuth
	case errors.As(err, &uploadErr):
		return KindUpload
	default:
		return KindInternal
	}
}
