package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Porky3112/shopify-webhook/internal/domain/order"
	"github.com/Porky3112/shopify-webhook/internal/graph"
	"github.com/Porky3112/shopify-webhook/internal/invoice"
	"github.com/Porky3112/shopify-webhook/internal/shopify"
)

// --- Mock implementations ---

type mockFetcher struct {
	order  *order.Order
	err    error
	lastID string
}

func (m *mockFetcher) FetchOrder(_ context.Context, id string) (*order.Order, error) {
	m.lastID = id
	return m.order, m.err
}

// mockRenderer writes a real file so local-cleanup behavior is observable.
type mockRenderer struct {
	dir      string
	err      error
	lastBase string
	rendered int
}

func (m *mockRenderer) Render(o *order.Order, base string) (*invoice.RenderedInvoice, error) {
	m.lastBase = base
	if m.err != nil {
		return nil, m.err
	}
	m.rendered++
	path := filepath.Join(m.dir, base+".pdf")
	if err := os.WriteFile(path, []byte("pdf"), 0o644); err != nil {
		return nil, err
	}
	return &invoice.RenderedInvoice{Path: path, OrderNumber: string(o.Number)}, nil
}

type mockUploader struct {
	configured bool
	result     *invoice.UploadResult
	err        error
	uploads    int
}

func (m *mockUploader) Configured() bool { return m.configured }

func (m *mockUploader) Upload(_ context.Context, _, _ string) (*invoice.UploadResult, error) {
	m.uploads++
	return m.result, m.err
}

// --- Helpers ---

func newTestOrder() *order.Order {
	return &order.Order{
		ID:        1001,
		Number:    "#1001",
		CreatedAt: "2024-03-05T10:00:00Z",
		LineItems: []order.LineItem{
			{Title: "Camiseta", Quantity: 2, Price: decimal.RequireFromString("5000")},
			{Title: "Gorra", Quantity: 1, Price: decimal.RequireFromString("10000")},
		},
		SubtotalPrice: decimal.RequireFromString("20000"),
		TotalPrice:    decimal.RequireFromString("20000"),
	}
}

func newService(t *testing.T, f *mockFetcher, u *mockUploader) (*Service, *mockRenderer) {
	t.Helper()
	r := &mockRenderer{dir: t.TempDir()}
	var uploader Uploader
	if u != nil {
		uploader = u
	}
	svc := NewService(f, r, uploader)
	svc.now = func() time.Time { return time.Unix(1709650800, 0) }
	return svc, r
}

// --- Tests ---

func TestGenerate_HappyPathLocalOnly(t *testing.T) {
	fetcher := &mockFetcher{order: newTestOrder()}
	svc, r := newService(t, fetcher, &mockUploader{configured: true})

	res := svc.Generate(context.Background(), "1001", Options{SaveLocal: true})

	require.True(t, res.Success)
	assert.Equal(t, "1001", fetcher.lastID)
	assert.Equal(t, "#1001", res.OrderNumber)
	assert.Equal(t, "Factura_#1001_1709650800", r.lastBase)
	assert.Equal(t, filepath.Join(r.dir, "Factura_#1001_1709650800.pdf"), res.LocalFilePath)
	assert.Nil(t, res.Cloud)
	assert.FileExists(t, res.LocalFilePath)
}

func TestGenerate_FilenamePattern(t *testing.T) {
	svc, r := newService(t, &mockFetcher{order: newTestOrder()}, nil)
	svc.now = time.Now

	res := svc.Generate(context.Background(), "1001", Options{SaveLocal: true})
	require.True(t, res.Success)
	assert.Regexp(t, regexp.MustCompile(`^Factura_#1001_\d+$`), r.lastBase)
}

func TestGenerate_FetchFailureRendersNothing(t *testing.T) {
	fetchErr := &shopify.RequestError{Status: 404}
	svc, r := newService(t, &mockFetcher{err: fetchErr}, nil)

	res := svc.Generate(context.Background(), "999", Options{SaveLocal: true})

	require.False(t, res.Success)
	assert.Equal(t, KindUpstream, res.ErrorKind)
	assert.Contains(t, res.Error, "404")
	assert.Zero(t, r.rendered)
	assert.Empty(t, res.LocalFilePath)
}

func TestGenerate_RenderFailure(t *testing.T) {
	fetcher := &mockFetcher{order: newTestOrder()}
	r := &mockRenderer{err: &invoice.RenderError{Reason: "order has no line items"}}
	svc := NewService(fetcher, r, nil)

	res := svc.Generate(context.Background(), "1001", Options{SaveLocal: true})

	require.False(t, res.Success)
	assert.Equal(t, KindRender, res.ErrorKind)
	assert.Contains(t, res.Error, "line items")
}

func TestGenerate_UploadAttachesCloudInfo(t *testing.T) {
	uploader := &mockUploader{
		configured: true,
		result:     &invoice.UploadResult{DocumentID: "doc-1", WebURL: "w", DownloadURL: "d"},
	}
	svc, _ := newService(t, &mockFetcher{order: newTestOrder()}, uploader)

	res := svc.Generate(context.Background(), "1001", Options{SaveLocal: true, UploadToCloud: true})

	require.True(t, res.Success)
	require.NotNil(t, res.Cloud)
	assert.Equal(t, "doc-1", res.Cloud.DocumentID)
	assert.Equal(t, 1, uploader.uploads)
	assert.FileExists(t, res.LocalFilePath)
}

func TestGenerate_UploadThenDropLocal(t *testing.T) {
	uploader := &mockUploader{
		configured: true,
		result:     &invoice.UploadResult{DocumentID: "doc-1"},
	}
	svc, r := newService(t, &mockFetcher{order: newTestOrder()}, uploader)

	res := svc.Generate(context.Background(), "1001", Options{SaveLocal: false, UploadToCloud: true})

	require.True(t, res.Success)
	assert.Empty(t, res.LocalFilePath)
	entries, err := os.ReadDir(r.dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "local document should have been removed")
}

func TestGenerate_SkipsUploadWhenUnconfigured(t *testing.T) {
	uploader := &mockUploader{configured: false}
	svc, _ := newService(t, &mockFetcher{order: newTestOrder()}, uploader)

	// SaveLocal=false must not drop the file when the upload never happened.
	res := svc.Generate(context.Background(), "1001", Options{SaveLocal: false, UploadToCloud: true})

	require.True(t, res.Success)
	assert.Zero(t, uploader.uploads)
	assert.Nil(t, res.Cloud)
	assert.NotEmpty(t, res.LocalFilePath)
	assert.FileExists(t, res.LocalFilePath)
}

func TestGenerate_NilUploader(t *testing.T) {
	svc, _ := newService(t, &mockFetcher{order: newTestOrder()}, nil)

	res := svc.Generate(context.Background(), "1001", Options{SaveLocal: true, UploadToCloud: true})
	require.True(t, res.Success)
	assert.Nil(t, res.Cloud)
}

func TestGenerate_AuthFailureKind(t *testing.T) {
	uploader := &mockUploader{configured: true, err: &graph.AuthError{Status: 401}}
	svc, _ := newService(t, &mockFetcher{order: newTestOrder()}, uploader)

	res := svc.Generate(context.Background(), "1001", Options{SaveLocal: true, UploadToCloud: true})

	require.False(t, res.Success)
	assert.Equal(t, KindAuth, res.ErrorKind)
}

func TestGenerate_UploadFailureKind(t *testing.T) {
	uploader := &mockUploader{configured: true, err: &graph.UploadError{Status: 507}}
	svc, _ := newService(t, &mockFetcher{order: newTestOrder()}, uploader)

	res := svc.Generate(context.Background(), "1001", Options{SaveLocal: true, UploadToCloud: true})

	require.False(t, res.Success)
	assert.Equal(t, KindUpload, res.ErrorKind)
	assert.Contains(t, res.Error, "507")
}

func TestGenerate_UnclassifiedErrorIsInternal(t *testing.T) {
	svc, _ := newService(t, &mockFetcher{err: fmt.Errorf("boom")}, nil)

	res := svc.Generate(context.Background(), "1001", Options{SaveLocal: true})
	require.False(t, res.Success)
	assert.Equal(t, KindInternal, res.ErrorKind)
}
