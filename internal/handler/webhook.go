// Package handler exposes the order-creation webhook endpoint.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/Porky3112/shopify-webhook/internal/generator"
)

// maxBodySize caps the webhook payload; full Shopify order notifications
// stay well under this.
const maxBodySize = 1 << 20

// Generator runs the invoice pipeline for one order id.
type Generator interface {
	Generate(ctx context.Context, orderID string, opts generator.Options) *generator.Result
}

// Webhook handles POST /webhook order-creation notifications. Each delivery
// is processed synchronously: the response reports the final outcome.
type Webhook struct {
	generator Generator
	opts      generator.Options
}

// NewWebhook creates the webhook handler. opts applies to every delivery.
func NewWebhook(g Generator, opts generator.Options) *Webhook {
	return &Webhook{generator: g, opts: opts}
}

func (h *Webhook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read body: " + err.Error()})
		return
	}

	orderID, err := extractOrderID(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	lg := zctx.From(r.Context())
	lg.Info("Order webhook received", zap.String("order_id", orderID))

	res := h.generator.Generate(r.Context(), orderID, h.opts)
	if !res.Success {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": res.Error})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "Factura generada",
		"path":   res.LocalFilePath,
	})
}

// extractOrderID pulls the top-level "id" field from an arbitrary webhook
// payload. Shopify sends it as a JSON number; string ids are accepted too.
func extractOrderID(body []byte) (string, error) {
	var orderID string

	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "id" || orderID != "" {
			return d.Skip()
		}
		switch d.Next() {
		case jx.Number:
			n, err := d.Num()
			if err != nil {
				return err
			}
			orderID = n.String()
		case jx.String:
			s, err := d.Str()
			if err != nil {
				return err
			}
			orderID = s
		default:
			return d.Skip()
		}
		return nil
	}); err != nil {
		return "", errors.Wrap(err, "parse webhook body")
	}

	if orderID == "" {
		return "", errors.New("webhook body has no order id")
	}
	return orderID, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
