package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (FACTURA_ prefix), flags, or YAML config files.
type Config struct {
	Addr      string `default:"0.0.0.0:8080" usage:"Webhook server listen address"`
	OutputDir string `default:"." usage:"Directory for rendered invoice PDFs" flag:"output-dir"`

	Shopify   ShopifyConfig
	Graph     GraphConfig
	Company   CompanyConfig
	Currency  CurrencyConfig
	Delivery  DeliveryConfig
	RateLimit RateLimitConfig
	Graceful  GracefulConfig
}

// ShopifyConfig identifies the store on the admin REST API.
type ShopifyConfig struct {
	Domain      string        `usage:"Shop domain, e.g. cshop.co (FACTURA_SHOPIFY_DOMAIN)"`
	AccessToken string        `usage:"Admin API access token" flag:"shopify-token"`
	APIVersion  string        `default:"2023-10" usage:"Admin API version" flag:"shopify-api-version"`
	Timeout     time.Duration `default:"30s" usage:"Order fetch request timeout"`
}

// GraphConfig holds the Microsoft Graph app registration for OneDrive
// uploads. Uploads are skipped when any field is empty.
type GraphConfig struct {
	ClientID     string        `usage:"Graph app client id" flag:"graph-client-id"`
	ClientSecret string        `usage:"Graph app client secret" flag:"graph-client-secret"`
	TenantID     string        `usage:"Azure AD tenant id" flag:"graph-tenant-id"`
	Timeout      time.Duration `default:"60s" usage:"Upload request timeout"`
}

// CompanyConfig is the merchant profile printed on every invoice.
type CompanyConfig struct {
	Name    string `default:"Tu Empresa" usage:"Company display name"`
	Address string `default:"Dirección de tu empresa" usage:"Company address line"`
	Phone   string `default:"Teléfono" usage:"Company phone"`
	Email   string `default:"email@empresa.com" usage:"Company email"`
	TaxID   string `default:"NIT/RUT" usage:"Company tax identifier" flag:"company-tax-id"`
}

// CurrencyConfig controls amount formatting on the invoice.
type CurrencyConfig struct {
	Symbol         string `default:"$" usage:"Currency symbol prefix"`
	GroupSeparator string `default:"," usage:"Thousands separator; empty falls back to plain two-decimal form" flag:"currency-group-separator"`
	Suffix         string `default:" COP" usage:"Currency suffix"`
	Decimals       int32  `default:"0" usage:"Fraction digits"`
}

// DeliveryConfig controls what happens to rendered documents.
type DeliveryConfig struct {
	SaveLocal     bool `default:"true" usage:"Keep the rendered PDF on disk" flag:"save-local"`
	UploadToCloud bool `default:"false" usage:"Upload the rendered PDF to OneDrive" flag:"upload-to-cloud"`
}

// RateLimitConfig controls the per-client webhook rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"60" usage:"Max requests per window"`
	Window time.Duration `default:"1m" usage:"Rate limit window duration"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s" usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, flags, YAML
// config files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "FACTURA",
		Args:      args,
		Files:     []string{"config.yaml", "/etc/factura/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.Shopify.Domain == "" {
		return nil, errors.New("shop domain is required: set FACTURA_SHOPIFY_DOMAIN")
	}
	if cfg.Shopify.AccessToken == "" {
		return nil, errors.New("shopify access token is required: set FACTURA_SHOPIFY_ACCESS_TOKEN")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) to the FACTURA_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
