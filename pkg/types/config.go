package types

import "time"

// DefaultBaseURL is the stable M2M JSON API root. Endpoint names are
// appended directly, so it keeps its trailing slash.
const DefaultBaseURL = "https://m2m.cr.usgs.gov/api/api/json/stable/"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with every request
	// (e.g. "m2m-fetch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries bounds retries of transient network failures and HTTP 429
	// responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// SessionConfig holds settings for the catalog session.
type SessionConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the API root every endpoint name is appended to.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// RequestsPerSecond throttles catalog calls on the client side.
	// Zero disables throttling.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// GridPolicy decides what grid resolution does when the service returns
// more than one coordinate for a grid reference.
type GridPolicy string

const (
	// GridFirst takes the first coordinate returned.
	GridFirst GridPolicy = "first"
	// GridReject fails the query when the reference is ambiguous.
	GridReject GridPolicy = "reject"
	// GridCentroid averages all returned coordinates.
	GridCentroid GridPolicy = "centroid"
)

// QueryConfig holds settings for catalog resolution.
type QueryConfig struct {
	// ProductName is the exact download option product name to select
	// (default "Landsat Collection 2 Level-1 Product Bundle").
	ProductName string `json:"product_name" yaml:"product_name"`

	// DisplayIDSuffix is the collection tier suffix a display id must end
	// with (default "T1").
	DisplayIDSuffix string `json:"display_id_suffix" yaml:"display_id_suffix"`

	// PageSize is the scene-search maxResults per page (default 100).
	PageSize int `json:"page_size" yaml:"page_size"`

	// OptionsBatchSize caps the entity ids sent per download-options call
	// (default 500).
	OptionsBatchSize int `json:"options_batch_size" yaml:"options_batch_size"`

	// GridPolicy selects the multi-coordinate behavior (default "first").
	GridPolicy GridPolicy `json:"grid_policy" yaml:"grid_policy"`

	// LabelPrefix prefixes the label attached to download requests.
	LabelPrefix string `json:"label_prefix" yaml:"label_prefix"`
}

// DownloadConfig holds settings for the download stage.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline"`

	// OutputDir is the directory downloaded archives are written to.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Concurrency is the number of downloads in flight at once (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// Extension is the file extension without the dot (default "tar").
	// "auto" derives it from the response Content-Disposition filename.
	Extension string `json:"extension" yaml:"extension"`
}

// Defaults used when a config field is left at its zero value.
const (
	DefaultTimeout          = 60 * time.Second
	DefaultUserAgent        = "m2m-fetch/0.1"
	DefaultMaxRetries       = 3
	DefaultProductName      = "Landsat Collection 2 Level-1 Product Bundle"
	DefaultDisplayIDSuffix  = "T1"
	DefaultPageSize         = 100
	DefaultOptionsBatchSize = 500
	DefaultConcurrency      = 4
	DefaultExtension        = "tar"
	DefaultLabelPrefix      = "m2m-fetch"
)

// WithDefaults returns a copy of c with zero fields replaced by defaults.
func (c HTTPConfig) WithDefaults() HTTPConfig {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	return c
}

// WithDefaults returns a copy of c with zero fields replaced by defaults.
func (c SessionConfig) WithDefaults() SessionConfig {
	c.HTTPConfig = c.HTTPConfig.WithDefaults()
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	return c
}

// WithDefaults returns a copy of c with zero fields replaced by defaults.
func (c QueryConfig) WithDefaults() QueryConfig {
	if c.ProductName == "" {
		c.ProductName = DefaultProductName
	}
	if c.DisplayIDSuffix == "" {
		c.DisplayIDSuffix = DefaultDisplayIDSuffix
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.OptionsBatchSize <= 0 {
		c.OptionsBatchSize = DefaultOptionsBatchSize
	}
	if c.GridPolicy == "" {
		c.GridPolicy = GridFirst
	}
	if c.LabelPrefix == "" {
		c.LabelPrefix = DefaultLabelPrefix
	}
	return c
}

// WithDefaults returns a copy of c with zero fields replaced by defaults.
func (c DownloadConfig) WithDefaults() DownloadConfig {
	c.HTTPConfig = c.HTTPConfig.WithDefaults()
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.Extension == "" {
		c.Extension = DefaultExtension
	}
	return c
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Session  SessionConfig  `json:"session" yaml:"session"`
	Query    QueryConfig    `json:"query" yaml:"query"`
	Download DownloadConfig `json:"download" yaml:"download"`
}
