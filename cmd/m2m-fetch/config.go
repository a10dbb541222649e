package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/m2m-fetch/internal/m2m"
	"github.com/pdiddy/m2m-fetch/internal/secrets"
	"github.com/pdiddy/m2m-fetch/pkg/types"
)

// envKeyReplacer maps config keys such as download.output_dir to
// M2M_FETCH_DOWNLOAD_OUTPUT_DIR.
var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// bindFlags binds viper keys to cmd's flags. Commands sharing a flag name
// bind at run time so the running command's flag wins.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

func addQueryFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("product", "", "download option product name to select (default \""+types.DefaultProductName+"\")")
	f.String("tier", "", "collection tier suffix display ids must end with (default "+types.DefaultDisplayIDSuffix+")")
	f.String("grid-policy", "", "when a path/row resolves to several points: first, reject, or centroid (default first)")
	f.Int("page-size", 0, "scenes per search page (default 100)")
}

var queryFlagKeys = map[string]string{
	"query.product_name":      "product",
	"query.display_id_suffix": "tier",
	"query.grid_policy":       "grid-policy",
	"query.page_size":         "page-size",
}

func addDownloadFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("output-dir", "downloads", "directory downloaded archives are written to")
	f.Int("concurrency", 0, "downloads in flight at once (default 4)")
	f.String("extension", "", "archive file extension, or auto to use the server's filename (default tar)")
	f.String("report", "", "write a YAML download report to this file")
}

var downloadFlagKeys = map[string]string{
	"download.output_dir":  "output-dir",
	"download.concurrency": "concurrency",
	"download.extension":   "extension",
}

func httpConfig(prefix string) types.HTTPConfig {
	return types.HTTPConfig{
		Timeout:    viper.GetDuration(prefix + ".timeout"),
		UserAgent:  viper.GetString(prefix + ".user_agent"),
		MaxRetries: viper.GetInt(prefix + ".max_retries"),
	}
}

// pipelineConfig assembles stage configuration from flags, environment,
// and the config file. Unset fields take their defaults in each stage.
func pipelineConfig() (types.PipelineConfig, error) {
	cfg := types.PipelineConfig{
		Session: types.SessionConfig{
			HTTPConfig:        httpConfig("session"),
			BaseURL:           viper.GetString("session.base_url"),
			RequestsPerSecond: viper.GetFloat64("session.requests_per_second"),
		},
		Query: types.QueryConfig{
			ProductName:      viper.GetString("query.product_name"),
			DisplayIDSuffix:  viper.GetString("query.display_id_suffix"),
			PageSize:         viper.GetInt("query.page_size"),
			OptionsBatchSize: viper.GetInt("query.options_batch_size"),
			GridPolicy:       types.GridPolicy(viper.GetString("query.grid_policy")),
			LabelPrefix:      viper.GetString("query.label_prefix"),
		},
		Download: types.DownloadConfig{
			HTTPConfig:  httpConfig("download"),
			OutputDir:   viper.GetString("download.output_dir"),
			Concurrency: viper.GetInt("download.concurrency"),
			Extension:   viper.GetString("download.extension"),
		},
	}

	switch cfg.Query.GridPolicy {
	case "", types.GridFirst, types.GridReject, types.GridCentroid:
	default:
		return cfg, fmt.Errorf("grid policy %q: must be first, reject, or centroid", cfg.Query.GridPolicy)
	}
	return cfg, nil
}

// credentials returns the M2M account from .secrets/, overridden by
// M2M_FETCH_USERNAME / M2M_FETCH_PASSWORD or the config file.
func credentials() (types.Credentials, error) {
	creds := secrets.Credentials(loadedSecrets, viper.GetString("username"), viper.GetString("password"))
	if creds.Empty() {
		return creds, fmt.Errorf("no M2M credentials: create %s/%s and %s/%s, or set M2M_FETCH_USERNAME and M2M_FETCH_PASSWORD",
			viper.GetString("secrets_dir"), secrets.UsernameKey, viper.GetString("secrets_dir"), secrets.PasswordKey)
	}
	return creds, nil
}

// withSession runs fn inside an authenticated session that is always
// logged out afterwards.
func withSession(cmd *cobra.Command, cfg types.PipelineConfig, fn func(*m2m.Session) error) error {
	creds, err := credentials()
	if err != nil {
		return err
	}
	client := m2m.NewClient(cfg.Session)
	return m2m.WithSession(cmd.Context(), client, creds, fn)
}
