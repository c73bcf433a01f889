package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nao1215/siteclone/internal/config"
)

// addCrawlFlags registers the flags shared by clone and serve.
func addCrawlFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.DurationP("timeout", "t", config.DefaultTimeout, "Timeout for each HTTP request")
	f.Duration("archive-timeout", config.DefaultArchiveTimeout, "Timeout for building one archive")
	f.String("max-size", humanize.IBytes(uint64(config.DefaultMaxTotalSize)),
		"Byte budget of one clone, e.g. 50MB or 1GiB")
	f.IntP("max-assets", "n", config.DefaultMaxAssets, "Maximum number of assets besides the page itself")
	f.IntP("batch", "b", config.DefaultBatchSize, "Number of assets downloaded concurrently")
	f.StringP("user-agent", "A", config.DefaultUserAgent, "User-Agent header")
	f.StringArrayP("header", "H", nil, `Extra request header "Name: value" (repeatable)`)
	f.String("cookie", "", `Cookie header, e.g. "session=abc"`)
	f.StringP("proxy", "x", "", "SOCKS5 proxy address (host:port)")
	f.Bool("no-inspect", false, "Skip the image metadata audit")
	f.StringP("config", "c", "", "Configuration file path (default: .siteclone in current or home directory)")
	f.String("db-dir", config.XDGDataDir(), "Directory of the clone history database")
	f.Bool("no-history", false, "Do not record clones in the history database")
}

// readCrawlFlags copies the shared flags into cfg and loads the site file.
func readCrawlFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	var err error

	if cfg.Timeout, err = f.GetDuration("timeout"); err != nil {
		return err
	}
	if cfg.ArchiveTimeout, err = f.GetDuration("archive-timeout"); err != nil {
		return err
	}

	maxSize, err := f.GetString("max-size")
	if err != nil {
		return err
	}
	size, err := humanize.ParseBytes(maxSize)
	if err != nil {
		return fmt.Errorf("invalid --max-size %q: %w", maxSize, err)
	}
	cfg.MaxTotalSize = int64(size) //nolint:gosec // bounded by user input

	if cfg.MaxAssets, err = f.GetInt("max-assets"); err != nil {
		return err
	}
	if cfg.BatchSize, err = f.GetInt("batch"); err != nil {
		return err
	}
	if cfg.UserAgent, err = f.GetString("user-agent"); err != nil {
		return err
	}

	headers, err := f.GetStringArray("header")
	if err != nil {
		return err
	}
	if cfg.Headers, err = parseHeaders(headers); err != nil {
		return err
	}
	if cfg.Cookie, err = f.GetString("cookie"); err != nil {
		return err
	}
	if cfg.ProxyAddress, err = f.GetString("proxy"); err != nil {
		return err
	}

	noInspect, err := f.GetBool("no-inspect")
	if err != nil {
		return err
	}
	cfg.Inspect = !noInspect

	if cfg.DBDir, err = f.GetString("db-dir"); err != nil {
		return err
	}
	noHistory, err := f.GetBool("no-history")
	if err != nil {
		return err
	}
	cfg.SaveToDB = !noHistory && cfg.DBDir != ""

	if cfg.ConfigFilePath, err = f.GetString("config"); err != nil {
		return err
	}
	return loadSiteConfigs(cfg)
}

// loadSiteConfigs loads the .siteclone file. A missing file is an error
// only when its path was given explicitly.
func loadSiteConfigs(cfg *config.Config) error {
	path := config.FindConfigFile(cfg.ConfigFilePath)
	if path == "" {
		if cfg.ConfigFilePath != "" {
			return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
		}
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
		return nil
	}

	file, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	cfg.SiteConfigs = file
	return nil
}

// parseHeaders turns "Name: value" pairs into a map.
func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" || strings.ContainsAny(name, " \t") {
			return nil, fmt.Errorf("invalid header %q: expected \"Name: value\"", h)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
