package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/siteclone/internal/config"
	"github.com/nao1215/siteclone/internal/database"
	"github.com/nao1215/siteclone/internal/report"
)

// defaultHistoryLimit is the number of rows shown without --limit.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [domain]",
		Short: "Show recorded clones",
		Long: `History lists the clones recorded in the history database, newest first.

Examples:
  # Last 20 clones of any site
  siteclone history

  # All clones of one domain as JSON
  siteclone history --limit 0 --json example.com

  # One clone by ID
  siteclone history --id 3f1c2a9e-...

  # Domains that have been cloned
  siteclone history --domains`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of clones to show (0 shows all)")
	cmd.Flags().String("id", "", "Show the clone with this ID")
	cmd.Flags().Bool("domains", false, "List cloned domains instead of clones")
	cmd.Flags().BoolP("json", "j", false, "Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown (mutually exclusive with --json)")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the clone history database")

	return cmd
}

// historyOptions holds the parsed flags of the history command.
type historyOptions struct {
	dbDir    string
	domain   string
	id       string
	limit    int
	domains  bool
	json     bool
	markdown bool
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	opts := historyOptions{}
	if len(args) == 1 {
		opts.domain = targetDomainOrHost(args[0])
	}

	var err error
	f := cmd.Flags()
	if opts.limit, err = f.GetInt("limit"); err != nil {
		return err
	}
	if opts.id, err = f.GetString("id"); err != nil {
		return err
	}
	if opts.domains, err = f.GetBool("domains"); err != nil {
		return err
	}
	if opts.json, err = f.GetBool("json"); err != nil {
		return err
	}
	if opts.markdown, err = f.GetBool("markdown"); err != nil {
		return err
	}
	if opts.dbDir, err = f.GetString("db-dir"); err != nil {
		return err
	}
	if opts.json && opts.markdown {
		return config.ErrConflictingReportFormats
	}
	return runHistory(cmd, opts)
}

func runHistory(cmd *cobra.Command, opts historyOptions) error {
	out := cmd.OutOrStdout()
	writer := newHistoryWriter(opts, out)

	if _, err := os.Stat(filepath.Join(opts.dbDir, database.FileName)); errors.Is(err, fs.ErrNotExist) {
		if opts.id != "" {
			return fmt.Errorf("%w: %s", database.ErrCloneNotFound, opts.id)
		}
		if opts.domains {
			return writeDomains(out, nil, opts.json)
		}
		_, err := writer.WriteHistory(nil)
		return err
	}

	db, err := database.Open(opts.dbDir, database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	switch {
	case opts.id != "":
		record, err := db.GetClone(ctx, opts.id)
		if err != nil {
			return fmt.Errorf("%w: %s", err, opts.id)
		}
		_, err = writer.WriteHistory([]database.CloneRecord{*record})
		return err
	case opts.domains:
		domains, err := db.ListDomains(ctx)
		if err != nil {
			return err
		}
		return writeDomains(out, domains, opts.json)
	default:
		records, err := db.ListClones(ctx, opts.domain, opts.limit)
		if err != nil {
			return err
		}
		_, err = writer.WriteHistory(records)
		return err
	}
}

func newHistoryWriter(opts historyOptions, out io.Writer) report.Writer {
	switch {
	case opts.json:
		return report.NewJSONWriter(out, report.WithPrettyPrint())
	case opts.markdown:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out)
	}
}

// writeDomains prints one domain per line, or a JSON array.
func writeDomains(out io.Writer, domains []string, asJSON bool) error {
	if asJSON {
		if domains == nil {
			domains = []string{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(domains)
	}
	if len(domains) == 0 {
		_, err := fmt.Fprintln(out, "No clones recorded.")
		return err
	}
	for _, d := range domains {
		if _, err := fmt.Fprintln(out, d); err != nil {
			return err
		}
	}
	return nil
}

// targetDomainOrHost accepts either a bare domain or a URL.
func targetDomainOrHost(arg string) string {
	if d := targetDomain(arg); d != "" {
		return d
	}
	return targetDomain("http://" + arg)
}
