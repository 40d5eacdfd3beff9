package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/ward-rota/internal/config"
	"github.com/jakechorley/ward-rota/pkg/clients/sheetsclient"
	"github.com/jakechorley/ward-rota/pkg/core/services"
	"github.com/jakechorley/ward-rota/pkg/db"
	"github.com/jakechorley/ward-rota/pkg/ingest"
	"github.com/jakechorley/ward-rota/pkg/utils"
)

// ImportCmd creates the import command
func ImportCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import skill records from a CSV/XLSX file or a Google Sheet",
		Long: `Import (nurse, ward) skill records. Each row's name cell is matched against
the roster; the first rostered name contained in the cell wins. Unmatched rows
are reported and skipped.

Columns are inferred from the header unless --name-col/--ward-col are given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheetID, _ := cmd.Flags().GetString("sheet-id")
			tab, _ := cmd.Flags().GetString("tab")
			nameCol, _ := cmd.Flags().GetString("name-col")
			wardCol, _ := cmd.Flags().GetString("ward-col")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			if (len(args) == 0) == (sheetID == "") {
				return fmt.Errorf("give either a file or --sheet-id")
			}

			cols := ingest.Columns{Name: nameCol, Ward: wardCol}

			var (
				rows   []ingest.Row
				source string
				err    error
			)
			if sheetID != "" {
				rows, err = readSheetRows(app.Ctx, app, sheetID, tab, cols)
				source = db.SourceSheets
			} else {
				rows, source, err = readFileRows(args[0], tab, cols)
			}
			if err != nil {
				return err
			}

			result, err := services.ImportSkills(app.Ctx, app.Database, app.Cfg, app.Logger, rows, source, dryRun)
			if err != nil {
				return err
			}
			if result.Persisted {
				app.resetSimulation()
			}

			out := cmd.OutOrStdout()
			switch {
			case result.Resolved.Matched == 0:
				fmt.Fprintf(out, "\nNo rows matched a rostered nurse.\n")
			case result.Persisted:
				fmt.Fprintf(out, "\n✓ Imported %d skill records (batch %s)\n", result.Resolved.Matched, result.BatchID)
			default:
				fmt.Fprintf(out, "\n✓ %d rows matched (dry run, not saved)\n", result.Resolved.Matched)
			}

			if len(result.Resolved.Unmatched) > 0 {
				fmt.Fprintf(out, "\n⚠️  %d rows skipped:\n", len(result.Resolved.Unmatched))
				for _, u := range result.Resolved.Unmatched {
					fmt.Fprintf(out, "  ✗ line %d: %q (%s)\n", u.Row.Line, u.Row.Name, u.Reason)
				}
			}
			fmt.Fprintln(out)

			return nil
		},
	}

	cmd.Flags().String("sheet-id", "", "Google Sheets spreadsheet ID to import from")
	cmd.Flags().String("tab", "", "Sheet tab (or XLSX sheet) to read; defaults to the first")
	cmd.Flags().String("name-col", "", "Header of the nurse name column")
	cmd.Flags().String("ward-col", "", "Header of the ward column")
	cmd.Flags().Bool("dry-run", false, "Match rows without saving them")

	return cmd
}

func readFileRows(path, sheet string, cols ingest.Columns) ([]ingest.Row, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, err := ingest.ReadCSV(f, cols)
		return rows, db.SourceCSV, err
	case ".xlsx":
		rows, err := ingest.ReadXLSX(f, sheet, cols)
		return rows, db.SourceXLSX, err
	default:
		return nil, "", fmt.Errorf("unsupported file type %q (want .csv or .xlsx)", ext)
	}
}

// readSheetRows authenticates lazily so commands that never touch Sheets
// don't need OAuth credentials
func readSheetRows(ctx context.Context, app *AppContext, sheetID, tab string, cols ingest.Columns) ([]ingest.Row, error) {
	oauthCfg, err := config.LoadOAuthClient(app.Cfg, app.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	tokens, err := utils.NewTokenStore(app.Env, app.Logger)
	if err != nil {
		return nil, err
	}

	app.Logger.Info("Initializing sheets client")
	client, err := sheetsclient.NewClient(ctx, oauthCfg, tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	header, records, err := client.ReadTable(ctx, sheetID, tab)
	if err != nil {
		return nil, err
	}
	app.Logger.Debug("Read sheet", zap.String("spreadsheet_id", sheetID), zap.Int("rows", len(records)))

	return ingest.FromTable(header, records, cols)
}
