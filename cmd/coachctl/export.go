package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riftcoach/stats-api/internal/storage"
)

var (
	exportOut   string
	exportLimit int
)

// exportCmd writes the composition training CSV from the archive. One row
// per complete 5v5 match: both drafts plus the blue-side outcome label.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export composition training data from the archive as CSV",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "composition_training.csv", "output CSV path")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 50000, "maximum number of matches to export")
}

func runExport(cmd *cobra.Command, args []string) error {
	chURL := os.Getenv("CLICKHOUSE_URL")
	if chURL == "" {
		return fmt.Errorf("CLICKHOUSE_URL environment variable is required")
	}

	opts, err := clickhouse.ParseDSN(chURL)
	if err != nil {
		return fmt.Errorf("parsing clickhouse url: %w", err)
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return fmt.Errorf("connecting to clickhouse: %w", err)
	}
	defer conn.Close()

	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	archive := storage.NewArchive(conn, logger.Sugar())

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	rows, err := archive.TrainingRows(ctx, exportLimit)
	if err != nil {
		return fmt.Errorf("exporting training rows: %w", err)
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "No complete 5v5 matches in the archive yet.")
		return nil
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("creating %s: %w", exportOut, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"match_id"}
	for i := 1; i <= 5; i++ {
		header = append(header, fmt.Sprintf("blue_%d", i))
	}
	for i := 1; i <= 5; i++ {
		header = append(header, fmt.Sprintf("red_%d", i))
	}
	header = append(header, "blue_win")
	if err := w.Write(header); err != nil {
		return err
	}

	for _, tr := range rows {
		record := append([]string{tr.MatchID}, tr.BlueChampions...)
		record = append(record, tr.RedChampions...)
		record = append(record, strconv.FormatBool(tr.BlueWin))
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", exportOut, err)
	}

	fmt.Fprintf(os.Stdout, "Wrote %d matches to %s\n", len(rows), exportOut)
	return nil
}
