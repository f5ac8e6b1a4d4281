package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/riftcoach/stats-api/internal/models"
)

// reportCmd is the cobra command for rendering a summoner report.
var reportCmd = &cobra.Command{
	Use:   "report <gameName#tagLine>",
	Short: "Fetch and render the analysis report for a summoner",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	report, err := fetchReport(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\n=== %s ===\n\n", report.SummonerName)
	if report.SoloRank.Tier != "" {
		fmt.Fprintf(os.Stdout, "  Solo/Duo : %s %s, %d LP (%dW / %dL)\n",
			report.SoloRank.Tier, report.SoloRank.Rank, report.SoloRank.LP,
			report.SoloRank.Wins, report.SoloRank.Losses)
	} else {
		fmt.Fprintln(os.Stdout, "  Solo/Duo : UNRANKED")
	}
	if report.SummonerLevel > 0 {
		fmt.Fprintf(os.Stdout, "  Level    : %d\n", report.SummonerLevel)
	}
	if report.APIWarning != "" {
		fmt.Fprintf(os.Stdout, "  Warning  : %s\n", report.APIWarning)
	}

	if len(report.Matches) > 0 {
		fmt.Fprintf(os.Stdout, "\n--- Recent matches ---\n\n")
		mt := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
			Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
			Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
		}))
		mt.Header("CHAMPION", "ROLE", "RESULT", "K/D/A", "KDA", "CS/M", "GOLD/M", "DMG/M", "VS/M", "KP%", "MIN", "MODE")
		for _, m := range report.Matches {
			result := "Loss"
			if m.Win {
				result = "Win"
			}
			mt.Append(
				m.Champion,
				m.Role,
				result,
				fmt.Sprintf("%d/%d/%d", m.Kills, m.Deaths, m.Assists),
				fmt.Sprintf("%.2f", m.KDARatio),
				fmt.Sprintf("%.1f", m.CSPerMin),
				fmt.Sprintf("%.0f", m.GoldPerMin),
				fmt.Sprintf("%.0f", m.DamagePerMin),
				fmt.Sprintf("%.2f", m.VisionScorePerMin),
				fmt.Sprintf("%.1f", m.KPPercentage),
				fmt.Sprintf("%d", m.Duration),
				m.GameModeName,
			)
		}
		mt.Render()
	}

	printInsightList("Recommendations", report.Recommendations)
	printInsightList("Champion insights", report.MLInsights)
	printInsightList("Play styles", report.PlaystyleInsights)

	return nil
}

func fetchReport(riotID string) (*models.SummonerReport, error) {
	endpoint := fmt.Sprintf("%s/api/v1/summoners/%s/report", serverURL, url.PathEscape(riotID))

	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("requesting report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("player %q not found", riotID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var report models.SummonerReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return &report, nil
}

func printInsightList(title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(os.Stdout, "\n--- %s ---\n\n", title)
	for _, line := range lines {
		fmt.Fprintf(os.Stdout, "  • %s\n", line)
	}
}
