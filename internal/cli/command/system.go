// Package command provides CLI command definitions for revgate-cli.
package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/revgate-io/revgate/internal/cli/connection"
	"github.com/revgate-io/revgate/internal/cli/output"
)

// StatsCommand returns the stats command.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show revocation statistics",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force-refresh",
				Usage: "Rebuild the report instead of serving a cached one",
			},
		},
		Action: statsShow,
	}
}

// HealthCommand returns the health command.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check server health",
		Action: healthCheck,
	}
}

func statsShow(c *cli.Context) error {
	client := NewClient(c)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	path := "/admin/v1/stats"
	if c.Bool("force-refresh") {
		path += "?force_refresh=true"
	}

	resp, err := client.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var report struct {
		GeneratedAt int64 `json:"generated_at"`
		FromCache   bool  `json:"from_cache"`
		Counts      struct {
			TotalRevocations int64 `json:"total_revocations"`
			LocalEntries     int   `json:"local_entries"`
			PendingCleanup   int   `json:"pending_cleanup"`
			EstimatedBytes   int64 `json:"estimated_bytes"`
		} `json:"counts"`
		Performance struct {
			HitRate           float64 `json:"hit_rate"`
			AvgCheckLatencyMs float64 `json:"avg_check_latency_ms"`
		} `json:"performance"`
		Health struct {
			SharedTierReachable bool    `json:"shared_tier_reachable"`
			SharedErrorRate     float64 `json:"shared_error_rate"`
			Degraded            bool    `json:"degraded"`
		} `json:"health"`
	}
	if err := connection.ParseResponse(resp, &report); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	switch output.Format(flags.Output) {
	case output.FormatJSON, output.FormatYAML:
		formatter := output.NewFormatter(output.Format(flags.Output))
		return formatter.Format(os.Stdout, report)
	default:
		table := &output.Table{Headers: []string{"METRIC", "VALUE"}}
		table.AddRow("Total Revocations", fmt.Sprintf("%d", report.Counts.TotalRevocations))
		table.AddRow("Local Entries", fmt.Sprintf("%d", report.Counts.LocalEntries))
		table.AddRow("Pending Cleanup", fmt.Sprintf("%d", report.Counts.PendingCleanup))
		table.AddRow("Estimated Bytes", fmt.Sprintf("%d", report.Counts.EstimatedBytes))
		table.AddRow("Hit Rate", fmt.Sprintf("%.2f%%", report.Performance.HitRate*100))
		table.AddRow("Avg Check Latency", fmt.Sprintf("%.3f ms", report.Performance.AvgCheckLatencyMs))
		table.AddRow("Shared Tier Reachable", fmt.Sprintf("%t", report.Health.SharedTierReachable))
		table.AddRow("Shared Error Rate", fmt.Sprintf("%.2f%%", report.Health.SharedErrorRate*100))
		if err := table.Render(os.Stdout); err != nil {
			return err
		}
		if report.FromCache {
			fmt.Printf("\n(cached report, generated %s)\n",
				time.UnixMilli(report.GeneratedAt).Format(time.RFC3339))
		}
		return nil
	}
}

func healthCheck(c *cli.Context) error {
	client := NewClient(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := client.Get(ctx, "/health")
	if err != nil {
		PrintError("Health check failed: %v", err)
		return fmt.Errorf("server unreachable")
	}

	var result struct {
		Status     string `json:"status"`
		Version    string `json:"version"`
		SharedTier string `json:"shared_tier"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	switch output.Format(flags.Output) {
	case output.FormatJSON, output.FormatYAML:
		formatter := output.NewFormatter(output.Format(flags.Output))
		return formatter.Format(os.Stdout, result)
	default:
		PrintSuccess("Server is %s (version %s, shared tier %s)",
			result.Status, result.Version, result.SharedTier)
		return nil
	}
}
