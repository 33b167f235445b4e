// Package command provides CLI command definitions for revgate-cli.
package command

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/revgate-io/revgate/internal/cli/connection"
	"github.com/revgate-io/revgate/internal/cli/output"
)

// TokenCommand returns the token subcommand group.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:    "token",
		Aliases: []string{"tok"},
		Usage:   "Issue, revoke and inspect tokens",
		Subcommands: []*cli.Command{
			{
				Name:  "issue",
				Usage: "Issue a new token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "owner-id",
						Aliases:  []string{"u"},
						Usage:    "Owner identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "owner-name",
						Aliases:  []string{"n"},
						Usage:    "Owner display name",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Value:   "access",
						Usage:   "Token type: access or refresh",
					},
					&cli.DurationFlag{
						Name:    "lifetime",
						Aliases: []string{"l"},
						Usage:   "Token lifetime (e.g., 30m, 24h); defaults per type",
					},
					&cli.StringSliceFlag{
						Name:    "role",
						Aliases: []string{"r"},
						Usage:   "Role to embed in the credential (repeatable)",
					},
				},
				Action: tokenIssue,
			},
			{
				Name:      "revoke",
				Usage:     "Revoke the token behind a credential",
				ArgsUsage: "[CREDENTIAL]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "reason",
						Aliases:  []string{"r"},
						Usage:    "Revocation reason (e.g., user_logout)",
						Required: true,
					},
				},
				Action: tokenRevoke,
			},
			{
				Name:      "status",
				Usage:     "Check the revocation status of a token",
				ArgsUsage: "TOKEN_ID",
				UsageText: "revgate-cli token status [--bypass-cache] TOKEN_ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "bypass-cache",
						Usage: "Skip the server's result cache",
					},
				},
				Action: tokenStatus,
			},
		},
	}
}

func tokenIssue(c *cli.Context) error {
	client := NewClient(c)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	body := map[string]any{
		"owner_id":   c.String("owner-id"),
		"owner_name": c.String("owner-name"),
		"type":       c.String("type"),
	}
	if lifetime := c.Duration("lifetime"); lifetime > 0 {
		body["lifetime_seconds"] = int64(lifetime.Seconds())
	}
	if roles := c.StringSlice("role"); len(roles) > 0 {
		body["roles"] = roles
	}

	resp, err := client.Post(ctx, "/tokens/issue", body)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		TokenID    string    `json:"token_id"`
		Credential string    `json:"credential"`
		Type       string    `json:"type"`
		IssuedAt   time.Time `json:"issued_at"`
		ExpiresAt  time.Time `json:"expires_at"`
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
		fmt.Printf("Token ID:   %s\n", result.TokenID)
		fmt.Printf("Type:       %s\n", result.Type)
		fmt.Printf("Expires:    %s\n", result.ExpiresAt.Format(time.RFC3339))
		fmt.Printf("Credential: %s\n", result.Credential)
		return nil
	}
}

func tokenRevoke(c *cli.Context) error {
	flags := ParseGlobalFlags(c)

	credential := c.Args().First()
	if credential == "" {
		credential = flags.Credential
	}
	if credential == "" {
		return fmt.Errorf("credential required (argument or --credential)")
	}

	client := connection.NewHTTPClient(flags.Server, credential)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Post(ctx, "/tokens/revoke", map[string]string{
		"reason": c.String("reason"),
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		TokenID                  string    `json:"token_id"`
		Status                   string    `json:"status"`
		RevokedAt                time.Time `json:"revoked_at"`
		RecommendedClientActions []string  `json:"recommended_client_actions"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	switch output.Format(flags.Output) {
	case output.FormatJSON, output.FormatYAML:
		formatter := output.NewFormatter(output.Format(flags.Output))
		return formatter.Format(os.Stdout, result)
	default:
		PrintSuccess("Token %s revoked at %s", result.TokenID, result.RevokedAt.Format(time.RFC3339))
		for _, action := range result.RecommendedClientActions {
			fmt.Printf("  - %s\n", action)
		}
		return nil
	}
}

func tokenStatus(c *cli.Context) error {
	tokenID := c.Args().First()
	if tokenID == "" {
		return fmt.Errorf("token ID required")
	}

	client := NewClient(c)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	path := "/admin/v1/tokens/status?token_id=" + url.QueryEscape(tokenID)
	if c.Bool("bypass-cache") {
		path += "&bypass_cache=true"
	}

	resp, err := client.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		IsRevoked bool       `json:"is_revoked"`
		TokenID   string     `json:"token_id"`
		Status    string     `json:"status"`
		RevokedAt *time.Time `json:"revoked_at"`
		Reason    string     `json:"reason"`
		FromCache bool       `json:"from_cache"`
		Degraded  bool       `json:"degraded"`
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
		table := &output.Table{Headers: []string{"FIELD", "VALUE"}}
		table.AddRow("Token ID", result.TokenID)
		table.AddRow("Status", result.Status)
		table.AddRow("Revoked", fmt.Sprintf("%t", result.IsRevoked))
		if result.RevokedAt != nil {
			table.AddRow("Revoked At", result.RevokedAt.Format(time.RFC3339))
		}
		if result.Reason != "" {
			table.AddRow("Reason", result.Reason)
		}
		table.AddRow("From Cache", fmt.Sprintf("%t", result.FromCache))
		if result.Degraded {
			table.AddRow("Degraded", "true (shared tier unavailable)")
		}
		return table.Render(os.Stdout)
	}
}
