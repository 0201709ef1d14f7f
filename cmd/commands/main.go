// Command commands registers the bot's slash commands with Discord.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/ramdeus-bot/internal/config"
	"github.com/jwebster45206/ramdeus-bot/internal/discord"
	"github.com/jwebster45206/ramdeus-bot/internal/logger"
)

const timeout = 30 * time.Second

var guildID string

var rootCmd = &cobra.Command{
	Use:   "commands",
	Short: "Manage Ram Deus slash commands",
	Long:  `Registers the quote, advice, attack and battle commands with the Discord application configured by APP_ID and DISCORD_TOKEN.`,
}

var globalCmd = &cobra.Command{
	Use:   "global",
	Short: "Register commands globally",
	Long:  `Bulk-overwrite the application's global commands. Changes can take up to an hour to reach every client.`,
	RunE:  runGlobal,
}

var guildCmd = &cobra.Command{
	Use:   "guild",
	Short: "Register commands in one guild",
	Long:  `Bulk-overwrite the commands of a single guild. Updates are immediate, which makes this the usual choice while developing.`,
	RunE:  runGuild,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print command definitions as JSON",
	RunE:  runList,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	guildCmd.Flags().StringVar(&guildID, "guild-id", "", "Guild ID (defaults to DEV_GUILD_ID)")

	rootCmd.AddCommand(globalCmd)
	rootCmd.AddCommand(guildCmd)
	rootCmd.AddCommand(listCmd)
}

func newClient() (*discord.Client, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.AppID == "" || cfg.DiscordToken == "" {
		return nil, nil, fmt.Errorf("APP_ID and DISCORD_TOKEN must be set")
	}
	return discord.NewClient(cfg.AppID, cfg.DiscordToken, logger.Setup(cfg)), cfg, nil
}

func runGlobal(_ *cobra.Command, _ []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.RegisterGlobalCommands(ctx, discord.Commands()); err != nil {
		return err
	}
	fmt.Printf("✅ Registered %d global commands\n", len(discord.Commands()))
	return nil
}

func runGuild(_ *cobra.Command, _ []string) error {
	client, cfg, err := newClient()
	if err != nil {
		return err
	}

	target := guildID
	if target == "" {
		target = cfg.DevGuildID
	}
	if target == "" {
		return fmt.Errorf("--guild-id or DEV_GUILD_ID is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.RegisterGuildCommands(ctx, target, discord.Commands()); err != nil {
		return err
	}
	fmt.Printf("✅ Registered %d commands in guild %s\n", len(discord.Commands()), target)
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(discord.Commands())
}
