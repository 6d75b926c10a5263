package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/drinktab/internal/cli"
	"github.com/terraincognita07/drinktab/internal/config"
	"github.com/terraincognita07/drinktab/internal/db"
	"gorm.io/gorm"
)

func newUsersCommand() *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "Manage kiosk users",
	}

	users.AddCommand(
		&cobra.Command{
			Use:   "add NAME",
			Short: "Create a user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(func(database *gorm.DB, _ *config.Config) error {
					return cli.RunAddUserCommand(database, args[0], cmd.OutOrStdout())
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List active users",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(func(database *gorm.DB, _ *config.Config) error {
					return cli.RunListUsersCommand(database, cmd.OutOrStdout())
				})
			},
		},
	)
	return users
}

func newProductsCommand() *cobra.Command {
	products := &cobra.Command{
		Use:   "products",
		Short: "Manage the product catalog",
	}

	var style string
	add := &cobra.Command{
		Use:   "add NAME PRICE",
		Short: "Create a product",
		Long: `Create a product with a non-negative decimal price.

Examples:
  drinktab products add "Club Mate" 1.50
  drinktab products add Cola 1.20 --style red`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(database *gorm.DB, _ *config.Config) error {
				return cli.RunAddProductCommand(database, args[0], args[1], style, cmd.OutOrStdout())
			})
		},
	}
	add.Flags().StringVar(&style, "style", "", "Presentation style shown on the product button")

	products.AddCommand(
		add,
		&cobra.Command{
			Use:   "list",
			Short: "List active products",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(func(database *gorm.DB, _ *config.Config) error {
					return cli.RunListProductsCommand(database, cmd.OutOrStdout())
				})
			},
		},
	)
	return products
}

func newReportCommand() *cobra.Command {
	var month int
	var year int

	report := &cobra.Command{
		Use:   "report",
		Short: "Print per-user totals and monthly counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(database *gorm.DB, cfg *config.Config) error {
				location := mustLoadLocation(cfg.Server.TimeZone, zerolog.Nop())
				now := time.Now().In(location)
				if month == 0 {
					month = int(now.Month())
				}
				if year == 0 {
					year = now.Year()
				}
				return cli.RunReportCommand(database, month, year, location, cmd.OutOrStdout())
			})
		},
	}
	report.Flags().IntVar(&month, "month", 0, "Month to report (1-12, default current)")
	report.Flags().IntVar(&year, "year", 0, "Year to report (default current)")
	return report
}

func newHashPasswordCommand(stdin *os.File) *cobra.Command {
	var generate bool

	hash := &cobra.Command{
		Use:   "hash-password [PASSWORD]",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Long: `Print a bcrypt hash for ADMIN_PASSWORD_HASH.

Without an argument the password is read from the terminal without echo.
With --generate, or when stdin is not a terminal, a random password is
generated and printed once.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			switch {
			case len(args) == 1:
				password = args[0]
			case !generate && stdin != nil && isatty.IsTerminal(stdin.Fd()):
				value, err := cli.PromptNewPassword(stdin, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				password = value
			}
			return cli.RunHashPasswordCommand(password, cmd.OutOrStdout())
		},
	}
	hash.Flags().BoolVar(&generate, "generate", false, "Generate a random password instead of prompting")
	return hash
}

// withDatabase loads configuration, opens the database with migrations
// applied and closes it after fn returns.
func withDatabase(fn func(database *gorm.DB, cfg *config.Config) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.Database.URL, zerolog.Nop())
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	return fn(database, cfg)
}
