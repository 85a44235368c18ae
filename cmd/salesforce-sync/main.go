package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dealdesk/deals_backend/config"
	"github.com/dealdesk/deals_backend/models"
	"github.com/dealdesk/deals_backend/salesforce"
	"github.com/dealdesk/deals_backend/sfsync"
	"github.com/sirupsen/logrus"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Skip all writes, log intended batch sizes")
	full := flag.Bool("full", false, "Ignore date-cutoff filters (full sync)")
	reset := flag.Bool("reset", false, "Hard-delete all previously synced records before re-importing")
	confirm := flag.String("confirm", "", "Type RESET to proceed when --reset is set")
	maxAccounts := flag.Int("max-accounts", 0, "Override the account fetch cap (0 = default)")
	maxOpportunities := flag.Int("max-opportunities", 0, "Override the current-year opportunity fetch cap (0 = default)")
	flag.Parse()

	if *reset && !*dryRun && strings.TrimSpace(*confirm) != "RESET" {
		fmt.Fprintln(os.Stderr, "set --confirm=RESET to proceed with --reset")
		os.Exit(1)
	}

	logger := config.GetLogger()
	ctx := context.Background()

	cfg, err := salesforce.ConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "salesforce config: %v\n", err)
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	}

	client, err := salesforce.Login(ctx, cfg)
	if err != nil {
		// Authentication failure is fatal; nothing was written.
		config.LogError(logger, "salesforce-sync", "main", "login", nil, err)
		os.Exit(1)
	}

	stats, err := sfsync.Run(ctx, db, client, sfsync.Options{
		DryRun:           *dryRun,
		FullSync:         *full,
		Reset:            *reset,
		MaxAccounts:      *maxAccounts,
		MaxOpportunities: *maxOpportunities,
		TriggeredBy:      models.SyncTriggeredCLI,
	})
	if err != nil {
		config.LogError(logger, "salesforce-sync", "main", "run", map[string]interface{}{
			"stats": stats,
		}, err)
		os.Exit(1)
	}

	logger.WithFields(logrus.Fields{
		"employees": stats["employees"],
		"accounts":  stats["accounts"],
		"deals":     stats["deals"],
		"dryRun":    *dryRun,
	}).Info("salesforce sync finished")
}
