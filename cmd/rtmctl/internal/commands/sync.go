package commands

import (
	"context"
	"errors"
	"fmt"

	"rtm-portal/internal/cache"
	"rtm-portal/internal/config"
	"rtm-portal/internal/database"
	"rtm-portal/internal/model"
	"rtm-portal/internal/sharepoint"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type syncRunner interface {
	RunExclusive(ctx context.Context, c cache.Cache) (*model.SyncRun, error)
}

var (
	newPgxPool     = database.NewPgxPool
	newRedisClient = cache.NewRedisClient
	newSyncer      = func(db database.DB, cfg config.SharePointConfig, log *zap.Logger) syncRunner {
		return sharepoint.NewSyncer(db, sharepoint.NewClient(cfg, log), cfg, log)
	}
)

// InitSyncCommands registers "sync sharepoint".
func InitSyncCommands(rootCmd *cobra.Command) {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Push data to external systems",
	}

	sharepointCmd := &cobra.Command{
		Use:   "sharepoint",
		Short: "Upload registrations and buildings missing from SharePoint",
		Args:  cobra.NoArgs,
		RunE:  runSharePointSync,
	}

	syncCmd.AddCommand(sharepointCmd)
	rootCmd.AddCommand(syncCmd)
}

func runSharePointSync(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	if !cfg.SharePoint.Enabled() {
		return errors.New("sharepoint is not configured")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := newPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	rdb, err := newRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() { _ = rdb.Close() }()

	run, err := newSyncer(db, cfg.SharePoint, log).RunExclusive(ctx, rdb)
	if errors.Is(err, cache.ErrLocked) {
		return errors.New("another sync is already running")
	}
	if run != nil {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "sync run %d: %d registrations, %d buildings uploaded\n",
			run.ID, run.RegistrationsUploaded, run.BuildingsUploaded)
		for _, e := range run.Errors {
			fmt.Fprintf(out, "  error: %s\n", e)
		}
	}
	if err != nil {
		return fmt.Errorf("sync sharepoint: %w", err)
	}
	return nil
}
