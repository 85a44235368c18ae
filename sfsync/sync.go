package sfsync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dealdesk/deals_backend/config"
	"github.com/dealdesk/deals_backend/models"
	"github.com/dealdesk/deals_backend/salesforce"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// runner holds the state of one sync invocation: the fetch caches and the
// sets of ids written so far. Nothing outlives the run.
type runner struct {
	db     *gorm.DB
	client *salesforce.Client
	logger *logrus.Logger
	opts   Options

	accountCache map[string]sfAccount
	userCache    map[string]sfUser

	syncedEmployees map[string]bool
	syncedAccounts  map[string]bool
	syncedDeals     map[string]bool

	stats    Stats
	warnings int
	runID    uint
}

// recordSyncError persists a non-fatal per-record warning when the run is
// tracked by a SyncRun row; one-shot CLI runs only log.
func (r *runner) recordSyncError(ctx context.Context, entityType string, externalID string, code string, message string) {
	if r.runID == 0 || r.opts.DryRun {
		return
	}
	errRec := models.SyncError{
		SyncRunId:  r.runID,
		EntityType: entityType,
		ExternalId: externalID,
		ErrorCode:  code,
		Message:    message,
	}
	_ = r.db.WithContext(ctx).Create(&errRec).Error
}

func newRunner(db *gorm.DB, client *salesforce.Client, opts Options) *runner {
	return &runner{
		db:              db,
		client:          client,
		logger:          config.GetLogger(),
		opts:            opts,
		accountCache:    make(map[string]sfAccount),
		userCache:       make(map[string]sfUser),
		syncedEmployees: make(map[string]bool),
		syncedAccounts:  make(map[string]bool),
		syncedDeals:     make(map[string]bool),
		stats:           make(Stats),
	}
}

// Run executes one full sync: fetch, backfill, transform, upsert in
// dependency order, then recompute denormalized counts. Steps are
// hard-ordered; the first error aborts the run (committed batches stay).
func Run(ctx context.Context, db *gorm.DB, client *salesforce.Client, opts Options) (Stats, error) {
	r := newRunner(db, client, opts)
	return r.stats, r.run(ctx)
}

func (r *runner) run(ctx context.Context) error {
	if r.opts.Reset {
		if err := r.resetSyncedRecords(ctx); err != nil {
			return err
		}
	}

	if err := r.fetchAccounts(ctx); err != nil {
		return err
	}

	opportunities, err := r.fetchOpportunities(ctx)
	if err != nil {
		return err
	}

	if err := r.backfillAccounts(ctx, missingAccountIDs(opportunities, r.accountCache)); err != nil {
		return err
	}

	if err := r.fetchUsers(ctx, referencedUserIDs(r.accountCache, opportunities)); err != nil {
		return err
	}
	if err := r.fetchManagers(ctx); err != nil {
		return err
	}

	employees := make([]models.Employee, 0, len(r.userCache))
	for _, user := range r.userCache {
		if !RoleKnown(user.UserRole.Name) {
			r.warnings++
			r.recordSyncError(ctx, "employees", user.Id, "unknown_role", "unrecognized role name: "+user.UserRole.Name)
		}
		employees = append(employees, transformUser(user))
	}

	accounts := make([]models.MerchantAccount, 0, len(r.accountCache))
	accountOwners := make(map[string]string, len(r.accountCache))
	for _, acc := range r.accountCache {
		if !BusinessTypeKnown(acc.Industry) {
			r.warnings++
			r.recordSyncError(ctx, "accounts", acc.Id, "unmapped_industry", "industry passed through unmapped: "+acc.Industry)
		}
		accounts = append(accounts, transformAccount(acc))
		accountOwners[acc.Id] = acc.OwnerId
	}

	deals := make([]models.Deal, 0, len(opportunities))
	for _, opp := range opportunities {
		if !StageKnown(opp.StageName) {
			r.warnings++
			r.recordSyncError(ctx, "deals", opp.Id, "unknown_stage", "unrecognized stage name: "+opp.StageName)
		}
		deals = append(deals, transformOpportunity(opp, accountOwners))
	}

	if err := r.upsertEmployees(ctx, employees); err != nil {
		return err
	}
	if err := r.upsertAccounts(ctx, accounts); err != nil {
		return err
	}
	if err := r.upsertDeals(ctx, deals); err != nil {
		return err
	}

	if err := r.recomputeDealCounts(ctx); err != nil {
		return err
	}
	r.refreshDashboardStats(ctx)

	r.logger.WithFields(logrus.Fields{
		"employees": r.stats["employees"],
		"accounts":  r.stats["accounts"],
		"deals":     r.stats["deals"],
		"dryRun":    r.opts.DryRun,
	}).Info("sync completed")
	return nil
}

// ProcessQueuedRun executes a previously queued SyncRun row: marks it
// running, connects to Salesforce, runs the pipeline and finalizes the row.
// Used by the Pub/Sub worker.
func ProcessQueuedRun(ctx context.Context, db *gorm.DB, runID uint) error {
	var run models.SyncRun
	if err := db.WithContext(ctx).Where("id = ?", runID).Take(&run).Error; err != nil {
		return err
	}
	if run.Status == models.SyncRunStatusSuccess || run.Status == models.SyncRunStatusFailed {
		// Re-delivered message for a finished run.
		return nil
	}

	now := time.Now()
	startedAt := run.StartedAt
	if startedAt == nil {
		startedAt = &now
	}
	if err := db.WithContext(ctx).Model(&run).Updates(map[string]interface{}{
		"status":     models.SyncRunStatusRunning,
		"started_at": startedAt,
	}).Error; err != nil {
		return err
	}

	opts := Options{
		DryRun:      run.DryRun,
		FullSync:    run.FullSync,
		TriggeredBy: run.TriggeredBy,
	}

	stats, warnings, runErr := loginAndRun(ctx, db, opts, run.ID)

	finishedAt := time.Now()
	status := models.SyncRunStatusSuccess
	message := ""
	if runErr != nil {
		status = models.SyncRunStatusFailed
		message = runErr.Error()
	}
	statsJSON, _ := json.Marshal(stats)

	if err := db.WithContext(ctx).Model(&run).Updates(map[string]interface{}{
		"status":         status,
		"message":        message,
		"finished_at":    finishedAt,
		"duration_ms":    finishedAt.Sub(*startedAt).Milliseconds(),
		"records_synced": stats.total(),
		"warning_count":  warnings,
		"stats_json":     statsJSON,
	}).Error; err != nil {
		return err
	}
	return runErr
}

func loginAndRun(ctx context.Context, db *gorm.DB, opts Options, runID uint) (Stats, int, error) {
	cfg, err := salesforce.ConfigFromEnv()
	if err != nil {
		return Stats{}, 0, err
	}
	client, err := salesforce.Login(ctx, cfg)
	if err != nil {
		return Stats{}, 0, err
	}
	r := newRunner(db, client, opts)
	r.runID = runID
	err = r.run(ctx)
	return r.stats, r.warnings, err
}
