package sfsync

import (
	"context"
	"fmt"

	"github.com/dealdesk/deals_backend/config"
	"github.com/dealdesk/deals_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"
)

const upsertChunkSize = 100

// chunkRecords splits a batch into fixed-size upsert chunks.
func chunkRecords[T any](records []T, size int) [][]T {
	if size <= 0 {
		return [][]T{records}
	}
	var chunks [][]T
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, records[start:end])
	}
	return chunks
}

// dedupeEmployeesByEmail keeps the first occurrence per email address: the
// destination enforces email uniqueness but the source may contain
// near-duplicates. Employees without an email are kept as-is.
func dedupeEmployeesByEmail(employees []models.Employee) []models.Employee {
	seen := make(map[string]bool)
	deduped := make([]models.Employee, 0, len(employees))
	for _, emp := range employees {
		if emp.Email != "" {
			if seen[emp.Email] {
				continue
			}
			seen[emp.Email] = true
		}
		deduped = append(deduped, emp)
	}
	return deduped
}

// prepareEmployeePhases clears manager references for the bulk insert and
// returns the links to apply afterwards. Writing managers in one pass would
// forward-reference employees not yet present.
func prepareEmployeePhases(employees []models.Employee) ([]models.Employee, map[string]string) {
	inserts := make([]models.Employee, len(employees))
	links := make(map[string]string)
	for i, emp := range employees {
		if emp.ManagerID != nil {
			links[emp.ID] = *emp.ManagerID
			emp.ManagerID = nil
		}
		inserts[i] = emp
	}
	return inserts, links
}

// prepareAccounts nulls owner references whose employee did not sync in this
// run and parent references pointing outside the account batch itself.
func prepareAccounts(accounts []models.MerchantAccount, syncedEmployees map[string]bool) []models.MerchantAccount {
	inBatch := make(map[string]bool, len(accounts))
	for _, acc := range accounts {
		inBatch[acc.ID] = true
	}
	prepared := make([]models.MerchantAccount, len(accounts))
	for i, acc := range accounts {
		if acc.OwnerID != nil && !syncedEmployees[*acc.OwnerID] {
			acc.OwnerID = nil
		}
		if acc.ParentID != nil && !inBatch[*acc.ParentID] {
			acc.ParentID = nil
		}
		prepared[i] = acc
	}
	return prepared
}

// prepareDeals nulls any reference not written earlier in this run, so
// ordering gaps never surface as constraint violations.
func prepareDeals(deals []models.Deal, syncedAccounts map[string]bool, syncedEmployees map[string]bool) []models.Deal {
	prepared := make([]models.Deal, len(deals))
	for i, deal := range deals {
		if deal.AccountID != nil && !syncedAccounts[*deal.AccountID] {
			deal.AccountID = nil
		}
		if deal.OwnerID != nil && !syncedEmployees[*deal.OwnerID] {
			deal.OwnerID = nil
		}
		if deal.OpportunityOwnerID != nil && !syncedEmployees[*deal.OpportunityOwnerID] {
			deal.OpportunityOwnerID = nil
		}
		prepared[i] = deal
	}
	return prepared
}

// upsertChunked writes a batch in chunks with replace-on-conflict keyed by the
// namespaced primary key. A failed chunk is logged with its offset and
// re-thrown; the run aborts.
func (r *runner) upsertChunked(ctx context.Context, entityKind string, upsert func(chunkIndex int) ([]string, error), chunkCount int, total int) error {
	if r.opts.DryRun {
		r.logger.WithFields(logrus.Fields{
			"entity":  entityKind,
			"records": total,
			"batches": chunkCount,
		}).Info("dry-run: skipping upsert")
		return nil
	}
	for i := 0; i < chunkCount; i++ {
		ids, err := upsert(i)
		if err != nil {
			config.LogError(r.logger, "sfsync", "upsertChunked", entityKind,
				map[string]interface{}{"batchOffset": i * upsertChunkSize}, err)
			r.recordSyncError(ctx, entityKind, "", "batch_write_failed", err.Error())
			return fmt.Errorf("upsert %s batch at offset %d: %w", entityKind, i*upsertChunkSize, err)
		}
		for _, id := range ids {
			r.markSynced(entityKind, id)
		}
	}
	r.logger.WithFields(logrus.Fields{
		"entity":  entityKind,
		"records": total,
	}).Info("upserted batch")
	return nil
}

func (r *runner) upsertEmployees(ctx context.Context, employees []models.Employee) error {
	employees = dedupeEmployeesByEmail(employees)
	inserts, managerLinks := prepareEmployeePhases(employees)

	chunks := chunkRecords(inserts, upsertChunkSize)
	err := r.upsertChunked(ctx, "employees", func(i int) ([]string, error) {
		chunk := chunks[i]
		if err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
			Create(&chunk).Error; err != nil {
			return nil, err
		}
		ids := make([]string, len(chunk))
		for j, emp := range chunk {
			ids[j] = emp.ID
		}
		return ids, nil
	}, len(chunks), len(inserts))
	if err != nil {
		return err
	}
	if r.opts.DryRun {
		// Still account for what would have been written so downstream
		// dry-run FK checks behave like a real run.
		for _, emp := range inserts {
			r.syncedEmployees[emp.ID] = true
		}
		r.stats["employees"] = len(inserts)
		return nil
	}

	// Phase two: link managers, only where the manager itself synced.
	linked := 0
	for id, managerID := range managerLinks {
		if !r.syncedEmployees[managerID] {
			continue
		}
		if err := r.db.WithContext(ctx).
			Model(&models.Employee{}).
			Where("id = ?", id).
			Update("manager_id", managerID).Error; err != nil {
			config.LogError(r.logger, "sfsync", "upsertEmployees", "link manager",
				map[string]interface{}{"employeeId": id}, err)
			return err
		}
		linked++
	}
	r.logger.WithField("linked", linked).Info("linked employee managers")
	r.stats["employees"] = len(inserts)
	return nil
}

func (r *runner) upsertAccounts(ctx context.Context, accounts []models.MerchantAccount) error {
	accounts = prepareAccounts(accounts, r.syncedEmployees)
	chunks := chunkRecords(accounts, upsertChunkSize)
	err := r.upsertChunked(ctx, "accounts", func(i int) ([]string, error) {
		chunk := chunks[i]
		if err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
			Create(&chunk).Error; err != nil {
			return nil, err
		}
		ids := make([]string, len(chunk))
		for j, acc := range chunk {
			ids[j] = acc.ID
		}
		return ids, nil
	}, len(chunks), len(accounts))
	if err != nil {
		return err
	}
	if r.opts.DryRun {
		for _, acc := range accounts {
			r.syncedAccounts[acc.ID] = true
		}
	}
	r.stats["accounts"] = len(accounts)
	return nil
}

func (r *runner) upsertDeals(ctx context.Context, deals []models.Deal) error {
	deals = prepareDeals(deals, r.syncedAccounts, r.syncedEmployees)
	chunks := chunkRecords(deals, upsertChunkSize)
	err := r.upsertChunked(ctx, "deals", func(i int) ([]string, error) {
		chunk := chunks[i]
		if err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
			Create(&chunk).Error; err != nil {
			return nil, err
		}
		ids := make([]string, len(chunk))
		for j, deal := range chunk {
			ids[j] = deal.ID
		}
		return ids, nil
	}, len(chunks), len(deals))
	if err != nil {
		return err
	}
	r.stats["deals"] = len(deals)
	return nil
}

func (r *runner) markSynced(entityKind string, id string) {
	switch entityKind {
	case "employees":
		r.syncedEmployees[id] = true
	case "accounts":
		r.syncedAccounts[id] = true
	case "deals":
		r.syncedDeals[id] = true
	}
}

// resetSyncedRecords hard-deletes every previously-synced row (namespaced id
// prefix) so a clean re-import can follow. Deletion order respects FK
// dependencies; manager self-references are cleared first.
func (r *runner) resetSyncedRecords(ctx context.Context) error {
	if r.opts.DryRun {
		r.logger.Info("dry-run: skipping reset of synced records")
		return nil
	}
	prefix := IDPrefix + "%"
	db := r.db.WithContext(ctx)
	if err := db.Where("id LIKE ?", prefix).Delete(&models.Deal{}).Error; err != nil {
		return err
	}
	if err := db.Where("id LIKE ?", prefix).Delete(&models.MerchantAccount{}).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Employee{}).
		Where("id LIKE ?", prefix).
		Update("manager_id", nil).Error; err != nil {
		return err
	}
	if err := db.Where("id LIKE ?", prefix).Delete(&models.Employee{}).Error; err != nil {
		return err
	}
	r.logger.Info("reset: deleted previously synced records")
	return nil
}

// recomputeDealCounts refreshes the denormalized per-account deal count from
// the persisted deals.
func (r *runner) recomputeDealCounts(ctx context.Context) error {
	if r.opts.DryRun {
		r.logger.Info("dry-run: skipping deal count recompute")
		return nil
	}
	return r.db.WithContext(ctx).Exec(`
		UPDATE merchant_accounts a
		LEFT JOIN (
			SELECT account_id, COUNT(*) AS cnt
			FROM deals
			WHERE account_id IS NOT NULL
			GROUP BY account_id
		) d ON d.account_id = a.id
		SET a.deal_count = COALESCE(d.cnt, 0)
		WHERE a.id LIKE ?`, IDPrefix+"%").Error
}

// refreshDashboardStats triggers the precomputed dashboard view refresh.
// Failure is a warning, not fatal: dashboards just read slightly stale data.
func (r *runner) refreshDashboardStats(ctx context.Context) {
	if r.opts.DryRun {
		r.logger.Info("dry-run: skipping dashboard stats refresh")
		return
	}
	if err := r.db.WithContext(ctx).Exec("CALL refresh_deal_dashboard_stats()").Error; err != nil {
		r.logger.WithField("error", err.Error()).
			Warn("dashboard stats refresh failed; create the refresh_deal_dashboard_stats procedure to enable it")
	}
}
