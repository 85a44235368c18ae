package sfsync

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	defaultMaxAccounts      = 5000
	defaultMaxOpportunities = 10000

	// SOQL length limits cap how many ids fit in one IN (...) clause.
	idBatchSize = 200
)

const accountFields = "Id, Name, Industry, BillingCity, BillingState, BillingCountry, NumberOfEmployees, OwnerId, ParentId"
const opportunityFields = "Id, Name, StageName, Amount, AccountId, OwnerId, Deal_Status__c, Campaign_Start_Date__c, Campaign_End_Date__c, CloseDate"
const userFields = "Id, Name, Email, ManagerId, City, State, Department, IsActive, UserRole.Name"

// queryAll pages through a SOQL result set until done or max records
// (max <= 0 means unbounded).
func (r *runner) queryAll(ctx context.Context, soql string, max int, each func(json.RawMessage) error) (int, error) {
	result, err := r.client.Query(ctx, soql)
	if err != nil {
		return 0, err
	}

	total := 0
	for {
		for _, raw := range result.Records {
			if max > 0 && total >= max {
				return total, nil
			}
			if err := each(raw); err != nil {
				return total, err
			}
			total++
		}
		if result.Done || result.NextRecordsURL == "" {
			return total, nil
		}
		if max > 0 && total >= max {
			return total, nil
		}
		result, err = r.client.QueryMore(ctx, result.NextRecordsURL)
		if err != nil {
			return total, err
		}
	}
}

// fetchAccounts fills the account cache with market-filtered accounts,
// windowed by modification date unless this is a full sync.
func (r *runner) fetchAccounts(ctx context.Context) error {
	max := r.opts.MaxAccounts
	if max <= 0 {
		max = defaultMaxAccounts
	}

	conds := []string{"BillingCountry IN (" + soqlStringList(Markets()) + ")"}
	if !r.opts.FullSync {
		conds = append(conds, "LastModifiedDate >= LAST_N_DAYS:730")
	}
	soql := fmt.Sprintf("SELECT %s FROM Account WHERE %s ORDER BY CreatedDate DESC",
		accountFields, strings.Join(conds, " AND "))

	n, err := r.queryAll(ctx, soql, max, func(raw json.RawMessage) error {
		var acc sfAccount
		if err := json.Unmarshal(raw, &acc); err != nil {
			return err
		}
		if acc.Id != "" {
			r.accountCache[acc.Id] = acc
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.logger.WithField("count", n).Info("fetched accounts")
	return nil
}

// fetchOpportunities merges two policies: every currently-live deal
// regardless of age (uncapped, live deals reflect real-world state and must
// never be truncated), and this year's pipeline of any status, capped.
func (r *runner) fetchOpportunities(ctx context.Context) ([]sfOpportunity, error) {
	live, err := r.queryOpportunities(ctx, "Deal_Status__c = 'Live'", 0)
	if err != nil {
		return nil, err
	}

	max := r.opts.MaxOpportunities
	if max <= 0 {
		max = defaultMaxOpportunities
	}
	cond := "CreatedDate = THIS_YEAR"
	if r.opts.FullSync {
		cond = ""
	}
	yearly, err := r.queryOpportunities(ctx, cond, max)
	if err != nil {
		return nil, err
	}

	merged := mergeOpportunities(live, yearly)
	r.logger.WithFields(map[string]interface{}{
		"live":   len(live),
		"yearly": len(yearly),
		"merged": len(merged),
	}).Info("fetched opportunities")
	return merged, nil
}

func (r *runner) queryOpportunities(ctx context.Context, cond string, max int) ([]sfOpportunity, error) {
	conds := []string{"Account.BillingCountry IN (" + soqlStringList(Markets()) + ")"}
	if cond != "" {
		conds = append(conds, cond)
	}
	soql := fmt.Sprintf("SELECT %s FROM Opportunity WHERE %s ORDER BY CreatedDate DESC",
		opportunityFields, strings.Join(conds, " AND "))

	var opps []sfOpportunity
	_, err := r.queryAll(ctx, soql, max, func(raw json.RawMessage) error {
		var opp sfOpportunity
		if err := json.Unmarshal(raw, &opp); err != nil {
			return err
		}
		if opp.Id != "" {
			opps = append(opps, opp)
		}
		return nil
	})
	return opps, err
}

// mergeOpportunities de-duplicates by Id, first occurrence wins (a live deal
// created this year must not be double-counted).
func mergeOpportunities(groups ...[]sfOpportunity) []sfOpportunity {
	seen := make(map[string]bool)
	var merged []sfOpportunity
	for _, group := range groups {
		for _, opp := range group {
			if seen[opp.Id] {
				continue
			}
			seen[opp.Id] = true
			merged = append(merged, opp)
		}
	}
	return merged
}

// missingAccountIDs returns the account ids referenced by opportunities that
// the cache does not hold (typically accounts whose modification date fell
// outside the extraction window).
func missingAccountIDs(opps []sfOpportunity, cache map[string]sfAccount) []string {
	seen := make(map[string]bool)
	var missing []string
	for _, opp := range opps {
		id := strings.TrimSpace(opp.AccountId)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := cache[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// backfillAccounts fetches exactly the missing referenced accounts so every
// deal's account reference is resolvable before transformation.
func (r *runner) backfillAccounts(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	for _, batch := range chunkStrings(ids, idBatchSize) {
		soql := fmt.Sprintf("SELECT %s FROM Account WHERE Id IN (%s)",
			accountFields, soqlStringList(batch))
		_, err := r.queryAll(ctx, soql, 0, func(raw json.RawMessage) error {
			var acc sfAccount
			if err := json.Unmarshal(raw, &acc); err != nil {
				return err
			}
			if acc.Id != "" {
				r.accountCache[acc.Id] = acc
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	r.logger.WithField("count", len(ids)).Info("backfilled referenced accounts")
	return nil
}

// referencedUserIDs collects the owner ids every account and opportunity
// points at; only these users are fetched.
func referencedUserIDs(accounts map[string]sfAccount, opps []sfOpportunity) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}
	for _, acc := range accounts {
		add(acc.OwnerId)
	}
	for _, opp := range opps {
		add(opp.OwnerId)
	}
	return ids
}

// missingManagerIDs returns the manager ids cached users point at that the
// cache does not hold yet. A manager who owns no account or opportunity is
// still needed, or the reporting chain breaks at the first gap.
func missingManagerIDs(cache map[string]sfUser) []string {
	seen := make(map[string]bool)
	var missing []string
	for _, u := range cache {
		id := strings.TrimSpace(u.ManagerId)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := cache[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// fetchManagers closes the manager chain: each fetched batch can reference
// managers of its own, so it loops until no new ids appear. Ids that a fetch
// does not return (deleted users) are not retried.
func (r *runner) fetchManagers(ctx context.Context) error {
	attempted := make(map[string]bool)
	for {
		var batch []string
		for _, id := range missingManagerIDs(r.userCache) {
			if !attempted[id] {
				attempted[id] = true
				batch = append(batch, id)
			}
		}
		if len(batch) == 0 {
			return nil
		}
		if err := r.fetchUsers(ctx, batch); err != nil {
			return err
		}
	}
}

func (r *runner) fetchUsers(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	for _, batch := range chunkStrings(ids, idBatchSize) {
		soql := fmt.Sprintf("SELECT %s FROM User WHERE Id IN (%s)",
			userFields, soqlStringList(batch))
		_, err := r.queryAll(ctx, soql, 0, func(raw json.RawMessage) error {
			var user sfUser
			if err := json.Unmarshal(raw, &user); err != nil {
				return err
			}
			if user.Id != "" {
				r.userCache[user.Id] = user
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	r.logger.WithField("count", len(r.userCache)).Info("fetched referenced users")
	return nil
}

func soqlStringList(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, "'"+strings.ReplaceAll(v, "'", "\\'")+"'")
	}
	return strings.Join(quoted, ", ")
}

func chunkStrings(values []string, size int) [][]string {
	if size <= 0 {
		return [][]string{values}
	}
	var chunks [][]string
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		chunks = append(chunks, values[start:end])
	}
	return chunks
}
