package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"bilancio/internal/core"
	"bilancio/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the durable ledger store. It implements the
// ledger.Store ports; amounts are persisted as integer cents and dates as
// canonical ISO strings, so nothing timezone-dependent ever reaches disk.
type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, logger: log.Default(log.ComponentStorage)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListRules implements ledger.RuleReader. Rules come back in insertion order
// (rowid order) so downstream tie-breaks are stable across queries.
func (r *SQLiteRepository) ListRules(ctx context.Context) ([]core.RecurrenceRule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, amount_cents, anchor_date, day_of_month,
		       series_start, series_end, category, wallet, tags
		FROM recurrence_rules
		WHERE deleted_at IS NULL
		ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list recurrence rules: %w", err)
	}
	defer rows.Close()

	var rules []core.RecurrenceRule
	for rows.Next() {
		var (
			rule                           core.RecurrenceRule
			kind                           string
			anchor, seriesStart, seriesEnd string
			tags                           string
		)
		if err := rows.Scan(&rule.ID, &kind, &rule.Amount.Cents, &anchor, &rule.DayOfMonth,
			&seriesStart, &seriesEnd, &rule.Category, &rule.Wallet, &tags); err != nil {
			return nil, fmt.Errorf("scan recurrence rule: %w", err)
		}
		rule.Kind = core.Kind(kind)
		if rule.AnchorDate, err = core.ParseDate(anchor); err != nil {
			return nil, fmt.Errorf("rule %s anchor date: %w", rule.ID, err)
		}
		if rule.SeriesStart, err = parseOptionalDate(seriesStart); err != nil {
			return nil, fmt.Errorf("rule %s series start: %w", rule.ID, err)
		}
		if rule.SeriesEnd, err = parseOptionalDate(seriesEnd); err != nil {
			return nil, fmt.Errorf("rule %s series end: %w", rule.ID, err)
		}
		rule.Tags = splitTags(tags)
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurrence rules: %w", err)
	}

	if err := r.attachExclusions(ctx, rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// attachExclusions loads rule_exclusions and joins them onto the rule slice.
func (r *SQLiteRepository) attachExclusions(ctx context.Context, rules []core.RecurrenceRule) error {
	if len(rules) == 0 {
		return nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT rule_id, excluded_date
		FROM rule_exclusions
		ORDER BY rule_id, excluded_date`)
	if err != nil {
		return fmt.Errorf("list rule exclusions: %w", err)
	}
	defer rows.Close()

	excluded := make(map[string][]core.Date)
	for rows.Next() {
		var ruleID, dateStr string
		if err := rows.Scan(&ruleID, &dateStr); err != nil {
			return fmt.Errorf("scan rule exclusion: %w", err)
		}
		d, err := core.ParseDate(dateStr)
		if err != nil {
			return fmt.Errorf("rule %s exclusion date: %w", ruleID, err)
		}
		excluded[ruleID] = append(excluded[ruleID], d)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate rule exclusions: %w", err)
	}

	for i := range rules {
		rules[i].ExcludedDates = excluded[rules[i].ID]
	}
	return nil
}

// ListEntries implements ledger.EntryReader.
func (r *SQLiteRepository) ListEntries(ctx context.Context) ([]core.PunctualEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, amount_cents, entry_date, category, wallet, tags
		FROM punctual_entries
		WHERE deleted_at IS NULL
		ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list punctual entries: %w", err)
	}
	defer rows.Close()

	var entries []core.PunctualEntry
	for rows.Next() {
		var (
			entry   core.PunctualEntry
			id      int64
			kind    string
			dateStr string
			tags    string
		)
		if err := rows.Scan(&id, &kind, &entry.Amount.Cents, &dateStr,
			&entry.Category, &entry.Wallet, &tags); err != nil {
			return nil, fmt.Errorf("scan punctual entry: %w", err)
		}
		entry.ID = strconv.FormatInt(id, 10)
		entry.Kind = core.Kind(kind)
		if entry.Date, err = core.ParseDate(dateStr); err != nil {
			return nil, fmt.Errorf("entry %d date: %w", id, err)
		}
		entry.Tags = splitTags(tags)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate punctual entries: %w", err)
	}
	return entries, nil
}

// AppendEntry implements ledger.EntryWriter.
func (r *SQLiteRepository) AppendEntry(ctx context.Context, e core.PunctualEntry) (string, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO punctual_entries (kind, amount_cents, entry_date, category, wallet, tags)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(e.Kind), e.Amount.Cents, e.Date.ISO(), e.Category, e.Wallet, joinTags(e.Tags))
	if err != nil {
		return "", fmt.Errorf("insert punctual entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("entry insert id: %w", err)
	}

	r.logger.InfoContext(ctx, "Punctual entry saved",
		log.FieldEntryID, id,
		log.FieldKind, e.Kind,
		log.FieldAmountCents, e.Amount.Cents,
		log.FieldDate, e.Date.ISO(),
		log.FieldCategory, e.Category)

	return strconv.FormatInt(id, 10), nil
}

// DeleteEntry implements ledger.EntryWriter with a soft delete.
func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE punctual_entries
		SET deleted_at = datetime('now')
		WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete entry %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry %s rows affected: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("entry %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// AddExclusion implements ledger.ExclusionWriter: records the deletion of a
// single occurrence without ending the series. Idempotent per (rule, date).
func (r *SQLiteRepository) AddExclusion(ctx context.Context, ruleID string, date core.Date) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO rule_exclusions (rule_id, excluded_date)
		VALUES (?, ?)`, ruleID, date.ISO())
	if err != nil {
		return fmt.Errorf("add exclusion for rule %s: %w", ruleID, err)
	}

	r.logger.InfoContext(ctx, "Occurrence excluded from series",
		log.FieldRuleID, ruleID,
		log.FieldDate, date.ISO())
	return nil
}

// CreateRule stores a recurrence rule. Exclusions on the rule value are
// persisted as well.
func (r *SQLiteRepository) CreateRule(ctx context.Context, rule core.RecurrenceRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recurrence_rules
			(id, kind, amount_cents, anchor_date, day_of_month, series_start, series_end, category, wallet, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, string(rule.Kind), rule.Amount.Cents, rule.AnchorDate.ISO(), rule.DayOfMonth,
		formatOptionalDate(rule.SeriesStart), formatOptionalDate(rule.SeriesEnd),
		rule.Category, rule.Wallet, joinTags(rule.Tags))
	if err != nil {
		return fmt.Errorf("insert recurrence rule %s: %w", rule.ID, err)
	}

	for _, d := range rule.ExcludedDates {
		if err := r.AddExclusion(ctx, rule.ID, d); err != nil {
			return err
		}
	}
	return nil
}

func parseOptionalDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

func formatOptionalDate(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.ISO()
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}
