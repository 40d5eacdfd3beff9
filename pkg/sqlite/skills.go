package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/ward-rota/pkg/core/model"
	"github.com/jakechorley/ward-rota/pkg/db"
)

// InsertSkillRecords inserts an import batch atomically
func (d *DB) InsertSkillRecords(ctx context.Context, records []db.SkillRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, r := range records {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO skill_records (id, batch_id, nurse, ward, source, imported_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, r.ID, r.BatchID, r.Nurse, string(r.Ward), r.Source, r.ImportedAt.UTC().Format(timeLayout))
		if err != nil {
			return fmt.Errorf("failed to insert skill record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetSkillRecords retrieves every ingested record in import order
func (d *DB) GetSkillRecords(ctx context.Context) ([]db.SkillRecord, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, batch_id, nurse, ward, source, imported_at
		FROM skill_records
		ORDER BY imported_at, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query skill records: %w", err)
	}
	defer rows.Close()

	var records []db.SkillRecord
	for rows.Next() {
		var r db.SkillRecord
		var ward, importedAt string
		if err := rows.Scan(&r.ID, &r.BatchID, &r.Nurse, &ward, &r.Source, &importedAt); err != nil {
			return nil, fmt.Errorf("failed to scan skill record: %w", err)
		}
		r.Ward = model.Ward(ward)
		if r.ImportedAt, err = time.Parse(timeLayout, importedAt); err != nil {
			return nil, fmt.Errorf("failed to parse imported_at for record %s: %w", r.ID, err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating skill records: %w", err)
	}

	return records, nil
}
