package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/ward-rota/pkg/core/model"
	"github.com/jakechorley/ward-rota/pkg/db"
)

// InsertSkillRecords inserts an import batch atomically
func (d *DB) InsertSkillRecords(ctx context.Context, records []db.SkillRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO skill_records (id, batch_id, nurse, ward, source, imported_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, r.ID, r.BatchID, r.Nurse, string(r.Ward), r.Source, r.ImportedAt.UTC())
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert skill records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetSkillRecords retrieves every ingested record in import order
func (d *DB) GetSkillRecords(ctx context.Context) ([]db.SkillRecord, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, batch_id, nurse, ward, source, imported_at
		FROM skill_records
		ORDER BY imported_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query skill records: %w", err)
	}
	defer rows.Close()

	var records []db.SkillRecord
	for rows.Next() {
		var r db.SkillRecord
		var ward string
		if err := rows.Scan(&r.ID, &r.BatchID, &r.Nurse, &ward, &r.Source, &r.ImportedAt); err != nil {
			return nil, fmt.Errorf("failed to scan skill record: %w", err)
		}
		r.Ward = model.Ward(ward)
		r.ImportedAt = r.ImportedAt.UTC()
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating skill records: %w", err)
	}

	return records, nil
}
