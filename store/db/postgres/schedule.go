package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/oratio/oratio/store"
)

func (d *DB) CreateScheduledContent(ctx context.Context, create *store.ScheduledContent) (*store.ScheduledContent, error) {
	fields := []string{
		"id", "content_id", "content_type", "title", "author", "verse",
		"scheduled_date", "status", "recurring_type", "recurring_index", "bulk_scheduled",
	}
	placeholderValues := []any{
		create.ID, create.ContentID, create.ContentType, create.Title, create.Author, create.Verse,
		create.ScheduledDate, create.Status, create.RecurringType, create.RecurringIndex, create.BulkScheduled,
	}

	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		placeholderValues = append(placeholderValues, create.CreatedTs)
	}

	stmt := `INSERT INTO scheduled_content (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING created_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.CreatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create scheduled content: %w", err)
	}

	return create, nil
}

func (d *DB) ListScheduledContent(ctx context.Context, find *store.FindScheduledContent) ([]*store.ScheduledContent, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "scheduled_content.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.ContentID; v != nil {
		where, args = append(where, "scheduled_content.content_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.ContentType; v != nil {
		where, args = append(where, "scheduled_content.content_type = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.ScheduledDate; v != nil {
		where, args = append(where, "scheduled_content.scheduled_date = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.ScheduledDateStart; v != nil {
		where, args = append(where, "scheduled_content.scheduled_date >= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.ScheduledDateEnd; v != nil {
		where, args = append(where, "scheduled_content.scheduled_date <= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "scheduled_content.status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if find.ExcludeCancelled {
		where, args = append(where, "scheduled_content.status != "+placeholder(len(args)+1)), append(args, store.ScheduleStatusCancelled)
	}

	// Ordering (always by scheduled_date ascending; creation time breaks ties)
	orderBy := "ORDER BY scheduled_content.scheduled_date ASC, scheduled_content.created_ts ASC"

	query := `
		SELECT
			id, content_id, content_type, title, author, verse,
			scheduled_date, status, recurring_type, recurring_index, bulk_scheduled, created_ts
		FROM scheduled_content
		WHERE ` + strings.Join(where, " AND ") + ` ` + orderBy

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled content: %w", err)
	}
	defer rows.Close()

	list := make([]*store.ScheduledContent, 0)
	for rows.Next() {
		var sc store.ScheduledContent
		var recurringType sql.NullString
		if err := rows.Scan(
			&sc.ID,
			&sc.ContentID,
			&sc.ContentType,
			&sc.Title,
			&sc.Author,
			&sc.Verse,
			&sc.ScheduledDate,
			&sc.Status,
			&recurringType,
			&sc.RecurringIndex,
			&sc.BulkScheduled,
			&sc.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan scheduled content: %w", err)
		}
		if recurringType.Valid {
			sc.RecurringType = &recurringType.String
		}
		list = append(list, &sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scheduled content: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateScheduledContent(ctx context.Context, update *store.UpdateScheduledContent) error {
	set, args := []string{}, []any{}

	if v := update.Status; v != nil {
		set, args = append(set, "status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, update.ID)
	stmt := `UPDATE scheduled_content SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to update scheduled content: %w", err)
	}
	return nil
}

func (d *DB) DeleteScheduledContent(ctx context.Context, delete *store.DeleteScheduledContent) error {
	stmt := `DELETE FROM scheduled_content WHERE id = ` + placeholder(1)
	if _, err := d.db.ExecContext(ctx, stmt, delete.ID); err != nil {
		return fmt.Errorf("failed to delete scheduled content: %w", err)
	}
	return nil
}
