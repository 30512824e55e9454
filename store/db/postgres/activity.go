package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/oratio/oratio/store"
)

func (d *DB) CreateActivity(ctx context.Context, create *store.Activity) (*store.Activity, error) {
	fields := []string{
		"id", "actor_name", "actor_email", "action", "content_type",
		"content_title", "scheduled_date", "date_range", "scheduled_count",
	}
	placeholderValues := []any{
		create.ID, create.ActorName, create.ActorEmail, create.Action, create.ContentType,
		create.ContentTitle, create.ScheduledDate, create.DateRange, create.ScheduledCount,
	}

	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		placeholderValues = append(placeholderValues, create.CreatedTs)
	}

	stmt := `INSERT INTO activity (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING created_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.CreatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	return create, nil
}

func (d *DB) ListActivities(ctx context.Context, find *store.FindActivity) ([]*store.Activity, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.Action; v != nil {
		where, args = append(where, "activity.action = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.ContentType; v != nil {
		where, args = append(where, "activity.content_type = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, actor_name, actor_email, action, content_type,
			content_title, scheduled_date, date_range, scheduled_count, created_ts
		FROM activity
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY activity.created_ts DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Activity, 0)
	for rows.Next() {
		var activity store.Activity
		if err := rows.Scan(
			&activity.ID,
			&activity.ActorName,
			&activity.ActorEmail,
			&activity.Action,
			&activity.ContentType,
			&activity.ContentTitle,
			&activity.ScheduledDate,
			&activity.DateRange,
			&activity.ScheduledCount,
			&activity.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		list = append(list, &activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	return list, nil
}
