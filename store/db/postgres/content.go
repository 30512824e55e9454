package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/oratio/oratio/store"
)

func (d *DB) CreateContentItem(ctx context.Context, create *store.ContentItem) (*store.ContentItem, error) {
	fields := []string{"id", "type", "title", "author", "verse", "body", "status"}
	placeholderValues := []any{
		create.ID, create.Type, create.Title, create.Author, create.Verse, create.Body, create.Status,
	}

	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		placeholderValues = append(placeholderValues, create.CreatedTs)
	}
	if create.UpdatedTs != 0 {
		fields = append(fields, "updated_ts")
		placeholderValues = append(placeholderValues, create.UpdatedTs)
	}

	stmt := `INSERT INTO content_item (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create content item: %w", err)
	}

	return create, nil
}

func (d *DB) ListContentItems(ctx context.Context, find *store.FindContentItem) ([]*store.ContentItem, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "content_item.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Type; v != nil {
		where, args = append(where, "content_item.type = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "content_item.status = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, type, title, author, verse, body, status, created_ts, updated_ts
		FROM content_item
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY content_item.title ASC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query content items: %w", err)
	}
	defer rows.Close()

	list := make([]*store.ContentItem, 0)
	for rows.Next() {
		var item store.ContentItem
		if err := rows.Scan(
			&item.ID,
			&item.Type,
			&item.Title,
			&item.Author,
			&item.Verse,
			&item.Body,
			&item.Status,
			&item.CreatedTs,
			&item.UpdatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan content item: %w", err)
		}
		list = append(list, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate content items: %w", err)
	}

	return list, nil
}
