package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/notification"
)

var notificationColumns = []string{
	"id", "kind", "driver_id", "subject_id", "body", "status", "error", "sent_at", "created_at",
}

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil)

func NewNotificationRepository(db *sqlx.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	q, args, err := psql.Insert("notification").
		Columns(notificationColumns...).
		Values(n.ID, n.Kind, n.DriverID, n.SubjectID, n.Body, n.Status, n.Error, n.SentAt, n.CreatedAt).
		ToSql()
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return notification.Notification{}, errors.Wrap(err, "creating notification")
	}
	return n, nil
}

func (repo *notificationRepository) QueryNotifications(ctx context.Context, filter *notification.QueryFilter, ordering []core.DBOrdering) ([]notification.Notification, error) {
	qb := psql.Select(notificationColumns...).From("notification")

	if filter != nil {
		if filter.Kind != "" {
			qb = qb.Where(sq.Eq{"kind": filter.Kind})
		}
		if filter.DriverID != "" {
			qb = qb.Where(sq.Eq{"driver_id": filter.DriverID})
		}
		if filter.SubjectID != "" {
			qb = qb.Where(sq.Eq{"subject_id": filter.SubjectID})
		}
		if filter.Status != "" {
			qb = qb.Where(sq.Eq{"status": filter.Status})
		}
		if !filter.Since.IsZero() {
			qb = qb.Where(sq.GtOrEq{"created_at": filter.Since})
		}
	}
	for _, ord := range ordering {
		qb = qb.OrderBy(ord.String())
	}

	q, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	rows, err := repo.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	defer func() { _ = rows.Close() }()

	var notifs []notification.Notification
	for rows.Next() {
		var n notification.Notification
		err = rows.Scan(
			&n.ID, &n.Kind, &n.DriverID, &n.SubjectID, &n.Body, &n.Status, &n.Error, &n.SentAt, &n.CreatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scanning notification")
		}
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}
