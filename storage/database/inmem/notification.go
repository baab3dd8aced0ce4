package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/notification"
)

type notificationRepository struct {
	db *DB
}

var _ notification.Repository = (*notificationRepository)(nil)

func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	repo.db.notifications[n.ID] = &n
	return n, nil
}

func matchNotification(n notification.Notification, filter *notification.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Kind != "" && n.Kind != filter.Kind {
		return false
	}
	if filter.DriverID != "" && n.DriverID != filter.DriverID {
		return false
	}
	if filter.SubjectID != "" && n.SubjectID != filter.SubjectID {
		return false
	}
	if filter.Status != "" && n.Status != filter.Status {
		return false
	}
	if !filter.Since.IsZero() && n.CreatedAt.Before(filter.Since) {
		return false
	}
	return true
}

func (repo *notificationRepository) QueryNotifications(ctx context.Context, filter *notification.QueryFilter, ordering []core.DBOrdering) ([]notification.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var notifs []notification.Notification
	for _, n := range repo.db.notifications {
		if matchNotification(*n, filter) {
			notifs = append(notifs, *n)
		}
	}
	sort.Slice(notifs, func(i, j int) bool { return notifs[i].CreatedAt.Before(notifs[j].CreatedAt) })
	return notifs, nil
}
