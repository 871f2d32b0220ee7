package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dom/videotube/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var credentialColumns = []string{"password", "refresh_token"}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Omit(credentialColumns...).
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByIDWithCredentials(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsernameOrEmailWithCredentials(ctx context.Context, username, email string) (*domain.User, error) {
	var user domain.User
	err := r.matchUsernameOrEmail(ctx, username, email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.matchUsernameOrEmail(ctx, username, email).
		Model(&domain.User{}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) matchUsernameOrEmail(ctx context.Context, username, email string) *gorm.DB {
	q := r.db.WithContext(ctx)
	switch {
	case username != "" && email != "":
		return q.Where("username = ? OR email = ?", username, email)
	case username != "":
		return q.Where("username = ?", username)
	default:
		return q.Where("email = ?", email)
	}
}

// Update writes only the named columns of user, plus updated_at. BeforeSave
// still validates the whole document, but the session columns and watch
// history are never written back from a possibly stale copy.
func (r *userRepository) Update(ctx context.Context, user *domain.User, columns ...string) error {
	if len(columns) == 0 {
		return errors.New("update: no columns named")
	}

	result := r.db.WithContext(ctx).
		Model(user).
		Select(append([]string{"updated_at"}, columns...)).
		Updates(user)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetRefreshToken writes only the refresh_token column; nil clears it.
func (r *userRepository) SetRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	var value any = gorm.Expr("NULL")
	if token != nil {
		value = *token
	}

	result := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		UpdateColumn("refresh_token", value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) AppendWatchHistory(ctx context.Context, id uuid.UUID, videoID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		UpdateColumn("watch_history", gorm.Expr(
			"(CASE WHEN jsonb_typeof(watch_history) = 'array' THEN watch_history ELSE '[]'::jsonb END) || to_jsonb(?::text)",
			videoID.String(),
		))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

const channelProfileQuery = `
SELECT u.id,
       u.fullname AS full_name,
       u.username,
       u.avatar,
       u.email,
       u.cover_image,
       (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id) AS subscribers_count,
       (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS channels_subscribed_to_count,
       EXISTS (
           SELECT 1 FROM subscriptions s
           WHERE s.channel_id = u.id AND s.subscriber_id = ?
       ) AS is_subscribed
FROM users u
WHERE u.username = ?
LIMIT 1`

// GetChannelProfile returns gorm.ErrRecordNotFound when no user has username.
// A nil viewer is never subscribed.
func (r *userRepository) GetChannelProfile(ctx context.Context, username string, viewerID *uuid.UUID) (*domain.ChannelProfile, error) {
	var viewer any
	if viewerID != nil {
		viewer = *viewerID
	}

	var profiles []*domain.ChannelProfile
	err := r.db.WithContext(ctx).Raw(channelProfileQuery, viewer, username).Scan(&profiles).Error
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return profiles[0], nil
}

const watchHistoryQuery = `
SELECT v.id,
       v.video_file,
       v.thumbnail,
       v.title,
       v.description,
       v.duration,
       v.views,
       v.is_published,
       v.created_at,
       v.updated_at,
       o.id AS owner_id,
       o.fullname AS owner_full_name,
       o.username AS owner_username,
       o.avatar AS owner_avatar
FROM users u
CROSS JOIN LATERAL jsonb_array_elements_text(
    CASE WHEN jsonb_typeof(u.watch_history) = 'array' THEN u.watch_history ELSE '[]'::jsonb END
) WITH ORDINALITY AS wh(video_id, position)
JOIN videos v ON v.id = wh.video_id::uuid
LEFT JOIN users o ON o.id = v.owner_id
WHERE u.id = ?
ORDER BY wh.position`

type watchHistoryRow struct {
	ID            uuid.UUID
	VideoFile     string
	Thumbnail     string
	Title         string
	Description   string
	Duration      float64
	Views         int64
	IsPublished   bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	OwnerID       *uuid.UUID
	OwnerFullName *string
	OwnerUsername *string
	OwnerAvatar   *string
}

// GetWatchHistory resolves the stored video ids in order. Ids whose video
// no longer exists are dropped.
func (r *userRepository) GetWatchHistory(ctx context.Context, id uuid.UUID) ([]*domain.WatchHistoryEntry, error) {
	var rows []watchHistoryRow
	if err := r.db.WithContext(ctx).Raw(watchHistoryQuery, id).Scan(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]*domain.WatchHistoryEntry, 0, len(rows))
	for _, row := range rows {
		entry := &domain.WatchHistoryEntry{
			ID:          row.ID,
			VideoFile:   row.VideoFile,
			Thumbnail:   row.Thumbnail,
			Title:       row.Title,
			Description: row.Description,
			Duration:    row.Duration,
			Views:       row.Views,
			IsPublished: row.IsPublished,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		}
		if row.OwnerID != nil {
			entry.Owner = &domain.OwnerSummary{
				ID:       *row.OwnerID,
				FullName: deref(row.OwnerFullName),
				Username: deref(row.OwnerUsername),
				Avatar:   deref(row.OwnerAvatar),
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
