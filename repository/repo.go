package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"stream-service/constant"
	"stream-service/entities"
	"stream-service/errs"
)

type StreamRepository interface {
	GetDB() *gorm.DB

	CreateStream(ctx context.Context, stream *entities.LiveStream) error
	EndStream(ctx context.Context, streamID string, ownerID uuid.UUID, endedAt time.Time) error
	FindActiveByOwner(ctx context.Context, ownerID uuid.UUID) (*entities.LiveStream, error)
	FindByStreamID(ctx context.Context, streamID string) (*entities.LiveStream, error)
	ListActiveStreams(ctx context.Context) ([]*entities.LiveStream, error)

	InsertMessage(ctx context.Context, msg *entities.StreamMessage) error
	ListMessages(ctx context.Context, streamID uuid.UUID) ([]*entities.StreamMessage, error)

	GetProfile(ctx context.Context, userID uuid.UUID) (*entities.Profile, error)
	HasRole(ctx context.Context, userID uuid.UUID, role constant.Role) (bool, error)

	CreateCoachVideo(ctx context.Context, video *entities.CoachVideo) error
	FindCoachVideo(ctx context.Context, videoID uuid.UUID) (*entities.CoachVideo, error)
	ListCoachVideos(ctx context.Context, coachID uuid.UUID) ([]*entities.CoachVideo, error)
	ListLiveCoachVideos(ctx context.Context) ([]*entities.CoachVideo, error)
	SetCoachVideoLive(ctx context.Context, videoID, coachID uuid.UUID, isLive bool, startedAt *time.Time) error
	DeleteCoachVideo(ctx context.Context, videoID, coachID uuid.UUID) error
}

type repo struct {
	db *gorm.DB
}

func NewRepo(db *sql.DB) StreamRepository {
	gormDB, _ := gorm.Open(postgres.New(postgres.Config{
		Conn: db}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		},
	)
	return &repo{
		db: gormDB,
	}
}

func (r *repo) GetDB() *gorm.DB {
	return r.db
}

// CreateStream inserts an active session row. The check and the insert run
// under a per-owner advisory transaction lock so two concurrent creates
// for the same owner cannot both pass the at-most-one-active check.
func (r *repo) CreateStream(ctx context.Context, stream *entities.LiveStream) error {
	return r.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", stream.UserID.String()).Error; err != nil {
			return err
		}

		var count int64
		err := tx.Model(&entities.LiveStream{}).
			Where("user_id = ? AND status = ?", stream.UserID, constant.StreamStatusActive).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return errs.ErrAlreadyLive
		}

		return tx.Create(stream).Error
	})
}

func (r *repo) EndStream(ctx context.Context, streamID string, ownerID uuid.UUID, endedAt time.Time) error {
	res := r.GetDB().WithContext(ctx).Model(&entities.LiveStream{}).
		Where("stream_id = ? AND user_id = ?", streamID, ownerID).
		Updates(map[string]interface{}{
			"status":   constant.StreamStatusInactive,
			"ended_at": endedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrStreamNotFound
	}
	return nil
}

func (r *repo) FindActiveByOwner(ctx context.Context, ownerID uuid.UUID) (*entities.LiveStream, error) {
	stream := &entities.LiveStream{}
	err := r.GetDB().WithContext(ctx).
		Where("user_id = ? AND status = ?", ownerID, constant.StreamStatusActive).
		Order("created_at DESC").
		First(stream).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNoActiveStream
	}
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func (r *repo) FindByStreamID(ctx context.Context, streamID string) (*entities.LiveStream, error) {
	stream := &entities.LiveStream{}
	err := r.GetDB().WithContext(ctx).Where("stream_id = ?", streamID).First(stream).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrStreamNotFound
	}
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func (r *repo) ListActiveStreams(ctx context.Context) ([]*entities.LiveStream, error) {
	var streams []*entities.LiveStream
	err := r.GetDB().WithContext(ctx).
		Where("status = ?", constant.StreamStatusActive).
		Order("created_at DESC").
		Find(&streams).Error
	if err != nil {
		return nil, err
	}
	return streams, nil
}

func (r *repo) InsertMessage(ctx context.Context, msg *entities.StreamMessage) error {
	return r.GetDB().WithContext(ctx).Create(msg).Error
}

func (r *repo) ListMessages(ctx context.Context, streamID uuid.UUID) ([]*entities.StreamMessage, error) {
	var messages []*entities.StreamMessage
	err := r.GetDB().WithContext(ctx).
		Where("stream_id = ?", streamID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *repo) GetProfile(ctx context.Context, userID uuid.UUID) (*entities.Profile, error) {
	profile := &entities.Profile{}
	err := r.GetDB().WithContext(ctx).First(profile, "id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *repo) HasRole(ctx context.Context, userID uuid.UUID, role constant.Role) (bool, error) {
	var count int64
	err := r.GetDB().WithContext(ctx).Model(&entities.UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) CreateCoachVideo(ctx context.Context, video *entities.CoachVideo) error {
	return r.GetDB().WithContext(ctx).Create(video).Error
}

func (r *repo) FindCoachVideo(ctx context.Context, videoID uuid.UUID) (*entities.CoachVideo, error) {
	video := &entities.CoachVideo{}
	err := r.GetDB().WithContext(ctx).First(video, "id = ?", videoID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrVideoNotFound
	}
	if err != nil {
		return nil, err
	}
	return video, nil
}

func (r *repo) ListCoachVideos(ctx context.Context, coachID uuid.UUID) ([]*entities.CoachVideo, error) {
	var videos []*entities.CoachVideo
	err := r.GetDB().WithContext(ctx).
		Where("coach_id = ?", coachID).
		Order("created_at DESC").
		Find(&videos).Error
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *repo) ListLiveCoachVideos(ctx context.Context) ([]*entities.CoachVideo, error) {
	var videos []*entities.CoachVideo
	err := r.GetDB().WithContext(ctx).
		Where("is_live = ?", true).
		Order("live_started_at DESC").
		Find(&videos).Error
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *repo) SetCoachVideoLive(ctx context.Context, videoID, coachID uuid.UUID, isLive bool, startedAt *time.Time) error {
	res := r.GetDB().WithContext(ctx).Model(&entities.CoachVideo{}).
		Where("id = ? AND coach_id = ?", videoID, coachID).
		Updates(map[string]interface{}{
			"is_live":         isLive,
			"live_started_at": startedAt,
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrVideoNotFound
	}
	return nil
}

func (r *repo) DeleteCoachVideo(ctx context.Context, videoID, coachID uuid.UUID) error {
	res := r.GetDB().WithContext(ctx).
		Where("id = ? AND coach_id = ?", videoID, coachID).
		Delete(&entities.CoachVideo{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrVideoNotFound
	}
	return nil
}
