package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
	"stream-service/constant"
	"stream-service/dto"
	"stream-service/entities"
	"stream-service/errs"
	"stream-service/repository"
)

// ObjectStorage is the slice of the MinIO client the coach video service
// needs. *minio.Client satisfies it.
type ObjectStorage interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// CoachVideoService manages pre-recorded coach videos and their
// "simulated live" lifecycle. Every operation is gated on the coach role.
type CoachVideoService interface {
	Upload(ctx context.Context, coachID uuid.UUID, title, description, fileName, contentType string, size int64, r io.Reader) (*entities.CoachVideo, error)
	List(ctx context.Context, coachID uuid.UUID) ([]*entities.CoachVideo, error)
	ListLive(ctx context.Context) ([]*entities.CoachVideo, error)
	GoLive(ctx context.Context, coachID, videoID uuid.UUID) error
	EndLive(ctx context.Context, coachID, videoID uuid.UUID) error
	Delete(ctx context.Context, coachID, videoID uuid.UUID) error
}

type coachVideoService struct {
	repo      repository.StreamRepository
	storage   ObjectStorage
	bucket    string
	publicURL string
	publisher EventPublisher
}

func NewCoachVideoService(
	repo repository.StreamRepository,
	storage ObjectStorage,
	bucket string,
	publicURL string,
	publisher EventPublisher,
) CoachVideoService {
	return &coachVideoService{
		repo:      repo,
		storage:   storage,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		publisher: publisher,
	}
}

func (s *coachVideoService) ensureCoach(ctx context.Context, coachID uuid.UUID) error {
	isCoach, err := s.repo.HasRole(ctx, coachID, constant.RoleCoach)
	if err != nil {
		return err
	}
	if !isCoach {
		return errs.ErrCoachRequired
	}
	return nil
}

func (s *coachVideoService) Upload(ctx context.Context, coachID uuid.UUID, title, description, fileName, contentType string, size int64, r io.Reader) (*entities.CoachVideo, error) {
	if err := s.ensureCoach(ctx, coachID); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errs.ErrEmptyTitle
	}

	now := time.Now()
	objectName := fmt.Sprintf("%s/%d%s", coachID, now.UnixMilli(), filepath.Ext(fileName))

	_, err := s.storage.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}

	video := &entities.CoachVideo{
		ID:         uuid.New(),
		CoachID:    coachID,
		Title:      title,
		VideoURL:   fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectName),
		ObjectName: objectName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if description = strings.TrimSpace(description); description != "" {
		video.Description = &description
	}
	if err := s.repo.CreateCoachVideo(ctx, video); err != nil {
		// The row is the source of truth; drop the orphaned object.
		if removeErr := s.storage.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); removeErr != nil {
			zerolog.Ctx(ctx).Error().Err(removeErr).Str("object", objectName).Msg("failed to remove orphaned video object")
		}
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("video_id", video.ID.String()).
		Str("coach_id", coachID.String()).
		Str("object", objectName).
		Msg("coach video uploaded")

	return video, nil
}

func (s *coachVideoService) List(ctx context.Context, coachID uuid.UUID) ([]*entities.CoachVideo, error) {
	if err := s.ensureCoach(ctx, coachID); err != nil {
		return nil, err
	}
	return s.repo.ListCoachVideos(ctx, coachID)
}

func (s *coachVideoService) ListLive(ctx context.Context) ([]*entities.CoachVideo, error) {
	return s.repo.ListLiveCoachVideos(ctx)
}

func (s *coachVideoService) GoLive(ctx context.Context, coachID, videoID uuid.UUID) error {
	if err := s.ensureCoach(ctx, coachID); err != nil {
		return err
	}
	now := time.Now()
	if err := s.repo.SetCoachVideoLive(ctx, videoID, coachID, true, &now); err != nil {
		return err
	}
	s.publish(ctx, constant.EventVideoLive, videoID)
	return nil
}

func (s *coachVideoService) EndLive(ctx context.Context, coachID, videoID uuid.UUID) error {
	if err := s.ensureCoach(ctx, coachID); err != nil {
		return err
	}
	if err := s.repo.SetCoachVideoLive(ctx, videoID, coachID, false, nil); err != nil {
		return err
	}
	s.publish(ctx, constant.EventVideoEnded, videoID)
	return nil
}

func (s *coachVideoService) Delete(ctx context.Context, coachID, videoID uuid.UUID) error {
	if err := s.ensureCoach(ctx, coachID); err != nil {
		return err
	}
	video, err := s.repo.FindCoachVideo(ctx, videoID)
	if err != nil {
		return err
	}
	if video.CoachID != coachID {
		return errs.ErrVideoNotFound
	}

	if err := s.storage.RemoveObject(ctx, s.bucket, video.ObjectName, minio.RemoveObjectOptions{}); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("object", video.ObjectName).Msg("failed to remove video object")
	}
	return s.repo.DeleteCoachVideo(ctx, videoID, coachID)
}

func (s *coachVideoService) publish(ctx context.Context, eventType string, videoID uuid.UUID) {
	event := dto.ChangeEvent{
		Type:     eventType,
		StreamID: videoID.String(),
	}
	if err := s.publisher.Publish(ctx, eventType, event); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("event", eventType).Msg("failed to publish change event")
	}
}
