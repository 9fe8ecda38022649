package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"
	"stream-service/constant"
	"stream-service/dto"
	"stream-service/entities"
	"stream-service/errs"
)

// fakeRepo mirrors the repository's row semantics in memory.
type fakeRepo struct {
	mu       sync.Mutex
	streams  map[string]*entities.LiveStream
	messages []*entities.StreamMessage
	profiles map[uuid.UUID]*entities.Profile
	roles    map[uuid.UUID][]constant.Role
	videos   map[uuid.UUID]*entities.CoachVideo

	insertMessageErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		streams:  make(map[string]*entities.LiveStream),
		profiles: make(map[uuid.UUID]*entities.Profile),
		roles:    make(map[uuid.UUID][]constant.Role),
		videos:   make(map[uuid.UUID]*entities.CoachVideo),
	}
}

func (r *fakeRepo) GetDB() *gorm.DB { return nil }

func (r *fakeRepo) CreateStream(ctx context.Context, stream *entities.LiveStream) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.streams {
		if existing.UserID == stream.UserID && existing.Status == constant.StreamStatusActive {
			return errs.ErrAlreadyLive
		}
	}
	copied := *stream
	r.streams[stream.StreamID] = &copied
	return nil
}

func (r *fakeRepo) EndStream(ctx context.Context, streamID string, ownerID uuid.UUID, endedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stream, ok := r.streams[streamID]
	if !ok || stream.UserID != ownerID {
		return errs.ErrStreamNotFound
	}
	stream.Status = constant.StreamStatusInactive
	stream.EndedAt = &endedAt
	return nil
}

func (r *fakeRepo) FindActiveByOwner(ctx context.Context, ownerID uuid.UUID) (*entities.LiveStream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stream := range r.streams {
		if stream.UserID == ownerID && stream.Status == constant.StreamStatusActive {
			copied := *stream
			return &copied, nil
		}
	}
	return nil, errs.ErrNoActiveStream
}

func (r *fakeRepo) FindByStreamID(ctx context.Context, streamID string) (*entities.LiveStream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stream, ok := r.streams[streamID]
	if !ok {
		return nil, errs.ErrStreamNotFound
	}
	copied := *stream
	return &copied, nil
}

func (r *fakeRepo) ListActiveStreams(ctx context.Context) ([]*entities.LiveStream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.LiveStream
	for _, stream := range r.streams {
		if stream.Status == constant.StreamStatusActive {
			copied := *stream
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeRepo) InsertMessage(ctx context.Context, msg *entities.StreamMessage) error {
	if r.insertMessageErr != nil {
		return r.insertMessageErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *msg
	r.messages = append(r.messages, &copied)
	return nil
}

func (r *fakeRepo) ListMessages(ctx context.Context, streamID uuid.UUID) ([]*entities.StreamMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.StreamMessage
	for _, msg := range r.messages {
		if msg.StreamID == streamID {
			copied := *msg
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeRepo) GetProfile(ctx context.Context, userID uuid.UUID) (*entities.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *profile
	return &copied, nil
}

func (r *fakeRepo) HasRole(ctx context.Context, userID uuid.UUID, role constant.Role) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, have := range r.roles[userID] {
		if have == role {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) CreateCoachVideo(ctx context.Context, video *entities.CoachVideo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *video
	r.videos[video.ID] = &copied
	return nil
}

func (r *fakeRepo) FindCoachVideo(ctx context.Context, videoID uuid.UUID) (*entities.CoachVideo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	video, ok := r.videos[videoID]
	if !ok {
		return nil, errs.ErrVideoNotFound
	}
	copied := *video
	return &copied, nil
}

func (r *fakeRepo) ListCoachVideos(ctx context.Context, coachID uuid.UUID) ([]*entities.CoachVideo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.CoachVideo
	for _, video := range r.videos {
		if video.CoachID == coachID {
			copied := *video
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListLiveCoachVideos(ctx context.Context) ([]*entities.CoachVideo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.CoachVideo
	for _, video := range r.videos {
		if video.IsLive {
			copied := *video
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRepo) SetCoachVideoLive(ctx context.Context, videoID, coachID uuid.UUID, isLive bool, startedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	video, ok := r.videos[videoID]
	if !ok || video.CoachID != coachID {
		return errs.ErrVideoNotFound
	}
	video.IsLive = isLive
	video.LiveStartedAt = startedAt
	return nil
}

func (r *fakeRepo) DeleteCoachVideo(ctx context.Context, videoID, coachID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	video, ok := r.videos[videoID]
	if !ok || video.CoachID != coachID {
		return errs.ErrVideoNotFound
	}
	delete(r.videos, videoID)
	return nil
}

type publishedEvent struct {
	routingKey string
	event      dto.ChangeEvent
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, routingKey string, event dto.ChangeEvent) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{routingKey: routingKey, event: event})
	return nil
}

func (p *fakePublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if s.putErr != nil {
		return minio.UploadInfo{}, s.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[bucketName+"/"+objectName] = data
	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: int64(len(data))}, nil
}

func (s *fakeStorage) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := bucketName + "/" + objectName
	if _, ok := s.objects[key]; !ok {
		return errors.New("object not found")
	}
	delete(s.objects, key)
	return nil
}
