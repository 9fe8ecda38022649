package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"stream-service/constant"
	"stream-service/dto"
	"stream-service/entities"
	"stream-service/errs"
	"stream-service/repository"
)

// fallbackDisplayName is stamped when the sender has no profile row.
const fallbackDisplayName = "Anonymous"

// ChatService is the append-only, session-scoped message relay. Messages
// are never edited or deleted; ordering is created_at ascending.
type ChatService interface {
	Send(ctx context.Context, userID uuid.UUID, streamID uuid.UUID, content string) (*entities.StreamMessage, error)
	History(ctx context.Context, streamID uuid.UUID) ([]*entities.StreamMessage, error)
}

type chatService struct {
	repo      repository.StreamRepository
	publisher EventPublisher
}

func NewChatService(repo repository.StreamRepository, publisher EventPublisher) ChatService {
	return &chatService{
		repo:      repo,
		publisher: publisher,
	}
}

// Send stamps the sender's display name at send time. A later profile
// rename does not relabel old messages.
func (s *chatService) Send(ctx context.Context, userID uuid.UUID, streamID uuid.UUID, content string) (*entities.StreamMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errs.ErrEmptyContent
	}

	displayName := fallbackDisplayName
	if profile, err := s.repo.GetProfile(ctx, userID); err == nil && profile.DisplayName != "" {
		displayName = profile.DisplayName
	}

	msg := &entities.StreamMessage{
		ID:          uuid.New(),
		StreamID:    streamID,
		UserID:      userID,
		DisplayName: displayName,
		Content:     content,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.InsertMessage(ctx, msg); err != nil {
		return nil, err
	}

	event := dto.ChangeEvent{
		Type:     constant.EventMessageCreated,
		StreamID: streamID.String(),
		Message:  msg,
	}
	if err := s.publisher.Publish(ctx, constant.EventMessageCreated, event); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Str("stream_id", streamID.String()).
			Msg("failed to publish chat event")
	}

	return msg, nil
}

func (s *chatService) History(ctx context.Context, streamID uuid.UUID) ([]*entities.StreamMessage, error) {
	return s.repo.ListMessages(ctx, streamID)
}
