package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"stream-service/constant"
	"stream-service/dto"
	"stream-service/entities"
	"stream-service/errs"
	"stream-service/pkg/token"
	"stream-service/repository"
)

// EventPublisher emits row-change events to the stream exchange. Fan-out is
// best effort: publish failures are logged, never surfaced to the caller.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event dto.ChangeEvent) error
}

// StreamService mediates every state transition of a broadcast session and
// mints scoped access tokens. All operations take the already-authenticated
// identity explicitly; nothing is read from ambient request state.
type StreamService interface {
	Create(ctx context.Context, userID uuid.UUID, title string) (*dto.CreateStreamResponse, error)
	End(ctx context.Context, userID uuid.UUID, streamID string) error
	ViewerToken(ctx context.Context, userID uuid.UUID, streamID string) (*dto.ViewerTokenResponse, error)
	Rejoin(ctx context.Context, userID uuid.UUID) (*dto.RejoinResponse, error)
	ListActive(ctx context.Context) ([]*entities.LiveStream, error)
}

type streamService struct {
	repo      repository.StreamRepository
	signer    *token.Signer
	publisher EventPublisher
}

func NewStreamService(repo repository.StreamRepository, signer *token.Signer, publisher EventPublisher) StreamService {
	return &streamService{
		repo:      repo,
		signer:    signer,
		publisher: publisher,
	}
}

func (s *streamService) Create(ctx context.Context, userID uuid.UUID, title string) (*dto.CreateStreamResponse, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errs.ErrEmptyTitle
	}

	now := time.Now()
	streamID := fmt.Sprintf("stream_%s_%d", userID, now.UnixMilli())

	accessToken, err := s.signer.Mint(userID.String(), now)
	if err != nil {
		return nil, err
	}

	stream := &entities.LiveStream{
		ID:          uuid.New(),
		UserID:      userID,
		StreamID:    streamID,
		StreamToken: accessToken,
		Title:       strings.TrimSpace(title),
		Status:      constant.StreamStatusActive,
		CreatedAt:   now,
	}
	if err := s.repo.CreateStream(ctx, stream); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("stream_id", streamID).
		Str("user_id", userID.String()).
		Msg("stream created")

	s.publish(ctx, constant.EventStreamCreated, dto.ChangeEvent{
		Type:     constant.EventStreamCreated,
		StreamID: stream.ID.String(),
	})

	return &dto.CreateStreamResponse{
		StreamID: streamID,
		Token:    accessToken,
		APIKey:   s.signer.KeyID(),
		Data:     stream,
	}, nil
}

func (s *streamService) End(ctx context.Context, userID uuid.UUID, streamID string) error {
	if err := s.repo.EndStream(ctx, streamID, userID, time.Now()); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("stream_id", streamID).
		Str("user_id", userID.String()).
		Msg("stream ended")

	// Events carry the row id so session-topic subscribers see the same
	// topic for the whole lifecycle.
	eventStreamID := streamID
	if row, err := s.repo.FindByStreamID(ctx, streamID); err == nil {
		eventStreamID = row.ID.String()
	}
	s.publish(ctx, constant.EventStreamEnded, dto.ChangeEvent{
		Type:     constant.EventStreamEnded,
		StreamID: eventStreamID,
	})
	return nil
}

// ViewerToken mints a credential scoped to the requesting viewer, not the
// broadcaster. Session status is not re-validated here: a token minted for
// a just-ended session is inert, the provider has nothing to relay.
func (s *streamService) ViewerToken(ctx context.Context, userID uuid.UUID, streamID string) (*dto.ViewerTokenResponse, error) {
	accessToken, err := s.signer.Mint(userID.String(), time.Now())
	if err != nil {
		return nil, err
	}

	return &dto.ViewerTokenResponse{
		Token:  accessToken,
		APIKey: s.signer.KeyID(),
		UserID: userID,
	}, nil
}

// Rejoin re-attaches the owner to their active session after client-side
// state loss. A fresh token is always minted.
func (s *streamService) Rejoin(ctx context.Context, userID uuid.UUID) (*dto.RejoinResponse, error) {
	stream, err := s.repo.FindActiveByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.signer.Mint(userID.String(), time.Now())
	if err != nil {
		return nil, err
	}

	return &dto.RejoinResponse{
		StreamID: stream.StreamID,
		Token:    accessToken,
		APIKey:   s.signer.KeyID(),
		Data:     stream,
	}, nil
}

func (s *streamService) ListActive(ctx context.Context) ([]*entities.LiveStream, error) {
	return s.repo.ListActiveStreams(ctx)
}

func (s *streamService) publish(ctx context.Context, routingKey string, event dto.ChangeEvent) {
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("event", event.Type).Msg("failed to publish change event")
	}
}
