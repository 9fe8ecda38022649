package handler

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"stream-service/constant"
	"stream-service/dto"
	"stream-service/pkg/ws"
	"stream-service/service"
)

type ServiceDependencies struct {
	StreamService service.StreamService
	ChatService   service.ChatService
	CoachService  service.CoachVideoService
	Hub           *ws.Hub
}

// EventHandler relays change events from the stream exchange to this
// instance's websocket feeds. Chat inserts go to the session topic;
// lifecycle events additionally hit the lobby so discovery clients can
// refetch the active list.
func EventHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var event dto.ChangeEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal change event")
		return err
	}

	deps.Hub.Publish(event.StreamID, msg.Body)

	switch event.Type {
	case constant.EventStreamCreated, constant.EventStreamEnded,
		constant.EventVideoLive, constant.EventVideoEnded:
		deps.Hub.Publish(constant.LobbyTopic, msg.Body)
	}

	return nil
}
