package constant

type StreamStatus string

const (
	StreamStatusActive   StreamStatus = "active"
	StreamStatusInactive StreamStatus = "inactive"
)

func (s StreamStatus) String() string {
	return string(s)
}

type Role string

const (
	RoleCoach Role = "coach"
	RoleUser  Role = "user"
)

func (r Role) String() string {
	return string(r)
}

// Routing keys for change events published on the stream exchange.
const (
	EventStreamCreated  = "stream.created"
	EventStreamEnded    = "stream.ended"
	EventMessageCreated = "message.created"
	EventVideoLive      = "video.live"
	EventVideoEnded     = "video.ended"
)

// LobbyTopic is the fan-out topic for stream discovery clients. Session
// chat uses the session's database id as its topic.
const LobbyTopic = "streams"

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}
