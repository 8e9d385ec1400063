package hub

import (
	"encoding/json"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/saurabhraj25aug2004/alumni-association-website/internal/event"
)

const subjectPrefix = "alumni.events."

// Subject maps an entity lifecycle channel onto a NATS subject.
func Subject(channel event.Channel) string {
	entity, lifecycle, ok := event.ParseChannel(channel)
	if !ok {
		return ""
	}
	// subject tokens allow neither colons nor dashes; the original channel
	// travels inside the envelope, so the mapping need not be reversible
	return subjectPrefix + strings.ReplaceAll(string(entity), "-", "_") + "." + string(lifecycle)
}

// NATSPublisher forwards outbox envelopes onto NATS so every server
// instance's hub can fan them out to its own clients.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

func (p *NATSPublisher) Publish(env event.Envelope) {
	subject := Subject(env.Channel)
	if subject == "" {
		log.Warn().Str("channel", string(env.Channel)).Msg("unroutable event channel")
		return
	}
	data, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Msg("marshal nats envelope")
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("nats publish failed")
	}
}

// SubscribeEvents wires NATS-delivered envelopes into the hub broadcast.
func SubscribeEvents(conn *nats.Conn, h *Hub) (*nats.Subscription, error) {
	return conn.Subscribe(subjectPrefix+">", func(msg *nats.Msg) {
		var env event.Envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			log.Error().Err(err).Str("subject", msg.Subject).Msg("decode nats envelope")
			return
		}
		h.Broadcast(env)
	})
}
