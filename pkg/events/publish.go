package events

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog/log"
)

// Publisher is the narrow port the services use to announce dialogue
// lifecycle events. Failures to publish are never allowed to fail the
// operation that triggered them.
type Publisher interface {
	Publish(e Event) error
	PublishBlind(e Event)
}

// PublisherManager distributes events to a set of watermill publishers,
// each subscribed under a topic. It keeps a sequence number for outgoing
// messages in the order they are handled by Publish.
type PublisherManager struct {
	publishers     map[string][]message.Publisher
	sequenceNumber uint64
	mutex          sync.Mutex
}

func NewPublisherManager() *PublisherManager {
	return &PublisherManager{
		publishers: make(map[string][]message.Publisher),
	}
}

var _ Publisher = (*PublisherManager)(nil)

func (s *PublisherManager) SubscribePublisher(topic string, pub message.Publisher) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.publishers[topic] = append(s.publishers[topic], pub)
}

func (s *PublisherManager) Publish(e Event) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), b)
	msg.Metadata.Set("sequence_number", fmt.Sprintf("%d", s.sequenceNumber))
	s.sequenceNumber++

	for topic, pubs := range s.publishers {
		for _, pub := range pubs {
			if err := pub.Publish(topic, msg); err != nil {
				log.Warn().Err(err).Str("topic", topic).Msg("failed to publish event")
			}
		}
	}

	return nil
}

func (s *PublisherManager) PublishBlind(e Event) {
	if err := s.Publish(e); err != nil {
		log.Warn().Err(err).Str("event_type", string(e.Type)).Msg("failed to publish event")
	}
}

// NewGoChannelManager wires a PublisherManager to an in-process gochannel
// pubsub on the given topic and returns both, the subscriber side being what
// callers hand to consumers.
func NewGoChannelManager(topic string) (*PublisherManager, message.Subscriber) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	mgr := NewPublisherManager()
	mgr.SubscribePublisher(topic, pubsub)
	return mgr, pubsub
}

// NullPublisher drops every event. Used when no event consumer is wired.
type NullPublisher struct{}

var _ Publisher = (*NullPublisher)(nil)

func (NullPublisher) Publish(Event) error { return nil }
func (NullPublisher) PublishBlind(Event)  {}
