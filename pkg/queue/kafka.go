package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Publisher sends domain events. Callers treat failures as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, key string, event Event) error
	Close() error
}

type KafkaProducer struct {
	writer *kafka.Writer
}

func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &KafkaProducer{writer: writer}
}

func (p *KafkaProducer) Publish(ctx context.Context, key string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  event.Timestamp,
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event; used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }

func (NopPublisher) Close() error { return nil }

type EventType string

const (
	EventUserCreated       EventType = "user_created"
	EventDiscussionCreated EventType = "discussion_created"
	EventDiscussionUpdated EventType = "discussion_updated"
	EventDiscussionDeleted EventType = "discussion_deleted"
	EventDiscussionLiked   EventType = "discussion_liked"
	EventDiscussionUnliked EventType = "discussion_unliked"
	EventCommentCreated    EventType = "comment_created"
	EventCommentDeleted    EventType = "comment_deleted"
	EventCommentLiked      EventType = "comment_liked"
	EventCommentUnliked    EventType = "comment_unliked"
	EventFollowCreated     EventType = "follow_created"
	EventFollowDeleted     EventType = "follow_deleted"
)

type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType EventType, data interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type UserEventData struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
}

type DiscussionEventData struct {
	DiscussionID uint     `json:"discussion_id"`
	UserID       uint     `json:"user_id"`
	Hashtags     []string `json:"hashtags,omitempty"`
}

type CommentEventData struct {
	CommentID    uint  `json:"comment_id"`
	DiscussionID uint  `json:"discussion_id"`
	UserID       uint  `json:"user_id"`
	ParentID     *uint `json:"parent_id,omitempty"`
}

type LikeEventData struct {
	UserID       uint `json:"user_id"`
	DiscussionID uint `json:"discussion_id,omitempty"`
	CommentID    uint `json:"comment_id,omitempty"`
}

type FollowEventData struct {
	FollowerID uint `json:"follower_id"`
	FollowedID uint `json:"followed_id"`
}
