// internal/app/store/chats/chatstore.go

// Package chatstore manages a project's channels and messages.
//
// Every project has an implicit "general" channel that is never
// persisted; listings synthesize it and messages reference it by the
// fixed id. Named channels live in the chats collection.
//
// Message ordering: each send allocates the next value of a per-chat
// counter and publishes to the realtime hub while holding that chat's
// send lock, so the live stream observes messages in sequence order.
package chatstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/collabhub/internal/app/system/limits"
	"github.com/dalemusser/collabhub/internal/app/system/realtime"
	"github.com/dalemusser/collabhub/internal/app/system/sanitize"
	"github.com/dalemusser/collabhub/internal/app/system/txn"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	db       *mongo.Database
	chats    *mongo.Collection
	messages *mongo.Collection
	counters *mongo.Collection
	hub      *realtime.Hub

	mu    sync.Mutex
	locks map[string]*sync.Mutex // chat key -> send lock
}

var (
	ErrChatNotFound = errors.New("channel not found in this project")
	// ErrReservedName rejects creating a channel named "general"; that
	// channel is implicit and always present.
	ErrReservedName = errors.New(`"general" is a reserved channel name`)
	// ErrGeneralImmutable rejects renaming or deleting the implicit channel.
	ErrGeneralImmutable = errors.New("the general channel cannot be renamed or deleted")
	ErrEmptyChannelName = errors.New("channel name must not be empty")
	ErrEmptyMessage     = errors.New("message text must not be empty")
	ErrMessageTooLong   = errors.New("message text exceeds the maximum length")
)

func New(db *mongo.Database, hub *realtime.Hub) *Store {
	return &Store{
		db:       db,
		chats:    db.Collection("chats"),
		messages: db.Collection("messages"),
		counters: db.Collection("chat_counters"),
		hub:      hub,
		locks:    make(map[string]*sync.Mutex),
	}
}

// ListChannels returns the project's channels: the implicit general
// channel first, then named channels in creation order.
func (s *Store) ListChannels(ctx context.Context, projectID primitive.ObjectID) ([]models.Channel, error) {
	out := []models.Channel{{
		ID:        models.GeneralChatID,
		ProjectID: projectID,
		Name:      "general",
		Implicit:  true,
	}}

	cur, err := s.chats.Find(ctx, bson.M{"project_id": projectID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var chats []models.Chat
	if err := cur.All(ctx, &chats); err != nil {
		return nil, err
	}
	for _, c := range chats {
		created := c.CreatedAt
		out = append(out, models.Channel{
			ID:        c.ID.Hex(),
			ProjectID: c.ProjectID,
			Name:      c.Name,
			CreatedAt: &created,
		})
	}
	return out, nil
}

// CreateChannel adds a named channel to the project.
func (s *Store) CreateChannel(ctx context.Context, projectID primitive.ObjectID, name string) (models.Chat, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Chat{}, ErrEmptyChannelName
	}
	if strings.EqualFold(name, "general") {
		return models.Chat{}, ErrReservedName
	}
	c := models.Chat{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.chats.InsertOne(ctx, c); err != nil {
		return models.Chat{}, err
	}
	return c, nil
}

// RenameChannel renames a named channel. The general channel is immune.
func (s *Store) RenameChannel(ctx context.Context, projectID primitive.ObjectID, chatID, name string) error {
	if chatID == models.GeneralChatID {
		return ErrGeneralImmutable
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyChannelName
	}
	if strings.EqualFold(name, "general") {
		return ErrReservedName
	}
	oid, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return ErrChatNotFound
	}
	res, err := s.chats.UpdateOne(ctx,
		bson.M{"_id": oid, "project_id": projectID},
		bson.M{"$set": bson.M{"name": name}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrChatNotFound
	}
	return nil
}

// DeleteChannel removes a named channel along with its messages and
// sequence counter. The general channel is immune.
func (s *Store) DeleteChannel(ctx context.Context, projectID primitive.ObjectID, chatID string) error {
	if chatID == models.GeneralChatID {
		return ErrGeneralImmutable
	}
	oid, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return ErrChatNotFound
	}

	var deleted int64
	err = txn.WithTransaction(ctx, s.db.Client(), func(ctx context.Context) error {
		if _, err := s.messages.DeleteMany(ctx, bson.M{"project_id": projectID, "chat_id": chatID}); err != nil {
			return err
		}
		if _, err := s.counters.DeleteOne(ctx, bson.M{"_id": counterID(projectID, chatID)}); err != nil {
			return err
		}
		res, err := s.chats.DeleteOne(ctx, bson.M{"_id": oid, "project_id": projectID})
		if err != nil {
			return err
		}
		deleted = res.DeletedCount
		return nil
	})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrChatNotFound
	}
	return nil
}

// chatExists reports whether chatID names a channel of the project.
// The general channel always exists.
func (s *Store) chatExists(ctx context.Context, projectID primitive.ObjectID, chatID string) (bool, error) {
	if chatID == models.GeneralChatID {
		return true, nil
	}
	oid, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return false, nil
	}
	n, err := s.chats.CountDocuments(ctx, bson.M{"_id": oid, "project_id": projectID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func counterID(projectID primitive.ObjectID, chatID string) string {
	return fmt.Sprintf("%s/%s", projectID.Hex(), chatID)
}

// nextSeq allocates the next sequence number for a chat via an atomic
// upsert-increment. The first message of a chat gets seq 1.
func (s *Store) nextSeq(ctx context.Context, projectID primitive.ObjectID, chatID string) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": counterID(projectID, chatID)},
		bson.M{
			"$inc":         bson.M{"seq": 1},
			"$setOnInsert": bson.M{"project_id": projectID},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}

// sendLock returns the per-chat mutex, creating it on first use. Locks
// are never removed; a chat's lock is a few bytes and chats are few.
func (s *Store) sendLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// SendMessage persists a message and publishes it to live subscribers.
// Text is stripped of HTML and must be non-empty after trimming. The
// chat's send lock spans sequence allocation, insert, and publish, so
// subscribers observe the live stream in sequence order.
func (s *Store) SendMessage(ctx context.Context, projectID primitive.ObjectID, chatID string, senderID primitive.ObjectID, senderName, text string) (models.Message, error) {
	text = sanitize.Text(text)
	if text == "" {
		return models.Message{}, ErrEmptyMessage
	}
	if len(text) > limits.MaxMessageTextSize {
		return models.Message{}, ErrMessageTooLong
	}

	ok, err := s.chatExists(ctx, projectID, chatID)
	if err != nil {
		return models.Message{}, err
	}
	if !ok {
		return models.Message{}, ErrChatNotFound
	}

	lock := s.sendLock(counterID(projectID, chatID))
	lock.Lock()
	defer lock.Unlock()

	seq, err := s.nextSeq(ctx, projectID, chatID)
	if err != nil {
		return models.Message{}, err
	}
	msg := models.Message{
		ID:         primitive.NewObjectID(),
		ProjectID:  projectID,
		ChatID:     chatID,
		SenderID:   senderID,
		SenderName: senderName,
		Text:       text,
		Seq:        seq,
		Timestamp:  time.Now().UTC(),
	}
	if _, err := s.messages.InsertOne(ctx, msg); err != nil {
		return models.Message{}, err
	}
	if s.hub != nil {
		s.hub.Publish(msg)
	}
	return msg, nil
}

// ListMessages returns a chat's messages with seq > afterSeq, in
// sequence order. limit <= 0 means no limit.
func (s *Store) ListMessages(ctx context.Context, projectID primitive.ObjectID, chatID string, afterSeq int64, limit int64) ([]models.Message, error) {
	ok, err := s.chatExists(ctx, projectID, chatID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrChatNotFound
	}

	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.messages.Find(ctx, bson.M{
		"project_id": projectID,
		"chat_id":    chatID,
		"seq":        bson.M{"$gt": afterSeq},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
