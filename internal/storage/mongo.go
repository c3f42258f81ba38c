package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chatservice/backend/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	usersCollection    = "Users"
	chatsCollection    = "Chats"
	messagesCollection = "ChatMessages"
)

const mongoTimeout = 10 * time.Second

// MongoStore implements Storage on MongoDB.
type MongoStore struct {
	client   *mongo.Client
	users    *mongo.Collection
	chats    *mongo.Collection
	messages *mongo.Collection
	log      *slog.Logger
}

// OpenMongo connects to MongoDB, verifies the connection and makes sure the
// listing indexes exist.
func OpenMongo(ctx context.Context, uri, database string, log *slog.Logger) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(mongoTimeout).
		SetConnectTimeout(mongoTimeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s := NewMongoStore(client, database, log)
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info("MongoDB connection established", "database", database)
	return s, nil
}

// NewMongoStore binds the store to the collections of database.
func NewMongoStore(client *mongo.Client, database string, log *slog.Logger) *MongoStore {
	db := client.Database(database)
	return &MongoStore{
		client:   client,
		users:    db.Collection(usersCollection),
		chats:    db.Collection(chatsCollection),
		messages: db.Collection(messagesCollection),
		log:      log,
	}
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.chats.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "participants", Value: 1}, {Key: "lastModified", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create chat indexes: %w", err)
	}
	_, err = s.messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "chatId", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create message indexes: %w", err)
	}
	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.log.Error("Failed to get user", "user_id", id, "error", err)
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &user, nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		s.log.Error("Failed to list users", "error", err)
		return nil, fmt.Errorf("list users: %w", err)
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	_, err := s.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		s.log.Error("Failed to create user", "user_id", user.ID, "error", err)
		return fmt.Errorf("create user %s: %w", user.ID, err)
	}
	return nil
}

func (s *MongoStore) UpdateUser(ctx context.Context, user *models.User) error {
	result, err := s.users.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		s.log.Error("Failed to update user", "user_id", user.ID, "error", err)
		return fmt.Errorf("update user %s: %w", user.ID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteUser(ctx context.Context, id string) error {
	result, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		s.log.Error("Failed to delete user", "user_id", id, "error", err)
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) GetChat(ctx context.Context, id string) (*models.Chat, error) {
	var chat models.Chat
	err := s.chats.FindOne(ctx, bson.M{"_id": id}).Decode(&chat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.log.Error("Failed to get chat", "chat_id", id, "error", err)
		return nil, fmt.Errorf("get chat %s: %w", id, err)
	}
	return &chat, nil
}

func (s *MongoStore) GetChatByParticipants(ctx context.Context, participants []string) (*models.Chat, error) {
	// $all with $size is set equality for distinct IDs.
	filter := bson.M{"participants": bson.M{"$all": participants, "$size": len(participants)}}

	var chat models.Chat
	err := s.chats.FindOne(ctx, filter).Decode(&chat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.log.Error("Failed to find chat by participants", "participants", participants, "error", err)
		return nil, fmt.Errorf("find chat by participants: %w", err)
	}
	return &chat, nil
}

func (s *MongoStore) ListChatsForUser(ctx context.Context, userID string, offset, limit int) ([]models.Chat, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "lastModified", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := s.chats.Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		s.log.Error("Failed to list chats", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list chats for %s: %w", userID, err)
	}
	var chats []models.Chat
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, fmt.Errorf("decode chats: %w", err)
	}
	return chats, nil
}

func (s *MongoStore) CountChatsForUser(ctx context.Context, userID string) (int, error) {
	count, err := s.chats.CountDocuments(ctx, bson.M{"participants": userID})
	if err != nil {
		return 0, fmt.Errorf("count chats for %s: %w", userID, err)
	}
	return int(count), nil
}

func (s *MongoStore) CreateChat(ctx context.Context, chat *models.Chat) error {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	_, err := s.chats.InsertOne(ctx, chat)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		s.log.Error("Failed to create chat", "chat_id", chat.ID, "error", err)
		return fmt.Errorf("create chat %s: %w", chat.ID, err)
	}
	return nil
}

func (s *MongoStore) TouchChat(ctx context.Context, id string, at time.Time) error {
	_, err := s.chats.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$max": bson.M{"lastModified": at}})
	if err != nil {
		s.log.Error("Failed to touch chat", "chat_id", id, "error", err)
		return fmt.Errorf("touch chat %s: %w", id, err)
	}
	return nil
}

func (s *MongoStore) ListMessages(ctx context.Context, chatID string, offset, limit int) ([]models.ChatMessage, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := s.messages.Find(ctx, bson.M{"chatId": chatID}, opts)
	if err != nil {
		s.log.Error("Failed to list messages", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("list messages for %s: %w", chatID, err)
	}
	var messages []models.ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return messages, nil
}

func (s *MongoStore) CountMessages(ctx context.Context, chatID string) (int, error) {
	count, err := s.messages.CountDocuments(ctx, bson.M{"chatId": chatID})
	if err != nil {
		return 0, fmt.Errorf("count messages for %s: %w", chatID, err)
	}
	return int(count), nil
}

func (s *MongoStore) CreateMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if _, err := s.messages.InsertOne(ctx, msg); err != nil {
		s.log.Error("Failed to save message", "chat_id", msg.ChatID, "error", err)
		return fmt.Errorf("create message in %s: %w", msg.ChatID, err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
