package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"chatservice/backend/internal/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	maxConflictRetries = 5
	keySep             = "\x00"
)

// BadgerStore implements Storage on an embedded BadgerDB.
//
// Key layout:
//
//	user:{id}                          -> User
//	email:{email}                      -> user ID
//	chat:{id}                          -> Chat
//	chatpair:{lowID}\x00{highID}        -> chat ID
//	userchat:{userID}\x00{ts}\x00{chatID} -> empty, one per participant
//	msg:{chatID}\x00{ts}\x00{msgID}      -> ChatMessage
//
// Segments after the namespace are separated by a NUL byte, which IDs never
// contain, so one ID is never a prefix of another's keys. Timestamps are zero
// padded to 19 digits so keys sort chronologically and listings are reverse
// prefix scans. The userchat entry of a chat moves when the chat is touched.
type BadgerStore struct {
	db  *badger.DB
	log *slog.Logger
}

// OpenBadger opens or creates the database at path.
func OpenBadger(path string, log *slog.Logger) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", path, err)
	}
	log.Info("BadgerDB opened", "path", path)
	return NewBadgerStore(db, log), nil
}

func NewBadgerStore(db *badger.DB, log *slog.Logger) *BadgerStore {
	return &BadgerStore{db: db, log: log}
}

func userKey(id string) []byte     { return []byte("user:" + id) }
func emailKey(email string) []byte { return []byte("email:" + strings.ToLower(email)) }
func chatKey(id string) []byte     { return []byte("chat:" + id) }

func pairKey(participants []string) []byte {
	sorted := slices.Clone(participants)
	slices.Sort(sorted)
	return []byte("chatpair:" + strings.Join(sorted, keySep))
}

func userChatPrefix(userID string) []byte { return []byte("userchat:" + userID + keySep) }

func userChatKey(userID string, at time.Time, chatID string) []byte {
	return []byte(fmt.Sprintf("userchat:%s\x00%019d\x00%s", userID, at.UnixNano(), chatID))
}

func messagePrefix(chatID string) []byte { return []byte("msg:" + chatID + keySep) }

func messageKey(msg *models.ChatMessage) []byte {
	return []byte(fmt.Sprintf("msg:%s\x00%019d\x00%s", msg.ChatID, msg.Timestamp.UnixNano(), msg.ID))
}

func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return txn.Set(key, data)
}

func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// update runs fn in a read-write transaction, retrying on write conflicts.
func (s *BadgerStore) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.Update(fn)
		if errors.Is(err, badger.ErrConflict) && attempt < maxConflictRetries {
			s.log.Debug("Transaction conflict, retrying", "attempt", attempt+1)
			continue
		}
		return err
	}
}

// scanReverse walks the keys under prefix from the highest down, skipping
// offset items and handing at most limit items to fn.
func scanReverse(txn *badger.Txn, prefix []byte, offset, limit int, fn func(item *badger.Item) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	seek := append(slices.Clone(prefix), 0xFF)
	skipped, taken := 0, 0
	for it.Seek(seek); it.ValidForPrefix(prefix) && taken < limit; it.Next() {
		if skipped < offset {
			skipped++
			continue
		}
		if err := fn(it.Item()); err != nil {
			return err
		}
		taken++
	}
	return nil
}

func countPrefix(txn *badger.Txn, prefix []byte) int {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	n := 0
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		n++
	}
	return n
}

func (s *BadgerStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, userKey(id), &user)
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error("Failed to get user", "user_id", id, "error", err)
		}
		return nil, err
	}
	return &user, nil
}

func (s *BadgerStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte("user:")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var user models.User
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &user)
			}); err != nil {
				return err
			}
			users = append(users, user)
		}
		return nil
	})
	if err != nil {
		s.log.Error("Failed to list users", "error", err)
		return nil, fmt.Errorf("list users: %w", err)
	}
	slices.SortFunc(users, func(a, b models.User) int {
		return strings.Compare(a.Email, b.Email)
	})
	return users, nil
}

func (s *BadgerStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		if found, err := exists(txn, userKey(user.ID)); err != nil || found {
			return errors.Join(err, duplicateIf(found))
		}
		if user.Email != "" {
			if found, err := exists(txn, emailKey(user.Email)); err != nil || found {
				return errors.Join(err, duplicateIf(found))
			}
			if err := txn.Set(emailKey(user.Email), []byte(user.ID)); err != nil {
				return err
			}
		}
		return setJSON(txn, userKey(user.ID), user)
	})
}

func (s *BadgerStore) UpdateUser(ctx context.Context, user *models.User) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		var current models.User
		if err := getJSON(txn, userKey(user.ID), &current); err != nil {
			return err
		}
		if !strings.EqualFold(current.Email, user.Email) {
			if user.Email != "" {
				if found, err := exists(txn, emailKey(user.Email)); err != nil || found {
					return errors.Join(err, duplicateIf(found))
				}
				if err := txn.Set(emailKey(user.Email), []byte(user.ID)); err != nil {
					return err
				}
			}
			if current.Email != "" {
				if err := txn.Delete(emailKey(current.Email)); err != nil {
					return err
				}
			}
		}
		return setJSON(txn, userKey(user.ID), user)
	})
}

func (s *BadgerStore) DeleteUser(ctx context.Context, id string) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		var current models.User
		if err := getJSON(txn, userKey(id), &current); err != nil {
			return err
		}
		if current.Email != "" {
			if err := txn.Delete(emailKey(current.Email)); err != nil {
				return err
			}
		}
		return txn.Delete(userKey(id))
	})
}

func (s *BadgerStore) GetChat(ctx context.Context, id string) (*models.Chat, error) {
	var chat models.Chat
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, chatKey(id), &chat)
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error("Failed to get chat", "chat_id", id, "error", err)
		}
		return nil, err
	}
	return &chat, nil
}

func (s *BadgerStore) GetChatByParticipants(ctx context.Context, participants []string) (*models.Chat, error) {
	// Only two-party chats are ever written, so no other set can match.
	if !models.ValidParticipants(participants) {
		return nil, ErrNotFound
	}

	var chat models.Chat
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pairKey(participants))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		chatID, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getJSON(txn, chatKey(string(chatID)), &chat)
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error("Failed to find chat by participants", "participants", participants, "error", err)
		}
		return nil, err
	}
	return &chat, nil
}

func (s *BadgerStore) ListChatsForUser(ctx context.Context, userID string, offset, limit int) ([]models.Chat, error) {
	prefix := userChatPrefix(userID)
	var chats []models.Chat
	err := s.db.View(func(txn *badger.Txn) error {
		return scanReverse(txn, prefix, offset, limit, func(item *badger.Item) error {
			key := string(item.Key())
			chatID := key[strings.LastIndexByte(key, 0)+1:]

			var chat models.Chat
			if err := getJSON(txn, chatKey(chatID), &chat); err != nil {
				return fmt.Errorf("chat %s: %w", chatID, err)
			}
			chats = append(chats, chat)
			return nil
		})
	})
	if err != nil {
		s.log.Error("Failed to list chats", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list chats for %s: %w", userID, err)
	}
	return chats, nil
}

func (s *BadgerStore) CountChatsForUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.View(func(txn *badger.Txn) error {
		count = countPrefix(txn, userChatPrefix(userID))
		return nil
	})
	return count, err
}

// CreateChat also rejects a second chat for the same pair, which the other
// adapters leave to the service layer.
func (s *BadgerStore) CreateChat(ctx context.Context, chat *models.Chat) error {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		for _, key := range [][]byte{chatKey(chat.ID), pairKey(chat.Participants)} {
			if found, err := exists(txn, key); err != nil || found {
				return errors.Join(err, duplicateIf(found))
			}
		}
		if err := setJSON(txn, chatKey(chat.ID), chat); err != nil {
			return err
		}
		if err := txn.Set(pairKey(chat.Participants), []byte(chat.ID)); err != nil {
			return err
		}
		for _, participant := range chat.Participants {
			if err := txn.Set(userChatKey(participant, chat.LastModified, chat.ID), nil); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BadgerStore) TouchChat(ctx context.Context, id string, at time.Time) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		var chat models.Chat
		err := getJSON(txn, chatKey(id), &chat)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !at.After(chat.LastModified) {
			return nil
		}
		for _, participant := range chat.Participants {
			if err := txn.Delete(userChatKey(participant, chat.LastModified, id)); err != nil {
				return err
			}
			if err := txn.Set(userChatKey(participant, at, id), nil); err != nil {
				return err
			}
		}
		chat.LastModified = at.UTC()
		return setJSON(txn, chatKey(id), &chat)
	})
	if err != nil {
		s.log.Error("Failed to touch chat", "chat_id", id, "error", err)
		return fmt.Errorf("touch chat %s: %w", id, err)
	}
	return nil
}

func (s *BadgerStore) ListMessages(ctx context.Context, chatID string, offset, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := s.db.View(func(txn *badger.Txn) error {
		return scanReverse(txn, messagePrefix(chatID), offset, limit, func(item *badger.Item) error {
			var msg models.ChatMessage
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &msg)
			}); err != nil {
				return err
			}
			messages = append(messages, msg)
			return nil
		})
	})
	if err != nil {
		s.log.Error("Failed to list messages", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("list messages for %s: %w", chatID, err)
	}
	return messages, nil
}

func (s *BadgerStore) CountMessages(ctx context.Context, chatID string) (int, error) {
	var count int
	err := s.db.View(func(txn *badger.Txn) error {
		count = countPrefix(txn, messagePrefix(chatID))
		return nil
	})
	return count, err
}

func (s *BadgerStore) CreateMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	err := s.update(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, messageKey(msg), msg)
	})
	if err != nil {
		s.log.Error("Failed to save message", "chat_id", msg.ChatID, "error", err)
		return fmt.Errorf("create message in %s: %w", msg.ChatID, err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func duplicateIf(found bool) error {
	if found {
		return ErrDuplicate
	}
	return nil
}
