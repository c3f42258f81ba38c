package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// ParticipantCount is the exact number of participants of every chat.
const ParticipantCount = 2

// Chat represents a 1-on-1 conversation between two users.
// Participants are held by value; messages reference the chat by ID and are
// never embedded here.
type Chat struct {
	// ID is the unique identifier of the chat (UUID), generated on creation.
	ID string `gorm:"primaryKey" json:"id" bson:"_id"`
	// Participants is the unordered set of the two participant user IDs.
	Participants pq.StringArray `gorm:"type:text[];not null;index:idx_chats_participants,type:gin" json:"participants" bson:"participants"`
	// LastModified is advanced to the timestamp of every accepted message.
	LastModified time.Time `gorm:"not null;index" json:"lastModified" bson:"lastModified"`
}

// NewChat builds a chat between the given participants with a fresh ID.
func NewChat(participants []string, now time.Time) *Chat {
	return &Chat{
		ID:           uuid.New().String(),
		Participants: pq.StringArray(append([]string(nil), participants...)),
		LastModified: now.UTC(),
	}
}

// BeforeCreate generates the chat ID when it was not assigned by the caller.
func (c *Chat) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// HasParticipant reports whether userID is one of the chat participants.
func (c *Chat) HasParticipant(userID string) bool {
	return lo.Contains(c.Participants, userID)
}

// OtherParticipants returns every participant except userID.
func (c *Chat) OtherParticipants(userID string) []string {
	return lo.Without([]string(c.Participants), userID)
}

// SameParticipants reports whether a and b hold exactly the same set of IDs.
// Order is irrelevant, cardinality is not: a chat with a third participant is
// never equal to a two-party request.
func SameParticipants(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	return lo.Every(a, b) && lo.Every(b, a)
}

// ValidParticipants reports whether ids form a valid chat pair: exactly two
// distinct, non-empty identifiers.
func ValidParticipants(ids []string) bool {
	if len(ids) != ParticipantCount {
		return false
	}
	if lo.Contains(ids, "") {
		return false
	}
	return len(lo.Uniq(ids)) == ParticipantCount
}
