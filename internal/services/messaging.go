package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/repo"
)

// MaxMessageRunes caps the length of a thread message.
const MaxMessageRunes = 5000

// MessageInput is a message to post in a thread.
type MessageInput struct {
	Type     string
	Content  string
	VideoURL string
}

func (in MessageInput) normalize() (MessageInput, error) {
	in.Type = strings.TrimSpace(in.Type)
	if in.Type == "" {
		in.Type = domain.MessageText
	}
	in.Content = strings.TrimSpace(in.Content)
	in.VideoURL = strings.TrimSpace(in.VideoURL)
	switch in.Type {
	case domain.MessageText:
		if in.Content == "" {
			return in, invalidf("content is required")
		}
	case domain.MessageVideo:
		if in.VideoURL == "" {
			return in, invalidf("video_url is required for video messages")
		}
	default:
		return in, invalidf("message_type must be %q or %q", domain.MessageText, domain.MessageVideo)
	}
	if utf8.RuneCountInString(in.Content) > MaxMessageRunes {
		return in, invalidf("content too long: max %d characters", MaxMessageRunes)
	}
	return in, nil
}

// MessageView is a thread message with its sender's role.
type MessageView struct {
	ID          string      `json:"id"`
	ThreadID    string      `json:"thread_id"`
	SenderID    string      `json:"sender_id"`
	SenderRole  domain.Role `json:"sender_role"`
	MessageType string      `json:"message_type"`
	Content     string      `json:"content,omitempty"`
	VideoURL    string      `json:"video_url,omitempty"`
	IsRead      bool        `json:"is_read"`
	CreatedAt   time.Time   `json:"created_at"`
}

func qaView(m domain.QAMessage, roles map[string]domain.Role) MessageView {
	return MessageView{
		ID: m.ID, ThreadID: m.ThreadID, SenderID: m.SenderID, SenderRole: roles[m.SenderID],
		MessageType: m.MessageType, Content: m.Content, VideoURL: m.VideoURL,
		IsRead: m.IsRead, CreatedAt: m.CreatedAt,
	}
}

func talentView(m domain.TalentQAMessage, roles map[string]domain.Role) MessageView {
	return MessageView{
		ID: m.ID, ThreadID: m.ThreadID, SenderID: m.SenderID, SenderRole: roles[m.SenderID],
		MessageType: m.MessageType, Content: m.Content, VideoURL: m.VideoURL,
		IsRead: m.IsRead, CreatedAt: m.CreatedAt,
	}
}

// PostResult is a posted message. Replayed is set when an Idempotency-Key
// matched an earlier post and no new message was created.
type PostResult struct {
	Message  MessageView `json:"message"`
	Replayed bool        `json:"-"`
}

// idempotentCreate runs create with a fresh resource id unless (userID,
// scope, key) already names one. The key record and the resource are written
// in the same transaction, so a concurrent retry either replays or loses the
// unique race and replays.
func idempotentCreate(
	ctx context.Context, db *gorm.DB, userID, scope, key string, ttl time.Duration, now time.Time,
	create func(tx *gorm.DB, id string) error,
) (id string, replayed bool, err error) {
	if key != "" {
		rec, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
		if err == nil {
			return rec.ResourceID, true, nil
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return "", false, err
		}
		if err := repo.DeleteExpiredIdempotency(ctx, db, userID, scope, key, now); err != nil {
			return "", false, err
		}
	}

	id = uuid.NewString()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if key != "" {
			if _, err := repo.CreateIdempotency(ctx, tx, userID, scope, key, id, http.StatusCreated, ttl); err != nil {
				return err
			}
		}
		return create(tx, id)
	})
	if key != "" && errors.Is(err, repo.ErrDuplicate) {
		rec, gerr := repo.GetIdempotency(ctx, db, userID, scope, key, now)
		if gerr != nil {
			return "", false, gerr
		}
		return rec.ResourceID, true, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, false, nil
}

// senderRoles resolves the roles of every sender in ids.
func senderRoles(ctx context.Context, db *gorm.DB, ids ...string) (map[string]domain.Role, error) {
	seen := make(map[string]struct{}, len(ids))
	uniq := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	return repo.RolesByID(ctx, db, uniq)
}

// pushToken returns the stored Expo token of userID, or "" when unknown.
func pushToken(ctx context.Context, db *gorm.DB, userID string) string {
	u, err := repo.GetUser(ctx, db, userID)
	if err != nil {
		return ""
	}
	return u.PushToken
}

// displayNameOf returns the profile name of userID for notification copy.
func displayNameOf(ctx context.Context, db *gorm.DB, userID string, role domain.Role) (name, company string) {
	switch role {
	case domain.RoleFounder:
		if p, err := repo.GetFounderProfile(ctx, db, userID); err == nil {
			return p.FullName, p.CompanyName
		}
	case domain.RoleInvestor:
		if p, err := repo.GetInvestorProfile(ctx, db, userID); err == nil {
			return p.FullName, p.FirmName
		}
	case domain.RoleTalent:
		if p, err := repo.GetTalentProfile(ctx, db, userID); err == nil {
			return p.FullName, ""
		}
	}
	return "", ""
}
