package repositories

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"lingua-service/internal/models"
	"lingua-service/internal/rabbitmq"
)

var (
	ErrRequestForbidden  = errors.New("friend request not allowed")
	ErrRequestNotPending = errors.New("friend request is not pending")
	ErrRequestExists     = errors.New("pending friend request already exists")
)

const cardColumns = `u.id AS "user.id", u.full_name AS "user.full_name", u.profile_pic AS "user.profile_pic", u.native_language AS "user.native_language", u.learning_language AS "user.learning_language"`

type FriendRepository interface {
	CreateRequest(ctx context.Context, senderID, recipientID int64) (*models.FriendRequest, error)
	GetIncomingRequests(ctx context.Context, userID int64) ([]models.DirectedRequest, error)
	GetOutgoingRequests(ctx context.Context, userID int64) ([]models.DirectedRequest, error)
	AcceptRequest(ctx context.Context, requestID, userID int64) error
	DeclineRequest(ctx context.Context, requestID, userID int64) error
	ListFriends(ctx context.Context, userID int64) ([]models.User, error)
	HasPendingRequest(ctx context.Context, senderID, recipientID int64) (bool, error)
	AreFriends(ctx context.Context, userID, otherID int64) (bool, error)
	DeleteFriendship(ctx context.Context, userID, friendID int64) error
}

type friendRepository struct {
	db        *sqlx.DB
	publisher rabbitmq.Publisher
}

func NewFriendRepository(db *sqlx.DB, publisher rabbitmq.Publisher) FriendRepository {
	return &friendRepository{db: db, publisher: publisher}
}

func (r *friendRepository) CreateRequest(ctx context.Context, senderID, recipientID int64) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.QueryRowxContext(ctx, `
INSERT INTO friend_requests (sender_id, recipient_id, status)
VALUES ($1, $2, 'pending')
RETURNING id, sender_id, recipient_id, status, created_at
`, senderID, recipientID).StructScan(&req)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return nil, ErrRequestExists
			case "23503":
				// Foreign key violation: the target account was deleted
				// after the handler's existence check.
				return nil, sql.ErrNoRows
			}
		}
		return nil, err
	}

	r.logPublish(ctx, "friend.request.created", map[string]any{
		"request_id":   req.ID,
		"sender_id":    req.SenderID,
		"recipient_id": req.RecipientID,
		"created_at":   req.CreatedAt,
	})

	return &req, nil
}

func (r *friendRepository) GetIncomingRequests(ctx context.Context, userID int64) ([]models.DirectedRequest, error) {
	reqs := []models.DirectedRequest{}
	err := r.db.SelectContext(ctx, &reqs, `
SELECT fr.id, fr.sender_id, fr.recipient_id, fr.status, fr.created_at, `+cardColumns+`
FROM friend_requests fr
JOIN users u ON u.id = fr.sender_id
WHERE fr.recipient_id=$1 AND fr.status='pending'
ORDER BY fr.created_at DESC
`, userID)
	return reqs, err
}

func (r *friendRepository) GetOutgoingRequests(ctx context.Context, userID int64) ([]models.DirectedRequest, error) {
	reqs := []models.DirectedRequest{}
	err := r.db.SelectContext(ctx, &reqs, `
SELECT fr.id, fr.sender_id, fr.recipient_id, fr.status, fr.created_at, `+cardColumns+`
FROM friend_requests fr
JOIN users u ON u.id = fr.recipient_id
WHERE fr.sender_id=$1 AND fr.status='pending'
ORDER BY fr.created_at DESC
`, userID)
	return reqs, err
}

func (r *friendRepository) AcceptRequest(ctx context.Context, requestID, userID int64) error {
	var eventPayload map[string]any
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		req, err := r.lockRequest(ctx, tx, requestID, userID)
		if err != nil {
			return err
		}

		acceptedAt := time.Now().UTC()

		if _, err := tx.ExecContext(ctx, `UPDATE friend_requests SET status='accepted' WHERE id=$1`, requestID); err != nil {
			return err
		}

		// Both directed edges in one transaction keeps the friendship
		// symmetric: a reader never observes one side without the other.
		if err := r.insertFriendship(ctx, tx, req.SenderID, req.RecipientID); err != nil {
			return err
		}
		if err := r.insertFriendship(ctx, tx, req.RecipientID, req.SenderID); err != nil {
			return err
		}

		eventPayload = map[string]any{
			"user_id":     req.SenderID,
			"friend_id":   req.RecipientID,
			"accepted_at": acceptedAt,
		}
		return nil
	})
	if err != nil {
		return err
	}

	if eventPayload != nil {
		r.logPublish(ctx, "friendship.created", eventPayload)
	}

	return nil
}

func (r *friendRepository) DeclineRequest(ctx context.Context, requestID, userID int64) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := r.lockRequest(ctx, tx, requestID, userID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `UPDATE friend_requests SET status='declined' WHERE id=$1`, requestID)
		return err
	})
}

// lockRequest loads the request under FOR UPDATE so concurrent decisions on
// the same row serialize; the loser sees a non-pending status.
func (r *friendRepository) lockRequest(ctx context.Context, tx *sqlx.Tx, requestID, userID int64) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := tx.GetContext(ctx, &req, `
SELECT id, sender_id, recipient_id, status, created_at
FROM friend_requests WHERE id=$1
FOR UPDATE
`, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	if req.RecipientID != userID {
		return nil, ErrRequestForbidden
	}
	if req.Status != models.RequestStatusPending {
		return nil, ErrRequestNotPending
	}
	return &req, nil
}

func (r *friendRepository) ListFriends(ctx context.Context, userID int64) ([]models.User, error) {
	friends := []models.User{}
	err := r.db.SelectContext(ctx, &friends, `
SELECT u.id, u.email, u.password_hash, u.full_name, u.bio, u.profile_pic, u.native_language, u.learning_language, u.location, u.is_onboarded, u.created_at
FROM friendships f
JOIN users u ON u.id = f.friend_id
WHERE f.user_id=$1
ORDER BY u.id
`, userID)
	return friends, err
}

func (r *friendRepository) HasPendingRequest(ctx context.Context, senderID, recipientID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
SELECT EXISTS(
SELECT 1 FROM friend_requests
WHERE ((sender_id=$1 AND recipient_id=$2) OR (sender_id=$2 AND recipient_id=$1))
AND status='pending'
)
`, senderID, recipientID)
	return exists, err
}

func (r *friendRepository) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
SELECT EXISTS(
SELECT 1 FROM friendships WHERE user_id=$1 AND friend_id=$2
)
`, userID, otherID)
	return exists, err
}

func (r *friendRepository) DeleteFriendship(ctx context.Context, userID, friendID int64) error {
	_, err := r.db.ExecContext(ctx, `
DELETE FROM friendships
WHERE (user_id=$1 AND friend_id=$2) OR (user_id=$2 AND friend_id=$1)
`, userID, friendID)
	return err
}

func (r *friendRepository) insertFriendship(ctx context.Context, tx *sqlx.Tx, userID, friendID int64) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO friendships (user_id, friend_id) VALUES ($1, $2)
ON CONFLICT (user_id, friend_id) DO NOTHING
`, userID, friendID)
	return err
}

func (r *friendRepository) withTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *friendRepository) logPublish(ctx context.Context, eventType string, payload any) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, eventType, payload); err != nil {
		log.Printf("warning: failed to publish %s: %v", eventType, err)
	}
}
