package repositories

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"lingua-service/internal/models"
	"lingua-service/internal/rabbitmq"
)

var ErrEmailTaken = errors.New("email already in use")

const userColumns = `id, email, password_hash, full_name, bio, profile_pic, native_language, learning_language, location, is_onboarded, created_at`

type UserRepository interface {
	Create(ctx context.Context, email, passwordHash, fullName, profilePic string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Onboard(ctx context.Context, id int64, fullName, bio, nativeLanguage, learningLanguage, location string) (*models.User, error)
	UpdateLanguages(ctx context.Context, id int64, nativeLanguage, learningLanguage string) (*models.User, error)
	Search(ctx context.Context, actorID int64, query string) ([]models.User, error)
	Recommend(ctx context.Context, actorID int64) ([]models.User, error)
	Delete(ctx context.Context, id int64) error
}

type userRepository struct {
	db        *sqlx.DB
	publisher rabbitmq.Publisher
}

func NewUserRepository(db *sqlx.DB, publisher rabbitmq.Publisher) UserRepository {
	return &userRepository{db: db, publisher: publisher}
}

func (r *userRepository) Create(ctx context.Context, email, passwordHash, fullName, profilePic string) (*models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `
INSERT INTO users (email, password_hash, full_name, profile_pic)
VALUES ($1, $2, $3, $4)
RETURNING `+userColumns+`
`, email, passwordHash, fullName, profilePic).StructScan(&user)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	r.logPublish(ctx, "user.registered", map[string]any{
		"user_id":    user.ID,
		"email":      user.Email,
		"created_at": user.CreatedAt,
	})

	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Onboard(ctx context.Context, id int64, fullName, bio, nativeLanguage, learningLanguage, location string) (*models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `
UPDATE users
SET full_name=$2, bio=$3, native_language=$4, learning_language=$5, location=$6, is_onboarded=TRUE
WHERE id=$1
RETURNING `+userColumns+`
`, id, fullName, bio, nativeLanguage, learningLanguage, location).StructScan(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateLanguages(ctx context.Context, id int64, nativeLanguage, learningLanguage string) (*models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `
UPDATE users SET native_language=$2, learning_language=$3
WHERE id=$1
RETURNING `+userColumns+`
`, id, nativeLanguage, learningLanguage).StructScan(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// likeEscaper neutralizes pattern metacharacters so a query term is matched
// as a literal substring. Without it, q=% would list the entire user table.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *userRepository) Search(ctx context.Context, actorID int64, query string) ([]models.User, error) {
	users := []models.User{}
	err := r.db.SelectContext(ctx, &users, `
SELECT `+userColumns+`
FROM users
WHERE id <> $1 AND full_name ILIKE '%' || $2 || '%' ESCAPE '\'
ORDER BY id
`, actorID, likeEscaper.Replace(query))
	return users, err
}

// Recommend returns onboarded users who are neither the actor nor already
// the actor's friends. Optional profile fields are coalesced so a sparse
// profile never fails the listing.
func (r *userRepository) Recommend(ctx context.Context, actorID int64) ([]models.User, error) {
	users := []models.User{}
	err := r.db.SelectContext(ctx, &users, `
SELECT id, email, password_hash, full_name,
	COALESCE(bio, '') AS bio,
	COALESCE(profile_pic, '') AS profile_pic,
	COALESCE(native_language, '') AS native_language,
	COALESCE(learning_language, '') AS learning_language,
	COALESCE(location, '') AS location,
	is_onboarded, created_at
FROM users u
WHERE u.id <> $1
AND u.is_onboarded = TRUE
AND NOT EXISTS (
	SELECT 1 FROM friendships f WHERE f.user_id=$1 AND f.friend_id=u.id
)
ORDER BY u.id
`, actorID)
	return users, err
}

// Delete removes the account. Friendship edges and friend requests naming
// the id go with it through the ON DELETE CASCADE foreign keys, in the same
// implicit transaction as the user row, so no dangling references survive
// even when a concurrent accept is mid-flight: the user-row delete waits on
// its row locks and the cascade then sweeps whatever the accept committed.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return sql.ErrNoRows
	}

	r.logPublish(ctx, "user.deleted", map[string]any{"user_id": id})
	return nil
}

func (r *userRepository) logPublish(ctx context.Context, eventType string, payload any) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, eventType, payload); err != nil {
		log.Printf("warning: failed to publish %s: %v", eventType, err)
	}
}
