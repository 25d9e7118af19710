package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"diary-backend/internal/domains/user/model"
	"diary-backend/internal/shared/auth"
	"diary-backend/pkg/cache"
	"diary-backend/pkg/database"
)

const (
	userCacheTTL    = 10 * time.Minute
	emailConstraint = "users_email_key"
)

func userCacheKey(id int64) string {
	return "user:" + strconv.FormatInt(id, 10)
}

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================

// postgresRepository reads users by id through the cache; every write
// drops the cached copy.
type postgresRepository struct {
	db    database.DBTX
	cache cache.Cache // optional
}

func NewPostgresRepository(db database.DBTX, cache cache.Cache) Repository {
	return &postgresRepository{db: db, cache: cache}
}

const userColumns = `id, name, email, role, bio, is_active, last_profile_update, created_at, updated_at`

func scanUser(row pgx.Row, extra ...any) (*model.User, error) {
	u := &model.User{}
	var role string
	dest := []any{
		&u.ID, &u.Name, &u.Email, &role, &u.Bio, &u.IsActive,
		&u.LastProfileUpdate, &u.CreatedAt, &u.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	u.Role = auth.Role(role)
	return u, nil
}

// ========================================
// BASIC CRUD
// ========================================

func (r *postgresRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, role, bio, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		u.Name, u.Email, u.PasswordHash, string(u.Role), u.Bio, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, emailConstraint) {
			return model.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	// Step 1: cache
	if r.cache != nil {
		var cached model.User
		found, err := r.cache.Get(ctx, userCacheKey(id), &cached)
		if err != nil {
			log.Warn().Err(err).Int64("user_id", id).Msg("user cache read failed")
		} else if found {
			return &cached, nil
		}
	}

	// Step 2: database
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Step 3: populate cache
	if r.cache != nil {
		if err := r.cache.Set(ctx, userCacheKey(id), u, userCacheTTL); err != nil {
			log.Warn().Err(err).Int64("user_id", id).Msg("user cache write failed")
		}
	}
	return u, nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + `, password_hash FROM users WHERE LOWER(email) = LOWER($1)`

	var hash string
	u, err := scanUser(r.db.QueryRow(ctx, query, email), &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	u.PasswordHash = hash
	return u, nil
}

func (r *postgresRepository) GetPasswordHash(ctx context.Context, id int64) (string, error) {
	var hash string
	err := r.db.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1`, id).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", model.ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get password hash: %w", err)
	}
	return hash, nil
}

func (r *postgresRepository) List(ctx context.Context, limit, offset int) ([]*model.User, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id ASC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*model.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, u *model.User) error {
	query := `
		UPDATE users
		SET name = $2,
		    email = $3,
		    role = $4,
		    password_hash = COALESCE(NULLIF($5, ''), password_hash),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query, u.ID, u.Name, u.Email, string(u.Role), u.PasswordHash).
		Scan(&u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrUserNotFound
		}
		if database.IsUniqueViolation(err, emailConstraint) {
			return model.ErrEmailTaken
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	r.invalidate(ctx, u.ID)
	return nil
}

// Delete removes the account. Entries, likes and comments cascade.
func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	r.invalidate(ctx, id)
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// ========================================
// ACCOUNT SETTINGS
// ========================================

func (r *postgresRepository) UpdateProfileIfAllowed(ctx context.Context, id int64, upd ProfileUpdate) (*model.User, bool, error) {
	// The guard and the write are one statement, so two racing edits
	// cannot both pass the cooldown.
	query := `
		UPDATE users
		SET name = $2,
		    email = $3,
		    bio = $4,
		    last_profile_update = $5,
		    updated_at = $5
		WHERE id = $1
		  AND (last_profile_update IS NULL OR last_profile_update <= $6)
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRow(ctx, query, id, upd.Name, upd.Email, upd.Bio, upd.Now, upd.Cutoff))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		if database.IsUniqueViolation(err, emailConstraint) {
			return nil, false, model.ErrEmailTaken
		}
		return nil, false, fmt.Errorf("failed to update profile: %w", err)
	}
	r.invalidate(ctx, id)
	return u, true, nil
}

func (r *postgresRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, hash,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`,
		id, active,
	)
	if err != nil {
		return fmt.Errorf("failed to update account status: %w", err)
	}
	r.invalidate(ctx, id)
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// ========================================
// DISCOVERY
// ========================================

func (r *postgresRepository) Search(ctx context.Context, pattern string, excludeID int64, limit int) ([]*model.SearchHit, error) {
	query := `
		SELECT ` + userColumns + `,
		       (SELECT COUNT(*) FROM diaries d WHERE d.user_id = users.id AND d.status = 'public') AS public_diaries_count
		FROM users
		WHERE id <> $1
		  AND is_active
		  AND (name ILIKE $2 OR email ILIKE $2 OR COALESCE(bio, '') ILIKE $2)
		ORDER BY name ASC, id ASC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, excludeID, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	hits := make([]*model.SearchHit, 0)
	for rows.Next() {
		var count int64
		u, err := scanUser(rows, &count)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		hits = append(hits, &model.SearchHit{User: *u, PublicDiariesCount: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return hits, nil
}

func (r *postgresRepository) invalidate(ctx context.Context, id int64) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, userCacheKey(id)); err != nil {
		log.Warn().Err(err).Int64("user_id", id).Msg("user cache invalidation failed")
	}
}
