package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"diary-backend/internal/domains/diary/model"
	"diary-backend/pkg/database"
)

// Pool is the connection source the repository needs.
// *pgxpool.Pool and pgxmock pools satisfy it.
type Pool interface {
	database.DBTX
	database.TxBeginner
}

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================

type postgresRepository struct {
	db database.DBTX
	// nil when the repository is already bound to a transaction
	pool Pool
}

func NewPostgresRepository(pool Pool) Repository {
	return &postgresRepository{db: pool, pool: pool}
}

func (r *postgresRepository) WithinTx(ctx context.Context, fn func(Repository) error) error {
	if r.pool == nil {
		return fn(r)
	}
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&postgresRepository{db: tx})
	})
}

func (r *postgresRepository) WithinSnapshot(ctx context.Context, fn func(Repository) error) error {
	if r.pool == nil {
		return fn(r)
	}
	return database.WithSnapshot(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&postgresRepository{db: tx})
	})
}

// =====================================================
// ENTRIES
// =====================================================

func (r *postgresRepository) Create(ctx context.Context, d *model.Diary) error {
	query := `
		INSERT INTO diaries (user_id, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, d.UserID, d.Message, string(d.Status)).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create diary: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.Diary, error) {
	query := `
		SELECT id, user_id, message, status, created_at, updated_at
		FROM diaries
		WHERE id = $1
	`

	d := &model.Diary{}
	var status string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.UserID, &d.Message, &status, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrDiaryNotFound
		}
		return nil, fmt.Errorf("failed to get diary: %w", err)
	}
	d.Status = model.Status(status)
	return d, nil
}

func (r *postgresRepository) Update(ctx context.Context, d *model.Diary) error {
	query := `
		UPDATE diaries
		SET message = $2, status = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query, d.ID, d.Message, string(d.Status)).Scan(&d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrDiaryNotFound
		}
		return fmt.Errorf("failed to update diary: %w", err)
	}
	return nil
}

// Delete removes the entry; likes and comments go with it via ON DELETE CASCADE.
func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM diaries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete diary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrDiaryNotFound
	}
	return nil
}

// =====================================================
// VIEWS
// =====================================================

// viewColumns selects an entry with its owner and live aggregates.
// $1 is always the viewer id.
const viewColumns = `
	d.id, d.user_id, d.message, d.status, d.created_at, d.updated_at,
	u.name,
	(SELECT COUNT(*) FROM diary_likes l WHERE l.diary_id = d.id) AS likes_count,
	(SELECT COUNT(*) FROM diary_comments c WHERE c.diary_id = d.id) AS comments_count,
	EXISTS (SELECT 1 FROM diary_likes l WHERE l.diary_id = d.id AND l.user_id = $1) AS is_liked
`

func scanView(row pgx.Row) (*model.DiaryView, error) {
	v := &model.DiaryView{}
	var status string
	err := row.Scan(
		&v.ID, &v.UserID, &v.Message, &status, &v.CreatedAt, &v.UpdatedAt,
		&v.OwnerName,
		&v.LikesCount, &v.CommentsCount, &v.IsLiked,
	)
	if err != nil {
		return nil, err
	}
	v.Status = model.Status(status)
	return v, nil
}

func (r *postgresRepository) GetView(ctx context.Context, id, viewerID int64) (*model.DiaryView, error) {
	query := `SELECT ` + viewColumns + `
		FROM diaries d
		JOIN users u ON u.id = d.user_id
		WHERE d.id = $2
	`

	v, err := scanView(r.db.QueryRow(ctx, query, viewerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrDiaryNotFound
		}
		return nil, fmt.Errorf("failed to get diary view: %w", err)
	}
	return v, nil
}

// feedWhere builds the scope predicate with its first placeholder at $pos.
func feedWhere(filter FeedFilter, pos int) (string, []any, error) {
	switch filter.Scope {
	case ScopeOwn:
		return fmt.Sprintf("d.user_id = $%d", pos), []any{filter.OwnerID}, nil
	case ScopePublic:
		return "d.status = 'public'", nil, nil
	case ScopeUserPublic:
		return fmt.Sprintf("d.user_id = $%d AND d.status = 'public'", pos), []any{filter.OwnerID}, nil
	}
	return "", nil, fmt.Errorf("unknown feed scope %d", filter.Scope)
}

func (r *postgresRepository) ListFeed(ctx context.Context, filter FeedFilter, viewerID int64) ([]*model.DiaryView, int64, error) {
	// Step 1: total in scope
	countWhere, countArgs, err := feedWhere(filter, 1)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM diaries d WHERE `+countWhere, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count diaries: %w", err)
	}

	// Step 2: the page itself, $1 is the viewer
	where, scopeArgs, _ := feedWhere(filter, 2)
	args := append([]any{viewerID}, scopeArgs...)
	limitPos := len(args) + 1
	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`SELECT %s
		FROM diaries d
		JOIN users u ON u.id = d.user_id
		WHERE %s
		ORDER BY d.created_at DESC, d.id DESC
		LIMIT $%d OFFSET $%d
	`, viewColumns, where, limitPos, limitPos+1)

	views, err := r.queryViews(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (r *postgresRepository) ListTrending(ctx context.Context, viewerID int64, limit int) ([]*model.DiaryView, error) {
	query := `SELECT ` + viewColumns + `
		FROM diaries d
		JOIN users u ON u.id = d.user_id
		WHERE d.status = 'public'
		ORDER BY likes_count DESC, d.created_at DESC, d.id DESC
		LIMIT $2
	`
	return r.queryViews(ctx, query, viewerID, limit)
}

func (r *postgresRepository) queryViews(ctx context.Context, query string, args ...any) ([]*model.DiaryView, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list diaries: %w", err)
	}
	defer rows.Close()

	views := make([]*model.DiaryView, 0)
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan diary: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate diaries: %w", err)
	}
	return views, nil
}

func (r *postgresRepository) CommentsFor(ctx context.Context, diaryIDs []int64) (map[int64][]*model.CommentView, error) {
	out := make(map[int64][]*model.CommentView, len(diaryIDs))
	if len(diaryIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT c.id, c.diary_id, c.user_id, c.comment, c.created_at, c.updated_at, u.name
		FROM diary_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.diary_id = ANY($1)
		ORDER BY c.created_at ASC, c.id ASC
	`

	rows, err := r.db.Query(ctx, query, diaryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		out[c.DiaryID] = append(out[c.DiaryID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return out, nil
}

// =====================================================
// LIKES
// =====================================================

func (r *postgresRepository) HasLiked(ctx context.Context, diaryID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM diary_likes WHERE diary_id = $1 AND user_id = $2)`,
		diaryID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return exists, nil
}

// AddLike relies on the (diary_id, user_id) unique constraint; a concurrent
// duplicate is a no-op instead of an error.
func (r *postgresRepository) AddLike(ctx context.Context, diaryID, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO diary_likes (diary_id, user_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (diary_id, user_id) DO NOTHING
	`, diaryID, userID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return false, model.ErrDiaryNotFound
		}
		return false, fmt.Errorf("failed to add like: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *postgresRepository) RemoveLike(ctx context.Context, diaryID, userID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM diary_likes WHERE diary_id = $1 AND user_id = $2`, diaryID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove like: %w", err)
	}
	return nil
}

// =====================================================
// COMMENTS
// =====================================================

func scanComment(row pgx.Row) (*model.CommentView, error) {
	c := &model.CommentView{}
	err := row.Scan(
		&c.ID, &c.DiaryID, &c.UserID, &c.Comment.Comment, &c.CreatedAt, &c.UpdatedAt, &c.AuthorName,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *postgresRepository) CreateComment(ctx context.Context, c *model.Comment) error {
	query := `
		INSERT INTO diary_comments (diary_id, user_id, comment, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, c.DiaryID, c.UserID, c.Comment).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return model.ErrDiaryNotFound
		}
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetComment(ctx context.Context, id int64) (*model.CommentView, error) {
	query := `
		SELECT c.id, c.diary_id, c.user_id, c.comment, c.created_at, c.updated_at, u.name
		FROM diary_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = $1
	`

	c, err := scanComment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return c, nil
}

func (r *postgresRepository) DeleteComment(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM diary_comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCommentNotFound
	}
	return nil
}
