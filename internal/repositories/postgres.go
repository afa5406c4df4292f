package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/starshout/backend/internal/db"
	"github.com/starshout/backend/internal/models"
)

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return acquireErr(err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, email, first_name, last_name, password_hash,
                           is_celebrity, celebrity_verified, bio, price_per_video,
                           country, city, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, user.ID, user.Email, user.FirstName, user.LastName, user.PasswordHash,
		user.IsCelebrity, user.CelebrityVerified, user.Bio, user.PricePerVideo,
		user.Country, user.City, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

const userColumns = `id, email, first_name, last_name, password_hash,
       is_celebrity, celebrity_verified, bio, price_per_video,
       country, city, created_at, updated_at`

// FindByEmail fetches a user by their email address (stored lowercased).
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, acquireErr(err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE email = $1
    `, email)

	return scanUser(row)
}

// FindByID fetches a user by id.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, acquireErr(err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE id = $1
    `, id)

	return scanUser(row)
}

// Update modifies an existing user record.
func (r *PostgresUserRepository) Update(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return acquireErr(err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET email = $2, first_name = $3, last_name = $4, password_hash = $5,
            celebrity_verified = $6, bio = $7, price_per_video = $8,
            country = $9, city = $10, updated_at = $11
        WHERE id = $1
    `, user.ID, user.Email, user.FirstName, user.LastName, user.PasswordHash,
		user.CelebrityVerified, user.Bio, user.PricePerVideo,
		user.Country, user.City, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListVerifiedCelebrities returns the public celebrity directory.
func (r *PostgresUserRepository) ListVerifiedCelebrities(ctx context.Context) ([]models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, acquireErr(err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE is_celebrity AND celebrity_verified
        ORDER BY last_name, first_name
    `)
	if err != nil {
		return nil, fmt.Errorf("query celebrities: %w", err)
	}
	defer rows.Close()

	var celebrities []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		celebrities = append(celebrities, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate celebrities: %w", err)
	}

	return celebrities, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName,
		&user.PasswordHash, &user.IsCelebrity, &user.CelebrityVerified,
		&user.Bio, &user.PricePerVideo, &user.Country, &user.City,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}

// PostgresRequestRepository provides PostgreSQL-backed persistence for video requests.
type PostgresRequestRepository struct {
	pool db.Pool
}

// NewPostgresRequestRepository constructs a request repository backed by PostgreSQL.
func NewPostgresRequestRepository(pool db.Pool) *PostgresRequestRepository {
	return &PostgresRequestRepository{pool: pool}
}

// Create persists a new video request.
func (r *PostgresRequestRepository) Create(ctx context.Context, request models.VideoRequest) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return acquireErr(err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO video_requests (id, requester_id, celebrity_id, recipient_name,
                                    occasion, message, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, request.ID, request.RequesterID, request.CelebrityID, request.RecipientName,
		request.Occasion, request.Message, request.Status, request.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert video request: %w", err)
	}

	return nil
}

const requestColumns = `id, requester_id, celebrity_id, recipient_name, occasion,
       message, status, rejection_reason, video_id,
       created_at, accepted_at, rejected_at, completed_at`

// FindByID fetches a video request by id.
func (r *PostgresRequestRepository) FindByID(ctx context.Context, id string) (models.VideoRequest, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.VideoRequest{}, acquireErr(err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+requestColumns+`
        FROM video_requests
        WHERE id = $1
    `, id)

	return scanRequest(row)
}

// ListForRequester returns a fan's requests, newest first.
func (r *PostgresRequestRepository) ListForRequester(ctx context.Context, requesterID string) ([]models.VideoRequest, error) {
	return r.list(ctx, `requester_id`, requesterID)
}

// ListForCelebrity returns a celebrity's incoming requests, newest first.
func (r *PostgresRequestRepository) ListForCelebrity(ctx context.Context, celebrityID string) ([]models.VideoRequest, error) {
	return r.list(ctx, `celebrity_id`, celebrityID)
}

func (r *PostgresRequestRepository) list(ctx context.Context, column, userID string) ([]models.VideoRequest, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, acquireErr(err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+requestColumns+`
        FROM video_requests
        WHERE `+column+` = $1
        ORDER BY created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query video requests: %w", err)
	}
	defer rows.Close()

	var requests []models.VideoRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate video requests: %w", err)
	}

	return requests, nil
}

// MarkAccepted moves a pending request to accepted when the caller is its
// celebrity. The status guard and the write are a single statement, so
// concurrent attempts on the same row resolve to exactly one winner.
func (r *PostgresRequestRepository) MarkAccepted(ctx context.Context, requestID, celebrityID string, at time.Time) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, acquireErr(err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE video_requests
        SET status = $4, accepted_at = $3
        WHERE id = $1 AND celebrity_id = $2 AND status = $5
    `, requestID, celebrityID, at.UTC(), models.RequestStatusAccepted, models.RequestStatusPending)
	if err != nil {
		return false, fmt.Errorf("accept video request: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// MarkRejected moves a pending or accepted request to rejected.
func (r *PostgresRequestRepository) MarkRejected(ctx context.Context, requestID, celebrityID, reason string, at time.Time) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, acquireErr(err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE video_requests
        SET status = $4, rejection_reason = $3, rejected_at = $5
        WHERE id = $1 AND celebrity_id = $2 AND status IN ($6, $7)
    `, requestID, celebrityID, reason, models.RequestStatusRejected, at.UTC(),
		models.RequestStatusPending, models.RequestStatusAccepted)
	if err != nil {
		return false, fmt.Errorf("reject video request: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func scanRequest(row pgx.Row) (models.VideoRequest, error) {
	var (
		request     models.VideoRequest
		reason      sql.NullString
		videoID     sql.NullString
		acceptedAt  sql.NullTime
		rejectedAt  sql.NullTime
		completedAt sql.NullTime
	)

	err := row.Scan(&request.ID, &request.RequesterID, &request.CelebrityID,
		&request.RecipientName, &request.Occasion, &request.Message,
		&request.Status, &reason, &videoID,
		&request.CreatedAt, &acceptedAt, &rejectedAt, &completedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.VideoRequest{}, ErrNotFound
		}
		return models.VideoRequest{}, fmt.Errorf("scan video request: %w", err)
	}

	request.RejectionReason = reason.String
	request.VideoID = videoID.String
	request.AcceptedAt = nullableTime(acceptedAt)
	request.RejectedAt = nullableTime(rejectedAt)
	request.CompletedAt = nullableTime(completedAt)

	return request, nil
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a standalone video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return acquireErr(err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, request_id, uploader_id, storage_name,
                            original_filename, mime_type, size_bytes,
                            share_token, view_count, created_at)
        VALUES ($1, NULL, $2, $3, $4, $5, $6, $7, 0, $8)
    `, video.ID, video.UploaderID, video.StorageName, video.OriginalFilename,
		video.MimeType, video.SizeBytes, nullableString(video.ShareToken), video.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// CreateCompletingRequest inserts the video and completes its request in one
// transaction. The request update is conditional on the uploader being the
// request's celebrity and the status still being accepted; when that predicate
// matches no row the transaction is rolled back and (false, nil) is returned.
func (r *PostgresVideoRepository) CreateCompletingRequest(ctx context.Context, video models.Video, at time.Time) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, acquireErr(err)
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("begin video transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        UPDATE video_requests
        SET status = $4, video_id = $3, completed_at = $5
        WHERE id = $1 AND celebrity_id = $2 AND status = $6
    `, video.RequestID, video.UploaderID, video.ID,
		models.RequestStatusCompleted, at.UTC(), models.RequestStatusAccepted)
	if err != nil {
		return false, fmt.Errorf("complete video request: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO videos (id, request_id, uploader_id, storage_name,
                            original_filename, mime_type, size_bytes,
                            share_token, view_count, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, 0, $8)
    `, video.ID, video.RequestID, video.UploaderID, video.StorageName,
		video.OriginalFilename, video.MimeType, video.SizeBytes, video.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert video: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit video transaction: %w", err)
	}

	return true, nil
}

const videoColumns = `id, request_id, uploader_id, storage_name, original_filename,
       mime_type, size_bytes, share_token, view_count, created_at`

// FindByID fetches a video by id.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, acquireErr(err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+videoColumns+`
        FROM videos
        WHERE id = $1
    `, id)

	return scanVideo(row)
}

// FindByShareToken fetches a standalone video by its share token.
func (r *PostgresVideoRepository) FindByShareToken(ctx context.Context, token string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, acquireErr(err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+videoColumns+`
        FROM videos
        WHERE share_token = $1
    `, token)

	return scanVideo(row)
}

// IncrementViews bumps the view counter for a video.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return acquireErr(err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET view_count = view_count + 1
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("increment video views: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var (
		video      models.Video
		requestID  sql.NullString
		shareToken sql.NullString
	)

	err := row.Scan(&video.ID, &requestID, &video.UploaderID, &video.StorageName,
		&video.OriginalFilename, &video.MimeType, &video.SizeBytes,
		&shareToken, &video.ViewCount, &video.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("scan video: %w", err)
	}

	video.RequestID = requestID.String
	video.ShareToken = shareToken.String

	return video, nil
}

func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func acquireErr(err error) error {
	return fmt.Errorf("acquire connection: %w: %s", ErrUnavailable, err)
}

var _ UserRepository = (*PostgresUserRepository)(nil)
var _ RequestRepository = (*PostgresRequestRepository)(nil)
var _ VideoRepository = (*PostgresVideoRepository)(nil)
var _ db.Pool = (*pgxpool.Pool)(nil)
