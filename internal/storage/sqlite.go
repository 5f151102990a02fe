// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Asim-Shah-2004/SIH/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// userProfile groups the profile fields stored as one JSON column.
type userProfile struct {
	Skills         []string                `json:"skills,omitempty"`
	Interests      []string                `json:"interests,omitempty"`
	Education      []models.Education      `json:"education,omitempty"`
	WorkExperience []models.WorkExperience `json:"work_experience,omitempty"`
	Location       *models.Location        `json:"location,omitempty"`
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	// Immediate transactions and a busy timeout make concurrent writers queue
	// behind each other instead of failing on lock upgrade.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT,
		profile TEXT,
		connections TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		author_id TEXT NOT NULL,
		text TEXT NOT NULL,
		likes TEXT,
		comments TEXT,
		shares TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id);
	CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);

	CREATE TABLE IF NOT EXISTS interaction_strengths (
		source_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		score REAL NOT NULL,
		created_at TIMESTAMP NOT NULL,
		last_updated TIMESTAMP NOT NULL,
		PRIMARY KEY (source_id, target_id)
	);

	CREATE TABLE IF NOT EXISTS vector_indexes (
		name TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		post_ids TEXT NOT NULL,
		dimensions INTEGER NOT NULL,
		total_count INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateUser inserts a user.
func (s *SQLiteStorage) CreateUser(ctx context.Context, user *models.User) error {
	profileJSON, connectionsJSON, err := marshalUser(user)
	if err != nil {
		return err
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, full_name, profile, connections, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.FullName, profileJSON, connectionsJSON, user.CreatedAt, user.UpdatedAt,
	)
	return err
}

// GetUser returns a user by ID.
func (s *SQLiteStorage) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, email, full_name, profile, connections, created_at, updated_at
		 FROM users WHERE id = ?`, id)
}

// GetUserByEmail returns a user by email.
func (s *SQLiteStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, email, full_name, profile, connections, created_at, updated_at
		 FROM users WHERE email = ?`, email)
}

func (s *SQLiteStorage) getUser(ctx context.Context, query, arg string) (*models.User, error) {
	var user models.User
	var profileJSON, connectionsJSON sql.NullString

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.FullName, &profileJSON, &connectionsJSON,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", arg, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := unmarshalUser(&user, profileJSON.String, connectionsJSON.String); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates an existing user's profile and connections.
func (s *SQLiteStorage) UpdateUser(ctx context.Context, user *models.User) error {
	profileJSON, connectionsJSON, err := marshalUser(user)
	if err != nil {
		return err
	}
	user.UpdatedAt = time.Now()

	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET email = ?, full_name = ?, profile = ?, connections = ?, updated_at = ?
		 WHERE id = ?`,
		user.Email, user.FullName, profileJSON, connectionsJSON, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("user %s: %w", user.ID, ErrNotFound)
	}
	return nil
}

// ListUsers returns all users ordered by creation time.
func (s *SQLiteStorage) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, full_name, profile, connections, created_at, updated_at
		 FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		var profileJSON, connectionsJSON sql.NullString
		if err := rows.Scan(&user.ID, &user.Email, &user.FullName, &profileJSON, &connectionsJSON,
			&user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		if err := unmarshalUser(&user, profileJSON.String, connectionsJSON.String); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

// CountUsers returns the total number of users.
func (s *SQLiteStorage) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func marshalUser(user *models.User) (string, string, error) {
	profile := userProfile{
		Skills:         user.Skills,
		Interests:      user.Interests,
		Education:      user.Education,
		WorkExperience: user.WorkExperience,
		Location:       user.Location,
	}
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal profile: %w", err)
	}
	connections := user.Connections
	if connections == nil {
		connections = []models.Connection{}
	}
	connectionsJSON, err := json.Marshal(connections)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal connections: %w", err)
	}
	return string(profileJSON), string(connectionsJSON), nil
}

func unmarshalUser(user *models.User, profileJSON, connectionsJSON string) error {
	if profileJSON != "" {
		var profile userProfile
		if err := json.Unmarshal([]byte(profileJSON), &profile); err != nil {
			return fmt.Errorf("failed to unmarshal profile: %w", err)
		}
		user.Skills = profile.Skills
		user.Interests = profile.Interests
		user.Education = profile.Education
		user.WorkExperience = profile.WorkExperience
		user.Location = profile.Location
	}
	if connectionsJSON != "" {
		if err := json.Unmarshal([]byte(connectionsJSON), &user.Connections); err != nil {
			return fmt.Errorf("failed to unmarshal connections: %w", err)
		}
	}
	return nil
}

// CreatePost inserts a post.
func (s *SQLiteStorage) CreatePost(ctx context.Context, post *models.Post) error {
	likes, comments, shares, err := marshalEngagements(post)
	if err != nil {
		return err
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO posts (id, author_id, text, likes, comments, shares, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		post.ID, post.AuthorID, post.Text, likes, comments, shares, post.CreatedAt,
	)
	return err
}

// GetPost returns a post by ID.
func (s *SQLiteStorage) GetPost(ctx context.Context, id string) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, author_id, text, likes, comments, shares, created_at
		 FROM posts WHERE id = ?`, id)
	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("post %s: %w", id, ErrNotFound)
	}
	return post, err
}

// ListPostsByAuthor returns all posts by a user, oldest first.
func (s *SQLiteStorage) ListPostsByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	return s.listPosts(ctx,
		`SELECT id, author_id, text, likes, comments, shares, created_at
		 FROM posts WHERE author_id = ? ORDER BY created_at`, authorID)
}

// ListPostsWithText returns up to limit posts with non-empty text, oldest
// first. A non-positive limit returns all matching posts.
func (s *SQLiteStorage) ListPostsWithText(ctx context.Context, limit int) ([]*models.Post, error) {
	return s.listPosts(ctx,
		`SELECT id, author_id, text, likes, comments, shares, created_at
		 FROM posts WHERE text != '' ORDER BY created_at LIMIT ?`, sqlLimit(limit))
}

// ListPostsCreatedAfter returns up to limit posts with non-empty text created after t, oldest first.
func (s *SQLiteStorage) ListPostsCreatedAfter(ctx context.Context, t time.Time, limit int) ([]*models.Post, error) {
	return s.listPosts(ctx,
		`SELECT id, author_id, text, likes, comments, shares, created_at
		 FROM posts WHERE text != '' AND created_at > ? ORDER BY created_at LIMIT ?`, t, sqlLimit(limit))
}

// sqlLimit maps non-positive limits to SQLite's unbounded -1.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func (s *SQLiteStorage) listPosts(ctx context.Context, query string, args ...interface{}) ([]*models.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	var likes, comments, shares sql.NullString
	if err := row.Scan(&post.ID, &post.AuthorID, &post.Text, &likes, &comments, &shares,
		&post.CreatedAt); err != nil {
		return nil, err
	}
	for _, pair := range []struct {
		raw  string
		dest *[]models.Engagement
	}{{likes.String, &post.Likes}, {comments.String, &post.Comments}, {shares.String, &post.Shares}} {
		if pair.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(pair.raw), pair.dest); err != nil {
			return nil, fmt.Errorf("failed to unmarshal engagements: %w", err)
		}
	}
	return &post, nil
}

func marshalEngagements(post *models.Post) (string, string, string, error) {
	out := make([]string, 3)
	for i, list := range [][]models.Engagement{post.Likes, post.Comments, post.Shares} {
		if list == nil {
			list = []models.Engagement{}
		}
		b, err := json.Marshal(list)
		if err != nil {
			return "", "", "", fmt.Errorf("failed to marshal engagements: %w", err)
		}
		out[i] = string(b)
	}
	return out[0], out[1], out[2], nil
}

// AppendEngagement appends an engagement entry to the post's list of the given
// kind. The read and the update run in one transaction so concurrent appends
// to the same post cannot drop each other's entries.
func (s *SQLiteStorage) AppendEngagement(ctx context.Context, postID string, kind models.EngagementKind, e models.Engagement) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT id, author_id, text, likes, comments, shares, created_at
		 FROM posts WHERE id = ?`, postID)
	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return fmt.Errorf("post %s: %w", postID, ErrNotFound)
	}
	if err != nil {
		return err
	}

	switch kind {
	case models.EngagementLike:
		post.Likes = append(post.Likes, e)
	case models.EngagementComment:
		post.Comments = append(post.Comments, e)
	case models.EngagementShare:
		post.Shares = append(post.Shares, e)
	default:
		return fmt.Errorf("unknown engagement kind: %s", kind)
	}
	likes, comments, shares, err := marshalEngagements(post)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE posts SET likes = ?, comments = ?, shares = ? WHERE id = ?`,
		likes, comments, shares, postID,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// CountPosts returns the total number of posts.
func (s *SQLiteStorage) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count)
	return count, err
}

// UpsertInteractionStrength inserts or updates the record for the ordered
// (source, target) pair. Last write wins on score and last_updated; the
// original created_at is preserved on update.
func (s *SQLiteStorage) UpsertInteractionStrength(ctx context.Context, rec *models.InteractionStrength) error {
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.LastUpdated = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interaction_strengths (source_id, target_id, score, created_at, last_updated)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(source_id, target_id) DO UPDATE SET
		   score = excluded.score,
		   last_updated = excluded.last_updated`,
		rec.SourceID, rec.TargetID, rec.Score, rec.CreatedAt, rec.LastUpdated,
	)
	return err
}

// GetInteractionStrength returns the record for the ordered (source, target) pair.
func (s *SQLiteStorage) GetInteractionStrength(ctx context.Context, sourceID, targetID string) (*models.InteractionStrength, error) {
	var rec models.InteractionStrength
	err := s.db.QueryRowContext(ctx,
		`SELECT source_id, target_id, score, created_at, last_updated
		 FROM interaction_strengths WHERE source_id = ? AND target_id = ?`,
		sourceID, targetID,
	).Scan(&rec.SourceID, &rec.TargetID, &rec.Score, &rec.CreatedAt, &rec.LastUpdated)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("interaction %s->%s: %w", sourceID, targetID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveIndexRecord inserts or replaces the snapshot for the named index.
func (s *SQLiteStorage) SaveIndexRecord(ctx context.Context, rec *models.IndexRecord) error {
	postIDs, err := json.Marshal(rec.PostIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal post ids: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO vector_indexes (name, data, post_ids, dimensions, total_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   data = excluded.data,
		   post_ids = excluded.post_ids,
		   dimensions = excluded.dimensions,
		   total_count = excluded.total_count,
		   created_at = excluded.created_at`,
		rec.Name, rec.Data, string(postIDs), rec.Dimensions, rec.TotalCount, rec.CreatedAt,
	)
	return err
}

// GetIndexRecord returns the snapshot for the named index.
func (s *SQLiteStorage) GetIndexRecord(ctx context.Context, name string) (*models.IndexRecord, error) {
	var rec models.IndexRecord
	var postIDs string
	err := s.db.QueryRowContext(ctx,
		`SELECT name, data, post_ids, dimensions, total_count, created_at
		 FROM vector_indexes WHERE name = ?`, name,
	).Scan(&rec.Name, &rec.Data, &postIDs, &rec.Dimensions, &rec.TotalCount, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("index %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(postIDs), &rec.PostIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal post ids: %w", err)
	}
	return &rec, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
