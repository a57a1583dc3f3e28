package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/careercoach/internal/resultcache"
	"github.com/kiranshivaraju/careercoach/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Profiles ---

const profileColumns = `id, name, email, password_hash, target_role, skills, created_at, updated_at`

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.PasswordHash, &p.TargetRole, &p.Skills, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) CreateProfile(ctx context.Context, p *models.Profile) error {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (id, name, email, password_hash, target_role, skills, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Name, p.Email, p.PasswordHash, p.TargetRole, skills, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p, err := scanProfile(s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	p, err := scanProfile(s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE lower(email) = lower($1)`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile by email: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, id uuid.UUID, opts ...ProfileUpdateOption) (*models.Profile, error) {
	params := ApplyProfileUpdate(opts...)

	query := `UPDATE profiles SET updated_at = $2`
	args := []any{id, time.Now().UTC()}
	argIdx := 3

	if params.Name != nil {
		query += fmt.Sprintf(", name = $%d", argIdx)
		args = append(args, *params.Name)
		argIdx++
	}
	if params.TargetRole != nil {
		query += fmt.Sprintf(", target_role = $%d", argIdx)
		args = append(args, *params.TargetRole)
		argIdx++
	}
	if params.Skills != nil {
		query += fmt.Sprintf(", skills = $%d", argIdx)
		args = append(args, *params.Skills)
	}

	query += " WHERE id = $1 RETURNING " + profileColumns

	p, err := scanProfile(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}

// --- Resumes (result cache entries) ---

const resumeColumns = `id, user_id, hash, target_role, analysis, content, created_at`

func scanResume(row pgx.Row) (*resultcache.Entry, error) {
	var (
		e       resultcache.Entry
		hash    string
		payload []byte
	)
	if err := row.Scan(&e.ID, &e.OwnerID, &hash, &e.ContextParam, &payload, &e.Source, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Hash = resultcache.Key(hash)
	e.Payload = payload
	return &e, nil
}

// LatestEntry returns the newest resume analysis for (owner, hash, role), or nil when none exists.
func (s *PostgresStore) LatestEntry(ctx context.Context, ownerID string, hash resultcache.Key, contextParam string) (*resultcache.Entry, error) {
	e, err := scanResume(s.pool.QueryRow(ctx,
		`SELECT `+resumeColumns+` FROM resumes
		 WHERE user_id = $1 AND hash = $2 AND target_role = $3
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		ownerID, hash.String(), contextParam))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get resume by hash: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) InsertEntry(ctx context.Context, e *resultcache.Entry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO resumes (id, user_id, hash, target_role, analysis, content, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.OwnerID, e.Hash.String(), e.ContextParam, []byte(e.Payload), e.Source, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("create resume: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetLatestResume(ctx context.Context, ownerID string) (*resultcache.Entry, error) {
	e, err := scanResume(s.pool.QueryRow(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC LIMIT 1`, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest resume: %w", err)
	}
	return e, nil
}

// --- Learning plans ---

func (s *PostgresStore) CreateLearningPlan(ctx context.Context, plan *models.LearningPlan) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO learning_plans (id, user_id, target_role, plan_data, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		plan.ID, plan.OwnerID, plan.TargetRole, plan.Plan, plan.CreatedAt)
	if err != nil {
		return fmt.Errorf("create learning plan: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListLearningPlans(ctx context.Context, ownerID string, limit int) ([]*models.LearningPlan, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, target_role, plan_data, created_at FROM learning_plans
		 WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list learning plans: %w", err)
	}
	defer rows.Close()

	plans := []*models.LearningPlan{}
	for rows.Next() {
		var p models.LearningPlan
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.TargetRole, &p.Plan, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan learning plan: %w", err)
		}
		plans = append(plans, &p)
	}
	return plans, rows.Err()
}

// --- Quizzes ---

func (s *PostgresStore) CreateQuizResult(ctx context.Context, r *models.QuizResult) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quizzes (id, user_id, topic, score, total, difficulty, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.OwnerID, r.Topic, r.Score, r.Total, r.Difficulty, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("create quiz result: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListQuizResults(ctx context.Context, ownerID string) ([]*models.QuizResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, topic, score, total, difficulty, created_at FROM quizzes
		 WHERE user_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list quiz results: %w", err)
	}
	defer rows.Close()

	results := []*models.QuizResult{}
	for rows.Next() {
		var r models.QuizResult
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Topic, &r.Score, &r.Total, &r.Difficulty, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz result: %w", err)
		}
		results = append(results, &r)
	}
	return results, rows.Err()
}

// --- Interviews ---

func (s *PostgresStore) CreateInterviewResult(ctx context.Context, r *models.InterviewResult) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO interviews (id, user_id, role, round_type, score, feedback, passed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.OwnerID, r.Role, string(r.Round), r.Score, r.Feedback, r.Passed, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("create interview result: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListInterviewResults(ctx context.Context, ownerID string) ([]*models.InterviewResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, role, round_type, score, feedback, passed, created_at FROM interviews
		 WHERE user_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list interview results: %w", err)
	}
	defer rows.Close()

	results := []*models.InterviewResult{}
	for rows.Next() {
		var (
			r     models.InterviewResult
			round string
		)
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Role, &round, &r.Score, &r.Feedback, &r.Passed, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan interview result: %w", err)
		}
		r.Round = models.InterviewRound(round)
		results = append(results, &r)
	}
	return results, rows.Err()
}

// --- Jobs ---

const jobColumns = `id, title, company, location, description, link, skills, created_at`

// SearchJobListings matches term case-insensitively against title, company and description.
// An empty term returns every listing.
func (s *PostgresStore) SearchJobListings(ctx context.Context, term string) ([]*models.JobListing, error) {
	query := `SELECT ` + jobColumns + ` FROM job_listings`
	var args []any
	if term = strings.TrimSpace(term); term != "" {
		query += ` WHERE title ILIKE $1 OR company ILIKE $1 OR description ILIKE $1`
		args = append(args, "%"+escapeLike(term)+"%")
	}
	query += ` ORDER BY created_at DESC, title`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search job listings: %w", err)
	}
	defer rows.Close()

	jobs := []*models.JobListing{}
	for rows.Next() {
		var j models.JobListing
		if err := rows.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Description, &j.Link, &j.Skills, &j.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan job listing: %w", err)
		}
		jobs = append(jobs, &j)
	}
	return jobs, rows.Err()
}

func (s *PostgresStore) GetJobListing(ctx context.Context, id uuid.UUID) (*models.JobListing, error) {
	var j models.JobListing
	err := s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM job_listings WHERE id = $1`, id,
	).Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Description, &j.Link, &j.Skills, &j.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job listing: %w", err)
	}
	return &j, nil
}

func (s *PostgresStore) CreateJobApplication(ctx context.Context, app *models.JobApplication) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO job_applications (id, user_id, job_id, created_at) VALUES ($1, $2, $3, $4)`,
		app.ID, app.OwnerID, app.JobID, app.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create job application: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListJobApplications(ctx context.Context, ownerID string) ([]*models.JobApplication, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, job_id, created_at FROM job_applications
		 WHERE user_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list job applications: %w", err)
	}
	defer rows.Close()

	apps := []*models.JobApplication{}
	for rows.Next() {
		var a models.JobApplication
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.JobID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan job application: %w", err)
		}
		apps = append(apps, &a)
	}
	return apps, rows.Err()
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
