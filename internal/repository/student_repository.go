package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/AkshithaKulal/placementpro/internal/models"
)

// StudentRepository handles persistence of student profiles.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentDetailColumns = `s.id, s.user_id, s.enrollment_no, s.branch, s.cgpa, s.backlogs, s.skills,
s.created_at, s.updated_at, u.full_name, u.email`

// List returns student profiles filtered by the provided criteria.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	base := `FROM student_profiles s
JOIN users u ON u.id = s.user_id`
	var conditions []string
	var args []interface{}

	if filter.Branch != "" {
		conditions = append(conditions, fmt.Sprintf("s.branch = $%d", len(args)+1))
		args = append(args, filter.Branch)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(u.full_name ILIKE $%d OR u.email ILIKE $%d OR s.enrollment_no ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"enrollment_no": "s.enrollment_no",
		"cgpa":          "s.cgpa",
		"name":          "u.full_name",
	}
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "enrollment_no"
	}
	orderBy := allowedSorts[sortBy]
	if orderBy == "" {
		orderBy = "s.enrollment_no"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d",
		studentDetailColumns, base+clause, orderBy, order, size, offset)

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID returns a student profile with its user identity.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM student_profiles s JOIN users u ON u.id = s.user_id WHERE s.id = $1`, studentDetailColumns)
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindByUserID returns the profile owned by the given user.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.StudentDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM student_profiles s JOIN users u ON u.id = s.user_id WHERE s.user_id = $1`, studentDetailColumns)
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, userID); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListCandidates returns the candidate pool satisfying the drive's SQL-level
// criteria: CGPA floor, backlog ceiling, and branch membership when the
// branch set is non-empty. The skill-ratio filter is applied by the caller.
func (r *StudentRepository) ListCandidates(ctx context.Context, minCGPA float64, maxBacklogs int, branches []string) ([]models.StudentDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM student_profiles s JOIN users u ON u.id = s.user_id
        WHERE s.cgpa >= $1 AND s.backlogs <= $2`, studentDetailColumns)
	args := []interface{}{minCGPA, maxBacklogs}
	if len(branches) > 0 {
		query += fmt.Sprintf(" AND s.branch = ANY($%d)", len(args)+1)
		args = append(args, pq.Array(branches))
	}
	query += " ORDER BY s.enrollment_no ASC"

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return students, nil
}

// Create persists a new student profile.
func (r *StudentRepository) Create(ctx context.Context, profile *models.StudentProfile) error {
	now := time.Now().UTC()
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	const query = `INSERT INTO student_profiles (id, user_id, enrollment_no, branch, cgpa, backlogs, skills, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query,
		profile.ID, profile.UserID, profile.EnrollmentNo, profile.Branch,
		profile.CGPA, profile.Backlogs, pq.Array(profile.Skills), profile.CreatedAt, profile.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create student profile: %w", err)
	}
	return nil
}

// Update rewrites the mutable profile fields.
func (r *StudentRepository) Update(ctx context.Context, profile *models.StudentProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE student_profiles SET enrollment_no = $2, branch = $3, cgpa = $4, backlogs = $5,
        skills = $6, updated_at = $7 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query,
		profile.ID, profile.EnrollmentNo, profile.Branch, profile.CGPA,
		profile.Backlogs, pq.Array(profile.Skills), profile.UpdatedAt,
	); err != nil {
		return fmt.Errorf("update student profile: %w", err)
	}
	return nil
}
