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

// DriveRepository handles persistence of placement drives.
type DriveRepository struct {
	db *sqlx.DB
}

// NewDriveRepository constructs the repository.
func NewDriveRepository(db *sqlx.DB) *DriveRepository {
	return &DriveRepository{db: db}
}

const driveColumns = `id, title, description, company, status, min_cgpa, max_backlogs,
eligible_branches, required_skills, location, package, registration_deadline, created_at, updated_at`

// List returns drives filtered by the provided criteria with the
// application count joined in.
func (r *DriveRepository) List(ctx context.Context, filter models.DriveFilter) ([]models.DriveDetail, int, error) {
	base := `FROM placement_drives d`
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("d.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Company != "" {
		conditions = append(conditions, fmt.Sprintf("d.company = $%d", len(args)+1))
		args = append(args, filter.Company)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(d.title ILIKE $%d OR d.company ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"created_at": "d.created_at",
		"title":      "d.title",
		"company":    "d.company",
		"deadline":   "d.registration_deadline",
	}
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	orderBy := allowedSorts[sortBy]
	if orderBy == "" {
		orderBy = "d.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf(`SELECT d.id, d.title, d.description, d.company, d.status, d.min_cgpa, d.max_backlogs,
        d.eligible_branches, d.required_skills, d.location, d.package, d.registration_deadline, d.created_at, d.updated_at,
        (SELECT COUNT(*) FROM applications a WHERE a.drive_id = d.id) AS application_count
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var drives []models.DriveDetail
	if err := r.db.SelectContext(ctx, &drives, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list drives: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count drives: %w", err)
	}
	return drives, total, nil
}

// FindByID returns a drive by its ID.
func (r *DriveRepository) FindByID(ctx context.Context, id string) (*models.PlacementDrive, error) {
	query := fmt.Sprintf("SELECT %s FROM placement_drives WHERE id = $1", driveColumns)
	var drive models.PlacementDrive
	if err := r.db.GetContext(ctx, &drive, query, id); err != nil {
		return nil, err
	}
	return &drive, nil
}

// Create persists a new drive record.
func (r *DriveRepository) Create(ctx context.Context, drive *models.PlacementDrive) error {
	now := time.Now().UTC()
	if drive.ID == "" {
		drive.ID = uuid.NewString()
	}
	if drive.Status == "" {
		drive.Status = models.DriveStatusDraft
	}
	if drive.CreatedAt.IsZero() {
		drive.CreatedAt = now
	}
	drive.UpdatedAt = now
	const query = `INSERT INTO placement_drives (id, title, description, company, status, min_cgpa, max_backlogs,
        eligible_branches, required_skills, location, package, registration_deadline, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	if _, err := r.db.ExecContext(ctx, query,
		drive.ID, drive.Title, drive.Description, drive.Company, drive.Status,
		drive.MinCGPA, drive.MaxBacklogs, pq.Array(drive.EligibleBranches), pq.Array(drive.RequiredSkills),
		drive.Location, drive.Package, drive.RegistrationDeadline, drive.CreatedAt, drive.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create drive: %w", err)
	}
	return nil
}

// Update rewrites the mutable drive fields.
func (r *DriveRepository) Update(ctx context.Context, drive *models.PlacementDrive) error {
	drive.UpdatedAt = time.Now().UTC()
	const query = `UPDATE placement_drives SET title = $2, description = $3, company = $4,
        min_cgpa = $5, max_backlogs = $6, eligible_branches = $7, required_skills = $8,
        location = $9, package = $10, registration_deadline = $11, updated_at = $12
        WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query,
		drive.ID, drive.Title, drive.Description, drive.Company,
		drive.MinCGPA, drive.MaxBacklogs, pq.Array(drive.EligibleBranches), pq.Array(drive.RequiredSkills),
		drive.Location, drive.Package, drive.RegistrationDeadline, drive.UpdatedAt,
	); err != nil {
		return fmt.Errorf("update drive: %w", err)
	}
	return nil
}

// UpdateStatus transitions a drive's lifecycle status.
func (r *DriveRepository) UpdateStatus(ctx context.Context, id string, status models.DriveStatus) error {
	const query = `UPDATE placement_drives SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update drive status: %w", err)
	}
	return nil
}
