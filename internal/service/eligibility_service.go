package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AkshithaKulal/placementpro/internal/models"
	appErrors "github.com/AkshithaKulal/placementpro/pkg/errors"
)

// skillMatchThreshold is the fixed fraction of required skills a candidate
// must match. Not configurable per drive.
const skillMatchThreshold = 0.5

type eligibilityDriveReader interface {
	FindByID(ctx context.Context, id string) (*models.PlacementDrive, error)
}

type candidateLister interface {
	ListCandidates(ctx context.Context, minCGPA float64, maxBacklogs int, branches []string) ([]models.StudentDetail, error)
}

type eligibilityCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// EligibilityService decides which students qualify for a drive.
type EligibilityService struct {
	drives   eligibilityDriveReader
	students candidateLister
	cache    eligibilityCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewEligibilityService constructs EligibilityService. The cache may be nil,
// in which case counts are always recomputed.
func NewEligibilityService(drives eligibilityDriveReader, students candidateLister, cache eligibilityCache, cacheTTL time.Duration, logger *zap.Logger) *EligibilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EligibilityService{drives: drives, students: students, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// EligibleStudents returns the students satisfying the drive's criteria,
// ordered by enrollment number. A missing drive yields an empty list rather
// than an error; callers distinguish "drive missing" via a direct lookup.
func (s *EligibilityService) EligibleStudents(ctx context.Context, driveID string) ([]models.EligibleStudent, error) {
	drive, err := s.drives.FindByID(ctx, driveID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []models.EligibleStudent{}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load drive")
	}

	candidates, err := s.students.ListCandidates(ctx, drive.MinCGPA, drive.MaxBacklogs, drive.EligibleBranches)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate pool")
	}

	eligible := make([]models.EligibleStudent, 0, len(candidates))
	for _, candidate := range candidates {
		if skillMatchRatio(drive.RequiredSkills, candidate.Skills) < skillMatchThreshold {
			continue
		}
		name := candidate.Email
		if candidate.FullName != nil && *candidate.FullName != "" {
			name = *candidate.FullName
		}
		eligible = append(eligible, models.EligibleStudent{
			ID:           candidate.ID,
			UserID:       candidate.UserID,
			Name:         name,
			Email:        candidate.Email,
			Branch:       candidate.Branch,
			CGPA:         candidate.CGPA,
			EnrollmentNo: candidate.EnrollmentNo,
		})
	}
	return eligible, nil
}

// EligibleCount returns the size of the eligible set. It is an alias over
// EligibleStudents and pays the full filtering cost on a cache miss; the
// cache only amortises repeated dashboard reads.
func (s *EligibilityService) EligibleCount(ctx context.Context, driveID string) (int, error) {
	key := eligibleCountKey(driveID)
	if s.cache != nil {
		var cached int
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("eligible count cache read failed", zap.String("drive_id", driveID), zap.Error(err))
		}
	}

	students, err := s.EligibleStudents(ctx, driveID)
	if err != nil {
		return 0, err
	}
	count := len(students)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, count, s.cacheTTL); err != nil {
			s.logger.Warn("eligible count cache write failed", zap.String("drive_id", driveID), zap.Error(err))
		}
	}
	return count, nil
}

// InvalidateCount drops the cached count after a drive's criteria change.
func (s *EligibilityService) InvalidateCount(ctx context.Context, driveID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, eligibleCountKey(driveID)); err != nil {
		s.logger.Warn("eligible count cache invalidation failed", zap.String("drive_id", driveID), zap.Error(err))
	}
}

func eligibleCountKey(driveID string) string {
	return fmt.Sprintf("eligibility:count:%s", driveID)
}

// skillMatchRatio reports the fraction of required skills present in the
// student's skill set. Matching is case-insensitive, trimmed, and uses
// symmetric substring containment so that phrasing variants ("React" vs
// "React.js") still count. An empty requirement list auto-passes.
func skillMatchRatio(required, studentSkills []string) float64 {
	if len(required) == 0 {
		return 1
	}

	normalized := make([]string, 0, len(studentSkills))
	for _, skill := range studentSkills {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(skill)))
	}

	matched := 0
	for _, raw := range required {
		req := strings.ToLower(strings.TrimSpace(raw))
		for _, skill := range normalized {
			if strings.Contains(skill, req) || strings.Contains(req, skill) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(required))
}
