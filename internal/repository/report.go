package repository

import (
	"context"
	"time"

	"adminhub/internal/cache"
	"adminhub/internal/models"

	"gorm.io/gorm"
)

// ReportFilter narrows report listings.
type ReportFilter struct {
	Status     string
	TargetType string
}

// ReportRepository defines persistence operations for user reports.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	List(ctx context.Context, filter ReportFilter, page Page) ([]models.Report, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	Resolve(ctx context.Context, id, resolverID uint, note, action string) (*models.Report, error)
	CountOpen(ctx context.Context) (int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Omit("Reporter", "ReportedUser").Create(report).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateDashboard(ctx)
	return nil
}

func (r *reportRepository) List(ctx context.Context, filter ReportFilter, page Page) ([]models.Report, int64, error) {
	query := readDB(r.db).WithContext(ctx).Model(&models.Report{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TargetType != "" {
		query = query.Where("target_type = ?", filter.TargetType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var reports []models.Report
	err := page.apply(query).
		Preload("Reporter").
		Preload("ReportedUser").
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return reports, total, nil
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).Preload("Reporter").Preload("ReportedUser").First(&report, id).Error; err != nil {
		return nil, notFoundOr(err, "Report", id)
	}
	return &report, nil
}

// Resolve closes an open report. Resolving an already resolved report is a conflict.
func (r *reportRepository) Resolve(ctx context.Context, id, resolverID uint, note, action string) (*models.Report, error) {
	result := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ? AND status = ?", id, models.ReportStatusOpen).
		Updates(map[string]any{
			"status":              models.ReportStatusResolved,
			"resolved_by_user_id": resolverID,
			"resolved_at":         time.Now().UTC(),
			"resolution_note":     note,
			"action_taken":        action,
		})
	if result.Error != nil {
		return nil, models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, models.NewConflictError("Report is already resolved")
	}
	cache.InvalidateDashboard(ctx)
	return r.GetByID(ctx, id)
}

func (r *reportRepository) CountOpen(ctx context.Context) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Report{}).Where("status = ?", models.ReportStatusOpen).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
