package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"uia-atlas/atlas-portal/pkg/catalog"
	"uia-atlas/atlas-portal/pkg/filters"
)

// ListQuery selects and orders projects.
type ListQuery struct {
	Statuses  []catalog.WorkflowStatus // empty means any status
	Filters   filters.Set
	Page      int
	PageSize  int // zero returns every match
	SortBy    catalog.SortField
	SortOrder catalog.SortOrder
}

// Repository persists projects and their review history. Lookups return
// nil, nil when nothing matches.
type Repository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	GetByEditToken(ctx context.Context, token string) (*Project, error)
	Update(ctx context.Context, p *Project) error
	List(ctx context.Context, q ListQuery) ([]Project, int64, error)
	CreateEvent(ctx context.Context, e *ReviewEvent) error
	ListEvents(ctx context.Context, projectID uuid.UUID) ([]ReviewEvent, error)
}

var sortColumns = map[catalog.SortField]string{
	catalog.SortByName:          "project_name",
	catalog.SortByCreatedAt:     "created_at",
	catalog.SortByFundingNeeded: "funding_needed",
}

// FilterClause renders the active constraints of f as a SQL predicate with
// "?" placeholders. It returns "" when f is inactive.
func FilterClause(f filters.Set) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	for _, p := range filters.QueryParams(f) {
		switch filters.Field(p.Key) {
		case filters.FieldRegion:
			clauses = append(clauses, "uia_region = ?")
			args = append(args, p.Value)
		case filters.FieldSDG:
			clauses = append(clauses, "? = ANY(sdgs)")
			args = append(args, f.SDG)
		case filters.FieldCity:
			clauses = append(clauses, "city = ?")
			args = append(args, p.Value)
		case filters.FieldFundedBy:
			clauses = append(clauses, "? = ANY(funding_requirements)")
			args = append(args, p.Value)
		case filters.FieldSearch:
			term := "%" + escapeLike(p.Value) + "%"
			clauses = append(clauses, "(project_name ILIKE ? OR city ILIKE ? OR country ILIKE ?)")
			args = append(args, term, term, term)
		}
	}
	return strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// GormRepository is the postgres-backed Repository.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// AutoMigrate creates or updates the project tables.
func (r *GormRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&Project{}, &ReviewEvent{})
}

func (r *GormRepository) Create(ctx context.Context, p *Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *GormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	var p Project
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepository) GetByEditToken(ctx context.Context, token string) (*Project, error) {
	if token == "" {
		return nil, nil
	}
	var p Project
	err := r.db.WithContext(ctx).First(&p, "edit_token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepository) Update(ctx context.Context, p *Project) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *GormRepository) List(ctx context.Context, q ListQuery) ([]Project, int64, error) {
	tx := r.db.WithContext(ctx).Model(&Project{})
	if len(q.Statuses) > 0 {
		tx = tx.Where("workflow_status IN ?", q.Statuses)
	}
	if clause, args := FilterClause(q.Filters); clause != "" {
		tx = tx.Where(clause, args...)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if q.SortOrder == catalog.SortAsc {
		direction = "ASC"
	}
	tx = tx.Order(column + " " + direction).Order("id")
	if q.PageSize > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		tx = tx.Offset((page - 1) * q.PageSize).Limit(q.PageSize)
	}

	var out []Project
	if err := tx.Find(&out).Error; err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	return out, total, nil
}

func (r *GormRepository) CreateEvent(ctx context.Context, e *ReviewEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *GormRepository) ListEvents(ctx context.Context, projectID uuid.UUID) ([]ReviewEvent, error) {
	var events []ReviewEvent
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&events).Error
	return events, err
}
