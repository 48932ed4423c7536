package projects

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"uia-atlas/atlas-portal/pkg/catalog"
	"uia-atlas/atlas-portal/pkg/filters"
)

// MemoryRepository keeps projects in process memory. It backs the "memory"
// database driver used for local runs and tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	projects map[uuid.UUID]*Project
	events   []ReviewEvent
	now      func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		projects: make(map[uuid.UUID]*Project),
		now:      time.Now,
	}
}

func clone(p *Project) *Project {
	c := *p
	c.Typologies = append(c.Typologies[:0:0], p.Typologies...)
	c.FundingRequirements = append(c.FundingRequirements[:0:0], p.FundingRequirements...)
	c.GovernmentRequirements = append(c.GovernmentRequirements[:0:0], p.GovernmentRequirements...)
	c.OtherRequirements = append(c.OtherRequirements[:0:0], p.OtherRequirements...)
	c.SDGs = append(c.SDGs[:0:0], p.SDGs...)
	c.ImageURLs = append(c.ImageURLs[:0:0], p.ImageURLs...)
	if p.Latitude != nil {
		lat := *p.Latitude
		c.Latitude = &lat
	}
	if p.Longitude != nil {
		lng := *p.Longitude
		c.Longitude = &lng
	}
	return &c
}

func (r *MemoryRepository) Create(ctx context.Context, p *Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := r.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.WorkflowStatus == "" {
		p.WorkflowStatus = catalog.StatusSubmitted
	}
	r.projects[p.ID] = clone(p)
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, nil
	}
	return clone(p), nil
}

func (r *MemoryRepository) GetByEditToken(ctx context.Context, token string) (*Project, error) {
	if token == "" {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.projects {
		if p.EditToken == token {
			return clone(p), nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) Update(ctx context.Context, p *Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[p.ID]; !ok {
		return ErrNotFound
	}
	p.UpdatedAt = r.now()
	r.projects[p.ID] = clone(p)
	return nil
}

func (r *MemoryRepository) List(ctx context.Context, q ListQuery) ([]Project, int64, error) {
	r.mu.RLock()
	matched := make([]Project, 0, len(r.projects))
	for _, p := range r.projects {
		if statusIn(p.WorkflowStatus, q.Statuses) && Matches(q.Filters, p) {
			matched = append(matched, *clone(p))
		}
	}
	r.mu.RUnlock()

	sortProjects(matched, q.SortBy, q.SortOrder)
	total := int64(len(matched))

	if q.PageSize > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * q.PageSize
		if start >= len(matched) {
			return []Project{}, total, nil
		}
		end := start + q.PageSize
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (r *MemoryRepository) CreateEvent(ctx context.Context, e *ReviewEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now()
	}
	r.events = append(r.events, *e)
	return nil
}

func (r *MemoryRepository) ListEvents(ctx context.Context, projectID uuid.UUID) ([]ReviewEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []ReviewEvent
	for _, e := range r.events {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Matches evaluates the filter predicate against one project in Go. It
// mirrors FilterClause.
func Matches(f filters.Set, p *Project) bool {
	for _, param := range filters.QueryParams(f) {
		switch filters.Field(param.Key) {
		case filters.FieldRegion:
			if string(p.Region) != param.Value {
				return false
			}
		case filters.FieldSDG:
			if !p.HasSDG(f.SDG) {
				return false
			}
		case filters.FieldCity:
			if p.City != param.Value {
				return false
			}
		case filters.FieldFundedBy:
			if !contains(p.FundingRequirements, param.Value) {
				return false
			}
		case filters.FieldSearch:
			term := strings.ToLower(param.Value)
			if !strings.Contains(strings.ToLower(p.ProjectName), term) &&
				!strings.Contains(strings.ToLower(p.City), term) &&
				!strings.Contains(strings.ToLower(p.Country), term) {
				return false
			}
		}
	}
	return true
}

func statusIn(s catalog.WorkflowStatus, statuses []catalog.WorkflowStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, candidate := range statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func sortProjects(ps []Project, by catalog.SortField, order catalog.SortOrder) {
	less := func(a, b *Project) int {
		switch by {
		case catalog.SortByName:
			return strings.Compare(strings.ToLower(a.ProjectName), strings.ToLower(b.ProjectName))
		case catalog.SortByFundingNeeded:
			switch {
			case a.FundingNeeded < b.FundingNeeded:
				return -1
			case a.FundingNeeded > b.FundingNeeded:
				return 1
			}
			return 0
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	sort.SliceStable(ps, func(i, j int) bool {
		c := less(&ps[i], &ps[j])
		if c == 0 {
			return ps[i].ID.String() < ps[j].ID.String()
		}
		if order == catalog.SortAsc {
			return c < 0
		}
		return c > 0
	})
}
