// Package testutil provides an in-memory implementation of every repository so
// services and handlers can be exercised without Postgres.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
)

// Store holds all rows. Unique constraints raise the same pgconn errors Postgres would.
type Store struct {
	mu         sync.RWMutex
	orgs       map[string]domain.Organization
	users      map[string]domain.User
	teams      map[string]domain.Team
	categories map[string]domain.Category
	tickets    map[string]domain.Ticket
	last       time.Time

	// BeforeTicketInsert, when set, runs under the store lock before a ticket insert.
	BeforeTicketInsert func(t *domain.Ticket) error
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		orgs:       map[string]domain.Organization{},
		users:      map[string]domain.User{},
		teams:      map[string]domain.Team{},
		categories: map[string]domain.Category{},
		tickets:    map[string]domain.Ticket{},
	}
}

func (s *Store) Organizations() repository.OrganizationRepository { return orgRepo{s} }
func (s *Store) Users() repository.UserRepository                 { return userRepo{s} }
func (s *Store) Teams() repository.TeamRepository                 { return teamRepo{s} }
func (s *Store) Categories() repository.CategoryRepository        { return categoryRepo{s} }
func (s *Store) Tickets() repository.TicketRepository             { return ticketRepo{s} }

// now returns a strictly increasing timestamp; caller holds the lock.
func (s *Store) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

// PutTicket stores t as-is, keeping its ID and timestamps.
func (s *Store) PutTicket(t domain.Ticket) domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.tickets[t.ID] = cloneTicket(t)
	return t
}

// TicketCount returns the number of stored tickets.
func (s *Store) TicketCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tickets)
}

type orgRepo struct{ s *Store }

func (r orgRepo) CreateWithAdmin(_ context.Context, org *domain.Organization, admin *domain.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orgs {
		if o.Slug == org.Slug {
			return uniqueViolation("organizations_slug_key")
		}
		if o.TaxID == org.TaxID {
			return uniqueViolation("organizations_tax_id_key")
		}
	}
	if s.emailTaken(admin.Email) {
		return uniqueViolation("users_email_key")
	}
	org.ID = uuid.NewString()
	org.CreatedAt = s.now()
	s.orgs[org.ID] = *org

	admin.OrganizationID = org.ID
	s.insertUser(admin)
	return nil
}

func (r orgRepo) GetByID(_ context.Context, id string) (*domain.Organization, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orgs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &o, nil
}

type userRepo struct{ s *Store }

func (s *Store) emailTaken(email string) bool {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (s *Store) insertUser(u *domain.User) {
	u.ID = uuid.NewString()
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = *u
}

func (r userRepo) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.emailTaken(u.Email) {
		return uniqueViolation("users_email_key")
	}
	r.s.insertUser(u)
	return nil
}

func (r userRepo) Update(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[u.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	existing.Name = u.Name
	existing.PasswordHash = u.PasswordHash
	existing.Role = u.Role
	existing.TeamID = u.TeamID
	existing.Document = u.Document
	existing.DocumentType = u.DocumentType
	existing.UpdatedAt = r.s.now()
	r.s.users[u.ID] = existing
	u.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r userRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.users, id)
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r userRepo) matching(filter repository.UserFilter) []domain.User {
	needle := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []domain.User
	for _, u := range r.s.users {
		if u.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if needle != "" && !containsAny(needle, u.Name, u.Email) {
			continue
		}
		out = append(out, u)
	}
	sortBy(out, filter.Page, func(u domain.User) (string, time.Time, string) {
		switch filter.Page.Sort {
		case "name":
			return u.Name, u.CreatedAt, u.ID
		case "email":
			return u.Email, u.CreatedAt, u.ID
		}
		return "", u.CreatedAt, u.ID
	})
	return out
}

func (r userRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return paginate(r.matching(filter), filter.Page), nil
}

func (r userRepo) Count(_ context.Context, filter repository.UserFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.matching(filter))), nil
}

type teamRepo struct{ s *Store }

func (r teamRepo) Create(_ context.Context, t *domain.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.teams {
		if existing.OrganizationID == t.OrganizationID && existing.Slug == t.Slug {
			return uniqueViolation("teams_org_slug_key")
		}
	}
	t.ID = uuid.NewString()
	t.CreatedAt = r.s.now()
	t.UpdatedAt = t.CreatedAt
	r.s.teams[t.ID] = *t
	return nil
}

func (r teamRepo) Update(_ context.Context, t *domain.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.teams[t.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	existing.Name = t.Name
	existing.DisplayName = t.DisplayName
	existing.Description = t.Description
	existing.UpdatedAt = r.s.now()
	r.s.teams[t.ID] = existing
	t.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r teamRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.teams[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.teams, id)
	for uid, u := range r.s.users {
		if u.TeamID != nil && *u.TeamID == id {
			u.TeamID = nil
			r.s.users[uid] = u
		}
	}
	return nil
}

func (r teamRepo) GetByID(_ context.Context, id string) (*domain.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.teams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (r teamRepo) matching(filter repository.TeamFilter) []domain.Team {
	needle := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []domain.Team
	for _, t := range r.s.teams {
		if t.OrganizationID != filter.OrganizationID {
			continue
		}
		if needle != "" && !containsAny(needle, t.Name, t.DisplayName, t.Slug) {
			continue
		}
		out = append(out, t)
	}
	sortBy(out, filter.Page, func(t domain.Team) (string, time.Time, string) {
		if filter.Page.Sort == "name" {
			return t.Name, t.CreatedAt, t.ID
		}
		return "", t.CreatedAt, t.ID
	})
	return out
}

func (r teamRepo) List(_ context.Context, filter repository.TeamFilter) ([]domain.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return paginate(r.matching(filter), filter.Page), nil
}

func (r teamRepo) Count(_ context.Context, filter repository.TeamFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.matching(filter))), nil
}

type categoryRepo struct{ s *Store }

func (r categoryRepo) Create(_ context.Context, c *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = uuid.NewString()
	c.CreatedAt = r.s.now()
	r.s.categories[c.ID] = *c
	return nil
}

func (r categoryRepo) Update(_ context.Context, c *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.categories[c.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	existing.Name = c.Name
	existing.Description = c.Description
	r.s.categories[c.ID] = existing
	return nil
}

func (r categoryRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.categories, id)
	return nil
}

func (r categoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (r categoryRepo) matching(filter repository.CategoryFilter) []domain.Category {
	needle := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []domain.Category
	for _, c := range r.s.categories {
		if c.OrganizationID != filter.OrganizationID {
			continue
		}
		if needle != "" && !containsAny(needle, c.Name, c.Description) {
			continue
		}
		out = append(out, c)
	}
	sortBy(out, filter.Page, func(c domain.Category) (string, time.Time, string) {
		if filter.Page.Sort == "name" {
			return c.Name, c.CreatedAt, c.ID
		}
		return "", c.CreatedAt, c.ID
	})
	return out
}

func (r categoryRepo) List(_ context.Context, filter repository.CategoryFilter) ([]domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return paginate(r.matching(filter), filter.Page), nil
}

func (r categoryRepo) Count(_ context.Context, filter repository.CategoryFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.matching(filter))), nil
}

func (r categoryRepo) ListNames(_ context.Context, organizationID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var names []string
	for _, c := range r.s.categories {
		if c.OrganizationID == organizationID {
			names = append(names, c.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

type ticketRepo struct{ s *Store }

func (r ticketRepo) Create(_ context.Context, t *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.BeforeTicketInsert != nil {
		if err := r.s.BeforeTicketInsert(t); err != nil {
			return err
		}
	}
	for _, existing := range r.s.tickets {
		if existing.Code == t.Code {
			return uniqueViolation("tickets_code_key")
		}
	}
	t.ID = uuid.NewString()
	t.CreatedAt = r.s.now()
	t.UpdatedAt = t.CreatedAt
	r.s.tickets[t.ID] = cloneTicket(*t)
	return nil
}

func (r ticketRepo) Update(_ context.Context, t *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.tickets[t.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	updated := cloneTicket(*t)
	updated.Code = existing.Code
	updated.OrganizationID = existing.OrganizationID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = r.s.now()
	r.s.tickets[t.ID] = updated
	t.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r ticketRepo) UpdateEnrichment(_ context.Context, id string, e domain.Enrichment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	existing.Title = e.Title
	existing.Priority = e.Priority
	existing.Category = e.Category
	existing.Sentiment = e.Sentiment
	existing.Diagnosis = e.Diagnosis
	existing.SuggestedSolution = e.SuggestedSolution
	existing.UpdatedAt = r.s.now()
	r.s.tickets[id] = cloneTicket(existing)
	return nil
}

func (r ticketRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.tickets, id)
	return nil
}

func (r ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := cloneTicket(t)
	return &c, nil
}

func (r ticketRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, t := range r.s.tickets {
		if t.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r ticketRepo) matching(filter repository.TicketFilter) []domain.Ticket {
	var out []domain.Ticket
	for _, t := range r.s.tickets {
		if t.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && (t.Priority == nil || *t.Priority != *filter.Priority) {
			continue
		}
		if filter.AgentID != nil && (t.AgentID == nil || *t.AgentID != *filter.AgentID) {
			continue
		}
		if filter.CreatedAfter != nil && !t.CreatedAt.After(*filter.CreatedAfter) {
			continue
		}
		if !filter.Search.Matches(&t) {
			continue
		}
		out = append(out, cloneTicket(t))
	}
	sortBy(out, filter.Page, func(t domain.Ticket) (string, time.Time, string) {
		switch filter.Page.Sort {
		case "title":
			return t.Title, t.CreatedAt, t.ID
		case "status":
			return string(t.Status), t.CreatedAt, t.ID
		case "code":
			return t.Code, t.CreatedAt, t.ID
		case "priority":
			if t.Priority == nil {
				return "", t.CreatedAt, t.ID
			}
			return string(*t.Priority), t.CreatedAt, t.ID
		}
		return "", t.CreatedAt, t.ID
	})
	return out
}

func (r ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return paginate(r.matching(filter), filter.Page), nil
}

func (r ticketRepo) Count(_ context.Context, filter repository.TicketFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.matching(filter))), nil
}

func containsAny(needle string, values ...string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

func sortBy[T any](items []T, page repository.Page, key func(T) (string, time.Time, string)) {
	sort.Slice(items, func(i, j int) bool {
		ai, at, aid := key(items[i])
		bi, bt, bid := key(items[j])
		less := false
		switch {
		case ai != bi:
			less = ai < bi
		case !at.Equal(bt):
			less = at.Before(bt)
		default:
			less = aid < bid
		}
		if page.Desc {
			return !less
		}
		return less
	})
}

func paginate[T any](items []T, page repository.Page) []T {
	limit := page.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	t.Priority = clonePtr(t.Priority)
	t.Category = clonePtr(t.Category)
	t.Sentiment = clonePtr(t.Sentiment)
	t.Diagnosis = clonePtr(t.Diagnosis)
	t.SuggestedSolution = clonePtr(t.SuggestedSolution)
	t.CustomerID = clonePtr(t.CustomerID)
	t.AgentID = clonePtr(t.AgentID)
	t.TeamID = clonePtr(t.TeamID)
	t.ResolvedAt = clonePtr(t.ResolvedAt)
	return t
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
