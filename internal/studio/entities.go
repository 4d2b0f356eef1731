package studio

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/Simplici0/atelier/internal/crm"
	"github.com/Simplici0/atelier/internal/quote"
	"github.com/Simplici0/atelier/internal/store"
)

// Persistence is the write side State confirms every command against.
type Persistence interface {
	CreateClient(ctx context.Context, c crm.Client) error
	UpdateClient(ctx context.Context, c crm.Client) error
	DeleteClient(ctx context.Context, id string) error
	CreateProperty(ctx context.Context, p crm.Property) error
	DeleteProperty(ctx context.Context, id string) error
	CreateProject(ctx context.Context, p crm.Project) error
	UpdateProject(ctx context.Context, p crm.Project) error
	DeleteProject(ctx context.Context, id string) error
	CreateQuote(ctx context.Context, q quote.Quote) error
	UpdateQuote(ctx context.Context, q quote.Quote) error
}

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, store.ErrNotFound)
}

func (s *State) CreateClient(ctx context.Context, c crm.Client) (crm.Client, error) {
	if err := c.Validate(); err != nil {
		return crm.Client{}, err
	}
	c.ID = uuid.NewString()
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt

	err := s.Apply(ctx, Command{
		Name:    "create client",
		Mutate:  func(tx *Tx) error { tx.PutClient(c); return nil },
		Persist: func(ctx context.Context) error { return s.db.CreateClient(ctx, c) },
	})
	if err != nil {
		return crm.Client{}, err
	}
	return c, nil
}

func (s *State) UpdateClient(ctx context.Context, c crm.Client) (crm.Client, error) {
	if err := c.Validate(); err != nil {
		return crm.Client{}, err
	}
	err := s.Apply(ctx, Command{
		Name: "update client",
		Mutate: func(tx *Tx) error {
			existing, ok := tx.Client(c.ID)
			if !ok {
				return notFound("client", c.ID)
			}
			c.CreatedAt = existing.CreatedAt
			c.UpdatedAt = s.now()
			tx.PutClient(c)
			return nil
		},
		Persist: func(ctx context.Context) error { return s.db.UpdateClient(ctx, c) },
	})
	if err != nil {
		return crm.Client{}, err
	}
	return c, nil
}

func (s *State) DeleteClient(ctx context.Context, id string) error {
	return s.Apply(ctx, Command{
		Name: "delete client",
		Mutate: func(tx *Tx) error {
			if _, ok := tx.Client(id); !ok {
				return notFound("client", id)
			}
			tx.DeleteClient(id)
			return nil
		},
		Persist: func(ctx context.Context) error { return s.db.DeleteClient(ctx, id) },
	})
}

func (s *State) CreateProperty(ctx context.Context, p crm.Property) (crm.Property, error) {
	if err := p.Validate(); err != nil {
		return crm.Property{}, err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = s.now()

	err := s.Apply(ctx, Command{
		Name: "create property",
		Mutate: func(tx *Tx) error {
			if _, ok := tx.Client(p.ClientID); !ok {
				return notFound("client", p.ClientID)
			}
			tx.PutProperty(p)
			return nil
		},
		Persist: func(ctx context.Context) error { return s.db.CreateProperty(ctx, p) },
	})
	if err != nil {
		return crm.Property{}, err
	}
	return p, nil
}

func (s *State) DeleteProperty(ctx context.Context, id string) error {
	return s.Apply(ctx, Command{
		Name: "delete property",
		Mutate: func(tx *Tx) error {
			if _, ok := tx.Property(id); !ok {
				return notFound("property", id)
			}
			tx.DeleteProperty(id)
			return nil
		},
		Persist: func(ctx context.Context) error { return s.db.DeleteProperty(ctx, id) },
	})
}

func (s *State) CreateProject(ctx context.Context, p crm.Project) (crm.Project, error) {
	p = p.WithDefaults()
	if err := p.Validate(); err != nil {
		return crm.Project{}, err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt

	err := s.Apply(ctx, Command{
		Name: "create project",
		Mutate: func(tx *Tx) error {
			if err := checkProjectRefs(tx, p); err != nil {
				return err
			}
			tx.PutProject(p)
			return nil
		},
		Persist: func(ctx context.Context) error { return s.db.CreateProject(ctx, p) },
	})
	if err != nil {
		return crm.Project{}, err
	}
	return p, nil
}

func (s *State) UpdateProject(ctx context.Context, p crm.Project) (crm.Project, error) {
	p = p.WithDefaults()
	if err := p.Validate(); err != nil {
		return crm.Project{}, err
	}
	err := s.Apply(ctx, Command{
		Name: "update project",
		Mutate: func(tx *Tx) error {
			existing, ok := tx.Project(p.ID)
			if !ok {
				return notFound("project", p.ID)
			}
			if err := checkProjectRefs(tx, p); err != nil {
				return err
			}
			p.CreatedAt = existing.CreatedAt
			p.UpdatedAt = s.now()
			tx.PutProject(p)
			return nil
		},
		Persist: func(ctx context.Context) error { return s.db.UpdateProject(ctx, p) },
	})
	if err != nil {
		return crm.Project{}, err
	}
	return p, nil
}

func (s *State) DeleteProject(ctx context.Context, id string) error {
	return s.Apply(ctx, Command{
		Name: "delete project",
		Mutate: func(tx *Tx) error {
			if _, ok := tx.Project(id); !ok {
				return notFound("project", id)
			}
			tx.DeleteProject(id)
			return nil
		},
		Persist: func(ctx context.Context) error { return s.db.DeleteProject(ctx, id) },
	})
}

func checkProjectRefs(tx *Tx, p crm.Project) error {
	if _, ok := tx.Client(p.ClientID); !ok {
		return notFound("client", p.ClientID)
	}
	if p.PropertyID == "" {
		return nil
	}
	prop, ok := tx.Property(p.PropertyID)
	if !ok {
		return notFound("property", p.PropertyID)
	}
	if prop.ClientID != p.ClientID {
		return fmt.Errorf("property %s belongs to another client", p.PropertyID)
	}
	return nil
}

// CreateQuote implements quote.Repository.
func (s *State) CreateQuote(ctx context.Context, q quote.Quote) error {
	return s.Apply(ctx, Command{
		Name: "create quote",
		Mutate: func(tx *Tx) error {
			if err := checkQuoteRefs(tx, q); err != nil {
				return err
			}
			tx.PutQuote(q)
			return nil
		},
		Persist: func(ctx context.Context) error { return s.db.CreateQuote(ctx, q) },
	})
}

// UpdateQuote implements quote.Repository.
func (s *State) UpdateQuote(ctx context.Context, q quote.Quote) error {
	return s.Apply(ctx, Command{
		Name: "update quote",
		Mutate: func(tx *Tx) error {
			if _, ok := tx.Quote(q.ID); !ok {
				return notFound("quote", q.ID)
			}
			if err := checkQuoteRefs(tx, q); err != nil {
				return err
			}
			tx.PutQuote(q)
			return nil
		},
		Persist: func(ctx context.Context) error { return s.db.UpdateQuote(ctx, q) },
	})
}

func checkQuoteRefs(tx *Tx, q quote.Quote) error {
	if _, ok := tx.Client(q.ClientID); !ok {
		return notFound("client", q.ClientID)
	}
	p, ok := tx.Project(q.ProjectID)
	if !ok {
		return notFound("project", q.ProjectID)
	}
	if p.ClientID != q.ClientID {
		return fmt.Errorf("project %s belongs to another client", q.ProjectID)
	}
	return nil
}

// GetQuote implements quote.Repository.
func (s *State) GetQuote(_ context.Context, id string) (quote.Quote, error) {
	q, ok := s.snapshot().quotes[id]
	if !ok {
		return quote.Quote{}, notFound("quote", id)
	}
	return q, nil
}

// CountQuotesWithPrefix implements quote.Repository.
func (s *State) CountQuotesWithPrefix(_ context.Context, prefix string) (int, error) {
	n := 0
	for _, q := range s.snapshot().quotes {
		if strings.HasPrefix(q.Number, prefix) {
			n++
		}
	}
	return n, nil
}

func (s *State) Client(id string) (crm.Client, bool) {
	c, ok := s.snapshot().clients[id]
	return c, ok
}

func (s *State) Project(id string) (crm.Project, bool) {
	p, ok := s.snapshot().projects[id]
	return p, ok
}

// Clients returns every client ordered by name.
func (s *State) Clients() []crm.Client {
	e := s.snapshot()
	out := make([]crm.Client, 0, len(e.clients))
	for _, c := range e.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Projects returns every project, newest first.
func (s *State) Projects() []crm.Project {
	e := s.snapshot()
	out := make([]crm.Project, 0, len(e.projects))
	for _, p := range e.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
