// Package studio holds the in-memory application state: normalized entity
// maps owned by the composition root, changed only through Apply.
package studio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Simplici0/atelier/internal/crm"
	"github.com/Simplici0/atelier/internal/quote"
)

type collection int

const (
	colClients collection = iota
	colProperties
	colProjects
	colQuotes
	numCollections
)

// entities is one immutable generation of state. Apply never edits a
// published generation; it clones, mutates the clone and swaps it in.
type entities struct {
	clients    map[string]crm.Client
	properties map[string]crm.Property
	projects   map[string]crm.Project
	quotes     map[string]quote.Quote
	// versions stamps each collection with the generation that last changed it.
	versions [numCollections]uint64
}

func newEntities() *entities {
	return &entities{
		clients:    map[string]crm.Client{},
		properties: map[string]crm.Property{},
		projects:   map[string]crm.Project{},
		quotes:     map[string]quote.Quote{},
	}
}

func (e *entities) clone() *entities {
	out := &entities{
		clients:    make(map[string]crm.Client, len(e.clients)),
		properties: make(map[string]crm.Property, len(e.properties)),
		projects:   make(map[string]crm.Project, len(e.projects)),
		quotes:     make(map[string]quote.Quote, len(e.quotes)),
		versions:   e.versions,
	}
	for k, v := range e.clients {
		out.clients[k] = v
	}
	for k, v := range e.properties {
		out.properties[k] = v
	}
	for k, v := range e.projects {
		out.projects[k] = v
	}
	for k, v := range e.quotes {
		out.quotes[k] = v
	}
	return out
}

// Command is one optimistic change. Mutate applies the tentative transition
// to the in-memory maps; Persist confirms it with the backing store.
type Command struct {
	Name    string
	Mutate  func(tx *Tx) error
	Persist func(ctx context.Context) error
}

// State is the studio's application state.
type State struct {
	cmdMu sync.Mutex // serializes Apply

	mu         sync.RWMutex
	current    *entities
	generation uint64

	cacheMu sync.Mutex
	clients map[string]cachedClient
	project map[string]cachedProject
	// rebuilds counts hydrated views computed rather than served from cache.
	rebuilds int

	db     Persistence
	logger *slog.Logger
	now    func() time.Time
}

// New returns an empty State writing through to db.
func New(db Persistence, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	return &State{
		current: newEntities(),
		clients: map[string]cachedClient{},
		project: map[string]cachedProject{},
		db:      db,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *State) snapshot() *entities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Apply runs cmd: the tentative state becomes visible to readers at once, and
// if Persist fails the exact prior generation is restored.
func (s *State) Apply(ctx context.Context, cmd Command) error {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	prior := s.snapshot()
	tx := &Tx{next: prior.clone()}
	if err := cmd.Mutate(tx); err != nil {
		return err
	}

	s.mu.Lock()
	for c := range tx.touched {
		if tx.touched[c] {
			s.generation++
			tx.next.versions[c] = s.generation
		}
	}
	s.current = tx.next
	s.mu.Unlock()

	if cmd.Persist == nil {
		return nil
	}
	if err := cmd.Persist(ctx); err != nil {
		s.mu.Lock()
		s.current = prior
		s.mu.Unlock()
		s.logger.Warn("state change rolled back",
			slog.String("command", cmd.Name),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return nil
}

// Tx is the tentative state handed to Command.Mutate.
type Tx struct {
	next    *entities
	touched [numCollections]bool
}

func (tx *Tx) Client(id string) (crm.Client, bool) {
	c, ok := tx.next.clients[id]
	return c, ok
}

func (tx *Tx) Project(id string) (crm.Project, bool) {
	p, ok := tx.next.projects[id]
	return p, ok
}

func (tx *Tx) Property(id string) (crm.Property, bool) {
	p, ok := tx.next.properties[id]
	return p, ok
}

func (tx *Tx) Quote(id string) (quote.Quote, bool) {
	q, ok := tx.next.quotes[id]
	return q, ok
}

func (tx *Tx) PutClient(c crm.Client) {
	tx.next.clients[c.ID] = c
	tx.touched[colClients] = true
}

func (tx *Tx) PutProperty(p crm.Property) {
	tx.next.properties[p.ID] = p
	tx.touched[colProperties] = true
}

func (tx *Tx) PutProject(p crm.Project) {
	tx.next.projects[p.ID] = p
	tx.touched[colProjects] = true
}

func (tx *Tx) PutQuote(q quote.Quote) {
	tx.next.quotes[q.ID] = q
	tx.touched[colQuotes] = true
}

// DeleteClient removes a client and everything hanging off it, matching the
// cascading foreign keys of the database.
func (tx *Tx) DeleteClient(id string) {
	delete(tx.next.clients, id)
	tx.touched[colClients] = true
	for pid, p := range tx.next.properties {
		if p.ClientID == id {
			delete(tx.next.properties, pid)
			tx.touched[colProperties] = true
		}
	}
	for pid, p := range tx.next.projects {
		if p.ClientID == id {
			tx.DeleteProject(pid)
		}
	}
	for qid, q := range tx.next.quotes {
		if q.ClientID == id {
			delete(tx.next.quotes, qid)
			tx.touched[colQuotes] = true
		}
	}
}

// DeleteProperty removes a property and detaches the projects using it.
func (tx *Tx) DeleteProperty(id string) {
	delete(tx.next.properties, id)
	tx.touched[colProperties] = true
	for _, p := range tx.next.projects {
		if p.PropertyID == id {
			p.PropertyID = ""
			tx.PutProject(p)
		}
	}
}

// DeleteProject removes a project and its quotes.
func (tx *Tx) DeleteProject(id string) {
	delete(tx.next.projects, id)
	tx.touched[colProjects] = true
	for qid, q := range tx.next.quotes {
		if q.ProjectID == id {
			delete(tx.next.quotes, qid)
			tx.touched[colQuotes] = true
		}
	}
}

// Loader reads every entity from persistence.
type Loader interface {
	ListClients(ctx context.Context) ([]crm.Client, error)
	ListProperties(ctx context.Context) ([]crm.Property, error)
	ListProjects(ctx context.Context) ([]crm.Project, error)
	ListQuotes(ctx context.Context, search string) ([]quote.Quote, error)
}

// Load replaces the state with what src holds.
func (s *State) Load(ctx context.Context, src Loader) error {
	clients, err := src.ListClients(ctx)
	if err != nil {
		return fmt.Errorf("load clients: %w", err)
	}
	properties, err := src.ListProperties(ctx)
	if err != nil {
		return fmt.Errorf("load properties: %w", err)
	}
	projects, err := src.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("load projects: %w", err)
	}
	quotes, err := src.ListQuotes(ctx, "")
	if err != nil {
		return fmt.Errorf("load quotes: %w", err)
	}

	err = s.Apply(ctx, Command{
		Name: "load",
		Mutate: func(tx *Tx) error {
			tx.next = newEntities()
			for _, c := range clients {
				tx.PutClient(c)
			}
			for _, p := range properties {
				tx.PutProperty(p)
			}
			for _, p := range projects {
				tx.PutProject(p)
			}
			for _, q := range quotes {
				tx.PutQuote(q)
			}
			for c := range tx.touched {
				tx.touched[c] = true
			}
			return nil
		},
	})
	if err != nil {
		return err
	}

	s.logger.Info("state loaded",
		slog.Int("clients", len(clients)),
		slog.Int("projects", len(projects)),
		slog.Int("quotes", len(quotes)),
	)
	return nil
}
