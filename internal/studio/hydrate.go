package studio

import (
	"sort"
	"time"

	"github.com/Simplici0/atelier/internal/crm"
	"github.com/Simplici0/atelier/internal/quote"
)

// QuoteSummary is the list view of a quote inside hydrated records.
type QuoteSummary struct {
	ID         string       `json:"id"`
	Number     string       `json:"number"`
	ProjectID  string       `json:"projectId"`
	Status     quote.Status `json:"status"`
	TotalPrice float64      `json:"totalPrice"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// HydratedClient joins a client with its properties, projects and quotes.
// Views come from a shared cache and must be treated as read-only.
type HydratedClient struct {
	crm.Client
	Properties []crm.Property `json:"properties"`
	Projects   []crm.Project  `json:"projects"`
	Quotes     []QuoteSummary `json:"quotes"`
	// TotalQuoted sums final prices, excluding rejected quotes.
	TotalQuoted float64 `json:"totalQuoted"`
}

// HydratedProject joins a project with its client, property and quotes.
type HydratedProject struct {
	crm.Project
	Client      crm.Client     `json:"client"`
	Property    *crm.Property  `json:"property,omitempty"`
	Quotes      []QuoteSummary `json:"quotes"`
	LatestQuote *QuoteSummary  `json:"latestQuote,omitempty"`
}

type versionKey [numCollections]uint64

type cachedClient struct {
	key  versionKey
	view HydratedClient
}

type cachedProject struct {
	key  versionKey
	view HydratedProject
}

// HydratedClient returns the joined view of client id, reusing the cached
// view while none of the collections it reads has changed.
func (s *State) HydratedClient(id string) (HydratedClient, bool) {
	e := s.snapshot()
	key := versionKey(e.versions)

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if cached, ok := s.clients[id]; ok && cached.key == key {
		return cached.view, true
	}
	view, ok := hydrateClient(e, id)
	if !ok {
		delete(s.clients, id)
		return HydratedClient{}, false
	}
	s.rebuilds++
	s.clients[id] = cachedClient{key: key, view: view}
	return view, true
}

// HydratedProject returns the joined view of project id.
func (s *State) HydratedProject(id string) (HydratedProject, bool) {
	e := s.snapshot()
	key := versionKey(e.versions)

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if cached, ok := s.project[id]; ok && cached.key == key {
		return cached.view, true
	}
	view, ok := hydrateProject(e, id)
	if !ok {
		delete(s.project, id)
		return HydratedProject{}, false
	}
	s.rebuilds++
	s.project[id] = cachedProject{key: key, view: view}
	return view, true
}

func hydrateClient(e *entities, id string) (HydratedClient, bool) {
	c, ok := e.clients[id]
	if !ok {
		return HydratedClient{}, false
	}
	view := HydratedClient{
		Client:     c,
		Properties: []crm.Property{},
		Projects:   []crm.Project{},
		Quotes:     []QuoteSummary{},
	}
	for _, p := range e.properties {
		if p.ClientID == id {
			view.Properties = append(view.Properties, p)
		}
	}
	for _, p := range e.projects {
		if p.ClientID == id {
			view.Projects = append(view.Projects, p)
		}
	}
	for _, q := range e.quotes {
		if q.ClientID != id {
			continue
		}
		view.Quotes = append(view.Quotes, summarize(q))
		if q.Status != quote.StatusRejected {
			view.TotalQuoted += q.Calculations.TotalPrice
		}
	}

	sort.Slice(view.Properties, func(i, j int) bool { return view.Properties[i].Name < view.Properties[j].Name })
	sort.Slice(view.Projects, func(i, j int) bool { return view.Projects[i].CreatedAt.After(view.Projects[j].CreatedAt) })
	sortSummaries(view.Quotes)
	return view, true
}

func hydrateProject(e *entities, id string) (HydratedProject, bool) {
	p, ok := e.projects[id]
	if !ok {
		return HydratedProject{}, false
	}
	view := HydratedProject{
		Project: p,
		Client:  e.clients[p.ClientID],
		Quotes:  []QuoteSummary{},
	}
	if prop, ok := e.properties[p.PropertyID]; ok {
		view.Property = &prop
	}
	for _, q := range e.quotes {
		if q.ProjectID == id {
			view.Quotes = append(view.Quotes, summarize(q))
		}
	}
	sortSummaries(view.Quotes)
	if len(view.Quotes) > 0 {
		latest := view.Quotes[0]
		view.LatestQuote = &latest
	}
	return view, true
}

func summarize(q quote.Quote) QuoteSummary {
	return QuoteSummary{
		ID:         q.ID,
		Number:     q.Number,
		ProjectID:  q.ProjectID,
		Status:     q.Status,
		TotalPrice: q.Calculations.TotalPrice,
		CreatedAt:  q.CreatedAt,
	}
}

// sortSummaries orders newest first.
func sortSummaries(qs []QuoteSummary) {
	sort.Slice(qs, func(i, j int) bool {
		if !qs[i].CreatedAt.Equal(qs[j].CreatedAt) {
			return qs[i].CreatedAt.After(qs[j].CreatedAt)
		}
		return qs[i].Number > qs[j].Number
	})
}
