// Package crm holds the studio's client, property and project records.
package crm

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// ProjectStatus tracks where a project is in delivery.
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
)

// Client is a customer of the studio.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c Client) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&c.Email, is.EmailFormat),
	)
}

// Property is a site owned or managed by a client.
type Property struct {
	ID           string    `json:"id"`
	ClientID     string    `json:"clientId"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	PropertyType string    `json:"propertyType"`
	SizeSqm      float64   `json:"sizeSqm"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (p Property) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ClientID, validation.Required),
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.SizeSqm, validation.Min(0.0)),
	)
}

// Project is a piece of work for a client, optionally tied to a property.
type Project struct {
	ID         string        `json:"id"`
	ClientID   string        `json:"clientId"`
	PropertyID string        `json:"propertyId,omitempty"`
	Name       string        `json:"name"`
	Status     ProjectStatus `json:"status"`
	Budget     float64       `json:"budget"`
	StartDate  string        `json:"startDate,omitempty"`
	EndDate    string        `json:"endDate,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

func (p Project) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ClientID, validation.Required),
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Status, validation.In(ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted)),
		validation.Field(&p.Budget, validation.Min(0.0)),
		validation.Field(&p.StartDate, validation.Date("2006-01-02")),
		validation.Field(&p.EndDate, validation.Date("2006-01-02")),
	)
}

// WithDefaults fills the zero status.
func (p Project) WithDefaults() Project {
	if p.Status == "" {
		p.Status = ProjectPlanning
	}
	return p
}
