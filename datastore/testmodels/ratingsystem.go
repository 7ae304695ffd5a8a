/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package testmodels

import (
	"fmt"

	"github.com/go-openapi/strfmt"
)

// RatingSystem is a typed document used by binding and backend tests.
// Its id travels under the "id" property like every stored document.
type RatingSystem struct {

	// Timestamp when the rating system was created.
	// Required: true
	// Format: date-time
	CreatedAt *strfmt.DateTime `json:"createdAt"`

	// A description of the rating system.
	Description string `json:"description,omitempty"`

	// Unique identifier for the rating system.
	// Required: true
	ID string `json:"id"`

	// Name of the rating system.
	// Required: true
	Name *string `json:"name"`

	// Partition the rating system is stored under.
	Region string `json:"region,omitempty"`

	// site Url
	SiteURL strfmt.URI `json:"siteUrl,omitempty"`

	// Timestamp when the rating system was last updated.
	// Format: date-time
	UpdatedAt *strfmt.DateTime `json:"updatedAt,omitempty"`
}

// Validate checks required fields and formats.
func (m *RatingSystem) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("id in body is required")
	}
	if m.Name == nil || *m.Name == "" {
		return fmt.Errorf("name in body is required")
	}
	if m.CreatedAt == nil {
		return fmt.Errorf("createdAt in body is required")
	}
	if m.SiteURL != "" && !strfmt.Default.Validates("uri", m.SiteURL.String()) {
		return fmt.Errorf("siteUrl in body must be of type uri: %q", m.SiteURL)
	}
	return nil
}

// NewRatingSystem returns a valid rating system created at the given RFC 3339 time.
func NewRatingSystem(id, name, createdAt string) (*RatingSystem, error) {
	created, err := strfmt.ParseDateTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("createdAt in body must be of type date-time: %w", err)
	}
	return &RatingSystem{
		ID:        id,
		Name:      &name,
		CreatedAt: &created,
	}, nil
}
