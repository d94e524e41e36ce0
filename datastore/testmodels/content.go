/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package testmodels holds content types shared by tests.
package testmodels

import "github.com/go-openapi/strfmt"

type Post struct {

	// Unique identifier of the post.
	// Required: true
	ID string `json:"id"`

	// Title of the post, resolved to one locale.
	// Required: true
	Title string `json:"title"`

	// Publication status.
	// Enum: [draft published]
	Status string `json:"status,omitempty"`

	// view count
	Views int `json:"views,omitempty"`

	// tags
	Tags []string `json:"tags,omitempty"`

	// Timestamp when the post was created.
	// Required: true
	// Format: date-time
	CreatedAt *strfmt.DateTime `json:"createdAt"`

	// Timestamp when the post was last updated.
	// Format: date-time
	UpdatedAt *strfmt.DateTime `json:"updatedAt,omitempty"`
}

type SiteSettings struct {

	// Unique identifier of the settings document.
	ID string `json:"id"`

	// site name
	SiteName string `json:"siteName"`

	// site Url
	SiteURL string `json:"siteUrl,omitempty"`

	// Timestamp when the settings were last updated.
	// Format: date-time
	UpdatedAt *strfmt.DateTime `json:"updatedAt,omitempty"`
}
