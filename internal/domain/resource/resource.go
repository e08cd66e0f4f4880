// Package resource holds the catalog records being reindexed, their relationship map and the
// per-variant transforms that turn a record into a search document.
package resource

import "time"

// Resource is one catalog record. Read-only: the reindexer never writes it back.
// Empty strings stand for NULL columns.
type Resource struct {
	ID               string
	Affiliation      string
	LocalID          string
	QualityLevel     string
	Name             string
	Group            string
	Type             string
	ShortDescription string
	ProviderID       string
	Description      string
	Topics           string
	Keywords         string
	Audience         string
	StartDateTime    *time.Time
	EndDateTime      *time.Time
}

// Relation is a directed, typed edge between two resources.
type Relation struct {
	FirstResourceID  string
	SecondResourceID string
	RelationType     string
}
