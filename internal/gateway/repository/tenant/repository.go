// Package tenant persists orgs and projects. The startup seed upserts the
// default tenant so request handlers can fall back to configured ids instead
// of literal constants.
package tenant

import "context"

type Org struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Project struct {
	ID    string `json:"id"`
	OrgID string `json:"orgId"`
	Name  string `json:"name"`
}

type Store interface {
	EnsureOrg(ctx context.Context, org *Org) error
	EnsureProject(ctx context.Context, p *Project) error
}
