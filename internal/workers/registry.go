// Package workers keeps the worker profiles used for attribution and pay eligibility.
package workers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/angelmondragon/farmledger/pkg/docstore"
	"github.com/angelmondragon/farmledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmledger/pkg/errors"
	"github.com/angelmondragon/farmledger/pkg/validators"
)

// Profile is one person who may appear as an author in the farm logs.
type Profile struct {
	ID              string           `json:"id" validate:"required,max=64"`
	Name            string           `json:"name" validate:"required,max=120"`
	Role            enums.WorkerRole `json:"role" validate:"required,oneof=worker manager supervisor"`
	Active          bool             `json:"active"`
	LinkedAccountID string           `json:"linkedAccountId,omitempty" validate:"omitempty,numeric"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

type document struct {
	Workers     []Profile `json:"workers"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Registry reads and maintains the workers document.
type Registry interface {
	Upsert(ctx context.Context, profile Profile) (*Profile, error)
	Get(ctx context.Context, id string) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
	Deactivate(ctx context.Context, id string) error
}

type registry struct {
	store docstore.Store
	now   func() time.Time
}

// NewRegistry wires a registry over the document store.
func NewRegistry(store docstore.Store) (Registry, error) {
	if store == nil {
		return nil, fmt.Errorf("document store required")
	}
	return &registry{store: store, now: time.Now}, nil
}

func (r *registry) load(ctx context.Context) (*document, error) {
	doc := &document{}
	if _, err := docstore.LoadJSON(ctx, r.store, docstore.KeyWorkers, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *registry) save(ctx context.Context, doc *document) error {
	doc.LastUpdated = r.now().UTC()
	return docstore.SaveJSON(ctx, r.store, docstore.KeyWorkers, doc)
}

func (r *registry) Upsert(ctx context.Context, profile Profile) (*Profile, error) {
	profile.ID = strings.TrimSpace(profile.ID)
	profile.Name = strings.TrimSpace(profile.Name)
	if err := validators.Struct(profile); err != nil {
		return nil, err
	}

	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	profile.UpdatedAt = r.now().UTC()
	replaced := false
	for i := range doc.Workers {
		if doc.Workers[i].ID == profile.ID {
			doc.Workers[i] = profile
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Workers = append(doc.Workers, profile)
	}
	if err := r.save(ctx, doc); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *registry) Get(ctx context.Context, id string) (*Profile, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range doc.Workers {
		if doc.Workers[i].ID == id {
			p := doc.Workers[i]
			return &p, nil
		}
	}
	return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "worker %q not found", id)
}

// List returns every profile ordered by name.
func (r *registry) List(ctx context.Context) ([]Profile, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := append([]Profile(nil), doc.Workers...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (r *registry) Deactivate(ctx context.Context, id string) error {
	doc, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range doc.Workers {
		if doc.Workers[i].ID == id {
			doc.Workers[i].Active = false
			doc.Workers[i].UpdatedAt = r.now().UTC()
			return r.save(ctx, doc)
		}
	}
	return pkgerrors.Newf(pkgerrors.CodeNotFound, "worker %q not found", id)
}

// ByRole filters profiles to the given role, optionally active only.
func ByRole(profiles []Profile, role enums.WorkerRole, activeOnly bool) []Profile {
	var out []Profile
	for _, p := range profiles {
		if p.Role != role || (activeOnly && !p.Active) {
			continue
		}
		out = append(out, p)
	}
	return out
}
