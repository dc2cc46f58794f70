package testutil

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/killallgit/promptvault/pkg/catalog"
)

type fakePrompt struct {
	id       string
	name     string
	latest   int
	versions map[int]catalog.Variant
}

// FakeCatalog is an in-memory catalog.Client with the same versioning rules
// as the SQLite catalog. Calls records every operation name in order.
type FakeCatalog struct {
	prompts map[string]*fakePrompt
	nextID  int
	Calls   []string

	// Err, when set, is returned by the next call and then cleared
	Err error
}

// NewFakeCatalog creates an empty fake catalog
func NewFakeCatalog() *FakeCatalog {
	return &FakeCatalog{prompts: make(map[string]*fakePrompt)}
}

func (f *FakeCatalog) record(op string) error {
	f.Calls = append(f.Calls, op)
	if f.Err != nil {
		err := f.Err
		f.Err = nil
		return err
	}
	return nil
}

func (f *FakeCatalog) byName(name string) *fakePrompt {
	for _, p := range f.prompts {
		if p.name == name {
			return p
		}
	}
	return nil
}

func (f *FakeCatalog) CreatePrompt(ctx context.Context, in catalog.CreatePromptInput) (*catalog.PromptRecord, error) {
	if err := f.record("CreatePrompt"); err != nil {
		return nil, err
	}
	if f.byName(in.Name) != nil {
		return nil, &catalog.AlreadyExistsError{Name: in.Name}
	}

	f.nextID++
	p := &fakePrompt{
		id:     fmt.Sprintf("PROMPT%04d", f.nextID),
		name:   in.Name,
		latest: 1,
		versions: map[int]catalog.Variant{
			catalog.DraftVersion: in.Variant,
			1:                    in.Variant,
		},
	}
	f.prompts[p.id] = p

	return &catalog.PromptRecord{ID: p.id, Name: p.name, Version: 1, CreatedAt: time.Now()}, nil
}

func (f *FakeCatalog) CreatePromptVersion(ctx context.Context, in catalog.CreateVersionInput) (*catalog.PromptRecord, error) {
	if err := f.record("CreatePromptVersion"); err != nil {
		return nil, err
	}
	p, ok := f.prompts[in.PromptID]
	if !ok {
		return nil, &catalog.NotFoundError{Prompt: in.PromptID}
	}

	p.latest++
	p.versions[p.latest] = p.versions[catalog.DraftVersion]

	return &catalog.PromptRecord{ID: p.id, Name: p.name, Version: p.latest, CreatedAt: time.Now()}, nil
}

func (f *FakeCatalog) GetPrompt(ctx context.Context, name string, version int) (*catalog.Variant, error) {
	if err := f.record("GetPrompt"); err != nil {
		return nil, err
	}
	p := f.byName(name)
	if p == nil {
		return nil, &catalog.NotFoundError{Prompt: name, Version: version}
	}
	v, ok := p.versions[version]
	if !ok {
		return nil, &catalog.NotFoundError{Prompt: name, Version: version}
	}
	return &v, nil
}

func (f *FakeCatalog) GetPromptByID(ctx context.Context, id string, version int) (*catalog.Variant, error) {
	if err := f.record("GetPromptByID"); err != nil {
		return nil, err
	}
	p, ok := f.prompts[id]
	if !ok {
		return nil, &catalog.NotFoundError{Prompt: id, Version: version}
	}
	v, ok := p.versions[version]
	if !ok {
		return nil, &catalog.NotFoundError{Prompt: id, Version: version}
	}
	return &v, nil
}

func (f *FakeCatalog) DeletePrompt(ctx context.Context, id string, version int) (*catalog.DeleteResult, error) {
	if err := f.record("DeletePrompt"); err != nil {
		return nil, err
	}
	p, ok := f.prompts[id]
	if !ok {
		return nil, &catalog.NotFoundError{Prompt: id, Version: version}
	}

	if version == catalog.DraftVersion {
		delete(f.prompts, id)
	} else {
		if _, ok := p.versions[version]; !ok {
			return nil, &catalog.NotFoundError{Prompt: id, Version: version}
		}
		delete(p.versions, version)
	}

	return &catalog.DeleteResult{ID: id, Version: version, Status: "DELETED"}, nil
}

func (f *FakeCatalog) ListPrompts(ctx context.Context, in catalog.ListInput) ([]catalog.PromptSummary, error) {
	if err := f.record("ListPrompts"); err != nil {
		return nil, err
	}

	var out []catalog.PromptSummary
	for _, p := range f.prompts {
		if in.Name != "" && p.name != in.Name {
			continue
		}
		if in.PromptID != "" && p.id != in.PromptID {
			continue
		}
		out = append(out, catalog.PromptSummary{ID: p.id, Name: p.name, Version: p.latest})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	if in.MaxResults > 0 && len(out) > in.MaxResults {
		out = out[:in.MaxResults]
	}
	return out, nil
}
