package sync

import (
	"context"

	"github.com/MILA-Wien/odoo-product-updater-bot/pkg/clients/odoo"
)

type fakeWrite struct {
	Model  string
	IDs    []int64
	Fields map[string]any
}

type fakeCreate struct {
	Model  string
	Fields map[string]any
}

type fakeUnlink struct {
	Model string
	IDs   []int64
}

// fakeERP is an in-memory stand-in for the Odoo API recording every write
// operation it receives.
type fakeERP struct {
	searchReads map[string][]odoo.Record
	counts      map[string]int
	getFunc     func(model string, domain odoo.Domain) odoo.Record

	getCalls []string
	creates  []fakeCreate
	writes   []fakeWrite
	unlinks  []fakeUnlink
	nextID   int64
}

func newFakeERP() *fakeERP {
	return &fakeERP{
		searchReads: make(map[string][]odoo.Record),
		counts:      make(map[string]int),
		nextID:      1000,
	}
}

func (f *fakeERP) SearchRead(_ context.Context, model string, _ odoo.Domain, _ odoo.SearchOptions) ([]odoo.Record, error) {
	return f.searchReads[model], nil
}

func (f *fakeERP) Get(_ context.Context, model string, domain odoo.Domain, _ []string) (odoo.Record, error) {
	f.getCalls = append(f.getCalls, model)
	if f.getFunc != nil {
		return f.getFunc(model, domain), nil
	}
	return nil, nil
}

func (f *fakeERP) SearchCount(_ context.Context, model string, _ odoo.Domain) (int, error) {
	return f.counts[model], nil
}

func (f *fakeERP) Create(_ context.Context, model string, fields map[string]any) (int64, error) {
	f.creates = append(f.creates, fakeCreate{Model: model, Fields: fields})
	f.nextID++
	return f.nextID, nil
}

func (f *fakeERP) Write(_ context.Context, model string, ids []int64, fields map[string]any) error {
	f.writes = append(f.writes, fakeWrite{Model: model, IDs: ids, Fields: fields})
	return nil
}

func (f *fakeERP) Unlink(_ context.Context, model string, ids []int64) error {
	f.unlinks = append(f.unlinks, fakeUnlink{Model: model, IDs: ids})
	return nil
}

func (f *fakeERP) writesFor(model string) []fakeWrite {
	var out []fakeWrite
	for _, w := range f.writes {
		if w.Model == model {
			out = append(out, w)
		}
	}
	return out
}

func (f *fakeERP) createsFor(model string) []fakeCreate {
	var out []fakeCreate
	for _, c := range f.creates {
		if c.Model == model {
			out = append(out, c)
		}
	}
	return out
}

// fakeImages returns a fixed payload or error, recording requested URLs.
type fakeImages struct {
	payload string
	err     error
	calls   []string
}

func (f *fakeImages) FetchBase64(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	if f.err != nil {
		return "", f.err
	}
	return f.payload, nil
}
