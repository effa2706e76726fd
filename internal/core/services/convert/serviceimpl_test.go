package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"

	"gitlab.com/testsys2pcms.net/internal/adapter/logging"
	"gitlab.com/testsys2pcms.net/internal/config"
	"gitlab.com/testsys2pcms.net/internal/domain"
	"gitlab.com/testsys2pcms.net/internal/static/errs"
)

const export = "\x00\x01binary\x1a" + `@contest "Cup"
@p A,"Apples",20,0
@t 01,0,1,"Team One"
@s 01,A,1,10,OK,0
`

type fakeFetcher struct {
	data        []byte
	err         error
	calls       int
	invalidated int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

func (f *fakeFetcher) Invalidate(ctx context.Context, url string) error {
	f.invalidated++
	return nil
}

type fakeEmitter struct {
	emitted []*domain.ParsedResult
	err     error
}

func (e *fakeEmitter) Emit(ctx context.Context, result *domain.ParsedResult) error {
	if e.err != nil {
		return e.err
	}
	e.emitted = append(e.emitted, result)
	return nil
}

type memoryRepo struct {
	mu    sync.Mutex
	saved []*domain.Conversion
}

func (r *memoryRepo) Save(ctx context.Context, c *domain.Conversion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, c)
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Conversion, error) {
	for _, c := range r.saved {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memoryRepo) List(ctx context.Context, limit int) ([]*domain.Conversion, error) {
	return r.saved, nil
}

func (r *memoryRepo) Latest(ctx context.Context) (*domain.Conversion, error) {
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].Status == domain.ConversionStatusCompleted {
			return r.saved[i], nil
		}
	}
	return nil, nil
}

func newService(t *testing.T, f *fakeFetcher, e *fakeEmitter, repo *memoryRepo) (*ConvertService, *config.ContestConfig) {
	t.Helper()
	cfg := &config.ContestConfig{
		URL:          "file:///dump.dat",
		Filename:     filepath.Join(t.TempDir(), "dump.dat"),
		MetaEncoding: "utf8",
		Problems:     map[string]string{"A": "apples"},
	}
	// a nil *memoryRepo must not reach the service as a non-nil interface
	if repo == nil {
		return NewConvertService(f, e, nil, cfg, logging.NewNopLogger()), cfg
	}
	return NewConvertService(f, e, repo, cfg, logging.NewNopLogger()), cfg
}

func TestConvert(t *testing.T) {
	f := &fakeFetcher{data: []byte(export)}
	e := &fakeEmitter{}
	repo := &memoryRepo{}
	svc, cfg := newService(t, f, e, repo)

	conv, err := svc.Convert(context.Background(), Options{Force: true})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if conv.Status != domain.ConversionStatusCompleted || conv.Runs != 1 || conv.Contest != "Cup" {
		t.Fatalf("conversion %+v", conv)
	}
	if len(e.emitted) != 1 || len(repo.saved) != 1 || f.invalidated != 1 {
		t.Fatalf("emitted %d saved %d invalidated %d", len(e.emitted), len(repo.saved), f.invalidated)
	}
	raw, err := os.ReadFile(cfg.Filename)
	if err != nil || string(raw) != export {
		t.Fatalf("raw export not saved: %v", err)
	}

	got, err := svc.GetConversion(context.Background(), conv.ID)
	if err != nil || got.ID != conv.ID {
		t.Fatalf("get: %v", err)
	}
}

func TestConvertSkipsUnchanged(t *testing.T) {
	f := &fakeFetcher{data: []byte(export)}
	e := &fakeEmitter{}
	svc, _ := newService(t, f, e, nil)

	if _, err := svc.Convert(context.Background(), Options{}); err != nil {
		t.Fatal(err)
	}
	conv, err := svc.Convert(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if conv.Status != domain.ConversionStatusUnchanged || len(e.emitted) != 1 {
		t.Fatalf("status %s emitted %d", conv.Status, len(e.emitted))
	}
	if _, err := svc.Convert(context.Background(), Options{Force: true}); err != nil {
		t.Fatal(err)
	}
	if len(e.emitted) != 2 {
		t.Fatalf("forced conversion not emitted")
	}
}

func TestConvertDigestFromHistory(t *testing.T) {
	f := &fakeFetcher{data: []byte(export)}
	repo := &memoryRepo{}
	first, _ := newService(t, f, &fakeEmitter{}, repo)
	if _, err := first.Convert(context.Background(), Options{}); err != nil {
		t.Fatal(err)
	}

	e := &fakeEmitter{}
	second, _ := newService(t, f, e, repo)
	conv, err := second.Convert(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if conv.Status != domain.ConversionStatusUnchanged || len(e.emitted) != 0 {
		t.Fatalf("restarted service re-emitted: %s", conv.Status)
	}
}

func TestConvertRecordsUnchanged(t *testing.T) {
	f := &fakeFetcher{data: []byte(export)}
	repo := &memoryRepo{}
	svc, _ := newService(t, f, &fakeEmitter{}, repo)

	if _, err := svc.Convert(context.Background(), Options{}); err != nil {
		t.Fatal(err)
	}
	conv, err := svc.Convert(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(repo.saved) != 2 || repo.saved[1].Status != domain.ConversionStatusUnchanged {
		t.Fatalf("saved %d conversions", len(repo.saved))
	}

	got, err := svc.GetConversion(context.Background(), conv.ID)
	if err != nil || got.Status != domain.ConversionStatusUnchanged || got.Digest != conv.Digest {
		t.Fatalf("get unchanged conversion: %+v %v", got, err)
	}
}

func TestConvertParseError(t *testing.T) {
	f := &fakeFetcher{data: []byte("@bogus foo\n")}
	e := &fakeEmitter{}
	repo := &memoryRepo{}
	svc, _ := newService(t, f, e, repo)

	conv, err := svc.Convert(context.Background(), Options{Force: true})
	if !errors.Is(err, errs.ErrUnknownAction) {
		t.Fatalf("expected unknown action, got %v", err)
	}
	if conv.Status != domain.ConversionStatusFailed || conv.Result != nil || len(e.emitted) != 0 {
		t.Fatalf("conversion %+v", conv)
	}
	if len(repo.saved) != 1 || repo.saved[0].Error == "" {
		t.Fatalf("failure not recorded")
	}
}

func TestConvertUnmappedProblem(t *testing.T) {
	f := &fakeFetcher{data: []byte("@p B,\"Bees\"\n")}
	e := &fakeEmitter{}
	svc, _ := newService(t, f, e, nil)

	_, err := svc.Convert(context.Background(), Options{Force: true})
	if !errors.Is(err, errs.ErrConfigurationMismatch) || len(e.emitted) != 0 {
		t.Fatalf("expected configuration mismatch, got %v", err)
	}
}

func TestConvertFetchError(t *testing.T) {
	f := &fakeFetcher{err: errs.ErrFetchFailed}
	svc, _ := newService(t, f, &fakeEmitter{}, nil)
	if _, err := svc.Convert(context.Background(), Options{}); !errors.Is(err, errs.ErrFetchFailed) {
		t.Fatalf("expected fetch failure, got %v", err)
	}
}

func TestHistoryDisabled(t *testing.T) {
	svc, _ := newService(t, &fakeFetcher{}, &fakeEmitter{}, nil)
	if _, err := svc.GetConversion(context.Background(), uuid.New()); !errors.Is(err, errs.ErrConversionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	list, err := svc.ListConversions(context.Background(), 10)
	if err != nil || len(list) != 0 {
		t.Fatalf("list %v %v", list, err)
	}
}
