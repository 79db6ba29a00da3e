package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/lawhelper/internal/common"
	"github.com/dmitrijs2005/lawhelper/internal/dbx"
	"github.com/dmitrijs2005/lawhelper/internal/server/models"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/cases"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/documents"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/history"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/medicalrecords"
	"github.com/dmitrijs2005/lawhelper/internal/server/repositories/sessions"
	"github.com/google/uuid"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// memStore backs every fake repository. The fakes ignore the DBTX they are
// bound to, so transactions only show up as sqlmock Begin/Commit calls.
type memStore struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	sessions map[string]*models.Session
	history  []*models.HistoryEntry
	cases    map[string]*models.Case
	docs     map[string]*models.SavedDocument
	medical  []*models.MedicalRecord

	sessionCreateErr error
	medicalCreateErr error
}

func newMemStore() *memStore {
	return &memStore{
		accounts: map[string]*models.Account{},
		sessions: map[string]*models.Session{},
		cases:    map[string]*models.Case{},
		docs:     map[string]*models.SavedDocument{},
	}
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository        { return &fakeAccounts{m.s} }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository        { return &fakeSessions{m.s} }
func (m *fakeRepoManager) History(dbx.DBTX) history.Repository          { return &fakeHistory{m.s} }
func (m *fakeRepoManager) Cases(dbx.DBTX) cases.Repository              { return &fakeCases{m.s} }
func (m *fakeRepoManager) Documents(dbx.DBTX) documents.Repository      { return &fakeDocuments{m.s} }
func (m *fakeRepoManager) MedicalRecords(dbx.DBTX) medicalrecords.Repository {
	return &fakeMedical{m.s}
}

type fakeAccounts struct{ s *memStore }

func (f *fakeAccounts) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, x := range f.s.accounts {
		if x.Email == a.Email {
			return nil, common.ErrAlreadyExists
		}
	}
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	f.s.accounts[a.ID] = a
	return a, nil
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, x := range f.s.accounts {
		if x.Email == email {
			return x, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (*models.Account, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if a, ok := f.s.accounts[id]; ok {
		return a, nil
	}
	return nil, common.ErrorNotFound
}

type fakeSessions struct{ s *memStore }

func (f *fakeSessions) Create(_ context.Context, s *models.Session) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.sessionCreateErr != nil {
		return f.s.sessionCreateErr
	}
	s.CreatedAt = time.Now()
	f.s.sessions[s.ID] = s
	return nil
}

func (f *fakeSessions) Find(_ context.Context, id string) (*models.Session, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if s, ok := f.s.sessions[id]; ok {
		return s, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	delete(f.s.sessions, id)
	return nil
}

func (f *fakeSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for id, s := range f.s.sessions {
		if s.Expired(now) {
			delete(f.s.sessions, id)
			n++
		}
	}
	return n, nil
}

type fakeHistory struct{ s *memStore }

func (f *fakeHistory) Add(_ context.Context, e *models.HistoryEntry) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().Add(time.Duration(len(f.s.history)) * time.Millisecond)
	f.s.history = append(f.s.history, e)
	return nil
}

func (f *fakeHistory) ListRecent(_ context.Context, accountID string, limit int) ([]*models.HistoryEntry, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := []*models.HistoryEntry{}
	for i := len(f.s.history) - 1; i >= 0 && len(out) < limit; i-- {
		if f.s.history[i].AccountID == accountID {
			out = append(out, f.s.history[i])
		}
	}
	return out, nil
}

type fakeCases struct{ s *memStore }

func (f *fakeCases) Create(_ context.Context, c *models.Case) (*models.Case, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c.ID = uuid.NewString()
	c.OpenedAt = time.Now()
	c.UpdatedAt = c.OpenedAt
	cp := *c
	f.s.cases[c.ID] = &cp
	return c, nil
}

func (f *fakeCases) Get(_ context.Context, accountID, id string) (*models.Case, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.cases[id]
	if !ok || c.AccountID != accountID {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCases) List(_ context.Context, accountID string) ([]*models.Case, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := []*models.Case{}
	for _, c := range f.s.cases {
		if c.AccountID == accountID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.After(out[j].OpenedAt) })
	return out, nil
}

func (f *fakeCases) Update(_ context.Context, c *models.Case) (*models.Case, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	old, ok := f.s.cases[c.ID]
	if !ok || old.AccountID != c.AccountID {
		return nil, common.ErrorNotFound
	}
	c.UpdatedAt = time.Now()
	cp := *c
	f.s.cases[c.ID] = &cp
	return c, nil
}

func (f *fakeCases) Delete(_ context.Context, accountID, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.cases[id]
	if !ok || c.AccountID != accountID {
		return common.ErrorNotFound
	}
	delete(f.s.cases, id)
	return nil
}

type fakeDocuments struct{ s *memStore }

func (f *fakeDocuments) Create(_ context.Context, d *models.SavedDocument) (*models.SavedDocument, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	d.ID = uuid.NewString()
	d.Version = 1
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	f.s.docs[d.ID] = d
	return d, nil
}

func (f *fakeDocuments) Get(_ context.Context, accountID, id string) (*models.SavedDocument, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	d, ok := f.s.docs[id]
	if !ok || d.AccountID != accountID {
		return nil, common.ErrorNotFound
	}
	return d, nil
}

func (f *fakeDocuments) List(_ context.Context, accountID string) ([]*models.SavedDocument, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := []*models.SavedDocument{}
	for _, d := range f.s.docs {
		if d.AccountID == accountID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDocuments) Delete(_ context.Context, accountID, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	d, ok := f.s.docs[id]
	if !ok || d.AccountID != accountID {
		return common.ErrorNotFound
	}
	delete(f.s.docs, id)
	return nil
}

type fakeMedical struct{ s *memStore }

func (f *fakeMedical) Create(_ context.Context, r *models.MedicalRecord) (*models.MedicalRecord, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.medicalCreateErr != nil {
		return nil, f.s.medicalCreateErr
	}
	r.ID = uuid.NewString()
	f.s.medical = append(f.s.medical, r)
	return r, nil
}

func (f *fakeMedical) ListByCase(_ context.Context, accountID, caseID string) ([]*models.MedicalRecord, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := []*models.MedicalRecord{}
	for _, r := range f.s.medical {
		if r.AccountID == accountID && r.CaseID == caseID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeBlobs struct {
	enabled bool
	puts    map[string][]byte
	putErr  error
}

func (f *fakeBlobs) Enabled() bool { return f.enabled }

func (f *fakeBlobs) Put(_ context.Context, key, _ string, body []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	if f.puts == nil {
		f.puts = map[string][]byte{}
	}
	f.puts[key] = body
	return nil
}

func (f *fakeBlobs) PresignGet(_ context.Context, key string) (string, error) {
	return "https://s3.test/" + key + "?sig=1", nil
}
