package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/lawhelper/internal/common"
	"github.com/dmitrijs2005/lawhelper/internal/logging"
	"github.com/dmitrijs2005/lawhelper/internal/server/ai"
	"github.com/dmitrijs2005/lawhelper/internal/server/auth"
	"github.com/dmitrijs2005/lawhelper/internal/server/config"
	"github.com/dmitrijs2005/lawhelper/internal/server/extract"
	"github.com/dmitrijs2005/lawhelper/internal/server/models"
	"github.com/dmitrijs2005/lawhelper/internal/server/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeAccounts keeps accounts and sessions in memory.
type fakeAccounts struct {
	mu       sync.Mutex
	byEmail  map[string]*models.Account
	password map[string]string
	sessions map[string]string
	logouts  int
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byEmail: map[string]*models.Account{}, password: map[string]string{}, sessions: map[string]string{}}
}

func (f *fakeAccounts) open(accountID string) *models.Session {
	s := &models.Session{ID: uuid.NewString(), AccountID: accountID, ExpiresAt: time.Now().Add(time.Hour)}
	f.sessions[s.ID] = accountID
	return s
}

func (f *fakeAccounts) Register(_ context.Context, in services.RegisterInput) (*models.Account, *models.Session, error) {
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[in.Email]; ok {
		return nil, nil, common.ErrAlreadyExists
	}
	a := &models.Account{ID: uuid.NewString(), Name: in.Name, Email: in.Email, CreatedAt: time.Now()}
	f.byEmail[in.Email] = a
	f.password[in.Email] = in.Password
	return a, f.open(a.ID), nil
}

func (f *fakeAccounts) Login(_ context.Context, in services.LoginInput) (*models.Account, *models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byEmail[in.Email]
	if !ok || f.password[in.Email] != in.Password {
		return nil, nil, common.ErrorUnauthorized
	}
	return a, f.open(a.ID), nil
}

func (f *fakeAccounts) Resolve(_ context.Context, sessionID string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.sessions[sessionID]
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	for _, a := range f.byEmail {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, common.ErrorUnauthorized
}

func (f *fakeAccounts) Logout(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionID)
	f.logouts++
	return nil
}

// fakeCases scopes every lookup by account, like the SQL repositories.
type fakeCases struct {
	mu    sync.Mutex
	cases map[string]*models.Case
}

func (f *fakeCases) Create(_ context.Context, accountID string, in services.CaseInput) (*models.Case, error) {
	if in.CaseName == "" {
		return nil, common.NewFieldError("caseName", "is required")
	}
	ct, err := models.ParseCaseType(in.CaseType)
	if err != nil {
		return nil, err
	}
	st, err := models.ParseCaseStatus(in.Status)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &models.Case{
		ID: uuid.NewString(), AccountID: accountID, CaseName: in.CaseName, ClientName: in.ClientName,
		CaseType: ct, Status: st, OpenedAt: time.Now(), UpdatedAt: time.Now(),
	}
	f.cases[c.ID] = c
	return c, nil
}

func (f *fakeCases) List(_ context.Context, accountID string) ([]*models.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Case
	for _, c := range f.cases {
		if c.AccountID == accountID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CaseName < out[j].CaseName })
	return out, nil
}

func (f *fakeCases) Get(_ context.Context, accountID, id string) (*models.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cases[id]
	if !ok || c.AccountID != accountID {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func (f *fakeCases) Update(ctx context.Context, accountID, id string, in services.CaseInput) (*models.Case, error) {
	c, err := f.Get(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c.CaseName = in.CaseName
	if in.Status != "" {
		c.Status = models.CaseStatus(in.Status)
	}
	return c, nil
}

func (f *fakeCases) Delete(ctx context.Context, accountID, id string) error {
	if _, err := f.Get(ctx, accountID, id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.cases, id)
	return nil
}

type fakeDocuments struct {
	mu         sync.Mutex
	docs       map[string]*models.SavedDocument
	archive    bool
	archiveErr error
	saved      []services.SaveDocumentInput
}

func (f *fakeDocuments) Save(_ context.Context, accountID string, in services.SaveDocumentInput) (*models.SavedDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, in)
	d := &models.SavedDocument{
		ID: uuid.NewString(), AccountID: accountID, CaseID: in.CaseID, Title: in.Title,
		DocumentType: in.DocumentType, Content: in.Content, Version: 1,
	}
	if in.Metadata != nil {
		d.Metadata, _ = json.Marshal(in.Metadata)
	}
	f.docs[d.ID] = d
	return d, nil
}

func (f *fakeDocuments) List(_ context.Context, accountID string) ([]*models.SavedDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.SavedDocument
	for _, d := range f.docs {
		if d.AccountID == accountID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDocuments) Get(_ context.Context, accountID, id string) (*models.SavedDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok || d.AccountID != accountID {
		return nil, common.ErrorNotFound
	}
	return d, nil
}

func (f *fakeDocuments) Delete(ctx context.Context, accountID, id string) error {
	if _, err := f.Get(ctx, accountID, id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	return nil
}

func (f *fakeDocuments) ArchiveSource(_ context.Context, accountID, _ string, _ []byte) (string, error) {
	if f.archiveErr != nil {
		return "", f.archiveErr
	}
	if !f.archive {
		return "", nil
	}
	return services.StorageKey(accountID, time.Now()), nil
}

func (f *fakeDocuments) SourceURL(ctx context.Context, accountID, id string) (string, error) {
	d, err := f.Get(ctx, accountID, id)
	if err != nil {
		return "", err
	}
	var meta models.DocumentMetadata
	if err := json.Unmarshal(d.Metadata, &meta); err != nil || meta.SourceKey == "" {
		return "", common.ErrorNotFound
	}
	return "https://s3.test/" + meta.SourceKey + "?sig=1", nil
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []*models.HistoryEntry
	err     error
}

func (f *fakeHistory) Record(_ context.Context, accountID, toolType, query string, result any) error {
	if f.err != nil {
		return f.err
	}
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append([]*models.HistoryEntry{{
		ID: uuid.NewString(), AccountID: accountID, Type: toolType, Query: query, Result: b, CreatedAt: time.Now(),
	}}, f.entries...)
	return nil
}

func (f *fakeHistory) Recent(_ context.Context, accountID string) ([]*models.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.HistoryEntry
	for _, e := range f.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeMedical struct {
	cases   *fakeCases
	records []*models.MedicalRecord
}

func (f *fakeMedical) List(ctx context.Context, accountID, caseID string) ([]*models.MedicalRecord, error) {
	if _, err := f.cases.Get(ctx, accountID, caseID); err != nil {
		return nil, err
	}
	var out []*models.MedicalRecord
	for _, r := range f.records {
		if r.CaseID == caseID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeMedical) Import(ctx context.Context, accountID, caseID string, records []*models.MedicalRecord) (int, error) {
	if _, err := f.cases.Get(ctx, accountID, caseID); err != nil {
		return 0, err
	}
	for _, r := range records {
		r.ID = uuid.NewString()
		r.AccountID = accountID
		r.CaseID = caseID
	}
	f.records = append(f.records, records...)
	return len(records), nil
}

type fixture struct {
	server    *Server
	handler   http.Handler
	accounts  *fakeAccounts
	cases     *fakeCases
	documents *fakeDocuments
	history   *fakeHistory
	medical   *fakeMedical
}

func newFixture(t *testing.T, provider ai.Provider) *fixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.UploadMaxBytes = 1 << 20
	cfg.AnalyzeMaxBytes = 4 << 10

	if provider == nil {
		provider = ai.NewMockProvider()
	}
	cases := &fakeCases{cases: map[string]*models.Case{}}
	f := &fixture{
		accounts:  newFakeAccounts(),
		cases:     cases,
		documents: &fakeDocuments{docs: map[string]*models.SavedDocument{}},
		history:   &fakeHistory{},
		medical:   &fakeMedical{cases: cases},
	}
	logger := logging.NewNop()
	f.server = NewServer(cfg, Deps{
		Accounts:  f.accounts,
		Cases:     f.cases,
		Documents: f.documents,
		History:   f.history,
		Medical:   f.medical,
		Gateway:   ai.NewGateway(provider, time.Second, logger),
		Extractor: extract.NewExtractor(),
		Sessions:  auth.NewJWTCodec([]byte("test-secret")),
	}, logger)
	f.handler = f.server.Handler()
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

// login registers a fresh account and returns its session cookie.
func (f *fixture) login(t *testing.T, email string) *http.Cookie {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/register", map[string]string{
		"name": "Jane Doe", "email": email, "password": "correct horse",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return sessionCookie(t, rec)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == common.SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", common.SessionCookieName)
	return nil
}

// multipartRequest builds a request carrying one file plus plain fields.
func multipartRequest(t *testing.T, path, fileName, contentType string, data []byte, fields map[string]string, cookie *http.Cookie) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// failingProvider always returns err.
type failingProvider struct{ err error }

func (p failingProvider) Name() string  { return "failing" }
func (p failingProvider) Model() string { return "none" }
func (p failingProvider) Complete(ctx context.Context, _ ai.Request) (string, error) {
	if errors.Is(p.err, context.DeadlineExceeded) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return "", p.err
}
