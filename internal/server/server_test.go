package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-scorer/internal/types"
)

type fakeJobService struct {
	jobs map[uuid.UUID]*types.Job
	err  error
}

func newFakeJobService() *fakeJobService {
	return &fakeJobService{jobs: make(map[uuid.UUID]*types.Job)}
}

func (f *fakeJobService) Create(_ context.Context, jobType types.JobType, input json.RawMessage, priority int) (*types.Job, error) {
	if f.err != nil {
		return nil, f.err
	}
	job := types.NewJob(jobType, input, priority)
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeJobService) Get(_ context.Context, id uuid.UUID) (*types.Job, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.jobs[id], nil
}

func (f *fakeJobService) Cancel(_ context.Context, id uuid.UUID) (*types.Job, error) {
	if f.err != nil {
		return nil, f.err
	}
	job := f.jobs[id]
	if job == nil {
		return nil, nil
	}
	if !job.IsTerminal() {
		job.Status = types.JobStatusCanceled
	}
	return job, nil
}

type fakeStore struct {
	cvs map[uuid.UUID]*types.CV
	jds map[uuid.UUID]*types.JobDescription
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		cvs: make(map[uuid.UUID]*types.CV),
		jds: make(map[uuid.UUID]*types.JobDescription),
	}
}

func (f *fakeStore) CreateCV(_ context.Context, cv *types.CV) error {
	f.cvs[cv.ID] = cv
	return nil
}

func (f *fakeStore) GetCV(_ context.Context, id uuid.UUID) (*types.CV, error) {
	return f.cvs[id], nil
}

func (f *fakeStore) CreateJobDescription(_ context.Context, jd *types.JobDescription) error {
	f.jds[jd.ID] = jd
	return nil
}

func (f *fakeStore) GetJobDescription(_ context.Context, id uuid.UUID) (*types.JobDescription, error) {
	return f.jds[id], nil
}

func newTestServer() (*Server, *fakeJobService, *fakeStore) {
	jobs := newFakeJobService()
	store := newFakeStore()
	s := New(Config{ListenAddr: ":0"}, jobs, store)
	return s, jobs, store
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreateJob(t *testing.T) {
	s, jobs, _ := newTestServer()

	rec := doRequest(t, s, "POST", "/jobs", map[string]any{
		"type":     "score_cv",
		"priority": 5,
		"input":    map[string]string{"cv_id": uuid.NewString(), "job_description_id": uuid.NewString()},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	job := decodeBody[types.Job](t, rec)
	assert.Equal(t, types.JobTypeScoreCV, job.Type)
	assert.Equal(t, types.JobStatusQueued, job.Status)
	assert.Equal(t, 5, job.Priority)
	assert.Contains(t, jobs.jobs, job.ID)
}

func TestCreateJob_UnknownType(t *testing.T) {
	s, _, _ := newTestServer()

	rec := doRequest(t, s, "POST", "/jobs", map[string]any{
		"type":  "summarize_cv",
		"input": map[string]string{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateJob_InvalidBody(t *testing.T) {
	s, _, _ := newTestServer()

	req := httptest.NewRequest("POST", "/jobs", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetJob(t *testing.T) {
	s, jobs, _ := newTestServer()
	job, err := jobs.Create(context.Background(), types.JobTypeScoreCV, json.RawMessage(`{}`), 0)
	require.NoError(t, err)

	rec := doRequest(t, s, "GET", "/jobs/"+job.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[types.Job](t, rec)
	assert.Equal(t, job.ID, got.ID)
}

func TestGetJob_NotFound(t *testing.T) {
	s, _, _ := newTestServer()

	rec := doRequest(t, s, "GET", "/jobs/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetJob_InvalidID(t *testing.T) {
	s, _, _ := newTestServer()

	rec := doRequest(t, s, "GET", "/jobs/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelJob(t *testing.T) {
	s, jobs, _ := newTestServer()
	job, err := jobs.Create(context.Background(), types.JobTypeScoreCV, json.RawMessage(`{}`), 0)
	require.NoError(t, err)

	rec := doRequest(t, s, "POST", "/jobs/"+job.ID.String()+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[types.Job](t, rec)
	assert.Equal(t, types.JobStatusCanceled, got.Status)
}

func TestCancelJob_NotFound(t *testing.T) {
	s, _, _ := newTestServer()

	rec := doRequest(t, s, "POST", "/jobs/"+uuid.NewString()+"/cancel", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateJob_ServiceError(t *testing.T) {
	s, jobs, _ := newTestServer()
	jobs.err = errors.New("db down")

	rec := doRequest(t, s, "POST", "/jobs", map[string]any{
		"type":  "score_cv",
		"input": map[string]string{},
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCreateCV(t *testing.T) {
	s, _, store := newTestServer()

	rec := doRequest(t, s, "POST", "/cvs", map[string]any{
		"candidate_name":  "Ada",
		"candidate_email": "ada@example.com",
		"sections": map[string]string{
			"summary":    "Engineer with ten years of backend experience.",
			"experience": "Built data platforms.",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	cv := decodeBody[types.CV](t, rec)
	assert.Equal(t, "Ada", cv.CandidateName)
	assert.Len(t, cv.Sections, 2)
	assert.Contains(t, store.cvs, cv.ID)
}

func TestCreateCV_UnknownSection(t *testing.T) {
	s, _, _ := newTestServer()

	rec := doRequest(t, s, "POST", "/cvs", map[string]any{
		"sections": map[string]string{"hobbies": "chess"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Contains(t, body["error"], "hobbies")
}

func TestCreateCV_BadEmail(t *testing.T) {
	s, _, _ := newTestServer()

	rec := doRequest(t, s, "POST", "/cvs", map[string]any{
		"candidate_email": "not-an-email",
		"sections":        map[string]string{"summary": "text"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCV_NotFound(t *testing.T) {
	s, _, _ := newTestServer()

	rec := doRequest(t, s, "GET", "/cvs/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateJobDescription_Inline(t *testing.T) {
	s, _, store := newTestServer()

	rec := doRequest(t, s, "POST", "/job-descriptions", map[string]any{
		"title":            "Backend Engineer",
		"company":          "Acme",
		"responsibilities": "Design APIs.",
		"qualifications":   "Go experience.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	jd := decodeBody[types.JobDescription](t, rec)
	assert.Equal(t, "Backend Engineer", jd.Title)
	assert.Contains(t, store.jds, jd.ID)
}

func TestCreateJobDescription_MissingTitleAndURL(t *testing.T) {
	s, _, _ := newTestServer()

	rec := doRequest(t, s, "POST", "/job-descriptions", map[string]any{
		"company": "Acme",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateJobDescription_FromSourceURL(t *testing.T) {
	s, _, store := newTestServer()
	s.fetchPosting = func(_ context.Context, url string) (string, error) {
		assert.Equal(t, "https://jobs.example.com/backend", url)
		return "Backend Engineer at Acme\nDesign and ship APIs.", nil
	}

	rec := doRequest(t, s, "POST", "/job-descriptions", map[string]any{
		"source_url": "https://jobs.example.com/backend",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	jd := decodeBody[types.JobDescription](t, rec)
	assert.Equal(t, "Backend Engineer at Acme", jd.Title)
	assert.Contains(t, jd.Responsibilities, "Design and ship APIs.")
	assert.Contains(t, store.jds, jd.ID)
}

func TestCreateJobDescription_IngestFailure(t *testing.T) {
	s, _, _ := newTestServer()
	s.fetchPosting = func(_ context.Context, _ string) (string, error) {
		return "", errors.New("HTTP status 503")
	}

	rec := doRequest(t, s, "POST", "/job-descriptions", map[string]any{
		"source_url": "https://jobs.example.com/backend",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHealth(t *testing.T) {
	s, _, _ := newTestServer()

	rec := doRequest(t, s, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "ok", body["status"])
}
