package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivolan/grades_analyzer/analyzer"
	"github.com/pivolan/grades_analyzer/domain/models"
)

func uploadRequest(t *testing.T, name string, data []byte, id string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if id != "" {
		require.NoError(t, mw.WriteField("uuid", id))
	}
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func upload(t *testing.T, h http.Handler, name string, data []byte) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, name, data, ""))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	loc := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/dashboard/"), loc)
	return strings.TrimPrefix(loc, "/dashboard/")
}

func getJSONReport(t *testing.T, h http.Handler, target string) *models.Report {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var r models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	return &r
}

func TestIndex(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	rec := httptest.NewRecorder()
	app.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?id=abc", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="uuid" value="abc"`)
	assert.Contains(t, rec.Body.String(), `action="/upload"`)
}

func TestUploadAndDashboard(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	h := app.Routes()

	id := upload(t, h, "results.xlsx", testXLSX(t, testHeader, testRows()))
	assert.True(t, validUploadID(id))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "مدرسة أ")
	assert.Contains(t, rec.Body.String(), "echarts")

	r := getJSONReport(t, h, "/api/report/"+id)
	require.NotNil(t, r.Rankings)
	require.Len(t, r.Rankings.Top, 2)
	assert.Equal(t, "مدرسة أ", r.Rankings.Top[0].School)
	assert.InDelta(t, 90.0, r.Rankings.Top[0].Mean, 1e-9)
	assert.Equal(t, "مدرسة ب", r.Rankings.Bottom[0].School)
	assert.Equal(t, 10, r.Aggregates.StudentCount)

	q := url.Values{"school": {"مدرسة ب"}}
	r = getJSONReport(t, h, "/api/report/"+id+"?"+q.Encode())
	assert.Equal(t, "مدرسة ب", r.Filters[models.DimSchool])
	assert.Equal(t, 5, r.Aggregates.StudentCount)

	q = url.Values{"gender": {"غير موجود"}}
	r = getJSONReport(t, h, "/api/report/"+id+"?"+q.Encode())
	assert.True(t, r.Empty)
	assert.Nil(t, r.Aggregates)
}

func TestUploadKeepsLinkedID(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	id := newUploadID()
	notified := make(chan int64, 1)
	app.notify = func(chatID int64, gotID string, r *models.Report) {
		assert.Equal(t, id, gotID)
		notified <- chatID
	}
	app.linkChat(id, 42)

	rec := httptest.NewRecorder()
	app.Routes().ServeHTTP(rec, uploadRequest(t, "results.csv", testCSV(), id))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard/"+id, rec.Header().Get("Location"))
	assert.Equal(t, int64(42), <-notified)
}

func TestUploadReloadsFromDisk(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	h := app.Routes()
	id := upload(t, h, "results.csv", testCSV())

	app.cache.Invalidate(id)
	r := getJSONReport(t, h, "/api/report/"+id)
	assert.Equal(t, 10, r.Aggregates.StudentCount)

	_, err := os.Stat(filepath.Join(app.cfg.UploadDir, id, "results.csv"))
	assert.NoError(t, err)
}

func TestUploadErrors(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	h := app.Routes()

	tests := []struct {
		name   string
		file   string
		data   []byte
		status int
	}{
		{"unsupported", "notes.txt", []byte("hello"), http.StatusUnsupportedMediaType},
		{"schema", "results.csv", []byte("a,b\n1,2\n"), http.StatusUnprocessableEntity},
		{"empty", "results.csv", []byte("\n\n"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, uploadRequest(t, tt.file, tt.data, ""))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestUnknownUpload(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	h := app.Routes()

	for _, target := range []string{"/dashboard/" + newUploadID(), "/api/report/not-a-uuid", "/api/report"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}
}

func TestDefaultSheetAndRefresh(t *testing.T) {
	var fetches int32
	sheet := testXLSX(t, testHeader, testRows())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetches, 1)
		w.Write(sheet)
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.SheetURL = srv.URL + "/export?format=xlsx"
	app := newTestApp(t, cfg)
	h := app.Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	getJSONReport(t, h, "/api/report")
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/refresh", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	getJSONReport(t, h, "/api/report")
	assert.Equal(t, int32(2), atomic.LoadInt32(&fetches))
}

func TestReportCORS(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	h := app.Routes()
	id := upload(t, h, "results.csv", testCSV())

	req := httptest.NewRequest(http.MethodGet, "/api/report/"+id, nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCriteriaFromQuery(t *testing.T) {
	c := criteriaFromQuery(url.Values{
		"semester": {" الأول "},
		"school":   {""},
		"subject":  {"العلوم"},
	})
	assert.Equal(t, analyzer.Only("الأول"), c.Semester)
	assert.True(t, c.School.IsAny())
	assert.True(t, c.Gender.IsAny())
	assert.Equal(t, analyzer.Only("العلوم"), c.Subject)
}
