package main

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/pivolan/grades_analyzer/analyzer"
	"github.com/pivolan/grades_analyzer/dashboard"
	"github.com/pivolan/grades_analyzer/domain/models"
	"github.com/pivolan/grades_analyzer/loader"
)

func (a *App) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/", a.handleIndex)
	r.Post("/upload", a.handleUpload)
	r.Get("/dashboard", a.handleDashboard)
	r.Get("/dashboard/{id}", a.handleDashboard)
	r.Post("/refresh", a.handleRefresh)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/report", a.handleReportJSON)
		r.Get("/report/{id}", a.handleReportJSON)
	})
	return r
}

func (a *App) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

var uploadTemplate = template.Must(template.New("upload").Parse(`<!DOCTYPE html>
<html lang="ar" dir="rtl">
<head><meta charset="utf-8"><title>تحليل نتائج الطلاب</title></head>
<body style="font-family:sans-serif;padding:24px">
  <h2>📊 تحليل نتائج الطلاب</h2>
  <form method="post" action="/upload" enctype="multipart/form-data">
    <input type="hidden" name="uuid" value="{{.ID}}">
    <input type="file" name="file" accept=".xlsx,.xlsm,.csv,.zip,.gz,.lz4" required>
    <button type="submit">رفع الملف</button>
  </form>
  {{if .HasDefault}}<p><a href="/dashboard">عرض البيانات الافتراضية</a></p>{{end}}
</body>
</html>
`))

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		ID         string
		HasDefault bool
	}{
		ID:         r.URL.Query().Get("id"),
		HasDefault: a.cfg.SheetURL != "",
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := uploadTemplate.Execute(w, data); err != nil {
		http.Error(w, "Error rendering upload form", http.StatusInternalServerError)
	}
}

func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, loader.MaxUploadSize+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Error uploading file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	id := r.FormValue("uuid")
	if !validUploadID(id) {
		id = newUploadID()
	}

	raw, err := a.saveUpload(id, header.Filename, file)
	if err != nil {
		a.writeError(w, err)
		return
	}

	if chatID, ok := a.chatFor(id); ok && a.notify != nil {
		report, err := a.pipeline.Run(raw, analyzer.Criteria{})
		if err != nil {
			a.logger.Warn("report for chat failed", zap.String("id", id), zap.Error(err))
		} else {
			go a.notify(chatID, id, report)
		}
	}

	http.Redirect(w, r, "/dashboard/"+id, http.StatusSeeOther)
}

func (a *App) handleDashboard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := a.report(r.Context(), id, criteriaFromQuery(r.URL.Query()))
	if err != nil {
		a.writeError(w, err)
		return
	}

	view := dashboard.View{Action: "/dashboard", APIURL: "/api/report"}
	if id != "" {
		view.Action += "/" + id
		view.APIURL += "/" + id
	}
	if q := r.URL.RawQuery; q != "" {
		view.APIURL += "?" + q
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboard.Render(w, report, view); err != nil {
		a.logger.Error("render dashboard", zap.Error(err))
	}
}

func (a *App) handleReportJSON(w http.ResponseWriter, r *http.Request) {
	report, err := a.report(r.Context(), chi.URLParam(r, "id"), criteriaFromQuery(r.URL.Query()))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *App) handleRefresh(w http.ResponseWriter, r *http.Request) {
	a.refreshDefault()
	a.logger.Info("default sheet invalidated", zap.String("url", a.cfg.SheetURL))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// criteriaFromQuery reads one optional value per dimension; blank means no restriction.
func criteriaFromQuery(q url.Values) analyzer.Criteria {
	var c analyzer.Criteria
	for _, d := range models.Dimensions {
		c = c.With(d, analyzer.OptionOf(strings.TrimSpace(q.Get(string(d)))))
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (a *App) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var schemaErr *analyzer.SchemaError
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, errUnknownUpload):
		status = http.StatusNotFound
	case errors.As(err, &schemaErr):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, loader.ErrUnsupportedFormat):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, loader.ErrTooLarge), errors.As(err, &maxBytes):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, loader.ErrEmptyWorkbook):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		a.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
