package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	uuid "github.com/satori/go.uuid"
	"go.uber.org/zap"

	"github.com/pivolan/grades_analyzer/analyzer"
	"github.com/pivolan/grades_analyzer/config"
	"github.com/pivolan/grades_analyzer/domain/models"
	"github.com/pivolan/grades_analyzer/loader"
	"github.com/pivolan/grades_analyzer/logging"
)

var errUnknownUpload = errors.New("upload not found")

// App wires the pipeline to its sources: uploads kept on disk and the
// remote default sheet, both behind one TTL cache.
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	pipeline *analyzer.Pipeline
	cache    *loader.Cache
	fetcher  *loader.Fetcher

	// users links an upload id handed out by the bot to the chat waiting for it.
	mu       sync.Mutex
	users    map[string]int64
	toDelete map[string]time.Time
	notify   func(chatID int64, id string, r *models.Report)
}

func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	cols, err := analyzer.LoadColumns(cfg.ColumnsFile)
	if err != nil {
		return nil, err
	}
	settings := analyzer.DefaultSettings()
	settings.MinSchoolCount = cfg.MinSchoolCount
	settings.TopN = cfg.TopN
	settings.HistogramBins = cfg.HistogramBins

	return &App{
		cfg:      cfg,
		logger:   logger,
		pipeline: analyzer.New(cols, settings, logging.Component(logger, "pipeline")),
		cache:    loader.NewCache(cfg.CacheTTL, logging.Component(logger, "cache")),
		fetcher:  loader.NewFetcher(time.Minute),
		users:    map[string]int64{},
		toDelete: map[string]time.Time{},
	}, nil
}

func newUploadID() string {
	return uuid.NewV4().String()
}

func validUploadID(id string) bool {
	_, err := uuid.FromString(id)
	return err == nil
}

// linkChat remembers that the upload id was handed out to chatID.
func (a *App) linkChat(id string, chatID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.users[id] = chatID
	a.toDelete[id] = time.Now()
}

func (a *App) chatFor(id string) (int64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	chatID, ok := a.users[id]
	return chatID, ok
}

// saveUpload stores the file under uploadDir/id and loads it into the cache.
func (a *App) saveUpload(id, name string, r io.Reader) (*models.RawTable, error) {
	name = filepath.Base(name)
	if !loader.Supported(name) {
		return nil, fmt.Errorf("%s: %w", name, loader.ErrUnsupportedFormat)
	}
	dir := filepath.Join(a.cfg.UploadDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	filePath := filepath.Join(dir, name)
	dst, err := os.Create(filePath)
	if err != nil {
		return nil, err
	}
	_, err = io.Copy(dst, io.LimitReader(r, loader.MaxUploadSize+1))
	dst.Close()
	if err != nil {
		return nil, err
	}

	raw, err := handleFile(filePath)
	if err == nil {
		_, err = a.pipeline.Prepare(raw)
	}
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	a.cache.Put(id, raw)
	a.logger.Info("upload stored",
		zap.String("id", id),
		zap.String("file", name),
		zap.Int("rows", len(raw.Rows)))
	return raw, nil
}

func handleFile(filePath string) (*models.RawTable, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return loader.Load(filepath.Base(filePath), f)
}

// uploadedTable returns the raw table of an upload, reading it back from
// disk when the cache entry expired or the process restarted.
func (a *App) uploadedTable(ctx context.Context, id string) (*models.RawTable, error) {
	if !validUploadID(id) {
		return nil, errUnknownUpload
	}
	return a.cache.Get(ctx, id, func(ctx context.Context) (*models.RawTable, error) {
		dir := filepath.Join(a.cfg.UploadDir, id)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, errUnknownUpload
		}
		for _, e := range entries {
			if !e.IsDir() && loader.Supported(e.Name()) {
				return handleFile(filepath.Join(dir, e.Name()))
			}
		}
		return nil, errUnknownUpload
	})
}

// defaultTable returns the remote sheet configured with SHEET_URL.
func (a *App) defaultTable(ctx context.Context) (*models.RawTable, error) {
	if a.cfg.SheetURL == "" {
		return nil, errUnknownUpload
	}
	return a.cache.Get(ctx, a.cfg.SheetURL, func(ctx context.Context) (*models.RawTable, error) {
		return a.fetcher.Fetch(ctx, a.cfg.SheetURL)
	})
}

// table resolves an upload id, or the default sheet for an empty id.
func (a *App) table(ctx context.Context, id string) (*models.RawTable, error) {
	if id == "" {
		return a.defaultTable(ctx)
	}
	return a.uploadedTable(ctx, id)
}

func (a *App) refreshDefault() {
	a.cache.Invalidate(a.cfg.SheetURL)
}

func (a *App) report(ctx context.Context, id string, c analyzer.Criteria) (*models.Report, error) {
	raw, err := a.table(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.pipeline.Run(raw, c)
}

// cleanup drops chat links and upload files older than maxAge, and expired
// tables from the cache.
func (a *App) cleanup(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)
	a.mu.Lock()
	for id, created := range a.toDelete {
		if created.Before(cutoff) {
			delete(a.users, id)
			delete(a.toDelete, id)
		}
	}
	a.mu.Unlock()

	if n := a.cache.Prune(); n > 0 {
		a.logger.Debug("cache pruned", zap.Int("removed", n), zap.Int("left", a.cache.Len()))
	}
	if err := removeOldFiles(a.cfg.UploadDir, cutoff); err != nil && !os.IsNotExist(err) {
		a.logger.Warn("cleanup uploads", zap.Error(err))
	}
}

func (a *App) runCleanup(ctx context.Context, every, maxAge time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.cleanup(maxAge)
		}
	}
}

func removeOldFiles(dirPath string, maxAge time.Time) error {
	files, err := os.ReadDir(dirPath)
	if err != nil {
		return err
	}

	for _, file := range files {
		filePath := filepath.Join(dirPath, file.Name())
		if file.IsDir() {
			if err := removeOldFiles(filePath, maxAge); err != nil {
				return err
			}
			// пустые каталоги загрузок тоже удаляем
			if rest, err := os.ReadDir(filePath); err == nil && len(rest) == 0 {
				os.Remove(filePath)
			}
			continue
		}
		info, err := file.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(maxAge) {
			if err := os.Remove(filePath); err != nil {
				return err
			}
		}
	}
	return nil
}
