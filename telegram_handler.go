package main

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"go.uber.org/zap"

	"github.com/pivolan/grades_analyzer/analyzer"
	"github.com/pivolan/grades_analyzer/domain/models"
	"github.com/pivolan/grades_analyzer/logging"
	"github.com/pivolan/grades_analyzer/plot"
	"github.com/pivolan/grades_analyzer/report"
)

// telegramAPI is the part of *tgbotapi.BotAPI the bot uses.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// maxMessageLen stays under Telegram's 4096 character limit with the <pre> wrapper.
const maxMessageLen = 4000

type Bot struct {
	app    *App
	api    telegramAPI
	logger *zap.Logger
	client *http.Client

	mu sync.Mutex
	// currentTable is the upload id each chat works with; "" is the default sheet.
	currentTable map[int64]string
}

func NewBot(app *App, api telegramAPI) *Bot {
	b := &Bot{
		app:          app,
		api:          api,
		logger:       logging.Component(app.logger, "telegram"),
		client:       &http.Client{Timeout: 2 * time.Minute},
		currentTable: map[int64]string{},
	}
	app.notify = b.sendReport
	return b
}

// Listen handles updates until the channel closes or ctx is done.
func (b *Bot) Listen(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	switch {
	case message.Document != nil:
		b.handleDocument(ctx, message)
	case message.IsCommand():
		b.handleCommand(ctx, message)
	case message.Text != "":
		b.handleText(message)
	}
}

func (b *Bot) setCurrent(chatID int64, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.currentTable[chatID] = id
}

func (b *Bot) current(chatID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentTable[chatID]
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Warn("send message failed", zap.Int64("chat", chatID), zap.Error(err))
	}
}

// sendPre sends preformatted text, split on line boundaries to fit a message.
func (b *Bot) sendPre(chatID int64, text string) {
	for _, chunk := range splitMessage(text, maxMessageLen) {
		msg := tgbotapi.NewMessage(chatID, "<pre>\n"+html.EscapeString(chunk)+"\n</pre>")
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Warn("send table failed", zap.Int64("chat", chatID), zap.Error(err))
			return
		}
	}
}

func splitMessage(text string, limit int) []string {
	var chunks []string
	var cur strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if cur.Len() > 0 && len([]rune(cur.String()))+len([]rune(line))+1 > limit {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

func (b *Bot) handleText(message *tgbotapi.Message) {
	id := newUploadID()
	b.app.linkChat(id, message.Chat.ID)
	b.reply(message.Chat.ID, welcomeText+"\n\nرابط رفع الملف: "+b.app.cfg.PublicURL+"/?id="+id)
}

func (b *Bot) handleDocument(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	fileURL, err := b.api.GetFileDirectURL(message.Document.FileID)
	if err != nil {
		b.logger.Warn("get file url", zap.Error(err))
		id := newUploadID()
		b.app.linkChat(id, chatID)
		b.reply(chatID, "تعذر تنزيل الملف، إذا كان الملف كبيراً استخدم رابط الرفع: "+b.app.cfg.PublicURL+"/?id="+id)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		b.logger.Warn("build download request", zap.Error(err))
		return
	}
	resp, err := b.client.Do(req)
	if err != nil {
		b.logger.Warn("download document", zap.Error(err))
		b.reply(chatID, "تعذر تنزيل الملف")
		return
	}
	defer resp.Body.Close()

	id := newUploadID()
	raw, err := b.app.saveUpload(id, message.Document.FileName, resp.Body)
	if err != nil {
		b.logger.Info("upload rejected", zap.String("file", message.Document.FileName), zap.Error(err))
		b.reply(chatID, uploadErrorText(err))
		return
	}
	b.setCurrent(chatID, id)

	r, err := b.app.pipeline.Run(raw, analyzer.Criteria{})
	if err != nil {
		b.reply(chatID, uploadErrorText(err))
		return
	}
	b.sendReport(chatID, id, r)
}

func uploadErrorText(err error) string {
	var schemaErr *analyzer.SchemaError
	if errors.As(err, &schemaErr) {
		return fmt.Sprintf("الملف لا يحتوي على الأعمدة المطلوبة: %s", strings.Join(schemaErr.Columns, "، "))
	}
	return "تعذر قراءة الملف: " + err.Error()
}

// sendReport sends the ranking tables, the charts and the full text report.
func (b *Bot) sendReport(chatID int64, id string, r *models.Report) {
	if r.Empty || r.Aggregates == nil {
		b.reply(chatID, "لا توجد بيانات مطابقة للفلاتر المحددة")
		return
	}

	b.sendPre(chatID, report.FiltersTable(r, report.Text))
	if r.Rankings != nil {
		b.sendPre(chatID, report.RankingsText(r.Rankings, r.Aggregates.SchoolsBelowLimit, report.Text))
	}
	b.sendCharts(chatID, r)

	full := report.Render(r, report.Text)
	doc := tgbotapi.NewDocumentUpload(chatID, tgbotapi.FileBytes{
		Name:  attachmentName("report", strings.TrimSuffix(r.Source, ".xlsx"), "txt"),
		Bytes: []byte(full),
	})
	doc.Caption = "التقرير الكامل"
	if _, err := b.api.Send(doc); err != nil {
		b.logger.Warn("send report file failed", zap.Error(err))
	}

	if id != "" && b.app.cfg.PublicURL != "" {
		b.reply(chatID, "لوحة المعلومات: "+b.app.cfg.PublicURL+"/dashboard/"+id)
	}
}

func (b *Bot) sendCharts(chatID int64, r *models.Report) {
	a := r.Aggregates
	if png, err := plot.SubjectMeans(a.SubjectMeans); err == nil {
		b.sendGraphVisualization(chatID, png, "subject_means", "")
	}
	for _, d := range a.Distributions {
		if png, err := plot.GradePie(d); err == nil {
			b.sendGraphVisualization(chatID, png, "grades_pie", d.Semester)
		}
	}
	if a.SubjectHistogram != nil {
		if png, err := plot.Histogram(a.SubjectHistogram); err == nil {
			b.sendGraphVisualization(chatID, png, "histogram", a.SubjectHistogram.Subject)
		}
	}
	if r.Rankings != nil {
		if png, err := plot.Ranking("Top schools", r.Rankings.Top); err == nil {
			b.sendGraphVisualization(chatID, png, "top_schools", "")
		}
		if png, err := plot.Ranking("Bottom schools", r.Rankings.Bottom); err == nil {
			b.sendGraphVisualization(chatID, png, "bottom_schools", "")
		}
	}
}
