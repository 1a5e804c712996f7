package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivolan/grades_analyzer/analyzer"
	"github.com/pivolan/grades_analyzer/domain/models"
)

type fakeAPI struct {
	mu      sync.Mutex
	sent    []tgbotapi.Chattable
	fileURL string
	fileErr error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	return f.fileURL, f.fileErr
}

func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeAPI) count(match func(tgbotapi.Chattable) bool) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.sent {
		if match(c) {
			n++
		}
	}
	return n
}

func isPhoto(c tgbotapi.Chattable) bool {
	_, ok := c.(tgbotapi.PhotoConfig)
	return ok
}

func isDocument(c tgbotapi.Chattable) bool {
	_, ok := c.(tgbotapi.DocumentConfig)
	return ok
}

func commandMessage(chatID int64, text string) *tgbotapi.Message {
	cmd := strings.Fields(text)[0]
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: 7},
		Text: text,
		Entities: &[]tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len([]rune(cmd))},
		},
	}
}

func TestHandleDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(testCSV())
	}))
	defer srv.Close()

	app := newTestApp(t, testConfig(t))
	api := &fakeAPI{fileURL: srv.URL + "/file"}
	bot := NewBot(app, api)

	msg := &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 5},
		From:     &tgbotapi.User{ID: 7},
		Document: &tgbotapi.Document{FileID: "f1", FileName: "results.csv"},
	}
	bot.handleDocument(context.Background(), msg)

	id := bot.current(5)
	require.True(t, validUploadID(id))

	all := strings.Join(api.texts(), "\n")
	assert.Contains(t, all, "<pre>")
	assert.Contains(t, all, "مدرسة أ")
	assert.Contains(t, all, "http://example.test/dashboard/"+id)
	assert.GreaterOrEqual(t, api.count(isPhoto)+api.count(isDocument), 4)
}

func TestHandleDocumentRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("a,b\n1,2\n"))
	}))
	defer srv.Close()

	app := newTestApp(t, testConfig(t))
	api := &fakeAPI{fileURL: srv.URL}
	bot := NewBot(app, api)

	bot.handleDocument(context.Background(), &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 5},
		Document: &tgbotapi.Document{FileID: "f1", FileName: "results.csv"},
	})

	texts := api.texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "اسم الطالب")
	assert.Equal(t, "", bot.current(5))
}

func TestHandleDocumentLinkFallback(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	api := &fakeAPI{fileErr: errors.New("file is too big")}
	bot := NewBot(app, api)

	bot.handleDocument(context.Background(), &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 9},
		Document: &tgbotapi.Document{FileID: "f1", FileName: "big.xlsx"},
	})

	texts := api.texts()
	require.Len(t, texts, 1)
	i := strings.Index(texts[0], "/?id=")
	require.True(t, i > 0)
	chatID, ok := app.chatFor(texts[0][i+len("/?id="):])
	assert.True(t, ok)
	assert.Equal(t, int64(9), chatID)
}

func TestCommands(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	api := &fakeAPI{}
	bot := NewBot(app, api)
	ctx := context.Background()

	_, err := app.saveUpload(newUploadID(), "results.csv", strings.NewReader(string(testCSV())))
	require.NoError(t, err)

	bot.handleCommand(ctx, commandMessage(1, "/top"))
	assert.Contains(t, api.texts()[0], "أرسل ملف النتائج أولاً")

	id := newUploadID()
	_, err = app.saveUpload(id, "results.csv", strings.NewReader(string(testCSV())))
	require.NoError(t, err)
	bot.setCurrent(1, id)

	api.sent = nil
	bot.handleCommand(ctx, commandMessage(1, "/top"))
	top := strings.Join(api.texts(), "\n")
	assert.Contains(t, top, "أفضل 2 مدرسة")
	assert.Less(t, strings.Index(top, "مدرسة أ"), strings.Index(top, "مدرسة ب"))

	api.sent = nil
	bot.handleCommand(ctx, commandMessage(1, "/filter school=مدرسة ب"))
	filtered := strings.Join(api.texts(), "\n")
	assert.Contains(t, filtered, "مدرسة ب")
	assert.NotContains(t, filtered, "مدرسة أ")

	api.sent = nil
	bot.handleCommand(ctx, commandMessage(1, "/filter color=red"))
	assert.Contains(t, api.texts()[0], "color")

	api.sent = nil
	bot.handleCommand(ctx, commandMessage(1, "/subject الرياضيات"))
	assert.Equal(t, 1, api.count(isPhoto)+api.count(isDocument))

	api.sent = nil
	bot.handleCommand(ctx, commandMessage(1, "/help"))
	assert.Equal(t, []string{welcomeText}, api.texts())
}

func TestHandleTextLinksChat(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	api := &fakeAPI{}
	bot := NewBot(app, api)

	bot.handleText(&tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 3}, Text: "hello"})

	texts := api.texts()
	require.Len(t, texts, 1)
	i := strings.Index(texts[0], "http://example.test/?id=")
	require.True(t, i >= 0)
	id := texts[0][i+len("http://example.test/?id="):]
	chatID, ok := app.chatFor(id)
	assert.True(t, ok)
	assert.Equal(t, int64(3), chatID)
}

func TestSendReportEmpty(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	api := &fakeAPI{}
	bot := NewBot(app, api)

	bot.sendReport(1, "", &models.Report{Empty: true})
	assert.Equal(t, []string{"لا توجد بيانات مطابقة للفلاتر المحددة"}, api.texts())
}

func TestParseFilterArgs(t *testing.T) {
	tests := []struct {
		in      string
		want    analyzer.Criteria
		wantErr bool
	}{
		{in: "", want: analyzer.Criteria{}},
		{in: "school=مدرسة النور", want: analyzer.Criteria{School: analyzer.Only("مدرسة النور")}},
		{
			in: "semester=الفصل الأول  school=مدرسة النور gender=ذكر",
			want: analyzer.Criteria{
				Semester: analyzer.Only("الفصل الأول"),
				School:   analyzer.Only("مدرسة النور"),
				Gender:   analyzer.Only("ذكر"),
			},
		},
		{in: "grade_label=الصف الأول subject=العلوم", want: analyzer.Criteria{
			GradeLabel: analyzer.Only("الصف الأول"),
			Subject:    analyzer.Only("العلوم"),
		}},
		{in: "school=", want: analyzer.Criteria{}},
		{in: "color=red", wantErr: true},
		{in: "مدرسة النور", wantErr: true},
		{in: "junk school=x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFilterArgs(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitMessage(t *testing.T) {
	text := strings.Repeat("0123456789\n", 10)
	chunks := splitMessage(strings.TrimSuffix(text, "\n"), 25)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 25)
	}
	assert.Equal(t, strings.TrimSuffix(text, "\n"), strings.Join(chunks, "\n"))
	assert.Nil(t, splitMessage("", 10))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "results-2024", slug("Results 2024"))
	assert.Equal(t, "", slug("!!!"))
	assert.NotEmpty(t, slug("مدرسة النور"))
}
