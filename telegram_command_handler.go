package main

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"go.uber.org/zap"

	"github.com/pivolan/grades_analyzer/analyzer"
	"github.com/pivolan/grades_analyzer/domain/models"
	"github.com/pivolan/grades_analyzer/plot"
	"github.com/pivolan/grades_analyzer/report"
)

const welcomeText = `مرحباً! 👋

أساعدك في تحليل نتائج الطلاب من ملف Excel أو CSV.

ما يمكنني فعله:
- متوسط الدرجات حسب المادة والفصل الدراسي
- توزيع الطلاب حسب التقديرات لكل فصل
- ترتيب المدارس حسب متوسط المعدل (الأفضل والأدنى)
- دعم الملفات المضغوطة (zip, gzip, lz4)

الأوامر:
/filter semester=... school=... gender=... grade_label=... subject=...
/top - أفضل المدارس
/bottom - أدنى المدارس
/subject <اسم المادة> - توزيع درجات مادة
/charts - الرسوم البيانية
/default - البيانات الافتراضية
/link - رابط رفع ملف كبير`

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start", "help":
		b.reply(chatID, welcomeText)
	case "link":
		b.handleText(message)
	case "default":
		b.setCurrent(chatID, "")
		b.runAndSend(ctx, chatID, analyzer.Criteria{}, b.sendReport)
	case "filter":
		c, err := parseFilterArgs(args)
		if err != nil {
			b.reply(chatID, err.Error())
			return
		}
		b.runAndSend(ctx, chatID, c, func(chatID int64, id string, r *models.Report) {
			b.sendPre(chatID, report.Render(r, report.Text))
		})
	case "top", "bottom":
		top := message.Command() == "top"
		b.runAndSend(ctx, chatID, analyzer.Criteria{}, func(chatID int64, id string, r *models.Report) {
			if r.Rankings == nil {
				b.reply(chatID, "لا توجد بيانات مطابقة للفلاتر المحددة")
				return
			}
			rows, title := r.Rankings.Bottom, fmt.Sprintf("أدنى %d مدرسة", len(r.Rankings.Bottom))
			if top {
				rows, title = r.Rankings.Top, fmt.Sprintf("أفضل %d مدرسة", len(r.Rankings.Top))
			}
			b.sendPre(chatID, report.RankingTable(title, rows, report.Text))
		})
	case "subject":
		if args == "" {
			b.reply(chatID, "اكتب اسم المادة بعد الأمر، مثال: /subject الرياضيات")
			return
		}
		c := analyzer.Criteria{Subject: analyzer.Only(args)}
		b.runAndSend(ctx, chatID, c, func(chatID int64, id string, r *models.Report) {
			if r.Empty || r.Aggregates.SubjectHistogram == nil {
				b.reply(chatID, "لا توجد درجات للمادة: "+args)
				return
			}
			png, err := plot.Histogram(r.Aggregates.SubjectHistogram)
			if err != nil {
				b.logger.Warn("histogram chart", zap.Error(err))
				return
			}
			b.sendGraphVisualization(chatID, png, "histogram", args)
		})
	case "charts":
		b.runAndSend(ctx, chatID, analyzer.Criteria{}, func(chatID int64, id string, r *models.Report) {
			if r.Empty {
				b.reply(chatID, "لا توجد بيانات مطابقة للفلاتر المحددة")
				return
			}
			b.sendCharts(chatID, r)
		})
	default:
		b.reply(chatID, "أمر غير معروف. استخدم /help")
	}
}

// runAndSend runs the pipeline over the chat's current table and hands the report to send.
func (b *Bot) runAndSend(ctx context.Context, chatID int64, c analyzer.Criteria, send func(int64, string, *models.Report)) {
	id := b.current(chatID)
	r, err := b.app.report(ctx, id, c)
	if err != nil {
		b.logger.Info("report failed", zap.Int64("chat", chatID), zap.String("id", id), zap.Error(err))
		if id == "" && b.app.cfg.SheetURL == "" {
			b.reply(chatID, "أرسل ملف النتائج أولاً")
			return
		}
		b.reply(chatID, uploadErrorText(err))
		return
	}
	send(chatID, id, r)
}

var filterKeyRe = regexp.MustCompile(`(?:^|\s)([a-z_]+)=`)

// parseFilterArgs reads "key=value" pairs where a value runs until the next key,
// so values may contain spaces: "school=مدرسة النور semester=الأول".
func parseFilterArgs(s string) (analyzer.Criteria, error) {
	var c analyzer.Criteria
	matches := filterKeyRe.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		if strings.TrimSpace(s) != "" {
			return c, fmt.Errorf("صيغة غير صحيحة، مثال: /filter school=مدرسة النور")
		}
		return c, nil
	}
	if strings.TrimSpace(s[:matches[0][0]]) != "" {
		return c, fmt.Errorf("صيغة غير صحيحة: %s", strings.TrimSpace(s[:matches[0][0]]))
	}

	known := map[string]models.Dimension{}
	for _, d := range models.Dimensions {
		known[string(d)] = d
	}
	for i, m := range matches {
		key := s[m[2]:m[3]]
		d, ok := known[key]
		if !ok {
			return c, fmt.Errorf("فلتر غير معروف: %s", key)
		}
		end := len(s)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		c = c.With(d, analyzer.OptionOf(strings.TrimSpace(s[m[1]:end])))
	}
	return c, nil
}
