package main

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/mozillazg/go-unidecode"
	"go.uber.org/zap"
)

// Telegram recompresses large photos badly, bigger charts go as documents.
const maxSizePhoto = 150000

// attachmentName builds an ASCII file name, Telegram clients mangle Arabic ones.
func attachmentName(kind, subject, ext string) string {
	name := kind
	if subject != "" {
		name += "_" + slug(subject)
	}
	return fmt.Sprintf("%s_%s.%s", name, time.Now().Format("20060102-150405"), ext)
}

func slug(s string) string {
	ascii := strings.ToLower(unidecode.Unidecode(s))
	var b strings.Builder
	lastDash := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// sendGraphVisualization sends a chart as a photo, or as a document when it is too large.
func (b *Bot) sendGraphVisualization(chatID int64, graph []byte, visualType, subject string) {
	pngFile := tgbotapi.FileBytes{
		Name:  attachmentName(visualType, subject, "png"),
		Bytes: graph,
	}
	caption := generateVizualDescription(visualType, subject)

	var msg tgbotapi.Chattable
	if len(graph) < maxSizePhoto {
		photo := tgbotapi.NewPhotoUpload(chatID, pngFile)
		photo.Caption = caption
		msg = photo
	} else {
		doc := tgbotapi.NewDocumentUpload(chatID, pngFile)
		doc.Caption = caption
		msg = doc
	}

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("send chart failed",
			zap.String("type", visualType),
			zap.String("subject", subject),
			zap.Error(err))
		b.api.Send(tgbotapi.NewMessage(chatID, "تعذر إرسال الرسم البياني: "+visualType))
	}
}

func generateVizualDescription(visualType, subject string) string {
	switch visualType {
	case "subject_means":
		return "متوسط الدرجات حسب المادة"
	case "grades_pie":
		if subject == "" {
			return "توزيع الطلاب حسب التقديرات"
		}
		return "توزيع الطلاب حسب التقديرات - " + subject
	case "histogram":
		return "تحليل أداء الطلاب في " + subject
	case "top_schools":
		return "أفضل المدارس حسب متوسط المعدل"
	case "bottom_schools":
		return "أدنى المدارس حسب متوسط المعدل"
	}
	return subject
}
