// Package notify pushes figures and result files to a Telegram chat.
package notify

import (
	"context"
	"fmt"
	"html"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/sirupsen/logrus"
)

// Larger images go out as documents so Telegram does not recompress them.
const maxSizePhoto = 150000

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Notifier struct {
	api    sender
	chatID int64
	now    func() time.Time
}

// New authorises the bot token against the Telegram API.
func New(token string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("tg error: %w", err)
	}
	logrus.WithField("account", bot.Self.UserName).Debug("telegram bot authorised")
	return &Notifier{api: bot, chatID: chatID, now: time.Now}, nil
}

// SendFigure uploads a PNG as a photo, or as a document when it is too large for one.
func (n *Notifier) SendFigure(ctx context.Context, name string, png []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	file := tgbotapi.FileBytes{
		Name:  fmt.Sprintf("%s_%s.png", name, n.now().Format("20060102-150405")),
		Bytes: png,
	}
	caption := figureCaption(name)

	var msg tgbotapi.Chattable
	if len(png) < maxSizePhoto {
		photo := tgbotapi.NewPhotoUpload(n.chatID, file)
		photo.Caption = caption
		msg = photo
	} else {
		doc := tgbotapi.NewDocumentUpload(n.chatID, file)
		doc.Caption = caption
		msg = doc
	}
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send figure %s: %w", name, err)
	}
	return nil
}

// SendDocument uploads an arbitrary result file, e.g. the correlation CSV.
func (n *Notifier) SendDocument(ctx context.Context, fileName string, data []byte, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := tgbotapi.NewDocumentUpload(n.chatID, tgbotapi.FileBytes{Name: fileName, Bytes: data})
	doc.Caption = caption
	if _, err := n.api.Send(doc); err != nil {
		return fmt.Errorf("send document %s: %w", fileName, err)
	}
	return nil
}

// SendTable posts a rendered text table as preformatted HTML so column
// names with underscores or pipes arrive verbatim.
func (n *Notifier) SendTable(ctx context.Context, table string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, "<pre>\n"+html.EscapeString(table)+"\n</pre>")
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send table: %w", err)
	}
	return nil
}

func figureCaption(name string) string {
	switch name {
	case "group_boxplots":
		return "HRV metrics by group: box plots with individual recordings."
	case "correlation_heatmap":
		return "Pearson r between TDA descriptors and HRV metrics."
	default:
		return fmt.Sprintf("Figure: %s", name)
	}
}
