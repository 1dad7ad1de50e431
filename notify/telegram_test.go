package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivolan/hrv_tda_stats/domain/models"
	"github.com/pivolan/hrv_tda_stats/report"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func newTestNotifier(s sender) *Notifier {
	at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	return &Notifier{api: s, chatID: 42, now: func() time.Time { return at }}
}

func TestSendFigurePhotoOrDocument(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		photo bool
	}{
		{"small image", 1000, true},
		{"large image", maxSizePhoto + 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeSender{}
			err := newTestNotifier(fake).SendFigure(context.Background(), "correlation_heatmap", make([]byte, tt.size))
			require.NoError(t, err)
			require.Len(t, fake.sent, 1)

			if tt.photo {
				msg, ok := fake.sent[0].(tgbotapi.PhotoConfig)
				require.True(t, ok)
				assert.Equal(t, int64(42), msg.ChatID)
				assert.Equal(t, "correlation_heatmap_20240501-123000.png", msg.File.(tgbotapi.FileBytes).Name)
				assert.Contains(t, msg.Caption, "Pearson r")
			} else {
				msg, ok := fake.sent[0].(tgbotapi.DocumentConfig)
				require.True(t, ok)
				assert.Contains(t, msg.Caption, "Pearson r")
			}
		})
	}
}

func TestSendDocument(t *testing.T) {
	fake := &fakeSender{}
	n := newTestNotifier(fake)
	require.NoError(t, n.SendDocument(context.Background(), "TDA_HRV_correlations.csv", []byte("a,b\n"), "correlations"))
	require.Len(t, fake.sent, 1)

	doc := fake.sent[0].(tgbotapi.DocumentConfig)
	assert.Equal(t, "TDA_HRV_correlations.csv", doc.File.(tgbotapi.FileBytes).Name)
}

func TestSendTableKeepsColumnNames(t *testing.T) {
	// an odd number of underscores would break Telegram's Markdown parser
	tbl := &models.CorrelationTable{Records: []models.CorrelationRecord{
		{Feature: "N1", Metric: "mean_RR", R: 0.5, P: 0.01, N: 20},
		{Feature: "N1", Metric: "SDNN_RR", R: -0.2, P: 0.4, N: 20},
		{Feature: "N1", Metric: "RMSSD_RR", R: 0.1, P: 0.7, N: 20},
	}}
	fake := &fakeSender{}
	require.NoError(t, newTestNotifier(fake).SendTable(context.Background(), report.CorrelationTable(tbl)+"\n<a&b>"))
	require.Len(t, fake.sent, 1)

	msg := fake.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.True(t, strings.HasPrefix(msg.Text, "<pre>\n"))
	assert.True(t, strings.HasSuffix(msg.Text, "\n</pre>"))
	for _, name := range []string{"mean_RR", "SDNN_RR", "RMSSD_RR"} {
		assert.Contains(t, msg.Text, name)
	}
	assert.Contains(t, msg.Text, "&lt;a&amp;b&gt;")
	assert.Equal(t, 1, strings.Count(msg.Text, "<pre>"))
}

func TestSendErrors(t *testing.T) {
	fake := &fakeSender{err: errors.New("forbidden")}
	err := newTestNotifier(fake).SendTable(context.Background(), "hi")
	assert.ErrorContains(t, err, "forbidden")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = newTestNotifier(&fakeSender{}).SendFigure(ctx, "x", []byte{1})
	assert.ErrorIs(t, err, context.Canceled)
}
