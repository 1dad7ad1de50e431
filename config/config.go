package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

var ErrMissingSetting = errors.New("missing setting")

const (
	DefaultInput           = "results/summary_tables/HRV_TDA_merged.csv"
	DefaultCorrelationsOut = "results/summary_tables/TDA_HRV_correlations.csv"
	DefaultGroupColumn     = "Age_Group"
)

var (
	DefaultHRVMetrics  = []string{"mean_RR", "SDNN_RR", "RMSSD_RR", "PNN50_RR"}
	DefaultTDAFeatures = []string{"N1", "TP1", "MP1", "mu1", "PE1"}
)

type Config struct {
	Input           string
	CorrelationsOut string
	GroupTestsOut   string // empty: not written
	FiguresDir      string // empty: no PNG figures
	ReportHTML      string // empty: no HTML report
	GroupColumn     string
	HRVMetrics      []string
	TDAFeatures     []string
	LogLevel        string

	DbDsn    string
	TgToken  string
	TgChatID int64

	chatIDErr error
}

var (
	config *Config
	once   sync.Once
)

// GetConfig возвращает singleton экземпляр конфигурации
func GetConfig() *Config {
	once.Do(func() {
		// .env is optional here, the defaults reproduce the notebook run
		_ = godotenv.Load()
		config = FromEnv(os.Getenv)
	})
	return config
}

// FromEnv builds a Config from a lookup function, falling back to defaults for unset keys.
func FromEnv(getenv func(string) string) *Config {
	c := &Config{
		Input:           orDefault(getenv("HRV_INPUT"), DefaultInput),
		CorrelationsOut: orDefault(getenv("HRV_CORRELATIONS_OUT"), DefaultCorrelationsOut),
		GroupTestsOut:   getenv("HRV_GROUP_TESTS_OUT"),
		FiguresDir:      getenv("HRV_FIGURES_DIR"),
		ReportHTML:      getenv("HRV_REPORT_HTML"),
		GroupColumn:     orDefault(getenv("HRV_GROUP_COLUMN"), DefaultGroupColumn),
		HRVMetrics:      splitList(getenv("HRV_METRICS"), DefaultHRVMetrics),
		TDAFeatures:     splitList(getenv("TDA_FEATURES"), DefaultTDAFeatures),
		LogLevel:        orDefault(getenv("LOG_LEVEL"), "info"),
		DbDsn:           getenv("DB_DSN"),
		TgToken:         getenv("TG_TOKEN"),
	}
	if id := strings.TrimSpace(getenv("TG_CHAT_ID")); id != "" {
		v, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			c.chatIDErr = fmt.Errorf("TG_CHAT_ID %q: %w", id, err)
		} else {
			c.TgChatID = v
		}
	}
	return c
}

// TelegramEnabled reports whether both the bot token and the chat are configured.
func (c *Config) TelegramEnabled() bool {
	return c.TgToken != "" && c.TgChatID != 0
}

// Validate checks the settings every run needs.
func (c *Config) Validate() error {
	switch {
	case c.chatIDErr != nil:
		return c.chatIDErr
	case c.Input == "":
		return fmt.Errorf("%w: HRV_INPUT", ErrMissingSetting)
	case c.GroupColumn == "":
		return fmt.Errorf("%w: HRV_GROUP_COLUMN", ErrMissingSetting)
	case len(c.HRVMetrics) == 0:
		return fmt.Errorf("%w: HRV_METRICS", ErrMissingSetting)
	case len(c.TDAFeatures) == 0:
		return fmt.Errorf("%w: TDA_FEATURES", ErrMissingSetting)
	case c.TgToken != "" && c.TgChatID == 0:
		return fmt.Errorf("%w: TG_CHAT_ID (TG_TOKEN is set)", ErrMissingSetting)
	}
	return nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func splitList(v string, def []string) []string {
	if strings.TrimSpace(v) == "" {
		out := make([]string, len(def))
		copy(out, def)
		return out
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
