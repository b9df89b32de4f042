// Package config loads the session configuration: the intent rule table,
// the sentiment lexicon, the page selector map, and bot/AI settings.
//
// Configuration is loaded once at session start and treated as immutable
// for the pipeline's lifetime. Missing or malformed rule, lexicon, or
// selector configuration is a fatal setup error: the pipeline must not
// run partially classified.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/danvo/liveinsight/internal/rules"
	"github.com/danvo/liveinsight/internal/sentiment"
)

// Config is the full session configuration.
type Config struct {
	Rules     []rules.Rule      `json:"rules"`
	Lexicon   sentiment.Lexicon `json:"lexicon"`
	Selectors SelectorConfig    `json:"selectors"`
	Bot       BotConfig         `json:"bot"`
	AI        AIConfig          `json:"ai"`
}

// SelectorConfig maps page regions to CSS selectors. Opaque to the core:
// only extraction collaborators interpret these, but a session cannot
// start without the comment and metrics groups.
type SelectorConfig struct {
	Comment SelectorGroup `json:"comment"`
	Metrics SelectorGroup `json:"metrics"`
	Gift    SelectorGroup `json:"gift,omitempty"`
	Product SelectorGroup `json:"product,omitempty"`
}

// SelectorGroup is a named set of selectors within one page region.
type SelectorGroup map[string]string

// BotConfig controls the automated responder.
type BotConfig struct {
	Enabled          bool     `json:"enabled"`           // comment-driven replies
	PeriodicEnabled  bool     `json:"periodic_enabled"`  // recurring posts
	PeriodicInterval Duration `json:"periodic_interval"` // default 60s
	Cooldown         Duration `json:"cooldown"`          // min gap between posts, default 5s
	Templates        []string `json:"templates"`
	UseAI            bool     `json:"use_ai"`
	UseVision        bool     `json:"use_vision"`
	UseVoice         bool     `json:"use_voice"`
	Persona          string   `json:"persona"`
	Topics           string   `json:"topics"`
	Style            string   `json:"style"`
	SummaryInterval  Duration `json:"summary_interval"` // audio summary cadence, default 2m
}

// AIConfig holds provider settings. Keys are auto-populated from the
// environment when absent.
type AIConfig struct {
	Preferred   string `json:"preferred"` // "gemini" or "openai"
	GeminiKey   string `json:"gemini_key,omitempty"`
	GeminiModel string `json:"gemini_model,omitempty"`
	OpenAIKey   string `json:"openai_key,omitempty"`
	OpenAIModel string `json:"openai_model,omitempty"`
}

// Duration wraps time.Duration for JSON config ("5s", "2m").
type Duration time.Duration

// UnmarshalJSON accepts either a duration string or seconds as a number.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("config: invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("config: invalid duration %s", data)
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}

// MarshalJSON renders the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load reads config.json plus the three session tables from dir:
// intent-rules.json, sentiment-lexicon.json, selectors.json. config.json
// is optional; the three tables are not.
func Load(dir string) (*Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(filepath.Join(dir, "config.json")); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse config.json: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: read config.json: %w", err)
	}

	if err := loadJSON(filepath.Join(dir, "intent-rules.json"), &cfg.Rules); err != nil {
		return nil, err
	}
	if err := loadJSON(filepath.Join(dir, "sentiment-lexicon.json"), &cfg.Lexicon); err != nil {
		return nil, err
	}
	if err := loadJSON(filepath.Join(dir, "selectors.json"), &cfg.Selectors); err != nil {
		return nil, err
	}

	cfg.AutoPopulateFromEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("config: parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Validate checks that a session can start with this configuration.
func (c *Config) Validate() error {
	if len(c.Rules) == 0 {
		return fmt.Errorf("config: no intent rules")
	}
	if _, err := rules.NewClassifier(c.Rules); err != nil {
		return err
	}
	if err := c.Lexicon.Validate(); err != nil {
		return err
	}
	if len(c.Selectors.Comment) == 0 || len(c.Selectors.Metrics) == 0 {
		return fmt.Errorf("config: selectors missing comment or metrics group")
	}
	return nil
}

// AutoPopulateFromEnv fills in API keys from environment variables when
// the config files left them empty.
func (c *Config) AutoPopulateFromEnv() {
	if c.AI.GeminiKey == "" {
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			c.AI.GeminiKey = key
		} else if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
			c.AI.GeminiKey = key
		}
	}
	if c.AI.OpenAIKey == "" {
		c.AI.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}
}

func (c *Config) applyDefaults() {
	if c.Bot.Cooldown == 0 {
		c.Bot.Cooldown = Duration(5 * time.Second)
	}
	if c.Bot.PeriodicInterval == 0 {
		c.Bot.PeriodicInterval = Duration(60 * time.Second)
	}
	if c.Bot.SummaryInterval == 0 {
		c.Bot.SummaryInterval = Duration(2 * time.Minute)
	}
	if c.Bot.Persona == "" {
		c.Bot.Persona = "A friendly and supportive viewer who loves the stream."
	}
	if c.Bot.Style == "" {
		c.Bot.Style = "Friendly"
	}
	if c.AI.Preferred == "" {
		c.AI.Preferred = "gemini"
	}
}
