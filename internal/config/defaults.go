package config

import (
	"time"

	"github.com/danvo/liveinsight/internal/model"
	"github.com/danvo/liveinsight/internal/rules"
	"github.com/danvo/liveinsight/internal/sentiment"
)

// Default returns a complete configuration with the built-in rule table,
// lexicon, and selector map. Used directly in demo mode and as the base
// that Load overlays files onto.
func Default() *Config {
	return &Config{
		Rules:     DefaultRules(),
		Lexicon:   DefaultLexicon(),
		Selectors: DefaultSelectors(),
		Bot: BotConfig{
			PeriodicInterval: Duration(60 * time.Second),
			Cooldown:         Duration(5 * time.Second),
			SummaryInterval:  Duration(2 * time.Minute),
			Persona:          "A friendly and supportive viewer who loves the stream.",
			Style:            "Friendly",
			Templates: []string{
				"Welcome everyone, glad you're here!",
				"Don't forget to follow for more streams like this 💛",
				"Drop a comment if you have questions!",
			},
		},
		AI: AIConfig{Preferred: "gemini"},
	}
}

// DefaultRules is the built-in intent decision table, evaluated in order.
func DefaultRules() []rules.Rule {
	return []rules.Rule{
		{
			Intent:   "question",
			Priority: model.PriorityMedium,
			Keywords: []string{"how", "what", "when", "where", "why", "?"},
			Patterns: []string{`\?\s*$`},
		},
		{
			Intent:   "price_inquiry",
			Priority: model.PriorityHigh,
			Keywords: []string{"price", "how much", "cost", "giá", "bao nhiêu"},
			Responses: []string{
				"Check the pinned product card for the current price!",
				"Prices are on the product cards below the stream 👇",
			},
		},
		{
			Intent:   "product_interest",
			Priority: model.PriorityHigh,
			Keywords: []string{"buy", "order", "link", "mua", "lấy"},
			Responses: []string{
				"Tap the basket icon to order while the stream deal lasts!",
			},
		},
		{
			Intent:        "spam",
			Priority:      model.PriorityLow,
			RepeatedChars: true,
		},
	}
}

// DefaultLexicon is the built-in sentiment table. Word entries are
// lowercase; emoji rely on the containment pass.
func DefaultLexicon() sentiment.Lexicon {
	return sentiment.Lexicon{
		Positive: []string{
			"love", "great", "nice", "beautiful", "amazing", "good", "cool",
			"đẹp", "xinh", "tuyệt", "thích",
			"❤️", "😍", "🔥", "👍", "💯",
		},
		Negative: []string{
			"bad", "boring", "ugly", "fake", "scam", "hate",
			"chán", "xấu", "dở",
			"👎", "😴", "🤮",
		},
		Weights: sentiment.Weights{Positive: 1, Negative: -1},
	}
}

// DefaultSelectors covers the live-page layout the extraction layer was
// last calibrated against. Selectors are configuration, not logic; the
// core never interprets them.
func DefaultSelectors() SelectorConfig {
	return SelectorConfig{
		Comment: SelectorGroup{
			"container": `div[data-e2e="chat-message"]`,
			"username":  `[data-e2e="message-owner-name"]`,
			"text":      `[data-e2e="comment-text"]`,
			"timestamp": `[data-e2e="comment-time"]`,
		},
		Metrics: SelectorGroup{
			"viewers": `div[class*="chat-room"]`,
			"likes":   `div[data-e2e="live-room-header"]`,
			"shares":  `[data-e2e="share-count"]`,
		},
		Gift: SelectorGroup{
			"name":  `[data-e2e="gift-name"]`,
			"count": `[data-e2e="gift-count"]`,
			"icon":  `img[data-e2e="gift-icon"]`,
		},
		Product: SelectorGroup{
			"card":  `div[data-e2e="product-card"]`,
			"title": `[data-e2e="product-title"]`,
			"price": `[data-e2e="product-price"]`,
		},
	}
}
