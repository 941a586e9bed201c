package tagging

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/shared"
)

// Rules maps a tag name to the rule that replaces its substring check.
type Rules map[string]Rule

// DefaultRules returns the built-in rule table.
func DefaultRules() Rules {
	return Rules{
		"雑談": MorningRule{
			Keywords:        []string{"雑談", "まっする", "話", "どうよ"},
			MorningKeywords: []string{"朝活", "おは"},
		},
		"ゲーム": SerialRule{
			Keywords: []string{"ゲーム", "ARK", "参加型", "荒野", "杯", "労働", "ホラー", "マイクラ", "Minecraft", "APEX"},
			FoldCase: true,
		},
		"歌枠": KeywordRule{
			Keywords: []string{"歌枠", "歌", "🎤", "🎶", "karaoke"},
			FoldCase: true,
		},
		"ASMR": KeywordRule{
			Keywords: []string{"ASMR", "囁き", "癒し"},
			FoldCase: true,
		},
		"企画": HashtagRule{
			Keywords: []string{"企画", "特別", "カウントダウン"},
		},
		"コラボ": KeywordRule{
			Keywords:            []string{"コラボ", "やかまし", "食事会", "ホロメン"},
			DescriptionKeywords: []string{"コラボ相手", "ゲスト"},
		},
		"3D": KeywordRule{
			Keywords: []string{"3D", "立体"},
			FoldCase: true,
		},
		"記念": MilestoneRule{
			Keywords: []string{"記念", "周年", "お祝い", "祝"},
		},
		"同時視聴": KeywordRule{
			Keywords: []string{"同時視聴", "一緒に見る", "みんなで"},
		},
		"耐久": DurationRule{
			Keywords:   []string{"耐久", "長時間", "マラソン"},
			MinMinutes: 300,
		},
		"ライブ": ScopedRule{
			EventKeywords: []string{"LIVE", "ライブ", "ワンマン", "フェス"},
			Exclude:       []string{"雑談", "感謝", "お知らせ", "告知", "振り返り"},
			FoldCase:      true,
		},
	}
}

// Classifier matches video metadata against a tag vocabulary.
//
// A Classifier is immutable after construction and safe for concurrent use.
type Classifier struct {
	rules Rules
	ctx   Context
}

// NewClassifier copies rules into a new Classifier. A nil loc means UTC.
func NewClassifier(rules Rules, loc *time.Location) *Classifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Classifier{
		rules: maps.Clone(rules),
		ctx:   Context{Location: loc},
	}
}

// InputFromVideo builds classifier input from stored video metadata.
func InputFromVideo(v models.Video) Input {
	return Input{
		Title:       v.Title,
		Description: v.Description,
		StartedAt:   v.StartedAt,
		Duration:    v.Duration,
	}
}

// Classify returns the ids of every vocabulary tag that applies to in.
func (c *Classifier) Classify(in Input, vocab models.TagVocabulary) models.TagMatch {
	matched := models.NewTagMatch()
	for id, name := range vocab {
		if c.matches(name, in) {
			matched.Add(id)
		}
	}
	return matched
}

// Explain lists, for each matched tag name, which path decided it ("rule" or "name").
func (c *Classifier) Explain(in Input, vocab models.TagVocabulary) map[string]string {
	out := make(map[string]string)
	for _, id := range c.Classify(in, vocab).IDs() {
		name := vocab[id]
		if _, ok := c.rules[name]; ok {
			out[name] = "rule"
		} else {
			out[name] = "name"
		}
	}
	return out
}

func (c *Classifier) matches(name string, in Input) bool {
	if rule, ok := c.rules[name]; ok {
		return rule.Matches(in, c.ctx)
	}
	return name != "" && strings.Contains(in.Title, name)
}

// RulesFromConfig returns base with every configured rule layered on top, keyed by tag.
func RulesFromConfig(base Rules, cfgs []shared.RuleConfig) (Rules, error) {
	rules := maps.Clone(base)
	if rules == nil {
		rules = Rules{}
	}

	for _, cfg := range cfgs {
		rule, err := buildRule(cfg)
		if err != nil {
			return nil, err
		}
		rules[cfg.Tag] = rule
	}

	return rules, nil
}

func buildRule(cfg shared.RuleConfig) (Rule, error) {
	if cfg.Tag == "" {
		return nil, fmt.Errorf("%w: rule without tag", shared.ErrInvalidConfig)
	}

	switch cfg.Kind {
	case "", "keyword":
		return KeywordRule{Keywords: cfg.Keywords, FoldCase: cfg.FoldCase}, nil
	case "morning":
		return MorningRule{Keywords: cfg.Keywords, MorningKeywords: cfg.MorningKeywords}, nil
	case "serial":
		return SerialRule{Keywords: cfg.Keywords, FoldCase: cfg.FoldCase}, nil
	case "milestone":
		return MilestoneRule{Keywords: cfg.Keywords}, nil
	case "hashtag":
		return HashtagRule{Keywords: cfg.Keywords}, nil
	case "scoped":
		if len(cfg.EventKeywords) == 0 {
			return nil, fmt.Errorf("%w: scoped rule %q needs event_keywords", shared.ErrInvalidConfig, cfg.Tag)
		}
		return ScopedRule{EventKeywords: cfg.EventKeywords, Exclude: cfg.Exclude, FoldCase: cfg.FoldCase}, nil
	case "duration":
		if cfg.MinMinutes <= 0 {
			return nil, fmt.Errorf("%w: duration rule %q needs min_minutes", shared.ErrInvalidConfig, cfg.Tag)
		}
		return DurationRule{Keywords: cfg.Keywords, MinMinutes: cfg.MinMinutes}, nil
	default:
		return nil, fmt.Errorf("%w: unknown rule kind %q for tag %q", shared.ErrInvalidConfig, cfg.Kind, cfg.Tag)
	}
}
