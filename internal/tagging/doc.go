// Package tagging infers content tags for a video from its title.
//
// Every tag in the caller's [models.TagVocabulary] is evaluated on its own. A tag without a rule
// matches when its name appears in the title. A tag with a [Rule] is decided by that rule alone,
// which lets a rule narrow the plain substring check (the live-event tag only fires inside a
// 【...】 segment) or broaden it (the game tag also fires on a "#12" episode marker).
//
// Rules are plain values collected in a [Rules] table keyed by tag name. [DefaultRules] holds the
// built-in table; [RulesFromConfig] layers TOML-configured rules on top of it. A [Classifier]
// copies its table at construction and never mutates it.
//
// Optional inputs degrade gracefully: a missing start time, description or duration turns the
// gates that need them false instead of failing.
package tagging
