// Package domain turns chat text into commands for the bot
package domain

import (
	"regexp"
	"strings"

	"oncallbot/internal/platform/validate"
)

// Kind tags a parsed direct-message command
type Kind uint8

const (
	// Unrecognized text gets no reply
	Unrecognized Kind = iota
	Link
	Unlink
	List
	Who
	Version
	Help
)

func (k Kind) String() string {
	switch k {
	case Link:
		return "link"
	case Unlink:
		return "unlink"
	case List:
		return "list"
	case Who:
		return "who"
	case Version:
		return "version"
	case Help:
		return "help"
	default:
		return "unrecognized"
	}
}

// ChannelRef names the channel a link or unlink targets
// ID is set for <#C123|name> mentions, only Name for a plain #name
type ChannelRef struct {
	ID   string
	Name string
}

// Label is the best human name for the channel
func (c ChannelRef) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// Command is a parsed direct message
type Command struct {
	Kind    Kind
	Channel ChannelRef
	// Schedule is the raw schedule argument of a link, before id extraction
	Schedule string
}

const channelArg = `(?:<#([^|>]+)(?:\|([^>]*))?>|#([A-Za-z0-9][A-Za-z0-9_.\-]*))`

var (
	linkRe    = regexp.MustCompile(`(?i)^link\s+` + channelArg + `\s+<?([^\s>]+)>?$`)
	unlinkRe  = regexp.MustCompile(`(?i)^unlink\s+` + channelArg + `$`)
	listRe    = regexp.MustCompile(`(?i)^list$`)
	whoRe     = regexp.MustCompile(`^[wW]ho$`)
	versionRe = regexp.MustCompile(`^[vV]ersion$`)
	helpRe    = regexp.MustCompile(`^[hH]elp$`)
)

// Parse matches text against the commands in order; the first match wins
func Parse(text string) Command {
	text = strings.TrimSpace(text)
	if m := linkRe.FindStringSubmatch(text); m != nil {
		return Command{Kind: Link, Channel: channelFrom(m[1:4]), Schedule: m[4]}
	}
	if m := unlinkRe.FindStringSubmatch(text); m != nil {
		return Command{Kind: Unlink, Channel: channelFrom(m[1:4])}
	}
	switch {
	case listRe.MatchString(text):
		return Command{Kind: List}
	case whoRe.MatchString(text):
		return Command{Kind: Who}
	case versionRe.MatchString(text):
		return Command{Kind: Version}
	case helpRe.MatchString(text):
		return Command{Kind: Help}
	}
	return Command{Kind: Unrecognized}
}

// channelFrom reads the id, label and plain-name groups of channelArg
func channelFrom(g []string) ChannelRef {
	if g[0] != "" {
		return ChannelRef{ID: g[0], Name: g[1]}
	}
	return ChannelRef{Name: g[2]}
}

var scheduleInURL = regexp.MustCompile(`schedules[#/]([A-Za-z0-9]+)`)

// ParseScheduleID extracts a schedule id from a schedule URL or a raw id
// a value that is neither is a validation error
func ParseScheduleID(input string) (string, error) {
	if m := scheduleInURL.FindStringSubmatch(input); m != nil {
		return m[1], nil
	}
	if err := validate.Var("schedule", input, "required,alphanum"); err != nil {
		return "", err
	}
	return input, nil
}

// MentionKind tags a message addressed to the bot in a channel
type MentionKind uint8

const (
	// Relay forwards the message text to whoever is on call
	Relay MentionKind = iota
	// AskWho lists who is on call
	AskWho
	// Summon pings whoever is on call
	Summon
)

var leadingMention = regexp.MustCompile(`^<@([^>|]+)(?:\|[^>]*)?>`)

// LeadingMention returns the user id of a mention that opens text
func LeadingMention(text string) (string, bool) {
	m := leadingMention.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseMention classifies text addressed to tag and returns the text to relay
// a trailing colon after the mention is accepted, mobile clients add one
func ParseMention(text, tag string) (MentionKind, string) {
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, tag); ok {
		rest = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
		switch rest {
		case "":
			return Summon, ""
		case "who":
			return AskWho, ""
		}
		return Relay, rest
	}
	// the mention is somewhere else; drop whoever is mentioned first
	if loc := leadingMention.FindStringIndex(text); loc != nil {
		text = strings.TrimSpace(text[loc[1]:])
	}
	return Relay, text
}
