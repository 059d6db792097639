package service

import (
	"fmt"
	"strings"

	links "oncallbot/internal/services/links/domain"
)

const (
	whoSuffix    = "are the humans OnCall."
	summonSuffix = "get in here! :point_up_2:"
	nobodyOnCall = "Nobody is on call for this channel right now."
	fetchFailed  = "I couldn't reach PagerDuty to find who is on call. Please try again in a minute."
	noDefault    = "No default schedule is configured. Use `link #channel <schedule>` to connect a channel."
	parseFailed  = "I couldn't parse a schedule ID from that. Try a PagerDuty schedule URL or a raw schedule ID like `PXXXXXX`."
	saveFailed   = "I couldn't save that link. Please try again."
	listFailed   = "I couldn't load the linked channels. Please try again."
	emptyList    = "No channels are linked to PagerDuty schedules yet. Use `link #channel <schedule>` to set one up."
)

const helpText = "I understand these commands:\n" +
	"• *help* - this message\n" +
	"• *who* - show who's on call\n" +
	"• *version* - show bot version\n" +
	"• *link #channel <schedule URL or ID>* - connect a channel to a PagerDuty schedule\n" +
	"• *unlink #channel* - disconnect a channel\n" +
	"• *list* - show all linked channels"

func mentionList(ids []string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "<@" + id + ">"
	}
	return strings.Join(parts, " ")
}

func whoReply(ids []string) string { return mentionList(ids) + " " + whoSuffix }

func summonReply(ids []string) string { return mentionList(ids) + ", " + summonSuffix }

func relayReply(ids []string, sender, text string) string {
	return fmt.Sprintf(`%s, %s said _"%s"_`, mentionList(ids), sender, text)
}

func linkedReply(channelID, scheduleID string, joinErr error, botName string) string {
	head := fmt.Sprintf("Linked <#%s> to PagerDuty schedule `%s`. ", channelID, scheduleID)
	if joinErr != nil {
		return head + "I couldn't join the channel automatically, please invite me with `/invite @" + botName + "`."
	}
	return head + "I've joined the channel."
}

func unlinkedReply(channelID string, changed bool) string {
	if changed {
		return "Unlinked <#" + channelID + ">. I'll no longer respond to @oncall there (unless a global schedule is configured)."
	}
	return "<#" + channelID + "> wasn't linked to any schedule."
}

func unknownChannelReply(name string) string {
	return "I couldn't find a channel named #" + name + ". Check the spelling, or invite me there first if it is private."
}

func listReply(all []links.Link) string {
	if len(all) == 0 {
		return emptyList
	}
	lines := make([]string, len(all))
	for i, l := range all {
		lines[i] = "• <#" + l.ChannelID + "> → `" + l.ScheduleID + "`"
	}
	return "*Linked channels:*\n" + strings.Join(lines, "\n")
}

func versionReply(name, v string) string {
	return "I am *" + name + "* and running version " + v + "."
}
