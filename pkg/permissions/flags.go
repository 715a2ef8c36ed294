// Package permissions resolves who may do what inside a guild. A capability
// comes either from the member's native Discord permissions or from a fake
// permission the bot grants to a role.
package permissions

import (
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// NameAdministrator is the fake permission that implies every other one.
const NameAdministrator = "Administrator"

// flagsByName maps the canonical permission names to the discordgo bits.
var flagsByName = map[string]int64{
	"CreateInstantInvite":     discordgo.PermissionCreateInstantInvite,
	"KickMembers":             discordgo.PermissionKickMembers,
	"BanMembers":              discordgo.PermissionBanMembers,
	"Administrator":           discordgo.PermissionAdministrator,
	"ManageChannels":          discordgo.PermissionManageChannels,
	"ManageGuild":             discordgo.PermissionManageServer,
	"AddReactions":            discordgo.PermissionAddReactions,
	"ViewAuditLog":            discordgo.PermissionViewAuditLogs,
	"PrioritySpeaker":         discordgo.PermissionVoicePrioritySpeaker,
	"Stream":                  discordgo.PermissionVoiceStreamVideo,
	"ViewChannel":             discordgo.PermissionViewChannel,
	"SendMessages":            discordgo.PermissionSendMessages,
	"SendTTSMessages":         discordgo.PermissionSendTTSMessages,
	"ManageMessages":          discordgo.PermissionManageMessages,
	"EmbedLinks":              discordgo.PermissionEmbedLinks,
	"AttachFiles":             discordgo.PermissionAttachFiles,
	"ReadMessageHistory":      discordgo.PermissionReadMessageHistory,
	"MentionEveryone":         discordgo.PermissionMentionEveryone,
	"UseExternalEmojis":       discordgo.PermissionUseExternalEmojis,
	"ViewGuildInsights":       discordgo.PermissionViewGuildInsights,
	"Connect":                 discordgo.PermissionVoiceConnect,
	"Speak":                   discordgo.PermissionVoiceSpeak,
	"MuteMembers":             discordgo.PermissionVoiceMuteMembers,
	"DeafenMembers":           discordgo.PermissionVoiceDeafenMembers,
	"MoveMembers":             discordgo.PermissionVoiceMoveMembers,
	"UseVAD":                  discordgo.PermissionVoiceUseVAD,
	"ChangeNickname":          discordgo.PermissionChangeNickname,
	"ManageNicknames":         discordgo.PermissionManageNicknames,
	"ManageRoles":             discordgo.PermissionManageRoles,
	"ManageWebhooks":          discordgo.PermissionManageWebhooks,
	"ManageEmojisAndStickers": discordgo.PermissionManageEmojis,
	"UseApplicationCommands":  discordgo.PermissionUseSlashCommands,
	"RequestToSpeak":          discordgo.PermissionVoiceRequestToSpeak,
	"ManageEvents":            discordgo.PermissionManageEvents,
	"ManageThreads":           discordgo.PermissionManageThreads,
	"CreatePublicThreads":     discordgo.PermissionCreatePublicThreads,
	"CreatePrivateThreads":    discordgo.PermissionCreatePrivateThreads,
	"UseExternalStickers":     discordgo.PermissionUseExternalStickers,
	"SendMessagesInThreads":   discordgo.PermissionSendMessagesInThreads,
	"UseEmbeddedActivities":   discordgo.PermissionUseActivities,
	"ModerateMembers":         discordgo.PermissionModerateMembers,
}

var (
	namesByFlag  = make(map[int64]string, len(flagsByName))
	namesByLower = make(map[string]string, len(flagsByName))
	sortedFlags  []int64
)

// Dangerous is every permission whose holder can damage a guild quickly.
// Roles carrying any of them are removed by the strip punishment.
const Dangerous int64 = discordgo.PermissionAdministrator | discordgo.PermissionManageServer |
	discordgo.PermissionManageRoles | discordgo.PermissionManageChannels |
	discordgo.PermissionBanMembers | discordgo.PermissionKickMembers |
	discordgo.PermissionManageMessages | discordgo.PermissionManageWebhooks |
	discordgo.PermissionManageEmojis | discordgo.PermissionManageNicknames |
	discordgo.PermissionMentionEveryone | discordgo.PermissionViewAuditLogs |
	discordgo.PermissionVoiceMoveMembers | discordgo.PermissionVoiceDeafenMembers |
	discordgo.PermissionVoiceMuteMembers | discordgo.PermissionManageEvents |
	discordgo.PermissionManageThreads | discordgo.PermissionCreateInstantInvite

func init() {
	for name, flag := range flagsByName {
		namesByFlag[flag] = name
		namesByLower[strings.ToLower(name)] = name
		sortedFlags = append(sortedFlags, flag)
	}
	sort.Slice(sortedFlags, func(i, j int) bool { return sortedFlags[i] < sortedFlags[j] })
}

// Flag returns the bit of a permission name.
func Flag(name string) (int64, bool) {
	f, ok := flagsByName[name]
	return f, ok
}

// Name returns the canonical name of a single permission bit.
func Name(flag int64) (string, bool) {
	n, ok := namesByFlag[flag]
	return n, ok
}

// Canonical resolves a user supplied name case-insensitively.
func Canonical(name string) (string, bool) {
	n, ok := namesByLower[strings.ToLower(strings.TrimSpace(name))]
	return n, ok
}

// NamesFor lists the known permissions set in bits, lowest bit first.
func NamesFor(bits int64) []string {
	var names []string
	for _, f := range sortedFlags {
		if bits&f != 0 {
			names = append(names, namesByFlag[f])
		}
	}
	return names
}

// AllNames lists every known permission name, lowest bit first.
func AllNames() []string {
	return NamesFor(^int64(0))
}

// IsDangerous reports whether bits carries any dangerous permission.
func IsDangerous(bits int64) bool {
	return bits&Dangerous != 0
}
