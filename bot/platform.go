package bot

import (
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/maxx-dev16/Maxx-OS/config"
	"github.com/maxx-dev16/Maxx-OS/temptalk"
)

const ownerPermissions = discordgo.PermissionManageChannels |
	discordgo.PermissionVoiceConnect |
	discordgo.PermissionVoiceSpeak

// discordPlatform implements temptalk.Platform on a discordgo session.
type discordPlatform struct {
	session *discordgo.Session
	cfg     config.Config
}

var _ temptalk.Platform = (*discordPlatform)(nil)

func newDiscordPlatform(session *discordgo.Session, cfg config.Config) *discordPlatform {
	return &discordPlatform{session: session, cfg: cfg}
}

func isNotFound(err error) bool {
	restErr, ok := err.(*discordgo.RESTError)
	return ok && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

// CreateVoiceRoom creates the room as a sibling of the trigger channel. The
// owner gets manage/connect/speak; everyone else keeps default connect so a
// fresh room is joinable until locked.
func (p *discordPlatform) CreateVoiceRoom(name, ownerID string) (string, error) {
	trigger, err := p.session.Channel(p.cfg.TriggerChannelID)
	if err != nil {
		return "", fmt.Errorf("resolve trigger channel: %w", err)
	}

	parentID := trigger.ParentID
	if p.cfg.CategoryID != "" {
		parentID = p.cfg.CategoryID
	}

	ch, err := p.session.GuildChannelCreateComplex(p.cfg.GuildID, discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     discordgo.ChannelTypeGuildVoice,
		ParentID: parentID,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{
				ID:    p.cfg.GuildID, // the everyone role shares the guild id
				Type:  discordgo.PermissionOverwriteTypeRole,
				Allow: discordgo.PermissionViewChannel,
			},
			{
				ID:    ownerID,
				Type:  discordgo.PermissionOverwriteTypeMember,
				Allow: ownerPermissions,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create voice channel: %w", err)
	}
	return ch.ID, nil
}

func (p *discordPlatform) MoveMember(userID, roomID string) error {
	return p.session.GuildMemberMove(p.cfg.GuildID, userID, &roomID)
}

func (p *discordPlatform) DisconnectMember(userID string) error {
	return p.session.GuildMemberMove(p.cfg.GuildID, userID, nil)
}

func (p *discordPlatform) MemberVoiceRoom(userID string) (string, error) {
	guild, err := p.session.State.Guild(p.cfg.GuildID)
	if err != nil {
		return "", err
	}
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID, nil
		}
	}
	return "", nil
}

func (p *discordPlatform) SendControlMessage(sum temptalk.Summary) (string, error) {
	msg, err := p.session.ChannelMessageSendComplex(p.cfg.ControlChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{controlEmbed(sum)},
		Components: controlButtons(sum),
	})
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (p *discordPlatform) EditControlMessage(messageID string, sum temptalk.Summary) error {
	embeds := []*discordgo.MessageEmbed{controlEmbed(sum)}
	components := controlButtons(sum)
	_, err := p.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    p.cfg.ControlChannelID,
		ID:         messageID,
		Embeds:     &embeds,
		Components: &components,
	})
	return err
}

func (p *discordPlatform) DeleteControlMessage(messageID string) error {
	return p.session.ChannelMessageDelete(p.cfg.ControlChannelID, messageID)
}

// everyoneOverwrite returns the room's current permission overwrite for the
// everyone role, or nil.
func (p *discordPlatform) everyoneOverwrite(roomID string) (*discordgo.PermissionOverwrite, error) {
	ch, err := p.session.Channel(roomID)
	if err != nil {
		return nil, err
	}
	for _, ow := range ch.PermissionOverwrites {
		if ow.ID == p.cfg.GuildID {
			return ow, nil
		}
	}
	return nil, nil
}

func (p *discordPlatform) SetConnectEveryone(roomID string, policy temptalk.ConnectPolicy) error {
	var allow, deny int64
	if ow, err := p.everyoneOverwrite(roomID); err == nil && ow != nil {
		allow, deny = ow.Allow, ow.Deny
	}
	allow, deny = applyConnectPolicy(allow, deny, policy)
	return p.session.ChannelPermissionSet(roomID, p.cfg.GuildID,
		discordgo.PermissionOverwriteTypeRole, allow, deny)
}

func (p *discordPlatform) SetConnectMember(roomID, userID string, policy temptalk.ConnectPolicy) error {
	var allow, deny int64
	if ch, err := p.session.Channel(roomID); err == nil {
		for _, ow := range ch.PermissionOverwrites {
			if ow.ID == userID {
				allow, deny = ow.Allow, ow.Deny
				break
			}
		}
	}
	allow, deny = applyConnectPolicy(allow, deny, policy)
	return p.session.ChannelPermissionSet(roomID, userID,
		discordgo.PermissionOverwriteTypeMember, allow, deny)
}

// applyConnectPolicy rewrites only the connect bit, preserving the rest of
// the overwrite (notably the view-channel allow set at creation).
func applyConnectPolicy(allow, deny int64, policy temptalk.ConnectPolicy) (int64, int64) {
	allow &^= discordgo.PermissionVoiceConnect
	deny &^= discordgo.PermissionVoiceConnect
	switch policy {
	case temptalk.ConnectAllow:
		allow |= discordgo.PermissionVoiceConnect
	case temptalk.ConnectDeny:
		deny |= discordgo.PermissionVoiceConnect
	}
	return allow, deny
}

func (p *discordPlatform) GrantOwner(roomID, userID string) error {
	return p.session.ChannelPermissionSet(roomID, userID,
		discordgo.PermissionOverwriteTypeMember, ownerPermissions, 0)
}

func (p *discordPlatform) RoomLocked(roomID string) (bool, error) {
	ow, err := p.everyoneOverwrite(roomID)
	if err != nil {
		return false, err
	}
	return ow != nil && ow.Deny&discordgo.PermissionVoiceConnect != 0, nil
}

func (p *discordPlatform) SetUserLimit(roomID string, limit int) error {
	_, err := p.session.ChannelEdit(roomID, &discordgo.ChannelEdit{UserLimit: limit})
	return err
}

func (p *discordPlatform) UserLimit(roomID string) (int, error) {
	ch, err := p.session.Channel(roomID)
	if err != nil {
		return 0, err
	}
	return ch.UserLimit, nil
}

func (p *discordPlatform) MemberCount(roomID string) (int, error) {
	guild, err := p.session.State.Guild(p.cfg.GuildID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == roomID {
			count++
		}
	}
	return count, nil
}

func (p *discordPlatform) RoomExists(roomID string) (bool, error) {
	_, err := p.session.Channel(roomID)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

func (p *discordPlatform) DeleteRoom(roomID string) error {
	_, err := p.session.ChannelDelete(roomID)
	return err
}

func (p *discordPlatform) CreateInvite(roomID string) (string, error) {
	invite, err := p.session.ChannelInviteCreate(roomID, discordgo.Invite{
		MaxAge:  3600,
		MaxUses: 1,
		Unique:  true,
	})
	if err != nil {
		return "", err
	}
	return "https://discord.gg/" + invite.Code, nil
}

func (p *discordPlatform) FetchMember(userID string) (temptalk.Member, error) {
	member, err := p.session.GuildMember(p.cfg.GuildID, userID)
	if err != nil {
		if isNotFound(err) {
			return temptalk.Member{}, fmt.Errorf("%s: %w", userID, temptalk.ErrMemberNotFound)
		}
		return temptalk.Member{}, err
	}
	name := member.User.Username
	if member.Nick != "" {
		name = member.Nick
	}
	return temptalk.Member{ID: member.User.ID, Name: name}, nil
}

func (p *discordPlatform) DirectMessage(userID, content string) error {
	ch, err := p.session.UserChannelCreate(userID)
	if err != nil {
		return err
	}
	_, err = p.session.ChannelMessageSend(ch.ID, content)
	return err
}

func controlEmbed(sum temptalk.Summary) *discordgo.MessageEmbed {
	limit := "unlimited"
	if sum.UserLimit > 0 {
		limit = fmt.Sprintf("%d", sum.UserLimit)
	}
	locked := "No"
	if sum.Locked {
		locked = "Yes"
	}
	autoDelete := "No"
	if sum.AutoDelete {
		autoDelete = "Yes"
	}
	return &discordgo.MessageEmbed{
		Title:       "🎛️ TempTalk Controls",
		Description: "Manage your room with the buttons below.",
		Color:       0x5865F2, // Discord Blurple
		Fields: []*discordgo.MessageEmbedField{
			{Name: "👑 Owner", Value: fmt.Sprintf("<@%s>", sum.OwnerID), Inline: true},
			{Name: "👥 User limit", Value: limit, Inline: true},
			{Name: "🔒 Locked", Value: locked, Inline: true},
			{Name: "🗑️ Auto delete", Value: autoDelete, Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Room ID: " + sum.RoomID,
		},
	}
}

func controlButtons(sum temptalk.Summary) []discordgo.MessageComponent {
	lockLabel := "🔒 Lock"
	if sum.Locked {
		lockLabel = "🔓 Unlock"
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    lockLabel,
					Style:    discordgo.PrimaryButton,
					CustomID: temptalk.ActionLock.ButtonID(sum.RoomID),
				},
				discordgo.Button{
					Label:    "🎚️ Limit",
					Style:    discordgo.SecondaryButton,
					CustomID: temptalk.ActionLimit.ButtonID(sum.RoomID),
				},
				discordgo.Button{
					Label:    "👑 Transfer",
					Style:    discordgo.SuccessButton,
					CustomID: temptalk.ActionTransfer.ButtonID(sum.RoomID),
				},
				discordgo.Button{
					Label:    "➕ Invite",
					Style:    discordgo.PrimaryButton,
					CustomID: temptalk.ActionInvite.ButtonID(sum.RoomID),
				},
				discordgo.Button{
					Label:    "⛔ Block",
					Style:    discordgo.DangerButton,
					CustomID: temptalk.ActionBlock.ButtonID(sum.RoomID),
				},
			},
		},
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "🗑️ Delete",
					Style:    discordgo.DangerButton,
					CustomID: temptalk.ActionDelete.ButtonID(sum.RoomID),
				},
			},
		},
	}
}
