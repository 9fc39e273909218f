package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/maxx-dev16/Maxx-OS/economy"
	"github.com/maxx-dev16/Maxx-OS/store"
	"github.com/maxx-dev16/Maxx-OS/temptalk"
	"github.com/maxx-dev16/Maxx-OS/tickets"
)

func commandDefinitions() []*discordgo.ApplicationCommand {
	minInterval := 1.0
	minAmount := 1.0
	maxAmount := 100.0
	return []*discordgo.ApplicationCommand{
		{
			Name:        "play",
			Description: "Queue a song from the music library",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "song",
					Description: "File name of the song",
					Required:    true,
				},
			},
		},
		{
			Name:        "search",
			Description: "Search the music library",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "Part of a song name",
					Required:    true,
				},
			},
		},
		{Name: "listsongs", Description: "List all songs in the music library"},
		{Name: "skip", Description: "Skip the current song"},
		{Name: "stop", Description: "Stop playback and clear the queue"},
		{Name: "queue", Description: "Show the current music queue"},
		{Name: "pause", Description: "Pause playback"},
		{Name: "resume", Description: "Resume paused playback"},
		{
			Name:        "clear",
			Description: "Delete recent messages in this channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Number of messages to delete",
					Required:    true,
					MinValue:    &minAmount,
					MaxValue:    maxAmount,
				},
			},
		},
		{Name: "quests", Description: "Show your daily quests"},
		{Name: "quests_new", Description: "Regenerate your daily quests (admin)"},
		{Name: "shop", Description: "Show the shop inventory"},
		{
			Name:        "buy",
			Description: "Buy an item from the shop",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "item",
					Description: "Name of the item",
					Required:    true,
				},
			},
		},
		{
			Name:        "werbung",
			Description: "Control the recurring advertisement post (admin)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action",
					Description: "What to do",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "start", Value: "start"},
						{Name: "stop", Value: "stop"},
						{Name: "post", Value: "post"},
						{Name: "status", Value: "status"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "interval",
					Description: "Minutes between posts (1-1440)",
					Required:    false,
					MinValue:    &minInterval,
					MaxValue:    1440,
				},
			},
		},
		{
			Name:        "ticket",
			Description: "Support tickets",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "open",
					Description: "Open a support ticket",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "subject",
							Description: "What the ticket is about",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "claim",
					Description: "Claim an open ticket",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "id",
							Description: "Ticket id",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "close",
					Description: "Close a ticket",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "id",
							Description: "Ticket id",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List open tickets",
				},
			},
		},
		{
			Name:        "warn",
			Description: "Warn a user",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to warn",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Reason for the warning",
					Required:    false,
				},
			},
		},
		{
			Name:        "clearwarns",
			Description: "Clear all warnings of a user",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to clear",
					Required:    true,
				},
			},
		},
		{
			Name:        "userinfo",
			Description: "Show a user's stored profile",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to inspect",
					Required:    true,
				},
			},
		},
		{
			Name:        "userinfoadd",
			Description: "Append a moderator note to a user",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User the note belongs to",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "note",
					Description: "The note",
					Required:    true,
				},
			},
		},
		{
			Name:        "ban",
			Description: "Ban a user",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to ban",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Reason for the ban",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "duration",
					Description: "Ban duration like 30m, 2h or 7d (empty = permanent)",
					Required:    false,
				},
			},
		},
	}
}

func (b *Bot) registerCommands(s *discordgo.Session, guildID string) {
	for _, cmd := range commandDefinitions() {
		registered, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, cmd)
		if err != nil {
			b.log.Error().Err(err).
				Str("command", cmd.Name).
				Str("guild", guildID).
				Msg("cannot create command")
			continue
		}
		b.mu.Lock()
		b.registeredCmds[guildID] = append(b.registeredCmds[guildID], registered)
		b.mu.Unlock()
	}
}

func (b *Bot) interactionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		switch data.Name {
		case "play":
			b.handlePlay(s, i)
		case "search":
			b.handleSearch(s, i)
		case "listsongs":
			b.handleListSongs(s, i)
		case "skip":
			b.handleSkip(s, i)
		case "stop":
			b.handleMusicStop(s, i)
		case "queue":
			b.handleQueue(s, i)
		case "pause":
			b.handlePause(s, i)
		case "resume":
			b.handleResume(s, i)
		case "clear":
			b.handleClear(s, i)
		case "quests":
			b.handleQuests(s, i)
		case "quests_new":
			b.handleQuestsNew(s, i)
		case "shop":
			b.handleShop(s, i)
		case "buy":
			b.handleBuy(s, i)
		case "werbung":
			b.handleWerbung(s, i)
		case "ticket":
			b.handleTicket(s, i)
		case "warn":
			b.handleWarn(s, i)
		case "clearwarns":
			b.handleClearWarns(s, i)
		case "userinfo":
			b.handleUserInfo(s, i)
		case "userinfoadd":
			b.handleUserInfoAdd(s, i)
		case "ban":
			b.handleBan(s, i)
		}

	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		if action, roomID, ok := temptalk.ParseButtonID(data.CustomID); ok {
			b.handleRoomButton(s, i, action, roomID)
			return
		}
		if roleID, ok := strings.CutPrefix(data.CustomID, "get_role:"); ok {
			b.handleGetRoleButton(s, i, roleID)
		}

	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		if action, roomID, ok := temptalk.ParseModalID(data.CustomID); ok {
			b.handleRoomModal(s, i, action, roomID)
		}
	}
}

// interactionUserID returns the acting user's id for both guild and DM
// interactions.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func hasPermission(i *discordgo.InteractionCreate, perm int64) bool {
	return i.Member != nil && i.Member.Permissions&perm != 0
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
}

// actionErrorMessage maps room action failures to user-facing text.
func actionErrorMessage(err error) string {
	switch {
	case errors.Is(err, temptalk.ErrRoomNotFound):
		return "❌ This temp room no longer exists."
	case errors.Is(err, temptalk.ErrNotOwner):
		return "❌ Only the room owner can use this."
	case errors.Is(err, temptalk.ErrInvalidLimit):
		return "❌ The limit must be a number."
	case errors.Is(err, temptalk.ErrInvalidReference):
		return "❌ Please give a user mention or a user id."
	case errors.Is(err, temptalk.ErrMemberNotFound):
		return "❌ That user is not a member of this server."
	default:
		return "❌ Something went wrong. Please try again."
	}
}

func (b *Bot) handleRoomButton(s *discordgo.Session, i *discordgo.InteractionCreate, action temptalk.Action, roomID string) {
	reply, prompt, err := b.rooms.Press(action, roomID, interactionUserID(i))
	if err != nil {
		respondEphemeral(s, i, actionErrorMessage(err))
		return
	}
	if prompt != nil {
		s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: &discordgo.InteractionResponseData{
				CustomID: prompt.Action.ModalID(prompt.RoomID),
				Title:    prompt.Title,
				Components: []discordgo.MessageComponent{
					discordgo.ActionsRow{
						Components: []discordgo.MessageComponent{
							discordgo.TextInput{
								CustomID:    "input",
								Label:       prompt.Label,
								Style:       discordgo.TextInputShort,
								Placeholder: prompt.Placeholder,
								Required:    true,
							},
						},
					},
				},
			},
		})
		return
	}
	respondEphemeral(s, i, reply.Content)
}

func (b *Bot) handleRoomModal(s *discordgo.Session, i *discordgo.InteractionCreate, action temptalk.Action, roomID string) {
	value := modalInputValue(i.ModalSubmitData())
	reply, err := b.rooms.Submit(action, roomID, interactionUserID(i), value)
	if err != nil {
		respondEphemeral(s, i, actionErrorMessage(err))
		return
	}
	respondEphemeral(s, i, reply.Content)
}

func modalInputValue(data discordgo.ModalSubmitInteractionData) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			if input, ok := comp.(*discordgo.TextInput); ok {
				return strings.TrimSpace(input.Value)
			}
		}
	}
	return ""
}

func (b *Bot) handleGetRoleButton(s *discordgo.Session, i *discordgo.InteractionCreate, roleID string) {
	userID := interactionUserID(i)
	if err := s.GuildMemberRoleAdd(i.GuildID, userID, roleID); err != nil {
		b.log.Warn().Err(err).Str("user", userID).Str("role", roleID).Msg("failed to assign role")
		respondEphemeral(s, i, "❌ Could not assign the role.")
		return
	}
	respondEphemeral(s, i, "✅ Role assigned!")
}

func (b *Bot) handlePlay(s *discordgo.Session, i *discordgo.InteractionCreate) {
	song := i.ApplicationCommandData().Options[0].StringValue()
	track, err := b.library.Resolve(song, interactionUserID(i))
	if err != nil {
		respondEphemeral(s, i, "❌ Song not found. Try /search or /listsongs.")
		return
	}
	pos, err := b.players.For(i.GuildID).Enqueue(track)
	if err != nil {
		respondEphemeral(s, i, "❌ Playback failed.")
		return
	}
	if pos == 0 {
		respond(s, i, "🎵 Now playing: **"+track.Title+"**")
		return
	}
	respond(s, i, fmt.Sprintf("➕ Queued **%s** at position %d", track.Title, pos))
}

func (b *Bot) handleSearch(s *discordgo.Session, i *discordgo.InteractionCreate) {
	query := i.ApplicationCommandData().Options[0].StringValue()
	songs, err := b.library.Search(query)
	if err != nil || len(songs) == 0 {
		respondEphemeral(s, i, "❌ No songs found.")
		return
	}
	respondEphemeral(s, i, "🔎 Results:\n"+formatSongList(songs))
}

func (b *Bot) handleListSongs(s *discordgo.Session, i *discordgo.InteractionCreate) {
	songs, err := b.library.List()
	if err != nil || len(songs) == 0 {
		respondEphemeral(s, i, "ℹ️ The music library is empty.")
		return
	}
	respondEphemeral(s, i, "🎶 Library:\n"+formatSongList(songs))
}

func formatSongList(songs []string) string {
	var sb strings.Builder
	for idx, song := range songs {
		fmt.Fprintf(&sb, "%d. %s\n", idx+1, song)
		if idx == 24 {
			fmt.Fprintf(&sb, "… and %d more\n", len(songs)-25)
			break
		}
	}
	return sb.String()
}

func (b *Bot) handleSkip(s *discordgo.Session, i *discordgo.InteractionCreate) {
	next, err := b.players.For(i.GuildID).Skip()
	if err != nil {
		respondEphemeral(s, i, "ℹ️ Nothing is playing.")
		return
	}
	if next == nil {
		respond(s, i, "⏭️ Skipped. The queue is now empty.")
		return
	}
	respond(s, i, "⏭️ Skipped. Now playing: **"+next.Title+"**")
}

func (b *Bot) handleMusicStop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.players.For(i.GuildID).Stop()
	respond(s, i, "⏹️ Playback stopped and queue cleared.")
}

func (b *Bot) handleQueue(s *discordgo.Session, i *discordgo.InteractionCreate) {
	player := b.players.For(i.GuildID)
	current := player.NowPlaying()
	pending := player.Queue()
	if current == nil && len(pending) == 0 {
		respondEphemeral(s, i, "ℹ️ The queue is empty.")
		return
	}

	var sb strings.Builder
	if current != nil {
		state := "▶️"
		if player.Paused() {
			state = "⏸️"
		}
		fmt.Fprintf(&sb, "%s **%s** (requested by <@%s>)\n", state, current.Title, current.RequestedBy)
	}
	for idx, t := range pending {
		fmt.Fprintf(&sb, "%d. %s\n", idx+1, t.Title)
	}
	respondEphemeral(s, i, sb.String())
}

func (b *Bot) handlePause(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := b.players.For(i.GuildID).Pause(); err != nil {
		respondEphemeral(s, i, "ℹ️ Nothing is playing.")
		return
	}
	respond(s, i, "⏸️ Paused.")
}

func (b *Bot) handleResume(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := b.players.For(i.GuildID).Resume(); err != nil {
		respondEphemeral(s, i, "ℹ️ Music is not paused.")
		return
	}
	respond(s, i, "▶️ Resumed.")
}

func (b *Bot) handleClear(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hasPermission(i, discordgo.PermissionManageMessages) {
		respondEphemeral(s, i, "❌ You need the Manage Messages permission.")
		return
	}
	amount := int(i.ApplicationCommandData().Options[0].IntValue())

	messages, err := s.ChannelMessages(i.ChannelID, amount, "", "", "")
	if err != nil {
		respondEphemeral(s, i, "❌ Could not fetch messages.")
		return
	}
	ids := make([]string, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.ID)
	}
	if err := s.ChannelMessagesBulkDelete(i.ChannelID, ids); err != nil {
		respondEphemeral(s, i, "❌ Could not delete messages.")
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("🧹 Deleted %d messages.", len(ids)))
}

func (b *Bot) handleQuests(s *discordgo.Session, i *discordgo.InteractionCreate) {
	quests, err := b.economy.Quests(context.Background(), interactionUserID(i))
	if err != nil {
		b.log.Error().Err(err).Msg("failed to load quests")
		respondEphemeral(s, i, "❌ Could not load your quests.")
		return
	}
	respondEphemeral(s, i, formatQuests(quests))
}

func formatQuests(quests []*store.Quest) string {
	var sb strings.Builder
	sb.WriteString("📜 **Your daily quests**\n")
	for _, q := range quests {
		mark := "⬜"
		if q.Done {
			mark = "✅"
		}
		fmt.Fprintf(&sb, "%s %s — %d/%d (+%d coins)\n", mark, q.Title, q.Progress, q.Goal, q.Reward)
	}
	return sb.String()
}

func (b *Bot) handleQuestsNew(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hasPermission(i, discordgo.PermissionAdministrator) {
		respondEphemeral(s, i, "❌ Admin only.")
		return
	}
	userID := interactionUserID(i)
	if err := b.economy.Regenerate(context.Background(), userID); err != nil {
		respondEphemeral(s, i, "❌ Could not regenerate quests.")
		return
	}
	quests, err := b.economy.Quests(context.Background(), userID)
	if err != nil {
		respondEphemeral(s, i, "❌ Could not load the new quests.")
		return
	}
	respondEphemeral(s, i, "🔄 Quests regenerated.\n"+formatQuests(quests))
}

func (b *Bot) handleShop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	items, err := b.economy.Shop(context.Background())
	if err != nil {
		respondEphemeral(s, i, "❌ Could not load the shop.")
		return
	}
	if len(items) == 0 {
		respondEphemeral(s, i, "ℹ️ The shop is empty.")
		return
	}
	var sb strings.Builder
	sb.WriteString("🛒 **Shop**\n")
	for _, item := range items {
		fmt.Fprintf(&sb, "**%s** — %d coins\n%s\n", item.Name, item.Price, item.Description)
	}
	respondEphemeral(s, i, sb.String())
}

func (b *Bot) handleBuy(s *discordgo.Session, i *discordgo.InteractionCreate) {
	itemName := i.ApplicationCommandData().Options[0].StringValue()
	userID := interactionUserID(i)

	item, err := b.economy.Buy(context.Background(), userID, itemName)
	switch {
	case errors.Is(err, economy.ErrUnknownItem):
		respondEphemeral(s, i, "❌ That item is not in the shop.")
		return
	case errors.Is(err, economy.ErrInsufficientCoins):
		respondEphemeral(s, i, "❌ You do not have enough coins.")
		return
	case err != nil:
		respondEphemeral(s, i, "❌ The purchase failed.")
		return
	}

	if item.RoleID != "" {
		if err := s.GuildMemberRoleAdd(i.GuildID, userID, item.RoleID); err != nil {
			b.log.Warn().Err(err).Str("user", userID).Str("role", item.RoleID).Msg("failed to grant purchased role")
		}
	}
	respondEphemeral(s, i, fmt.Sprintf("✅ You bought **%s** for %d coins.", item.Name, item.Price))
}

func (b *Bot) handleWerbung(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hasPermission(i, discordgo.PermissionAdministrator) {
		respondEphemeral(s, i, "❌ Admin only.")
		return
	}
	data := i.ApplicationCommandData()
	action := data.Options[0].StringValue()

	switch action {
	case "start":
		interval := 60 * time.Minute
		if len(data.Options) > 1 {
			interval = time.Duration(data.Options[1].IntValue()) * time.Minute
		}
		if err := b.ads.Start(i.ChannelID, interval); err != nil {
			respondEphemeral(s, i, "❌ "+err.Error())
			return
		}
		respondEphemeral(s, i, fmt.Sprintf("📣 Advertisement posts every %s in this channel.", interval))
	case "stop":
		b.ads.Stop()
		respondEphemeral(s, i, "📣 Advertisement posting stopped.")
	case "post":
		if err := b.ads.PostNow(i.ChannelID); err != nil {
			respondEphemeral(s, i, "❌ "+err.Error())
			return
		}
		respondEphemeral(s, i, "📣 Advertisement posted.")
	case "status":
		if running, interval := b.ads.Status(); running {
			respondEphemeral(s, i, fmt.Sprintf("📣 Running, posting every %s.", interval))
		} else {
			respondEphemeral(s, i, "📣 Not running.")
		}
	}
}

func (b *Bot) handleTicket(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub := i.ApplicationCommandData().Options[0]
	ctx := context.Background()

	switch sub.Name {
	case "open":
		t, err := b.tickets.Open(ctx, interactionUserID(i), sub.Options[0].StringValue())
		if err != nil {
			respondEphemeral(s, i, "❌ Could not open the ticket.")
			return
		}
		respondEphemeral(s, i, "🎫 Ticket opened with id `"+t.ID+"`. A team member will claim it soon.")
	case "claim":
		if !hasPermission(i, discordgo.PermissionKickMembers) {
			respondEphemeral(s, i, "❌ Mod only.")
			return
		}
		err := b.tickets.Claim(ctx, sub.Options[0].StringValue(), interactionUserID(i))
		switch {
		case errors.Is(err, store.ErrNotFound):
			respondEphemeral(s, i, "❌ No such ticket.")
		case errors.Is(err, tickets.ErrNotOpen):
			respondEphemeral(s, i, "❌ That ticket is not open.")
		case err != nil:
			respondEphemeral(s, i, "❌ Could not claim the ticket.")
		default:
			respondEphemeral(s, i, "🎫 Ticket claimed.")
		}
	case "close":
		err := b.tickets.Close(ctx, sub.Options[0].StringValue())
		switch {
		case errors.Is(err, store.ErrNotFound):
			respondEphemeral(s, i, "❌ No such ticket.")
		case errors.Is(err, tickets.ErrAlreadyClosed):
			respondEphemeral(s, i, "❌ That ticket is already closed.")
		case err != nil:
			respondEphemeral(s, i, "❌ Could not close the ticket.")
		default:
			respondEphemeral(s, i, "🎫 Ticket closed.")
		}
	case "list":
		if !hasPermission(i, discordgo.PermissionKickMembers) {
			respondEphemeral(s, i, "❌ Mod only.")
			return
		}
		open, err := b.tickets.ListOpen(ctx)
		if err != nil {
			respondEphemeral(s, i, "❌ Could not list tickets.")
			return
		}
		if len(open) == 0 {
			respondEphemeral(s, i, "ℹ️ No open tickets.")
			return
		}
		var sb strings.Builder
		sb.WriteString("🎫 **Open tickets**\n")
		for _, t := range open {
			fmt.Fprintf(&sb, "`%s` <@%s>: %s\n", t.ID, t.UserID, t.Subject)
		}
		respondEphemeral(s, i, sb.String())
	}
}

func (b *Bot) handleWarn(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hasPermission(i, discordgo.PermissionKickMembers) {
		respondEphemeral(s, i, "❌ Mod only.")
		return
	}
	data := i.ApplicationCommandData()
	target := data.Options[0].UserValue(s)
	reason := ""
	if len(data.Options) > 1 {
		reason = data.Options[1].StringValue()
	}

	count, err := b.moderation.Warn(context.Background(), target.ID, reason)
	if err != nil {
		respondEphemeral(s, i, "❌ Could not warn the user.")
		return
	}
	respond(s, i, fmt.Sprintf("⚠️ <@%s> has been warned (%d total).", target.ID, count))
}

func (b *Bot) handleClearWarns(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hasPermission(i, discordgo.PermissionKickMembers) {
		respondEphemeral(s, i, "❌ Mod only.")
		return
	}
	target := i.ApplicationCommandData().Options[0].UserValue(s)
	if err := b.moderation.ClearWarns(context.Background(), target.ID); err != nil {
		respondEphemeral(s, i, "❌ Could not clear the warnings.")
		return
	}
	respond(s, i, fmt.Sprintf("✅ All warnings of <@%s> cleared.", target.ID))
}

func (b *Bot) handleUserInfo(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hasPermission(i, discordgo.PermissionKickMembers) {
		respondEphemeral(s, i, "❌ Mod only.")
		return
	}
	target := i.ApplicationCommandData().Options[0].UserValue(s)
	user, err := b.moderation.UserInfo(context.Background(), target.ID)
	if errors.Is(err, store.ErrNotFound) {
		respondEphemeral(s, i, "ℹ️ No stored profile for that user yet.")
		return
	}
	if err != nil {
		respondEphemeral(s, i, "❌ Could not load the profile.")
		return
	}

	notes := user.Notes
	if notes == "" {
		notes = "none"
	}
	respondEphemeral(s, i, fmt.Sprintf(
		"👤 **%s**\nCoins: %d\nWarnings: %d\nNotes:\n%s",
		user.Username, user.Coins, user.Warns, notes,
	))
}

func (b *Bot) handleUserInfoAdd(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hasPermission(i, discordgo.PermissionKickMembers) {
		respondEphemeral(s, i, "❌ Mod only.")
		return
	}
	data := i.ApplicationCommandData()
	target := data.Options[0].UserValue(s)
	note := data.Options[1].StringValue()

	if err := b.moderation.Note(context.Background(), target.ID, note); err != nil {
		respondEphemeral(s, i, "❌ Could not save the note.")
		return
	}
	respondEphemeral(s, i, "📝 Note saved.")
}

func (b *Bot) handleBan(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hasPermission(i, discordgo.PermissionBanMembers) {
		respondEphemeral(s, i, "❌ You need the Ban Members permission.")
		return
	}
	data := i.ApplicationCommandData()
	target := data.Options[0].UserValue(s)

	reason := ""
	var duration time.Duration
	for _, opt := range data.Options[1:] {
		switch opt.Name {
		case "reason":
			reason = opt.StringValue()
		case "duration":
			d, err := parseBanDuration(opt.StringValue())
			if err != nil {
				respondEphemeral(s, i, "❌ Invalid duration. Use forms like 30m, 2h or 7d.")
				return
			}
			duration = d
		}
	}

	if err := b.moderation.Ban(context.Background(), target.ID, reason, duration); err != nil {
		respondEphemeral(s, i, "❌ Could not record the ban.")
		return
	}
	if err := s.GuildBanCreateWithReason(i.GuildID, target.ID, reason, 0); err != nil {
		b.log.Error().Err(err).Str("user", target.ID).Msg("platform ban failed")
		respondEphemeral(s, i, "❌ The ban could not be applied.")
		return
	}
	if duration > 0 {
		respond(s, i, fmt.Sprintf("🔨 <@%s> banned for %s.", target.ID, duration))
		return
	}
	respond(s, i, fmt.Sprintf("🔨 <@%s> banned permanently.", target.ID))
}

// parseBanDuration accepts go durations plus a day suffix, e.g. "7d".
func parseBanDuration(val string) (time.Duration, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0, nil
	}
	if days, ok := strings.CutSuffix(val, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day count %q", days)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(val)
}
