package bot

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/maxx-dev16/Maxx-OS/config"
	"github.com/maxx-dev16/Maxx-OS/economy"
	"github.com/maxx-dev16/Maxx-OS/moderation"
	"github.com/maxx-dev16/Maxx-OS/music"
	"github.com/maxx-dev16/Maxx-OS/store"
	"github.com/maxx-dev16/Maxx-OS/temptalk"
	"github.com/maxx-dev16/Maxx-OS/tickets"
)

const statsInterval = 5 * time.Second

// Bot wires the discord session to the temp room manager, the music player
// and the store-backed services. One Bot serves one guild.
type Bot struct {
	session *discordgo.Session
	cfg     config.Config
	log     zerolog.Logger
	store   store.Store

	rooms      *temptalk.Manager
	players    *music.Registry
	library    *music.Library
	economy    *economy.Service
	moderation *moderation.Service
	tickets    *tickets.Service
	ads        *Advertiser

	mu             sync.Mutex
	registeredCmds map[string][]*discordgo.ApplicationCommand // guildID -> commands

	startedAt time.Time
	statsStop chan struct{}
}

func NewBot(cfg config.Config, st store.Store, log zerolog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	bot := &Bot{
		session:        dg,
		cfg:            cfg,
		log:            log,
		store:          st,
		players:        music.NewRegistry(nil),
		library:        music.NewLibrary(cfg.MusicDir),
		economy:        economy.New(st, log),
		moderation:     moderation.New(st, log),
		tickets:        tickets.New(st, log),
		registeredCmds: make(map[string][]*discordgo.ApplicationCommand),
		statsStop:      make(chan struct{}),
	}
	bot.rooms = temptalk.NewManager(newDiscordPlatform(dg, cfg), log, temptalk.Options{
		TriggerChannelID: cfg.TriggerChannelID,
		ReclaimDelay:     cfg.ReclaimDelay,
	})
	bot.ads = NewAdvertiser(dg, st, log)

	// Ready handler registers commands and syncs guild metadata for the
	// panel. Ready fires again on every gateway reconnect, so command
	// registration is claimed once per guild; metadata sync is a replace
	// and safe to repeat.
	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().
			Str("username", s.State.User.Username).
			Int("guilds", len(r.Guilds)).
			Msg("logged in")
		for _, guild := range r.Guilds {
			if bot.claimCommandRegistration(guild.ID) {
				bot.registerCommands(s, guild.ID)
			}
			bot.syncGuildMeta(s, guild.ID)
		}
	})

	dg.AddHandler(func(s *discordgo.Session, vsu *discordgo.VoiceStateUpdate) {
		bot.voiceStateUpdate(s, vsu)
	})

	dg.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		bot.interactionCreate(s, i)
	})

	dg.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		bot.messageCreate(s, m)
	})

	dg.AddHandler(func(s *discordgo.Session, gma *discordgo.GuildMemberAdd) {
		bot.guildMemberAdd(s, gma)
	})

	return bot, nil
}

func (b *Bot) Start() error {
	b.startedAt = time.Now()
	if err := b.session.Open(); err != nil {
		return err
	}
	go b.statsLoop(b.session)
	return nil
}

// claimCommandRegistration reports whether this guild still needs its
// commands created and reserves the slot, so reconnects do not register a
// second set.
func (b *Bot) claimCommandRegistration(guildID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.registeredCmds[guildID]; ok {
		return false
	}
	b.registeredCmds[guildID] = nil
	return true
}

func (b *Bot) Stop() {
	close(b.statsStop)
	b.ads.Stop()

	// Unregister all commands from all guilds
	b.mu.Lock()
	registered := b.registeredCmds
	b.registeredCmds = make(map[string][]*discordgo.ApplicationCommand)
	b.mu.Unlock()
	for guildID, commands := range registered {
		for _, cmd := range commands {
			err := b.session.ApplicationCommandDelete(b.session.State.User.ID, guildID, cmd.ID)
			if err != nil {
				b.log.Warn().Err(err).
					Str("command", cmd.Name).
					Str("guild", guildID).
					Msg("failed to delete command")
			}
		}
	}

	b.session.Close()
}

func (b *Bot) voiceStateUpdate(s *discordgo.Session, vsu *discordgo.VoiceStateUpdate) {
	member := vsu.Member
	if member == nil {
		var err error
		member, err = s.GuildMember(vsu.GuildID, vsu.UserID)
		if err != nil {
			b.log.Warn().Err(err).Str("user", vsu.UserID).Msg("failed to fetch member")
			return
		}
	}
	if member.User.Bot {
		return
	}

	displayName := member.User.Username
	if member.Nick != "" {
		displayName = member.Nick
	}

	oldChannelID := ""
	if vsu.BeforeUpdate != nil {
		oldChannelID = vsu.BeforeUpdate.ChannelID
	}

	b.rooms.HandleVoiceEvent(temptalk.VoiceEvent{
		UserID:       vsu.UserID,
		DisplayName:  displayName,
		OldChannelID: oldChannelID,
		NewChannelID: vsu.ChannelID,
	})

	// Joining any voice channel counts toward voice quests; joining the
	// trigger channel spawns a room and counts toward temp room quests.
	if vsu.ChannelID != "" && oldChannelID == "" {
		b.trackQuest(vsu.UserID, "voice", 1)
	}
	if vsu.ChannelID == b.cfg.TriggerChannelID && oldChannelID != b.cfg.TriggerChannelID {
		b.trackQuest(vsu.UserID, "temproom", 1)
	}
}

func (b *Bot) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	ctx := context.Background()
	if err := b.store.UpsertUser(ctx, m.Author.ID, m.Author.Username, m.Author.Avatar); err != nil {
		b.log.Warn().Err(err).Str("user", m.Author.ID).Msg("failed to upsert user")
	}
	b.trackQuest(m.Author.ID, "message", 1)
}

func (b *Bot) trackQuest(userID, kind string, n int) {
	completed, err := b.economy.Track(context.Background(), userID, kind, n)
	if err != nil {
		b.log.Warn().Err(err).Str("user", userID).Str("kind", kind).Msg("quest tracking failed")
		return
	}
	for _, q := range completed {
		b.sendDM(userID, "🎉 Quest completed: **"+q.Title+"** (+"+strconv.FormatInt(q.Reward, 10)+" coins)")
	}
}

func (b *Bot) guildMemberAdd(s *discordgo.Session, gma *discordgo.GuildMemberAdd) {
	if gma.User.Bot {
		return
	}
	enabled, err := b.store.GetSetting(context.Background(), "greeting_enabled")
	if err != nil || enabled != "1" {
		return
	}
	guild, err := s.State.Guild(gma.GuildID)
	if err != nil || guild.SystemChannelID == "" {
		return
	}
	_, err = s.ChannelMessageSend(guild.SystemChannelID,
		"👋 Welcome <@"+gma.User.ID+">! Make yourself at home.")
	if err != nil {
		b.log.Warn().Err(err).Str("user", gma.User.ID).Msg("failed to send greeting")
	}
}

func (b *Bot) sendDM(userID, content string) {
	ch, err := b.session.UserChannelCreate(userID)
	if err != nil {
		return
	}
	b.session.ChannelMessageSend(ch.ID, content)
}

// syncGuildMeta mirrors the guild's channels and roles into the store so the
// web panel can list them without holding a discord session.
func (b *Bot) syncGuildMeta(s *discordgo.Session, guildID string) {
	ctx := context.Background()

	channels, err := s.GuildChannels(guildID)
	if err != nil {
		b.log.Warn().Err(err).Str("guild", guildID).Msg("failed to fetch channels")
	} else {
		stored := make([]store.Channel, 0, len(channels))
		for _, ch := range channels {
			if ch.Type != discordgo.ChannelTypeGuildText && ch.Type != discordgo.ChannelTypeGuildVoice {
				continue
			}
			stored = append(stored, store.Channel{ID: ch.ID, Name: ch.Name})
		}
		if err := b.store.ReplaceChannels(ctx, stored); err != nil {
			b.log.Warn().Err(err).Msg("failed to store channels")
		}
	}

	roles, err := s.GuildRoles(guildID)
	if err != nil {
		b.log.Warn().Err(err).Str("guild", guildID).Msg("failed to fetch roles")
		return
	}
	stored := make([]store.Role, 0, len(roles))
	for _, r := range roles {
		if r.Managed || r.Name == "@everyone" {
			continue
		}
		stored = append(stored, store.Role{ID: r.ID, Name: r.Name})
	}
	if err := b.store.ReplaceRoles(ctx, stored); err != nil {
		b.log.Warn().Err(err).Msg("failed to store roles")
	}
}

func (b *Bot) statsLoop(s *discordgo.Session) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-b.statsStop:
			return
		case <-ticker.C:
			b.recordStats(s)
		}
	}
}

func (b *Bot) recordStats(s *discordgo.Session) {
	ctx := context.Background()
	guild, err := s.State.Guild(b.cfg.GuildID)
	if err != nil {
		return
	}
	_, warns, err := b.store.Totals(ctx)
	if err != nil {
		b.log.Warn().Err(err).Msg("failed to read user totals")
		return
	}
	if err := b.store.RecordStats(ctx, &store.Stats{
		TotalUsers:    guild.MemberCount,
		TotalWarnings: warns,
		UptimeSeconds: int64(time.Since(b.startedAt).Seconds()),
		BotStatus:     "online",
	}); err != nil {
		b.log.Warn().Err(err).Msg("failed to record stats")
	}
}

// Announce posts a panel-initiated announcement, optionally pinging a role
// and attaching a self-assign button for it.
func (b *Bot) Announce(channelID, roleID, message, buttonText string) error {
	content := message
	if roleID != "" {
		content = "<@&" + roleID + "> " + message
	}

	send := &discordgo.MessageSend{Content: content}
	if roleID != "" && buttonText != "" {
		send.Components = []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    buttonText,
						Style:    discordgo.PrimaryButton,
						CustomID: "get_role:" + roleID,
					},
				},
			},
		}
	}
	_, err := b.session.ChannelMessageSendComplex(channelID, send)
	return err
}
