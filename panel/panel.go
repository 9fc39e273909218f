// Package panel serves the web admin panel: thin JSON CRUD over the same
// database the bot writes, plus a send-message bridge into the bot.
package panel

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/maxx-dev16/Maxx-OS/store"
)

// Announcer posts a panel-composed message through the bot.
type Announcer interface {
	Announce(channelID, roleID, message, buttonText string) error
}

// Handlers carries the panel's dependencies.
type Handlers struct {
	store     store.Store
	announcer Announcer
	log       zerolog.Logger
}

func NewHandlers(st store.Store, announcer Announcer, logger zerolog.Logger) *Handlers {
	return &Handlers{store: st, announcer: announcer, log: logger}
}

// NewRouter builds the gin engine with all panel routes.
func NewRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), cors())

	r.GET("/", func(c *gin.Context) {
		c.File("public/panel.html")
	})

	api := r.Group("/api")
	{
		api.POST("/greeting-toggle", h.GreetingToggle)
		api.GET("/greeting-status", h.GreetingStatus)

		mod := api.Group("/mod")
		{
			mod.GET("/users", h.ModUsers)
			mod.GET("/user/:userId", h.ModUser)
			mod.POST("/warn", h.ModWarn)
			mod.POST("/remove-warn", h.ModRemoveWarn)
			mod.GET("/logs", h.ModLogs)
		}

		admin := api.Group("/admin")
		{
			admin.GET("/statistics", h.AdminStatistics)
			admin.GET("/channels", h.AdminChannels)
			admin.GET("/roles", h.AdminRoles)
			admin.POST("/send-message", h.AdminSendMessage)
			admin.GET("/logs", h.AdminLogs)
		}
	}

	return r
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, envelope{Success: false, Error: err.Error()})
}

// GreetingToggle flips the greeting_enabled setting.
// POST /api/greeting-toggle
func (h *Handlers) GreetingToggle(c *gin.Context) {
	ctx := c.Request.Context()
	current, err := h.store.GetSetting(ctx, "greeting_enabled")
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.log.Error().Err(err).Msg("read greeting setting")
		fail(c, http.StatusInternalServerError, err)
		return
	}
	next := "1"
	if current == "1" {
		next = "0"
	}
	if err := h.store.SetSetting(ctx, "greeting_enabled", next); err != nil {
		h.log.Error().Err(err).Msg("write greeting setting")
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, gin.H{"message": "Greeting toggled", "enabled": next == "1"})
}

// GreetingStatus reports the greeting_enabled setting.
// GET /api/greeting-status
func (h *Handlers) GreetingStatus(c *gin.Context) {
	value, err := h.store.GetSetting(c.Request.Context(), "greeting_enabled")
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	enabled := 0
	if value == "1" {
		enabled = 1
	}
	ok(c, gin.H{"enabled": enabled})
}

type userSummary struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Warns    int    `json:"warns"`
}

// ModUsers lists users for the moderation tab.
// GET /api/mod/users
func (h *Handlers) ModUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context(), 50)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	out := make([]userSummary, 0, len(users))
	for _, u := range users {
		out = append(out, userSummary{UserID: u.ID, Username: u.Username, Avatar: u.Avatar, Warns: u.Warns})
	}
	ok(c, out)
}

// ModUser returns one user's full record.
// GET /api/mod/user/:userId
func (h *Handlers) ModUser(c *gin.Context) {
	user, err := h.store.GetUser(c.Request.Context(), c.Param("userId"))
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, errors.New("user not found"))
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, gin.H{
		"user_id":    user.ID,
		"username":   user.Username,
		"avatar":     user.Avatar,
		"coins":      user.Coins,
		"warns":      user.Warns,
		"notes":      user.Notes,
		"created_at": user.CreatedAt,
	})
}

type warnRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Reason string `json:"reason"`
}

// ModWarn adds a warning to a user.
// POST /api/mod/warn
func (h *Handlers) ModWarn(c *gin.Context) {
	var req warnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	ctx := c.Request.Context()
	if _, err := h.store.AdjustWarns(ctx, req.UserID, 1); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	reason := req.Reason
	if reason == "" {
		reason = "no reason given"
	}
	if err := h.store.AddModLog(ctx, req.UserID, "WARN", reason); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, gin.H{"message": "Warning added"})
}

// ModRemoveWarn removes a warning from a user.
// POST /api/mod/remove-warn
func (h *Handlers) ModRemoveWarn(c *gin.Context) {
	var req warnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	ctx := c.Request.Context()
	if _, err := h.store.AdjustWarns(ctx, req.UserID, -1); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if err := h.store.AddModLog(ctx, req.UserID, "WARN_REMOVED", "warning removed"); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, gin.H{"message": "Warning removed"})
}

// ModLogs lists recent moderation actions.
// GET /api/mod/logs
func (h *Handlers) ModLogs(c *gin.Context) {
	logs, err := h.store.ListModLogs(c.Request.Context(), 50)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, logs)
}

// AdminStatistics returns the latest bot status snapshot.
// GET /api/admin/statistics
func (h *Handlers) AdminStatistics(c *gin.Context) {
	stats, err := h.store.LatestStats(c.Request.Context())
	if errors.Is(err, store.ErrNotFound) {
		ok(c, gin.H{
			"totalUsers":     0,
			"warnsToday":     0,
			"uptime":         0,
			"guildAvailable": false,
		})
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, gin.H{
		"totalUsers":     stats.TotalUsers,
		"warnsToday":     stats.TotalWarnings,
		"uptime":         stats.UptimeSeconds,
		"guildAvailable": true,
	})
}

// AdminChannels lists the mirrored guild channels.
// GET /api/admin/channels
func (h *Handlers) AdminChannels(c *gin.Context) {
	channels, err := h.store.ListChannels(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	type entry struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	out := make([]entry, 0, len(channels))
	for _, ch := range channels {
		out = append(out, entry{ID: ch.ID, Name: ch.Name})
	}
	ok(c, out)
}

// AdminRoles lists the mirrored guild roles.
// GET /api/admin/roles
func (h *Handlers) AdminRoles(c *gin.Context) {
	roles, err := h.store.ListRoles(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	type entry struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	out := make([]entry, 0, len(roles))
	for _, r := range roles {
		out = append(out, entry{ID: r.ID, Name: r.Name})
	}
	ok(c, out)
}

type sendMessageRequest struct {
	ChannelID  string `json:"channel_id" binding:"required"`
	RoleID     string `json:"role_id"`
	Message    string `json:"message" binding:"required"`
	ButtonText string `json:"button_text"`
}

// AdminSendMessage posts a message through the bot and logs it.
// POST /api/admin/send-message
func (h *Handlers) AdminSendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if h.announcer == nil {
		fail(c, http.StatusBadRequest, errors.New("bot not connected"))
		return
	}
	if err := h.announcer.Announce(req.ChannelID, req.RoleID, req.Message, req.ButtonText); err != nil {
		h.log.Error().Err(err).Str("channel", req.ChannelID).Msg("panel send message")
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if err := h.store.AddAdminLog(c.Request.Context(), &store.AdminLog{
		Action:    "SEND_MESSAGE",
		ChannelID: req.ChannelID,
		Message:   req.Message,
		RoleID:    req.RoleID,
	}); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, gin.H{"message": "Message sent"})
}

// AdminLogs lists recent panel actions.
// GET /api/admin/logs
func (h *Handlers) AdminLogs(c *gin.Context) {
	logs, err := h.store.ListAdminLogs(c.Request.Context(), 50)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, logs)
}
