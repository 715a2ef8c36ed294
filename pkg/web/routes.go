package web

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/gin-gonic/gin"
)

// BotStatus is the gateway state shown by the status routes.
type BotStatus struct {
	Online   bool
	ID       string
	Username string
	Avatar   string
	Guilds   int
	Latency  time.Duration
}

// StatusSource reports the health of the bot and its database.
type StatusSource interface {
	DatabaseStatus(ctx context.Context) (string, bool)
	BotStatus() BotStatus
}

// AntiNukeReader is the read side of the anti-nuke engine.
type AntiNukeReader interface {
	Policy(ctx context.Context, guildID string) (*models.GuildPolicy, error)
	Counters(ctx context.Context, guildID, actorID string) ([]models.ActionCounter, error)
	History(ctx context.Context, q models.ViolationQuery) ([]models.ViolationLogEntry, error)
}

// Dependencies are the services the routes read from. Metrics may be nil.
type Dependencies struct {
	Status   StatusSource
	AntiNuke AntiNukeReader
	Metrics  http.Handler
}

const maxHistoryLimit = 100

var snowflakeRegex = regexp.MustCompile(`^\d{17,20}$`)

// SetupAPIRoutes registers every route.
func SetupAPIRoutes(s *Server, deps Dependencies) {
	h := &handlers{deps: deps}

	api := s.Group("/api")
	{
		api.GET("/health", h.health)
		api.GET("/status", h.status)
		api.GET("/bot", h.botInfo)
	}

	guilds := api.Group("/guilds/:guildId", s.apiKeyMiddleware(), validGuildID())
	{
		guilds.GET("/antinuke", h.policy)
		guilds.GET("/antinuke/violations", h.violations)
		guilds.GET("/antinuke/counters/:actorId", h.counters)
	}

	if deps.Metrics != nil {
		s.GET("/metrics", gin.WrapH(deps.Metrics))
	}
}

type handlers struct {
	deps Dependencies
}

func validGuildID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !snowflakeRegex.MatchString(c.Param("guildId")) {
			badRequest(c, "guildId inválido.")
			return
		}
		c.Next()
	}
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":   "Bad Request",
		"message": message,
	})
}

func internalError(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal Server Error",
		"message": "No se pudo consultar la base de datos.",
	})
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "PancyGuard Go is running",
	})
}

func (h *handlers) status(c *gin.Context) {
	dbStatus, dbOnline := h.deps.Status.DatabaseStatus(c.Request.Context())
	bot := h.deps.Status.BotStatus()

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"database": gin.H{
			"status":   dbStatus,
			"isOnline": dbOnline,
		},
		"bot": gin.H{
			"isOnline":  bot.Online,
			"latencyMs": bot.Latency.Milliseconds(),
		},
	})
}

func (h *handlers) botInfo(c *gin.Context) {
	bot := h.deps.Status.BotStatus()
	if !bot.Online {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Bot Offline",
			"message": "El bot no está disponible en este momento.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       bot.ID,
		"username": bot.Username,
		"avatar":   bot.Avatar,
		"guilds":   bot.Guilds,
		"isReady":  bot.Online,
	})
}

func (h *handlers) policy(c *gin.Context) {
	p, err := h.deps.AntiNuke.Policy(c.Request.Context(), c.Param("guildId"))
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, p)
}

// parseHistoryQuery reads the violation filters from the query string.
func parseHistoryQuery(c *gin.Context) (models.ViolationQuery, error) {
	q := models.ViolationQuery{
		GuildID: c.Param("guildId"),
		ActorID: c.Query("actorId"),
		Limit:   20,
	}

	if raw := c.Query("action"); raw != "" {
		kind, err := models.ParseActionKind(raw)
		if err != nil {
			return q, err
		}
		q.ActionKind = kind
	}

	switch t := models.EntryType(c.Query("type")); t {
	case "":
	case models.EntryAction, models.EntryPunishment:
		q.Type = t
	default:
		return q, errors.New("type debe ser action o punishment")
	}

	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			return q, errors.New("limit debe estar entre 1 y 100")
		}
		q.Limit = n
	}

	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return q, errors.New("since debe ser RFC3339")
		}
		q.Since = since
	}
	return q, nil
}

func (h *handlers) violations(c *gin.Context) {
	q, err := parseHistoryQuery(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	entries, err := h.deps.AntiNuke.History(c.Request.Context(), q)
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"guildId":    q.GuildID,
		"count":      len(entries),
		"violations": entries,
	})
}

func (h *handlers) counters(c *gin.Context) {
	actorID := c.Param("actorId")
	if !snowflakeRegex.MatchString(actorID) {
		badRequest(c, "actorId inválido.")
		return
	}

	counters, err := h.deps.AntiNuke.Counters(c.Request.Context(), c.Param("guildId"), actorID)
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"guildId":  c.Param("guildId"),
		"actorId":  actorID,
		"counters": counters,
	})
}
