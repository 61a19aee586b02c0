package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/abhisek/gameiq/internal/apperr"
	"github.com/abhisek/gameiq/internal/coach"
	"github.com/abhisek/gameiq/internal/ledger"
	"github.com/abhisek/gameiq/internal/quiz"
	"github.com/abhisek/gameiq/internal/store"
)

// defaultRecentUsage is how many usage records GET /usage returns unless
// ?recent= says otherwise.
const defaultRecentUsage = 10

// Handler serves the per-user quiz, usage and coaching routes.
type Handler struct {
	store   *store.Store
	manager *quiz.Manager
	scorer  *quiz.Scorer
	ledger  *ledger.Ledger
	coach   *coach.Coach
	log     zerolog.Logger
}

// NewHandler creates a Handler.
func NewHandler(s *store.Store, m *quiz.Manager, sc *quiz.Scorer, l *ledger.Ledger, c *coach.Coach, log zerolog.Logger) *Handler {
	return &Handler{
		store:   s,
		manager: m,
		scorer:  sc,
		ledger:  l,
		coach:   c,
		log:     log.With().Str("component", "api").Logger(),
	}
}

// Register mounts the routes under /api/v1.
func (h *Handler) Register(r gin.IRouter) {
	users := r.Group("/api/v1/users/:userID")
	{
		users.PUT("/tier", h.setTier)

		quizzes := users.Group("/quizzes")
		quizzes.GET("", h.listSessions)
		quizzes.POST("/core", h.coreQuiz)
		quizzes.POST("/generate", h.generateQuiz)
		quizzes.GET("/can-generate", h.canGenerate)
		quizzes.POST("/:sessionID/start", h.startAttempt)
		quizzes.POST("/:sessionID/attempts", h.submitAttempt)

		users.GET("/attempts/:attemptID", h.attemptDetail)
		users.GET("/usage", h.usage)
		users.POST("/coach", h.askCoach)
	}
}

func (h *Handler) setTier(c *gin.Context) {
	var req setTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tier, ok := store.ParseTier(req.Tier)
	if !ok {
		h.writeError(c, apperr.Validation("unknown tier %q", req.Tier))
		return
	}

	userID := c.Param("userID")
	ctx := c.Request.Context()
	if err := h.store.UpsertUser(ctx, store.User{ID: userID, DisplayName: req.DisplayName, Tier: tier}); err != nil {
		h.writeError(c, err)
		return
	}
	u, err := h.store.GetUser(ctx, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(h, c, http.StatusOK, u, toUser)
}

func (h *Handler) coreQuiz(c *gin.Context) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.manager.CreateOrGetCoreQuiz(c.Request.Context(), c.Param("userID"), req.Sport, req.Position)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(h, c, http.StatusOK, sess, toSession)
}

func (h *Handler) generateQuiz(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.manager.GenerateNewQuiz(c.Request.Context(), c.Param("userID"), req.Sport, req.Position,
		quiz.GenerateOptions{UseAI: req.UseAI})
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(h, c, http.StatusCreated, sess, toSession)
}

func (h *Handler) listSessions(c *gin.Context) {
	f := quiz.SessionFilter{Sport: c.Query("sport"), Position: c.Query("position")}
	if v := c.Query("minScore"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 100 {
			h.writeError(c, apperr.Validation("minScore must be an integer between 0 and 100"))
			return
		}
		f.MinScore = &n
	}

	summaries, err := h.manager.GetSessions(c.Request.Context(), c.Param("userID"), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	out, err := toSummaries(summaries)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

func (h *Handler) canGenerate(c *gin.Context) {
	sport, position := c.Query("sport"), c.Query("position")
	if sport == "" || position == "" {
		h.writeError(c, apperr.Validation("sport and position are required"))
		return
	}
	p, err := h.manager.Progress(c.Request.Context(), c.Param("userID"), sport, position)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, canGenerateResponse{CanGenerate: p.CanGenerate, Progress: p, Message: p.String()})
}

func (h *Handler) startAttempt(c *gin.Context) {
	st, err := h.scorer.StartAttempt(c.Request.Context(), c.Param("userID"), c.Param("sessionID"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(h, c, http.StatusOK, st, toStart)
}

func (h *Handler) submitAttempt(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	a, err := h.scorer.SubmitAttempt(c.Request.Context(), c.Param("userID"), c.Param("sessionID"), req.submission())
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(h, c, http.StatusCreated, a, toAttempt)
}

func (h *Handler) attemptDetail(c *gin.Context) {
	d, err := h.scorer.GetAttemptDetail(c.Request.Context(), c.Param("userID"), c.Param("attemptID"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond(h, c, http.StatusOK, d, toAttemptDetail)
}

func (h *Handler) usage(c *gin.Context) {
	recent := defaultRecentUsage
	if v := c.Query("recent"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(c, apperr.Validation("recent must be a non-negative integer"))
			return
		}
		recent = n
	}
	s, err := h.ledger.Summary(c.Request.Context(), c.Param("userID"), recent)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) askCoach(c *gin.Context) {
	var req coachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	reply, err := h.coach.Ask(c.Request.Context(), c.Param("userID"), req.Sport, req.Position, req.Message)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// respond converts v with conv and writes it, or a 500 if conversion fails.
func respond[T, R any](h *Handler, c *gin.Context, status int, v T, conv func(T) (R, error)) {
	out, err := conv(v)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(status, out)
}
