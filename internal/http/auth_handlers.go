package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/Saatvik786/TaskSphere/internal/auth"
	"github.com/Saatvik786/TaskSphere/internal/domain"
	"github.com/Saatvik786/TaskSphere/internal/helper"
	"github.com/Saatvik786/TaskSphere/internal/log"
	"github.com/Saatvik786/TaskSphere/internal/metrics"
	"github.com/Saatvik786/TaskSphere/internal/queue"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResp struct {
	Token string         `json:"token"`
	User  domain.Profile `json:"user"`
}

type userResp struct {
	User domain.Profile `json:"user"`
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrMissingFields):
		return "missing_fields"
	case errors.Is(err, domain.ErrDuplicateAccount):
		return "duplicate"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrUseExternalLogin):
		return "external_only"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrProviderAssertionInvalid):
		return "invalid_profile"
	default:
		return "error"
	}
}

// Register godoc
// @Summary Register with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerReq true "name, email, password"
// @Success 201 {object} authResp
// @Failure 400 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Router /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var in registerReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	res, err := h.Auth.Register(c.Request.Context(), in.Name, in.Email, in.Password)
	metrics.AuthOutcomes.WithLabelValues("register", outcome(err)).Inc()
	if err != nil {
		h.fail(c, err, "Please provide name, email, and password")
		return
	}

	log.WithDD(c.Request.Context(), h.log()).Info("user registered",
		zap.String("uid", res.User.ID), zap.String("email_hash", helper.Hash8(res.User.Email)))
	h.publish(c, queue.KeyUserRegistered,
		queue.UserRegistered{UserID: res.User.ID, Email: res.User.Email, Name: res.User.Name})

	c.JSON(http.StatusCreated, authResp{Token: res.Token, User: res.User})
}

// Login godoc
// @Summary Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginReq true "email, password"
// @Success 200 {object} authResp
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	res, err := h.Auth.Login(c.Request.Context(), in.Email, in.Password)
	metrics.AuthOutcomes.WithLabelValues("login", outcome(err)).Inc()
	if err != nil {
		h.fail(c, err, "Please provide email and password")
		return
	}

	h.publish(c, queue.KeyUserLoggedIn, queue.UserLoggedIn{UserID: res.User.ID, Provider: domain.ProviderLocal})
	c.JSON(http.StatusOK, authResp{Token: res.Token, User: res.User})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} userResp
// @Failure 401 {object} map[string]string
// @Router /api/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	p, err := h.Auth.Me(c.Request.Context(), c.GetString(uidKey))
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authorized, user no longer exists"})
		return
	}
	if err != nil {
		h.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, userResp{User: p})
}

const stateCookie = "oauth_state"

// GoogleStart godoc
// @Summary Start Google sign-in
// @Tags auth
// @Success 302
// @Failure 500 {object} map[string]string
// @Router /api/auth/google [get]
func (h *Handler) GoogleStart(c *gin.Context) {
	if h.Google == nil || h.State == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google OAuth is not configured. Please contact support."})
		return
	}
	state, err := h.State.New()
	if err != nil {
		h.fail(c, err, "")
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, int(h.State.MaxAge().Seconds()), "/api/auth/google", "", h.SecureCookies, true)
	c.Redirect(http.StatusFound, h.Google.AuthURL(state))
}

// GoogleCallback godoc
// @Summary Google sign-in callback
// @Description Always redirects to the client: /auth/callback?token=... on success, /login?error=<tag> otherwise.
// @Tags auth
// @Param code query string false "authorization code"
// @Param state query string false "state issued by /api/auth/google"
// @Success 302
// @Router /api/auth/google/callback [get]
func (h *Handler) GoogleCallback(c *gin.Context) {
	ctx := c.Request.Context()
	fail := func(tag string, err error) {
		metrics.AuthOutcomes.WithLabelValues("google", tag).Inc()
		l := log.WithDD(ctx, h.log(), zap.String("tag", tag), zap.String("request_id", c.GetString(requestIDKey)))
		if err != nil {
			l = l.With(zap.Error(err))
		}
		l.Warn("google sign-in failed")
		c.Redirect(http.StatusFound, h.clientURL("/login?error="+tag))
	}

	if h.Google == nil || h.State == nil {
		fail("oauth_unconfigured", nil)
		return
	}

	cookie, cookieErr := c.Cookie(stateCookie)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, "", -1, "/api/auth/google", "", h.SecureCookies, true)

	if e := c.Query("error"); e != "" {
		fail("access_denied", errors.New(e))
		return
	}
	state := c.Query("state")
	if state == "" || cookieErr != nil || cookie != state {
		fail("invalid_state", nil)
		return
	}
	if err := h.State.Verify(state); err != nil {
		fail("invalid_state", err)
		return
	}
	code := c.Query("code")
	if code == "" {
		fail("auth_failed", errors.New("no code"))
		return
	}

	id, err := h.Google.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrProviderAssertionInvalid) {
			fail("invalid_profile", err)
			return
		}
		fail("auth_failed", err)
		return
	}
	res, err := h.Auth.ExternalCallback(ctx, *id)
	if err != nil {
		if errors.Is(err, domain.ErrProviderAssertionInvalid) {
			fail("invalid_profile", err)
			return
		}
		fail("auth_failed", err)
		return
	}

	metrics.AuthOutcomes.WithLabelValues("google", string(res.Outcome)).Inc()
	switch res.Outcome {
	case auth.OutcomeCreated:
		h.publish(c, queue.KeyUserRegistered,
			queue.UserRegistered{UserID: res.User.ID, Email: res.User.Email, Name: res.User.Name})
	case auth.OutcomeLinked:
		h.publish(c, queue.KeyUserLinked,
			queue.UserLinked{UserID: res.User.ID, Email: res.User.Email, Name: res.User.Name, Provider: id.Provider})
	}
	h.publish(c, queue.KeyUserLoggedIn, queue.UserLoggedIn{UserID: res.User.ID, Provider: id.Provider})

	c.Redirect(http.StatusFound, h.clientURL("/auth/callback?token="+url.QueryEscape(res.Token)))
}

func (h *Handler) clientURL(path string) string {
	return strings.TrimRight(h.ClientURL, "/") + path
}
