package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tazhibayda/tasks-service/internal/domain"
	"github.com/tazhibayda/tasks-service/internal/log"
	"github.com/tazhibayda/tasks-service/internal/oauth"
	"github.com/tazhibayda/tasks-service/internal/queue"
	"github.com/tazhibayda/tasks-service/internal/repo"
	"github.com/tazhibayda/tasks-service/internal/security"
)

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(sessionCookie, token, int(h.SessionTTL.Seconds()), "/", "", false, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
}

// sessionUser resolves the principal without aborting; used by the page
// gate where a missing session means redirect, not 401.
func (h *Handler) sessionUser(c *gin.Context) *domain.User {
	tok := sessionToken(c)
	if tok == "" {
		return nil
	}
	claims, err := security.ParseSession(h.JWTSecret, tok)
	if err != nil {
		return nil
	}
	u, err := h.Users.FindByEmail(c.Request.Context(), claims.Email)
	if err != nil || u == nil {
		return nil
	}
	return u
}

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register godoc
// @Summary Register a local account
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerReq true "register"
// @Success 201
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var in registerReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !strings.Contains(email, "@") || len(in.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email or weak password"})
		return
	}
	hash, err := security.HashPassword(in.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	u := &domain.User{Email: email, PasswordHash: hash, Name: strings.TrimSpace(in.Name), Provider: "local"}
	if err := h.Users.Create(c.Request.Context(), u); err != nil {
		if err == repo.ErrEmailExists {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		log.Errorf("register: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	_ = h.Events.Publish(c.Request.Context(), queue.Exchange, "user.registered",
		queue.UserRegistered{UserID: u.ID, Email: u.Email, Name: u.Name},
		c.GetString("X-Request-ID"))

	c.Status(http.StatusCreated)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login godoc
// @Summary Login with a local account
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginReq true "login"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	u, err := h.Users.FindByEmail(c.Request.Context(), email)
	if err != nil || u == nil || !security.CheckPassword(u.PasswordHash, in.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	tok, err := security.MakeSession(h.JWTSecret, u.ID.Hex(), u.Email, h.SessionTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	h.setSessionCookie(c, tok)
	c.JSON(http.StatusOK, gin.H{"access": tok})
}

// Logout godoc
// @Summary Logout
// @Tags auth
// @Success 204
// @Router /api/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	h.clearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Security SessionCookie
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Router /api/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	au := currentUser(c)
	u, err := h.Users.FindByEmail(c.Request.Context(), au.Email)
	if err != nil || u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id": u.ID, "email": u.Email, "name": u.Name, "createdAt": u.CreatedAt,
	})
}

// GoogleLogin redirects the browser to Google's consent screen with an
// HMAC-signed state.
func (h *Handler) GoogleLogin(c *gin.Context) {
	if !h.Google.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google oauth not configured"})
		return
	}
	state := h.Google.MakeState(oauth.NewStateNonce())
	c.Redirect(http.StatusFound, h.Google.AuthURL(state))
}

// GoogleCallback finishes the OAuth flow: verify state, exchange the
// code, create the user record on first sign-in, set the session cookie.
func (h *Handler) GoogleCallback(c *gin.Context) {
	if !h.Google.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google oauth not configured"})
		return
	}
	if !h.Google.VerifyState(c.Query("state")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad state"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}
	gu, err := h.Google.ExchangeAndVerify(c.Request.Context(), code, h.Google.ClientID())
	if err != nil {
		log.Errorf("google callback: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	u, err := h.Users.UpsertGoogle(c.Request.Context(), gu.Email, gu.Name, gu.Sub)
	if err != nil {
		log.Errorf("google callback: upsert user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	tok, err := security.MakeSession(h.JWTSecret, u.ID.Hex(), u.Email, h.SessionTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	h.setSessionCookie(c, tok)
	c.Redirect(http.StatusFound, "/")
}

// Index is the application root; the UI itself is a separate client, the
// server only enforces the gate: no session → login page.
func (h *Handler) Index(c *gin.Context) {
	if h.sessionUser(c) == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, "<!doctype html><title>Tasks</title><p>Tasks API. See /docs.</p>")
}

// LoginPage mirrors the gate: an authenticated caller has no business here.
func (h *Handler) LoginPage(c *gin.Context) {
	if h.sessionUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, `<!doctype html><title>Login</title><p><a href="/api/auth/google/login">Sign in with Google</a></p>`)
}
