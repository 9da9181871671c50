package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/printstudio/internal/content"
	"github.com/printstudio/internal/logger"
	"github.com/printstudio/internal/service"
)

const (
	sessionAuthenticated = "admin_authenticated"
	sessionEditorID      = "editor_id"
	contextEditorID      = "__editor_id"
)

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	if isAuthenticated(c) {
		c.Redirect(http.StatusFound, safeNext(c.Query("next")))
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{
		"title": "Admin login",
		"next":  c.Query("next"),
	})
}

// Login checks the admin password and starts an editing session with a
// fresh editor id.
func (a *API) Login(c *gin.Context) {
	next := c.PostForm("next")
	if err := a.auth.Verify(c.Request.Context(), c.PostForm("password")); err != nil {
		status := http.StatusUnauthorized
		message := "Wrong password"
		if !errors.Is(err, service.ErrInvalidPassword) {
			logger.Errorf("[auth] verify password: %v", err)
			status = http.StatusInternalServerError
			message = "Login is unavailable, try again later"
		}
		c.HTML(status, "login.html", gin.H{"title": "Admin login", "error": message, "next": next})
		return
	}

	// 设置会话
	session := sessions.Default(c)
	session.Set(sessionAuthenticated, true)
	session.Set(sessionEditorID, uuid.NewString())
	if err := session.Save(); err != nil {
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{"title": "Admin login", "error": "Could not save the session", "next": next})
		return
	}

	c.Redirect(http.StatusFound, safeNext(next))
}

// Logout 处理用户登出
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/admin/login")
}

type dashboardPage struct {
	Key   string
	URL   string
	Draft bool
}

// ShowDashboard lists the editable pages.
func (a *API) ShowDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	editor := EditorID(c)

	pages := make([]dashboardPage, 0, len(content.PageKeys()))
	for _, key := range content.PageKeys() {
		page := dashboardPage{Key: key, URL: PagePath(key)}
		if resolved, err := a.drafts.Resolve(ctx, editor, key); err == nil {
			page.Draft = resolved.PageDraft
		}
		pages = append(pages, page)
	}

	state, err := a.auth.PasswordState(ctx)
	if err != nil {
		logger.Warnf("[auth] password state: %v", err)
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"title":         "Dashboard",
		"pages":         pages,
		"passwordState": state,
	})
}

type passwordPayload struct {
	Current string `json:"current"`
	New     string `json:"new"`
}

// ChangePassword replaces the admin password after checking the current one.
func (a *API) ChangePassword(c *gin.Context) {
	var payload passwordPayload
	if !bindJSON(c, &payload, "Invalid password payload") {
		return
	}
	ctx := c.Request.Context()
	if err := a.auth.Verify(ctx, payload.Current); err != nil {
		if errors.Is(err, service.ErrInvalidPassword) {
			respondError(c, http.StatusUnauthorized, "Current password is wrong")
			return
		}
		respondError(c, http.StatusInternalServerError, "Could not verify password")
		return
	}
	if err := a.auth.SetPassword(ctx, payload.New); err != nil {
		if errors.Is(err, service.ErrPasswordMissing) {
			respondError(c, http.StatusBadRequest, "New password is required")
			return
		}
		respondError(c, http.StatusInternalServerError, "Could not save password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// AuthRequired rejects requests without an admin session. Script calls get a
// 401 JSON error, page loads are sent to the login page.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isAuthenticated(c) {
			if wantsJSON(c) {
				respondError(c, http.StatusUnauthorized, "Login required")
				c.Abort()
				return
			}
			c.Redirect(http.StatusFound, "/admin/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Set(contextEditorID, sessionEditor(c))
		c.Next()
	}
}

// EditorID returns the editor identity of an authenticated request.
func EditorID(c *gin.Context) string {
	if id := c.GetString(contextEditorID); id != "" {
		return id
	}
	return sessionEditor(c)
}

func isAuthenticated(c *gin.Context) bool {
	session := sessions.Default(c)
	ok, _ := session.Get(sessionAuthenticated).(bool)
	return ok && sessionEditor(c) != ""
}

func sessionEditor(c *gin.Context) string {
	id, _ := sessions.Default(c).Get(sessionEditorID).(string)
	return id
}
