package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/printstudio/internal/content"
	"github.com/printstudio/internal/logger"
	"github.com/printstudio/internal/render"
)

// LiveDraftScript is the browser controller loaded for admins.
const LiveDraftScript = "/static/js/live-draft.js"

// PagePath maps a page key to its public URL.
func PagePath(key string) string {
	if key == "home" {
		return "/"
	}
	return "/" + key
}

// DraftPath is the synchronization endpoint of a page.
func DraftPath(key string) string {
	return "/admin/api/pages/" + key + "/draft"
}

// ShowPage renders a public page. Visitors see the committed documents; a
// signed-in admin sees their draft with the editor panel attached.
func (a *API) ShowPage(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var (
			page, site content.Document
			opts       render.Options
			err        error
		)
		if isAuthenticated(c) {
			resolved, resolveErr := a.drafts.Resolve(ctx, sessionEditor(c), key)
			err = resolveErr
			if err == nil {
				page, site = resolved.Page, resolved.Site
				schema, _ := content.PageSchema(key)
				opts = render.Options{
					Editor:  render.Editor(schema, page, site),
					Scripts: []string{LiveDraftScript},
					SyncURL: DraftPath(key),
				}
				c.Header("Cache-Control", "no-store")
			}
		} else {
			page, err = a.content.Page(ctx, key)
			if err == nil {
				site, err = a.content.Settings(ctx)
			}
		}
		if err != nil {
			logger.Errorf("[page] load %s: %v", key, err)
			c.String(http.StatusInternalServerError, "page unavailable")
			return
		}

		var buf bytes.Buffer
		if err := render.Page(&buf, key, page, site, opts); err != nil {
			logger.Errorf("[page] render %s: %v", key, err)
			c.String(http.StatusInternalServerError, "page unavailable")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
	}
}
