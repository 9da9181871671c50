package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/printstudio/internal/content"
	"github.com/printstudio/internal/logger"
	"github.com/printstudio/internal/service"
)

const maxFormMemory = 8 << 20

func submittedForm(c *gin.Context) (content.Form, error) {
	if c.ContentType() == "multipart/form-data" {
		if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, err
		}
	} else if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	return content.FormFromValues(c.Request.PostForm), nil
}

func documentsPayload(r service.Resolved) gin.H {
	return gin.H{"page": r.Page, "site": r.Site}
}

// respondDraftError maps service errors onto the draft API's status codes.
func respondDraftError(c *gin.Context, op string, err error) {
	if errors.Is(err, content.ErrUnknownPage) {
		respondError(c, http.StatusNotFound, "Unknown page")
		return
	}
	logger.Errorf("[draft] %s %s for %s: %v", op, c.Param("page"), EditorID(c), err)
	respondError(c, http.StatusInternalServerError, "Could not "+op+" the draft")
}

// SyncDraft merges the submitted editor form into the session's draft and
// answers with the documents to render.
func (a *API) SyncDraft(c *gin.Context) {
	form, err := submittedForm(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid form submission")
		return
	}

	resolved, err := a.drafts.Sync(c.Request.Context(), EditorID(c), c.Param("page"), form)
	if err != nil {
		respondDraftError(c, "save", err)
		return
	}
	c.JSON(http.StatusOK, documentsPayload(resolved))
}

// GetDraft answers with the session's draft, or the committed documents.
func (a *API) GetDraft(c *gin.Context) {
	resolved, err := a.drafts.Resolve(c.Request.Context(), EditorID(c), c.Param("page"))
	if err != nil {
		respondDraftError(c, "load", err)
		return
	}
	payload := documentsPayload(resolved)
	payload["draft"] = gin.H{"page": resolved.PageDraft, "site": resolved.SiteDraft}
	c.JSON(http.StatusOK, payload)
}

// DiscardDraft drops the session's page and site drafts and answers with the
// committed documents.
func (a *API) DiscardDraft(c *gin.Context) {
	ctx := c.Request.Context()
	page := c.Param("page")
	if err := a.drafts.Discard(ctx, EditorID(c), page); err != nil {
		respondDraftError(c, "discard", err)
		return
	}
	resolved, err := a.drafts.Resolve(ctx, EditorID(c), page)
	if err != nil {
		respondDraftError(c, "load", err)
		return
	}
	c.JSON(http.StatusOK, documentsPayload(resolved))
}

// PublishDraft promotes the session's drafts to the committed documents.
func (a *API) PublishDraft(c *gin.Context) {
	result, err := a.drafts.Publish(c.Request.Context(), EditorID(c), c.Param("page"))
	if err != nil {
		respondDraftError(c, "publish", err)
		return
	}
	payload := documentsPayload(result.Resolved)
	missing := result.Missing
	if missing == nil {
		missing = []string{}
	}
	payload["missing"] = missing
	c.JSON(http.StatusOK, payload)
}
