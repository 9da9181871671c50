package handler

import (
	"github.com/printstudio/internal/service"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	content *service.ContentService
	drafts  *service.SyncService
	auth    *service.AuthService
	media   *service.MediaService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(content *service.ContentService, drafts *service.SyncService, auth *service.AuthService, media *service.MediaService) *API {
	return &API{
		content: content,
		drafts:  drafts,
		auth:    auth,
		media:   media,
	}
}
