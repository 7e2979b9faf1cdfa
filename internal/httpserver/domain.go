package httpserver

import (
	"context"

	"github.com/gin-gonic/gin"

	dispatchHTTP "weekly-scheduler/internal/dispatch/delivery/http"
	syncHTTP "weekly-scheduler/internal/reconcile/delivery/http"
	weekHTTP "weekly-scheduler/internal/week/delivery/http"
)

// setupScheduleDomain registers the conversation, week and sync routes.
//
//	POST   /api/v1/conversations/:id/commands
//	DELETE /api/v1/conversations/:id
//	GET    /api/v1/week, /api/v1/week.ics, /api/v1/week/days/:day
//	POST   /api/v1/sync (only with a sync usecase)
func (srv HTTPServer) setupScheduleDomain(ctx context.Context, api *gin.RouterGroup) {
	dispatchHTTP.RegisterRoutes(api, dispatchHTTP.New(srv.l, srv.dispatchUC))
	weekHTTP.RegisterRoutes(api, weekHTTP.New(srv.l, srv.weekUC))

	if srv.syncUC == nil {
		srv.l.Infof(ctx, "Calendar sync not configured, skipping sync route")
		return
	}
	syncHTTP.RegisterRoutes(api, syncHTTP.New(srv.l, srv.syncUC))
	srv.l.Infof(ctx, "Sync route registered at POST /api/v1/sync")
}
