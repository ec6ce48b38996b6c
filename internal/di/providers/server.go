package providers

import (
	"context"
	"net/http"
	"strings"

	"github.com/samber/do/v2"

	"github.com/readloopapp/readloop-server/internal/api"
	"github.com/readloopapp/readloop-server/internal/config"
	"github.com/readloopapp/readloop-server/internal/logger"
	"github.com/readloopapp/readloop-server/internal/service"
	"github.com/readloopapp/readloop-server/internal/sse"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// sseIdentity authenticates SSE connections. EventSource can't set
// headers, so a token query parameter is accepted alongside the
// standard Authorization header.
func sseIdentity(authService *service.AuthService) sse.IdentityFunc {
	return func(r *http.Request) (string, bool) {
		token := r.URL.Query().Get("token")
		if token == "" {
			header := r.Header.Get("Authorization")
			token = strings.TrimPrefix(header, "Bearer ")
			if token == header {
				return "", false
			}
		}

		claims, err := authService.VerifyAccessToken(token)
		if err != nil {
			return "", false
		}
		return claims.UserID, true
	}
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	// Get all services
	authService := do.MustInvoke[*service.AuthService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	bookService := do.MustInvoke[*service.BookService](i)
	shelfService := do.MustInvoke[*service.ShelfService](i)
	reviewService := do.MustInvoke[*service.ReviewService](i)
	socialService := do.MustInvoke[*service.SocialService](i)
	goalService := do.MustInvoke[*service.GoalService](i)
	statsService := do.MustInvoke[*service.StatsService](i)
	activityService := do.MustInvoke[*service.ActivityService](i)
	profileService := do.MustInvoke[*service.ProfileService](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	metadataService := do.MustInvoke[*service.MetadataService](i)
	coverService := do.MustInvoke[*service.CoverService](i)

	// Wire activity recording into the services that produce feed entries
	shelfService.SetActivityRecorder(activityService)
	reviewService.SetActivityRecorder(activityService)
	socialService.SetActivityRecorder(activityService)
	goalService.SetActivityRecorder(activityService)

	// Goal completion is detected when a book lands on the read shelf
	shelfService.SetGoalChecker(goalService)

	sseHandler := sse.NewHandler(sseHandle.Manager, sseIdentity(authService), log.Logger)

	services := &api.Services{
		Auth:     authService,
		Session:  sessionService,
		Book:     bookService,
		Shelf:    shelfService,
		Review:   reviewService,
		Social:   socialService,
		Goal:     goalService,
		Stats:    statsService,
		Activity: activityService,
		Profile:  profileService,
		Search:   searchService,
		Metadata: metadataService,
		Cover:    coverService,
	}

	handler := api.NewServer(storeHandle.Store, services, sseHandler, cfg.Server.AllowedOrigins, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
