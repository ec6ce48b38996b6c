package api

import (
	"github.com/readloopapp/readloop-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth     *service.AuthService
	Session  *service.SessionService
	Book     *service.BookService
	Shelf    *service.ShelfService
	Review   *service.ReviewService
	Social   *service.SocialService
	Goal     *service.GoalService
	Stats    *service.StatsService
	Activity *service.ActivityService
	Profile  *service.ProfileService
	Search   *service.SearchService
	Metadata *service.MetadataService
	Cover    *service.CoverService
}
