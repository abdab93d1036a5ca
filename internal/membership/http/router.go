package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
	"github.com/aussiebroadwan/alumnet/internal/membership/service"
	"github.com/aussiebroadwan/alumnet/internal/membership/store"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/aussiebroadwan/alumnet/api/docs" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	limits       httpx.RateLimitProfiles

	store               store.Store
	TokenService        *service.TokenService
	AuthService         *service.AuthService
	InviteService       *service.InviteService
	RegistrationService *service.RegistrationService
	AdminService        *service.AdminService
	AlumniService       *service.AlumniService
	BootstrapService    *service.BootstrapService
	FeedService         *service.FeedService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	limits httpx.RateLimitProfiles,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		limits:       limits,
		logger:       logger,
	}

	// Tracing wraps logging so the log middleware sees the request the mux
	// routes and can report the matched pattern.
	r.middlewares = []httpx.Middleware{
		otelhttp.NewMiddleware("alumnet"),
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerBootstrap()
	r.registerAdmin()
	r.registerAlumni()
	r.registerSuperAdmin()
	r.registerFeed()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Alumnet Membership Service API
//	@version		0.1.0
//	@description	Invitation-only membership for an alumni network: super admins manage admins,
//	@description	admins invite alumni by email, and invitees register with a single-use link.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/alumnet
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// protect authenticates the caller, checks its role against roles and
// rate-limits per principal.
func (r *Router) protect(h http.Handler, limit httpx.RateLimitConfig, roles ...domain.Role) http.Handler {
	return httpx.Chain(h,
		Guard(r.AuthService, roles...),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) public(h http.Handler, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h, httpx.RateLimitByIP(limit))
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService:         r.AuthService,
		RegistrationService: r.RegistrationService,
	}

	// Credential-bearing public endpoints share the strict per-IP budget.
	r.Mux.Handle("POST /v1/auth/login", r.public(http.HandlerFunc(h.HandleLogin), r.limits.Strict))
	r.Mux.Handle("GET /v1/auth/invitations/{token}", r.public(http.HandlerFunc(h.HandleVerifyInvitation), r.limits.Strict))
	r.Mux.Handle("POST /v1/auth/register/{token}", r.public(http.HandlerFunc(h.HandleRegister), r.limits.Strict))

	r.Mux.Handle("GET /v1/me", r.protect(http.HandlerFunc(h.HandleMe), r.limits.Lenient))
}

func (r *Router) registerBootstrap() {
	h := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.Mux.Handle("POST /v1/bootstrap", r.public(h, r.limits.Strict))
}

func (r *Router) registerAdmin() {
	h := &InvitationsHandler{
		InviteService: r.InviteService,
		AdminService:  r.AdminService,
	}
	staff := []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin}

	r.Mux.Handle("POST /v1/admin/invitations", r.protect(http.HandlerFunc(h.HandleInvite), r.limits.Moderate, staff...))
	r.Mux.Handle("POST /v1/admin/invitations/bulk", r.protect(http.HandlerFunc(h.HandleBulkInvite), r.limits.Moderate, staff...))
	r.Mux.Handle("GET /v1/admin/alumni", r.protect(http.HandlerFunc(h.HandleListAlumni), r.limits.Moderate, staff...))
}

func (r *Router) registerAlumni() {
	h := &AlumniHandler{AlumniService: r.AlumniService}
	lenient := func(f http.HandlerFunc) http.Handler {
		return r.protect(f, r.limits.Lenient, domain.RoleAlumni)
	}

	r.Mux.Handle("GET /v1/alumni/profile", lenient(h.HandleGetProfile))
	r.Mux.Handle("PUT /v1/alumni/profile", lenient(h.HandleUpdateProfile))
	r.Mux.Handle("PUT /v1/alumni/password", r.protect(http.HandlerFunc(h.HandleChangePassword), r.limits.Strict, domain.RoleAlumni))

	r.Mux.Handle("POST /v1/alumni/experiences", lenient(h.HandleAddExperience))
	r.Mux.Handle("PUT /v1/alumni/experiences/{id}", lenient(h.HandleUpdateExperience))
	r.Mux.Handle("DELETE /v1/alumni/experiences/{id}", lenient(h.HandleDeleteExperience))

	r.Mux.Handle("POST /v1/alumni/education", lenient(h.HandleAddEducation))
	r.Mux.Handle("PUT /v1/alumni/education/{id}", lenient(h.HandleUpdateEducation))
	r.Mux.Handle("DELETE /v1/alumni/education/{id}", lenient(h.HandleDeleteEducation))

	r.Mux.Handle("POST /v1/alumni/courses", lenient(h.HandleAddCourse))
	r.Mux.Handle("PUT /v1/alumni/courses/{id}", lenient(h.HandleUpdateCourse))
	r.Mux.Handle("DELETE /v1/alumni/courses/{id}", lenient(h.HandleDeleteCourse))
}

func (r *Router) registerSuperAdmin() {
	h := &SuperAdminHandler{AdminService: r.AdminService}
	moderate := func(f http.HandlerFunc) http.Handler {
		return r.protect(f, r.limits.Moderate, domain.RoleSuperAdmin)
	}

	r.Mux.Handle("POST /v1/super-admin/admins", moderate(h.HandleCreateAdmin))
	r.Mux.Handle("GET /v1/super-admin/admins", moderate(h.HandleListAdmins))
	r.Mux.Handle("PUT /v1/super-admin/admins/{id}", moderate(h.HandleUpdateAdmin))
	r.Mux.Handle("DELETE /v1/super-admin/admins/{id}", moderate(h.HandleDeleteAdmin))
	r.Mux.Handle("GET /v1/super-admin/statistics", moderate(h.HandleStatistics))
	r.Mux.Handle("GET /v1/super-admin/invitations", moderate(h.HandleListInvitations))
}

// registerFeed opens the feed to every authenticated principal kind.
func (r *Router) registerFeed() {
	h := &FeedHandler{FeedService: r.FeedService}
	read := func(f http.HandlerFunc) http.Handler { return r.protect(f, r.limits.Lenient) }
	write := func(f http.HandlerFunc) http.Handler { return r.protect(f, r.limits.Moderate) }

	r.Mux.Handle("GET /v1/feed/posts", read(h.HandleListPosts))
	r.Mux.Handle("POST /v1/feed/posts", write(h.HandleCreatePost))
	r.Mux.Handle("GET /v1/feed/posts/{id}", read(h.HandleGetPost))
	r.Mux.Handle("PUT /v1/feed/posts/{id}", write(h.HandleUpdatePost))
	r.Mux.Handle("DELETE /v1/feed/posts/{id}", write(h.HandleDeletePost))
	r.Mux.Handle("POST /v1/feed/posts/{id}/like", write(h.HandleToggleLike))
	r.Mux.Handle("POST /v1/feed/posts/{id}/comments", write(h.HandleAddComment))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez", r.public(LivezHandler(r.startTime, r.buildVersion), r.limits.Lenient))
	r.Mux.Handle("GET /readyz", r.public(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.TokenService), r.limits.Lenient))
}
