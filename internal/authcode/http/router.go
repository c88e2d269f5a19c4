package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/CodeZobac/Scuzzy-goalkeeper-sub004/api/authcodes" // Swagger docs
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/service"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/store"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/codesdk"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/httpx"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/jwtx"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/slogx"
)

// Limits are the per-IP rate limits applied to each route group.
type Limits struct {
	Validate httpx.RateLimitConfig
	Send     httpx.RateLimitConfig
	Admin    httpx.RateLimitConfig
	Read     httpx.RateLimitConfig
}

func DefaultLimits() Limits {
	return Limits{
		Validate: httpx.ValidateLimit,
		Send:     httpx.SendLimit,
		Admin:    httpx.AdminLimit,
		Read:     httpx.ReadLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	// nil leaves the admin routes unauthenticated.
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	Limits     Limits
	Controller *service.Controller
	Issuer     *service.Issuer
	Mailer     *service.Mailer
	Cleanup    *service.CleanupScheduler

	// Metrics is served on /metrics when set.
	Metrics prometheus.Gatherer
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		Limits:       DefaultLimits(),
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerValidation()
	r.registerDelivery()
	r.registerCleanup()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Goalkeeper Finder Auth Codes API
//	@version		0.1.0
//	@description	Issues, validates and cleans up single-use email confirmation and password reset codes.
//	@description
//	@description				Codes are consumed at most once. Admin routes require an HS256 bearer token with the codes:admin scope.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerValidation() {
	h := &CodesHandler{Controller: r.Controller}

	// Validation attempts are the brute-force surface; strict limit by IP
	validate := httpx.RateLimitByIP(r.Limits.Validate)

	r.Mux.Handle("POST /auth/codes/validate/email-confirmation",
		httpx.Chain(http.HandlerFunc(h.HandleValidateEmailConfirmation), validate))
	r.Mux.Handle("POST /auth/codes/validate/password-reset",
		httpx.Chain(http.HandlerFunc(h.HandleValidatePasswordReset), validate))
	r.Mux.Handle("POST /auth/codes/validate",
		httpx.Chain(http.HandlerFunc(h.HandleValidate), validate))

	r.Mux.Handle("GET /auth/codes/status",
		httpx.Chain(http.HandlerFunc(h.HandleStatus),
			httpx.RateLimitByIP(r.Limits.Read),
		),
	)
}

func (r *Router) registerDelivery() {
	h := &SendHandler{Mailer: r.Mailer}

	// Limited by IP + recipient so one address cannot be flooded
	send := httpx.RateLimitByIPAndJSONField(r.Limits.Send, "email")

	r.Mux.Handle("POST /auth/codes/send/email-confirmation",
		httpx.Chain(http.HandlerFunc(h.HandleEmailConfirmation), send))
	r.Mux.Handle("POST /auth/codes/send/password-reset",
		httpx.Chain(http.HandlerFunc(h.HandlePasswordReset), send))
}

func (r *Router) registerCleanup() {
	h := &CleanupHandler{Controller: r.Controller}

	r.Mux.Handle("POST /auth/codes/cleanup", r.admin(http.HandlerFunc(h.HandlePerform)))
	r.Mux.Handle("GET /auth/codes/cleanup/status", r.admin(http.HandlerFunc(h.HandleStatus)))
}

func (r *Router) registerAdmin() {
	h := &AdminCodesHandler{Issuer: r.Issuer}

	r.Mux.Handle("GET /auth/codes/users/{user_id}", r.admin(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("DELETE /auth/codes/{id}", r.admin(http.HandlerFunc(h.HandleRevoke)))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Read),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.Cleanup),
			httpx.RateLimitByIP(r.Limits.Read),
		),
	)

	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics",
			httpx.Chain(promhttp.HandlerFor(r.Metrics, promhttp.HandlerOpts{}),
				httpx.RateLimitByIP(r.Limits.Read),
			),
		)
	}
}

// admin wraps h with bearer authentication and the admin scope when a
// verifier is configured.
func (r *Router) admin(h http.Handler) http.Handler {
	if r.verifier == nil {
		return httpx.Chain(h, httpx.RateLimitByIP(r.Limits.Admin))
	}
	return httpx.Chain(h,
		httpx.RateLimitByIP(r.Limits.Admin),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope(codesdk.AdminScope),
	)
}
