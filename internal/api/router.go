package api

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"service-crm/internal/handlers"
	"service-crm/internal/middleware"
	"service-crm/internal/utils"
)

const readHeaderTimeout = 10 * time.Second

type RouterOptions struct {
	CORSOrigins []string
	Log         *zap.Logger
	Node        *snowflake.Node
	Revocations middleware.RevocationChecker
}

// NewRouter mounts every endpoint under /api and wraps the result with
// CORS, security headers and access logging.
func NewRouter(h *handlers.CRMHandlers, opts RouterOptions) http.Handler {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	public := router.PathPrefix("/api").Subrouter()
	setupPublicRoutes(public, h)

	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.Auth(h.Tokens, opts.Revocations, h.Log))
	setupAuthenticatedRoutes(protected, h)
	setupContactRoutes(protected, h)
	setupLeadRoutes(protected, h)
	setupTaskRoutes(protected, h)
	setupCommunicationRoutes(protected, h)
	protected.HandleFunc("/summary", h.GetSummary).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: !allowsAnyOrigin(opts.CORSOrigins),
	})

	var handler http.Handler = router
	handler = c.Handler(handler)
	handler = middleware.SecurityHeaders()(handler)
	handler = middleware.Logging(opts.Log, opts.Node)(handler)
	return handler
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return len(origins) == 0
}

func setupPublicRoutes(r *mux.Router, h *handlers.CRMHandlers) {
	r.HandleFunc("/auth/register", h.RegisterUser).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.LoginUser).Methods(http.MethodPost)
	r.HandleFunc("/auth/oidc/login", h.OIDCLoginHandler).Methods(http.MethodGet)
	r.HandleFunc("/auth/oidc/callback", h.OIDCCallbackHandler).Methods(http.MethodGet)
	r.HandleFunc("/health/api", h.Hello).Methods(http.MethodGet)
	r.HandleFunc("/health/db", h.DBPing).Methods(http.MethodGet)
}

func setupAuthenticatedRoutes(r *mux.Router, h *handlers.CRMHandlers) {
	r.HandleFunc("/auth/logout", h.LogoutUser).Methods(http.MethodPost)
	r.HandleFunc("/auth/me", h.GetUserInfo).Methods(http.MethodGet)
	r.HandleFunc("/profile", h.GetUserInfo).Methods(http.MethodGet)
	r.HandleFunc("/profile", h.DeleteUser).Methods(http.MethodDelete)
}

func setupContactRoutes(r *mux.Router, h *handlers.CRMHandlers) {
	r.HandleFunc("/contacts", h.CreateContact).Methods(http.MethodPost)
	r.HandleFunc("/contacts", h.ListContacts).Methods(http.MethodGet)
	r.HandleFunc("/contacts/{id}", h.GetContact).Methods(http.MethodGet)
	r.HandleFunc("/contacts/{id}", h.UpdateContact).Methods(http.MethodPut)
	r.HandleFunc("/contacts/{id}", h.DeleteContact).Methods(http.MethodDelete)
}

func setupLeadRoutes(r *mux.Router, h *handlers.CRMHandlers) {
	r.HandleFunc("/leads", h.CreateLead).Methods(http.MethodPost)
	r.HandleFunc("/leads", h.ListLeads).Methods(http.MethodGet)
	r.HandleFunc("/leads/{id}", h.GetLead).Methods(http.MethodGet)
	r.HandleFunc("/leads/{id}", h.UpdateLead).Methods(http.MethodPut)
	r.HandleFunc("/leads/{id}/stage", h.UpdateLeadStage).Methods(http.MethodPatch)
	r.HandleFunc("/leads/{id}", h.DeleteLead).Methods(http.MethodDelete)
}

func setupTaskRoutes(r *mux.Router, h *handlers.CRMHandlers) {
	r.HandleFunc("/tasks", h.CreateTask).Methods(http.MethodPost)
	r.HandleFunc("/tasks", h.ListTasks).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}", h.GetTask).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}", h.UpdateTask).Methods(http.MethodPut)
	r.HandleFunc("/tasks/{id}", h.DeleteTask).Methods(http.MethodDelete)
}

func setupCommunicationRoutes(r *mux.Router, h *handlers.CRMHandlers) {
	r.HandleFunc("/communications", h.CreateCommunication).Methods(http.MethodPost)
	r.HandleFunc("/communications", h.ListCommunications).Methods(http.MethodGet)
	r.HandleFunc("/communications/{id}", h.GetCommunication).Methods(http.MethodGet)
	r.HandleFunc("/communications/{id}", h.UpdateCommunication).Methods(http.MethodPut)
	r.HandleFunc("/communications/{id}", h.DeleteCommunication).Methods(http.MethodDelete)
}
