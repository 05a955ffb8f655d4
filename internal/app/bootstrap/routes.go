// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	channelsfeature "github.com/harborteam/harbor/internal/app/features/channels"
	conversationsfeature "github.com/harborteam/harbor/internal/app/features/conversations"
	healthfeature "github.com/harborteam/harbor/internal/app/features/health"
	loginfeature "github.com/harborteam/harbor/internal/app/features/login"
	membersfeature "github.com/harborteam/harbor/internal/app/features/members"
	messagesfeature "github.com/harborteam/harbor/internal/app/features/messages"
	oauthfeature "github.com/harborteam/harbor/internal/app/features/oauth"
	reactionsfeature "github.com/harborteam/harbor/internal/app/features/reactions"
	streamfeature "github.com/harborteam/harbor/internal/app/features/stream"
	uploadsfeature "github.com/harborteam/harbor/internal/app/features/uploads"
	workspacesfeature "github.com/harborteam/harbor/internal/app/features/workspaces"
	channelstore "github.com/harborteam/harbor/internal/app/store/channels"
	conversationstore "github.com/harborteam/harbor/internal/app/store/conversations"
	"github.com/harborteam/harbor/internal/app/store/emailverify"
	memberstore "github.com/harborteam/harbor/internal/app/store/members"
	messagestore "github.com/harborteam/harbor/internal/app/store/messages"
	"github.com/harborteam/harbor/internal/app/store/oauthstate"
	reactionstore "github.com/harborteam/harbor/internal/app/store/reactions"
	uploadstore "github.com/harborteam/harbor/internal/app/store/uploads"
	userstore "github.com/harborteam/harbor/internal/app/store/users"
	workspacestore "github.com/harborteam/harbor/internal/app/store/workspaces"
	"github.com/harborteam/harbor/internal/app/system/auth"
	"github.com/harborteam/harbor/internal/app/system/blob"
	"github.com/harborteam/harbor/internal/app/system/guard"
	"github.com/harborteam/harbor/internal/app/system/mailer"
	"github.com/harborteam/harbor/internal/app/system/realtime"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. Harbor builds the session
// manager, all stores and shared services, mounts the feature routers,
// and wraps the router with CORS so browser clients on other origins
// can call the API with credentials.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.HarborMongoDatabase

	// Session manager; secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fetch fresh user data on each request so profile changes and
	// deleted accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Stores.
	users := userstore.New(db)
	workspaces := workspacestore.New(db)
	members := memberstore.New(db)
	channels := channelstore.New(db)
	conversations := conversationstore.New(db)
	messages := messagestore.New(db)
	reactions := reactionstore.New(db)
	verify := emailverify.New(db, appCfg.CodeExpiry)
	states := oauthstate.New(db)
	uploads := uploadstore.New(db)

	// Shared services.
	g := guard.New(members)
	hub := realtime.NewHub(logger)
	mail := mailer.New(appCfg.MailSMTPHost, appCfg.MailSMTPPort, appCfg.MailSMTPUser, appCfg.MailSMTPPass, appCfg.MailFrom, appCfg.MailEnabled, logger)

	blobs, err := blob.NewDiskStore(appCfg.BlobDir)
	if err != nil {
		logger.Error("attachment storage init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged
	// in, making the current user available via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.HarborMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication.
	loginHandler := loginfeature.NewHandler(users, verify, mail, sessionMgr, appCfg.SiteName, logger)
	r.Mount("/api/auth", loginfeature.Routes(loginHandler, sessionMgr))

	oauthHandler := oauthfeature.NewHandler(users, states, sessionMgr, appCfg.BaseURL,
		oauthfeature.ProviderConfig{ClientID: appCfg.GoogleClientID, ClientSecret: appCfg.GoogleClientSecret},
		oauthfeature.ProviderConfig{ClientID: appCfg.GitHubClientID, ClientSecret: appCfg.GitHubClientSecret},
		logger)
	r.Mount("/auth", oauthfeature.Routes(oauthHandler))

	// Workspaces, with the roster, channel list, and DM resolution
	// nested under the workspace id.
	wsHandler := workspacesfeature.NewHandler(workspaces, members, channels, conversations, messages, reactions, g, logger)
	wsRouter := workspacesfeature.Routes(wsHandler, sessionMgr)

	membersHandler := membersfeature.NewHandler(members, users, messages, reactions, conversations, g, logger)
	wsRouter.Mount("/{id}/members", membersfeature.WorkspaceRoutes(membersHandler, sessionMgr))

	channelsHandler := channelsfeature.NewHandler(channels, messages, reactions, g, logger)
	wsRouter.Mount("/{id}/channels", channelsfeature.WorkspaceRoutes(channelsHandler, sessionMgr))

	convHandler := conversationsfeature.NewHandler(conversations, members, g, logger)
	wsRouter.Mount("/{id}/conversations", conversationsfeature.WorkspaceRoutes(convHandler, sessionMgr))

	r.Mount("/api/workspaces", wsRouter)

	r.Mount("/api/members", membersfeature.Routes(membersHandler, sessionMgr))
	r.Mount("/api/channels", channelsfeature.Routes(channelsHandler, sessionMgr))
	r.Mount("/api/conversations", conversationsfeature.Routes(convHandler, sessionMgr))

	// Messages, with reaction toggles nested under the message id.
	msgHandler := messagesfeature.NewHandler(messages, reactions, members, users, channels, conversations, uploads, blobs, g, hub, logger)
	msgRouter := messagesfeature.Routes(msgHandler, sessionMgr)

	reactionsHandler := reactionsfeature.NewHandler(reactions, messages, conversations, g, hub, logger)
	msgRouter.Mount("/{messageId}/reactions", reactionsfeature.Routes(reactionsHandler, sessionMgr))

	r.Mount("/api/messages", msgRouter)

	// Attachments.
	uploadsHandler := uploadsfeature.NewHandler(uploads, blobs, logger)
	r.Mount("/api/uploads", uploadsfeature.Routes(uploadsHandler, sessionMgr))

	// Realtime stream.
	streamHandler := streamfeature.NewHandler(hub, channels, conversations, messages, g, appCfg.AllowedOrigins, logger)
	r.Mount("/api/stream", streamfeature.Routes(streamHandler, sessionMgr))

	c := cors.New(cors.Options{
		AllowedOrigins:   appCfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Length"},
		MaxAge:           300,
		AllowCredentials: true,
	})

	return c.Handler(r), nil
}
