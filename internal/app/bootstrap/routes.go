// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	callsfeature "github.com/dalemusser/collabhub/internal/app/features/calls"
	chatsfeature "github.com/dalemusser/collabhub/internal/app/features/chats"
	apierrors "github.com/dalemusser/collabhub/internal/app/features/errors"
	filesfeature "github.com/dalemusser/collabhub/internal/app/features/files"
	healthfeature "github.com/dalemusser/collabhub/internal/app/features/health"
	invitesfeature "github.com/dalemusser/collabhub/internal/app/features/invites"
	projectsfeature "github.com/dalemusser/collabhub/internal/app/features/projects"
	sessionfeature "github.com/dalemusser/collabhub/internal/app/features/session"
	tasksfeature "github.com/dalemusser/collabhub/internal/app/features/tasks"
	chatstore "github.com/dalemusser/collabhub/internal/app/store/chats"
	filestore "github.com/dalemusser/collabhub/internal/app/store/files"
	invitestore "github.com/dalemusser/collabhub/internal/app/store/invites"
	projectstore "github.com/dalemusser/collabhub/internal/app/store/projects"
	taskstore "github.com/dalemusser/collabhub/internal/app/store/tasks"
	userstore "github.com/dalemusser/collabhub/internal/app/store/users"
	"github.com/dalemusser/collabhub/internal/app/system/auth"
	"github.com/dalemusser/collabhub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE
// app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed. Everything except /health and
// sign-in requires a session; all other routes nest under the
// RequireSignedIn group.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	errLog := apierrors.NewErrorLogger(logger)

	users := userstore.New(db)
	projects := projectstore.New(db)
	tasks := taskstore.New(db)
	chats := chatstore.New(db, svc.hub)
	invites := invitestore.New(db)
	files := filestore.New(db, svc.objects, logger)

	signInLimiter := ratelimit.New(appCfg.SignInRateLimit, appCfg.SignInRateWindow)
	messageLimiter := ratelimit.New(appCfg.MessageRateLimit, appCfg.MessageRateWindow)

	// The worker is only built when call provisioning is configured; a
	// nil interface keeps project creation from touching it.
	var provisioner projectsfeature.Provisioner
	if svc.roomWorker != nil {
		provisioner = svc.roomWorker
	}

	r := chi.NewRouter()

	// Loads the SessionUser into context when signed in.
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	sessionHandler := sessionfeature.NewHandler(users, sessionMgr, signInLimiter, errLog, logger)
	r.Mount("/session", sessionfeature.Routes(sessionHandler))

	r.Group(func(r chi.Router) {
		r.Use(sessionMgr.RequireSignedIn)

		projectsHandler := projectsfeature.NewHandler(db, projects, users, provisioner, errLog, logger)
		r.Mount("/projects", projectsfeature.Routes(projectsHandler))

		invitesHandler := invitesfeature.NewHandler(invites, projects, users, errLog, logger)
		r.Mount("/invites", invitesfeature.Routes(invitesHandler))
		r.Post("/projects/{projectID}/invites", invitesHandler.Create)

		tasksHandler := tasksfeature.NewHandler(db, tasks, errLog, logger)
		r.Mount("/projects/{projectID}/tasks", tasksfeature.Routes(tasksHandler))

		chatsHandler := chatsfeature.NewHandler(db, chats, svc.hub, messageLimiter, errLog, logger)
		r.Mount("/projects/{projectID}/chats", chatsfeature.Routes(chatsHandler))

		filesHandler := filesfeature.NewHandler(db, files, projects, svc.objects, errLog, logger)
		r.Mount("/projects/{projectID}/files", filesfeature.Routes(filesHandler))
		r.Get("/projects/{projectID}/transcripts", filesHandler.Transcripts)

		if svc.provisioner != nil {
			callsHandler := callsfeature.NewHandler(db, projects, svc.provisioner, errLog, logger)
			r.Mount("/projects/{projectID}/calls", callsfeature.Routes(callsHandler))
		}
	})

	return r, nil
}
