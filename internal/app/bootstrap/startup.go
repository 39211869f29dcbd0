// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	projectstore "github.com/dalemusser/collabhub/internal/app/store/projects"
	"github.com/dalemusser/collabhub/internal/app/system/objstore"
	"github.com/dalemusser/collabhub/internal/app/system/realtime"
	"github.com/dalemusser/collabhub/internal/app/system/rooms"
	"github.com/dalemusser/collabhub/internal/app/system/workers"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// services holds long-lived components built once at startup and shared
// between BuildHandler and Shutdown.
type services struct {
	hub         *realtime.Hub
	objects     objstore.Store
	provisioner rooms.Provisioner
	roomWorker  *workers.RoomProvision
}

var svc services

// Startup builds the shared runtime services after DB connections and
// schema setup complete, but before the HTTP handler is built. Object
// storage and call provisioning are optional: with no bucket or no 100ms
// credentials configured the matching features respond 404/502 rather
// than blocking the rest of the app.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	svc.hub = realtime.NewHub(logger)

	if appCfg.S3Bucket != "" {
		s3, err := objstore.NewS3Store(ctx, appCfg.S3Region, appCfg.S3Bucket, logger)
		if err != nil {
			return err
		}
		svc.objects = s3
	} else {
		logger.Warn("no s3_bucket configured, file uploads held in memory")
		svc.objects = objstore.NewMemStore()
	}

	if appCfg.HMSAccessKey != "" {
		svc.provisioner = rooms.NewHMSClient(rooms.HMSConfig{
			BaseURL:   appCfg.HMSBaseURL,
			AccessKey: appCfg.HMSAccessKey,
			Secret:    appCfg.HMSSecret,
			Templates: map[string]string{
				models.RoomDefault:    appCfg.HMSTemplateDefault,
				models.RoomTranscript: appCfg.HMSTemplateTranscript,
				models.RoomFull:       appCfg.HMSTemplateFull,
			},
		}, logger)

		svc.roomWorker = workers.NewRoomProvision(svc.provisioner, projectstore.New(deps.MongoDatabase), logger)
		svc.roomWorker.Start()
	} else {
		logger.Warn("no 100ms credentials configured, call rooms disabled")
	}

	return nil
}
