// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/harborteam/harbor/internal/app/store/oauthstate"
	"github.com/harborteam/harbor/internal/app/system/blob"
	"github.com/harborteam/harbor/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// Harbor uses it to make sure the attachment directory exists and is
// writable, so a misconfigured blob_dir fails startup instead of the
// first upload, and to sweep OAuth state tokens the TTL monitor may
// have left behind while the process was down.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if _, err := blob.NewDiskStore(appCfg.BlobDir); err != nil {
		logger.Error("attachment storage init failed",
			zap.String("blob_dir", appCfg.BlobDir), zap.Error(err))
		return err
	}
	logger.Info("attachment storage ready", zap.String("blob_dir", appCfg.BlobDir))

	sweepCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()
	removed, err := oauthstate.New(deps.HarborMongoDatabase).CleanupExpired(sweepCtx)
	if err != nil {
		// Leftover states expire on read anyway; a failed sweep is not
		// worth refusing to start over.
		logger.Warn("oauth state sweep failed", zap.Error(err))
		return nil
	}
	if removed > 0 {
		logger.Info("expired oauth states removed", zap.Int64("count", removed))
	}
	return nil
}
