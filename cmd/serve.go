package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"jobfill/autofill"
	"jobfill/config"
	"jobfill/database"
	"jobfill/models"
	"jobfill/routes"
	"jobfill/services"
	"jobfill/utils"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(v *viper.Viper) *cobra.Command {
	var withBrowser bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the profile, settings and application-log API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, withBrowser, utils.Logger())
		},
	}

	cmd.Flags().String("port", "8081", "port to listen on")
	cmd.Flags().BoolVar(&withBrowser, "browser", false, "launch Chromium and enable POST /api/fill")
	_ = v.BindPFlag("port", cmd.Flags().Lookup("port"))
	return cmd
}

func runServe(ctx context.Context, cfg *config.AppConfig, withBrowser bool, logger *zap.Logger) error {
	if !cfg.Database.Configured() {
		return errors.New("database is not configured: set DB_NAME")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		if cfg.JWTSecret == "" {
			return errors.New("JWT_SECRET is required in production")
		}
	}

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	profiles := models.NewProfileModel(db)
	settings := models.NewSettingsModel(db)
	applications := models.NewApplicationModel(db)

	routerCfg := routes.Config{
		Version:      Version,
		Profiles:     profiles,
		Settings:     settings,
		Applications: applications,
		Records:      applications,
		Analyzer:     autofill.NewAnalyzer(nil),
		Logger:       logger,
	}

	var s3 *services.S3Service
	if cfg.S3.Enabled() {
		if s3, err = services.NewS3Service(cfg.S3, logger); err != nil {
			return fmt.Errorf("failed to set up screenshot bucket: %w", err)
		}
		routerCfg.Screenshots = s3
	}

	if cfg.JWTSecret != "" {
		routerCfg.Validator = services.NewJWTService(cfg.JWTSecret)
	} else {
		logger.Warn("JWT_SECRET not set, API is unauthenticated")
	}

	if withBrowser {
		filler, cleanup, err := newServerFiller(cfg, s3, profiles, settings, applications, logger)
		if err != nil {
			return err
		}
		defer cleanup()
		routerCfg.Filler = filler
	}

	router := routes.NewRouter(routerCfg)
	defer router.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("version", Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newServerFiller launches Chromium for POST /api/fill. Screenshots are
// only taken when s3 is set.
func newServerFiller(cfg *config.AppConfig, s3 *services.S3Service, profiles *models.ProfileModel, settings *models.SettingsModel, applications *models.ApplicationModel, logger *zap.Logger) (*services.FillService, func(), error) {
	opts := []services.FillServiceOption{
		services.WithFillLogger(logger),
		services.WithApplicationLogger(applications),
	}
	if s3 != nil {
		opts = append(opts, services.WithScreenshots(services.NewScreenshotService(s3, logger)))
	}

	browser, err := services.NewBrowserService(cfg.Browser, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := browser.Close(); err != nil {
			logger.Warn("failed to close browser", zap.Error(err))
		}
	}
	return services.NewFillService(browser, profiles, settings, opts...), cleanup, nil
}
