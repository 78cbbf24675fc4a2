package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"jobfill/autofill"
	"jobfill/config"
	"jobfill/services"
	"jobfill/utils"
)

type fillOptions struct {
	url           string
	profilePath   string
	settingsPath  string
	screenshot    bool
	screenshotDir string
	noLog         bool
}

func newFillCmd(v *viper.Viper) *cobra.Command {
	var opts fillOptions

	cmd := &cobra.Command{
		Use:   "fill <url>",
		Short: "Open a job application in a browser and fill it",
		Long: `Opens the page in Chromium, fills every recognised field from the
profile and reports what was filled. The profile and settings come from a
running jobfill server unless --profile/--settings name local files.
Nothing is ever submitted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appConfig(cmd)
			if err != nil {
				return err
			}
			opts.url = args[0]
			opts.screenshot = cfg.Browser.Screenshot
			return runFill(cmd.Context(), cfg, opts, utils.Logger(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.profilePath, "profile", "", "profile JSON file instead of the server's profile")
	cmd.Flags().StringVar(&opts.settingsPath, "settings", "", "settings JSON file instead of the server's settings")
	cmd.Flags().Bool("screenshot", false, "capture the page after filling")
	cmd.Flags().StringVar(&opts.screenshotDir, "screenshot-dir", "screenshots", "where screenshots go when no S3 bucket is configured")
	cmd.Flags().BoolVar(&opts.noLog, "no-log", false, "do not record the application on the server")
	_ = v.BindPFlag("browser.screenshot", cmd.Flags().Lookup("screenshot"))
	return cmd
}

func runFill(ctx context.Context, cfg *config.AppConfig, opts fillOptions, logger *zap.Logger, out io.Writer) error {
	filler, cleanup, err := newCLIFiller(cfg, opts, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	resp, err := filler.Fill(ctx, services.FillRequest{URL: opts.url, Screenshot: opts.screenshot})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func newCLIFiller(cfg *config.AppConfig, opts fillOptions, logger *zap.Logger) (*services.FillService, func(), error) {
	var api *services.APIClient
	client := func() *services.APIClient {
		if api == nil {
			api = services.NewAPIClient(cfg.API.URL, cfg.API.Token, nil)
		}
		return api
	}

	var profiles autofill.ProfileSource
	if opts.profilePath != "" {
		profiles = profileFile(opts.profilePath)
	} else {
		profiles = client()
	}
	var settings autofill.SettingsSource
	if opts.settingsPath != "" || opts.profilePath != "" {
		settings = settingsFile(opts.settingsPath)
	} else {
		settings = client()
	}

	serviceOpts := []services.FillServiceOption{services.WithFillLogger(logger)}
	if !opts.noLog {
		serviceOpts = append(serviceOpts, services.WithApplicationLogger(client()))
	}
	if opts.screenshot {
		store, err := screenshotStore(cfg, opts.screenshotDir, logger)
		if err != nil {
			return nil, nil, err
		}
		serviceOpts = append(serviceOpts, services.WithScreenshots(services.NewScreenshotService(store, logger)))
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
	return services.NewFillService(browser, profiles, settings, serviceOpts...), cleanup, nil
}

func screenshotStore(cfg *config.AppConfig, dir string, logger *zap.Logger) (services.ObjectStore, error) {
	if !cfg.S3.Enabled() {
		return dirStore{dir: dir}, nil
	}
	s3, err := services.NewS3Service(cfg.S3, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up screenshot bucket: %w", err)
	}
	return s3, nil
}
