package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"articlehub/account"
	"articlehub/articles"
	"articlehub/cache"
	"articlehub/common"
	"articlehub/config"
	"articlehub/email"
	"articlehub/site"
	"articlehub/topics"
	"articlehub/views"
)

var rootCmd = &cobra.Command{
	Use:   "articlehub",
	Short: "Topic-organised article site",
	RunE:  runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables and indexes, then exit",
	RunE:  runMigrate,
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account or promote an existing user",
	RunE:  runCreateAdmin,
}

var (
	adminUsername string
	adminEmail    string
	adminPassword string
)

func init() {
	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "username to create or promote")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "email for a new account")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "password for a new account")
	createAdminCmd.MarkFlagRequired("username")

	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := common.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, logger, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	st, err := common.ConnectStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	logger.Info("migrations complete", zap.String("driver", cfg.DBDriver))
	return nil
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()
	st, err := common.ConnectStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	user, created, err := account.EnsureAdmin(ctx, st, adminUsername, adminEmail, adminPassword)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s\n", user.Username)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Promoted %s to admin\n", user.Username)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.SessionKey == "" {
		return errors.New("SESSION_SECRET environment variable not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := common.ConnectStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	tmpl, err := views.Load(cfg.Domain)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(common.RequestLogger(logger), gin.Recovery())
	router.SetHTMLTemplate(tmpl)

	sessionStore := cookie.NewStore([]byte(cfg.SessionKey))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.SessionSecure,
	})
	router.Use(sessions.Sessions(cfg.SessionName, sessionStore))
	router.Use(common.CSRF(cfg.SessionKey))
	router.Use(common.LoadUser(st, logger))

	pageCache := cache.NewPageCache(cfg.CacheDir, cfg.CacheMaxAge)
	go sweepCache(ctx, pageCache, cfg.CacheMaxAge, logger)

	account.NewAccountModule(st, logger).RegisterRoutes(router)
	articleModule := articles.NewArticleModule(st, pageCache, logger)
	// Pages cached by a previous run may carry old markup.
	if err := articleModule.ClearCache(); err != nil {
		logger.Warn("clearing page cache", zap.Error(err))
	}
	articleModule.RegisterRoutes(router)
	topics.NewTopicModule(st, logger).RegisterRoutes(router)
	site.NewSiteModule(st, email.NewEmailService(cfg.SMTP), cfg.Domain, logger).RegisterRoutes(router)
	router.NoRoute(common.NotFound)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port), zap.String("driver", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// sweepCache removes expired cached pages until ctx is done.
func sweepCache(ctx context.Context, pageCache *cache.PageCache, every time.Duration, logger *zap.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := pageCache.ClearOld(); err != nil {
				logger.Warn("sweeping page cache", zap.Error(err))
			}
		}
	}
}
