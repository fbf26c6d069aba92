package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"yatube/cache"
	"yatube/crud"
	"yatube/domain"
	"yatube/forms"
	"yatube/http"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	// Prod ensures that a config file is provided before the application starts.
	Prod       bool
	ConfigPath string
}

// NewRootCommand creates the root command of the yatube CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "yatube",
		Short:         "Yatube - a small blogging platform",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags
	cmd.PersistentFlags().BoolVar(&opts.Prod, "prod", false, "require a config file and log in production format")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", ".config.json", "path of the config file")

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewCacheCommand(opts))
	cmd.AddCommand(NewGroupCommand(opts))
	cmd.AddCommand(NewPostCommand(opts))

	return cmd
}

// app bundles everything a command needs: configuration, logger, database and services.
type app struct {
	config   Config
	logger   *zap.Logger
	db       *DB
	services *crud.Services
}

// newApp loads the configuration, opens the database and starts the crud services.
func newApp(opts *RootOptions) (*app, error) {
	config, err := LoadConfig(viper.New(), opts.ConfigPath, opts.Prod)
	if err != nil {
		return nil, err
	}
	if opts.Prod {
		config.Env = "prod"
	}

	logger, err := newLogger(config.IsProd())
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)

	// Open a database connection.
	db := NewDB(config.Database)
	if err := Open(db, config.IsProd()); err != nil {
		return nil, err
	}

	// Start the crud services.
	services, err := crud.NewServices(
		db.Gorm,
		crud.WithUser(config.Pepper, config.HMACKey),
		crud.WithGroup(),
		crud.WithPost(config.PostsPerPage),
		crud.WithComment(),
		crud.WithFollow(),
		crud.WithImage(config.MediaRoot),
	)
	if err != nil {
		_ = Close(db)
		return nil, err
	}
	return &app{config: config, logger: logger, db: db, services: services}, nil
}

func (a *app) close() {
	if err := Close(a.db); err != nil {
		a.logger.Warn("err closing database", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func newLogger(isProd bool) (*zap.Logger, error) {
	if isProd {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// newPageCache builds the configured page cache. The returned function releases its resources.
func newPageCache(cfg CacheConfig) (domain.PageCache, func() error, error) {
	switch cfg.Driver {
	case "memory":
		return cache.NewMemory(), func() error { return nil }, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return cache.NewRedis(client, cache.DefaultPrefix), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cache driver %q", cfg.Driver)
	}
}

// runWithApp wraps a command's run function with starting and closing the app.
func runWithApp(opts *RootOptions, run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(opts)
		if err != nil {
			return err
		}
		defer a.close()
		return run(cmd, args, a)
	}
}

// NewServeCommand creates the command running the web server.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the database and run the web server",
		Args:  cobra.NoArgs,
		RunE: runWithApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.services.AutoMigrate(); err != nil {
				return err
			}

			pages, closeCache, err := newPageCache(a.config.Cache)
			if err != nil {
				return err
			}
			defer closeCache()

			// Set up a webserver.
			server, err := http.NewServer(a.services, pages, a.logger, http.Config{
				IsProd:    a.config.IsProd(),
				CSRFKey:   a.config.CSRFKey,
				MediaRoot: a.config.MediaRoot,
				CacheTTL:  a.config.Cache.TTL,
			})
			if err != nil {
				return err
			}

			// Serve the app until interrupted.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// SIGHUP clears the page cache of the running server.
			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)
			go clearOnSignal(ctx, pages, hup, a.logger)

			return server.Run(ctx, a.config.Port)
		}),
	}
}

// clearOnSignal clears pages whenever a signal arrives on sig, until ctx is done.
func clearOnSignal(ctx context.Context, pages domain.PageCache, sig <-chan os.Signal, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			if err := pages.Clear(ctx); err != nil {
				logger.Warn("err clearing page cache", zap.Error(err))
				continue
			}
			logger.Info("page cache cleared")
		}
	}
}

// NewMigrateCommand creates the command running database migrations.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations for all tables",
		Args:  cobra.NoArgs,
		RunE: runWithApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.services.AutoMigrate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrated")
			return nil
		}),
	}
}

// NewResetCommand creates the command dropping and recreating all tables.
func NewResetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Drop all tables and rebuild them",
		Args:  cobra.NoArgs,
		RunE: runWithApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.services.DestructiveReset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "reset")
			return nil
		}),
	}
}

// NewCacheCommand creates the cache command group.
func NewCacheCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the page cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached page",
		Long: `Drop every cached page.

With the redis driver the shared cache is cleared directly. The memory driver
keeps its pages inside the server process: send that process SIGHUP instead.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig(viper.New(), opts.ConfigPath, opts.Prod)
			if err != nil {
				return err
			}
			if config.Cache.Driver == "memory" {
				fmt.Fprintln(cmd.OutOrStdout(), "the memory cache lives inside the server process, send it SIGHUP to clear it")
				return nil
			}
			pages, closeCache, err := newPageCache(config.Cache)
			if err != nil {
				return err
			}
			defer closeCache()
			if err := pages.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
			return nil
		},
	})
	return cmd
}

// NewGroupCommand creates the group command group. Groups have no web form;
// they are managed from the command line.
func NewGroupCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage groups",
	}

	var in forms.GroupInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a group",
		Args:  cobra.NoArgs,
		RunE: runWithApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			data, err := forms.New(a.services.Group, a.services.Image).Group(in)
			if err != nil {
				return err
			}
			group := &domain.Group{
				Title:       data.Title,
				Slug:        data.Slug,
				Description: data.Description,
			}
			if err := a.services.Group.Create(group); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created group %d %s\n", group.ID, group.Slug)
			return nil
		}),
	}
	create.Flags().StringVar(&in.Title, "title", "", "title of the group")
	create.Flags().StringVar(&in.Slug, "slug", "", "unique slug used in the group's url")
	create.Flags().StringVar(&in.Description, "description", "", "description of the group")
	cmd.AddCommand(create)
	return cmd
}

// NewPostCommand creates the post command group.
func NewPostCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Manage posts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a post, its comments and its image",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid post id %q", args[0])
			}
			post, err := a.services.Post.ByID(id)
			if err != nil {
				return err
			}
			if err := a.services.Post.Delete(post); err != nil {
				return err
			}
			if err := a.services.Image.Delete(post.Image); err != nil {
				a.logger.Warn("err removing image", zap.String("image", post.Image), zap.Error(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted post %d\n", post.ID)
			return nil
		}),
	})
	return cmd
}
