package atelier

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/atelierhq/atelier/api/pkg/cleanup"
	"github.com/atelierhq/atelier/api/pkg/config"
	"github.com/atelierhq/atelier/api/pkg/docker"
	"github.com/atelierhq/atelier/api/pkg/filestore"
	"github.com/atelierhq/atelier/api/pkg/pubsub"
	"github.com/atelierhq/atelier/api/pkg/registry"
	"github.com/atelierhq/atelier/api/pkg/server"
	"github.com/atelierhq/atelier/api/pkg/store"
	"github.com/atelierhq/atelier/api/pkg/system"
	"github.com/atelierhq/atelier/api/pkg/toolserver"
	"github.com/atelierhq/atelier/api/pkg/types"
	"github.com/atelierhq/atelier/api/pkg/workspace"
)

func NewServeConfig() (*config.ServerConfig, error) {
	serverConfig, err := config.LoadServerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load server config: %v", err)
	}

	if serverConfig.FileStore.SigningSecret == "" {
		serverConfig.FileStore.SigningSecret = system.GenerateUUID()
	}

	return &serverConfig, nil
}

func newServeCmd() *cobra.Command {
	serveConfig, err := NewServeConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create serve options")
	}

	envHelpText := generateEnvHelpText(serveConfig, "")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the atelier api server.",
		Long:  "Start the atelier api server.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := serve(cmd, serveConfig)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to run server")
			}
			return nil
		},
	}

	serveCmd.Long += "\n\nEnvironment Variables:\n\n" + envHelpText

	return serveCmd
}

func getFilestore(ctx context.Context, cfg *config.ServerConfig) (filestore.FileStore, error) {
	switch cfg.FileStore.Type {
	case types.FileStoreTypeLocalFS:
		if cfg.FileStore.LocalFSPath == "" {
			return nil, fmt.Errorf("local fs path is required")
		}
		return filestore.NewLocalFS(cfg.FileStore.LocalFSPath)
	case types.FileStoreTypeGCS:
		if cfg.FileStore.GCSKeyBase64 != "" {
			keyfile, err := writeGCSKeyFile(cfg.FileStore.GCSKeyBase64)
			if err != nil {
				return nil, err
			}
			cfg.FileStore.GCSKeyFile = keyfile
		}
		if cfg.FileStore.GCSKeyFile == "" {
			return nil, fmt.Errorf("gcs key is required")
		}
		if _, err := os.Stat(cfg.FileStore.GCSKeyFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("gcs key file does not exist")
		}
		return filestore.NewGCSStorage(ctx, cfg.FileStore.GCSBucket, cfg.FileStore.GCSKeyFile)
	default:
		return nil, fmt.Errorf("unknown filestore type: %s", cfg.FileStore.Type)
	}
}

func writeGCSKeyFile(keyBase64 string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(keyBase64)
	if err != nil {
		return "", fmt.Errorf("failed to decode GCS key: %v", err)
	}
	tmpfile, err := os.CreateTemp("", "gcskey")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file for GCS key: %v", err)
	}
	defer tmpfile.Close()
	if _, err := tmpfile.Write(decoded); err != nil {
		return "", fmt.Errorf("failed to write GCS key to temporary file: %v", err)
	}
	return tmpfile.Name(), nil
}

func serve(cmd *cobra.Command, cfg *config.ServerConfig) error {
	system.SetupLogging()

	// Context ensures main goroutine waits until killed with ctrl+c:
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	db, err := store.NewPostgresStore(cfg.Store)
	if err != nil {
		return err
	}

	ps, err := pubsub.NewInMemoryNats(cfg.PubSub)
	if err != nil {
		return err
	}
	defer ps.Close()

	fs, err := getFilestore(ctx, cfg)
	if err != nil {
		return err
	}

	runtime, err := docker.NewRuntime(cfg.Workspaces)
	if err != nil {
		return err
	}
	defer runtime.Close()

	if err := runtime.IsAvailable(ctx); err != nil {
		return fmt.Errorf("docker is not reachable: %w", err)
	}

	// warm the session image in the background; container creation pulls
	// it on demand anyway, this just keeps the first session fast
	go func() {
		if err := runtime.PullImage(ctx, cfg.Workspaces.SessionImage); err != nil {
			log.Warn().Err(err).Str("image", cfg.Workspaces.SessionImage).Msg("session image pre-pull failed")
		}
	}()

	tools := toolserver.NewClient(cfg.Workspaces.ToolServerPort)
	reg := registry.New()
	queue := cleanup.NewQueue(cfg.Cleanup, db)

	sessions := workspace.NewManager(workspace.ManagerConfig{
		Config:     cfg.Workspaces,
		Store:      db,
		Runtime:    runtime,
		ToolServer: tools,
		Registry:   reg,
		FileStore:  fs,
		PubSub:     ps,
		Cleanup:    queue,
	})

	processor := cleanup.NewProcessor(cleanup.ProcessorConfig{
		Store:        db,
		Sessions:     sessions,
		Runtime:      runtime,
		Prober:       tools,
		ProbeTimeout: cfg.Workspaces.HealthProbeTimeout,
	})
	dispatcher := cleanup.NewDispatcher(cfg.Cleanup, db, processor)

	sweeper, err := cleanup.NewSweeper(cleanup.SweeperConfig{
		Config:       cfg.Cleanup,
		Store:        db,
		Queue:        queue,
		Prober:       tools,
		ProbeTimeout: cfg.Workspaces.HealthProbeTimeout,
	})
	if err != nil {
		return err
	}

	activitySub, err := sessions.StartActivityListener(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := activitySub.Unsubscribe(); err != nil {
			log.Warn().Err(err).Msg("failed to unsubscribe activity listener")
		}
	}()

	// reconcile the database against whatever containers survived the
	// restart before any traffic or queue work touches them
	if err := sessions.RecoverSessions(ctx); err != nil {
		return fmt.Errorf("session recovery failed: %w", err)
	}

	go dispatcher.Run(ctx)

	if err := sweeper.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := sweeper.Stop(); err != nil {
			log.Warn().Err(err).Msg("failed to stop sweeper")
		}
	}()

	apiServer, err := server.NewServer(cfg, db, ps, fs, runtime, tools, sessions, queue, dispatcher)
	if err != nil {
		return err
	}

	log.Info().Msgf("Atelier server listening on %s:%d", cfg.WebServer.Host, cfg.WebServer.Port)

	go func() {
		err := apiServer.ListenAndServe(ctx)
		if err != nil {
			panic(err)
		}
	}()

	<-ctx.Done()
	return nil
}
