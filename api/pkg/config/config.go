package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/atelierhq/atelier/api/pkg/types"
)

type ServerConfig struct {
	WebServer  WebServer
	Store      Store
	FileStore  FileStore
	PubSub     PubSub
	Workspaces Workspaces
	Cleanup    Cleanup
}

func LoadServerConfig() (ServerConfig, error) {
	var cfg ServerConfig
	err := envconfig.Process("", &cfg)
	if err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

type WebServer struct {
	URL  string `envconfig:"SERVER_URL" description:"The URL the api server is listening on."`
	Host string `envconfig:"SERVER_HOST" default:"0.0.0.0" description:"The host to bind the api server to."`
	Port int    `envconfig:"SERVER_PORT" default:"8080" description:""`

	// The gateway terminates auth and forwards the authenticated user in
	// this header. Requests without it are rejected.
	UserHeader string `envconfig:"SERVER_USER_HEADER" default:"X-Atelier-User-ID"`
}

type Store struct {
	Host     string `envconfig:"POSTGRES_HOST" description:"The host to connect to the postgres server."`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432" description:"The port to connect to the postgres server."`
	Database string `envconfig:"POSTGRES_DATABASE" default:"atelier" description:"The database to connect to the postgres server."`
	Username string `envconfig:"POSTGRES_USER" description:"The username to connect to the postgres server."`
	Password string `envconfig:"POSTGRES_PASSWORD" description:"The password to connect to the postgres server."`
	SSL      bool   `envconfig:"POSTGRES_SSL" default:"false"`
	Schema   string `envconfig:"POSTGRES_SCHEMA"` // Defaults to public

	AutoMigrate     bool          `envconfig:"DATABASE_AUTO_MIGRATE" default:"true" description:"Should we automatically run the migrations?"`
	MaxConns        int           `envconfig:"DATABASE_MAX_CONNS" default:"50"`
	IdleConns       int           `envconfig:"DATABASE_IDLE_CONNS" default:"25"`
	MaxConnLifetime time.Duration `envconfig:"DATABASE_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `envconfig:"DATABASE_MAX_CONN_IDLE_TIME" default:"1m"`
}

type FileStore struct {
	Type         types.FileStoreType `envconfig:"FILESTORE_TYPE" default:"fs" description:"What type of filestore should we use (fs | gcs)."`
	LocalFSPath  string              `envconfig:"FILESTORE_LOCALFS_PATH" default:"/tmp/atelier/filestore" description:"The local path that is the root for the local fs filestore."`
	GCSKeyBase64 string              `envconfig:"FILESTORE_GCS_KEY_BASE64" description:"The base64 encoded service account json file for GCS."`
	GCSKeyFile   string              `envconfig:"FILESTORE_GCS_KEY_FILE" description:"The local path to the service account json file for GCS."`
	GCSBucket    string              `envconfig:"FILESTORE_GCS_BUCKET" description:"The bucket we are storing things in GCS."`

	// SigningSecret signs archive download links so browsers can fetch
	// them without auth headers. Empty disables presigned downloads.
	SigningSecret string `envconfig:"FILESTORE_SIGNING_SECRET" description:"HMAC secret for presigned download URLs."`
}

type PubSub struct {
	StoreDir string `envconfig:"NATS_STORE_DIR" default:"/tmp/atelier/nats" description:"The directory to store nats data."`
	Server   struct {
		Host       string `envconfig:"NATS_SERVER_HOST" default:"127.0.0.1" description:"The host to bind the NATS server to."`
		Port       int    `envconfig:"NATS_SERVER_PORT" default:"4222" description:"The port to bind the NATS server to."`
		Token      string `envconfig:"NATS_SERVER_TOKEN" description:"The authentication token for the NATS server."`
		MaxPayload int    `envconfig:"NATS_SERVER_MAX_PAYLOAD" default:"33554432" description:"The maximum payload size in bytes (default 32MB)."`
		JetStream  bool   `envconfig:"NATS_SERVER_JETSTREAM" default:"true" description:"Whether to enable JetStream."`
	}
}

type Workspaces struct {
	// SessionImage is the image every session container runs unless the
	// create request overrides it.
	SessionImage string `envconfig:"WORKSPACE_SESSION_IMAGE" default:"atelierhq/workspace-base:latest"`

	// NetworkName is the Docker network sessions attach to. Containers are
	// addressed by name on it, so the api server must share it.
	NetworkName string `envconfig:"WORKSPACE_DOCKER_NETWORK" default:"atelier_default"`

	// AppPort is the in-container dev preview port, ToolServerPort the
	// in-container tool server port. Both are fixed by the session image.
	AppPort        int `envconfig:"WORKSPACE_APP_PORT" default:"3000"`
	ToolServerPort int `envconfig:"WORKSPACE_TOOL_SERVER_PORT" default:"4321"`

	// Host ports for sessions are drawn from [PortRangeStart, PortRangeEnd).
	PortRangeStart int `envconfig:"WORKSPACE_PORT_RANGE_START" default:"10000"`
	PortRangeEnd   int `envconfig:"WORKSPACE_PORT_RANGE_END" default:"11000"`

	// PreviewHost is the hostname preview URLs point at.
	PreviewHost string `envconfig:"WORKSPACE_PREVIEW_HOST" default:"localhost"`

	CPULimit    float64 `envconfig:"WORKSPACE_CPU_LIMIT" default:"2"`
	MemoryLimit string  `envconfig:"WORKSPACE_MEMORY_LIMIT" default:"2GB"`
	PidsLimit   int64   `envconfig:"WORKSPACE_PIDS_LIMIT" default:"512"`

	// InitializeTimeout bounds how long we wait for the tool server to
	// come up before the session is marked failed.
	InitializeTimeout  time.Duration `envconfig:"WORKSPACE_INITIALIZE_TIMEOUT" default:"120s"`
	HealthProbeTimeout time.Duration `envconfig:"WORKSPACE_HEALTH_PROBE_TIMEOUT" default:"5s"`
	StopTimeout        time.Duration `envconfig:"WORKSPACE_STOP_TIMEOUT" default:"10s"`
	RemoveTimeout      time.Duration `envconfig:"WORKSPACE_REMOVE_TIMEOUT" default:"30s"`

	// GracePeriod is how long a session with no connections stays up
	// before cleanup. BackgroundTimeout applies instead when the client
	// reported itself backgrounded.
	GracePeriod       time.Duration `envconfig:"WORKSPACE_GRACE_PERIOD" default:"60s"`
	BackgroundTimeout time.Duration `envconfig:"WORKSPACE_BACKGROUND_TIMEOUT" default:"30m"`
}

type Cleanup struct {
	MaxAttempts int           `envconfig:"CLEANUP_MAX_ATTEMPTS" default:"3"`
	BackoffBase time.Duration `envconfig:"CLEANUP_BACKOFF_BASE" default:"2s"`

	// Concurrency bounds workers per queue, GlobalConcurrency the whole
	// cleanup subsystem including sweeps.
	Concurrency       int           `envconfig:"CLEANUP_CONCURRENCY" default:"3"`
	GlobalConcurrency int           `envconfig:"CLEANUP_GLOBAL_CONCURRENCY" default:"5"`
	PollInterval      time.Duration `envconfig:"CLEANUP_POLL_INTERVAL" default:"2s"`

	CompletedRetention time.Duration `envconfig:"CLEANUP_COMPLETED_RETENTION" default:"24h"`
	FailedRetention    time.Duration `envconfig:"CLEANUP_FAILED_RETENTION" default:"168h"`
	OrphanRetention    time.Duration `envconfig:"CLEANUP_ORPHAN_RETENTION" default:"1h"`

	HealthCheckInterval    time.Duration `envconfig:"CLEANUP_HEALTH_CHECK_INTERVAL" default:"2m"`
	OrphanSweepInterval    time.Duration `envconfig:"CLEANUP_ORPHAN_SWEEP_INTERVAL" default:"10m"`
	OrphanMaxAge           time.Duration `envconfig:"CLEANUP_ORPHAN_MAX_AGE" default:"24h"`
	RetentionSweepInterval time.Duration `envconfig:"CLEANUP_RETENTION_SWEEP_INTERVAL" default:"1h"`
}
