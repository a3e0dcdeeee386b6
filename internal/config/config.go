package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/badminton-tournament/internal/domain/pairing"
	"github.com/riskibarqy/badminton-tournament/internal/platform/logging"
	"github.com/riskibarqy/badminton-tournament/internal/platform/resilience"
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	ShutdownTimeout            time.Duration
	LogLevel                   logging.Level
	CORSAllowedOrigins         []string
	StorageDriver              string
	DBURL                      string
	DBDisablePreparedBinary    bool
	CacheEnabled               bool
	CacheTTL                   time.Duration
	StorageCircuit             resilience.CircuitBreakerConfig
	StorageKey                 string
	StorageBackupPrefix        string
	StorageSizeWarnBytes       int
	AutosaveEnabled            bool
	DefaultTournamentName      string
	Pairing                    pairing.Policy
	PairingSeed                int64
	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	UptraceCaptureRequestBody  bool
	UptraceRequestBodyMaxBytes int
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logLevel, err := logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_LOG_LEVEL: %w", err)
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}
	shutdownTimeout, err := time.ParseDuration(getEnv("APP_SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_SHUTDOWN_TIMEOUT: %w", err)
	}
	if shutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_SHUTDOWN_TIMEOUT must be > 0")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}
	uptraceCaptureRequestBody, err := strconv.ParseBool(getEnv("UPTRACE_CAPTURE_REQUEST_BODY", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_CAPTURE_REQUEST_BODY: %w", err)
	}
	uptraceRequestBodyMaxBytes, err := getEnvAsInt("UPTRACE_REQUEST_BODY_MAX_BYTES", 8192)
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_REQUEST_BODY_MAX_BYTES: %w", err)
	}
	if uptraceRequestBodyMaxBytes <= 0 {
		return Config{}, fmt.Errorf("UPTRACE_REQUEST_BODY_MAX_BYTES must be > 0")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	storageDriver, err := parseStorageDriver(getEnv("STORAGE_DRIVER", StorageDriverMemory))
	if err != nil {
		return Config{}, err
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if storageDriver == StorageDriverPostgres && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when STORAGE_DRIVER=postgres")
	}
	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	storageCircuitEnabled, err := strconv.ParseBool(getEnv("STORAGE_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STORAGE_CIRCUIT_ENABLED: %w", err)
	}
	storageCircuitFailureCount, err := getEnvAsInt("STORAGE_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse STORAGE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if storageCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("STORAGE_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	storageCircuitOpenTimeout, err := time.ParseDuration(getEnv("STORAGE_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STORAGE_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if storageCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("STORAGE_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	storageCircuitHalfOpenMaxReq, err := getEnvAsInt("STORAGE_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse STORAGE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if storageCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("STORAGE_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	storageKey := strings.TrimSpace(getEnv("STORAGE_KEY", "badminton_tournament"))
	storageBackupPrefix := strings.TrimSpace(getEnv("STORAGE_BACKUP_PREFIX", storageKey+"_backup_"))
	if storageBackupPrefix == storageKey {
		return Config{}, fmt.Errorf("STORAGE_BACKUP_PREFIX must differ from STORAGE_KEY")
	}
	storageSizeWarnBytes, err := getEnvAsInt("STORAGE_SIZE_WARN_BYTES", 4<<20)
	if err != nil {
		return Config{}, fmt.Errorf("parse STORAGE_SIZE_WARN_BYTES: %w", err)
	}
	if storageSizeWarnBytes <= 0 {
		return Config{}, fmt.Errorf("STORAGE_SIZE_WARN_BYTES must be > 0")
	}

	autosaveEnabled, err := strconv.ParseBool(getEnv("AUTOSAVE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse AUTOSAVE_ENABLED: %w", err)
	}

	singlesAttempts, err := getEnvAsInt("PAIRING_SINGLES_ATTEMPTS", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse PAIRING_SINGLES_ATTEMPTS: %w", err)
	}
	if singlesAttempts < 1 {
		return Config{}, fmt.Errorf("PAIRING_SINGLES_ATTEMPTS must be >= 1")
	}
	doublesAttempts, err := getEnvAsInt("PAIRING_DOUBLES_ATTEMPTS", 100)
	if err != nil {
		return Config{}, fmt.Errorf("parse PAIRING_DOUBLES_ATTEMPTS: %w", err)
	}
	if doublesAttempts < 1 {
		return Config{}, fmt.Errorf("PAIRING_DOUBLES_ATTEMPTS must be >= 1")
	}
	fallback, err := pairing.ParseFallback(getEnv("PAIRING_FALLBACK", string(pairing.FallbackSingles)))
	if err != nil {
		return Config{}, fmt.Errorf("parse PAIRING_FALLBACK: %w", err)
	}
	pairingSeed, err := strconv.ParseInt(getEnv("PAIRING_SEED", "0"), 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse PAIRING_SEED: %w", err)
	}

	cfg := Config{
		AppEnv:                  appEnv,
		ServiceName:             getEnv("APP_SERVICE_NAME", "badminton-tournament-api"),
		ServiceVersion:          getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:             readTimeout,
		WriteTimeout:            writeTimeout,
		ShutdownTimeout:         shutdownTimeout,
		LogLevel:                logLevel,
		CORSAllowedOrigins:      splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		StorageDriver:           storageDriver,
		DBURL:                   dbURL,
		DBDisablePreparedBinary: dbDisablePreparedBinary,
		CacheEnabled:            cacheEnabled,
		CacheTTL:                cacheTTL,
		StorageCircuit: resilience.CircuitBreakerConfig{
			Enabled:          storageCircuitEnabled,
			FailureThreshold: storageCircuitFailureCount,
			OpenTimeout:      storageCircuitOpenTimeout,
			HalfOpenMaxReq:   storageCircuitHalfOpenMaxReq,
		},
		StorageKey:            storageKey,
		StorageBackupPrefix:   storageBackupPrefix,
		StorageSizeWarnBytes:  storageSizeWarnBytes,
		AutosaveEnabled:       autosaveEnabled,
		DefaultTournamentName: strings.TrimSpace(getEnv("TOURNAMENT_DEFAULT_NAME", "Badminton Tournament")),
		Pairing: pairing.Policy{
			SinglesAttempts: singlesAttempts,
			DoublesAttempts: doublesAttempts,
			Fallback:        fallback,
		},
		PairingSeed:                pairingSeed,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		UptraceLogsEnabled:         uptraceLogsEnabled,
		UptraceCaptureRequestBody:  uptraceCaptureRequestBody,
		UptraceRequestBodyMaxBytes: uptraceRequestBodyMaxBytes,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.StorageKey == "" {
		return Config{}, fmt.Errorf("STORAGE_KEY cannot be empty")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

func parseStorageDriver(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case StorageDriverMemory, StorageDriverPostgres:
		return value, nil
	default:
		return "", fmt.Errorf("invalid STORAGE_DRIVER %q: valid values are %s, %s", v, StorageDriverMemory, StorageDriverPostgres)
	}
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
