package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Environment contains the imported environment variables.
type Environment struct {
	// Debug vs Deploy
	Mode string `default:"dev"`
	// Port to listen on
	Addr string `default:":4040"`
	// Maximum number of record IDs per batch
	IngestChunkSize int `default:"3" split_words:"true"`
	// Maximum number of record IDs accepted in a single ingestion request
	IngestMaxRecords int `default:"1000" split_words:"true"`
	// Largest accepted record ID value
	IngestMaxIDValue int64 `default:"1000000007" split_words:"true"`
	// Minimum spacing between batch dispatches
	DispatchRateLimitSec int `default:"5" split_words:"true"`
	// Number of dispatch workers sharing the rate limiter and queue
	DispatchParallelism int `default:"1" split_words:"true"`
	// Batch processor backend - one of simulated, http, graphql
	ProcessorBackend string `default:"simulated" split_words:"true"`
	// Downstream processor address including port
	ProcessorAddr string `default:"http://localhost:4200" split_words:"true"`
	// Downstream processor request timeout
	ProcessorTimeoutSec int `default:"10" split_words:"true"`
	// Simulated processor per-ID delay
	ProcessorDelayMs int `default:"100" split_words:"true"`
	// Use persisted (bbolt) status store or default (memory only) store.
	StatusStorePersisted bool `default:"false" split_words:"true"`
	// Directory to store status data in when the persisted store is used.
	StatusStoreDir string `default:"./" split_words:"true"`
	// File name of the status store when the persisted store is used.
	StatusStoreName string `default:"ingest_status.db" split_words:"true"`
	// Directory to store the dead letter queue data in.
	DeadLetterDir string `default:"./" split_words:"true"`
	// Name of the dead letter queue.
	DeadLetterName string `default:"dead_letter_queue" split_words:"true"`
}

// Recognized processor backends.
const (
	// ProcessorSimulated runs batches through the built-in simulated worker.
	ProcessorSimulated = "simulated"
	// ProcessorHTTP forwards batches to a downstream REST endpoint.
	ProcessorHTTP = "http"
	// ProcessorGraphQL forwards batches to a downstream GraphQL endpoint.
	ProcessorGraphQL = "graphql"
)

func (e Environment) String() string {
	settings, err := json.MarshalIndent(e, "", "    ")
	if err != nil {
		return fmt.Errorf("Failed to marshal env: %v", err).Error()
	}
	return fmt.Sprintf("Environment Settings:\n%s\n", string(settings))
}

// Load imports the environment variables and returns them in an Environment.
func Load(envFile string) (*Environment, error) {
	testEnv := os.Getenv("WM_MODE")
	// if no env var in existing environment, load environment file from the .env file,
	// otherwise (in production) just check existing host environment
	if "" == testEnv {
		err := godotenv.Load(envFile)
		if err != nil {
			return nil, errors.Wrapf(err, "Error loading %s file", envFile)
		}
	}

	var env Environment
	err := envconfig.Process("wm", &env)
	if err != nil {
		return nil, errors.Wrap(err, "Error processing environment config")
	}
	return &env, err
}
