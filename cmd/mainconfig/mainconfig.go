package mainconfig

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"

	appconfig "github.com/wolfman30/waterbot/internal/config"
	"github.com/wolfman30/waterbot/internal/users"
	"github.com/wolfman30/waterbot/pkg/logging"
)

// LoadAWSConfig centralizes AWS SDK initialization so every binary shares the
// same LocalStack/production wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	return config.LoadDefaultConfig(ctx, loaders...)
}

// NewDynamoClient builds a DynamoDB client, honoring AWS_ENDPOINT_OVERRIDE.
func NewDynamoClient(awsCfg aws.Config, cfg *appconfig.Config) *dynamodb.Client {
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint := strings.TrimSpace(cfg.AWSEndpointOverride); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// UserStore is an opened users.Store together with its lifecycle hooks.
type UserStore struct {
	users.Store
	// Ping probes the backend; nil when the backend has no cheap probe.
	Ping  func(ctx context.Context) error
	close func()
}

// Close releases the backend connections.
func (s *UserStore) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenUserStore connects the backend selected by USER_STORE.
func OpenUserStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*UserStore, error) {
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.UserStore {
	case appconfig.UserStorePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("mainconfig: connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("mainconfig: ping postgres: %w", err)
		}
		logger.Info("user store ready", "backend", cfg.UserStore)
		return &UserStore{Store: users.NewPostgresStore(pool), Ping: pool.Ping, close: pool.Close}, nil

	case appconfig.UserStoreDynamoDB:
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("mainconfig: load aws config: %w", err)
		}
		logger.Info("user store ready", "backend", cfg.UserStore, "table", cfg.DynamoUsersTable)
		return &UserStore{Store: users.NewDynamoStore(NewDynamoClient(awsCfg, cfg), cfg.DynamoUsersTable)}, nil

	case appconfig.UserStoreMemory, "":
		logger.Warn("using in-memory user store; frequencies are lost on restart")
		return &UserStore{Store: users.NewMemoryStore()}, nil
	}

	return nil, fmt.Errorf("mainconfig: unknown user store %q", cfg.UserStore)
}
