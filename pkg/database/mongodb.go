// Package database manages MongoDB connections for the service.
package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"github.com/duccv/medrecords-api/config"
)

// MongoDeployment is the topology the service connects to.
type MongoDeployment string

const (
	MongoSingle     MongoDeployment = "single"
	MongoReplicaSet MongoDeployment = "replica_set"
	MongoSharded    MongoDeployment = "sharded"
)

const defaultMongoPort = 27017

// MongoDB holds a write client pinned to the primary and a read client whose
// read preference follows the deployment. For a single instance both are the
// same client.
type MongoDB struct {
	config      config.MongoConfig
	readClient  *mongo.Client
	writeClient *mongo.Client
	readDB      *mongo.Database
	writeDB     *mongo.Database
	logger      *zap.Logger
}

func NewMongoDB(cfg config.MongoConfig) *MongoDB {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 30
	}
	if cfg.Type == "" {
		cfg.Type = string(MongoSingle)
	}
	return &MongoDB{
		config: cfg,
		logger: zap.L(),
	}
}

// Connect dials the configured deployment and pings both clients.
func (m *MongoDB) Connect(ctx context.Context) error {
	m.logger.Info("Connecting to MongoDB",
		zap.String("deployment_type", m.config.Type),
		zap.String("database", m.config.Database),
		zap.Int("connect_timeout_seconds", m.config.ConnectTimeout))

	ctx, cancel := context.WithTimeout(ctx, time.Duration(m.config.ConnectTimeout)*time.Second)
	defer cancel()

	deployment := MongoDeployment(m.config.Type)
	uri, err := BuildMongoURI(m.config)
	if err != nil {
		return err
	}

	writeClient, err := m.createClient(ctx, uri, readpref.Primary(), true)
	if err != nil {
		return fmt.Errorf("create write client: %w", err)
	}
	m.writeClient = writeClient
	m.writeDB = writeClient.Database(m.config.Database)

	if deployment == MongoSingle {
		m.readClient = writeClient
		m.readDB = m.writeDB
	} else {
		readClient, err := m.createClient(ctx, uri, readPreference(deployment), false)
		if err != nil {
			_ = writeClient.Disconnect(ctx)
			return fmt.Errorf("create read client: %w", err)
		}
		m.readClient = readClient
		m.readDB = readClient.Database(m.config.Database)
	}

	m.logger.Info("Connected to MongoDB", zap.String("deployment_type", m.config.Type))
	return nil
}

func readPreference(d MongoDeployment) *readpref.ReadPref {
	switch d {
	case MongoReplicaSet:
		return readpref.SecondaryPreferred()
	case MongoSharded:
		return readpref.Nearest()
	default:
		return readpref.Primary()
	}
}

// BuildMongoURI returns cfg.URI when set, otherwise assembles a connection
// string from hosts, ports and credentials.
func BuildMongoURI(cfg config.MongoConfig) (string, error) {
	if cfg.URI != "" {
		return cfg.URI, nil
	}

	deployment := MongoDeployment(cfg.Type)
	switch deployment {
	case "", MongoSingle, MongoReplicaSet, MongoSharded:
	default:
		return "", fmt.Errorf("unsupported MongoDB deployment: %s", cfg.Type)
	}

	hosts := cfg.Hosts
	if len(hosts) == 0 {
		if deployment == MongoReplicaSet || deployment == MongoSharded {
			return "", errors.New("mongo hosts not configured")
		}
		hosts = []string{"localhost"}
	}
	if deployment == MongoSingle {
		hosts = hosts[:1]
	}
	if len(cfg.Ports) > 1 && len(cfg.Ports) != len(cfg.Hosts) {
		return "", errors.New("number of mongo ports must match number of hosts")
	}
	if deployment == MongoReplicaSet && cfg.ReplicaSetName == "" {
		return "", errors.New("replica set name not configured")
	}

	hostPorts := make([]string, 0, len(hosts))
	for i, host := range hosts {
		port := defaultMongoPort
		switch {
		case i < len(cfg.Ports):
			port = cfg.Ports[i]
		case len(cfg.Ports) == 1:
			port = cfg.Ports[0]
		}
		hostPorts = append(hostPorts, host+":"+strconv.Itoa(port))
	}

	u := url.URL{
		Scheme: "mongodb",
		Host:   strings.Join(hostPorts, ","),
		Path:   "/" + cfg.Database,
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}

	q := url.Values{}
	if deployment == MongoReplicaSet {
		q.Set("replicaSet", cfg.ReplicaSetName)
	}
	if cfg.AuthSource != "" {
		q.Set("authSource", cfg.AuthSource)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (m *MongoDB) createClient(
	ctx context.Context,
	uri string,
	pref *readpref.ReadPref,
	write bool,
) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri)
	m.configureClientOptions(opts, write)
	opts.SetReadPreference(pref)

	client, err := mongo.Connect(opts)
	if err != nil {
		m.logger.Error("Failed to connect to MongoDB", zap.Bool("write", write), zap.Error(err))
		return nil, err
	}

	if err := client.Ping(ctx, pref); err != nil {
		m.logger.Error("Failed to ping MongoDB", zap.Bool("write", write), zap.Error(err))
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

func (m *MongoDB) configureClientOptions(opts *options.ClientOptions, write bool) {
	if m.config.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(m.config.MaxPoolSize)
	}
	if m.config.MinPoolSize > 0 {
		opts.SetMinPoolSize(m.config.MinPoolSize)
	}
	if m.config.MaxConnIdleTime > 0 {
		opts.SetMaxConnIdleTime(time.Duration(m.config.MaxConnIdleTime) * time.Second)
	}

	opts.SetRetryReads(true)
	opts.SetRetryWrites(write)
	opts.SetConnectTimeout(time.Duration(m.config.ConnectTimeout) * time.Second)
	opts.SetServerSelectionTimeout(5 * time.Second)
}

// Close disconnects both clients.
func (m *MongoDB) Close(ctx context.Context) error {
	var errs []error

	if m.writeClient != nil && m.writeClient != m.readClient {
		if err := m.writeClient.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("write client disconnect: %w", err))
		}
	}
	if m.readClient != nil {
		if err := m.readClient.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("read client disconnect: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		m.logger.Error("MongoDB disconnect completed with errors", zap.Error(err))
		return err
	}
	m.logger.Info("MongoDB connections closed")
	return nil
}

// HealthCheck reports per-component status; a nil value means healthy.
func (m *MongoDB) HealthCheck(ctx context.Context) map[string]error {
	result := make(map[string]error)

	if m.writeClient == nil {
		result["write_client"] = errors.New("write client not initialized")
	} else {
		result["write_client"] = m.writeClient.Ping(ctx, readpref.Primary())
	}

	if m.readClient == nil {
		result["read_client"] = errors.New("read client not initialized")
	} else {
		result["read_client"] = m.readClient.Ping(ctx, readPreference(MongoDeployment(m.config.Type)))
	}

	if MongoDeployment(m.config.Type) == MongoReplicaSet && m.writeClient != nil {
		result["replica_set_status"] = m.checkReplicaSetStatus(ctx)
	}
	return result
}

func (m *MongoDB) checkReplicaSetStatus(ctx context.Context) error {
	var result bson.M
	err := m.writeClient.Database("admin").RunCommand(ctx, bson.D{
		{Key: "replSetGetStatus", Value: 1},
	}).Decode(&result)
	if err != nil {
		return fmt.Errorf("get replica set status: %w", err)
	}
	if members, ok := result["members"].(bson.A); ok && len(members) > 0 {
		return nil
	}
	return errors.New("no replica set members found")
}

// ReadDB is the database handle for queries.
func (m *MongoDB) ReadDB() *mongo.Database {
	return m.readDB
}

// WriteDB is the database handle for writes.
func (m *MongoDB) WriteDB() *mongo.Database {
	return m.writeDB
}

func (m *MongoDB) IsConnected() bool {
	return m.writeClient != nil && m.readClient != nil
}
