package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/duccv/medrecords-api/config"
)

func TestBuildMongoURI(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MongoConfig
		want string
	}{
		{
			name: "explicit uri wins",
			cfg:  config.MongoConfig{URI: "mongodb://example:27017/x", Hosts: []string{"ignored"}},
			want: "mongodb://example:27017/x",
		},
		{
			name: "single with credentials",
			cfg: config.MongoConfig{
				Type: "single", Hosts: []string{"db"}, Ports: []int{27018},
				Database: "medrecords", Username: "root", Password: "p@ss", AuthSource: "admin",
			},
			want: "mongodb://root:p%40ss@db:27018/medrecords?authSource=admin",
		},
		{
			name: "single defaults",
			cfg:  config.MongoConfig{Database: "medrecords"},
			want: "mongodb://localhost:27017/medrecords",
		},
		{
			name: "replica set",
			cfg: config.MongoConfig{
				Type: "replica_set", Hosts: []string{"a", "b"}, Ports: []int{1, 2},
				ReplicaSetName: "rs0", Database: "medrecords",
			},
			want: "mongodb://a:1,b:2/medrecords?replicaSet=rs0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildMongoURI(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildMongoURIErrors(t *testing.T) {
	_, err := BuildMongoURI(config.MongoConfig{Type: "cluster"})
	assert.Error(t, err)

	_, err = BuildMongoURI(config.MongoConfig{Type: "replica_set", Hosts: []string{"a"}})
	assert.Error(t, err)

	_, err = BuildMongoURI(config.MongoConfig{Type: "replica_set"})
	assert.Error(t, err)

	_, err = BuildMongoURI(config.MongoConfig{
		Type: "sharded", Hosts: []string{"a", "b", "c"}, Ports: []int{1, 2},
	})
	assert.Error(t, err)
}

func TestReadPreference(t *testing.T) {
	assert.Equal(t, readpref.PrimaryMode, readPreference(MongoSingle).Mode())
	assert.Equal(t, readpref.SecondaryPreferredMode, readPreference(MongoReplicaSet).Mode())
	assert.Equal(t, readpref.NearestMode, readPreference(MongoSharded).Mode())
}

func TestNewMongoDBDefaults(t *testing.T) {
	m := NewMongoDB(config.MongoConfig{})
	assert.Equal(t, 30, m.config.ConnectTimeout)
	assert.Equal(t, "single", m.config.Type)
	assert.False(t, m.IsConnected())
}

func TestHealthCheckBeforeConnect(t *testing.T) {
	checks := NewMongoDB(config.MongoConfig{Type: string(MongoReplicaSet)}).HealthCheck(context.Background())

	require.Len(t, checks, 2)
	assert.Error(t, checks["write_client"])
	assert.Error(t, checks["read_client"])
}
