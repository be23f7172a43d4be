// Package testenv starts throwaway backing services in Docker for the
// integration tests.
package testenv

import (
	"context"
	"fmt"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoUser     = "root"
	mongoPassword = "password"
)

// Container is a running image plus the pool that owns it.
type Container struct {
	pool     *dockertest.Pool
	resource *dockertest.Resource
}

// Start runs repository:tag with the given environment. The container is
// removed when stopped and never restarted.
func Start(repository, tag string, env ...string) (*Container, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("testenv: docker pool: %w", err)
	}
	if err := pool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("testenv: docker unreachable: %w", err)
	}
	res, err := pool.RunWithOptions(&dockertest.RunOptions{Repository: repository, Tag: tag, Env: env},
		func(hc *docker.HostConfig) {
			hc.AutoRemove = true
			hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
		})
	if err != nil {
		return nil, fmt.Errorf("testenv: start %s:%s: %w", repository, tag, err)
	}
	return &Container{pool: pool, resource: res}, nil
}

// HostPort returns host:port for a container port such as "6379/tcp".
func (c *Container) HostPort(port string) string {
	return c.resource.GetHostPort(port)
}

// Retry calls op with backoff until it succeeds or the pool gives up.
func (c *Container) Retry(op func() error) error {
	return c.pool.Retry(op)
}

// Stop purges the container.
func (c *Container) Stop() error {
	return c.pool.Purge(c.resource)
}

// Redis starts a redis container for one test and returns a connected client.
// Both are released by t.Cleanup.
func Redis(t testing.TB) *redis.Client {
	t.Helper()
	c, err := Start("redis", "7-alpine")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Stop() })

	client := redis.NewClient(&redis.Options{Addr: c.HostPort("6379/tcp")})
	if err := c.Retry(func() error { return client.Ping(context.Background()).Err() }); err != nil {
		t.Fatalf("testenv: redis not ready: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// Mongo starts a mongo container and returns the named database. The
// returned stop func disconnects and purges; it suits TestMain, which has no
// testing.T.
func Mongo(database string) (*mongo.Database, func(), error) {
	c, err := Start("mongo", "6.0",
		"MONGO_INITDB_ROOT_USERNAME="+mongoUser,
		"MONGO_INITDB_ROOT_PASSWORD="+mongoPassword)
	if err != nil {
		return nil, nil, err
	}
	uri := fmt.Sprintf("mongodb://%s:%s@%s/?authSource=admin", mongoUser, mongoPassword, c.HostPort("27017/tcp"))

	var client *mongo.Client
	err = c.Retry(func() error {
		var connErr error
		client, connErr = mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
		if connErr != nil {
			return connErr
		}
		return client.Ping(context.Background(), nil)
	})
	if err != nil {
		_ = c.Stop()
		return nil, nil, fmt.Errorf("testenv: mongo not ready: %w", err)
	}
	stop := func() {
		_ = client.Disconnect(context.Background())
		_ = c.Stop()
	}
	return client.Database(database), stop, nil
}
