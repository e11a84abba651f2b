//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/huangsam/contacts/core"
	"github.com/huangsam/contacts/internal/iocache"
	"github.com/huangsam/contacts/internal/remote"
	"github.com/huangsam/contacts/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var skywalker = schema.Contact{
	ID:        "b3abd640-c92b-11e8-b02f-cbfa15db428b",
	FirstName: "Luke",
	LastName:  "Skywalker",
	Age:       20,
	Photo:     "https://picsum.photos/200/300/?blur=2",
}

// startContainer starts req and returns host:port for the exposed port.
func startContainer(t *testing.T, req testcontainers.ContainerRequest, port string) (string, string) {
	t.Helper()
	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	mapped, err := c.MappedPort(ctx, nat.Port(port))
	require.NoError(t, err)
	return host, mapped.Port()
}

// exerciseBackend runs the cache-first rules against a real snapshot backend.
func exerciseBackend(t *testing.T, backend schema.DatabaseBackend, connStr string) {
	t.Helper()
	server, baseURL := startContactServer(t, skywalker)

	snapshots, err := iocache.NewSnapshotStore("contacts_snapshots", backend, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = snapshots.Close() })
	require.NoError(t, snapshots.Delete(schema.DefaultSnapshotKey))

	store := core.NewStore(remote.New(baseURL), snapshots)
	ctx := context.Background()

	contacts, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []schema.Contact{skywalker}, contacts)

	// A fresh store over the same backend reads the snapshot
	again := core.NewStore(remote.New(baseURL), snapshots)
	contacts, err = again.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []schema.Contact{skywalker}, contacts)
	assert.Equal(t, 1, server.lists())

	require.NoError(t, again.Delete(ctx, skywalker.ID))
	contacts, err = core.NewStore(remote.New(baseURL), snapshots).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, contacts)
	assert.Equal(t, 1, server.lists())

	status, err := snapshots.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, status.TotalEntries)
}

// TestContactsWithMySQL runs the snapshot and journal against a MySQL backend.
func TestContactsWithMySQL(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "contacts",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}, "3306")
	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/contacts?parseTime=true", host, port)

	exerciseBackend(t, schema.MySQLBackend, connStr)

	env := []string{
		"CONTACTS_HISTORY_BACKEND=mysql",
		"CONTACTS_HISTORY_DB_CONNECT=" + connStr,
	}
	_, err := runContactsCommand(t, env, "history", "clear")
	require.NoError(t, err)
	_, err = runContactsCommand(t, env, "history", "migrate")
	require.NoError(t, err)
	_, err = runContactsCommand(t, env, "history", "status")
	require.NoError(t, err)
}

// TestContactsWithPostgres runs the snapshot and journal against a PostgreSQL backend.
func TestContactsWithPostgres(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}, "5432")
	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port)

	exerciseBackend(t, schema.PostgreSQLBackend, connStr)

	env := []string{
		"CONTACTS_CACHE_BACKEND=postgresql",
		"CONTACTS_CACHE_DB_CONNECT=" + connStr,
	}
	_, err := runContactsCommand(t, env, "cache", "status")
	require.NoError(t, err)
	_, err = runContactsCommand(t, env, "cache", "clear")
	require.NoError(t, err)
}

// TestContactsWithRedis runs the snapshot against a Redis backend.
func TestContactsWithRedis(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}, "6379")
	connStr := fmt.Sprintf("redis://%s:%s/0", host, port)

	exerciseBackend(t, schema.RedisBackend, connStr)

	env := []string{
		"CONTACTS_CACHE_BACKEND=redis",
		"CONTACTS_CACHE_DB_CONNECT=" + connStr,
	}
	out, err := runContactsCommand(t, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache Backend: redis")
	_, err = runContactsCommand(t, env, "cache", "clear")
	require.NoError(t, err)
}
