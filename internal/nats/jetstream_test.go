package nats

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	natstest "github.com/nats-io/nats-server/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduworld/portal/internal/model"
	"github.com/eduworld/portal/internal/store"
	"github.com/eduworld/portal/pkg/logger"
)

// runJetStream starts an embedded JetStream server and connects a client
// to it; both are torn down with t.
func runJetStream(t *testing.T) *Client {
	t.Helper()

	opts := natstest.DefaultTestOptions
	opts.Port = server.RANDOM_PORT
	opts.JetStream = true
	opts.StoreDir = t.TempDir()
	srv := natstest.RunServer(&opts)
	t.Cleanup(srv.Shutdown)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := Connect(ctx, Config{URL: srv.ClientURL()}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(client.Close)
	require.True(t, client.IsConnected())
	return client
}

func newUser(email string) *model.User {
	return &model.User{
		ID:           "0190a6f4-8d5b-7c1e-9a3f-1b2c3d4e5f60",
		Name:         "Ada Lovelace",
		Email:        email,
		PasswordHash: "$2a$04$abcdefghijklmnopqrstuuN1s2d3f4g5h6j7k8l9z0x1c2v3b4n5m",
		Role:         model.RoleStudent,
		CreatedAt:    time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
	}
}

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	users, err := NewUserStore(ctx, runJetStream(t))
	require.NoError(t, err)

	created := newUser("  Ada@EduWorld.edu ")
	require.NoError(t, users.Create(ctx, created))
	assert.Equal(t, "ada@eduworld.edu", created.Email)

	found, err := users.FindByEmail(ctx, "ADA@eduworld.EDU")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "ada@eduworld.edu", found.Email)
	assert.Equal(t, created.PasswordHash, found.PasswordHash)
	assert.Equal(t, model.RoleStudent, found.Role)
	assert.True(t, created.CreatedAt.Equal(found.CreatedAt))

	err = users.Create(ctx, newUser("ada@eduworld.edu"))
	assert.ErrorIs(t, err, store.ErrDuplicateKey)

	_, err = users.FindByEmail(ctx, "grace@eduworld.edu")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserStore_Validation(t *testing.T) {
	ctx := context.Background()
	users, err := NewUserStore(ctx, runJetStream(t))
	require.NoError(t, err)

	user := newUser("ada@eduworld.edu")
	user.Role = "admin"
	user.Name = ""

	var verr *store.ValidationError
	require.ErrorAs(t, users.Create(ctx, user), &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "role")

	_, err = users.FindByEmail(ctx, "ada@eduworld.edu")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserStore_ReopensExistingBucket(t *testing.T) {
	ctx := context.Background()
	client := runJetStream(t)

	first, err := NewUserStore(ctx, client)
	require.NoError(t, err)
	require.NoError(t, first.Create(ctx, newUser("ada@eduworld.edu")))

	second, err := NewUserStore(ctx, client)
	require.NoError(t, err)
	_, err = second.FindByEmail(ctx, "ada@eduworld.edu")
	assert.NoError(t, err)
}

func TestEventPublisher(t *testing.T) {
	ctx := context.Background()
	client := runJetStream(t)
	pub := NewEventPublisher(client)

	require.NoError(t, pub.EnsureStream(ctx))
	require.NoError(t, pub.EnsureStream(ctx))

	ev := &model.ChatEvent{
		ID:        "evt-1",
		SessionID: "sess-1",
		Type:      model.EventTypeMessage,
		Message:   &model.Message{ID: "msg-1", Author: model.AuthorAssistant, Text: "Fees are due each semester.", Topic: "fees"},
		CreatedAt: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
	}
	seq, err := pub.Publish(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)

	// Same event id: de-duplicated by the stream.
	seq, err = pub.Publish(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)

	stream, err := client.JetStream().Stream(ctx, StreamName)
	require.NoError(t, err)
	msg, err := stream.GetMsg(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "chat.sess-1.message.assistant", msg.Subject)

	var got model.ChatEvent
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, "fees", got.Message.Topic)
}
