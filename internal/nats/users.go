package nats

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/eduworld/portal/internal/model"
	"github.com/eduworld/portal/internal/store"
)

// UsersBucket is the key-value bucket holding portal accounts.
const UsersBucket = "USERS"

// UserStore keeps users in a JetStream key-value bucket keyed by email.
type UserStore struct {
	kv jetstream.KeyValue
}

// NewUserStore opens the users bucket, creating it on first use.
func NewUserStore(ctx context.Context, client *Client) (*UserStore, error) {
	js := client.JetStream()

	kv, err := js.KeyValue(ctx, UsersBucket)
	if errors.Is(err, jetstream.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      UsersBucket,
			Description: "Portal user records",
			History:     1,
			Storage:     jetstream.FileStorage,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open users bucket: %w", err)
	}
	return &UserStore{kv: kv}, nil
}

// UserKey maps an email to a bucket key. Keys cannot hold '@', so the
// normalized email is hashed.
func UserKey(email string) string {
	sum := sha256.Sum256([]byte(store.NormalizeEmail(email)))
	return "email." + hex.EncodeToString(sum[:])
}

// Create inserts user; the bucket rejects an existing key atomically.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	user.Email = store.NormalizeEmail(user.Email)
	if err := store.Validate(user); err != nil {
		return err
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	if _, err := s.kv.Create(ctx, UserKey(user.Email), data); err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return store.ErrDuplicateKey
		}
		return fmt.Errorf("failed to store user: %w", err)
	}
	return nil
}

// FindByEmail loads the user registered under email.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	entry, err := s.kv.Get(ctx, UserKey(email))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	var user model.User
	if err := json.Unmarshal(entry.Value(), &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}
