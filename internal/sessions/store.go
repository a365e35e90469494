package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gsessions "github.com/gorilla/sessions"
	"github.com/nats-io/nats.go/jetstream"
)

var (
	ErrNotFound = errors.New("sessions: session not found")
	ErrNoCookie = errors.New("sessions: no session cookie")
)

// Store persists session records.
type Store interface {
	Create(ctx context.Context, data Data) error
	Get(ctx context.Context, sid string) (Data, error)
	Touch(ctx context.Context, data Data) error
	Delete(ctx context.Context, sid string) error
}

// KVStore keeps session records in a JetStream key-value bucket. Expiry is
// left to the bucket's TTL, which Touch restarts.
type KVStore struct {
	kv jetstream.KeyValue
}

func NewKVStore(kv jetstream.KeyValue) *KVStore {
	return &KVStore{kv: kv}
}

func key(sid string) string {
	return "wizard.sessions." + sid
}

func (s *KVStore) Create(ctx context.Context, data Data) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sessions: marshal: %w", err)
	}
	if _, err := s.kv.Create(ctx, key(data.ID), bytes); err != nil {
		return fmt.Errorf("sessions: create %s: %w", data.ID, err)
	}
	return nil
}

func (s *KVStore) Get(ctx context.Context, sid string) (Data, error) {
	entry, err := s.kv.Get(ctx, key(sid))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return Data{}, ErrNotFound
		}
		return Data{}, fmt.Errorf("sessions: get %s: %w", sid, err)
	}

	var data Data
	if err := json.Unmarshal(entry.Value(), &data); err != nil {
		return Data{}, fmt.Errorf("sessions: unmarshal %s: %w", sid, err)
	}
	return data, nil
}

// Touch rewrites the record so an active visitor's session outlives the
// bucket TTL.
func (s *KVStore) Touch(ctx context.Context, data Data) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sessions: marshal: %w", err)
	}
	if _, err := s.kv.Put(ctx, key(data.ID), bytes); err != nil {
		return fmt.Errorf("sessions: touch %s: %w", data.ID, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, sid string) error {
	if err := s.kv.Delete(ctx, key(sid)); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("sessions: delete %s: %w", sid, err)
	}
	return nil
}

const (
	CookieName = "turan"
	sidPrefix  = "trn_"
	sidValue   = "sid"
)

// NewCookieStore returns the signed cookie store carrying session ids.
func NewCookieStore(key []byte, secure bool, maxAge int) *gsessions.CookieStore {
	store := gsessions.NewCookieStore(key)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.MaxAge = maxAge
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	return store
}

// SaveID writes sid into the visitor's session cookie.
func SaveID(store gsessions.Store, w http.ResponseWriter, r *http.Request, sid string) error {
	s, err := store.Get(r, CookieName)
	if err != nil && s == nil {
		return fmt.Errorf("sessions: load cookie: %w", err)
	}
	s.Values[sidValue] = sidPrefix + sid
	return s.Save(r, w)
}

// LoadID reads the session id from the visitor's cookie.
func LoadID(store gsessions.Store, r *http.Request) (string, error) {
	s, err := store.Get(r, CookieName)
	if err != nil {
		return "", ErrNoCookie
	}
	raw, _ := s.Values[sidValue].(string)
	sid, found := strings.CutPrefix(raw, sidPrefix)
	if !found || sid == "" {
		return "", ErrNoCookie
	}
	return sid, nil
}
