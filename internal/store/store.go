package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Adda-Baaj/arogya-feed/internal/domain"
	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

const (
	maxNameRunes    = 80
	maxMessageRunes = 1000
)

var (
	bucketTestimonials  = []byte("testimonials")
	bucketSubscriptions = []byte("subscriptions")
	bucketEmailIndex    = []byte("subscription_emails")

	// ErrInvalid marks a record that failed validation.
	ErrInvalid = errors.New("invalid record")
	// ErrDuplicate marks a subscription for an email that is already stored.
	ErrDuplicate = errors.New("duplicate record")
)

// Documents is the document-store capability the pages rely on.
type Documents interface {
	ListTestimonials(ctx context.Context) ([]domain.Testimonial, error)
	AddTestimonial(ctx context.Context, name, message string) (domain.Testimonial, error)
	AddSubscription(ctx context.Context, email string) (domain.Subscription, error)
}

// BoltStore keeps testimonials and subscriptions in a bbolt file.
// Records are keyed by a monotonically increasing sequence so reads
// return insertion order.
type BoltStore struct {
	db  *bolt.DB
	now func() time.Time
}

// Open opens (or creates) the database at path.
func Open(path string) (*BoltStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store path is empty")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketTestimonials, bucketSubscriptions, bucketEmailIndex} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db, now: time.Now}, nil
}

// Close releases the database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// ListTestimonials returns all testimonials in insertion order.
func (s *BoltStore) ListTestimonials(ctx context.Context) ([]domain.Testimonial, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []domain.Testimonial{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTestimonials).ForEach(func(_, v []byte) error {
			var t domain.Testimonial
			if err := json.Unmarshal(v, &t); err != nil {
				return fmt.Errorf("decode testimonial: %w", err)
			}
			out = append(out, t)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list testimonials: %w", err)
	}
	return out, nil
}

// AddTestimonial validates and appends a testimonial.
func (s *BoltStore) AddTestimonial(ctx context.Context, name, message string) (domain.Testimonial, error) {
	if err := ctx.Err(); err != nil {
		return domain.Testimonial{}, err
	}
	name = strings.TrimSpace(name)
	message = strings.TrimSpace(message)
	if err := validateTestimonial(name, message); err != nil {
		return domain.Testimonial{}, err
	}

	t := domain.Testimonial{
		ID:        uuid.NewString(),
		Name:      name,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return putSequenced(tx.Bucket(bucketTestimonials), t)
	})
	if err != nil {
		return domain.Testimonial{}, fmt.Errorf("add testimonial: %w", err)
	}
	return t, nil
}

// AddSubscription stores a newsletter signup. Emails are compared case-insensitively.
func (s *BoltStore) AddSubscription(ctx context.Context, email string) (domain.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return domain.Subscription{}, err
	}
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return domain.Subscription{}, err
	}

	sub := domain.Subscription{
		ID:        uuid.NewString(),
		Email:     normalized,
		CreatedAt: s.now().UTC(),
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		idx := tx.Bucket(bucketEmailIndex)
		if idx.Get([]byte(normalized)) != nil {
			return fmt.Errorf("%w: %s already subscribed", ErrDuplicate, normalized)
		}
		if err := idx.Put([]byte(normalized), []byte(sub.ID)); err != nil {
			return err
		}
		return putSequenced(tx.Bucket(bucketSubscriptions), sub)
	})
	if err != nil {
		return domain.Subscription{}, fmt.Errorf("add subscription: %w", err)
	}
	return sub, nil
}

// CountSubscriptions reports how many signups are stored.
func (s *BoltStore) CountSubscriptions() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketSubscriptions).Stats().KeyN
		return nil
	})
	return n, err
}

// NormalizeEmail validates an address and returns it trimmed and lowercased.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalid)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: email %q is not a valid address", ErrInvalid, email)
	}
	return strings.ToLower(addr.Address), nil
}

func validateTestimonial(name, message string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name is required", ErrInvalid)
	case message == "":
		return fmt.Errorf("%w: message is required", ErrInvalid)
	case utf8.RuneCountInString(name) > maxNameRunes:
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalid, maxNameRunes)
	case utf8.RuneCountInString(message) > maxMessageRunes:
		return fmt.Errorf("%w: message exceeds %d characters", ErrInvalid, maxMessageRunes)
	}
	return nil
}

func putSequenced(b *bolt.Bucket, v any) error {
	seq, err := b.NextSequence()
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return b.Put(key, raw)
}
