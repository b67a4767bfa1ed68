package users

import (
	"context"
	"errors"
	"fmt"
)

// Reminder frequency bounds. FrequencyUnset is returned for users that never chose one.
const (
	FrequencyUnset = 0
	MinFrequency   = 1
	MaxFrequency   = 3
)

// ErrInvalidFrequency is returned when a frequency outside 0..3 is saved.
var ErrInvalidFrequency = errors.New("users: frequency must be between 0 and 3")

// Store persists the reminder frequency chosen by each user.
//
// Every method is independently atomic; no cross-user guarantees are made.
type Store interface {
	// Register records userID with FrequencyUnset unless it is already known.
	// An existing frequency is never overwritten.
	Register(ctx context.Context, userID string) error
	// Save upserts the frequency for userID. Saving the same value twice is a no-op.
	Save(ctx context.Context, userID string, frequency int) error
	// ListUsers returns every known user ID in no particular order.
	ListUsers(ctx context.Context) ([]string, error)
	// ListUsersWithFrequencyAtLeast returns the IDs whose frequency is >= n.
	ListUsersWithFrequencyAtLeast(ctx context.Context, n int) ([]string, error)
	// GetFrequency returns the stored frequency, or FrequencyUnset when the user is unknown.
	GetFrequency(ctx context.Context, userID string) (int, error)
}

// User is a stored user with its frequency.
type User struct {
	ID        string `json:"user_id" dynamodbav:"userId"`
	Frequency int    `json:"frequency" dynamodbav:"frequency"`
}

// ValidateFrequency checks that f is a storable frequency.
func ValidateFrequency(f int) error {
	if f < FrequencyUnset || f > MaxFrequency {
		return fmt.Errorf("%w: got %d", ErrInvalidFrequency, f)
	}
	return nil
}

// ListWithFrequencies resolves the frequency of every known user.
func ListWithFrequencies(ctx context.Context, store Store) ([]User, error) {
	ids, err := store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]User, 0, len(ids))
	for _, id := range ids {
		f, err := store.GetFrequency(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("users: frequency for %s: %w", id, err)
		}
		result = append(result, User{ID: id, Frequency: f})
	}
	return result, nil
}
