package redis

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	inventoryPrefix   = "inventory:"
	ReservationPrefix = "reservation:"
)

// Inventory guards ticket counts per event. A counter is seeded from the
// database on first reservation and decremented atomically, so two
// checkouts racing for the last tickets cannot both win. Pending
// reservations carry a TTL; expiry releases the held units.
type Inventory struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *log.Logger
}

func NewInventory(client *redis.Client, ttl time.Duration) *Inventory {
	return &Inventory{
		Client: client,
		TTL:    ttl,
		Logger: log.Default(),
	}
}

func inventoryKey(eventID string) string {
	return inventoryPrefix + eventID
}

func reservationKey(orderID string) string {
	return ReservationPrefix + orderID
}

// Reserve takes quantity units from the event's counter, seeding it with
// available on first use. Returns false when not enough tickets remain.
func (i *Inventory) Reserve(eventID, orderID string, quantity, available int) (bool, error) {
	ctx := context.Background()
	key := inventoryKey(eventID)

	if err := i.Client.SetNX(ctx, key, available, 0).Err(); err != nil {
		return false, fmt.Errorf("failed to seed inventory counter: %w", err)
	}

	remaining, err := i.Client.DecrBy(ctx, key, int64(quantity)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to decrement inventory: %w", err)
	}
	if remaining < 0 {
		// Not enough left; give the units back.
		if err := i.Client.IncrBy(ctx, key, int64(quantity)).Err(); err != nil {
			return false, fmt.Errorf("failed to roll back inventory decrement: %w", err)
		}
		return false, nil
	}

	value := fmt.Sprintf("%s|%d", eventID, quantity)
	if err := i.Client.Set(ctx, reservationKey(orderID), value, i.TTL).Err(); err != nil {
		if rbErr := i.Client.IncrBy(ctx, key, int64(quantity)).Err(); rbErr != nil {
			i.Logger.Printf("INVENTORY: rollback after reservation write failure also failed: %v", rbErr)
		}
		return false, fmt.Errorf("failed to record reservation: %w", err)
	}

	return true, nil
}

// Commit finalizes a paid/confirmed reservation: the units stay taken
// and the pending marker is removed so it can no longer expire.
func (i *Inventory) Commit(orderID string) error {
	return i.Client.Del(context.Background(), reservationKey(orderID)).Err()
}

// Release returns a reservation's units to the pool, e.g. on cancel or
// payment failure.
func (i *Inventory) Release(orderID string) error {
	ctx := context.Background()
	key := reservationKey(orderID)

	value, err := i.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already released or expired
	}
	if err != nil {
		return err
	}

	eventID, quantity, err := parseReservation(value)
	if err != nil {
		return err
	}

	if err := i.Client.IncrBy(ctx, inventoryKey(eventID), int64(quantity)).Err(); err != nil {
		return fmt.Errorf("failed to return inventory: %w", err)
	}
	return i.Client.Del(ctx, key).Err()
}

// ReleaseExpired returns units for a reservation whose key has already
// expired; the caller supplies event and quantity from the order row.
func (i *Inventory) ReleaseExpired(eventID string, quantity int) error {
	return i.Client.IncrBy(context.Background(), inventoryKey(eventID), int64(quantity)).Err()
}

// Remaining reports the live counter, -1 when no counter is seeded yet.
func (i *Inventory) Remaining(eventID string) (int, error) {
	val, err := i.Client.Get(context.Background(), inventoryKey(eventID)).Result()
	if err == redis.Nil {
		return -1, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(val)
}

func parseReservation(value string) (string, int, error) {
	parts := strings.SplitN(value, "|", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("malformed reservation value %q", value)
	}
	quantity, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, fmt.Errorf("malformed reservation quantity %q", parts[1])
	}
	return parts[0], quantity, nil
}
