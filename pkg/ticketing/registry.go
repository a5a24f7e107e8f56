package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/flimando/porter/pkg/dataaccess"
	"github.com/flimando/porter/pkg/entities"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrQuotaExceeded is returned when a user already owns the maximum
	// number of open tickets for the guild.
	ErrQuotaExceeded = errors.New("ticket quota exceeded")

	// ErrNotATicket is returned when a channel has no ticket record.
	ErrNotATicket = errors.New("channel is not a ticket")
)

// Registry tracks open tickets. Quota checks and ticket creation for
// the same (guild, user) pair are serialised so two simultaneous
// clicks cannot both pass the quota check.
type Registry struct {
	// l is the logger.
	l *slog.Logger

	// dal is the ticket store.
	dal dataaccess.ITicketDal

	locks keyedMutex
}

// NewRegistry creates a new ticket registry.
func NewRegistry(logger *slog.Logger, dal dataaccess.ITicketDal) *Registry {
	return &Registry{
		l:   logger,
		dal: dal,
	}
}

// CanOpen reports whether the owner is below the quota. This is a
// point-in-time answer for friendly early feedback; Open re-checks
// under the per-owner lock before creating anything.
func (r *Registry) CanOpen(ctx context.Context, guildID, ownerID string, maxTickets int) (bool, error) {
	count, err := r.dal.CountUserTickets(ctx, guildID, ownerID)
	if err != nil {
		return false, fmt.Errorf("error counting tickets: %w", err)
	}
	return count < int64(maxTickets), nil
}

// Open checks the owner's quota and, if there is room, runs create to
// provision the ticket and records the result. The create func does
// the Discord side (channel creation) and returns the ticket to store.
func (r *Registry) Open(ctx context.Context, guildID, ownerID string, maxTickets int, create func(ctx context.Context) (*entities.Ticket, error)) (*entities.Ticket, error) {
	unlock := r.locks.lock(guildID + ":" + ownerID)
	defer unlock()

	count, err := r.dal.CountUserTickets(ctx, guildID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error counting tickets: %w", err)
	}
	if count >= int64(maxTickets) {
		return nil, ErrQuotaExceeded
	}

	ticket, err := create(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.dal.SaveTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}
	return ticket, nil
}

// Lookup returns the ticket record for a channel, or ErrNotATicket.
func (r *Registry) Lookup(ctx context.Context, guildID, channelID string) (*entities.Ticket, error) {
	ticket, err := r.dal.GetTicket(ctx, guildID, channelID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotATicket
		}
		return nil, err
	}
	return ticket, nil
}

// Release removes the ticket record for a channel. The bool reports
// whether a record was actually removed, so callers can tell a double
// close apart from a first close.
func (r *Registry) Release(ctx context.Context, guildID, channelID string) (bool, error) {
	return r.dal.DeleteTicket(ctx, guildID, channelID)
}

// keyedMutex hands out a mutex per key. Entries are reference counted
// and removed once the last holder unlocks, so the map does not grow
// with every user ever seen.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*keyedMutexEntry
}

type keyedMutexEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.entries == nil {
		k.entries = make(map[string]*keyedMutexEntry)
	}
	e, ok := k.entries[key]
	if !ok {
		e = new(keyedMutexEntry)
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}
