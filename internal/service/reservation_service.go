package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"go-ticket-reservation/internal/cache"
	"go-ticket-reservation/internal/model"
	"go-ticket-reservation/internal/repository"
	apperrors "go-ticket-reservation/pkg/app_errors"
	"go-ticket-reservation/pkg/logger"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	// DefaultReservationTTL applies when the caller does not ask for one.
	DefaultReservationTTL = 10 * time.Minute
	// MaxReservationTTL caps how long a hold may pin inventory.
	MaxReservationTTL = time.Hour
)

// ReserveParams carries one Reserve call.
type ReserveParams struct {
	EventID    int64
	TicketType string
	UserID     int64
	Quantity   int
	TTL        time.Duration
}

// ReservationService is the only component that mutates the inventory ledger
// or the reservation store, always inside a single transaction per operation.
type ReservationService interface {
	Reserve(ctx context.Context, params ReserveParams) (*model.Reservation, error)
	GetReservation(ctx context.Context, id uuid.UUID, userID int64) (*model.Reservation, error)
	ListReservations(ctx context.Context, userID int64) ([]*model.Reservation, error)
	ListTickets(ctx context.Context, userID int64) ([]*model.Ticket, error)
	Consume(ctx context.Context, id uuid.UUID) ([]*model.Ticket, error)
	Release(ctx context.Context, id uuid.UUID, toStatus model.ReservationStatus) error
	ExpireBatch(ctx context.Context, now time.Time) (int, error)

	// Transaction methods, for callers that need the ledger mutation to be
	// atomic with their own writes (the settlement path).
	ConsumeTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) ([]*model.Ticket, error)
	ReleaseTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, toStatus model.ReservationStatus) error
}

type ReservationServiceImpl struct {
	pool                  *pgxpool.Pool
	inventoryRepository   repository.InventoryRepository
	reservationRepository repository.ReservationRepository
	ticketRepository      repository.TicketRepository
	availabilityCache     cache.AvailabilityCache
	sweepBatchSize        int
}

func NewReservationService(
	pool *pgxpool.Pool,
	inventoryRepository repository.InventoryRepository,
	reservationRepository repository.ReservationRepository,
	ticketRepository repository.TicketRepository,
	availabilityCache cache.AvailabilityCache,
	sweepBatchSize int,
) ReservationService {
	if sweepBatchSize <= 0 {
		sweepBatchSize = 100
	}
	return &ReservationServiceImpl{
		pool:                  pool,
		inventoryRepository:   inventoryRepository,
		reservationRepository: reservationRepository,
		ticketRepository:      ticketRepository,
		availabilityCache:     availabilityCache,
		sweepBatchSize:        sweepBatchSize,
	}
}

// Reserve locks the inventory row, re-checks availability with fresh counts,
// moves quantity into reserved_count and inserts the pending reservation, all
// in one transaction. Two concurrent calls against the same row serialize on
// the lock; the loser re-evaluates what the winner left behind.
func (s *ReservationServiceImpl) Reserve(ctx context.Context, params ReserveParams) (*model.Reservation, error) {
	if params.Quantity <= 0 {
		return nil, apperrors.ErrInvalidInput
	}

	ttl := params.TTL
	if ttl <= 0 {
		ttl = DefaultReservationTTL
	}
	if ttl > MaxReservationTTL {
		ttl = MaxReservationTTL
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	inv, err := s.inventoryRepository.FindForUpdate(ctx, tx, params.EventID, params.TicketType)
	if err != nil {
		return nil, err
	}

	if inv.Available() < params.Quantity {
		return nil, apperrors.ErrInsufficientInventory
	}

	err = s.inventoryRepository.Hold(ctx, tx, inv.ID, params.Quantity)
	if err != nil {
		return nil, err
	}

	reservation := &model.Reservation{
		ID:          uuid.New(),
		InventoryID: inv.ID,
		EventID:     inv.EventID,
		UserID:      params.UserID,
		Quantity:    params.Quantity,
		Status:      model.ReservationStatusPending,
		AmountCents: inv.PriceCents * int64(params.Quantity),
		ExpiresAt:   time.Now().UTC().Add(ttl),
	}

	created, err := s.reservationRepository.Create(ctx, tx, reservation)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.refreshAvailability(ctx, inv.EventID, inv.TicketType,
		inv.Available()-params.Quantity, inv.PriceCents)

	return created, nil
}

func (s *ReservationServiceImpl) GetReservation(ctx context.Context, id uuid.UUID, userID int64) (*model.Reservation, error) {
	reservation, err := s.reservationRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Reservations are readable by their owner only; system processes go
	// through the service methods instead.
	if reservation.UserID != userID {
		return nil, apperrors.ErrNotOwner
	}

	return reservation, nil
}

func (s *ReservationServiceImpl) ListReservations(ctx context.Context, userID int64) ([]*model.Reservation, error) {
	return s.reservationRepository.FindByUserID(ctx, userID)
}

func (s *ReservationServiceImpl) ListTickets(ctx context.Context, userID int64) ([]*model.Ticket, error) {
	return s.ticketRepository.FindByUserID(ctx, userID)
}

func (s *ReservationServiceImpl) Consume(ctx context.Context, id uuid.UUID) ([]*model.Ticket, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tickets, err := s.ConsumeTx(ctx, tx, id)
	if err != nil {
		// A lazy expiry inside ConsumeTx reclaims the hold; that state
		// change must survive the failed consume.
		if errors.Is(err, apperrors.ErrReservationExpired) {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				return nil, commitErr
			}
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return tickets, nil
}

// ConsumeTx converts a paid reservation into issued tickets inside the
// caller's transaction. Calling it again for an already consumed reservation
// returns the existing tickets without touching inventory.
func (s *ReservationServiceImpl) ConsumeTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) ([]*model.Ticket, error) {
	reservation, err := s.reservationRepository.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	switch reservation.Status {
	case model.ReservationStatusConsumed:
		// Idempotent replay: the tickets were committed by the first
		// Consume, a plain read sees them.
		return s.ticketRepository.FindByReservationID(ctx, reservation.ID)
	case model.ReservationStatusExpired, model.ReservationStatusCancelled:
		return nil, apperrors.ErrReservationExpired
	}

	now := time.Now().UTC()
	if reservation.IsExpiredAt(now) {
		// Lazy expiry: the deadline passed before the sweeper got here.
		// Reclaim the hold in this same transaction and fail the consume.
		if err := s.releaseLocked(ctx, tx, reservation, model.ReservationStatusExpired); err != nil {
			return nil, err
		}
		return nil, apperrors.ErrReservationExpired
	}

	err = s.inventoryRepository.CommitSold(ctx, tx, reservation.InventoryID, reservation.Quantity)
	if err != nil {
		return nil, err
	}

	err = s.reservationRepository.MarkConsumed(ctx, tx, reservation.ID, now)
	if err != nil {
		return nil, err
	}

	tickets := make([]*model.Ticket, 0, reservation.Quantity)
	for i := 0; i < reservation.Quantity; i++ {
		token, err := newTicketToken()
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, &model.Ticket{
			ID:            uuid.New(),
			ReservationID: reservation.ID,
			EventID:       reservation.EventID,
			UserID:        reservation.UserID,
			Token:         token,
			Status:        model.TicketStatusIssued,
			IssuedAt:      now,
		})
	}

	if err := s.ticketRepository.CreateBatch(ctx, tx, tickets); err != nil {
		return nil, err
	}

	return tickets, nil
}

func (s *ReservationServiceImpl) Release(ctx context.Context, id uuid.UUID, toStatus model.ReservationStatus) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.ReleaseTx(ctx, tx, id, toStatus); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ReleaseTx returns a hold to the inventory ledger inside the caller's
// transaction. Releasing an already terminal reservation is a no-op, because
// cancellation races with expiry and with webhook failure paths.
func (s *ReservationServiceImpl) ReleaseTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, toStatus model.ReservationStatus) error {
	reservation, err := s.reservationRepository.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}

	if reservation.Status.IsTerminal() {
		return nil
	}

	return s.releaseLocked(ctx, tx, reservation, toStatus)
}

// releaseLocked assumes the caller holds the reservation row lock and the
// reservation is pending.
func (s *ReservationServiceImpl) releaseLocked(ctx context.Context, tx pgx.Tx, reservation *model.Reservation, toStatus model.ReservationStatus) error {
	if err := s.reservationRepository.MarkReleased(ctx, tx, reservation.ID, toStatus); err != nil {
		return err
	}

	return s.inventoryRepository.ReleaseHold(ctx, tx, reservation.InventoryID, reservation.Quantity)
}

// ExpireBatch reclaims inventory from overdue pending reservations. The
// skip-locked selection means a sweep never waits on a row a live Consume or
// Release is holding, and the status guard on release catches any row that
// turned terminal between selection and locking.
func (s *ReservationServiceImpl) ExpireBatch(ctx context.Context, now time.Time) (int, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	expired, err := s.reservationRepository.LockExpired(ctx, tx, now, s.sweepBatchSize)
	if err != nil {
		return 0, err
	}

	// Release in inventory-row order. Concurrent sweeps hold disjoint
	// reservation sets but contend on the same inventory rows; taking those
	// locks in one global order keeps two sweeps from waiting on each other.
	sort.Slice(expired, func(i, j int) bool {
		if expired[i].InventoryID != expired[j].InventoryID {
			return expired[i].InventoryID < expired[j].InventoryID
		}
		return expired[i].ExpiresAt.Before(expired[j].ExpiresAt)
	})

	for _, reservation := range expired {
		if err := s.releaseLocked(ctx, tx, reservation, model.ReservationStatusExpired); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return len(expired), nil
}

// refreshAvailability is best effort; the cache may lag, the row never lies.
func (s *ReservationServiceImpl) refreshAvailability(ctx context.Context, eventID int64, ticketType string, available int, priceCents int64) {
	if s.availabilityCache == nil {
		return
	}
	err := s.availabilityCache.Refresh(ctx, eventID, ticketType, available, priceCents)
	if err != nil {
		logger.WithComponent("reservation_service").Warn("failed to refresh availability cache",
			zap.Int64("event_id", eventID), zap.Error(err))
	}
}

func newTicketToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
