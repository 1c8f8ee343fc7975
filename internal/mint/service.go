package mint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-nft-ticketing/internal/logger"
	"ms-nft-ticketing/internal/models"
	"ms-nft-ticketing/internal/utils"
)

var (
	// ErrAlreadyMinted is a definitive negative result, not a failure: the
	// ticket exists and is minted, so no new chain transaction is attempted.
	ErrAlreadyMinted = errors.New("ticket already minted for this event")

	// ErrMintInProgress means another request currently holds the pair lock.
	ErrMintInProgress = errors.New("a mint for this event is already in progress")

	ErrUserNotFound  = errors.New("user not found")
	ErrEventNotFound = errors.New("event not found")
	ErrUserInactive  = errors.New("user account is not active")
)

type DBLayer interface {
	GetTicketByUserAndEvent(ctx context.Context, userID, eventID string) (*models.Ticket, error)
	CreateTicket(ctx context.Context, ticket models.Ticket) error
	MarkTicketMinted(ctx context.Context, ticket models.Ticket) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	RecordMintedTicket(ctx context.Context, userID, ticketID string) error
	EventExists(ctx context.Context, eventID string) (bool, error)
}

type PairLock interface {
	LockPair(userID, eventID, requestID string) (bool, error)
	UnlockPair(userID, eventID, requestID string) error
}

// ChainSubmitter is the opaque on-chain collaborator.
type ChainSubmitter interface {
	SubmitTransaction(ctx context.Context, from, to, value string) (*models.TxReceipt, error)
}

type Publisher interface {
	PublishTicketMinted(ticket models.Ticket) error
}

// PassGenerator renders the mint receipt QR stored on the ticket.
type PassGenerator interface {
	GenerateMintPass(ticket models.Ticket) ([]byte, error)
}

type MintService struct {
	DB       DBLayer
	Lock     PairLock
	Chain    ChainSubmitter
	Kafka    Publisher
	Pass     PassGenerator
	Logger   *logger.Logger
	Treasury string
	Value    string
}

func NewMintService(db DBLayer, lock PairLock, chain ChainSubmitter, kafka Publisher, pass PassGenerator, log *logger.Logger, treasury, value string) *MintService {
	return &MintService{
		DB:       db,
		Lock:     lock,
		Chain:    chain,
		Kafka:    kafka,
		Pass:     pass,
		Logger:   log,
		Treasury: treasury,
		Value:    value,
	}
}

// RequestMint runs the mint state machine for one (user, event) pair:
// Unminted → Minting (held only while the pair lock is held) → Minted.
// The pair lock guarantees no two concurrent requests both observe Unminted
// and both submit a chain transaction. An unminted ticket row left behind by
// a crash or timeout is reconciled here: it reads as Unminted and the row is
// reused. The Minting state is never durable.
func (s *MintService) RequestMint(ctx context.Context, userID, eventID string) (*models.Ticket, error) {
	user, err := s.DB.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Status != models.UserStatusActive {
		return nil, ErrUserInactive
	}

	exists, err := s.DB.EventExists(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to check event %s: %w", eventID, err)
	}
	if !exists {
		return nil, ErrEventNotFound
	}

	requestID := uuid.NewString()
	ok, err := s.Lock.LockPair(userID, eventID, requestID)
	if err != nil {
		return nil, fmt.Errorf("redis lock error: %w", err)
	}
	if !ok {
		return nil, ErrMintInProgress
	}
	defer func() {
		if err := s.Lock.UnlockPair(userID, eventID, requestID); err != nil {
			s.Logger.Error("MINT", fmt.Sprintf("Failed to release mint lock for %s/%s: %v", userID, eventID, err))
		}
	}()

	ticket, err := s.DB.GetTicketByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket for %s/%s: %w", userID, eventID, err)
	}

	switch {
	case ticket != nil && ticket.Minted:
		return nil, ErrAlreadyMinted
	case ticket != nil:
		// Leftover from an earlier attempt that failed or crashed mid-flight.
		// It reads as Unminted; reuse the row.
		s.Logger.LogMint("RECOVER", ticket.ID, "reusing unminted ticket from a previous attempt")
	default:
		ticket = &models.Ticket{
			ID:        utils.GenerateTicketID(),
			IssuedTo:  userID,
			EventID:   eventID,
			Minted:    false,
			CreatedAt: time.Now(),
		}
		if err := s.DB.CreateTicket(ctx, *ticket); err != nil {
			return nil, fmt.Errorf("failed to create ticket: %w", err)
		}
		s.Logger.LogMint("ADMIT", ticket.ID, fmt.Sprintf("mint admitted for user %s event %s", userID, eventID))
	}

	receipt, err := s.Chain.SubmitTransaction(ctx, user.DefaultWallet, s.Treasury, s.Value)
	if err != nil {
		// The ticket row stays unminted: no partial credit, next attempt
		// starts from Unminted.
		s.Logger.Error("MINT", fmt.Sprintf("Chain submission failed for ticket %s: %v", ticket.ID, err))
		return nil, fmt.Errorf("chain submission failed: %w", err)
	}

	ticket.TxHash = receipt.TxHash
	if s.Pass != nil {
		qr, err := s.Pass.GenerateMintPass(*ticket)
		if err != nil {
			s.Logger.Warn("MINT", fmt.Sprintf("Failed to generate mint pass for ticket %s: %v", ticket.ID, err))
		} else {
			ticket.QRCode = qr
		}
	}

	if err := s.DB.MarkTicketMinted(ctx, *ticket); err != nil {
		return nil, fmt.Errorf("failed to record mint for ticket %s: %w", ticket.ID, err)
	}
	ticket.Minted = true

	if err := s.DB.RecordMintedTicket(ctx, userID, ticket.ID); err != nil {
		s.Logger.Error("MINT", fmt.Sprintf("Failed to append ticket %s to user %s: %v", ticket.ID, userID, err))
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishTicketMinted(*ticket); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish ticket minted event: %v", err))
		}
	}

	s.Logger.LogMint("MINTED", ticket.ID, fmt.Sprintf("tx %s", receipt.TxHash))
	return ticket, nil
}
