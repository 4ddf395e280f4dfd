// internal/services/issuer_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ValenteCreativo/Side-B-sub000/internal/config"
	"github.com/ValenteCreativo/Side-B-sub000/internal/models"
	"github.com/ValenteCreativo/Side-B-sub000/internal/payments"
	"github.com/ValenteCreativo/Side-B-sub000/internal/store"
	"github.com/ValenteCreativo/Side-B-sub000/internal/utils"
)

// PaymentVerifier is what the issuer needs from the verification layer;
// satisfied by *payments.Verifier and by test doubles.
type PaymentVerifier interface {
	Verify(ctx context.Context, txHash common.Hash, obligations []payments.Obligation, minConfirmations uint64) (*payments.Result, error)
}

// SaleNotifier receives the best-effort purchase notification after a
// license is committed. Implementations must never fail the purchase.
type SaleNotifier interface {
	NotifySale(session *models.Session, license *models.License)
}

// IssuerService turns a client-submitted transaction hash into a durable,
// exactly-once license. Verification completes before the store insert
// begins; no database transaction is held across a chain RPC call, and
// the only cross-request coordination is the store's unique constraint.
type IssuerService struct {
	config   *config.Config
	sessions store.SessionStore
	licenses store.LicenseStore
	verifier PaymentVerifier
	notifier SaleNotifier
}

type PaymentQuote struct {
	ArtistPayment decimal.Decimal `json:"artist_payment"`
	PlatformFee   decimal.Decimal `json:"platform_fee"`
	Total         decimal.Decimal `json:"total"`
	Session       SessionSummary  `json:"session"`
}

type SessionSummary struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	PriceUSD     decimal.Decimal `json:"price_usd"`
	ArtistWallet string          `json:"artist_wallet"`
}

func NewIssuerService(cfg *config.Config, sessions store.SessionStore, licenses store.LicenseStore, verifier PaymentVerifier, notifier SaleNotifier) *IssuerService {
	return &IssuerService{
		config:   cfg,
		sessions: sessions,
		licenses: licenses,
		verifier: verifier,
		notifier: notifier,
	}
}

// QuotePayment computes the expected split for a purchase from the
// session's stored price. The quote is informational; confirmation
// recomputes the split, so a stale quote cannot lower the price.
func (s *IssuerService) QuotePayment(ctx context.Context, sessionID, buyerID uuid.UUID) (*PaymentQuote, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	exists, err := s.licenses.Exists(ctx, sessionID, buyerID)
	if err != nil {
		return nil, wrapInternal("failed to check existing license", err)
	}
	if exists {
		return nil, newIssueError(CodeAlreadyLicensed, "license already exists for this session and buyer")
	}

	obligations := s.obligations(session)

	quote := &PaymentQuote{
		Total: session.PriceUSD,
		Session: SessionSummary{
			ID:           session.ID,
			Title:        session.Title,
			PriceUSD:     session.PriceUSD,
			ArtistWallet: session.Owner.WalletAddress,
		},
	}
	for _, obligation := range obligations {
		switch obligation.Role {
		case payments.RoleArtist:
			quote.ArtistPayment = obligation.AmountUSD
		case payments.RolePlatform:
			quote.PlatformFee = obligation.AmountUSD
		}
	}

	return quote, nil
}

// ConfirmPayment is the issuance state machine: validate input, look up
// the session, short-circuit on an existing license, compute the split
// from the stored price, verify the transaction, then commit the license
// with a single atomic insert-or-return.
func (s *IssuerService) ConfirmPayment(ctx context.Context, sessionID, buyerID uuid.UUID, txHash string) (*models.License, *payments.Result, error) {
	if !utils.IsTxHash(txHash) {
		return nil, nil, newIssueError(CodeInvalidInput, "malformed transaction hash")
	}

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	exists, err := s.licenses.Exists(ctx, sessionID, buyerID)
	if err != nil {
		return nil, nil, wrapInternal("failed to check existing license", err)
	}
	if exists {
		return nil, nil, newIssueError(CodeAlreadyLicensed, "license already exists; fetch the existing license instead of re-submitting")
	}

	obligations := s.obligations(session)

	result, err := s.verifier.Verify(ctx, common.HexToHash(txHash), obligations, s.config.Chain.MinConfirmations)
	if err != nil {
		return nil, nil, newRetryableError(CodeChainUnavailable, "chain oracle unavailable, retry with backoff", err)
	}

	if !result.Valid {
		if result.Reason.Retryable() {
			return nil, result, newRetryableError(CodePaymentPending, fmt.Sprintf("payment not confirmed yet: %s", result.Detail), nil)
		}
		return nil, result, newIssueError(CodePaymentRejected, fmt.Sprintf("payment verification failed (%s): %s", result.Reason, result.Detail))
	}

	// A concurrent duplicate request may have won between the existence
	// check and this insert; either way the returned row is the one
	// license this purchase will ever have.
	license, created, err := s.licenses.CreateIfAbsent(ctx, sessionID, buyerID, &txHash)
	if err != nil {
		return nil, result, wrapInternal("failed to create license", err)
	}

	if created {
		s.notifier.NotifySale(session, license)
	}

	return license, result, nil
}

// CreateLicense is the unverified trust path: the caller asserts payment
// was already settled out of band. The unique constraint still applies.
func (s *IssuerService) CreateLicense(ctx context.Context, sessionID, buyerID uuid.UUID, txHash *string) (*models.License, error) {
	if txHash != nil && !utils.IsTxHash(*txHash) {
		return nil, newIssueError(CodeInvalidInput, "malformed transaction hash")
	}

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	license, created, err := s.licenses.CreateIfAbsent(ctx, sessionID, buyerID, txHash)
	if err != nil {
		return nil, wrapInternal("failed to create license", err)
	}
	if !created {
		return nil, newIssueError(CodeAlreadyLicensed, "license already exists for this session and buyer")
	}

	s.notifier.NotifySale(session, license)

	return license, nil
}

func (s *IssuerService) loadSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	session, err := s.sessions.GetWithOwner(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, newIssueError(CodeSessionNotFound, "session not found")
		}
		return nil, wrapInternal("database error", err)
	}
	return session, nil
}

// obligations builds the expected split from the session's stored price,
// never from anything the client sent.
func (s *IssuerService) obligations(session *models.Session) []payments.Obligation {
	artistWallet := common.HexToAddress(session.Owner.WalletAddress)

	var platformWallet *common.Address
	if s.config.Payment.PlatformWallet != "" {
		addr := common.HexToAddress(s.config.Payment.PlatformWallet)
		platformWallet = &addr
	}

	obligations := payments.ComputeSplit(session.PriceUSD, s.config.Payment.PlatformFeeRate, artistWallet, platformWallet)

	logrus.WithFields(logrus.Fields{
		"session_id":  session.ID,
		"price_usd":   session.PriceUSD,
		"obligations": len(obligations),
	}).Debug("Computed payment split")

	return obligations
}
