// internal/services/issuer_service_test.go
package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ValenteCreativo/Side-B-sub000/internal/config"
	"github.com/ValenteCreativo/Side-B-sub000/internal/models"
	"github.com/ValenteCreativo/Side-B-sub000/internal/payments"
	"github.com/ValenteCreativo/Side-B-sub000/internal/store"
	"github.com/ValenteCreativo/Side-B-sub000/internal/utils"
)

const validTxHash = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

type fakeSessionStore struct {
	sessions map[uuid.UUID]*models.Session
}

func (f *fakeSessionStore) GetWithOwner(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return session, nil
}

type licenseKey struct {
	sessionID uuid.UUID
	buyerID   uuid.UUID
}

// fakeLicenseStore mimics the composite unique constraint with a mutex
// so concurrent CreateIfAbsent calls converge on one row.
type fakeLicenseStore struct {
	mtx      sync.Mutex
	licenses map[licenseKey]*models.License
	failWith error
}

func newFakeLicenseStore() *fakeLicenseStore {
	return &fakeLicenseStore{licenses: make(map[licenseKey]*models.License)}
}

func (f *fakeLicenseStore) Exists(ctx context.Context, sessionID, buyerID uuid.UUID) (bool, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	_, ok := f.licenses[licenseKey{sessionID, buyerID}]
	return ok, nil
}

func (f *fakeLicenseStore) CreateIfAbsent(ctx context.Context, sessionID, buyerID uuid.UUID, txHash *string) (*models.License, bool, error) {
	if f.failWith != nil {
		return nil, false, f.failWith
	}

	f.mtx.Lock()
	defer f.mtx.Unlock()

	key := licenseKey{sessionID, buyerID}
	if existing, ok := f.licenses[key]; ok {
		return existing, false, nil
	}

	license := &models.License{
		BaseModel: models.BaseModel{ID: uuid.New()},
		SessionID: sessionID,
		BuyerID:   buyerID,
		TxHash:    txHash,
	}
	f.licenses[key] = license
	return license, true, nil
}

func (f *fakeLicenseStore) GetByID(ctx context.Context, id uuid.UUID) (*models.License, error) {
	return nil, store.ErrLicenseNotFound
}

func (f *fakeLicenseStore) GetBySessionAndBuyer(ctx context.Context, sessionID, buyerID uuid.UUID) (*models.License, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if license, ok := f.licenses[licenseKey{sessionID, buyerID}]; ok {
		return license, nil
	}
	return nil, store.ErrLicenseNotFound
}

func (f *fakeLicenseStore) ListByBuyer(ctx context.Context, buyerID uuid.UUID, params utils.PaginationParams) ([]models.License, int64, error) {
	return nil, 0, nil
}

func (f *fakeLicenseStore) ListBySession(ctx context.Context, sessionID uuid.UUID, params utils.PaginationParams) ([]models.License, int64, error) {
	return nil, 0, nil
}

type fakeVerifier struct {
	mtx    sync.Mutex
	calls  int
	result *payments.Result
	err    error
}

func (f *fakeVerifier) Verify(ctx context.Context, txHash common.Hash, obligations []payments.Obligation, minConfirmations uint64) (*payments.Result, error) {
	f.mtx.Lock()
	f.calls++
	f.mtx.Unlock()
	return f.result, f.err
}

type recordingNotifier struct {
	mtx   sync.Mutex
	sales int
}

func (r *recordingNotifier) NotifySale(session *models.Session, license *models.License) {
	r.mtx.Lock()
	r.sales++
	r.mtx.Unlock()
}

type issuerFixture struct {
	service   *IssuerService
	sessions  *fakeSessionStore
	licenses  *fakeLicenseStore
	verifier  *fakeVerifier
	notifier  *recordingNotifier
	sessionID uuid.UUID
	buyerID   uuid.UUID
}

func newIssuerFixture(t *testing.T) *issuerFixture {
	t.Helper()

	sessionID := uuid.New()
	owner := models.User{
		BaseModel:     models.BaseModel{ID: uuid.New()},
		WalletAddress: "0x1111111111111111111111111111111111111111",
	}
	session := &models.Session{
		BaseModel: models.BaseModel{ID: sessionID},
		OwnerID:   owner.ID,
		Title:     "Late Night Demo",
		PriceUSD:  decimal.RequireFromString("10.00"),
		Status:    models.SessionStatusPublished,
		Owner:     owner,
	}

	cfg := &config.Config{}
	cfg.Payment.PlatformWallet = "0x2222222222222222222222222222222222222222"
	cfg.Payment.PlatformFeeRate = decimal.RequireFromString("0.02")
	cfg.Chain.MinConfirmations = 3

	sessions := &fakeSessionStore{sessions: map[uuid.UUID]*models.Session{sessionID: session}}
	licenses := newFakeLicenseStore()
	verifier := &fakeVerifier{result: &payments.Result{Valid: true}}
	notifier := &recordingNotifier{}

	return &issuerFixture{
		service:   NewIssuerService(cfg, sessions, licenses, verifier, notifier),
		sessions:  sessions,
		licenses:  licenses,
		verifier:  verifier,
		notifier:  notifier,
		sessionID: sessionID,
		buyerID:   uuid.New(),
	}
}

func TestConfirmPaymentHappyPath(t *testing.T) {
	fx := newIssuerFixture(t)

	license, result, err := fx.service.ConfirmPayment(context.Background(), fx.sessionID, fx.buyerID, validTxHash)

	require.NoError(t, err)
	require.NotNil(t, license)
	assert.True(t, result.Valid)
	assert.Equal(t, fx.sessionID, license.SessionID)
	assert.Equal(t, fx.buyerID, license.BuyerID)
	require.NotNil(t, license.TxHash)
	assert.Equal(t, validTxHash, *license.TxHash)
	assert.Equal(t, 1, fx.notifier.sales)
}

func TestConfirmPaymentMalformedHashRejectedBeforeChainCall(t *testing.T) {
	fx := newIssuerFixture(t)

	_, _, err := fx.service.ConfirmPayment(context.Background(), fx.sessionID, fx.buyerID, "0xnothex")

	issueErr := AsIssueError(err)
	assert.Equal(t, CodeInvalidInput, issueErr.Code)
	assert.False(t, issueErr.Retryable)
	assert.Equal(t, 0, fx.verifier.calls, "validation failures must not cost an RPC round trip")
}

func TestConfirmPaymentSessionNotFound(t *testing.T) {
	fx := newIssuerFixture(t)

	_, _, err := fx.service.ConfirmPayment(context.Background(), uuid.New(), fx.buyerID, validTxHash)

	assert.Equal(t, CodeSessionNotFound, AsIssueError(err).Code)
}

func TestConfirmPaymentAlreadyLicensed(t *testing.T) {
	fx := newIssuerFixture(t)

	_, _, err := fx.service.ConfirmPayment(context.Background(), fx.sessionID, fx.buyerID, validTxHash)
	require.NoError(t, err)

	_, _, err = fx.service.ConfirmPayment(context.Background(), fx.sessionID, fx.buyerID, validTxHash)

	issueErr := AsIssueError(err)
	assert.Equal(t, CodeAlreadyLicensed, issueErr.Code)
	assert.Equal(t, 1, fx.notifier.sales, "replays must not re-notify")
}

func TestConfirmPaymentChainUnavailableIsRetryable(t *testing.T) {
	fx := newIssuerFixture(t)
	fx.verifier.result = nil
	fx.verifier.err = errors.New("rpc timeout")

	_, _, err := fx.service.ConfirmPayment(context.Background(), fx.sessionID, fx.buyerID, validTxHash)

	issueErr := AsIssueError(err)
	assert.Equal(t, CodeChainUnavailable, issueErr.Code)
	assert.True(t, issueErr.Retryable)
	exists, _ := fx.licenses.Exists(context.Background(), fx.sessionID, fx.buyerID)
	assert.False(t, exists, "no license may be issued without a verified payment")
}

func TestConfirmPaymentPendingLeavesNoLicense(t *testing.T) {
	fx := newIssuerFixture(t)
	fx.verifier.result = &payments.Result{
		Reason: payments.ReasonInsufficientConfirmations,
		Detail: "1 of 3 confirmations",
	}

	_, result, err := fx.service.ConfirmPayment(context.Background(), fx.sessionID, fx.buyerID, validTxHash)

	issueErr := AsIssueError(err)
	assert.Equal(t, CodePaymentPending, issueErr.Code)
	assert.True(t, issueErr.Retryable)
	require.NotNil(t, result)
	assert.Equal(t, payments.ReasonInsufficientConfirmations, result.Reason)

	exists, _ := fx.licenses.Exists(context.Background(), fx.sessionID, fx.buyerID)
	assert.False(t, exists)
	assert.Equal(t, 0, fx.notifier.sales)
}

func TestConfirmPaymentRejectedIsTerminal(t *testing.T) {
	fx := newIssuerFixture(t)
	fx.verifier.result = &payments.Result{
		Reason: payments.ReasonObligationUnmet,
		Detail: "platform obligation not satisfied",
	}

	_, result, err := fx.service.ConfirmPayment(context.Background(), fx.sessionID, fx.buyerID, validTxHash)

	issueErr := AsIssueError(err)
	assert.Equal(t, CodePaymentRejected, issueErr.Code)
	assert.False(t, issueErr.Retryable)
	assert.Contains(t, issueErr.Message, "OBLIGATION_UNMET")
	require.NotNil(t, result)
}

func TestConfirmPaymentConcurrentRequestsIssueOneLicense(t *testing.T) {
	fx := newIssuerFixture(t)

	const n = 8
	results := make([]*models.License, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, errs[i] = fx.service.ConfirmPayment(context.Background(), fx.sessionID, fx.buyerID, validTxHash)
		}(i)
	}
	wg.Wait()

	var winners []uuid.UUID
	for i := 0; i < n; i++ {
		if errs[i] == nil {
			winners = append(winners, results[i].ID)
		} else {
			assert.Equal(t, CodeAlreadyLicensed, AsIssueError(errs[i]).Code)
		}
	}

	require.NotEmpty(t, winners, "at least one request must succeed")
	for _, id := range winners {
		assert.Equal(t, winners[0], id, "every successful response must carry the same license")
	}
	assert.Len(t, fx.licenses.licenses, 1)
	assert.Equal(t, 1, fx.notifier.sales, "exactly one notification for one sale")
}

func TestQuotePaymentSplit(t *testing.T) {
	fx := newIssuerFixture(t)

	quote, err := fx.service.QuotePayment(context.Background(), fx.sessionID, fx.buyerID)

	require.NoError(t, err)
	assert.True(t, quote.ArtistPayment.Equal(decimal.RequireFromString("9.80")), "artist payment = %s", quote.ArtistPayment)
	assert.True(t, quote.PlatformFee.Equal(decimal.RequireFromString("0.20")), "platform fee = %s", quote.PlatformFee)
	assert.True(t, quote.Total.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, "Late Night Demo", quote.Session.Title)
}

func TestQuotePaymentAlreadyLicensed(t *testing.T) {
	fx := newIssuerFixture(t)
	_, _, err := fx.service.ConfirmPayment(context.Background(), fx.sessionID, fx.buyerID, validTxHash)
	require.NoError(t, err)

	_, err = fx.service.QuotePayment(context.Background(), fx.sessionID, fx.buyerID)

	assert.Equal(t, CodeAlreadyLicensed, AsIssueError(err).Code)
}

func TestCreateLicenseDuplicateIsConflict(t *testing.T) {
	fx := newIssuerFixture(t)

	_, err := fx.service.CreateLicense(context.Background(), fx.sessionID, fx.buyerID, nil)
	require.NoError(t, err)

	_, err = fx.service.CreateLicense(context.Background(), fx.sessionID, fx.buyerID, nil)
	assert.Equal(t, CodeAlreadyLicensed, AsIssueError(err).Code)
}

func TestCreateLicenseStoreFailureIsInternal(t *testing.T) {
	fx := newIssuerFixture(t)
	fx.licenses.failWith = errors.New("connection reset")

	_, err := fx.service.CreateLicense(context.Background(), fx.sessionID, fx.buyerID, nil)

	issueErr := AsIssueError(err)
	assert.Equal(t, CodeInternal, issueErr.Code)
	assert.ErrorIs(t, err, fx.licenses.failWith)
}
