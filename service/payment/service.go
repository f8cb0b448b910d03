// Package payment orchestrates the payment pipeline: validate user input,
// generate a reference key, build the transfer transaction, hand it to the
// signer capability, and reconcile the outcome into the persisted history.
// The sequence is strict and sequential — token fetch, build, sign, broadcast,
// record — with no retry at any step: a failed submission must be re-initiated
// by the caller so a fresh blockhash is used.
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	solanago "github.com/gagliardetto/solana-go"

	"github.com/brojonat/solcash/service/history"
	"github.com/brojonat/solcash/service/metrics"
	"github.com/brojonat/solcash/service/nats"
	"github.com/brojonat/solcash/service/solana"
)

// Service runs the payment pipeline against injected capabilities.
type Service struct {
	payer     solanago.PublicKey
	builder   *solana.Builder
	signer    solana.Signer
	poller    *solana.Poller // nil disables confirmation waiting
	store     history.Store
	verifier  history.Verifier
	publisher nats.Publisher // nil disables event publishing
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time

	confirmTimeout time.Duration // bounds the confirmation wait; zero means caller's context only
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithPoller enables confirmation polling after broadcast.
func WithPoller(p *solana.Poller) Option {
	return func(s *Service) { s.poller = p }
}

// WithPublisher enables best-effort payment event publishing.
func WithPublisher(p nats.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics enables metric recording.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithVerifier overrides the party verifier (default: history.UnverifiedParties).
func WithVerifier(v history.Verifier) Option {
	return func(s *Service) { s.verifier = v }
}

// WithClock overrides the capture-time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithConfirmationTimeout bounds the confirmation wait. Zero means the wait
// is bounded only by the caller's context.
func WithConfirmationTimeout(d time.Duration) Option {
	return func(s *Service) { s.confirmTimeout = d }
}

// NewService creates a payment service. The payer is the connected wallet's
// address; it is both the source of funds and the fee payer for every
// transaction the service submits.
func NewService(payer solanago.PublicKey, builder *solana.Builder, signer solana.Signer, store history.Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		payer:    payer,
		builder:  builder,
		signer:   signer,
		store:    store,
		verifier: history.UnverifiedParties{},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitParams contains the user-entered fields for one payment.
type SubmitParams struct {
	PayeeText  string // free-form, must parse as a base58 public key
	AmountText string // free-form, must parse as a positive decimal (whole SOL)
	Purpose    string // may be empty

	// WaitForConfirmation blocks until the signature reaches finality and
	// transitions the record's status. Requires a poller; without one the
	// record stays "submitted".
	WaitForConfirmation bool
}

// Receipt is the caller-facing result of a successful submission.
type Receipt struct {
	Signature solanago.Signature
	Reference solanago.PublicKey
	Record    history.Record
	History   history.History
}

// SubmitPayment runs the full pipeline for one payment. On any failure before
// broadcast acceptance the history is untouched and the error is surfaced
// unmodified; on success the new record is prepended to the history and the
// history is re-persisted in full.
func (s *Service) SubmitPayment(ctx context.Context, params SubmitParams) (*Receipt, error) {
	start := s.now()
	payerLabel := s.payer.String()

	payee, amount, err := s.validate(params)
	if err != nil {
		s.recordFailure(payerLabel, "validate", start)
		return nil, err
	}

	reference := solana.NewReference()

	tx, err := s.builder.Build(ctx, solana.BuildParams{
		Payer:     s.payer,
		Payee:     payee,
		AmountSOL: amount,
		Reference: reference,
	})
	if err != nil {
		s.recordFailure(payerLabel, "build", start)
		return nil, err
	}

	sig, err := s.signer.SignAndSubmit(ctx, tx)
	if err != nil {
		s.recordFailure(payerLabel, "submit", start)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordPaymentSubmitted(payerLabel)
		s.metrics.RecordPipelineDuration("success", time.Since(start).Seconds())
	}

	rec, hist := s.record(ctx, params, payee, amount, sig, reference)

	receipt := &Receipt{
		Signature: sig,
		Reference: reference,
		Record:    rec,
		History:   hist,
	}

	if params.WaitForConfirmation && s.poller != nil {
		receipt.Record, receipt.History = s.awaitConfirmation(ctx, sig, payerLabel, receipt.Record, receipt.History)
	}

	s.publish(ctx, receipt.Record)

	return receipt, nil
}

// History returns the current persisted payment history.
func (s *Service) History(ctx context.Context) (history.History, error) {
	return s.store.Load(ctx)
}

// Payer returns the connected wallet address the service pays from.
func (s *Service) Payer() solanago.PublicKey {
	return s.payer
}

// validate parses the user-entered payee and amount text.
func (s *Service) validate(params SubmitParams) (solanago.PublicKey, float64, error) {
	amountText := strings.TrimSpace(params.AmountText)
	amount, err := strconv.ParseFloat(amountText, 64)
	if err != nil {
		return solanago.PublicKey{}, 0, fmt.Errorf("%w: %q is not a number", solana.ErrInvalidAmount, params.AmountText)
	}
	if amount <= 0 {
		return solanago.PublicKey{}, 0, fmt.Errorf("%w: amount must be greater than zero, got %v", solana.ErrInvalidAmount, amount)
	}

	payee, err := solanago.PublicKeyFromBase58(strings.TrimSpace(params.PayeeText))
	if err != nil {
		return solanago.PublicKey{}, 0, fmt.Errorf("%w: %q: %v", solana.ErrInvalidAddress, params.PayeeText, err)
	}

	return payee, amount, nil
}

// record appends the new record to the history and persists it. Persistence
// is best-effort: on a save failure the in-memory history and the persisted
// copy diverge until the next successful write, and the submission still
// counts as recorded for the caller.
func (s *Service) record(ctx context.Context, params SubmitParams, payee solanago.PublicKey, amount float64, sig solanago.Signature, reference solanago.PublicKey) (history.Record, history.History) {
	hist, err := s.store.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "could not load history before recording, starting from empty",
			"error", err,
		)
		hist = history.History{}
	}

	rec := history.NewRecord(hist, history.NewRecordParams{
		Payer:     s.payer,
		Payee:     payee,
		Amount:    amount,
		Purpose:   params.Purpose,
		Signature: sig,
		Reference: reference,
	}, s.now(), s.verifier)

	hist = hist.Prepend(rec)

	if err := s.store.Save(ctx, hist); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist history after submission",
			"signature", sig.String(),
			"error", err,
		)
	}

	s.logger.InfoContext(ctx, "payment recorded",
		"id", rec.ID,
		"signature", rec.Signature,
		"amount", rec.Amount,
		"status", rec.Status,
	)

	return rec, hist
}

// awaitConfirmation blocks on the poller and transitions the record's status.
// A poll timeout leaves the record in its submitted state.
func (s *Service) awaitConfirmation(ctx context.Context, sig solanago.Signature, payerLabel string, rec history.Record, hist history.History) (history.Record, history.History) {
	if s.confirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.confirmTimeout)
		defer cancel()
	}

	waitStart := s.now()
	conf, err := s.poller.WaitForConfirmation(ctx, sig)
	if err != nil {
		s.logger.WarnContext(ctx, "confirmation wait ended without a terminal status",
			"signature", sig.String(),
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.RecordConfirmationWait("timeout", time.Since(waitStart).Seconds())
		}
		return rec, hist
	}

	status := history.StatusConfirmed
	outcome := "confirmed"
	if conf.Err != nil {
		status = history.StatusFailed
		outcome = "failed"
	}

	if s.metrics != nil {
		s.metrics.RecordConfirmationWait(outcome, time.Since(waitStart).Seconds())
		if status == history.StatusConfirmed {
			s.metrics.RecordPaymentConfirmed(payerLabel)
		} else {
			s.metrics.RecordPaymentFailed(payerLabel, "confirm")
		}
	}

	return s.transitionStatus(ctx, sig, status, rec, hist)
}

// transitionStatus rewrites the record's status in the persisted history.
func (s *Service) transitionStatus(ctx context.Context, sig solanago.Signature, status string, rec history.Record, hist history.History) (history.Record, history.History) {
	updated, found := hist.WithStatus(sig.String(), status)
	if !found {
		s.logger.WarnContext(ctx, "record not found for status transition",
			"signature", sig.String(),
		)
		return rec, hist
	}

	if err := s.store.Save(ctx, updated); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist status transition",
			"signature", sig.String(),
			"status", status,
			"error", err,
		)
	}

	rec.Status = status
	s.logger.InfoContext(ctx, "payment status transitioned",
		"signature", sig.String(),
		"status", status,
	)

	return rec, updated
}

// publish sends the payment event to NATS. Publishing is best-effort and
// never affects the submission outcome.
func (s *Service) publish(ctx context.Context, rec history.Record) {
	if s.publisher == nil {
		return
	}

	event := nats.FromRecord(rec)
	subject := fmt.Sprintf("payments.%s", event.PayerAddress)

	start := time.Now()
	err := s.publisher.PublishPayment(ctx, event)
	if s.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		s.metrics.RecordNATSPublish(subject, status, time.Since(start).Seconds())
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to publish payment event",
			"signature", rec.Signature,
			"error", err,
		)
	}
}

func (s *Service) recordFailure(payer, stage string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordPaymentFailed(payer, stage)
	s.metrics.RecordPipelineDuration("error", time.Since(start).Seconds())
}
