package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"ministry/internal/config"
	"ministry/internal/model"
	"ministry/internal/monitoring"
	"ministry/internal/repository"
)

const dueMetadataKey = "due_id"

// CheckoutSessionCreator opens a Stripe Checkout session; the service's own client in production.
type CheckoutSessionCreator func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)

type CheckoutResult struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// PaymentService lets members settle their own dues through Stripe Checkout.
type PaymentService struct {
	repo          repository.Repository
	config        config.StripeConfig
	publicURL     string
	createSession CheckoutSessionCreator
	audit         *AuditService
	metrics       *monitoring.Metrics
	logger        *slog.Logger
	clock         Clock
}

func NewPaymentService(repo repository.Repository, cfg config.StripeConfig, publicURL string,
	audit *AuditService, metrics *monitoring.Metrics, logger *slog.Logger, clock Clock) *PaymentService {
	api := client.New(cfg.SecretKey, nil)

	return &PaymentService{
		repo:          repo,
		config:        cfg,
		publicURL:     publicURL,
		createSession: api.CheckoutSessions.New,
		audit:         audit,
		metrics:       metrics,
		logger:        logger,
		clock:         clock,
	}
}

// WithSessionCreator replaces the Stripe call, for tests.
func (s *PaymentService) WithSessionCreator(fn CheckoutSessionCreator) *PaymentService {
	s.createSession = fn
	return s
}

func (s *PaymentService) Enabled() bool {
	return s.config.SecretKey != ""
}

func (s *PaymentService) Checkout(ctx context.Context, caller model.Identity, dueID uuid.UUID) (CheckoutResult, error) {
	if !s.Enabled() {
		return CheckoutResult{}, ErrNotConfigured
	}
	me, err := memberOf(caller)
	if err != nil {
		return CheckoutResult{}, err
	}

	due, err := s.repo.GetFinancialRecord(ctx, dueID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if due.MemberID != me.ID {
		// other members' dues are reported as missing
		return CheckoutResult{}, repository.ErrFinancialRecordNotFound
	}
	if due.Type != model.RecordTypeDues {
		return CheckoutResult{}, invalid("only dues can be paid online")
	}
	if due.Status.Terminal() {
		return CheckoutResult{}, fmt.Errorf("%w: status is %s", model.ErrTerminalDueStatus, due.Status)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.publicURL + "/member/dues?checkout=success"),
		CancelURL:         stripe.String(s.publicURL + "/member/dues?checkout=cancelled"),
		ClientReferenceID: stripe.String(due.ID.String()),
		CustomerEmail:     stripe.String(me.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(s.config.Currency),
					UnitAmount: stripe.Int64(int64(due.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(due.Title),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata(dueMetadataKey, due.ID.String())

	sess, err := s.createSession(params)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("failed to create checkout session: %w", err)
	}

	s.logger.InfoContext(ctx, "Checkout session created", "due_id", due.ID, "session_id", sess.ID)
	return CheckoutResult{URL: sess.URL, SessionID: sess.ID}, nil
}

// HandleWebhook verifies a Stripe event and settles the due of a completed
// checkout. Replays of an already settled due are ignored.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if !s.Enabled() || s.config.WebhookSecret == "" {
		return ErrNotConfigured
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	switch string(event.Type) {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return invalid("malformed checkout session: %v", err)
		}
		return s.completeCheckout(ctx, &cs)
	default:
		s.logger.DebugContext(ctx, "Ignoring stripe event", "type", event.Type)
		return nil
	}
}

func (s *PaymentService) completeCheckout(ctx context.Context, cs *stripe.CheckoutSession) error {
	if cs.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		s.logger.InfoContext(ctx, "Checkout completed without payment", "session_id", cs.ID, "payment_status", cs.PaymentStatus)
		return nil
	}

	dueID, err := uuid.Parse(cs.Metadata[dueMetadataKey])
	if err != nil {
		return invalid("checkout session %s has no due id", cs.ID)
	}

	due, err := s.repo.GetFinancialRecord(ctx, dueID)
	if err != nil {
		return err
	}

	reference := cs.ID
	if cs.PaymentIntent != nil && cs.PaymentIntent.ID != "" {
		reference = cs.PaymentIntent.ID
	}
	today := s.clock.Today()
	err = due.MarkPaid(model.PaymentDetails{
		PaidDate:  &today,
		Method:    model.PaymentMethodCard,
		Reference: reference,
		Notes:     "Paid online",
	})
	if errors.Is(err, model.ErrTerminalDueStatus) {
		s.logger.InfoContext(ctx, "Due already settled", "due_id", due.ID, "status", due.Status)
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.repo.UpdateFinancialRecord(ctx, &due); err != nil {
		return err
	}

	s.metrics.RecordDuesPaid(ctx, string(model.PaymentMethodCard))
	s.audit.Record(ctx, nil, "dues.paid_online", map[string]any{"record_id": due.ID, "reference": reference})
	s.logger.InfoContext(ctx, "Due paid online", "due_id", due.ID, "reference", reference)
	return nil
}
