package bot

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/walletbot/internal/ledger"
	"github.com/congo-pay/walletbot/internal/notification"
	"github.com/congo-pay/walletbot/internal/session"
)

const defaultNotifyTimeout = 2 * time.Second

// Config holds the caller-side policy applied before the ledger is invoked.
// NotifyTimeout bounds each notification so a slow journal cannot hold up
// the reply.
type Config struct {
	MaxFundAmount decimal.Decimal
	HistoryLimit  int
	Location      *time.Location
	NotifyTimeout time.Duration
}

// Message is one inbound chat message. A zero UserID means the sender could
// not be identified.
type Message struct {
	UserID int64
	Text   string
}

// Service routes chat commands to the wallet ledger and session tracker and
// renders the reply text.
type Service struct {
	ledger   ledger.Ledger
	sessions *session.Tracker
	notifier notification.Notifier
	logger   *slog.Logger
	cfg      Config
}

// NewService builds a command router.
func NewService(l ledger.Ledger, sessions *session.Tracker, notifier notification.Notifier, logger *slog.Logger, cfg Config) *Service {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = ledger.DefaultHistoryLimit
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = defaultNotifyTimeout
	}
	return &Service{ledger: l, sessions: sessions, notifier: notifier, logger: logger, cfg: cfg}
}

// Handle processes one message and returns the reply. An empty reply means
// nothing should be sent back.
func (s *Service) Handle(ctx context.Context, msg Message) string {
	if msg.UserID == 0 {
		return replyUnknownUser
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return ""
	}
	if !strings.HasPrefix(text, "/") {
		return s.handleFreeText(ctx, msg.UserID, text)
	}

	name, args := parseCommand(text)
	switch name {
	case "start", "help":
		return welcomeText()
	case "balance":
		return balanceText(s.ledger.Balance(msg.UserID))
	case "fund":
		return s.handleFund(ctx, msg.UserID, args)
	case "withdraw":
		return s.handleWithdraw(ctx, msg.UserID, args)
	case "transactions":
		return s.handleTransactions(msg.UserID)
	default:
		return helpText()
	}
}

func (s *Service) handleFund(ctx context.Context, userID int64, args []string) string {
	if len(args) == 0 {
		if err := s.sessions.SetPendingAction(userID, session.ActionFund); err != nil {
			s.logger.Error("set pending action", slog.Int64("user_id", userID), slog.Any("error", err))
			return replyInternalError
		}
		return replyFundPrompt
	}

	amount, err := ParseAmount(args[0])
	if err != nil {
		return replyInvalidFund
	}
	if s.exceedsFundCap(amount) {
		return maxFundText(s.cfg.MaxFundAmount)
	}
	return s.fund(ctx, userID, amount)
}

func (s *Service) handleWithdraw(ctx context.Context, userID int64, args []string) string {
	if len(args) == 0 {
		balance := s.ledger.Balance(userID)
		if err := s.sessions.SetPendingAction(userID, session.ActionWithdraw); err != nil {
			s.logger.Error("set pending action", slog.Int64("user_id", userID), slog.Any("error", err))
			return replyInternalError
		}
		return withdrawPrompt(balance)
	}

	amount, err := ParseAmount(args[0])
	if err != nil {
		return replyInvalidWithdraw
	}
	return s.withdraw(ctx, userID, amount)
}

func (s *Service) handleTransactions(userID int64) string {
	txs := s.ledger.Transactions(userID, s.cfg.HistoryLimit)
	if len(txs) == 0 {
		return replyNoTransactions
	}
	return transactionsText(txs, s.cfg.Location)
}

// handleFreeText treats the message as the amount for a pending action.
// Unparseable input and over-cap funding keep the session so the user can
// retry; any ledger call clears it regardless of outcome.
func (s *Service) handleFreeText(ctx context.Context, userID int64, text string) string {
	action, ok := s.sessions.PendingAction(userID)
	if !ok {
		return helpText()
	}

	amount, err := ParseAmount(text)
	if err != nil {
		return replyInvalidFreeText
	}

	switch action {
	case session.ActionFund:
		if s.exceedsFundCap(amount) {
			return maxFundText(s.cfg.MaxFundAmount) + "\nPlease enter a smaller amount:"
		}
		reply := s.fund(ctx, userID, amount)
		s.sessions.ClearPendingAction(userID)
		return reply
	case session.ActionWithdraw:
		reply := s.withdraw(ctx, userID, amount)
		s.sessions.ClearPendingAction(userID)
		return reply
	default:
		s.sessions.ClearPendingAction(userID)
		return helpText()
	}
}

func (s *Service) exceedsFundCap(amount decimal.Decimal) bool {
	return s.cfg.MaxFundAmount.IsPositive() && amount.GreaterThan(s.cfg.MaxFundAmount)
}

func (s *Service) fund(ctx context.Context, userID int64, amount decimal.Decimal) string {
	res := s.ledger.Fund(userID, amount)
	s.report(ctx, userID, notification.KindWalletFunded, amount, res)
	return resultText(res)
}

func (s *Service) withdraw(ctx context.Context, userID int64, amount decimal.Decimal) string {
	res := s.ledger.Withdraw(userID, amount)
	s.report(ctx, userID, notification.KindWalletWithdrawn, amount, res)
	return resultText(res)
}

func (s *Service) report(ctx context.Context, userID int64, kind string, amount decimal.Decimal, res ledger.Result) {
	attrs := []any{
		slog.Int64("user_id", userID),
		slog.String("kind", kind),
		slog.String("amount", ledger.FormatAmount(amount)),
		slog.String("balance", ledger.FormatAmount(res.NewBalance)),
	}
	if !res.Success {
		s.logger.Info("wallet operation rejected", append(attrs, slog.String("reason", res.Message))...)
		return
	}
	s.logger.Info("wallet operation completed", attrs...)

	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.NotifyTimeout)
	defer cancel()
	err := s.notifier.Send(ctx, notification.Message{
		Kind:        kind,
		Destination: strconv.FormatInt(userID, 10),
		Body:        res.Message,
		OccurredAt:  res.Transaction.Timestamp.UTC(),
	})
	if err != nil {
		s.logger.Warn("notification failed", slog.Int64("user_id", userID), slog.Any("error", err))
	}
}

// parseCommand splits "/fund@WalletBot 50" into ("fund", ["50"]).
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return strings.ToLower(name), fields[1:]
}
