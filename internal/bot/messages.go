package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/walletbot/internal/ledger"
)

const commandList = `💰 /balance - Check your current wallet balance
💵 /fund <amount> or /fund - Add money to your wallet
💸 /withdraw <amount> or /withdraw - Withdraw money from your wallet
📊 /transactions - View your recent transactions`

const (
	replyUnknownUser      = "❌ Unable to identify user."
	replyNoTransactions   = "📝 You have not made any transactions yet."
	replyInvalidFund      = "❌ Please enter a valid positive amount.\nExample: /fund 50"
	replyInvalidWithdraw  = "❌ Please enter a valid positive amount.\nExample: /withdraw 25"
	replyInvalidFreeText  = "❌ Please enter a valid positive number.\nExample: 50 or 100.25"
	replyFundPrompt       = "💵 How much would you like to fund your wallet?\n\nPlease enter the amount (e.g., 50, 100.50):"
	replyInternalError    = "❌ An unexpected error occurred. Please try again."
	successPrefix         = "✅ "
	failurePrefix         = "❌ "
	transactionDateLayout = "1/2/2006"
	transactionTimeLayout = "3:04:05 PM"
)

func welcomeText() string {
	return "🎉 Welcome to Wallet Bot! 🎉\n\n" +
		"I'm here to help you manage your virtual wallet. Here's what I can do:\n\n" +
		commandList + "\n\n" +
		"This is a simulation bot - no real money is involved!\n" +
		"Just type any command to get started.\n\n" +
		"Example: /fund 100"
}

func helpText() string {
	return "❓ I didn't understand that command. Here are the available commands:\n\n" +
		commandList + "\n\n" +
		"Example: /fund 100 or just /fund"
}

func balanceText(balance decimal.Decimal) string {
	return fmt.Sprintf("💰 Your wallet balance is $%s", ledger.FormatAmount(balance))
}

func withdrawPrompt(balance decimal.Decimal) string {
	return fmt.Sprintf("💸 How much would you like to withdraw?\n\nYour current balance: $%s\nPlease enter the amount (e.g., 25, 50.75):",
		ledger.FormatAmount(balance))
}

func maxFundText(limit decimal.Decimal) string {
	return fmt.Sprintf("❌ Maximum funding amount is $%s per transaction.", groupThousands(limit))
}

func resultText(res ledger.Result) string {
	if res.Success {
		return successPrefix + res.Message
	}
	return failurePrefix + res.Message
}

// transactionsText renders a history listing, newest first.
func transactionsText(txs []ledger.Transaction, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Your last %d transactions:\n\n", len(txs))
	for _, tx := range txs {
		icon, sign := "💸", "-"
		if tx.Type == ledger.TypeFund {
			icon, sign = "💵", "+"
		}
		ts := tx.Timestamp.In(loc)
		fmt.Fprintf(&b, "%s %s$%s\n", icon, sign, ledger.FormatAmount(tx.Amount))
		fmt.Fprintf(&b, "   %s\n", tx.Description)
		fmt.Fprintf(&b, "   %s at %s\n\n", ts.Format(transactionDateLayout), ts.Format(transactionTimeLayout))
	}
	return strings.TrimRight(b.String(), "\n")
}

// groupThousands renders d with comma separators, dropping the fraction for
// whole numbers: 10000 -> "10,000", 2500.5 -> "2,500.50".
func groupThousands(d decimal.Decimal) string {
	s := d.StringFixed(0)
	frac := ""
	if !d.IsInteger() {
		fixed := d.StringFixed(2)
		dot := strings.IndexByte(fixed, '.')
		s, frac = fixed[:dot], fixed[dot:]
	}

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
