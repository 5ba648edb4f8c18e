// =============================
// File: internal/tui/model.go
// =============================

// Package tui is an interactive playground over a simulated pool: pick an
// operation, type an amount and a slippage tolerance, and watch the reserves
// and fee balances move.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/solana-amm/internal/sim"
	"github.com/rovshanmuradov/solana-amm/internal/types"
)

type operation int

const (
	opSwapAtoB operation = iota
	opSwapBtoA
	opDepositAll
	opWithdrawAll
	opDepositSingleA
	opWithdrawSingleA
	opCount
)

func (o operation) String() string {
	switch o {
	case opSwapAtoB:
		return "Swap A→B"
	case opSwapBtoA:
		return "Swap B→A"
	case opDepositAll:
		return "Deposit both"
	case opWithdrawAll:
		return "Withdraw both"
	case opDepositSingleA:
		return "Deposit A only"
	case opWithdrawSingleA:
		return "Withdraw A only"
	}
	return "?"
}

const historyLimit = 8

// Model drives one sim.Session from the terminal.
type Model struct {
	session *sim.Session
	keys    KeyMap

	amount   textinput.Model
	slippage textinput.Model
	focus    int // 0 amount, 1 slippage

	op       operation
	balances sim.Balances
	history  []string
	err      error

	width  int
	height int
}

// New builds the playground over an already bootstrapped session.
func New(session *sim.Session) (*Model, error) {
	balances, err := session.Balances(context.Background())
	if err != nil {
		return nil, err
	}

	amount := textinput.New()
	amount.Placeholder = "amount"
	amount.CharLimit = 20
	amount.Width = 16
	amount.SetValue("1000")
	amount.Focus()

	slippage := textinput.New()
	slippage.Placeholder = "slippage bps"
	slippage.CharLimit = 6
	slippage.Width = 16
	slippage.SetValue("100")

	return &Model{
		session:  session,
		keys:     DefaultKeyMap(),
		amount:   amount,
		slippage: slippage,
		balances: balances,
	}, nil
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.NextField):
			m.toggleFocus()
			return m, nil
		case key.Matches(msg, m.keys.PrevOp):
			m.op = (m.op + opCount - 1) % opCount
			return m, nil
		case key.Matches(msg, m.keys.NextOp):
			m.op = (m.op + 1) % opCount
			return m, nil
		case key.Matches(msg, m.keys.Execute):
			m.runOperation()
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.amount, cmd = m.amount.Update(msg)
	} else {
		m.slippage, cmd = m.slippage.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleFocus() {
	if m.focus == 0 {
		m.focus = 1
		m.amount.Blur()
		m.slippage.Focus()
	} else {
		m.focus = 0
		m.slippage.Blur()
		m.amount.Focus()
	}
}

func (m *Model) slippagePolicy() types.SlippageConfig {
	bps, err := strconv.ParseUint(strings.TrimSpace(m.slippage.Value()), 10, 32)
	if err != nil {
		return types.SlippageConfig{Type: types.SlippageNone}
	}
	return types.SlippageConfig{Type: types.SlippagePercent, Value: float64(bps) / 100}
}

// runOperation executes the selected operation with the typed amount and
// records the outcome in the history pane.
func (m *Model) runOperation() {
	m.err = nil
	ctx := context.Background()

	amount, err := strconv.ParseUint(strings.TrimSpace(m.amount.Value()), 10, 64)
	if err != nil {
		m.err = fmt.Errorf("amount: %w", err)
		return
	}
	policy := m.slippagePolicy()

	var report sim.Report
	switch m.op {
	case opSwapAtoB, opSwapBtoA:
		aToB := m.op == opSwapAtoB
		quote, qerr := m.session.Quote(ctx, aToB, amount)
		if qerr != nil {
			m.err = qerr
			return
		}
		report, err = m.session.Swap(ctx, aToB, amount, policy.MinAmountOut(quote.AmountOut))

	case opDepositAll:
		estimateA, estimateB := m.proportional(amount)
		report, err = m.session.DepositAll(ctx, amount,
			policy.MaxAmountIn(estimateA), policy.MaxAmountIn(estimateB))

	case opWithdrawAll:
		estimateA, estimateB := m.proportional(amount)
		report, err = m.session.WithdrawAll(ctx, amount,
			policy.MinAmountOut(estimateA), policy.MinAmountOut(estimateB))

	case opDepositSingleA:
		report, err = m.session.DepositSingle(ctx, true, amount, 1)

	case opWithdrawSingleA:
		report, err = m.session.WithdrawSingle(ctx, true, amount, m.balances.UserLP)
	}
	if err != nil {
		m.err = err
		m.pushHistory(errorStyle.Render(fmt.Sprintf("%s %d rejected: %v", m.op, amount, err)))
		return
	}

	m.balances = report.After
	m.pushHistory(successStyle.Render(fmt.Sprintf(
		"%s %d  pool %d/%d  lp %d",
		report.Op, amount, report.After.PoolA, report.After.PoolB, report.After.UserLP)))
}

// proportional estimates both trading sides for a pool-token amount at the
// current reserves; the slippage policy turns it into a bound.
func (m *Model) proportional(poolTokens uint64) (uint64, uint64) {
	if m.balances.LPSupply == 0 {
		return 0, 0
	}
	ratio := float64(poolTokens) / float64(m.balances.LPSupply)
	return uint64(ratio * float64(m.balances.PoolA)), uint64(ratio * float64(m.balances.PoolB))
}

func (m *Model) pushHistory(line string) {
	m.history = append(m.history, line)
	if len(m.history) > historyLimit {
		m.history = m.history[len(m.history)-historyLimit:]
	}
}

func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	title := titleStyle.Render("AMM Pool Playground")

	balances := paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		balanceLine("Pool A", m.balances.PoolA),
		balanceLine("Pool B", m.balances.PoolB),
		balanceLine("LP supply", m.balances.LPSupply),
		balanceLine("User A", m.balances.UserA),
		balanceLine("User B", m.balances.UserB),
		balanceLine("User LP", m.balances.UserLP),
		balanceLine("Fees A/B", m.balances.FeeA+m.balances.FeeB),
		balanceLine("Fee lamports", m.balances.FeeLamports),
	))

	ops := make([]string, 0, int(opCount))
	for op := operation(0); op < opCount; op++ {
		if op == m.op {
			ops = append(ops, selectedOpStyle.Render(op.String()))
		} else {
			ops = append(ops, opStyle.Render(op.String()))
		}
	}
	opBar := lipgloss.JoinHorizontal(lipgloss.Top, ops...)

	inputs := lipgloss.JoinHorizontal(lipgloss.Top,
		labelStyle.Render(" amount "), m.amount.View(),
		labelStyle.Render("  slippage bps "), m.slippage.View(),
	)

	quoteLine := ""
	if m.op == opSwapAtoB || m.op == opSwapBtoA {
		if amount, err := strconv.ParseUint(strings.TrimSpace(m.amount.Value()), 10, 64); err == nil {
			if q, err := m.session.Quote(context.Background(), m.op == opSwapAtoB, amount); err == nil {
				quoteLine = quoteStyle.Render(fmt.Sprintf(
					" quote: %d → %d (fee %d, price %.6f)",
					q.AmountIn, q.AmountOut, q.OwnerFee, q.EffectivePrice))
			}
		}
	}

	history := paneStyle.Render(strings.Join(append([]string{labelStyle.Render("history")}, m.history...), "\n"))

	errLine := ""
	if m.err != nil {
		errLine = errorStyle.Render(" " + m.err.Error())
	}

	help := lipgloss.JoinHorizontal(lipgloss.Top,
		helpKeyStyle.Render(" ←/→"), helpDescStyle.Render(" operation "),
		helpKeyStyle.Render(" tab"), helpDescStyle.Render(" field "),
		helpKeyStyle.Render(" enter"), helpDescStyle.Render(" execute "),
		helpKeyStyle.Render(" q"), helpDescStyle.Render(" quit"),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		title, balances, opBar, inputs, quoteLine, errLine, history, help)
}

func balanceLine(label string, value uint64) string {
	return labelStyle.Render(fmt.Sprintf("%-13s", label)) + valueStyle.Render(fmt.Sprintf("%d", value))
}
