// Package slot реализует мини-игру «игровой автомат»: три барабана по три символа,
// выигрыш при совпадении средней строки, автопополнение кредитов и автоигру.
package slot

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/magabrotheeeer/companion-chat/internal/lib/metrics"
	"github.com/magabrotheeeer/companion-chat/internal/models"
)

var (
	// ErrSpinInProgress барабаны ещё крутятся.
	ErrSpinInProgress = errors.New("spin already in progress")
	// ErrInsufficientCredits ставка больше доступных кредитов.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrClosed автомат остановлен.
	ErrClosed = errors.New("slot machine is closed")
)

// Symbols таблица символов и множителей.
var Symbols = []models.Symbol{
	{Name: "strawberry", Multiplier: 5},
	{Name: "lips", Multiplier: 10},
	{Name: "drops", Multiplier: 3},
	{Name: "coin", Multiplier: 15},
	{Name: "banana", Multiplier: 8},
}

var (
	winReactions = []string{
		"Mmm, you're so lucky! Want to celebrate with me?",
		"Oh my god, you WON! I love watching you win...",
		"Jackpot, baby! I love a winner...",
		"You're on fire! Keep winning for me!",
		"That's it! Just like that! Keep going... 😘",
	}
	depositReactions = []string{
		"I just added more credits for you, baby... I love being generous with my special players...",
		"Looks like you needed a refill. I'm always happy to give you more...",
		"I added some credits to keep you playing with me longer. I don't want our fun to end too soon...",
		"More credits for you! I love watching you play...",
		"I gave you more credits because I'm not ready to stop playing with you yet... are you?",
	}
)

// RNG источник случайных чисел. *rand.Rand из math/rand/v2 подходит.
type RNG interface {
	IntN(n int) int
}

// Options параметры игры.
type Options struct {
	StartCredits  int
	StartBet      int
	MinBet        int
	MaxBet        int
	BetStep       int
	DepositAmount int
	SpinDelay     time.Duration
	AutoSpinDelay time.Duration
}

// Machine состояние автомата. Все таймеры принадлежат автомату и отменяются в Close.
type Machine struct {
	log  *slog.Logger
	rng  RNG
	opts Options
	now  func() time.Time

	mu        sync.Mutex
	credits   int
	bet       int
	spinning  bool
	autoSpin  bool
	closed    bool
	reels     [3][3]models.Symbol
	lastEvent *models.SlotEvent
	spinTimer *time.Timer
	autoTimer *time.Timer
}

// New создаёт автомат. Если rng равен nil, используется глобальный генератор math/rand/v2.
func New(log *slog.Logger, rng RNG, opts Options) *Machine {
	if rng == nil {
		rng = globalRNG{}
	}
	m := &Machine{
		log:     log,
		rng:     rng,
		opts:    opts,
		now:     time.Now,
		credits: opts.StartCredits,
		bet:     opts.StartBet,
		reels: [3][3]models.Symbol{
			{Symbols[0], Symbols[1], Symbols[2]},
			{Symbols[3], Symbols[4], Symbols[0]},
			{Symbols[1], Symbols[2], Symbols[3]},
		},
	}
	m.mu.Lock()
	m.settleLocked()
	m.mu.Unlock()
	return m
}

type globalRNG struct{}

func (globalRNG) IntN(n int) int { return rand.IntN(n) }

// Spin списывает ставку и запускает вращение. Результат появится через SpinDelay.
// При нехватке кредитов ставка не списывается, барабаны не меняются, а кредиты пополняются.
func (m *Machine) Spin() (models.SlotState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.spinLocked()
	return m.stateLocked(), err
}

func (m *Machine) spinLocked() error {
	const op = "slot.Spin"
	if m.closed {
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}
	if m.spinning {
		return fmt.Errorf("%s: %w", op, ErrSpinInProgress)
	}
	if m.credits < m.bet {
		m.depositLocked()
		return fmt.Errorf("%s: %w", op, ErrInsufficientCredits)
	}

	m.credits -= m.bet
	m.spinning = true
	m.lastEvent = nil
	m.stopAutoLocked()
	bet := m.bet
	m.spinTimer = time.AfterFunc(m.opts.SpinDelay, func() { m.finishSpin(bet) })
	metrics.SlotEvents.WithLabelValues("spin").Inc()
	return nil
}

func (m *Machine) finishSpin(bet int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || !m.spinning {
		return
	}
	m.spinTimer = nil

	for i := range m.reels {
		for j := range m.reels[i] {
			m.reels[i][j] = Symbols[m.rng.IntN(len(Symbols))]
		}
	}
	m.spinning = false

	middle := [3]models.Symbol{m.reels[0][1], m.reels[1][1], m.reels[2][1]}
	if middle[0].Name == middle[1].Name && middle[1].Name == middle[2].Name {
		win := bet * middle[0].Multiplier
		m.credits += win
		m.lastEvent = &models.SlotEvent{
			Kind:     models.SlotWin,
			Amount:   win,
			Symbol:   middle[0].Name,
			Reaction: winReactions[m.rng.IntN(len(winReactions))],
			At:       m.now(),
		}
		metrics.SlotEvents.WithLabelValues("win").Inc()
		m.log.Debug("slot win", slog.String("symbol", middle[0].Name), slog.Int("amount", win))
	} else {
		m.lastEvent = &models.SlotEvent{Kind: models.SlotNoWin, At: m.now()}
	}

	m.settleLocked()
}

// settleLocked пополняет кредиты, если их не хватает на ставку, и планирует автоигру.
func (m *Machine) settleLocked() {
	if m.spinning {
		return
	}
	if m.credits < m.bet {
		m.depositLocked()
	}
	m.scheduleAutoLocked()
}

func (m *Machine) depositLocked() {
	m.credits += m.opts.DepositAmount
	m.lastEvent = &models.SlotEvent{
		Kind:     models.SlotDeposit,
		Amount:   m.opts.DepositAmount,
		Reaction: depositReactions[m.rng.IntN(len(depositReactions))],
		At:       m.now(),
	}
	metrics.SlotEvents.WithLabelValues("deposit").Inc()
}

func (m *Machine) scheduleAutoLocked() {
	m.stopAutoLocked()
	if m.closed || !m.autoSpin || m.spinning || m.credits < m.bet {
		return
	}
	m.autoTimer = time.AfterFunc(m.opts.AutoSpinDelay, m.autoSpinFire)
}

func (m *Machine) autoSpinFire() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.autoTimer == nil || !m.autoSpin {
		return
	}
	m.autoTimer = nil

	if err := m.spinLocked(); err != nil && !errors.Is(err, ErrInsufficientCredits) {
		m.log.Debug("auto spin skipped", slog.String("reason", err.Error()))
	}
}

func (m *Machine) stopAutoLocked() {
	if m.autoTimer != nil {
		m.autoTimer.Stop()
		m.autoTimer = nil
	}
}

// AdjustBet меняет ставку на шаг в направлении direction (1 или -1) в пределах [MinBet, MaxBet].
func (m *Machine) AdjustBet(direction int) (models.SlotState, error) {
	const op = "slot.AdjustBet"
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.spinning {
		return m.stateLocked(), fmt.Errorf("%s: %w", op, ErrSpinInProgress)
	}

	step := m.opts.BetStep
	if direction < 0 {
		step = -step
	}
	m.bet = min(max(m.bet+step, m.opts.MinBet), m.opts.MaxBet)
	m.settleLocked()
	return m.stateLocked(), nil
}

// SetAutoSpin включает или выключает автоигру.
func (m *Machine) SetAutoSpin(enabled bool) models.SlotState {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoSpin = enabled
	if enabled {
		m.scheduleAutoLocked()
	} else {
		m.stopAutoLocked()
	}
	return m.stateLocked()
}

// State снимок автомата.
func (m *Machine) State() models.SlotState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Machine) stateLocked() models.SlotState {
	st := models.SlotState{
		Credits:  m.credits,
		Bet:      m.bet,
		MinBet:   m.opts.MinBet,
		MaxBet:   m.opts.MaxBet,
		Spinning: m.spinning,
		AutoSpin: m.autoSpin,
		Reels:    m.reels,
	}
	if m.lastEvent != nil {
		ev := *m.lastEvent
		st.LastEvent = &ev
	}
	return st
}

// Close останавливает таймеры вращения и автоигры.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.spinTimer != nil {
		m.spinTimer.Stop()
		m.spinTimer = nil
	}
	m.stopAutoLocked()
}
