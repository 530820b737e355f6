package negotiation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"parley/internal/catalog"
	"parley/internal/event"
	"parley/internal/llm"
	"parley/internal/logging"
	"parley/internal/metrics"
)

// DefaultRounds matches the shipped negotiation length.
const DefaultRounds = 3

// Config assembles everything one session needs. Events, Logger and
// Metrics may be nil; the session then runs silently.
type Config struct {
	Suppliers  []catalog.Supplier
	Products   []catalog.Product
	Quantities map[string]int
	Note       string
	Rounds     int
	Generator  llm.Client
	Events     *event.Bus[event.Event]
	Logger     *logging.Logger
	Metrics    *metrics.Registry
	// Rand seeds the opening-quote jitter; nil uses the global source.
	Rand *rand.Rand
}

// Session is a single negotiation run. A Session is one-shot: build it
// with New, call Run once, then discard it.
type Session struct {
	cfg       Config
	brand     *BrandAgent
	suppliers map[int]*SupplierAgent
	threads   *Store

	mu     sync.Mutex
	offers map[int]string
}

func New(cfg Config) (*Session, error) {
	if len(cfg.Suppliers) == 0 {
		return nil, errors.New("negotiation: at least one supplier required")
	}
	if len(cfg.Products) == 0 {
		return nil, errors.New("negotiation: at least one product required")
	}
	if cfg.Generator == nil {
		return nil, errors.New("negotiation: generator required")
	}
	if cfg.Rounds <= 0 {
		cfg.Rounds = DefaultRounds
	}

	supplierAgents := make(map[int]*SupplierAgent, len(cfg.Suppliers))
	supplierIDs := make([]int, 0, len(cfg.Suppliers))
	for _, supplier := range cfg.Suppliers {
		quotes := OpeningQuotes(supplier, cfg.Products, cfg.Rand)
		supplierAgents[supplier.ID] = NewSupplierAgent(cfg.Generator, supplier, cfg.Products, quotes)
		supplierIDs = append(supplierIDs, supplier.ID)
	}

	return &Session{
		cfg:       cfg,
		brand:     NewBrandAgent(cfg.Generator, cfg.Suppliers, cfg.Products, cfg.Quantities, cfg.Note),
		suppliers: supplierAgents,
		threads:   NewStore(supplierIDs),
		offers:    make(map[int]string, len(cfg.Suppliers)),
	}, nil
}

// Threads exposes the conversation store, mainly for inspection after
// Run returns.
func (s *Session) Threads() *Store {
	return s.threads
}

// Run drives the whole negotiation and blocks until it finishes. It
// emits exactly one terminal event: DoneEvent on success (always after
// DecisionEvent), ErrorEvent on failure. The first failing step aborts
// the session and cancels in-flight sibling calls.
func (s *Session) Run(ctx context.Context) error {
	s.cfg.Metrics.IncSessionStarted()
	s.logInfo("negotiation started", map[string]string{
		"suppliers": fmt.Sprint(len(s.cfg.Suppliers)),
		"rounds":    fmt.Sprint(s.cfg.Rounds),
	})

	s.publish(NewStatusEvent("Agents initialised. Starting negotiation…"))

	if err := s.runRounds(ctx); err != nil {
		return s.fail(err)
	}

	s.publish(NewStatusEvent("All rounds complete. Making final decision…"))

	started := time.Now()
	decision, err := s.brand.Decide(ctx, s.finalOffers())
	s.cfg.Metrics.RecordGeneration("brand_decision", time.Since(started), err)
	if err != nil {
		return s.fail(err)
	}

	s.publish(NewDecisionEvent(decision))
	s.publish(NewDoneEvent())
	s.cfg.Metrics.IncSessionCompleted()
	s.logInfo("negotiation completed", map[string]string{
		"winner_id":   fmt.Sprint(decision.WinnerSupplierID),
		"winner_name": decision.WinnerName,
	})
	return nil
}

func (s *Session) runRounds(ctx context.Context) error {
	for round := 1; round <= s.cfg.Rounds; round++ {
		if round == 1 {
			s.publish(NewStatusEvent("Round 1 — sending RFQ to all suppliers…"))
		} else {
			s.publish(NewStatusEvent(fmt.Sprintf("Round %d — brand generating counter-proposals…", round)))
		}

		group, groupCtx := errgroup.WithContext(ctx)
		for _, supplier := range s.cfg.Suppliers {
			supplier := supplier
			group.Go(func() error {
				return s.runTurn(groupCtx, round, supplier)
			})
		}
		if err := group.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// runTurn performs one supplier's exchange in one round: a brand
// message (RFQ in round 1, counter afterwards) followed by the
// supplier's reply. Both ends are appended to the supplier's thread
// and published in order.
func (s *Session) runTurn(ctx context.Context, round int, supplier catalog.Supplier) error {
	thread := s.threads.Thread(supplier.ID)

	var brandText string
	var err error
	started := time.Now()
	if round == 1 {
		brandText, err = s.brand.Opening(ctx, supplier)
		s.cfg.Metrics.RecordGeneration("brand_rfq", time.Since(started), err)
	} else {
		disclosure := ""
		if round > 2 {
			disclosure = PeerSummary(supplier.ID, s.cfg.Suppliers, s.offerSnapshot())
		}
		brandText, err = s.brand.Counter(ctx, supplier, thread, disclosure)
		s.cfg.Metrics.RecordGeneration("brand_counter", time.Since(started), err)
	}
	if err != nil {
		return err
	}
	thread.Append(RoleBrand, brandText)
	s.publish(NewMessageEvent(supplier.ID, RoleBrand, brandText, round))

	started = time.Now()
	replyText, err := s.suppliers[supplier.ID].Reply(ctx, thread)
	s.cfg.Metrics.RecordGeneration("supplier_reply", time.Since(started), err)
	if err != nil {
		return err
	}
	thread.Append(RoleSupplier, replyText)
	s.setOffer(supplier.ID, replyText)
	s.publish(NewMessageEvent(supplier.ID, RoleSupplier, replyText, round))

	return nil
}

func (s *Session) fail(err error) error {
	s.cfg.Metrics.IncSessionFailed()
	s.logError("negotiation failed", map[string]string{"error": err.Error()})
	s.publish(NewErrorEvent(err.Error()))
	return err
}

func (s *Session) setOffer(supplierID int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offers[supplierID] = text
}

func (s *Session) offerSnapshot() map[int]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make(map[int]string, len(s.offers))
	for id, text := range s.offers {
		snapshot[id] = text
	}
	return snapshot
}

func (s *Session) finalOffers() map[int]string {
	return s.offerSnapshot()
}

func (s *Session) publish(e event.Event) {
	if s.cfg.Events != nil {
		s.cfg.Events.Publish(e)
	}
}

func (s *Session) logInfo(message string, fields map[string]string) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Info(message, fields)
	}
}

func (s *Session) logError(message string, fields map[string]string) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Error(message, fields)
	}
}
