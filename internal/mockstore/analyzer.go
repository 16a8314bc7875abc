package mockstore

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-triage/internal/domain"
)

const failureMessage = "AI analysis failed: model backend unavailable"

// Analyzer simulates the backend's AI pipeline. Each enqueued ticket
// walks pending → processing → ready, or → failed with retries up to
// the attempt cap (failed → processing is a real edge the dashboard
// must tolerate). Transitions go through Store.transition, so a
// ticket resolved or deleted mid-flight is simply left alone.
type Analyzer struct {
	store           *Store
	logger          *zap.Logger
	processingDelay time.Duration
	retryDelay      time.Duration
	failureRate     float64
	maxAttempts     int

	mu  sync.Mutex
	rng *rand.Rand
}

// AnalyzerOptions configures the simulated pipeline. A zero Seed
// seeds from the clock; tests pass a fixed seed for determinism.
type AnalyzerOptions struct {
	ProcessingDelay time.Duration
	RetryDelay      time.Duration
	FailureRate     float64
	MaxAttempts     int
	Seed            int64
}

// NewAnalyzer creates a pipeline simulator over the store.
func NewAnalyzer(store *Store, logger *zap.Logger, opts AnalyzerOptions) *Analyzer {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	return &Analyzer{
		store:           store,
		logger:          logger,
		processingDelay: opts.ProcessingDelay,
		retryDelay:      opts.RetryDelay,
		failureRate:     opts.FailureRate,
		maxAttempts:     opts.MaxAttempts,
		rng:             rand.New(rand.NewSource(opts.Seed)),
	}
}

// Enqueue starts the pipeline for a freshly created ticket.
func (a *Analyzer) Enqueue(id string) {
	go a.process(id)
}

func (a *Analyzer) process(id string) {
	time.Sleep(a.processingDelay)

	for attempt := 1; ; attempt++ {
		if !a.store.transition(id, domain.StatusProcessing, func(t *domain.Ticket) {
			t.ProcessingAttempts = attempt
		}) {
			return
		}
		a.logger.Info("analysis started", zap.String("ticket_id", id), zap.Int("attempt", attempt))

		time.Sleep(a.processingDelay)

		if a.failRoll() {
			message := failureMessage
			a.store.transition(id, domain.StatusFailed, func(t *domain.Ticket) {
				t.ErrorMessage = &message
			})
			a.logger.Warn("analysis failed", zap.String("ticket_id", id), zap.Int("attempt", attempt))
			if attempt >= a.maxAttempts {
				return
			}
			time.Sleep(a.retryDelay)
			continue
		}

		ticket, err := a.store.Get(id)
		if err != nil {
			return
		}
		result := analyze(ticket.Title + " " + ticket.Description)
		a.store.transition(id, domain.StatusReady, func(t *domain.Ticket) {
			t.Category = &result.category
			t.Urgency = &result.urgency
			t.SentimentScore = &result.sentiment
			t.AIDraftResponse = &result.draft
			t.ErrorMessage = nil
		})
		a.logger.Info("analysis ready", zap.String("ticket_id", id), zap.String("category", string(result.category)))
		return
	}
}

// failRoll draws from the shared rng under a lock; rand.Rand is not
// safe for the concurrent pipeline goroutines.
func (a *Analyzer) failRoll() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rng.Float64() < a.failureRate
}

type analysis struct {
	category  domain.Category
	urgency   domain.Urgency
	sentiment int
	draft     string
}

// analyze derives triage fields from complaint text with keyword
// heuristics. Crude on purpose: the mock only has to produce
// plausible, deterministic output for a given input.
func analyze(text string) analysis {
	lower := strings.ToLower(text)

	category := domain.CategoryTechnical
	switch {
	case containsAny(lower, "refund", "charge", "charged", "bill", "billing", "payment", "invoice", "price"):
		category = domain.CategoryBilling
	case containsAny(lower, "feature", "would be great", "please add", "suggestion", "wish"):
		category = domain.CategoryFeatureRequest
	}

	angry := countAny(lower, "angry", "furious", "unacceptable", "terrible", "worst", "immediately", "urgent", "asap", "twice", "again")
	urgency := domain.UrgencyLow
	switch {
	case angry >= 2 || category == domain.CategoryBilling:
		urgency = domain.UrgencyHigh
	case angry == 1:
		urgency = domain.UrgencyMedium
	}

	sentiment := 7 - 2*angry
	if sentiment < 0 {
		sentiment = 0
	}

	var draft string
	switch category {
	case domain.CategoryBilling:
		draft = "We apologize for the billing issue you experienced. We have reviewed your account and will correct the charge within 3-5 business days. Please let us know if you have any further questions."
	case domain.CategoryFeatureRequest:
		draft = "Thank you for the suggestion! We have shared it with our product team for consideration in an upcoming release. We appreciate you taking the time to help us improve."
	default:
		draft = "We are sorry for the trouble you ran into. Our engineers have identified the issue and a fix is on the way. We will follow up as soon as it is deployed."
	}

	return analysis{category: category, urgency: urgency, sentiment: sentiment, draft: draft}
}

func containsAny(text string, words ...string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

func countAny(text string, words ...string) int {
	count := 0
	for _, word := range words {
		if strings.Contains(text, word) {
			count++
		}
	}
	return count
}
