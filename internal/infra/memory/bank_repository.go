package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"timed-quiz-service/internal/domain"

	"golang.org/x/sync/singleflight"
)

// BankLoader fetches question banks from a backing store (YAML file, Postgres).
type BankLoader interface {
	LoadBank(ctx context.Context, quizID string) (domain.QuestionBank, error)
}

// BankRepository caches validated banks with TTL to avoid repeated loads.
type BankRepository struct {
	loader BankLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedBank
}

type cachedBank struct {
	bank      domain.QuestionBank
	expiresAt time.Time
}

func NewBankRepository(loader BankLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedBank),
	}
}

func (r *BankRepository) GetBank(ctx context.Context, quizID string) (domain.QuestionBank, error) {
	if bank, ok := r.lookup(quizID); ok {
		return bank, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		if bank, ok := r.lookup(quizID); ok {
			return bank, nil
		}

		bank, err := r.loader.LoadBank(ctx, quizID)
		if err != nil {
			return domain.QuestionBank{}, err
		}
		if err := bank.Validate(); err != nil {
			return domain.QuestionBank{}, err
		}

		r.mu.Lock()
		r.cache[quizID] = cachedBank{
			bank:      bank,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return bank, nil
	})
	if err != nil {
		return domain.QuestionBank{}, err
	}
	return result.(domain.QuestionBank), nil
}

// Invalidate drops a cached bank so the next read reloads it.
func (r *BankRepository) Invalidate(quizID string) {
	r.mu.Lock()
	delete(r.cache, quizID)
	r.mu.Unlock()
}

func (r *BankRepository) lookup(quizID string) (domain.QuestionBank, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[quizID]
	if !ok || !entry.expiresAt.After(now) {
		return domain.QuestionBank{}, false
	}
	return entry.bank, true
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticBankLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticBankLoader struct {
	banks map[string]domain.QuestionBank
}

func NewStaticBankLoader(banks map[string]domain.QuestionBank) *StaticBankLoader {
	return &StaticBankLoader{banks: banks}
}

func (l *StaticBankLoader) LoadBank(_ context.Context, quizID string) (domain.QuestionBank, error) {
	if bank, ok := l.banks[quizID]; ok {
		return bank, nil
	}
	return domain.QuestionBank{}, domain.ErrQuizNotFound
}
