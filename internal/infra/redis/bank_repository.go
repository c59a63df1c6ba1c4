package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"timed-quiz-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// BankLoader fetches question banks from a backing store (YAML file, Postgres).
type BankLoader interface {
	LoadBank(ctx context.Context, quizID string) (domain.QuestionBank, error)
}

// BankRepository caches whole banks in Redis as JSON and falls back to a loader on miss.
// Banks are stored as: SET quiz:{quizID}:bank {json} EX ttl
type BankRepository struct {
	client *redis.Client
	loader BankLoader
	ttl    time.Duration
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand
}

func NewBankRepository(client *redis.Client, loader BankLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *BankRepository) GetBank(ctx context.Context, quizID string) (domain.QuestionBank, error) {
	if bank, ok := r.cached(ctx, quizID); ok {
		return bank, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if bank, ok := r.cached(ctx, quizID); ok {
			return bank, nil
		}

		bank, err := r.loader.LoadBank(ctx, quizID)
		if err != nil {
			return domain.QuestionBank{}, err
		}
		if err := bank.Validate(); err != nil {
			return domain.QuestionBank{}, err
		}

		if raw, err := json.Marshal(bank); err == nil {
			_ = r.client.Set(ctx, bankKey(quizID), raw, r.ttlWithJitter()).Err()
		}
		return bank, nil
	})
	if err != nil {
		return domain.QuestionBank{}, err
	}
	return result.(domain.QuestionBank), nil
}

// Invalidate removes the cached copy of a bank.
func (r *BankRepository) Invalidate(ctx context.Context, quizID string) error {
	return r.client.Del(ctx, bankKey(quizID)).Err()
}

func (r *BankRepository) cached(ctx context.Context, quizID string) (domain.QuestionBank, bool) {
	raw, err := r.client.Get(ctx, bankKey(quizID)).Bytes()
	if err != nil {
		// redis.Nil is a plain miss; other errors also degrade to the loader.
		return domain.QuestionBank{}, false
	}
	var bank domain.QuestionBank
	if err := json.Unmarshal(raw, &bank); err != nil || bank.Validate() != nil {
		return domain.QuestionBank{}, false
	}
	return bank, true
}

func bankKey(quizID string) string {
	return "quiz:" + quizID + ":bank"
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
