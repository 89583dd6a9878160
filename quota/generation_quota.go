package quota

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"poemas-versos/config"
)

// GenerationLimiter 는 시 생성용 LLM 호출에 대한 분당/일일 한도를 관리한다.
// processor 인스턴스가 하나라는 전제의 인메모리 카운터다. 재시작 시에는 SeedUsage 로 복구한다.
type GenerationLimiter struct {
	mu sync.Mutex

	dailyLimit int
	usedToday  int
	dayKey     string

	// nil 이면 분당 제한 없음
	pacer *rate.Limiter

	now func() time.Time
}

// NewGenerationLimiterFromConfig 는 generation.quota 설정으로 limiter 를 만든다.
// 0 이하 값은 해당 방향의 제한을 두지 않는다.
func NewGenerationLimiterFromConfig(cfg config.AppConfig) *GenerationLimiter {
	return NewGenerationLimiter(cfg.Generation.Quota.RequestsPerMinute, cfg.Generation.Quota.RequestsPerDay)
}

func NewGenerationLimiter(requestsPerMinute, requestsPerDay int) *GenerationLimiter {
	l := &GenerationLimiter{
		dailyLimit: max(requestsPerDay, 0),
		now:        time.Now,
	}
	if requestsPerMinute > 0 {
		// burst 1: 호출 사이 간격을 일정하게 유지한다.
		l.pacer = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
	return l
}

// WaitAndReserve 는 생성 호출 전에 한도를 적용한다.
//   - 일일 한도 소진: (false, nil). 호출자는 LLM 호출을 건너뛴다.
//   - context 취소: (false, err). 예약했던 일일 카운트는 되돌린다.
func (l *GenerationLimiter) WaitAndReserve(ctx context.Context) (bool, error) {
	l.mu.Lock()
	today := l.now().UTC().Format("2006-01-02")
	if l.dayKey != today {
		l.dayKey = today
		l.usedToday = 0
	}
	if l.dailyLimit > 0 && l.usedToday >= l.dailyLimit {
		l.mu.Unlock()
		return false, nil
	}
	l.usedToday++
	l.mu.Unlock()

	if l.pacer == nil {
		return true, nil
	}
	if err := l.pacer.Wait(ctx); err != nil {
		l.mu.Lock()
		if l.dayKey == today && l.usedToday > 0 {
			l.usedToday--
		}
		l.mu.Unlock()
		return false, err
	}
	return true, nil
}

// SeedUsage 는 오늘(UTC) 이미 사용한 호출 수를 설정한다. processor 기동 시 ai_logs 로 채운다.
func (l *GenerationLimiter) SeedUsage(used int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dayKey = l.now().UTC().Format("2006-01-02")
	l.usedToday = max(used, 0)
}

// Remaining 은 오늘 남은 호출 수를 돌려준다. 일일 제한이 없으면 -1.
func (l *GenerationLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dailyLimit <= 0 {
		return -1
	}
	if l.dayKey != l.now().UTC().Format("2006-01-02") {
		return l.dailyLimit
	}
	return l.dailyLimit - l.usedToday
}
