package eventbus

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrClosed возвращается Publish после Close
var ErrClosed = errors.New("event bus closed")

// Типы игровых событий
const (
	TypeMobSpawned   = "MobSpawned"
	TypeEntityDied   = "EntityDied"
	TypeGameOver     = "GameOver"
	TypeRestarted    = "Restarted"
	TypeBlockPlaced  = "BlockPlaced"
	TypeBlockRemoved = "BlockRemoved"
	TypeItemCrafted  = "ItemCrafted"
)

// Event - событие игровой сессии
type Event struct {
	ID        string    // UUID
	Timestamp time.Time // UTC
	Session   string    // ID сессии-источника
	Type      string
	Priority  int // 0=Low … 9=Critical (для backpressure)

	EntityID uint64
	Kind     string
	X, Y     float64
	Detail   string
}

// NewEvent заполняет ID и время события
func NewEvent(session, eventType string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Session:   session,
		Type:      eventType,
	}
}

// Filter позволяет подписаться только на нужные события.
type Filter struct {
	Types    []string // Если пусто - все типы.
	Sessions []string // Если пусто - все сессии.
}

// Subscription возвращается при подписке; позволяет отписаться.
type Subscription interface {
	Unsubscribe()
}

// Handler потребляет события.
type Handler func(ctx context.Context, ev *Event)

// Stats агрегированные счётчики шины.
type Stats struct {
	Published uint64
	Consumed  uint64
	Dropped   uint64
	InFlight  int
}

// Publisher - сторона, которая только публикует (игровая сессия)
type Publisher interface {
	Publish(ctx context.Context, ev *Event) error
}

// EventBus определяет абстракцию шины событий.
type EventBus interface {
	Publisher
	Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error)
	Stats() Stats
	Close()
}

//================ In-Memory implementation =================//

// MemoryBus доставляет события подписчикам из одной горутины в порядке
// публикации, поэтому медленный подписчик задерживает остальных.
type MemoryBus struct {
	mu          sync.RWMutex
	subscribers map[int]subscriber
	nextID      int
	buffer      chan *Event
	metrics     *Metrics
	order       []int // Подписчики в порядке подписки
	closed      bool
	closeOnce   sync.Once
	closing     chan struct{} // Закрывается первым: Publish больше не принимает события
	quit        chan struct{} // Закрывается после последнего Publish: dispatchLoop дорассылает буфер
	done        chan struct{}

	// Publish держит pubMu на чтение, Close берёт на запись перед quit,
	// поэтому принятое событие всегда попадает в дорассылку.
	pubMu sync.RWMutex

	statsMu sync.Mutex
	stats   Stats
}

type subscriber struct {
	filter  Filter
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewMemoryBus создаёт in-memory шину с указанным буфером.
func NewMemoryBus(capacity int, metrics *Metrics) *MemoryBus {
	mb := &MemoryBus{
		subscribers: make(map[int]subscriber),
		buffer:      make(chan *Event, capacity),
		metrics:     metrics,
		closing:     make(chan struct{}),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	go mb.dispatchLoop()
	return mb
}

// Publish ставит событие в очередь. При полном буфере события с приоритетом
// ниже 5 отбрасываются, остальные ждут места, отмены ctx или Close.
func (mb *MemoryBus) Publish(ctx context.Context, ev *Event) error {
	mb.pubMu.RLock()
	defer mb.pubMu.RUnlock()

	select {
	case <-mb.closing:
		return ErrClosed
	default:
	}

	select {
	case mb.buffer <- ev:
		mb.published()
		return nil
	default:
	}

	if ev.Priority < 5 {
		mb.dropped()
		return nil
	}
	select {
	case mb.buffer <- ev:
		mb.published()
		return nil
	case <-mb.closing:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (mb *MemoryBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if mb.closed {
		return nil, ErrClosed
	}

	id := mb.nextID
	mb.nextID++
	cctx, cancel := context.WithCancel(ctx)
	mb.subscribers[id] = subscriber{filter: f, handler: h, ctx: cctx, cancel: cancel}
	mb.order = append(mb.order, id)
	return &memSub{bus: mb, id: id}, nil
}

func (mb *MemoryBus) Stats() Stats {
	mb.statsMu.Lock()
	defer mb.statsMu.Unlock()
	s := mb.stats
	s.InFlight = len(mb.buffer)
	return s
}

// Close перестаёт принимать события и ждёт доставки уже поставленных.
func (mb *MemoryBus) Close() {
	mb.closeOnce.Do(func() {
		close(mb.closing)

		mb.pubMu.Lock()
		mb.mu.Lock()
		mb.closed = true
		mb.mu.Unlock()
		close(mb.quit)
		mb.pubMu.Unlock()
	})
	<-mb.done
}

func (mb *MemoryBus) published() {
	mb.metrics.published(len(mb.buffer))
	mb.addStats(func(s *Stats) { s.Published++ })
}

func (mb *MemoryBus) dropped() {
	mb.metrics.dropped()
	mb.addStats(func(s *Stats) { s.Dropped++ })
}

func (mb *MemoryBus) addStats(f func(s *Stats)) {
	mb.statsMu.Lock()
	f(&mb.stats)
	mb.statsMu.Unlock()
}

// dispatchLoop рассылает события подписчикам. После Close дорассылает
// то, что осталось в буфере.
func (mb *MemoryBus) dispatchLoop() {
	defer close(mb.done)

	for {
		select {
		case ev := <-mb.buffer:
			mb.dispatch(ev)
		case <-mb.quit:
			for {
				select {
				case ev := <-mb.buffer:
					mb.dispatch(ev)
				default:
					return
				}
			}
		}
	}
}

func (mb *MemoryBus) dispatch(ev *Event) {
	mb.mu.RLock()
	subs := make([]subscriber, 0, len(mb.subscribers))
	for _, id := range mb.order {
		if sub, ok := mb.subscribers[id]; ok {
			subs = append(subs, sub)
		}
	}
	mb.mu.RUnlock()

	for _, sub := range subs {
		if !matchFilter(ev, sub.filter) || sub.ctx.Err() != nil {
			continue
		}
		sub.handler(sub.ctx, ev)
		mb.metrics.consumed(len(mb.buffer))
		mb.addStats(func(s *Stats) { s.Consumed++ })
	}
}

func matchFilter(ev *Event, f Filter) bool {
	match := func(val string, arr []string) bool {
		if len(arr) == 0 {
			return true
		}
		for _, v := range arr {
			if v == val {
				return true
			}
		}
		return false
	}
	return match(ev.Type, f.Types) && match(ev.Session, f.Sessions)
}

type memSub struct {
	bus *MemoryBus
	id  int
}

func (s *memSub) Unsubscribe() {
	s.bus.mu.Lock()
	if sub, ok := s.bus.subscribers[s.id]; ok {
		sub.cancel()
		delete(s.bus.subscribers, s.id)
		for i, id := range s.bus.order {
			if id == s.id {
				s.bus.order = append(s.bus.order[:i], s.bus.order[i+1:]...)
				break
			}
		}
	}
	s.bus.mu.Unlock()
}
