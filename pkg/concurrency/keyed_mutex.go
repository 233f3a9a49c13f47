// Package concurrency 동시성 제어를 위한 보조 도구를 제공합니다.
package concurrency

import (
	"sync"
)

// KeyedMutex 키별로 독립적인 Mutex를 제공하는 구조체입니다.
// 서로 다른 키에 대한 작업은 병렬로 처리되며, 참조 카운팅으로
// 더 이상 사용되지 않는 Mutex를 맵에서 정리합니다.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
	pool  sync.Pool
}

type lockEntry struct {
	mu       sync.Mutex
	refCount int
}

// NewKeyedMutex 새로운 KeyedMutex 인스턴스를 생성합니다.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[string]*lockEntry),
		pool: sync.Pool{
			New: func() any {
				return &lockEntry{}
			},
		},
	}
}

// Len 현재 활성화된(락이 잡혀있거나 대기 중인) 키의 개수를 반환합니다.
func (km *KeyedMutex) Len() int {
	km.mu.Lock()
	defer km.mu.Unlock()
	return len(km.locks)
}

// Lock 지정된 키에 대한 락을 획득합니다.
func (km *KeyedMutex) Lock(key string) {
	km.mu.Lock()
	e, ok := km.locks[key]
	if !ok {
		e = km.pool.Get().(*lockEntry)
		e.refCount = 1
		km.locks[key] = e
	} else {
		e.refCount++
	}
	km.mu.Unlock()

	e.mu.Lock()
}

// WithLock 지정된 키에 대한 락을 획득한 상태에서 fn을 실행합니다.
// fn 실행이 끝나면(패닉이 발생하더라도) 락이 해제됩니다.
func (km *KeyedMutex) WithLock(key string, fn func() error) error {
	km.Lock(key)
	defer km.Unlock(key)
	return fn()
}

// TryLock 지정된 키에 대한 락 획득을 시도합니다.
// 락을 획득하면 true를, 이미 다른 고루틴이 소유 중이면 대기하지 않고 false를 반환합니다.
// 성공한 경우에만 Unlock을 호출해야 합니다.
func (km *KeyedMutex) TryLock(key string) bool {
	km.mu.Lock()
	e, ok := km.locks[key]
	if !ok {
		e = km.pool.Get().(*lockEntry)
		e.refCount = 1
		km.locks[key] = e
		km.mu.Unlock()

		// 새로 생성된 뮤텍스이므로 Lock은 항상 즉시 성공합니다.
		e.mu.Lock()
		return true
	}

	if e.mu.TryLock() {
		e.refCount++
		km.mu.Unlock()
		return true
	}

	km.mu.Unlock()
	return false
}

// Unlock 지정된 키에 대한 락을 해제합니다.
// 잠기지 않은 키에 대해 호출하면 패닉이 발생합니다.
func (km *KeyedMutex) Unlock(key string) {
	km.mu.Lock()
	defer km.mu.Unlock()

	e, ok := km.locks[key]
	if !ok {
		panic("잠기지 않은 KeyedMutex의 잠금 해제 시도")
	}

	e.mu.Unlock()

	e.refCount--
	if e.refCount <= 0 {
		delete(km.locks, key)
		km.pool.Put(e)
	}
}
