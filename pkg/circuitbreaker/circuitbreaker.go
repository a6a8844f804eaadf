// Package circuitbreaker 实现熔断器模式（Circuit Breaker Pattern）
//
// 在本项目中，熔断器用来保护订单事件的MQ发布：
// RabbitMQ故障时，后台的状态修改、批量操作不能因为发事件而被拖死，
// 熔断打开后发布调用快速失败，操作本身照常完成（事件允许丢失，见pkg/mq）。
//
// 三种状态：
// - CLOSED（关闭）：请求正常通过，统计连续失败次数
// - OPEN（打开）：请求快速失败，给下游恢复时间
// - HALF_OPEN（半开）：放行少量请求探测下游是否恢复
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpenState 熔断器处于打开状态，请求被拒绝
var ErrOpenState = errors.New("circuit breaker is open")

// ErrTooManyRequests 半开状态下探测请求数已达上限
var ErrTooManyRequests = errors.New("circuit breaker: too many requests in half-open state")

// State 熔断器状态
type State int

const (
	StateClosed   State = iota // 关闭（正常）
	StateOpen                  // 打开（熔断中）
	StateHalfOpen              // 半开（探测中）
)

// String 状态转字符串（便于日志）
func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config 熔断器配置
type Config struct {
	// FailureThreshold 连续失败多少次后打开熔断器
	// 建议值：3-10
	FailureThreshold uint32

	// OpenTimeout 打开状态持续时间，超过后转为半开
	// 建议值：10s-60s
	OpenTimeout time.Duration

	// HalfOpenMaxProbes 半开状态下允许的探测请求数
	// 建议值：1-5
	HalfOpenMaxProbes uint32
}

// Breaker 熔断器
// 并发安全：所有状态变更都在mu保护下完成
type Breaker struct {
	name string
	cfg  Config

	mu          sync.Mutex
	state       State
	failures    uint32    // 连续失败次数（CLOSED状态统计）
	probes      uint32    // 半开状态已放行的探测请求数
	probeOK     uint32    // 半开状态探测成功数
	openedAt    time.Time // 进入OPEN状态的时间
	lastChanged time.Time // 最近一次状态变更时间
}

// New 创建熔断器
// 零值配置会被替换为保守默认值
func New(name string, cfg Config) *Breaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMaxProbes == 0 {
		cfg.HalfOpenMaxProbes = 1
	}
	return &Breaker{
		name:        name,
		cfg:         cfg,
		state:       StateClosed,
		lastChanged: time.Now(),
	}
}

// Execute 在熔断保护下执行fn
// OPEN状态立即返回ErrOpenState，不调用fn
func (b *Breaker) Execute(fn func() error) error {
	if err := b.beforeRequest(); err != nil {
		return err
	}

	err := fn()
	b.afterRequest(err == nil)
	return err
}

// State 返回当前状态（会先处理OPEN→HALF_OPEN的超时转换）
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeHalfOpen()
	return b.state
}

// beforeRequest 请求前检查，决定放行还是拒绝
func (b *Breaker) beforeRequest() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.maybeHalfOpen()

	switch b.state {
	case StateOpen:
		return ErrOpenState
	case StateHalfOpen:
		if b.probes >= b.cfg.HalfOpenMaxProbes {
			return ErrTooManyRequests
		}
		b.probes++
		return nil
	default:
		return nil
	}
}

// afterRequest 请求后根据结果更新状态
func (b *Breaker) afterRequest(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		if success {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.transition(StateOpen)
		}
	case StateHalfOpen:
		if !success {
			// 探测失败，下游还没恢复，回到OPEN重新计时
			b.transition(StateOpen)
			return
		}
		b.probeOK++
		if b.probeOK >= b.cfg.HalfOpenMaxProbes {
			// 全部探测成功，恢复正常
			b.transition(StateClosed)
		}
	}
}

// maybeHalfOpen OPEN状态超时后转为HALF_OPEN
// 调用方必须持有mu
func (b *Breaker) maybeHalfOpen() {
	if b.state == StateOpen && time.Since(b.openedAt) >= b.cfg.OpenTimeout {
		b.transition(StateHalfOpen)
	}
}

// transition 状态变更并重置统计
// 调用方必须持有mu
func (b *Breaker) transition(to State) {
	b.state = to
	b.lastChanged = time.Now()
	b.failures = 0
	b.probes = 0
	b.probeOK = 0
	if to == StateOpen {
		b.openedAt = time.Now()
	}
}
