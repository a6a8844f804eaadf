package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

// TestBreaker_StaysClosedOnSuccess 测试连续成功时保持关闭状态
func TestBreaker_StaysClosedOnSuccess(t *testing.T) {
	b := New("test", Config{FailureThreshold: 3})

	for i := 0; i < 10; i++ {
		if err := b.Execute(func() error { return nil }); err != nil {
			t.Fatalf("期望成功，实际失败: %v", err)
		}
	}

	if b.State() != StateClosed {
		t.Errorf("期望状态为CLOSED，实际%s", b.State())
	}
}

// TestBreaker_OpensAfterConsecutiveFailures 测试连续失败触发熔断
func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b := New("test", Config{FailureThreshold: 3, OpenTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		_ = b.Execute(func() error { return errors.New("mq down") })
	}

	if b.State() != StateOpen {
		t.Fatalf("期望状态为OPEN，实际%s", b.State())
	}

	// 熔断打开后请求快速失败，不调用实际函数
	called := false
	err := b.Execute(func() error {
		called = true
		return nil
	})
	if err != ErrOpenState {
		t.Errorf("期望返回ErrOpenState，实际%v", err)
	}
	if called {
		t.Error("熔断打开时不应该调用实际函数")
	}
}

// TestBreaker_SuccessResetsFailureCount 测试成功会重置连续失败计数
func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := New("test", Config{FailureThreshold: 3})

	_ = b.Execute(func() error { return errors.New("fail") })
	_ = b.Execute(func() error { return errors.New("fail") })
	_ = b.Execute(func() error { return nil }) // 成功，计数清零
	_ = b.Execute(func() error { return errors.New("fail") })
	_ = b.Execute(func() error { return errors.New("fail") })

	if b.State() != StateClosed {
		t.Errorf("失败不连续，不应该熔断，实际状态%s", b.State())
	}
}

// TestBreaker_HalfOpenRecovery 测试半开探测成功后恢复
func TestBreaker_HalfOpenRecovery(t *testing.T) {
	b := New("test", Config{
		FailureThreshold:  2,
		OpenTimeout:       50 * time.Millisecond,
		HalfOpenMaxProbes: 1,
	})

	// 触发熔断
	_ = b.Execute(func() error { return errors.New("fail") })
	_ = b.Execute(func() error { return errors.New("fail") })
	if b.State() != StateOpen {
		t.Fatalf("期望状态为OPEN，实际%s", b.State())
	}

	// 等待进入半开
	time.Sleep(80 * time.Millisecond)
	if b.State() != StateHalfOpen {
		t.Fatalf("期望状态为HALF_OPEN，实际%s", b.State())
	}

	// 探测成功，恢复CLOSED
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("半开探测请求应该被放行: %v", err)
	}
	if b.State() != StateClosed {
		t.Errorf("探测成功后期望状态为CLOSED，实际%s", b.State())
	}
}

// TestBreaker_HalfOpenProbeFailureReopens 测试半开探测失败后重新打开
func TestBreaker_HalfOpenProbeFailureReopens(t *testing.T) {
	b := New("test", Config{
		FailureThreshold:  2,
		OpenTimeout:       50 * time.Millisecond,
		HalfOpenMaxProbes: 1,
	})

	_ = b.Execute(func() error { return errors.New("fail") })
	_ = b.Execute(func() error { return errors.New("fail") })

	time.Sleep(80 * time.Millisecond)

	// 探测仍然失败
	_ = b.Execute(func() error { return errors.New("still down") })

	if b.State() != StateOpen {
		t.Errorf("探测失败后期望状态回到OPEN，实际%s", b.State())
	}
}
