package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sony/gobreaker"

	"github.com/jkilzi/taskqueue/pkg/scheduler"
)

var _ = Describe("Retry", func() {
	var s *scheduler.Scheduler

	BeforeEach(func() {
		var err error
		s, err = scheduler.NewScheduler(1)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		s.Close()
	})

	constant := backoff.WithBackOff(backoff.NewConstantBackOff(time.Millisecond))

	It("should retry until the work succeeds", func() {
		var attempts atomic.Int32
		work := scheduler.Retry(func(ctx context.Context) (string, error) {
			if attempts.Add(1) < 3 {
				return "", errors.New("transient")
			}
			return "ok", nil
		}, constant, backoff.WithMaxTries(5))

		v, err := scheduler.Submit(s, work).Wait(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal("ok"))
		Expect(attempts.Load()).To(Equal(int32(3)))
	})

	It("should give up after the maximum number of tries", func() {
		var attempts atomic.Int32
		work := scheduler.Retry(func(ctx context.Context) (string, error) {
			attempts.Add(1)
			return "", errors.New("still failing")
		}, constant, backoff.WithMaxTries(3))

		_, err := scheduler.Submit(s, work).Wait(context.Background())
		Expect(err).To(MatchError("still failing"))
		Expect(attempts.Load()).To(Equal(int32(3)))
	})

	It("should stop on a permanent error", func() {
		fatal := errors.New("fatal")
		var attempts atomic.Int32
		work := scheduler.Retry(func(ctx context.Context) (string, error) {
			attempts.Add(1)
			return "", backoff.Permanent(fatal)
		}, constant, backoff.WithMaxTries(5))

		_, err := scheduler.Submit(s, work).Wait(context.Background())
		Expect(errors.Is(err, fatal)).To(BeTrue())
		Expect(attempts.Load()).To(Equal(int32(1)))
	})
})

var _ = Describe("Breaker", func() {
	It("should stop calling the work once the breaker opens", func() {
		s, err := scheduler.NewScheduler(1)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "test",
			Timeout: time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 2
			},
		})

		var calls atomic.Int32
		work := scheduler.Breaker(cb, func(ctx context.Context) (int, error) {
			calls.Add(1)
			return 0, errors.New("backend down")
		})

		for range 2 {
			_, err := scheduler.Submit(s, work).Wait(context.Background())
			Expect(err).To(MatchError("backend down"))
		}

		_, err = scheduler.Submit(s, work).Wait(context.Background())
		Expect(errors.Is(err, gobreaker.ErrOpenState)).To(BeTrue())
		Expect(calls.Load()).To(Equal(int32(2)))
		Expect(cb.State()).To(Equal(gobreaker.StateOpen))
	})
})
