package errors_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	srvErrors "github.com/jkilzi/taskqueue/pkg/errors"
)

var _ = Describe("Errors", func() {
	It("should treat a canceled task as a context cancellation", func() {
		Expect(errors.Is(srvErrors.ErrTaskCanceled, context.Canceled)).To(BeTrue())
		Expect(errors.Is(srvErrors.ErrSchedulerClosed, context.Canceled)).To(BeFalse())
	})

	It("should unwrap the cause of a task error", func() {
		cause := errors.New("disk full")
		err := fmt.Errorf("journal: %w", srvErrors.NewTaskError("t-1", cause))

		Expect(srvErrors.IsTaskError(err)).To(BeTrue())
		Expect(errors.Is(err, cause)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("task t-1 failed: disk full"))
	})

	It("should report the failing batch item", func() {
		err := srvErrors.NewBatchItemError(2, context.DeadlineExceeded)

		Expect(srvErrors.IsBatchItemError(err)).To(BeTrue())
		Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
		Expect(err.Error()).To(Equal("item 2: context deadline exceeded"))
	})

	It("should describe an invalid configuration", func() {
		err := srvErrors.NewInvalidConfigurationError("concurrency limit", "must be at least 1, got 0")

		Expect(srvErrors.IsInvalidConfigurationError(err)).To(BeTrue())
		Expect(srvErrors.IsResourceNotFoundError(err)).To(BeFalse())
		Expect(err.Error()).To(Equal("invalid configuration: concurrency limit must be at least 1, got 0"))
	})

	It("should name the missing resource", func() {
		err := srvErrors.NewRunNotFoundError("abc")

		Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		Expect(err.Error()).To(Equal(`run "abc" not found`))
	})

	It("should format misuse reasons", func() {
		err := srvErrors.NewSchedulerMisuseError("future %s resolved twice", "f-1")
		Expect(err.Error()).To(Equal("scheduler misuse: future f-1 resolved twice"))
	})
})
