package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/jkilzi/taskqueue/api/v1"
	"github.com/jkilzi/taskqueue/internal/config"
	"github.com/jkilzi/taskqueue/internal/handlers"
	"github.com/jkilzi/taskqueue/internal/server"
	"github.com/jkilzi/taskqueue/internal/services"
	"github.com/jkilzi/taskqueue/internal/store"
	"github.com/jkilzi/taskqueue/internal/store/migrations"
	"github.com/jkilzi/taskqueue/pkg/client"
	srvErrors "github.com/jkilzi/taskqueue/pkg/errors"
	"github.com/jkilzi/taskqueue/pkg/scheduler"
)

var fastRetry = client.WithRetry(
	backoff.WithBackOff(backoff.NewConstantBackOff(time.Millisecond)),
	backoff.WithMaxTries(3),
)

var _ = Describe("Client", func() {
	var (
		ctx context.Context
		ts  *httptest.Server
		s   *scheduler.Scheduler
		st  *store.Store
		c   *client.Client
	)

	BeforeEach(func() {
		ctx = context.Background()

		db, err := store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(migrations.Run(ctx, db)).To(Succeed())
		st = store.NewStore(db)

		s, err = scheduler.NewScheduler(2)
		Expect(err).NotTo(HaveOccurred())

		journal := services.NewJournalService(st)
		h := handlers.New(services.NewJobsService(s, journal, services.NewFilesService(2)), journal)
		srv, err := server.NewServer(config.NewConfigurationWithDefaults(), func(router *gin.RouterGroup) {
			v1.RegisterHandlers(router, h)
		})
		Expect(err).NotTo(HaveOccurred())

		ts = httptest.NewServer(srv.Handler())
		c, err = client.NewClient(ts.URL, fastRetry)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		ts.Close()
		s.Close()
		_ = st.Close()
	})

	DescribeTable("should reject invalid urls",
		func(raw string) {
			_, err := client.NewClient(raw)
			Expect(srvErrors.IsInvalidConfigurationError(err)).To(BeTrue())
		},
		Entry("empty", ""),
		Entry("relative", "localhost/api"),
	)

	It("should check health", func() {
		Expect(c.Health(ctx)).To(Succeed())
	})

	It("should read and change the scheduler limit", func() {
		status, err := c.Scheduler(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(status.Limit).To(Equal(2))

		status, err = c.SetLimit(ctx, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(status.Limit).To(Equal(4))

		_, err = c.SetLimit(ctx, 0)
		Expect(srvErrors.IsInvalidConfigurationError(err)).To(BeTrue())
	})

	It("should run a find job and wait for it", func() {
		root := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(root, "a.txt"), []byte("needle"), 0o644)).To(Succeed())

		id, err := c.Find(ctx, root, "needle")
		Expect(err).NotTo(HaveOccurred())

		run, err := c.WaitRun(ctx, id, 5*time.Millisecond)
		Expect(err).NotTo(HaveOccurred())
		Expect(run.State).To(Equal(v1.RunStateCompleted))
		Expect(run.Output).To(Equal([]any{filepath.Join(root, "a.txt")}))

		Eventually(func() int {
			list, err := c.ListRuns(ctx, v1.ListRunsParams{Job: []string{"find"}})
			if err != nil {
				return -1
			}
			return list.Total
		}).Should(Equal(1))
	})

	It("should reject a find on a missing directory", func() {
		_, err := c.Find(ctx, "/does/not/exist", "needle")
		Expect(srvErrors.IsInvalidConfigurationError(err)).To(BeTrue())
	})

	It("should map unknown runs to not found", func() {
		_, err := c.GetRun(ctx, "missing")
		Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
	})

	It("should retry server errors", func() {
		var calls atomic.Int32
		flaky := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		}))
		defer flaky.Close()

		fc, err := client.NewClient(flaky.URL, fastRetry)
		Expect(err).NotTo(HaveOccurred())
		Expect(fc.Health(ctx)).To(Succeed())
		Expect(calls.Load()).To(Equal(int32(3)))
	})

	It("should not retry client errors", func() {
		var calls atomic.Int32
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"bad"}`))
		}))
		defer bad.Close()

		bc, err := client.NewClient(bad.URL, fastRetry)
		Expect(err).NotTo(HaveOccurred())
		Expect(bc.Health(ctx)).To(MatchError(ContainSubstring("bad")))
		Expect(calls.Load()).To(Equal(int32(1)))
	})
})
