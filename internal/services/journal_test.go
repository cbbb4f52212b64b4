package services_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jkilzi/taskqueue/internal/models"
	"github.com/jkilzi/taskqueue/internal/services"
	"github.com/jkilzi/taskqueue/internal/store"
	"github.com/jkilzi/taskqueue/internal/store/migrations"
	srvErrors "github.com/jkilzi/taskqueue/pkg/errors"
	"github.com/jkilzi/taskqueue/pkg/scheduler"
)

var _ = Describe("Journal", func() {
	var (
		ctx     context.Context
		db      *sql.DB
		st      *store.Store
		s       *scheduler.Scheduler
		journal *services.Journal
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(migrations.Run(ctx, db)).To(Succeed())

		st = store.NewStore(db)
		journal = services.NewJournalService(st)

		s, err = scheduler.NewScheduler(2)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		s.Close()
		_ = st.Close()
	})

	stateOf := func(id string) func() models.RunState {
		return func() models.RunState {
			run, err := journal.Get(ctx, id)
			if err != nil {
				return ""
			}
			return run.State
		}
	}

	It("should keep a run in memory until it settles", func() {
		release := make(chan struct{})
		f := scheduler.Submit(s, func(ctx context.Context) ([]string, error) {
			<-release
			return []string{"a", "b"}, nil
		})

		id := services.Track(journal, "list", f)
		Expect(id).To(Equal(f.ID()))
		Expect(journal.Active()).To(Equal(1))

		run, err := journal.Get(ctx, id)
		Expect(err).NotTo(HaveOccurred())
		Expect(run.State).To(Equal(models.RunStateRunning))
		Expect(run.FinishedAt).To(BeNil())

		_, err = st.Runs().Get(ctx, id)
		Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())

		close(release)
		Eventually(stateOf(id)).Should(Equal(models.RunStateCompleted))
		Eventually(journal.Active).Should(BeZero())

		run, err = st.Runs().Get(ctx, id)
		Expect(err).NotTo(HaveOccurred())
		Expect(run.Job).To(Equal("list"))
		Expect(run.FinishedAt).NotTo(BeNil())
		Expect(run.Error).To(BeEmpty())

		var output []string
		Expect(json.Unmarshal([]byte(run.Output), &output)).To(Succeed())
		Expect(output).To(Equal([]string{"a", "b"}))
	})

	It("should journal failed runs with their error", func() {
		f := scheduler.Submit(s, func(ctx context.Context) (int, error) {
			return 0, errors.New("disk full")
		})
		id := services.Track(journal, "concat", f)

		Eventually(stateOf(id)).Should(Equal(models.RunStateFailed))
		run, err := journal.Get(ctx, id)
		Expect(err).NotTo(HaveOccurred())
		Expect(run.Error).To(Equal("disk full"))
		Expect(run.Output).To(BeEmpty())
	})

	It("should journal canceled runs", func() {
		block := make(chan struct{})
		defer close(block)

		for range 2 {
			s.AddWork(func(ctx context.Context) (any, error) {
				<-block
				return nil, nil
			})
		}
		f := scheduler.Submit(s, func(ctx context.Context) (int, error) {
			return 1, nil
		})
		id := services.Track(journal, "find", f)

		Expect(s.CancelPending()).To(Equal(1))
		Eventually(stateOf(id)).Should(Equal(models.RunStateCanceled))
	})

	It("should journal work submitted after close as canceled", func() {
		s.Close()
		f := scheduler.Submit(s, func(ctx context.Context) (int, error) {
			return 1, nil
		})
		id := services.Track(journal, "find", f)

		Eventually(stateOf(id)).Should(Equal(models.RunStateCanceled))
	})

	It("should list journaled runs with filters", func() {
		var ids []string
		for i := range 3 {
			f := scheduler.Submit(s, func(ctx context.Context) (int, error) {
				if i == 2 {
					return 0, errors.New("boom")
				}
				return i, nil
			})
			ids = append(ids, services.Track(journal, "square", f))
		}
		f := scheduler.Submit(s, func(ctx context.Context) (int, error) {
			return 0, nil
		})
		ids = append(ids, services.Track(journal, "other", f))

		for _, id := range ids {
			Eventually(stateOf(id)).ShouldNot(Equal(models.RunStateRunning))
		}
		Eventually(journal.Active).Should(BeZero())

		result, err := journal.List(ctx, services.RunListParams{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Total).To(Equal(4))
		Expect(result.Runs).To(HaveLen(4))

		result, err = journal.List(ctx, services.RunListParams{Jobs: []string{"square"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Total).To(Equal(3))

		result, err = journal.List(ctx, services.RunListParams{
			Jobs:   []string{"square"},
			States: []models.RunState{models.RunStateFailed},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Total).To(Equal(1))
		Expect(result.Runs[0].ID).To(Equal(ids[2]))

		result, err = journal.List(ctx, services.RunListParams{Limit: 1, Offset: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Runs).To(HaveLen(1))
		Expect(result.Total).To(Equal(4))
	})

	It("should return not found for unknown runs", func() {
		_, err := journal.Get(ctx, "missing")
		Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
	})

	Context("Jobs", func() {
		It("should run a journaled search on the shared scheduler", func() {
			root := GinkgoT().TempDir()
			writeFile(filepath.Join(root, "a.txt"), "needle here")
			writeFile(filepath.Join(root, "sub", "b.txt"), "nothing")
			writeFile(filepath.Join(root, "sub", "c.txt"), "a needle too")

			jobs := services.NewJobsService(s, journal, services.NewFilesService(2))
			id := jobs.Find(root, "needle")

			Eventually(stateOf(id)).Should(Equal(models.RunStateCompleted))

			run, err := journal.Get(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Job).To(Equal("find"))

			var found []string
			Expect(json.Unmarshal([]byte(run.Output), &found)).To(Succeed())
			Expect(found).To(Equal([]string{
				filepath.Join(root, "a.txt"),
				filepath.Join(root, "sub", "c.txt"),
			}))
			Expect(jobs.Stats().Completed).To(BeNumerically(">=", 1))
		})

		It("should journal a failed search", func() {
			jobs := services.NewJobsService(s, journal, services.NewFilesService(2))
			id := jobs.Find(filepath.Join(GinkgoT().TempDir(), "missing"), "needle")

			Eventually(stateOf(id)).Should(Equal(models.RunStateFailed))
		})

		It("should change the shared limit", func() {
			jobs := services.NewJobsService(s, journal, services.NewFilesService(2))
			Expect(jobs.SetLimit(5)).To(Succeed())
			Expect(jobs.Stats().Limit).To(Equal(5))
			Expect(srvErrors.IsInvalidConfigurationError(jobs.SetLimit(0))).To(BeTrue())
		})
	})
})
