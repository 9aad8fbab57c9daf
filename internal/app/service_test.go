package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	service "github.com/okian/sked/internal/app"
	"github.com/okian/sked/internal/domain/model"
	"github.com/okian/sked/internal/domain/types"
	"github.com/okian/sked/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	m.Run()
}

// fakeSource is a canned feed for service tests.
type fakeSource struct {
	id     string
	events []model.Event
	err    error
	calls  int
}

func (f *fakeSource) ID() string { return f.id }

func (f *fakeSource) FetchUpcoming(ctx context.Context, since model.Date) ([]model.Event, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Event, 0, len(f.events))
	for _, e := range f.events {
		if !e.Date.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func official(id, title, date string) model.Event {
	d, _ := model.ParseDate(date)
	return model.Event{
		ID:       id,
		Title:    title,
		Date:     d,
		Category: model.CategoryDeadline,
		Origin:   model.OriginOfficial,
	}
}

// fixedClock pins "now" to the worked reference day, a Sunday.
func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)
	}
}

func newService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	base := []service.Option{
		service.WithStoreBackend("file", filepath.Join(t.TempDir(), "tasks.json")),
		service.WithNow(fixedClock()),
	}
	return service.New(append(base, opts...)...)
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a service", t, func() {
		ctx := context.Background()
		svc := newService(t)

		Convey("When starting and stopping", func() {
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()

			Convey("Then a second start works again", func() {
				So(svc.Start(ctx), ShouldBeNil)
				svc.Stop()
			})
		})

		Convey("When starting twice", func() {
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then the second start is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})
}

func TestServiceSync(t *testing.T) {
	Convey("Given a service with two feeds", t, func() {
		ctx := context.Background()

		sis := &fakeSource{id: "sis", events: []model.Event{
			official("sis/q1", "Calculus quiz", "2024-03-12"),
			official("sis/m1", "Midterm", "2024-03-18"),
		}}
		dept := &fakeSource{id: "dept", events: []model.Event{
			official("dept/l1", "Physics lab", "2024-03-13"),
			official("sis/q1", "Calculus quiz", "2024-03-12"), // overlap with sis
		}}

		svc := newService(t, service.WithSources(sis, dept))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When syncing", func() {
			res, err := svc.Sync(ctx)

			Convey("Then overlapping events are admitted once", func() {
				So(err, ShouldBeNil)
				So(res.Fetched, ShouldEqual, 4)
				So(res.Admitted, ShouldEqual, 3)
				So(res.Dropped, ShouldEqual, 1)
				So(res.Failed, ShouldEqual, 0)
			})

			Convey("And the views see the snapshot", func() {
				So(err, ShouldBeNil)
				view, derr := svc.Daily(ctx)
				So(derr, ShouldBeNil)
				So(len(view.Upcoming), ShouldEqual, 3) // quiz, lab, midterm all inside the window
			})
		})

		Convey("When one feed fails", func() {
			dept.err = errors.New("connection refused")
			res, err := svc.Sync(ctx)

			Convey("Then the pass still succeeds with the healthy feed", func() {
				So(err, ShouldBeNil)
				So(res.Failed, ShouldEqual, 1)
				So(res.Admitted, ShouldEqual, 2)
				So(res.LastError, ShouldContainSubstring, "connection refused")
			})
		})

		Convey("When every feed fails", func() {
			_, err := svc.Sync(ctx)
			So(err, ShouldBeNil)

			sis.err = errors.New("timeout")
			dept.err = errors.New("timeout")
			res, err := svc.Sync(ctx)

			Convey("Then the pass fails and the old snapshot survives", func() {
				So(err, ShouldNotBeNil)
				So(res.Failed, ShouldEqual, 2)

				stats := svc.GetStats(ctx)
				So(stats.OfficialEvents, ShouldEqual, 3)
				So(stats.LastSyncError, ShouldContainSubstring, "timeout")
			})
		})

		Convey("When syncing twice", func() {
			first, err := svc.Sync(ctx)
			So(err, ShouldBeNil)
			second, err := svc.Sync(ctx)

			Convey("Then the second pass is judged fresh, not deduped against the first", func() {
				So(err, ShouldBeNil)
				So(second.Admitted, ShouldEqual, first.Admitted)
			})
		})
	})
}

func TestServiceTasks(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newService(t)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When adding a task without a date", func() {
			task, err := svc.AddTask(ctx, "Buy lab notebook", "", "")

			Convey("Then it lands on today with personal markers", func() {
				So(err, ShouldBeNil)
				So(task.ID, ShouldNotBeEmpty)
				So(task.Date.String(), ShouldEqual, "2024-03-10")
				So(task.Category, ShouldEqual, model.CategoryPersonal)
				So(task.Origin, ShouldEqual, model.OriginPersonal)
			})
		})

		Convey("When adding a task with an explicit date and time range", func() {
			task, err := svc.AddTask(ctx, "Review notes", "2024-03-12", "19:00 - 20:00")

			So(err, ShouldBeNil)
			So(task.Date.String(), ShouldEqual, "2024-03-12")
			So(task.TimeRange, ShouldEqual, "19:00 - 20:00")
		})

		Convey("When adding a task with a blank title", func() {
			_, err := svc.AddTask(ctx, "   ", "", "")

			So(err, ShouldNotBeNil)
		})

		Convey("When adding a task with a garbage date", func() {
			_, err := svc.AddTask(ctx, "Review notes", "next tuesday", "")

			So(err, ShouldNotBeNil)
		})

		Convey("When removing a task", func() {
			task, err := svc.AddTask(ctx, "Temp", "", "")
			So(err, ShouldBeNil)

			Convey("And it exists", func() {
				So(svc.RemoveTask(ctx, task.ID), ShouldBeNil)

				tasks, terr := svc.Tasks(ctx)
				So(terr, ShouldBeNil)
				So(tasks, ShouldBeEmpty)
			})

			Convey("And it does not exist", func() {
				err := svc.RemoveTask(ctx, "ghost")
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestServiceViews(t *testing.T) {
	Convey("Given a service with a synced feed and a stored task", t, func() {
		ctx := context.Background()

		src := &fakeSource{id: "sis", events: []model.Event{
			official("sis/A", "A", "2024-03-10"),
			official("sis/B", "B", "2024-03-11"),
			official("sis/C", "C", "2024-03-17"),
			official("sis/D", "D", "2024-03-25"),
			official("sis/E", "E", "2024-04-02"),
		}}

		svc := newService(t, service.WithSources(src))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		_, err := svc.AddTask(ctx, "Study group", "2024-03-11", "")
		So(err, ShouldBeNil)

		Convey("When reading the daily view", func() {
			view, err := svc.Daily(ctx)

			Convey("Then buckets hold merged official and personal entries", func() {
				So(err, ShouldBeNil)
				So(len(view.Today), ShouldEqual, 1)
				So(view.Today[0].ID, ShouldEqual, "sis/A")
				So(len(view.Tomorrow), ShouldEqual, 2) // B plus the task
				So(len(view.Upcoming), ShouldEqual, 1) // C; D and E are past the window
			})
		})

		Convey("When reading the weekly view", func() {
			groups, err := svc.Weekly(ctx)

			Convey("Then the current week is labeled and populated", func() {
				So(err, ShouldBeNil)
				So(len(groups), ShouldEqual, 3)
				So(groups[0].Label, ShouldEqual, "THIS WEEK")
				So(len(groups[0].Events), ShouldEqual, 3) // A, B, task
				So(len(groups[1].Events), ShouldEqual, 1) // C
				So(len(groups[2].Events), ShouldEqual, 1) // D
			})
		})

		Convey("When reading the monthly view", func() {
			groups, err := svc.Monthly(ctx)

			Convey("Then every event lands in its calendar month", func() {
				So(err, ShouldBeNil)
				So(len(groups), ShouldEqual, 2)
				So(groups[0].Label, ShouldEqual, "MARCH")
				So(len(groups[0].Events), ShouldEqual, 5) // A-D + task
				So(groups[1].Label, ShouldEqual, "APRIL")
				So(len(groups[1].Events), ShouldEqual, 1)
			})
		})

		Convey("When reading stats", func() {
			stats := svc.GetStats(ctx)

			So(stats.OfficialEvents, ShouldEqual, 5)
			So(stats.PersonalTasks, ShouldEqual, 1)
			So(stats.LastSyncAt, ShouldNotBeEmpty)
			So(stats.LastSyncError, ShouldBeEmpty)
		})
	})
}

// gatedSource stalls its second fetch until released, so a test can hold one
// sync pass open while another is triggered.
type gatedSource struct {
	id      string
	events  []model.Event
	calls   int32
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSource) ID() string { return g.id }

func (g *gatedSource) FetchUpcoming(ctx context.Context, since model.Date) ([]model.Event, error) {
	if atomic.AddInt32(&g.calls, 1) == 2 {
		close(g.entered)
		<-g.release
	}
	out := make([]model.Event, 0, len(g.events))
	for _, e := range g.events {
		if !e.Date.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestServiceOverlappingSyncs(t *testing.T) {
	Convey("Given a started service whose feed can stall mid-fetch", t, func() {
		ctx := context.Background()
		src := &gatedSource{
			id: "sis",
			events: []model.Event{
				official("sis/quiz", "Quiz 1", "2024-03-12"),
				official("sis/lab", "Lab 2", "2024-03-14"),
			},
			entered: make(chan struct{}),
			release: make(chan struct{}),
		}
		svc := newService(t, service.WithSources(src))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a second sync is triggered while one is mid-fetch", func() {
			var (
				first, second       types.SyncResult
				firstErr, secondErr error
			)
			firstDone := make(chan struct{})
			secondDone := make(chan struct{})

			go func() {
				first, firstErr = svc.Sync(ctx)
				close(firstDone)
			}()
			<-src.entered

			go func() {
				second, secondErr = svc.Sync(ctx)
				close(secondDone)
			}()
			close(src.release)
			<-firstDone
			<-secondDone

			Convey("Then both passes admit the full feed", func() {
				So(firstErr, ShouldBeNil)
				So(secondErr, ShouldBeNil)
				So(first.Admitted, ShouldEqual, 2)
				So(first.Dropped, ShouldEqual, 0)
				So(second.Admitted, ShouldEqual, 2)
				So(second.Dropped, ShouldEqual, 0)
			})

			Convey("And the snapshot still holds every official event", func() {
				So(firstErr, ShouldBeNil)
				So(secondErr, ShouldBeNil)
				So(svc.GetStats(ctx).OfficialEvents, ShouldEqual, 2)
			})
		})
	})
}

func TestServiceBadSyncSchedule(t *testing.T) {
	Convey("Given a service with an invalid sync schedule", t, func() {
		ctx := context.Background()
		svc := newService(t, service.WithSyncSchedule("not a cron spec"))

		Convey("When starting", func() {
			err := svc.Start(ctx)

			Convey("Then startup fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "bad sync schedule")
			})

			Convey("And the service stays unstarted, so a retry reports the same error", func() {
				So(err, ShouldNotBeNil)
				retryErr := svc.Start(ctx)
				So(retryErr, ShouldNotBeNil)
				So(retryErr.Error(), ShouldContainSubstring, "bad sync schedule")
			})
		})
	})
}
