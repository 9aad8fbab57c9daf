package taskstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	taskstore "github.com/okian/sked/internal/adapters/taskstore"
	model "github.com/okian/sked/internal/domain/model"
	"github.com/okian/sked/pkg/logger"
	"github.com/okian/sked/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	m.Run()
}

func task(id, title, date string) model.Event {
	d, _ := model.ParseDate(date)
	return model.Event{
		ID:       id,
		Title:    title,
		Date:     d,
		Category: model.CategoryPersonal,
		Origin:   model.OriginPersonal,
	}
}

// backends maps each store implementation to a factory so every scenario
// runs against a fresh instance of both.
func backends() map[string]func(ctx context.Context, dir string) (taskstore.Store, error) {
	return map[string]func(ctx context.Context, dir string) (taskstore.Store, error){
		"file": func(ctx context.Context, dir string) (taskstore.Store, error) {
			return taskstore.NewFileStore(ctx, filepath.Join(dir, "tasks.json"))
		},
		"sqlite": func(ctx context.Context, dir string) (taskstore.Store, error) {
			return taskstore.NewSQLiteStore(ctx, filepath.Join(dir, "tasks.db"))
		},
	}
}

func TestStoreBackends(t *testing.T) {
	for name, open := range backends() {
		open := open
		Convey("Given an empty "+name+" store", t, func() {
			ctx := context.Background()
			store, err := open(ctx, t.TempDir())
			So(err, ShouldBeNil)
			defer func() { _ = store.Close() }()

			Convey("When loading", func() {
				tasks, err := store.Load(ctx)

				Convey("Then the list is empty, not nil", func() {
					So(err, ShouldBeNil)
					So(tasks, ShouldNotBeNil)
					So(tasks, ShouldBeEmpty)
				})
			})

			Convey("When adding tasks", func() {
				So(store.Add(ctx, task("t1", "Buy books", "2024-03-11")), ShouldBeNil)
				So(store.Add(ctx, task("t2", "Study group", "2024-03-10")), ShouldBeNil)

				Convey("Then both come back on load", func() {
					tasks, err := store.Load(ctx)
					So(err, ShouldBeNil)
					So(len(tasks), ShouldEqual, 2)
				})

				Convey("And re-adding the same ID fails", func() {
					err := store.Add(ctx, task("t1", "Echo", "2024-03-12"))
					So(err, ShouldNotBeNil)
					So(err.Error(), ShouldContainSubstring, "already exists")
				})
			})

			Convey("When removing tasks", func() {
				So(store.Add(ctx, task("t1", "Buy books", "2024-03-11")), ShouldBeNil)

				Convey("And the task exists", func() {
					So(store.Remove(ctx, "t1"), ShouldBeNil)

					tasks, err := store.Load(ctx)
					So(err, ShouldBeNil)
					So(tasks, ShouldBeEmpty)
				})

				Convey("And the task does not exist", func() {
					err := store.Remove(ctx, "ghost")
					So(err, ShouldNotBeNil)
					So(err.Error(), ShouldContainSubstring, "task not found")
				})
			})

			Convey("When replacing the whole list", func() {
				So(store.Add(ctx, task("old", "Old task", "2024-03-01")), ShouldBeNil)

				next := []model.Event{
					task("n1", "New one", "2024-03-11"),
					task("n2", "New two", "2024-03-12"),
				}
				So(store.Replace(ctx, next), ShouldBeNil)

				Convey("Then only the new list remains", func() {
					tasks, err := store.Load(ctx)
					So(err, ShouldBeNil)
					So(len(tasks), ShouldEqual, 2)
					for _, tk := range tasks {
						So(tk.ID, ShouldNotEqual, "old")
					}
				})
			})
		})
	}
}

func TestFileStorePersistence(t *testing.T) {
	Convey("Given a file store with tasks on disk", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "tasks.json")

		first, err := taskstore.NewFileStore(ctx, path)
		So(err, ShouldBeNil)
		So(first.Add(ctx, task("t1", "Buy books", "2024-03-11")), ShouldBeNil)
		So(first.Close(), ShouldBeNil)

		Convey("When reopening the same path", func() {
			second, err := taskstore.NewFileStore(ctx, path)
			So(err, ShouldBeNil)

			tasks, err := second.Load(ctx)

			Convey("Then the tasks survive the restart", func() {
				So(err, ShouldBeNil)
				So(len(tasks), ShouldEqual, 1)
				So(tasks[0].ID, ShouldEqual, "t1")
				So(tasks[0].Origin, ShouldEqual, model.OriginPersonal)
			})
		})

		Convey("When the file is corrupt", func() {
			So(os.WriteFile(path, []byte("{{{ not json"), 0o600), ShouldBeNil)

			second, err := taskstore.NewFileStore(ctx, path)

			Convey("Then the store opens with an empty list", func() {
				So(err, ShouldBeNil)
				tasks, lerr := second.Load(ctx)
				So(lerr, ShouldBeNil)
				So(tasks, ShouldBeEmpty)
			})
		})
	})
}

func TestSQLiteStorePersistence(t *testing.T) {
	Convey("Given a sqlite store with tasks on disk", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "tasks.db")

		first, err := taskstore.NewSQLiteStore(ctx, path)
		So(err, ShouldBeNil)
		So(first.Add(ctx, model.Event{
			ID:        "t1",
			Title:     "Buy books",
			Date:      model.NewDate(2024, time.March, 11),
			TimeRange: "2 PM",
			Category:  model.CategoryPersonal,
			Origin:    model.OriginPersonal,
		}), ShouldBeNil)
		So(first.Close(), ShouldBeNil)

		Convey("When reopening the same path", func() {
			second, err := taskstore.NewSQLiteStore(ctx, path)
			So(err, ShouldBeNil)
			defer func() { _ = second.Close() }()

			tasks, err := second.Load(ctx)

			Convey("Then the tasks survive the restart with all fields", func() {
				So(err, ShouldBeNil)
				So(len(tasks), ShouldEqual, 1)
				So(tasks[0].Title, ShouldEqual, "Buy books")
				So(tasks[0].Date.String(), ShouldEqual, "2024-03-11")
				So(tasks[0].TimeRange, ShouldEqual, "2 PM")
				So(tasks[0].Category, ShouldEqual, model.CategoryPersonal)
			})
		})
	})
}

// taskStoreLatencyCount reads the total observation count of the task store
// latency histogram from the shared registry.
func taskStoreLatencyCount() uint64 {
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		return 0
	}
	for _, mf := range families {
		if mf.GetName() == "sked_agenda_task_store_latency_milliseconds" {
			var total uint64
			for _, m := range mf.GetMetric() {
				total += m.GetHistogram().GetSampleCount()
			}
			return total
		}
	}
	return 0
}

func TestStoreLatencyMetric(t *testing.T) {
	for name, open := range backends() {
		open := open
		Convey("Given an empty "+name+" store", t, func() {
			ctx := context.Background()
			store, err := open(ctx, t.TempDir())
			So(err, ShouldBeNil)
			defer func() { _ = store.Close() }()

			Convey("When adding and removing a task", func() {
				before := taskStoreLatencyCount()
				So(store.Add(ctx, task("t1", "Buy books", "2024-03-11")), ShouldBeNil)
				So(store.Remove(ctx, "t1"), ShouldBeNil)

				Convey("Then both writes land in the latency histogram", func() {
					So(taskStoreLatencyCount(), ShouldBeGreaterThanOrEqualTo, before+2)
				})
			})
		})
	}
}
