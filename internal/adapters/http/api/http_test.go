package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/sked/internal/adapters/http/api"
	"github.com/okian/sked/internal/adapters/taskstore"
	"github.com/okian/sked/internal/domain/model"
	"github.com/okian/sked/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementation of the handler dependencies.
type mockService struct {
	daily      types.DailyView
	weekly     []types.WeekGroup
	monthly    []types.MonthGroup
	viewErr    error
	tasks      []model.Event
	tasksErr   error
	addedTask  model.Event
	addErr     error
	removeErr  error
	syncResult types.SyncResult
	syncErr    error
	stats      types.Stats

	removedID string
}

func (m *mockService) Daily(ctx context.Context) (types.DailyView, error) {
	return m.daily, m.viewErr
}

func (m *mockService) Weekly(ctx context.Context) ([]types.WeekGroup, error) {
	return m.weekly, m.viewErr
}

func (m *mockService) Monthly(ctx context.Context) ([]types.MonthGroup, error) {
	return m.monthly, m.viewErr
}

func (m *mockService) Tasks(ctx context.Context) ([]model.Event, error) {
	return m.tasks, m.tasksErr
}

func (m *mockService) AddTask(ctx context.Context, title, date, timeRange string) (model.Event, error) {
	if m.addErr != nil {
		return model.Event{}, m.addErr
	}
	return m.addedTask, nil
}

func (m *mockService) RemoveTask(ctx context.Context, id string) error {
	m.removedID = id
	return m.removeErr
}

func (m *mockService) Sync(ctx context.Context) (types.SyncResult, error) {
	return m.syncResult, m.syncErr
}

func (m *mockService) GetStats(ctx context.Context) types.Stats {
	return m.stats
}

func newMux(m *mockService) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(m, m).Register(context.Background(), mux)
	return mux
}

func sampleEvent(id, date string) model.Event {
	d, _ := model.ParseDate(date)
	return model.Event{
		ID:       id,
		Title:    "Sample",
		Date:     d,
		Category: model.CategoryQuiz,
		Origin:   model.OriginOfficial,
	}
}

func TestAgendaEndpoint(t *testing.T) {
	Convey("Given the agenda endpoint", t, func() {
		m := &mockService{
			daily: types.DailyView{
				Today:    []model.Event{sampleEvent("sis/a", "2024-03-10")},
				Tomorrow: []model.Event{},
				Upcoming: []model.Event{},
			},
			weekly: []types.WeekGroup{{
				Label:  "THIS WEEK",
				Start:  model.NewDate(2024, time.March, 10),
				End:    model.NewDate(2024, time.March, 16),
				Events: []model.Event{sampleEvent("sis/a", "2024-03-10")},
			}},
			monthly: []types.MonthGroup{{
				Label:  "MARCH",
				Year:   2024,
				Month:  3,
				Events: []model.Event{sampleEvent("sis/a", "2024-03-10")},
			}},
		}
		mux := newMux(m)

		Convey("When requesting the default view", func() {
			req := httptest.NewRequest("GET", "/agenda", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the daily view is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["view"], ShouldEqual, "daily")
				So(resp["daily"], ShouldNotBeNil)
			})
		})

		Convey("When requesting the weekly view", func() {
			req := httptest.NewRequest("GET", "/agenda?view=weekly", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "THIS WEEK")
		})

		Convey("When requesting the monthly view", func() {
			req := httptest.NewRequest("GET", "/agenda?view=monthly", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "MARCH")
		})

		Convey("When requesting an unknown view", func() {
			req := httptest.NewRequest("GET", "/agenda?view=yearly", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, "unknown_view")
		})

		Convey("When the service fails", func() {
			m.viewErr = errors.New("store exploded")
			req := httptest.NewRequest("GET", "/agenda", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("When using the wrong method", func() {
			req := httptest.NewRequest("POST", "/agenda", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestTasksEndpoint(t *testing.T) {
	Convey("Given the tasks endpoint", t, func() {
		created := sampleEvent("task-1", "2024-03-11")
		created.Origin = model.OriginPersonal
		created.Category = model.CategoryPersonal

		m := &mockService{addedTask: created}
		mux := newMux(m)

		Convey("When listing tasks with none stored", func() {
			req := httptest.NewRequest("GET", "/tasks", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then an empty array is returned, not null", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
			})
		})

		Convey("When creating a task", func() {
			body := strings.NewReader(`{"title":"Buy books","date":"2024-03-11"}`)
			req := httptest.NewRequest("POST", "/tasks", body)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then 201 is returned with the stored task", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				var task model.Event
				So(json.Unmarshal(w.Body.Bytes(), &task), ShouldBeNil)
				So(task.ID, ShouldEqual, "task-1")
				So(task.Origin, ShouldEqual, model.OriginPersonal)
			})
		})

		Convey("When creating a task without a title", func() {
			body := strings.NewReader(`{"date":"2024-03-11"}`)
			req := httptest.NewRequest("POST", "/tasks", body)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, "missing title")
		})

		Convey("When creating a task with a malformed body", func() {
			req := httptest.NewRequest("POST", "/tasks", strings.NewReader("{{{"))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the service rejects the task", func() {
			m.addErr = fmt.Errorf("bad task date %q", "2024-13-99")
			body := strings.NewReader(`{"title":"x","date":"2024-13-99"}`)
			req := httptest.NewRequest("POST", "/tasks", body)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When deleting an existing task", func() {
			req := httptest.NewRequest("DELETE", "/tasks/task-1", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then 204 is returned and the ID reached the service", func() {
				So(w.Code, ShouldEqual, http.StatusNoContent)
				So(m.removedID, ShouldEqual, "task-1")
			})
		})

		Convey("When deleting a missing task", func() {
			m.removeErr = fmt.Errorf("remove: %w", taskstore.ErrNotFound)
			req := httptest.NewRequest("DELETE", "/tasks/ghost", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When deleting with an empty ID", func() {
			req := httptest.NewRequest("DELETE", "/tasks/", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When using an unsupported method on /tasks/", func() {
			req := httptest.NewRequest("PATCH", "/tasks/task-1", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSyncEndpoint(t *testing.T) {
	Convey("Given the sync endpoint", t, func() {
		m := &mockService{
			syncResult: types.SyncResult{Fetched: 5, Admitted: 5, Feeds: 2},
		}
		mux := newMux(m)

		Convey("When triggering a successful sync", func() {
			req := httptest.NewRequest("POST", "/sync", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the result is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var res types.SyncResult
				So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
				So(res.Admitted, ShouldEqual, 5)
			})
		})

		Convey("When every feed failed", func() {
			m.syncErr = errors.New("all feeds failed")
			m.syncResult = types.SyncResult{Feeds: 2, Failed: 2, LastError: "timeout"}
			req := httptest.NewRequest("POST", "/sync", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then 502 carries the failed result", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
				So(w.Body.String(), ShouldContainSubstring, "timeout")
			})
		})

		Convey("When using GET", func() {
			req := httptest.NewRequest("GET", "/sync", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given the stats endpoint", t, func() {
		m := &mockService{
			stats: types.Stats{
				OfficialEvents: 12,
				PersonalTasks:  3,
				LastSyncAt:     "2024-03-10T08:00:00Z",
				Uptime:         "1h2m3s",
			},
		}
		mux := newMux(m)

		Convey("When requesting stats", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the snapshot is returned as JSON", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var stats types.Stats
				So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
				So(stats.OfficialEvents, ShouldEqual, 12)
				So(stats.PersonalTasks, ShouldEqual, 3)
			})
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given the health endpoint", t, func() {
		mux := newMux(&mockService{})

		Convey("When requesting metrics", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the Prometheus exposition is served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "sked_agenda")
			})
		})
	})
}

func TestDashboardEndpoint(t *testing.T) {
	Convey("Given the dashboard endpoint", t, func() {
		mux := newMux(&mockService{})

		Convey("When requesting the dashboard", func() {
			req := httptest.NewRequest("GET", "/dashboard", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the embedded page is served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "sked metrics")
			})
		})
	})
}
