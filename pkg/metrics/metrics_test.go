package metrics

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	errs "github.com/tendant/simple-todo/pkg/errors"
)

func TestObserveOperation(t *testing.T) {
	okBefore := testutil.ToFloat64(OperationsTotal.WithLabelValues("todo", "create", "ok"))
	conflictBefore := testutil.ToFloat64(OperationsTotal.WithLabelValues("todo", "create", "CONFLICT"))
	internalBefore := testutil.ToFloat64(OperationsTotal.WithLabelValues("todo", "create", "INTERNAL_ERROR"))

	ObserveOperation("todo", "create", nil)
	ObserveOperation("todo", "create", errs.Conflict(errs.ReasonTitleExists, "dup"))
	ObserveOperation("todo", "create", fmt.Errorf("unstructured"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(OperationsTotal.WithLabelValues("todo", "create", "ok")))
	assert.Equal(t, conflictBefore+1, testutil.ToFloat64(OperationsTotal.WithLabelValues("todo", "create", "CONFLICT")))
	assert.Equal(t, internalBefore+1, testutil.ToFloat64(OperationsTotal.WithLabelValues("todo", "create", "INTERNAL_ERROR")))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/todoitems/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/todoitems/{id}", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/todoitems/42", nil))
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/todoitems/{id}", "404"))

	assert.Equal(t, before+1, after)
}

type fakeStats struct{ total, idle, acquired int32 }

func (f fakeStats) TotalConns() int32    { return f.total }
func (f fakeStats) IdleConns() int32     { return f.idle }
func (f fakeStats) AcquiredConns() int32 { return f.acquired }

type fakeProvider struct{ stats fakeStats }

func (p fakeProvider) Stat() PoolStats { return p.stats }

func TestPoolStatsCollector(t *testing.T) {
	c := NewPoolStatsCollectorWithProvider(fakeProvider{stats: fakeStats{total: 5, idle: 3, acquired: 2}})
	c.Start(time.Hour)
	c.Stop()

	assert.Equal(t, float64(5), testutil.ToFloat64(DBConnectionPoolSize.WithLabelValues("total")))
	assert.Equal(t, float64(3), testutil.ToFloat64(DBConnectionPoolSize.WithLabelValues("idle")))
	assert.Equal(t, float64(2), testutil.ToFloat64(DBConnectionPoolSize.WithLabelValues("in_use")))
}
