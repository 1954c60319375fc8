package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserve(t *testing.T) {
	okBefore := testutil.ToFloat64(OperationsTotal.WithLabelValues("test_op", ResultOK))
	errBefore := testutil.ToFloat64(OperationsTotal.WithLabelValues("test_op", ResultError))

	Observe("test_op", time.Now(), nil)
	Observe("test_op", time.Now(), errors.New("boom"))
	Observe("test_op", time.Now(), nil)

	assert.Equal(t, okBefore+2, testutil.ToFloat64(OperationsTotal.WithLabelValues("test_op", ResultOK)))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(OperationsTotal.WithLabelValues("test_op", ResultError)))
}

func TestHandlerExposesCollectors(t *testing.T) {
	Observe("scrape_op", time.Now(), nil)
	MarkersIndexed.Set(3)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := w.Body.String()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(body, `gridhash_operations_total{op="scrape_op",result="ok"}`))
	assert.True(t, strings.Contains(body, "gridhash_markers_indexed 3"))
}
