package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStatusClass(t *testing.T) {
	cases := map[int]string{200: "2xx", 201: "2xx", 304: "3xx", 403: "4xx", 409: "4xx", 500: "5xx", 503: "5xx"}
	for code, want := range cases {
		if got := StatusClass(code); got != want {
			t.Fatalf("StatusClass(%d) = %s, want %s", code, got, want)
		}
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	before := testutil.ToFloat64(LockRejections.WithLabelValues("meal"))
	LockRejections.WithLabelValues("meal").Inc()
	if got := testutil.ToFloat64(LockRejections.WithLabelValues("meal")); got != before+1 {
		t.Fatalf("counter = %v, want %v", got, before+1)
	}

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "mealbook_lock_rejections_total") {
		t.Fatalf("metrics output missing lock rejections counter")
	}
}
