package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/hitoshi/todoman/internal/auth"
)

var _ auth.Recorder = (*Collector)(nil)
var _ MetricsCollector = (*Collector)(nil)

// findFamily は名前でメトリクスファミリーを取得する。
func findFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("%s metric not found", name)
	return nil
}

// counterByLabel はラベル値ごとのカウンタ値を返す。
func counterByLabel(mf *dto.MetricFamily) map[string]float64 {
	out := make(map[string]float64)
	for _, m := range mf.GetMetric() {
		out[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
	}
	return out
}

func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestNewCollector_DoubleRegisterPanics は同じレジストリへの二重登録がパニックすることを検証する。
func TestNewCollector_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewCollector(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	_ = NewCollector(reg)
}

func TestAuthCounters(t *testing.T) {
	tests := []struct {
		name   string
		record func(c *Collector)
		metric string
		want   map[string]float64
	}{
		{
			name: "登録結果",
			record: func(c *Collector) {
				c.RecordRegistration(auth.OutcomeSuccess)
				c.RecordRegistration(auth.OutcomeFailure)
				c.RecordRegistration(auth.OutcomeFailure)
			},
			metric: "todoman_registrations_total",
			want:   map[string]float64{"success": 1, "failure": 2},
		},
		{
			name: "ログイン結果",
			record: func(c *Collector) {
				c.RecordLogin(auth.OutcomeSuccess)
				c.RecordLogin(auth.OutcomeSuccess)
			},
			metric: "todoman_logins_total",
			want:   map[string]float64{"success": 2},
		},
		{
			name: "トークン拒否理由",
			record: func(c *Collector) {
				c.RecordTokenRejected(auth.RejectExpired)
				c.RecordTokenRejected(auth.RejectSignature)
				c.RecordTokenRejected(auth.RejectExpired)
			},
			metric: "todoman_token_rejections_total",
			want:   map[string]float64{"expired": 2, "signature": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			c := NewCollector(reg)

			tt.record(c)

			got := counterByLabel(findFamily(t, reg, tt.metric))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for label, want := range tt.want {
				if got[label] != want {
					t.Errorf("%s{%s} = %v, want %v", tt.metric, label, got[label], want)
				}
			}
		})
	}
}

// TestRecordHTTPStatus_IncrementsCounterWithLabel はHTTPステータスカウンタがラベル付きで増加することを検証する。
func TestRecordHTTPStatus_IncrementsCounterWithLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(401)

	got := counterByLabel(findFamily(t, reg, "todoman_http_status_total"))
	if got["200"] != 2 {
		t.Errorf("http_status_total{status_code=200} = %v, want 2", got["200"])
	}
	if got["401"] != 1 {
		t.Errorf("http_status_total{status_code=401} = %v, want 1", got["401"])
	}
}

// TestRecordRequestLatency_ObservesHistogram はヒストグラムに観測値が記録されることを検証する。
func TestRecordRequestLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequestLatency("GET", 150*time.Millisecond)
	c.RecordRequestLatency("GET", 50*time.Millisecond)

	mf := findFamily(t, reg, "todoman_http_request_duration_seconds")
	h := mf.GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 2 {
		t.Errorf("sample count = %d, want 2", h.GetSampleCount())
	}
	if got := h.GetSampleSum(); got < 0.199 || got > 0.201 {
		t.Errorf("sample sum = %v, want ~0.2", got)
	}
}
