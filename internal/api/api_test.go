package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andresuchdata/inventory-abc/internal/analysis"
	"github.com/andresuchdata/inventory-abc/internal/config"
	"github.com/andresuchdata/inventory-abc/internal/domain"
	"github.com/andresuchdata/inventory-abc/internal/notify"
	"github.com/andresuchdata/inventory-abc/internal/service"
	"github.com/gin-gonic/gin"
)

type stubRenderer struct{}

func (stubRenderer) ClassDistribution(domain.Summary) (string, error) {
	return "data:image/png;base64,YmFy", nil
}

func (stubRenderer) CumulativeCurve([]domain.AnalyzedItem, float64, float64) (string, error) {
	return "data:image/png;base64,Y3VydmU=", nil
}

type stubMailer struct {
	fail map[string]bool
}

func (m stubMailer) Send(ctx context.Context, alert notify.Alert) error {
	if m.fail[alert.Item.Name] {
		return errors.New("dial tcp: connection refused")
	}
	return nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	services := &Services{
		InventoryService: service.NewInventoryService(
			analysis.NewAnalyzer(config.DefaultAnalysis()), stubRenderer{}, nil),
		AlertService: service.NewAlertService(
			notify.NewNotifier(stubMailer{fail: map[string]bool{"gaskets": true}}, 1), "manager@company.com"),
	}
	return NewRouter(services, []string{"*"})
}

func post(t *testing.T, router *gin.Engine, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var payload map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return rec, payload
}

func TestAnalyzeInventory(t *testing.T) {
	router := newTestRouter()
	body := `[
		{"Item_Name": "washers", "Quantity": 5, "Unit_Cost": 1, "Lead_Time_Days": 2},
		{"Item_Name": "bolts", "Quantity": 100, "Unit_Cost": 10, "Lead_Time_Days": 5}
	]`

	for _, path := range []string{"/analyze-inventory", "/api/v1/inventory/analyze"} {
		t.Run(path, func(t *testing.T) {
			rec, payload := post(t, router, path, body)

			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if payload["success"] != true {
				t.Errorf("Expected success true, got %v", payload["success"])
			}
			if payload["bar_chart"] == "" || payload["cumulative_chart"] == "" {
				t.Error("Expected both charts in the response")
			}

			results := payload["results"].([]interface{})
			first := results[0].(map[string]interface{})
			if first["Item_Name"] != "bolts" || first["ABC_Class"] != "C" {
				t.Errorf("Unexpected first result %v", first)
			}
			for _, key := range []string{"Annual_Usage", "Cumulative_Percentage", "Reorder_Point", "Holding_Cost", "EOQ"} {
				if _, ok := first[key]; !ok {
					t.Errorf("Expected %s in result", key)
				}
			}

			summary := payload["summary"].(map[string]interface{})
			if summary["total_items"] != 2.0 || summary["c_items"] != 2.0 || summary["total_value"] != 1005.0 {
				t.Errorf("Unexpected summary %v", summary)
			}
		})
	}
}

func TestAnalyzeInventory_Empty(t *testing.T) {
	rec, payload := post(t, newTestRouter(), "/analyze-inventory", `[]`)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if results := payload["results"].([]interface{}); len(results) != 0 {
		t.Errorf("Expected no results, got %v", results)
	}
	summary := payload["summary"].(map[string]interface{})
	for _, key := range []string{"total_items", "a_items", "b_items", "c_items", "total_value"} {
		if summary[key] != 0.0 {
			t.Errorf("Expected %s to be 0, got %v", key, summary[key])
		}
	}
}

func TestAnalyzeInventory_Failures(t *testing.T) {
	testCases := []struct {
		name        string
		body        string
		expectError string
	}{
		{"malformed json", `[{"Item_Name": `, "invalid request body"},
		{"not a list", `{"Item_Name": "x"}`, "invalid request body"},
		{"missing field", `[{"Item_Name": "x", "Quantity": 1, "Unit_Cost": 2}]`, "missing Lead_Time_Days"},
		{"negative quantity", `[{"Item_Name": "x", "Quantity": -1, "Unit_Cost": 2, "Lead_Time_Days": 1}]`, "cannot be negative"},
		{"zero cost", `[{"Item_Name": "x", "Quantity": 1, "Unit_Cost": 0, "Lead_Time_Days": 1}]`, "EOQ undefined"},
		{"usage overflow", `[{"Item_Name": "huge", "Quantity": 1e308, "Unit_Cost": 10, "Lead_Time_Days": 1}]`, "out of range"},
		{"EOQ overflow", `[{"Item_Name": "dust", "Quantity": 1e10, "Unit_Cost": 1e-310, "Lead_Time_Days": 1}]`, "out of range"},
	}

	router := newTestRouter()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec, payload := post(t, router, "/api/v1/inventory/analyze", tc.body)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rec.Code)
			}
			if payload["success"] != false {
				t.Errorf("Expected success false, got %v", payload["success"])
			}
			if msg, _ := payload["error"].(string); !strings.Contains(msg, tc.expectError) {
				t.Errorf("Expected error containing %q, got %q", tc.expectError, msg)
			}
			if _, ok := payload["results"]; ok {
				t.Error("Expected no partial results")
			}
		})
	}
}

func TestSendStockAlerts(t *testing.T) {
	body := `{"critical_items": [
		{"Item_Name": "gaskets", "Quantity": 2, "Reorder_Point": 15},
		{"Item_Name": "valves", "Quantity": 1, "Reorder_Point": 11}
	]}`

	for _, path := range []string{"/api/send-stock-alerts", "/api/v1/inventory/alerts"} {
		t.Run(path, func(t *testing.T) {
			rec, payload := post(t, newTestRouter(), path, body)

			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if payload["success"] != true || payload["message"] != "1 alerts sent" || payload["sent"] != 1.0 {
				t.Errorf("Unexpected payload %v", payload)
			}

			results := payload["results"].([]interface{})
			if len(results) != 2 {
				t.Fatalf("Expected 2 results, got %d", len(results))
			}
			first := results[0].(map[string]interface{})
			second := results[1].(map[string]interface{})
			if first["item"] != "gaskets" || first["alert_sent"] != false {
				t.Errorf("Unexpected first result %v", first)
			}
			if second["item"] != "valves" || second["alert_sent"] != true {
				t.Errorf("Unexpected second result %v", second)
			}
		})
	}
}

func TestSendStockAlerts_Invalid(t *testing.T) {
	rec, payload := post(t, newTestRouter(), "/api/send-stock-alerts", `{"critical_items": [{"Quantity": 2}]}`)

	if rec.Code != http.StatusBadRequest || payload["success"] != false {
		t.Errorf("Expected 400 failure, got %d %v", rec.Code, payload)
	}
}

func TestHealthAndRequestID(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte(`"ok"`)) {
		t.Errorf("Unexpected health response %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") != "abc-123" {
		t.Errorf("Expected request id to be echoed, got %q", rec.Header().Get("X-Request-ID"))
	}
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, all := normalizeAllowedOrigins([]string{"https://a.example, https://b.example", " "})
	if all || len(origins) != 2 || origins[1] != "https://b.example" {
		t.Errorf("Unexpected origins %v all=%v", origins, all)
	}

	if _, all := normalizeAllowedOrigins([]string{"*"}); !all {
		t.Error("Expected * to allow all origins")
	}
}
