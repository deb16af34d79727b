package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	assistant "github.com/Protocol-Lattice/go-assistant"
	"github.com/Protocol-Lattice/go-assistant/src/models"
	"github.com/Protocol-Lattice/go-assistant/src/tools"
)

func newTestRouter(t *testing.T, model models.Agent) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := assistant.NewRegistry()
	if err := tools.RegisterBuiltin(registry); err != nil {
		t.Fatalf("RegisterBuiltin: %v", err)
	}
	orchestrator, err := assistant.New(assistant.Options{Model: model, Registry: registry})
	if err != nil {
		t.Fatalf("assistant.New: %v", err)
	}
	return NewRouter(New(Options{Orchestrator: orchestrator, Registry: registry}))
}

func TestInvokeEndpoint(t *testing.T) {
	router := newTestRouter(t, models.NewScriptedLLM(models.Completion{Text: "resposta"}))

	body := strings.NewReader(`{"query": "pergunta"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/invoke", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp InvokeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != StatusSuccess || resp.FinalAnswer != "resposta" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestInvokeEndpointMalformedBody(t *testing.T) {
	router := newTestRouter(t, models.NewScriptedLLM())

	req := httptest.NewRequest(http.MethodPost, "/v1/invoke", strings.NewReader(`{"query":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestInvokeEndpointEndpointFailureMapsTo502(t *testing.T) {
	router := newTestRouter(t, models.NewScriptedLLM()) // exhausts immediately

	req := httptest.NewRequest(http.MethodPost, "/v1/invoke", strings.NewReader(`{"query": "oi"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestToolsEndpoint(t *testing.T) {
	router := newTestRouter(t, models.NewScriptedLLM())

	req := httptest.NewRequest(http.MethodGet, "/v1/tools", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var listing struct {
		Tools []struct {
			Name        string         `json:"name"`
			InputSchema map[string]any `json:"input_schema"`
		} `json:"tools"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if listing.Total != 8 || len(listing.Tools) != 8 {
		t.Fatalf("total = %d, tools = %d", listing.Total, len(listing.Tools))
	}
	if listing.Tools[0].Name != "contador_caracteres" {
		t.Fatalf("tools[0] = %q", listing.Tools[0].Name)
	}
	if listing.Tools[0].InputSchema["type"] != "object" {
		t.Fatalf("schema = %v", listing.Tools[0].InputSchema)
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, models.NewScriptedLLM())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestStatusCodeMapping(t *testing.T) {
	cases := []struct {
		kind string
		want int
	}{
		{assistant.KindBadInput, http.StatusBadRequest},
		{assistant.KindTimeout, http.StatusGatewayTimeout},
		{assistant.KindEndpoint, http.StatusBadGateway},
		{assistant.KindStepLimit, http.StatusBadGateway},
		{assistant.KindCanceled, http.StatusBadGateway},
		{"algo_novo", http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := statusCodeFor(&ErrorInfo{Kind: c.kind}); got != c.want {
			t.Fatalf("statusCodeFor(%s) = %d, want %d", c.kind, got, c.want)
		}
	}
	if got := statusCodeFor(nil); got != http.StatusInternalServerError {
		t.Fatalf("statusCodeFor(nil) = %d", got)
	}
}
