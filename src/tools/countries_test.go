package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Protocol-Lattice/go-assistant/src/cache"
)

const brazilBody = `[{
	"name": {"common": "Brazil", "official": "Federative Republic of Brazil"},
	"cca2": "BR",
	"cca3": "BRA",
	"capital": ["Brasília"],
	"region": "Americas",
	"subregion": "South America",
	"population": 212559417,
	"area": 8515767,
	"languages": {"por": "Portuguese"},
	"timezones": ["UTC-05:00"],
	"idd": {"root": "+5", "suffixes": ["5"]},
	"independent": true,
	"unMember": true,
	"flags": {"png": "https://flagcdn.com/w320/br.png"},
	"maps": {"googleMaps": "https://goo.gl/maps/waCKk21HeeqFzkNC9"}
}]`

const brazilEconomyBody = `{
	"currencies": {"BRL": {"name": "Brazilian real", "symbol": "R$"}},
	"gini": {"2019": 53.4}
}`

func newCountryLookupForTest(server *httptest.Server) *CountryLookup {
	tool := &CountryLookup{
		BaseURL: server.URL,
		Client:  server.Client(),
	}
	tool.cache = cache.NewLRUCache(16, time.Minute)
	return tool
}

func countriesHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/name/"):
			w.Write([]byte(brazilBody))
		case strings.HasPrefix(r.URL.Path, "/alpha/BR"):
			if r.URL.Query().Get("fields") != "currencies,gini" {
				t.Errorf("economic route query = %q", r.URL.RawQuery)
			}
			w.Write([]byte(brazilEconomyBody))
		default:
			http.NotFound(w, r)
		}
	}
}

func TestCountryLookupFullProfile(t *testing.T) {
	server := httptest.NewServer(countriesHandler(t))
	defer server.Close()

	tool := newCountryLookupForTest(server)

	result, err := tool.Execute(context.Background(), map[string]any{"nome_pais": "Brazil"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	dados, ok := result.Payload["dados_pais"].(map[string]any)
	if !ok {
		t.Fatalf("dados_pais has type %T", result.Payload["dados_pais"])
	}

	basico := dados["informacoes_basicas"].(map[string]any)
	if basico["nome_oficial"] != "Federative Republic of Brazil" {
		t.Fatalf("nome_oficial = %v", basico["nome_oficial"])
	}
	if basico["codigo_iso2"] != "BR" || basico["codigo_iso3"] != "BRA" {
		t.Fatalf("codigos = %v / %v", basico["codigo_iso2"], basico["codigo_iso3"])
	}
	if basico["capital"] != "Brasília" {
		t.Fatalf("capital = %v", basico["capital"])
	}
	if basico["codigo_telefone"] != "+55" {
		t.Fatalf("codigo_telefone = %v", basico["codigo_telefone"])
	}
	if basico["densidade_populacional"] != 24.96 {
		t.Fatalf("densidade_populacional = %v", basico["densidade_populacional"])
	}

	economico := dados["informacoes_economicas"].(map[string]any)
	moedas := economico["moedas"].(map[string]any)
	if _, ok := moedas["BRL"]; !ok {
		t.Fatalf("moedas = %v", moedas)
	}
	indicadores := economico["indicadores_economicos"].(map[string]any)
	gini := indicadores["gini"].(map[string]any)
	if gini["valor"] != 53.4 || gini["ano"] != "2019" {
		t.Fatalf("gini = %v", gini)
	}

	resumo := dados["resumo_executivo"].(map[string]any)
	if resumo["populacao_milhoes"] != 212.56 {
		t.Fatalf("populacao_milhoes = %v", resumo["populacao_milhoes"])
	}
	if resumo["desigualdade_gini"] != "53.4 (2019)" {
		t.Fatalf("desigualdade_gini = %v", resumo["desigualdade_gini"])
	}

	if result.Payload["rotas_consultadas"] != 2 {
		t.Fatalf("rotas_consultadas = %v", result.Payload["rotas_consultadas"])
	}
}

func TestCountryLookupBasicOnly(t *testing.T) {
	var economicHits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/alpha/") {
			economicHits++
		}
		w.Write([]byte(brazilBody))
	}))
	defer server.Close()

	tool := newCountryLookupForTest(server)

	result, err := tool.Execute(context.Background(), map[string]any{
		"nome_pais":                "Brazil",
		"incluir_dados_economicos": false,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if economicHits != 0 {
		t.Fatalf("economic route hit %d times, want 0", economicHits)
	}
	if result.Payload["rotas_consultadas"] != 1 {
		t.Fatalf("rotas_consultadas = %v", result.Payload["rotas_consultadas"])
	}
}

func TestCountryLookupFallsBackToAlphaRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/name/"):
			http.NotFound(w, r)
		case strings.HasPrefix(r.URL.Path, "/alpha/"):
			w.Write([]byte(brazilBody))
		}
	}))
	defer server.Close()

	tool := newCountryLookupForTest(server)

	result, err := tool.Execute(context.Background(), map[string]any{
		"nome_pais":                "BR",
		"incluir_dados_economicos": false,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	dados := result.Payload["dados_pais"].(map[string]any)
	basico := dados["informacoes_basicas"].(map[string]any)
	if basico["nome_comum"] != "Brazil" {
		t.Fatalf("nome_comum = %v", basico["nome_comum"])
	}
}

func TestCountryLookupUnknownCountry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	tool := newCountryLookupForTest(server)

	_, err := tool.Execute(context.Background(), map[string]any{"nome_pais": "Atlantis"})
	if err == nil {
		t.Fatal("expected an error for an unknown country")
	}
}

func TestCountryLookupCachesResults(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(brazilBody))
	}))
	defer server.Close()

	tool := newCountryLookupForTest(server)

	args := map[string]any{"nome_pais": "Brazil", "incluir_dados_economicos": false}
	for i := 0; i < 3; i++ {
		if _, err := tool.Execute(context.Background(), args); err != nil {
			t.Fatalf("Execute #%d: %v", i+1, err)
		}
	}
	if hits != 1 {
		t.Fatalf("upstream hit %d times, want 1", hits)
	}
}

func TestCountryLookupValidate(t *testing.T) {
	tool := NewCountryLookup()

	if tool.Validate(map[string]any{"nome_pais": "B"}) {
		t.Fatal("Validate accepted a single-character name")
	}
	if !tool.Validate(map[string]any{"nome_pais": "BR"}) {
		t.Fatal("Validate rejected an ISO code")
	}
}
