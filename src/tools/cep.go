package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	json "github.com/alpkeskin/gotoon"

	assistant "github.com/Protocol-Lattice/go-assistant"
	"github.com/Protocol-Lattice/go-assistant/src/cache"
	"github.com/Protocol-Lattice/go-assistant/src/concurrent"
)

const (
	defaultViaCEPBaseURL    = "https://viacep.com.br/ws"
	defaultCEPAbertoBaseURL = "https://www.cepaberto.com/api/v3/cep"

	lookupUserAgent = "go-assistant/1.0"
)

// CEPLookup resolves a Brazilian postal code against ViaCEP (official data)
// and optionally CEP Aberto (coordinates). Base URLs and the HTTP client are
// injectable for tests; successful lookups are cached.
type CEPLookup struct {
	assistant.ToolBase

	ViaCEPBaseURL    string
	CEPAbertoBaseURL string
	Client           *http.Client

	cache *cache.LRUCache
}

// NewCEPLookup builds the tool with production endpoints and a one-hour
// result cache.
func NewCEPLookup() *CEPLookup {
	return &CEPLookup{
		ViaCEPBaseURL:    defaultViaCEPBaseURL,
		CEPAbertoBaseURL: defaultCEPAbertoBaseURL,
		Client:           &http.Client{Timeout: 8 * time.Second},
		cache:            cache.NewLRUCache(256, time.Hour),
	}
}

func (c *CEPLookup) Spec() assistant.ToolSpec {
	return assistant.ToolSpec{
		Name:        "consulta_endereco_por_cep",
		Description: "Consulta endereço completo por CEP brasileiro usando múltiplas APIs (ViaCEP + CEP Aberto)",
		Params: []assistant.Param{
			{Name: "cep", Type: "string", Description: "CEP brasileiro, com ou sem formatação", Required: true},
			{Name: "usar_multiplas_apis", Type: "boolean", Description: "Consultar também o CEP Aberto", Default: true},
		},
	}
}

func (c *CEPLookup) Validate(args map[string]any) bool {
	cep, ok := assistant.TextArg(args, "cep")
	if !ok {
		return false
	}
	return isValidCEP(cleanCEP(cep))
}

func (c *CEPLookup) Execute(ctx context.Context, args map[string]any) (assistant.ToolResult, error) {
	rawCEP, _ := assistant.TextArg(args, "cep")
	multiAPI := assistant.BoolArg(args, "usar_multiplas_apis", true)

	cep := cleanCEP(rawCEP)
	formatted := cep[:5] + "-" + cep[5:]

	endereco, apisUsed, err := c.lookup(ctx, cep, formatted, multiAPI)
	if err != nil {
		return assistant.ToolResult{}, err
	}

	return assistant.NewResponse("consulta_endereco_por_cep").
		WithInput("cep_original", rawCEP).
		WithInput("cep_formatado", formatted).
		WithInput("apis_utilizadas", apisUsed).
		WithResult("endereco", endereco).
		WithResult("total_apis_consultadas", len(apisUsed)).
		WithResult("apis_responderam", apisUsed).
		WithSummaryf("CEP %s encontrado: %v", formatted, endereco["endereco_completo"]).
		Build()
}

func (c *CEPLookup) lookup(ctx context.Context, cep, formatted string, multiAPI bool) (map[string]any, []string, error) {
	cacheKey := fmt.Sprintf("cep:%s:%t", cep, multiAPI)
	if c.cache != nil {
		if hit, ok := c.cache.Get(cacheKey); ok {
			if cached, ok := hit.(cepCacheEntry); ok {
				return cached.Address, cached.APIs, nil
			}
		}
	}

	var (
		oficial map[string]any
		extra   map[string]any
		err     error
	)
	if multiAPI {
		// The two upstreams are independent; query them in one batch. The
		// CEP Aberto leg is best effort, missing coordinates never fail the
		// lookup.
		sources := []string{"viacep", "cepaberto"}
		batchErr := concurrent.ParallelForEach(ctx, sources, func(source string) error {
			if source == "viacep" {
				oficial, err = c.viaCEP(ctx, cep)
			} else {
				extra, _ = c.cepAberto(ctx, cep)
			}
			return nil
		}, len(sources))
		if batchErr != nil && err == nil {
			err = batchErr
		}
	} else {
		oficial, err = c.viaCEP(ctx, cep)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("erro na consulta às APIs de CEP: %w", err)
	}
	if oficial == nil {
		return nil, nil, fmt.Errorf("CEP %s não encontrado em nenhuma API", formatted)
	}
	apisUsed := []string{"viacep"}
	if extra != nil {
		apisUsed = append(apisUsed, "cepaberto")
	}

	endereco := combineCEPData(formatted, oficial, extra, apisUsed)
	if c.cache != nil {
		c.cache.Set(cacheKey, cepCacheEntry{Address: endereco, APIs: apisUsed})
	}
	return endereco, apisUsed, nil
}

type cepCacheEntry struct {
	Address map[string]any
	APIs    []string
}

func (c *CEPLookup) viaCEP(ctx context.Context, cep string) (map[string]any, error) {
	url := fmt.Sprintf("%s/%s/json/", strings.TrimRight(c.ViaCEPBaseURL, "/"), cep)
	var data struct {
		Erro        bool   `json:"erro"`
		CEP         string `json:"cep"`
		Logradouro  string `json:"logradouro"`
		Complemento string `json:"complemento"`
		Bairro      string `json:"bairro"`
		Localidade  string `json:"localidade"`
		UF          string `json:"uf"`
		IBGE        string `json:"ibge"`
		GIA         string `json:"gia"`
		DDD         string `json:"ddd"`
		SIAFI       string `json:"siafi"`
	}
	if err := c.getJSON(ctx, url, nil, &data); err != nil {
		return nil, err
	}
	if data.Erro {
		return nil, nil // ViaCEP signals unknown CEPs in-band
	}
	return map[string]any{
		"fonte":       "ViaCEP",
		"cep":         data.CEP,
		"logradouro":  data.Logradouro,
		"complemento": data.Complemento,
		"bairro":      data.Bairro,
		"cidade":      data.Localidade,
		"uf":          data.UF,
		"ibge":        data.IBGE,
		"gia":         data.GIA,
		"ddd":         data.DDD,
		"siafi":       data.SIAFI,
	}, nil
}

func (c *CEPLookup) cepAberto(ctx context.Context, cep string) (map[string]any, error) {
	url := fmt.Sprintf("%s?cep=%s", c.CEPAbertoBaseURL, cep)
	headers := map[string]string{}
	if token := os.Getenv("CEPABERTO_TOKEN"); token != "" {
		headers["Authorization"] = "Token token=" + token
	}
	var data struct {
		CEP       string  `json:"cep"`
		Address   string  `json:"address"`
		District  string  `json:"district"`
		Latitude  string  `json:"latitude"`
		Longitude string  `json:"longitude"`
		Altitude  float64 `json:"altitude"`
		City      struct {
			Name string `json:"name"`
		} `json:"city"`
		State struct {
			Code string `json:"code"`
		} `json:"state"`
	}
	if err := c.getJSON(ctx, url, headers, &data); err != nil {
		return nil, err
	}
	return map[string]any{
		"fonte":     "CEP Aberto",
		"cep":       data.CEP,
		"latitude":  data.Latitude,
		"longitude": data.Longitude,
		"altitude":  data.Altitude,
		"cidade":    data.City.Name,
		"uf":        data.State.Code,
	}, nil
}

func (c *CEPLookup) getJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", lookupUserAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s respondeu %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func combineCEPData(formatted string, oficial, extra map[string]any, apisUsed []string) map[string]any {
	endereco := map[string]any{
		"cep":              formatted,
		"logradouro":       oficial["logradouro"],
		"complemento":      oficial["complemento"],
		"bairro":           oficial["bairro"],
		"cidade":           oficial["cidade"],
		"uf":               oficial["uf"],
		"ddd":              oficial["ddd"],
		"coordenadas":      map[string]any{},
		"codigos_oficiais": map[string]any{},
		"apis_consultadas": apisUsed,
	}

	var partes []string
	for _, campo := range []string{"logradouro", "bairro", "cidade", "uf"} {
		if v, _ := oficial[campo].(string); v != "" {
			partes = append(partes, v)
		}
	}
	endereco["endereco_completo"] = strings.Join(partes, ", ")

	if extra != nil {
		lat, _ := extra["latitude"].(string)
		lon, _ := extra["longitude"].(string)
		if lat != "" && lon != "" {
			endereco["coordenadas"] = map[string]any{
				"latitude":  lat,
				"longitude": lon,
				"altitude":  extra["altitude"],
			}
		}
	}

	codigos := endereco["codigos_oficiais"].(map[string]any)
	if ibge, _ := oficial["ibge"].(string); ibge != "" {
		codigos["ibge"] = ibge
	}
	if siafi, _ := oficial["siafi"].(string); siafi != "" {
		codigos["siafi"] = siafi
	}
	return endereco
}

func cleanCEP(cep string) string {
	replacer := strings.NewReplacer("-", "", ".", "", " ", "")
	return replacer.Replace(cep)
}

func isValidCEP(cep string) bool {
	if len(cep) != 8 {
		return false
	}
	for _, r := range cep {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
