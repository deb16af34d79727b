package tools

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/alpkeskin/gotoon"

	assistant "github.com/Protocol-Lattice/go-assistant"
	"github.com/Protocol-Lattice/go-assistant/src/cache"
)

const defaultCountriesBaseURL = "https://restcountries.com/v3.1"

// CountryLookup fetches country information from the REST Countries API:
// one route for basic data, a second optional route for currencies and
// economic indicators.
type CountryLookup struct {
	assistant.ToolBase

	BaseURL string
	Client  *http.Client

	cache *cache.LRUCache
}

func NewCountryLookup() *CountryLookup {
	return &CountryLookup{
		BaseURL: defaultCountriesBaseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
		cache:   cache.NewLRUCache(256, 12*time.Hour),
	}
}

func (c *CountryLookup) Spec() assistant.ToolSpec {
	return assistant.ToolSpec{
		Name:        "consulta_informacoes_pais",
		Description: "Consulta informações detalhadas de países (dados básicos + econômicos) usando REST Countries API",
		Params: []assistant.Param{
			{Name: "nome_pais", Type: "string", Description: "Nome do país em português, inglês ou código ISO", Required: true},
			{Name: "incluir_dados_economicos", Type: "boolean", Description: "Buscar também moedas e indicadores econômicos", Default: true},
		},
	}
}

func (c *CountryLookup) Validate(args map[string]any) bool {
	nome, ok := assistant.TextArg(args, "nome_pais")
	return ok && len([]rune(nome)) >= 2
}

func (c *CountryLookup) Execute(ctx context.Context, args map[string]any) (assistant.ToolResult, error) {
	nome, _ := assistant.TextArg(args, "nome_pais")
	withEconomy := assistant.BoolArg(args, "incluir_dados_economicos", true)

	cacheKey := fmt.Sprintf("pais:%s:%t", strings.ToLower(nome), withEconomy)
	if c.cache != nil {
		if hit, ok := c.cache.Get(cacheKey); ok {
			if result, ok := hit.(assistant.ToolResult); ok {
				return result, nil
			}
		}
	}

	basico, err := c.basicData(ctx, nome)
	if err != nil {
		return assistant.ToolResult{}, fmt.Errorf("erro na requisição à API: %w", err)
	}
	if basico == nil {
		return assistant.ToolResult{}, fmt.Errorf("país '%s' não encontrado", nome)
	}

	routes := 1
	var economico map[string]any
	if withEconomy {
		if codigo, _ := basico["codigo_iso2"].(string); codigo != "" && codigo != "N/A" {
			// Best effort: economic data is an enrichment, not a requirement.
			economico, _ = c.economicData(ctx, codigo)
			routes = 2
		}
	}

	dados := map[string]any{
		"informacoes_basicas":    basico,
		"informacoes_economicas": map[string]any{},
		"resumo_executivo":       executiveSummary(basico, economico),
	}
	if economico != nil {
		dados["informacoes_economicas"] = economico
	}

	result, err := assistant.NewResponse("consulta_informacoes_pais").
		WithInput("pais_consultado", nome).
		WithInput("incluiu_dados_economicos", withEconomy).
		WithInput("codigo_pais", basico["codigo_iso2"]).
		WithResult("dados_pais", dados).
		WithResult("rotas_consultadas", routes).
		WithResult("api_utilizada", "REST Countries v3.1").
		WithSummaryf("Informações de %v coletadas com sucesso", basico["nome_oficial"]).
		Build()
	if err != nil {
		return assistant.ToolResult{}, err
	}
	if c.cache != nil {
		c.cache.Set(cacheKey, result)
	}
	return result, nil
}

type countryRecord struct {
	Name struct {
		Common   string `json:"common"`
		Official string `json:"official"`
	} `json:"name"`
	CCA2       string            `json:"cca2"`
	CCA3       string            `json:"cca3"`
	Capital    []string          `json:"capital"`
	Region     string            `json:"region"`
	Subregion  string            `json:"subregion"`
	Population float64           `json:"population"`
	Area       float64           `json:"area"`
	Languages  map[string]string `json:"languages"`
	Timezones  []string          `json:"timezones"`
	IDD        struct {
		Root     string   `json:"root"`
		Suffixes []string `json:"suffixes"`
	} `json:"idd"`
	Independent bool `json:"independent"`
	UNMember    bool `json:"unMember"`
	Flags       struct {
		PNG string `json:"png"`
	} `json:"flags"`
	Maps struct {
		GoogleMaps string `json:"googleMaps"`
	} `json:"maps"`
	Currencies map[string]struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"currencies"`
	Gini map[string]float64 `json:"gini"`
}

// basicData tries the name route first, then the alpha-code route, so "Brasil",
// "Brazil" and "BR" all resolve.
func (c *CountryLookup) basicData(ctx context.Context, nome string) (map[string]any, error) {
	routes := []string{
		fmt.Sprintf("%s/name/%s?fullText=true", c.BaseURL, url.PathEscape(nome)),
		fmt.Sprintf("%s/name/%s", c.BaseURL, url.PathEscape(nome)),
		fmt.Sprintf("%s/alpha/%s", c.BaseURL, url.PathEscape(nome)),
	}

	var lastErr error
	for _, route := range routes {
		var records []countryRecord
		if err := c.getJSON(ctx, route, &records); err != nil {
			lastErr = err
			continue
		}
		if len(records) > 0 {
			return processBasicData(records[0]), nil
		}
	}
	return nil, lastErr
}

func (c *CountryLookup) economicData(ctx context.Context, codigo string) (map[string]any, error) {
	route := fmt.Sprintf("%s/alpha/%s?fields=currencies,gini", c.BaseURL, url.PathEscape(codigo))

	// The fields filter makes this route answer with a single object.
	var record countryRecord
	if err := c.getJSON(ctx, route, &record); err != nil {
		var records []countryRecord
		if err := c.getJSON(ctx, route, &records); err != nil || len(records) == 0 {
			return nil, err
		}
		record = records[0]
	}

	moedas := map[string]any{}
	for code, info := range record.Currencies {
		moedas[code] = map[string]any{"nome": info.Name, "simbolo": info.Symbol}
	}

	indicadores := map[string]any{}
	if len(record.Gini) > 0 {
		var latest string
		for year := range record.Gini {
			if year > latest {
				latest = year
			}
		}
		indicadores["gini"] = map[string]any{
			"valor":     record.Gini[latest],
			"ano":       latest,
			"descricao": "Índice GINI (desigualdade de renda)",
		}
	}

	return map[string]any{
		"moedas":                 moedas,
		"indicadores_economicos": indicadores,
	}, nil
}

func (c *CountryLookup) getJSON(ctx context.Context, route string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, route, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", lookupUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s respondeu %s", route, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func processBasicData(raw countryRecord) map[string]any {
	capital := "N/A"
	if len(raw.Capital) > 0 {
		capital = raw.Capital[0]
	}
	fuso := "N/A"
	if len(raw.Timezones) > 0 {
		fuso = raw.Timezones[0]
	}
	telefone := raw.IDD.Root
	if len(raw.IDD.Suffixes) > 0 {
		telefone += raw.IDD.Suffixes[0]
	}
	idiomas := make([]string, 0, len(raw.Languages))
	for _, idioma := range raw.Languages {
		idiomas = append(idiomas, idioma)
	}

	densidade := 0.0
	if raw.Population > 0 && raw.Area > 0 {
		densidade = math.Round(raw.Population/raw.Area*100) / 100
	}

	return map[string]any{
		"nome_comum":              orNA(raw.Name.Common),
		"nome_oficial":            orNA(raw.Name.Official),
		"codigo_iso2":             orNA(raw.CCA2),
		"codigo_iso3":             orNA(raw.CCA3),
		"capital":                 capital,
		"regiao":                  orNA(raw.Region),
		"sub_regiao":              orNA(raw.Subregion),
		"populacao":               raw.Population,
		"area_km2":                raw.Area,
		"idiomas":                 idiomas,
		"fuso_horario":            fuso,
		"codigo_telefone":         telefone,
		"independente":            raw.Independent,
		"membro_onu":              raw.UNMember,
		"bandeira":                raw.Flags.PNG,
		"mapa":                    raw.Maps.GoogleMaps,
		"densidade_populacional":  densidade,
	}
}

func executiveSummary(basico, economico map[string]any) map[string]any {
	populacao, _ := basico["populacao"].(float64)
	area, _ := basico["area_km2"].(float64)

	resumo := map[string]any{
		"pais":              basico["nome_oficial"],
		"codigo":            basico["codigo_iso2"],
		"capital":           basico["capital"],
		"populacao_milhoes": math.Round(populacao/1_000_000*100) / 100,
		"area_mil_km2":      math.Round(area/1_000*100) / 100,
		"densidade_hab_km2": basico["densidade_populacional"],
		"regiao":            fmt.Sprintf("%v - %v", basico["regiao"], basico["sub_regiao"]),
		"independente":      basico["independente"],
		"membro_onu":        basico["membro_onu"],
	}

	if idiomas, ok := basico["idiomas"].([]string); ok {
		if len(idiomas) > 3 {
			idiomas = idiomas[:3]
		}
		resumo["idiomas_principais"] = idiomas
	}

	if economico != nil {
		if moedas, ok := economico["moedas"].(map[string]any); ok && len(moedas) > 0 {
			codes := make([]string, 0, len(moedas))
			for code := range moedas {
				codes = append(codes, code)
			}
			if len(codes) > 2 {
				codes = codes[:2]
			}
			resumo["moedas"] = codes
		}
		if indicadores, ok := economico["indicadores_economicos"].(map[string]any); ok {
			if gini, ok := indicadores["gini"].(map[string]any); ok {
				resumo["desigualdade_gini"] = fmt.Sprintf("%v (%v)", gini["valor"], gini["ano"])
			}
		}
	}
	return resumo
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
