package tools

import (
	"context"
	"regexp"
	"strings"

	assistant "github.com/Protocol-Lattice/go-assistant"
)

// CharCounter counts occurrences of a specific character in a text.
type CharCounter struct {
	assistant.ToolBase
}

func (CharCounter) Spec() assistant.ToolSpec {
	return assistant.ToolSpec{
		Name:        "contador_caracteres",
		Description: "Conta quantas vezes um caracter específico aparece em um texto",
		Params: []assistant.Param{
			{Name: "texto", Type: "string", Description: "Texto onde buscar", Required: true},
			{Name: "caracter", Type: "string", Description: "Caracter a ser contado", Required: true},
		},
	}
}

func (CharCounter) Validate(args map[string]any) bool {
	_, okText := assistant.TextArg(args, "texto")
	_, okChar := assistant.TextArg(args, "caracter")
	return okText && okChar
}

func (CharCounter) Execute(_ context.Context, args map[string]any) (assistant.ToolResult, error) {
	texto, _ := assistant.TextArg(args, "texto")
	caracter, _ := assistant.TextArg(args, "caracter")

	exact := strings.Count(texto, caracter)
	upper := strings.Count(texto, strings.ToUpper(caracter))
	lower := strings.Count(texto, strings.ToLower(caracter))

	return assistant.NewResponse("contagem_caracteres").
		WithInput("palavra_analisada", texto).
		WithInput("caracter_procurado", caracter).
		WithResult("resultados", map[string]any{
			"exato":                  exact,
			"maiusculo":              upper,
			"minusculo":              lower,
			"total_case_insensitive": upper + lower,
		}).
		WithSummaryf("O caractere '%s' aparece %d vez(es) de forma exata no texto '%s'", caracter, exact, texto).
		Build()
}

// TextAnalyzer runs one of several text analyses selected by tipo_analise.
type TextAnalyzer struct {
	assistant.ToolBase
}

var analysisTypes = []string{
	"contar_palavras", "maiuscula", "maiúscula",
	"minuscula", "minúscula", "converter_minusculas", "caracteres_total",
}

func (TextAnalyzer) Spec() assistant.ToolSpec {
	return assistant.ToolSpec{
		Name:        "analisar_texto",
		Description: "Analisa um texto com diferentes tipos de operações",
		Params: []assistant.Param{
			{Name: "texto", Type: "string", Description: "Texto a ser analisado", Required: true},
			{
				Name:        "tipo_analise",
				Type:        "string",
				Description: "Tipo de análise a ser realizada",
				Default:     "contar_palavras",
				Enum:        analysisTypes,
			},
		},
	}
}

func (TextAnalyzer) Validate(args map[string]any) bool {
	if _, ok := assistant.TextArg(args, "texto"); !ok {
		return false
	}
	if _, present := args["tipo_analise"]; !present {
		return true
	}
	tipo, _ := assistant.TextArg(args, "tipo_analise")
	return assistant.ValidOperation(tipo, analysisTypes)
}

func (TextAnalyzer) Execute(_ context.Context, args map[string]any) (assistant.ToolResult, error) {
	texto, _ := assistant.TextArg(args, "texto")
	tipo, ok := assistant.TextArg(args, "tipo_analise")
	if !ok {
		tipo = "contar_palavras"
	}

	switch tipo {
	case "contar_palavras":
		palavras := len(strings.Fields(texto))
		return assistant.NewResponse("contagem_palavras").
			WithInput("texto_analisado", texto).
			WithResult("total_palavras", palavras).
			WithSummaryf("O texto '%s' tem %d palavra(s)", texto, palavras).
			Build()
	case "maiuscula", "maiúscula":
		return assistant.NewResponse("conversao_maiuscula").
			WithInput("texto_original", texto).
			WithResult("texto_convertido", strings.ToUpper(texto)).
			WithSummary("Texto convertido para maiúscula").
			Build()
	case "minuscula", "minúscula", "converter_minusculas":
		return assistant.NewResponse("conversao_minuscula").
			WithInput("texto_original", texto).
			WithResult("texto_convertido", strings.ToLower(texto)).
			WithSummary("Texto convertido para minúscula").
			Build()
	default: // caracteres_total
		total := len([]rune(texto))
		semEspaco := len([]rune(strings.ReplaceAll(texto, " ", "")))
		return assistant.NewResponse("contagem_caracteres_total").
			WithInput("texto_analisado", texto).
			WithResult("total_caracteres", total).
			WithResult("caracteres_sem_espaco", semEspaco).
			WithResult("espacos", total-semEspaco).
			WithSummaryf("O texto tem %d caracteres total (%d sem espaços)", total, semEspaco).
			Build()
	}
}

// SentimentAnalyzer scores a text against fixed positive and negative word
// lists. Deliberately naive: keyword presence, no stemming.
type SentimentAnalyzer struct {
	assistant.ToolBase
}

var (
	positiveWords = []string{
		"bom", "ótimo", "excelente", "maravilhoso", "feliz",
		"alegre", "amor", "sucesso", "positivo",
	}
	negativeWords = []string{
		"ruim", "péssimo", "terrível", "horrível", "triste",
		"raiva", "ódio", "fracasso", "negativo",
	}
)

func (SentimentAnalyzer) Spec() assistant.ToolSpec {
	return assistant.ToolSpec{
		Name:        "analisar_sentimento",
		Description: "Analisa o sentimento básico de um texto",
		Params: []assistant.Param{
			{Name: "texto", Type: "string", Description: "Texto a ser analisado", Required: true},
		},
	}
}

func (SentimentAnalyzer) Validate(args map[string]any) bool {
	_, ok := assistant.TextArg(args, "texto")
	return ok
}

func (SentimentAnalyzer) Execute(_ context.Context, args map[string]any) (assistant.ToolResult, error) {
	texto, _ := assistant.TextArg(args, "texto")
	lower := strings.ToLower(texto)

	var positive, negative int
	for _, palavra := range positiveWords {
		if strings.Contains(lower, palavra) {
			positive++
		}
	}
	for _, palavra := range negativeWords {
		if strings.Contains(lower, palavra) {
			negative++
		}
	}

	sentimento := "neutro"
	switch {
	case positive > negative:
		sentimento = "positivo"
	case negative > positive:
		sentimento = "negativo"
	}

	return assistant.NewResponse("analise_sentimento").
		WithInput("texto_analisado", texto).
		WithResult("sentimento", sentimento).
		WithResult("score_positivo", positive).
		WithResult("score_negativo", negative).
		WithSummaryf("O texto tem sentimento %s (positivo: %d, negativo: %d)", sentimento, positive, negative).
		Build()
}

// EmailExtractor pulls email addresses out of free text.
type EmailExtractor struct {
	assistant.ToolBase
}

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

func (EmailExtractor) Spec() assistant.ToolSpec {
	return assistant.ToolSpec{
		Name:        "extrair_emails",
		Description: "Extrai endereços de email de um texto",
		Params: []assistant.Param{
			{Name: "texto", Type: "string", Description: "Texto onde buscar emails", Required: true},
		},
	}
}

func (EmailExtractor) Validate(args map[string]any) bool {
	_, ok := assistant.TextArg(args, "texto")
	return ok
}

func (EmailExtractor) Execute(_ context.Context, args map[string]any) (assistant.ToolResult, error) {
	texto, _ := assistant.TextArg(args, "texto")
	emails := emailPattern.FindAllString(texto, -1)
	if emails == nil {
		emails = []string{}
	}

	return assistant.NewResponse("extracao_emails").
		WithInput("texto_analisado", texto).
		WithResult("emails_encontrados", emails).
		WithResult("total_emails", len(emails)).
		WithSummaryf("Foram encontrados %d email(s) no texto", len(emails)).
		Build()
}
