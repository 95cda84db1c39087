package interview

const preFilledHint = "Extraímos essa informação do seu site. Confirme ou corrija."

//nolint:gochecknoglobals // author-time constants
var yesNoOptions = []Option{
	{Value: "sim", Label: "Sim"},
	{Value: "nao", Label: "Não"},
}

// catalog is the ordered core question list. Use Questions for a copy.
//
//nolint:gochecknoglobals // author-time constants
var catalog = []Question{
	{
		ID:            "core_1",
		Text:          "Sua empresa cobra juros sobre pagamentos em atraso?",
		Kind:          KindSelect,
		Phase:         QuestionPhaseCore,
		Options:       yesNoOptions,
		Required:      true,
		SupportsAudio: true,
	},
	{
		ID:            "core_2",
		Text:          "Sua empresa cobra multa por atraso?",
		Kind:          KindSelect,
		Phase:         QuestionPhaseCore,
		Options:       yesNoOptions,
		Required:      true,
		SupportsAudio: true,
	},
	{
		ID:            "core_3",
		Text:          "O agente pode oferecer desconto para quitação da dívida?",
		Kind:          KindSelect,
		Phase:         QuestionPhaseCore,
		Options:       yesNoOptions,
		Required:      true,
		SupportsAudio: true,
	},
	{
		ID:            "core_4",
		Text:          "Sua empresa permite parcelamento de dívidas?",
		Kind:          KindSelect,
		Phase:         QuestionPhaseCore,
		Options:       yesNoOptions,
		Required:      true,
		SupportsAudio: true,
	},
	{
		ID:            "core_5",
		Text:          "O que sua empresa vende ou oferece?",
		Kind:          KindText,
		Phase:         QuestionPhaseCore,
		Required:      true,
		DeepDive:      true,
		SupportsAudio: true,
		ContextHint:   "Descreva produtos ou serviços, modelo de cobrança e ticket médio.",
	},
	{
		ID:            "core_6",
		Text:          "Como funciona o processo de cobrança hoje?",
		Kind:          KindText,
		Phase:         QuestionPhaseCore,
		Required:      true,
		DeepDive:      true,
		SupportsAudio: true,
		ContextHint:   "Quanto mais detalhes você fornecer, melhor o agente vai replicar seu processo.",
	},
	{
		ID:            "core_7",
		Text:          "Quer dar um nome ao seu agente de cobrança?",
		Kind:          KindText,
		Phase:         QuestionPhaseCore,
		SupportsAudio: true,
		ContextHint:   "Exemplos: Sofia, Carlos, Ana. Se preferir, pode pular.",
	},
}

// preFillFields maps question IDs to the enrichment field that can answer them.
//
//nolint:gochecknoglobals // author-time constants
var preFillFields = map[string]string{
	"core_5": "products_description",
	"core_6": "collection_relevant_context",
}

// Questions returns a fresh copy of the core catalog in order.
func Questions() []Question {
	out := make([]Question, len(catalog))
	for i := range catalog {
		out[i] = catalog[i].clone()
	}
	return out
}

// CoreTotal is the number of core questions.
func CoreTotal() int {
	return len(catalog)
}

// applyPreFill fills the suggestion and hint from enrichment when the mapped
// field is non-empty.
func applyPreFill(q Question, enrichment map[string]string) Question {
	field, ok := preFillFields[q.ID]
	if !ok {
		return q
	}
	value := enrichment[field]
	if value == "" {
		return q
	}
	q.PreFilledValue = value
	q.ContextHint = preFilledHint
	return q
}
