package domain

// Lexicon holds the domain word lists the purifier and ranker depend on.
// Defaults cover the Indonesian operational vocabulary of tuition queries;
// deployments can override them from a YAML file (see internal/config).
type Lexicon struct {
	// StopWords are operational/comparison terms stripped from extracted
	// entities before they are used as literal search queries.
	StopWords []string `yaml:"stop_words"`
	// DegreeTokens identify degree levels inside an entity or a document.
	DegreeTokens []string `yaml:"degree_tokens"`
	// TariffKeywords mark rows that are actual fee tables rather than
	// prose mentioning a program.
	TariffKeywords []string `yaml:"tariff_keywords"`
}

func DefaultLexicon() Lexicon {
	return Lexicon{
		StopWords: []string{
			"biaya", "tarif", "harga", "kuliah", "mana", "mahal", "murah",
			"lebih", "total", "bandingkan", "dan", "atau", "vs", "antara",
			"untuk", "berapa", "ukt",
		},
		DegreeTokens: []string{
			"s1", "s2", "s3", "magister", "sarjana", "profesi",
		},
		TariffKeywords: []string{
			"kelompok", "tarif_wni", "biaya_ukt", "ukt", "tarif",
		},
	}
}

// Normalize fills empty lists with defaults so a partial override file
// cannot disable a whole heuristic.
func (l Lexicon) Normalize() Lexicon {
	def := DefaultLexicon()
	out := l
	if len(out.StopWords) == 0 {
		out.StopWords = def.StopWords
	}
	if len(out.DegreeTokens) == 0 {
		out.DegreeTokens = def.DegreeTokens
	}
	if len(out.TariffKeywords) == 0 {
		out.TariffKeywords = def.TariffKeywords
	}
	return out
}
