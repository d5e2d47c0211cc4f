package langdetect

import (
	"fmt"
	"regexp"
	"strings"
)

// Range is an inclusive code point range.
type Range struct {
	Lo, Hi rune
}

func (r Range) contains(c rune) bool {
	return c >= r.Lo && c <= r.Hi
}

func (r Range) overlaps(o Range) bool {
	return r.Lo <= o.Hi && o.Lo <= r.Hi
}

// Refinement relabels a script match when any rune falls in Ranges.
type Refinement struct {
	Language string
	Ranges   []Range
}

// ScriptRule is a definitive match on a non-Latin script. The first rule
// whose ranges contain any rune of the text wins.
type ScriptRule struct {
	Language string
	Ranges   []Range
	Refine   *Refinement
}

func (r ScriptRule) matches(text string) bool {
	return anyRuneIn(text, r.Ranges)
}

// resolve returns the language for a matched text, applying the refinement.
func (r ScriptRule) resolve(text string) string {
	if r.Refine != nil && anyRuneIn(text, r.Refine.Ranges) {
		return r.Refine.Language
	}
	return r.Language
}

// ScoredRule combines diacritic density and stopword frequency for a
// Latin-script language.
type ScoredRule struct {
	Language   string
	Diacritics *regexp.Regexp
	Words      *regexp.Regexp
}

// FallbackRule matches when Diacritics is present and, if Words is set, at
// least one stopword is present too.
type FallbackRule struct {
	Language   string
	Diacritics *regexp.Regexp
	Words      *regexp.Regexp
}

func (r FallbackRule) matches(text string) bool {
	if !r.Diacritics.MatchString(text) {
		return false
	}
	return r.Words == nil || r.Words.MatchString(text)
}

// RuleSet is the ordered rule table. Tiers are evaluated script, scored,
// fallback; declaration order breaks ties inside a tier.
type RuleSet struct {
	Scripts   []ScriptRule
	Scored    []ScoredRule
	Fallbacks []FallbackRule
}

// Validate rejects tables whose script ranges overlap, since the script tier
// returns on first match and overlapping scripts would make order decisive.
func (rs *RuleSet) Validate() error {
	for i, a := range rs.Scripts {
		if a.Language == "" || len(a.Ranges) == 0 {
			return fmt.Errorf("script rule %d: language and ranges are required", i)
		}
		for _, b := range rs.Scripts[i+1:] {
			for _, ra := range a.Ranges {
				for _, rb := range b.Ranges {
					if ra.overlaps(rb) {
						return fmt.Errorf("script ranges overlap: %s %U-%U and %s %U-%U",
							a.Language, ra.Lo, ra.Hi, b.Language, rb.Lo, rb.Hi)
					}
				}
			}
		}
	}
	for i, r := range rs.Scored {
		if r.Language == "" || r.Diacritics == nil || r.Words == nil {
			return fmt.Errorf("scored rule %d: language, diacritics and words are required", i)
		}
	}
	for i, r := range rs.Fallbacks {
		if r.Language == "" || r.Diacritics == nil {
			return fmt.Errorf("fallback rule %d: language and diacritics are required", i)
		}
	}
	return nil
}

func anyRuneIn(text string, ranges []Range) bool {
	for _, c := range text {
		for _, r := range ranges {
			if r.contains(c) {
				return true
			}
		}
	}
	return false
}

// charClass compiles a case-insensitive character class.
func charClass(chars string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)[` + chars + `]`)
}

// wordList compiles a case-insensitive alternation bounded by ASCII word
// boundaries. Multi-word entries match literally.
func wordList(words ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(words, "|") + `)\b`)
}

var scandinavianDiacritics = charClass("æøå")

// DefaultRules returns the built-in rule table.
func DefaultRules() *RuleSet {
	return &RuleSet{
		Scripts: []ScriptRule{
			{Language: "Japanese", Ranges: []Range{{0x3040, 0x309F}, {0x30A0, 0x30FF}}},
			{Language: "Korean", Ranges: []Range{{0xAC00, 0xD7AF}, {0x1100, 0x11FF}, {0x3130, 0x318F}}},
			{
				Language: "Chinese (Simplified)",
				Ranges:   []Range{{0x4E00, 0x9FFF}, {0x3400, 0x4DBF}, {0xF900, 0xFAFF}},
				Refine: &Refinement{
					Language: "Chinese (Traditional)",
					Ranges:   []Range{{0x9FA0, 0x9FFF}, {0xF900, 0xFAFF}},
				},
			},
			{Language: "Arabic", Ranges: []Range{{0x0600, 0x06FF}, {0x0750, 0x077F}}},
			{Language: "Russian", Ranges: []Range{{0x0400, 0x04FF}}},
			{Language: "Greek", Ranges: []Range{{0x0370, 0x03FF}}},
			{Language: "Thai", Ranges: []Range{{0x0E00, 0x0E7F}}},
			{Language: "Hindi", Ranges: []Range{{0x0900, 0x097F}}},
			{Language: "Hebrew", Ranges: []Range{{0x0590, 0x05FF}}},
			{Language: "Armenian", Ranges: []Range{{0x0530, 0x058F}}},
		},
		Scored: []ScoredRule{
			{
				Language:   "Spanish",
				Diacritics: charClass("ñáéíóúü"),
				Words: wordList("el", "la", "de", "que", "y", "es", "en", "un", "se", "no", "te", "lo", "por", "con",
					"su", "para", "como", "pero", "muy", "todo", "si", "ya", "voy", "más", "día", "qué", "cómo",
					"dónde", "cuándo", "por qué", "gracias", "hola", "adiós"),
			},
			{
				Language:   "French",
				Diacritics: charClass("àâèéêëîïôöùûüÿç"),
				Words: wordList("le", "de", "et", "à", "un", "il", "être", "en", "avoir", "que", "pour", "dans", "ce",
					"son", "une", "sur", "avec", "ne", "se", "pas", "tout", "plus", "par", "grand", "me", "même",
					"faire", "ça", "très", "où", "quand", "comment", "pourquoi", "merci", "bonjour", "au revoir"),
			},
			{
				Language:   "German",
				Diacritics: charClass("äöüß"),
				Words: wordList("der", "die", "und", "in", "den", "von", "zu", "das", "mit", "sich", "des", "auf", "für",
					"ist", "im", "dem", "nicht", "ein", "eine", "als", "auch", "es", "an", "werden", "aus", "er",
					"hat", "dass", "sie", "nach", "wird", "bei", "einer", "um", "am", "sind", "noch", "wie",
					"einem", "über", "einen", "so", "zum", "war", "haben", "nur", "oder", "aber", "vor", "zur",
					"bis", "unter", "während", "warum", "danke", "hallo", "auf wiedersehen"),
			},
			{
				Language:   "Italian",
				Diacritics: charClass("àèìòù"),
				Words: wordList("il", "di", "che", "e", "la", "per", "un", "in", "con", "del", "da", "al", "le", "su",
					"come", "più", "lo", "ma", "se", "nel", "ha", "nella", "suo", "si", "tutto", "anche", "loro",
					"vita", "fare", "tanto", "essere", "quando", "molto", "ci", "già", "solo", "sempre", "mio",
					"così", "ora", "dove", "cosa", "perché", "grazie", "ciao", "arrivederci"),
			},
			{
				Language:   "Portuguese",
				Diacritics: charClass("ãõâêôáéíóúàç"),
				Words: wordList("o", "de", "a", "do", "da", "em", "um", "para", "com", "não", "uma", "os", "no", "se",
					"na", "por", "mais", "as", "dos", "como", "mas", "foi", "ao", "ele", "das", "tem", "à", "seu",
					"sua", "ou", "ser", "quando", "muito", "há", "nos", "já", "está", "eu", "também", "só",
					"pelo", "pela", "até", "isso", "ela", "entre", "era", "depois", "sem", "mesmo", "aos", "ter",
					"seus", "suas", "numa", "pelos", "pelas", "esse", "esses", "essa", "essas", "meu", "minha",
					"meus", "minhas", "obrigado", "olá", "tchau"),
			},
			{
				Language:   "Dutch",
				Diacritics: charClass("ëïáéíóúà"),
				Words: wordList("de", "van", "het", "een", "en", "in", "op", "dat", "te", "voor", "met", "als", "zijn",
					"er", "maar", "om", "door", "over", "ze", "uit", "aan", "bij", "na", "tot", "tegen", "onder",
					"tussen", "zonder", "binnen", "buiten", "tijdens", "volgens", "zoals", "omdat", "hoewel",
					"toen", "waar", "wanneer", "waarom", "hoe", "wat", "wie", "welke", "dank je", "hallo", "dag"),
			},
		},
		Fallbacks: []FallbackRule{
			{
				Language:   "Norwegian",
				Diacritics: scandinavianDiacritics,
				Words: wordList("og", "i", "på", "til", "for", "med", "av", "er", "det", "ikke", "en", "et", "som",
					"har", "var", "den", "de", "at", "fra", "eller", "når", "hvor", "hvorfor", "takk", "hei", "ha det"),
			},
			{
				Language:   "Swedish",
				Diacritics: scandinavianDiacritics,
				Words: wordList("och", "i", "på", "till", "för", "med", "av", "är", "det", "inte", "en", "ett", "som",
					"har", "var", "den", "de", "att", "från", "eller", "när", "varför", "tack", "hej", "hej då"),
			},
			{
				Language:   "Danish",
				Diacritics: scandinavianDiacritics,
				Words: wordList("og", "i", "på", "til", "for", "med", "af", "er", "det", "ikke", "en", "et", "som",
					"har", "var", "den", "de", "at", "fra", "eller", "når", "hvor", "hvorfor", "tak", "hej", "farvel"),
			},
			{Language: "Polish", Diacritics: charClass("ąćęłńóśźż")},
			{Language: "Czech", Diacritics: charClass("čďěňřšťůž")},
			{Language: "Slovak", Diacritics: charClass("áäčďéíĺľňóôŕšťúýž")},
			{Language: "Romanian", Diacritics: charClass("ăâîșț")},
			{Language: "Hungarian", Diacritics: charClass("áéíóöőúüű")},
			{
				Language:   "Finnish",
				Diacritics: charClass("äöå"),
				Words: wordList("ja", "on", "ei", "se", "että", "kun", "niin", "kuin", "jos", "tai", "mutta", "vain",
					"kaikki", "hän", "minä", "sinä", "me", "te", "he", "kiitos", "hei", "näkemiin"),
			},
			{Language: "Turkish", Diacritics: charClass("çğıöşü")},
		},
	}
}
