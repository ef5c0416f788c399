package teammatch

import (
	"strings"
	"unicode"
)

// Pacote puro de comparação de nomes de times. Provedores e editores divergem
// em pontuação, abreviações e traduções, então a busca de fixtures depende de
// um score fuzzy em vez de igualdade exata.

// stopTokens são tokens genéricos de nome de clube que não carregam identidade
var stopTokens = map[string]struct{}{
	"fc": {}, "cf": {}, "afc": {}, "sc": {}, "ac": {}, "as": {}, "rc": {},
	"cd": {}, "ud": {}, "fk": {}, "sk": {}, "bk": {}, "if": {},
	"club": {}, "clube": {}, "sport": {}, "sporting": {}, "united": {},
	"de": {}, "la": {}, "le": {}, "les": {}, "el": {}, "al": {},
}

// aliasGroups agrupa apelidos e grafias traduzidas do mesmo clube.
// Token overlap sozinho não cobre "PSG" vs "Paris Saint-Germain".
var aliasGroups = [][]string{
	{"psg", "paris saint germain", "paris sg", "paris"},
	{"man city", "manchester city"},
	{"man utd", "manchester utd", "man", "manchester"},
	{"spurs", "tottenham", "tottenham hotspur"},
	{"wolves", "wolverhampton", "wolverhampton wanderers"},
	{"barca", "barcelona", "barcelone"},
	{"atletico", "atletico madrid", "atleti"},
	{"juve", "juventus", "juventus turin"},
	{"inter", "inter milan", "internazionale"},
	{"napoli", "naples"},
	{"bayern", "bayern munich", "bayern munchen", "bayern munique"},
	{"bvb", "dortmund", "borussia dortmund"},
	{"om", "marseille", "olympique marseille"},
	{"ol", "lyon", "olympique lyonnais"},
	{"benfica", "sl benfica", "benfica lisbonne"},
}

// os aliases são armazenados já na forma normalizada

var aliasIndex map[string]int

func init() {
	aliasIndex = make(map[string]int)
	for i, group := range aliasGroups {
		for _, name := range group {
			aliasIndex[name] = i
		}
	}
}

// Normalize reduz um nome de time à forma canônica usada na comparação:
// minúsculas, pontuação vira espaço, tokens genéricos removidos
func Normalize(name string) string {
	lowered := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		default:
			return ' '
		}
	}, name)

	fields := strings.Fields(lowered)
	kept := fields[:0]
	for _, tok := range fields {
		if _, skip := stopTokens[tok]; skip {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// Similarity devolve um score em [0,1] entre dois nomes de time.
// Ordem de decisão: igualdade pós-normalização, tabela de aliases,
// sobreposição de tokens (substring nos dois sentidos, tokens len>2)
func Similarity(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}

	if ga, ok := aliasIndex[na]; ok {
		if gb, ok2 := aliasIndex[nb]; ok2 && ga == gb {
			return 0.9
		}
	}

	tokensA := strings.Fields(na)
	tokensB := strings.Fields(nb)
	qualifying, matched := 0, 0
	for _, ta := range tokensA {
		if len(ta) <= 2 {
			continue
		}
		qualifying++
		for _, tb := range tokensB {
			if strings.Contains(tb, ta) || strings.Contains(ta, tb) {
				matched++
				break
			}
		}
	}
	if qualifying == 0 {
		return 0
	}
	return float64(matched) / float64(qualifying)
}
