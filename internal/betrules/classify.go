package betrules

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnrecognized indica uma descrição de aposta fora das famílias suportadas.
// Nunca vira veredicto: o pronostic fica pendente para revisão editorial.
var ErrUnrecognized = errors.New("unrecognized bet description")

type Kind int

const (
	KindMatchWinner Kind = iota + 1
	KindDoubleChance
	KindDraw
	KindBothTeamsScore
	KindTotalGoals
	KindExactScore
)

type Side int

const (
	SideA Side = iota + 1 // primeiro time do pronostic
	SideB                 // segundo time
)

// BetSemantic é a interpretação estruturada de uma descrição livre de aposta.
// Derivada a cada avaliação, nunca persistida; só o veredicto resultante é salvo.
type BetSemantic struct {
	Kind Kind

	Side    Side // time nomeado (match winner, double chance 1X/X2)
	AnyTeam bool // double chance "12": qualquer vencedor, empate perde

	Yes bool // both teams to score: sim/não

	Over      bool    // total de gols: over/under
	Threshold float64 // linha do total de gols

	GoalsA int // exact score, na ordem dos times do pronostic
	GoalsB int
}

var (
	decimalRe    = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	exactScoreRe = regexp.MustCompile(`(\d+)\s*-\s*(\d+)`)
)

// Classify interpreta a descrição livre contra os dois times do pronostic.
// As famílias são testadas em ordem de precedência; a primeira que casar vence:
// double chance > empate > vitória > BTTS > over/under > placar exato.
func Classify(desc, teamA, teamB string) (BetSemantic, error) {
	d := strings.ToLower(strings.TrimSpace(desc))
	if d == "" {
		return BetSemantic{}, ErrUnrecognized
	}

	if isDoubleChance(d) {
		return classifyDoubleChance(d, teamA, teamB)
	}

	if hasDrawMarker(d) {
		return BetSemantic{Kind: KindDraw}, nil
	}

	if side, ok := teamVictory(d, teamA, teamB); ok {
		return BetSemantic{Kind: KindMatchWinner, Side: side}, nil
	}

	if isBothTeamsScore(d) {
		no := hasToken(d, "no") || hasToken(d, "non")
		return BetSemantic{Kind: KindBothTeamsScore, Yes: !no}, nil
	}

	if over, under := strings.Contains(d, "over") || strings.Contains(d, "plus de"),
		strings.Contains(d, "under") || strings.Contains(d, "moins de"); over || under {
		return BetSemantic{Kind: KindTotalGoals, Over: over, Threshold: firstDecimal(d, 2.5)}, nil
	}

	if m := exactScoreRe.FindStringSubmatch(d); m != nil {
		ga, _ := strconv.Atoi(m[1])
		gb, _ := strconv.Atoi(m[2])
		return BetSemantic{Kind: KindExactScore, GoalsA: ga, GoalsB: gb}, nil
	}

	return BetSemantic{}, ErrUnrecognized
}

func isDoubleChance(d string) bool {
	return strings.Contains(d, "double chance") ||
		strings.Contains(d, " or ") || strings.Contains(d, " ou ") ||
		hasToken(d, "1x") || hasToken(d, "x2") || hasToken(d, "12")
}

// classifyDoubleChance desambigua 1X/X2/12 a partir do time citado na descrição
// e da presença de um marcador de empate
func classifyDoubleChance(d, teamA, teamB string) (BetSemantic, error) {
	namedA := mentionsTeam(d, teamA)
	namedB := mentionsTeam(d, teamB)
	draw := hasDrawMarker(d)

	switch {
	case hasToken(d, "12"), namedA && namedB && !draw:
		return BetSemantic{Kind: KindDoubleChance, AnyTeam: true}, nil
	case hasToken(d, "1x"):
		return BetSemantic{Kind: KindDoubleChance, Side: SideA}, nil
	case hasToken(d, "x2"):
		return BetSemantic{Kind: KindDoubleChance, Side: SideB}, nil
	case namedA:
		return BetSemantic{Kind: KindDoubleChance, Side: SideA}, nil
	case namedB:
		return BetSemantic{Kind: KindDoubleChance, Side: SideB}, nil
	}
	return BetSemantic{}, ErrUnrecognized
}

func hasDrawMarker(d string) bool {
	return strings.Contains(d, "draw") || strings.Contains(d, "match nul") ||
		hasToken(d, "nul") || hasToken(d, "x")
}

func teamVictory(d, teamA, teamB string) (Side, bool) {
	victory := strings.Contains(d, "victoire") || strings.Contains(d, "victory") ||
		strings.Contains(d, "win") || strings.Contains(d, "gagne") ||
		strings.Contains(d, "vainqueur")
	if victory {
		if mentionsTeam(d, teamA) {
			return SideA, true
		}
		if mentionsTeam(d, teamB) {
			return SideB, true
		}
	}
	if hasToken(d, "1") && !hasToken(d, "2") {
		return SideA, true
	}
	if hasToken(d, "2") && !hasToken(d, "1") {
		return SideB, true
	}
	return 0, false
}

func isBothTeamsScore(d string) bool {
	return strings.Contains(d, "both teams to score") || strings.Contains(d, "btts") ||
		strings.Contains(d, "equipes marquent") || strings.Contains(d, "équipes marquent")
}

// mentionsTeam confere se a primeira ou última palavra do nome do time
// aparece na descrição; nomes editoriais raramente são citados por inteiro
func mentionsTeam(d, team string) bool {
	fields := strings.Fields(strings.ToLower(team))
	if len(fields) == 0 {
		return false
	}
	for _, w := range []string{fields[0], fields[len(fields)-1]} {
		if len(w) > 2 && strings.Contains(d, w) {
			return true
		}
	}
	return false
}

// hasToken casa um token isolado por espaços; evita falso positivo de "x"
// dentro de "1x" ou "2" dentro de "2.5"
func hasToken(d, tok string) bool {
	for _, f := range strings.Fields(d) {
		f = strings.Trim(f, ".,;:!?()")
		if f == tok {
			return true
		}
	}
	return false
}

func firstDecimal(d string, def float64) float64 {
	m := decimalRe.FindString(d)
	if m == "" {
		return def
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return def
	}
	return v
}
