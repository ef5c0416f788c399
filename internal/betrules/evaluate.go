package betrules

type Verdict int

const (
	VerdictLost Verdict = iota
	VerdictWon
)

func (v Verdict) String() string {
	if v == VerdictWon {
		return "WON"
	}
	return "LOST"
}

// Evaluate aplica a semântica ao placar final do fixture. Função pura:
// homeGoals/awayGoals seguem a orientação do provedor, teamAHome indica se o
// primeiro time do pronostic é o mandante no fixture.
func Evaluate(s BetSemantic, homeGoals, awayGoals int, teamAHome bool) Verdict {
	goalsA, goalsB := homeGoals, awayGoals
	if !teamAHome {
		goalsA, goalsB = awayGoals, homeGoals
	}
	total := homeGoals + awayGoals

	switch s.Kind {
	case KindMatchWinner:
		named, opp := sideGoals(s.Side, goalsA, goalsB)
		return verdict(named > opp)

	case KindDoubleChance:
		if s.AnyTeam {
			// "12": qualquer vencedor, empate perde
			return verdict(homeGoals != awayGoals)
		}
		// time nomeado ou empate
		named, opp := sideGoals(s.Side, goalsA, goalsB)
		return verdict(named >= opp)

	case KindDraw:
		return verdict(homeGoals == awayGoals)

	case KindBothTeamsScore:
		both := homeGoals > 0 && awayGoals > 0
		return verdict(both == s.Yes)

	case KindTotalGoals:
		if s.Over {
			return verdict(float64(total) > s.Threshold)
		}
		// total exatamente na linha conta a favor do under
		return verdict(float64(total) <= s.Threshold)

	case KindExactScore:
		return verdict(goalsA == s.GoalsA && goalsB == s.GoalsB)
	}

	return VerdictLost
}

func sideGoals(side Side, goalsA, goalsB int) (named, opp int) {
	if side == SideB {
		return goalsB, goalsA
	}
	return goalsA, goalsB
}

func verdict(won bool) Verdict {
	if won {
		return VerdictWon
	}
	return VerdictLost
}
