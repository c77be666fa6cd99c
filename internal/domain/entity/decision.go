package entity

// Verdict — бинарный итог решающего механизма.
type Verdict string

const (
	VerdictSpray Verdict = "spray" // опрыскать
	VerdictSkip  Verdict = "skip"  // пропустить
)

// Decision — решение по одному снимку. Живёт только в рамках запроса:
// в базу попадают лишь поля, сложенные в SprayLog.
type Decision struct {
	Verdict    Verdict // spray или skip
	Reason     string  // текстовое обоснование
	AmountML   float64 // доза пестицида, 0 при skip
	DurationMS int     // длительность работы насоса, 0 при skip
}

// Sprays сообщает, требует ли решение физического опрыскивания.
func (d Decision) Sprays() bool {
	return d.Verdict == VerdictSpray
}
