package booking

// Outcome: итог попытки записи на мероприятие.
type Outcome int

const (
	Registered Outcome = iota
	AlreadyRegistered
	Full
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Registered:
		return "registered"
	case AlreadyRegistered:
		return "already_registered"
	case Full:
		return "full"
	case NotFound:
		return "not_found"
	}
	return "unknown"
}

// Policy решает, можно ли добавить ещё одну запись.
// ZeroUnlimited: квота 0 означает "без ограничений", иначе мест нет.
type Policy struct {
	ZeroUnlimited bool
}

// Decide: already означает, что пользователь уже записан; taken показывает, сколько мест его группы
// (платники / остальные) уже занято; quota задаёт лимит этой группы.
func (p Policy) Decide(already bool, taken, quota int) Outcome {
	if already {
		return AlreadyRegistered
	}
	if quota <= 0 {
		if p.ZeroUnlimited {
			return Registered
		}
		return Full
	}
	if taken >= quota {
		return Full
	}
	return Registered
}
