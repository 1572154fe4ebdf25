package session

import (
	"bytes"
	"context"
	"encoding/json"
	"time"
)

// Kind: активный мастер. В один момент времени в чате идёт не больше одного.
type Kind string

const (
	KindNone           Kind = ""
	KindCreateEvent    Kind = "create_event"
	KindCreateHomework Kind = "create_homework"
	KindPayers         Kind = "payers"
	KindRegistration   Kind = "registration"
	KindHomeworkAnswer Kind = "homework_answer"
)

// Step: шаг внутри мастера.
type Step string

const (
	StepNone Step = ""

	// создание мероприятия
	StepEventName        Step = "event_name"
	StepEventUsersCount  Step = "event_users_count"
	StepEventPayersCount Step = "event_payers_count"
	StepEventDateStart   Step = "event_date_start"
	StepEventPlace       Step = "event_place"

	// создание ДЗ
	StepHomeworkContent   Step = "homework_content"
	StepHomeworkAnswerEnd Step = "homework_answer_end"

	// платники
	StepPayerIDs Step = "payer_ids"

	// регистрация
	StepFio   Step = "fio"
	StepPhone Step = "phone"

	// ответ на ДЗ
	StepAnswer Step = "answer"
)

// PayersMode: мастер платников добавляет или снимает флаг.
type PayersMode string

const (
	PayersAdd    PayersMode = "add"
	PayersRemove PayersMode = "remove"
)

// Draft: собранные на предыдущих шагах данные.
type Draft struct {
	Name        string     `json:"name,omitempty"`
	UsersCount  *int       `json:"users_count,omitempty"`
	PayersCount *int       `json:"payers_count,omitempty"`
	DateStart   *time.Time `json:"date_start,omitempty"`

	Text   string `json:"text,omitempty"`
	FileID string `json:"file_id,omitempty"`

	PayersMode PayersMode `json:"payers_mode,omitempty"`

	HomeworkID int64 `json:"homework_id,omitempty"`
}

type State struct {
	Kind  Kind  `json:"kind,omitempty"`
	Step  Step  `json:"step,omitempty"`
	Draft Draft `json:"draft"`
}

// Active: идёт ли какой-нибудь мастер.
func (s State) Active() bool { return s.Kind != KindNone && s.Step != StepNone }

func (s State) In(kind Kind) bool { return s.Active() && s.Kind == kind }

// Start запускает мастер kind с шага step. Предыдущий мастер и черновик сбрасываются.
func (s *State) Start(kind Kind, step Step) {
	*s = State{Kind: kind, Step: step}
}

func (s *State) Clear() { *s = State{} }

// Marshal / Unmarshal: формат хранения в БД.
func Marshal(s State) ([]byte, error) { return json.Marshal(s) }

func Unmarshal(data []byte) (State, error) {
	var s State
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	err := json.Unmarshal(data, &s)
	return s, err
}

// Equal сравнивает состояния по сериализованному виду.
func Equal(a, b State) bool {
	ab, err1 := Marshal(a)
	bb, err2 := Marshal(b)
	return err1 == nil && err2 == nil && bytes.Equal(ab, bb)
}

// Store: где живут состояния чатов между апдейтами.
type Store interface {
	Load(ctx context.Context, chatID int64) (State, error)
	Save(ctx context.Context, chatID int64, s State) error
}
