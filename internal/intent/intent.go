// Package intent разбирает callback-данные inline-кнопок вида "Action:arg".
package intent

import (
	"strconv"
	"strings"
)

type Action string

const (
	EventsSetPage         Action = "EventsSetPage"
	EventsManage          Action = "EventsManage"
	DeleteEvent           Action = "DeleteEvent"
	ShowUsersOnEvent      Action = "ShowUsersOnEvent"
	RegisterToEvent       Action = "RegisterToEvent"
	DeleteRegisterToEvent Action = "DeleteRegisterToEvent"
	CreateEvent           Action = "CreateEvent"

	CreateHomeWork     Action = "CreateHomeWork"
	HomeWorksSetPage   Action = "HomeWorksSetPage"
	HomeWorksManage    Action = "HomeWorksManage"
	LinkTypeHomeWork   Action = "LinkTypeHomeWork"
	FileTypeHomeWork   Action = "FileTypeHomeWork"
	DeleteHomeWork     Action = "DeleteHomeWork"
	ShowHomeWork       Action = "ShowHomeWork"
	SendAnswerHomeWork Action = "SendAnswerHomeWork"

	MakePayers   Action = "MakePayers"
	DeletePayers Action = "DeletePayers"

	Cancel Action = "Cancel"
)

// known: действия, которые принимает Parse.
var known = map[Action]bool{
	EventsSetPage: true, EventsManage: true, DeleteEvent: true, ShowUsersOnEvent: true,
	RegisterToEvent: true, DeleteRegisterToEvent: true, CreateEvent: true,
	CreateHomeWork: true, HomeWorksSetPage: true, HomeWorksManage: true,
	LinkTypeHomeWork: true, FileTypeHomeWork: true, DeleteHomeWork: true,
	ShowHomeWork: true, SendAnswerHomeWork: true,
	MakePayers: true, DeletePayers: true, Cancel: true,
}

// Intent: разобранное нажатие кнопки. Arg: id сущности или номер страницы.
type Intent struct {
	Action Action
	Arg    int64
}

// Parse разбирает "Action:arg". Для действий без аргумента допустима форма "Action".
// Неизвестное действие или нечисловой аргумент дают ok=false.
func Parse(data string) (Intent, bool) {
	name, rawArg, hasArg := strings.Cut(data, ":")
	a := Action(name)
	if !known[a] {
		return Intent{}, false
	}
	if !hasArg || rawArg == "" {
		return Intent{Action: a}, true
	}
	n, err := strconv.ParseInt(rawArg, 10, 64)
	if err != nil {
		return Intent{}, false
	}
	return Intent{Action: a, Arg: n}, true
}

func (i Intent) String() string {
	return string(i.Action) + ":" + strconv.FormatInt(i.Arg, 10)
}

// Data: callback-данные для кнопки.
func Data(a Action, arg int64) string {
	return Intent{Action: a, Arg: arg}.String()
}
