package fsmutil

import "testing"

func TestPending(t *testing.T) {
	const chat = int64(42)
	if !SetPending(chat, "export:users") {
		t.Fatal("первый SetPending должен пройти")
	}
	if SetPending(chat, "export:roster:1") {
		t.Fatal("второй SetPending в том же чате должен быть отклонён")
	}
	ClearPending(chat, "export:roster:1") // чужой ключ не снимает флаг
	if SetPending(chat, "export:users") {
		t.Fatal("флаг не должен сниматься чужим ключом")
	}
	ClearPending(chat, "export:users")
	if !SetPending(chat, "export:users") {
		t.Fatal("после ClearPending флаг должен сниматься")
	}
	ClearPending(chat, "export:users")
}

func TestIsCancelText(t *testing.T) {
	for _, s := range []string{"Отмена", " /cancel ", "CANCEL"} {
		if !IsCancelText(s) {
			t.Errorf("%q должно считаться отменой", s)
		}
	}
	if IsCancelText("Мероприятия") {
		t.Error("обычный текст не отмена")
	}
}
