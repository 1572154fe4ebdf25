package wizard

import (
	"regexp"
	"strings"
)

// Input: то, что пользователь прислал одним сообщением.
type Input struct {
	UserID   int64
	Text     string
	FileID   string
	FileKind FileKind
	Links    []string // ссылки из сообщения
	Contact  *Contact
}

// FileKind: чем прислан файл. Задание принимается только документом.
type FileKind string

const (
	FileDocument FileKind = "document"
	FilePhoto    FileKind = "photo"
	FileVideo    FileKind = "video"
	FileAudio    FileKind = "audio"
	FileVoice    FileKind = "voice"
)

type Contact struct {
	UserID int64
	Phone  string
}

// Empty: в сообщении нет ничего, что может принять мастер.
func (in Input) Empty() bool {
	return strings.TrimSpace(in.Text) == "" && in.FileID == "" && len(in.Links) == 0 && in.Contact == nil
}

var phoneMasks = []*regexp.Regexp{
	regexp.MustCompile(`^\+79\d{9}$`),
	regexp.MustCompile(`^89\d{9}$`),
}

// ValidPhone проверяет номер по маскам +79XXXXXXXXX и 89XXXXXXXXX.
func ValidPhone(s string) bool {
	for _, re := range phoneMasks {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// contactPhone: телефон из карточки контакта; Telegram присылает его без "+".
func contactPhone(p string) string {
	p = strings.TrimSpace(p)
	if p != "" && !strings.HasPrefix(p, "+") && !strings.HasPrefix(p, "8") {
		p = "+" + p
	}
	return p
}
