package models

type Stats struct {
	Users          int `db:"users"`
	UpcomingEvents int `db:"upcoming_events"`
	OpenHomeworks  int `db:"open_homeworks"`
}
