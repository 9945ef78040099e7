package session

import "time"

// Session is the authenticated identity of one visitor. It is either fully
// populated or absent; there is no partially filled session.
type Session struct {
	VisitorUID   string
	Token        string
	UserUID      string
	Username     string
	Email        string
	Role         string
	CreatedAt    time.Time
	LastModified *time.Time
}

func (s Session) IsComplete() bool {
	return s.Token != "" && s.UserUID != "" && s.Username != ""
}
