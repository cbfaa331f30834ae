package update

import "strings"

const (
	DefaultChatUser     = "local"
	DefaultHistoryLimit = 100
)

type ChatConfig struct {
	UserID               string
	DesktopNotifications bool
	HistoryLimit         int
	// HistoryPath is where typed lines are kept between sessions; empty
	// keeps history in memory only.
	HistoryPath string
}

func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		UserID:       DefaultChatUser,
		HistoryLimit: DefaultHistoryLimit,
	}
}

func (c ChatConfig) normalized() ChatConfig {
	c.UserID = strings.TrimSpace(c.UserID)
	if c.UserID == "" {
		c.UserID = DefaultChatUser
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	c.HistoryPath = strings.TrimSpace(c.HistoryPath)
	return c
}
