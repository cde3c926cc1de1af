package domain

import "time"

// Flash 是一条一次性提示消息，在下一次页面渲染时展示并被消费。
type Flash struct {
	Category string `json:"category"` // success / info / danger / error
	Message  string `json:"message"`
}

// Session 是服务端保存的会话状态。UserID 为 0 表示未登录。
type Session struct {
	ID        string    `json:"-"`
	UserID    uint      `json:"user_id,omitempty"`
	Flashes   []Flash   `json:"flashes,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	dirty bool
}

// IsAuthenticated 判断会话是否绑定了用户。
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UserID != 0
}

// Login 将会话绑定到指定用户。
func (s *Session) Login(userID uint) {
	s.UserID = userID
	s.dirty = true
}

// Clear 清除全部会话状态 (用户和未读消息)。
func (s *Session) Clear() {
	s.UserID = 0
	s.Flashes = nil
	s.dirty = true
}

// AddFlash 追加一条提示消息。
func (s *Session) AddFlash(category, message string) {
	s.Flashes = append(s.Flashes, Flash{Category: category, Message: message})
	s.dirty = true
}

// PopFlashes 取出并清空所有提示消息。
func (s *Session) PopFlashes() []Flash {
	flashes := s.Flashes
	if len(flashes) > 0 {
		s.Flashes = nil
		s.dirty = true
	}
	return flashes
}

// Dirty 报告会话自加载以来是否被修改。
func (s *Session) Dirty() bool { return s.dirty }

// MarkClean 在会话被持久化后调用。
func (s *Session) MarkClean() { s.dirty = false }

// MarkDirty 强制下一次请求结束时保存会话。
func (s *Session) MarkDirty() { s.dirty = true }
