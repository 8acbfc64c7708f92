package core

// Subscription 订阅句柄，Unsubscribe 按令牌精确移除本条订阅
type Subscription struct {
	token    Token
	event    string
	wildcard bool
	off      func(Token) bool
}

// NewSubscription 由 Bus 实现创建
func NewSubscription(token Token, event string, wildcard bool, off func(Token) bool) *Subscription {
	return &Subscription{token: token, event: event, wildcard: wildcard, off: off}
}

// Token 订阅令牌
func (s *Subscription) Token() Token { return s.token }

// Event 订阅的事件名（通配订阅为空）
func (s *Subscription) Event() string { return s.event }

// Wildcard 是否通配订阅
func (s *Subscription) Wildcard() bool { return s.wildcard }

// Unsubscribe 取消订阅，已移除时返回 false
func (s *Subscription) Unsubscribe() bool {
	if s == nil || s.off == nil {
		return false
	}
	return s.off(s.token)
}
