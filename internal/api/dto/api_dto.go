package dto

// ================== /api 统一入口 DTO ==================

// APIRequest /api 入口请求
// 兼容 {action, data: {...}} 和 {action, ...} 两种提交格式，
// GET 请求时参数全部来自查询串。
type APIRequest struct {
	Action string         `json:"action" form:"action"`
	Data   *ActionPayload `json:"data"`
	ActionPayload
}

// Payload 返回生效的参数载荷
func (r *APIRequest) Payload() *ActionPayload {
	if r.Data != nil {
		return r.Data
	}
	return &r.ActionPayload
}

// ActionPayload 各 action 的参数合集
type ActionPayload struct {
	DeviceID  string              `json:"device_id" form:"device_id"`
	Username  string              `json:"username" form:"username"`
	UserID    string              `json:"user_id" form:"user_id"`
	SharerID  string              `json:"sharer_id" form:"sharer_id"`
	ShareCode string              `json:"share_code" form:"share_code"`
	ShareType string              `json:"share_type" form:"share_type"`
	Items     []BlindboxItemInput `json:"items" form:"-"`
}
