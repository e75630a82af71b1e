package models

// AuthResponse 登录与注册响应
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// MessageResponse 通用消息响应
type MessageResponse struct {
	Message string `json:"message"`
}

// DashboardStats 仪表盘统计
type DashboardStats struct {
	Total      int64            `json:"total"`
	Completed  int64            `json:"completed"`
	Pending    int64            `json:"pending"`
	ByCategory map[string]int64 `json:"byCategory"`
}

// DashboardResponse 仪表盘响应
type DashboardResponse struct {
	Stats       DashboardStats `json:"stats"`
	RecentTodos []Todo         `json:"recentTodos"`
}
