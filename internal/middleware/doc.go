// Package middleware 提供了 HTTP 請求處理的中間件。
//
// 目前只有身份驗證：解析 Bearer JWT（或 WebSocket 使用的 ?token=），
// 並把用戶 ID 放進 gin.Context 的 "userID"。
package middleware
