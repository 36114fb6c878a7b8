// Package api 處理 HTTP 請求路由。
//
// 路由分為公開與需要 JWT 的兩組；handlers 子包負責把請求轉成服務調用，
// 並將結果與服務錯誤統一包成 {success, data | error} 的回應格式。
package api
