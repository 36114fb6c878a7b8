package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"debate_room/internal/api/handlers"
	"debate_room/internal/middleware"
	"debate_room/internal/service"
)

func SetupRoutes(r *gin.Engine, services *service.Services, hub *service.RoomHub) {
	handlers.RegisterValidators()

	// 初始化 handlers
	authHandler := handlers.NewAuthHandler(services.User)
	roomHandler := handlers.NewRoomHandler(services.Room, services.Motion, services.Feedback)
	speechHandler := handlers.NewSpeechHandler(services.Speech)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Room)

	// API 路由群組
	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.Response{
			Error: &handlers.ErrorInfo{Code: string(service.KindNotFound), Message: "Route not found"},
		})
	})

	// 公開路由
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.GET("/format", roomHandler.GetFormat)

		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	// 需要驗證的路由
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware())
	{
		profile := authorized.Group("/profile")
		{
			profile.GET("", authHandler.GetProfile)
			profile.PUT("", authHandler.UpdateProfile)
			profile.GET("/history", authHandler.History)
		}

		rooms := authorized.Group("/rooms")
		{
			rooms.GET("", roomHandler.ListRooms)   // 大廳
			rooms.POST("", roomHandler.CreateRoom) // 創建房間
			rooms.POST("/join", roomHandler.JoinRoom)
			rooms.GET("/code/:code", roomHandler.GetRoomByCode)
			rooms.GET("/:id", roomHandler.GetRoom)

			// 房間生命週期
			rooms.POST("/:id/leave", roomHandler.LeaveRoom)
			rooms.POST("/:id/ready", roomHandler.SetReady)
			rooms.POST("/:id/motion", roomHandler.GenerateMotion)
			rooms.POST("/:id/start", roomHandler.StartDebate)
			rooms.POST("/:id/advance", roomHandler.AdvanceSpeaker)
			rooms.POST("/:id/cancel", roomHandler.CancelRoom)
			rooms.GET("/:id/feedback", roomHandler.ListFeedback)
			rooms.GET("/:id/arguments", roomHandler.ListArguments) // 論點心智圖

			// 發言與質詢
			rooms.GET("/:id/speeches", speechHandler.ListSpeeches)
			rooms.POST("/:id/speeches", speechHandler.StartSpeech)
			rooms.POST("/:id/pois", speechHandler.OfferPOI)

			rooms.GET("/:id/ws", wsHandler.HandleWebSocket) // WebSocket 連接點
		}

		speeches := authorized.Group("/speeches")
		{
			speeches.POST("/:id/end", speechHandler.EndSpeech)
			speeches.POST("/:id/transcribe", speechHandler.Transcribe)
		}
	}
}
