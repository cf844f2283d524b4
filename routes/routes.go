package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/craftwl/whitelist-server/controllers"
	"github.com/craftwl/whitelist-server/middleware"
)

func SetupRoutes(r *gin.Engine) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)

	auth := r.Group("/auth")
	{
		auth.POST("/login", middleware.RateLimitAuth(), controllers.Login)
		auth.POST("/register", middleware.RateLimitAuth(), controllers.Register)
		auth.POST("/logout", middleware.AuthJWT(), controllers.Logout)
		auth.GET("/check", controllers.CheckLogin)
		auth.POST("/findPassword", middleware.RateLimitAuth(), controllers.RequestPasswordReset)
		auth.PUT("/findPassword", controllers.ResetPassword)
		auth.POST("/reqActivation", middleware.AuthJWT(), controllers.RequestActivation)
		auth.PUT("/activation", controllers.Activate)
	}

	user := r.Group("/user")
	user.Use(middleware.AuthJWT())
	{
		user.GET("/getInfo", controllers.GetUserInfo)
	}

	query := r.Group("/query")
	query.Use(middleware.AuthJWT())
	{
		query.GET("/response", controllers.MyResponses)
	}

	survey := r.Group("/survey")
	survey.Use(middleware.AuthJWT())
	{
		survey.GET("/get_slots", controllers.GetSlots)
		survey.GET("/survey/:id", controllers.GetSurvey)
		survey.POST("/check_survey", controllers.CheckSurvey)
		survey.POST("/start_survey", controllers.StartSurvey)
		survey.POST("/complete_survey", controllers.CompleteSurvey)
	}

	guarantee := r.Group("/guarantee")
	guarantee.Use(middleware.AuthJWT())
	{
		guarantee.POST("/request", controllers.RequestGuarantee)
		guarantee.POST("/action", controllers.GuaranteeAction)
		guarantee.GET("/query", controllers.QueryGuarantees)
		guarantee.GET("/query_all", middleware.RequireAdmin(), controllers.QueryAllGuarantees)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AuthJWT(), middleware.RequireAdmin())
	{
		admin.POST("/addSurvey", controllers.AddSurvey)
		admin.POST("/modSurvey", controllers.ModSurvey)
		admin.POST("/delSurvey", controllers.DelSurvey)
		admin.GET("/surveys", controllers.GetSurveys)
		admin.GET("/survey/:id", controllers.AdminGetSurvey)

		admin.POST("/addQuestion", controllers.AddQuestion)
		admin.POST("/editQuestion", controllers.EditQuestion)
		admin.POST("/delQuestion", controllers.DelQuestion)
		admin.POST("/sortSurveyQuestions", controllers.SortSurveyQuestions)

		admin.POST("/add_slot", controllers.AddSlot)
		admin.POST("/set_slot", controllers.SetSlot)
		admin.POST("/del_slot", controllers.DelSlot)

		admin.GET("/responses", controllers.GetResponses)
		admin.GET("/detail/:id", controllers.GetResponseDetail)
		admin.POST("/reviewed", controllers.ReviewResponse)
		admin.POST("/detail_score", controllers.SetResponseScore)

		admin.GET("/whitelist", controllers.AdminWhitelist)

		admin.GET("/users", controllers.GetUsers)
		admin.GET("/user", controllers.GetUser)
		admin.POST("/user", controllers.AddUser)
		admin.PUT("/user", controllers.SetUser)
		admin.DELETE("/user", controllers.DelUser)

		admin.GET("/config", controllers.GetConfig)
		admin.POST("/config", controllers.SetConfig)
	}

	api := r.Group("/api")
	api.Use(middleware.RequireAPIToken())
	{
		api.GET("/whitelist/:player", controllers.LookupWhitelist)
	}
}
