package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/craftwl/whitelist-server/config"
	"github.com/craftwl/whitelist-server/middleware"
	"github.com/craftwl/whitelist-server/models"
	"github.com/craftwl/whitelist-server/utils"
)

// setupTestDB wires a fresh in-memory database into the package globals and
// loads default settings, mirroring what main does at boot.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// an in-memory sqlite exists per connection, so the pool must stay at one
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	config.DB = db
	if err := config.InitSettings(db); err != nil {
		t.Fatalf("failed to init settings: %v", err)
	}
	return db
}

// newTestRouter mirrors the production route table. Routes are registered
// here rather than through the routes package, which imports this one.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()

	auth := r.Group("/auth")
	{
		auth.POST("/login", middleware.RateLimitAuth(), Login)
		auth.POST("/register", middleware.RateLimitAuth(), Register)
		auth.POST("/logout", middleware.AuthJWT(), Logout)
		auth.GET("/check", CheckLogin)
		auth.POST("/findPassword", middleware.RateLimitAuth(), RequestPasswordReset)
		auth.PUT("/findPassword", ResetPassword)
		auth.POST("/reqActivation", middleware.AuthJWT(), RequestActivation)
		auth.PUT("/activation", Activate)
	}

	user := r.Group("/user")
	user.Use(middleware.AuthJWT())
	{
		user.GET("/getInfo", GetUserInfo)
	}

	query := r.Group("/query")
	query.Use(middleware.AuthJWT())
	{
		query.GET("/response", MyResponses)
	}

	survey := r.Group("/survey")
	survey.Use(middleware.AuthJWT())
	{
		survey.GET("/get_slots", GetSlots)
		survey.GET("/survey/:id", GetSurvey)
		survey.POST("/check_survey", CheckSurvey)
		survey.POST("/start_survey", StartSurvey)
		survey.POST("/complete_survey", CompleteSurvey)
	}

	guarantee := r.Group("/guarantee")
	guarantee.Use(middleware.AuthJWT())
	{
		guarantee.POST("/request", RequestGuarantee)
		guarantee.POST("/action", GuaranteeAction)
		guarantee.GET("/query", QueryGuarantees)
		guarantee.GET("/query_all", middleware.RequireAdmin(), QueryAllGuarantees)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AuthJWT(), middleware.RequireAdmin())
	{
		admin.POST("/addSurvey", AddSurvey)
		admin.POST("/modSurvey", ModSurvey)
		admin.POST("/delSurvey", DelSurvey)
		admin.GET("/surveys", GetSurveys)
		admin.GET("/survey/:id", AdminGetSurvey)

		admin.POST("/addQuestion", AddQuestion)
		admin.POST("/editQuestion", EditQuestion)
		admin.POST("/delQuestion", DelQuestion)
		admin.POST("/sortSurveyQuestions", SortSurveyQuestions)

		admin.POST("/add_slot", AddSlot)
		admin.POST("/set_slot", SetSlot)
		admin.POST("/del_slot", DelSlot)

		admin.GET("/responses", GetResponses)
		admin.GET("/detail/:id", GetResponseDetail)
		admin.POST("/reviewed", ReviewResponse)
		admin.POST("/detail_score", SetResponseScore)

		admin.GET("/whitelist", AdminWhitelist)

		admin.GET("/users", GetUsers)
		admin.GET("/user", GetUser)
		admin.POST("/user", AddUser)
		admin.PUT("/user", SetUser)
		admin.DELETE("/user", DelUser)

		admin.GET("/config", GetConfig)
		admin.POST("/config", SetConfig)
	}

	api := r.Group("/api")
	api.Use(middleware.RequireAPIToken())
	{
		api.GET("/whitelist/:player", LookupWhitelist)
	}

	return r
}

func createTestUser(t *testing.T, username, role string, status int) models.User {
	t.Helper()

	hash, err := utils.HashPassword("secret123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{
		Username: username,
		UserQQ:   "10001",
		Password: hash,
		Role:     role,
		Status:   status,
		Avatar:   models.DefaultAvatar,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func authToken(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := createToken(user)
	if err != nil {
		t.Fatalf("failed to create token: %v", err)
	}
	return token
}

func performRequest(r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func bodyCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	body := decodeBody(t, w)
	code, ok := body["code"].(float64)
	if !ok {
		t.Fatalf("response has no code: %q", w.Body.String())
	}
	return int(code)
}

// boolPtr is a shorthand for option correctness flags.
func boolPtr(v bool) *bool { return &v }

// createSurveyFixture builds a survey with one single-choice question
// (options A correct, B) and one fill-blank question (reference "42").
func createSurveyFixture(t *testing.T) (survey models.Survey, single, fill models.Question, optA, optB models.Option) {
	t.Helper()

	survey = models.Survey{Name: "Entrance exam", Description: "basic rules"}
	if err := config.DB.Create(&survey).Error; err != nil {
		t.Fatalf("failed to create survey: %v", err)
	}

	single = models.Question{
		SurveyID:     survey.ID,
		QuestionText: "Is griefing allowed?",
		QuestionType: models.SingleChoice,
		Score:        5,
		DisplayOrder: 1,
	}
	if err := config.DB.Create(&single).Error; err != nil {
		t.Fatalf("failed to create question: %v", err)
	}
	optA = models.Option{QuestionID: single.ID, OptionText: "No", IsCorrect: boolPtr(true)}
	optB = models.Option{QuestionID: single.ID, OptionText: "Yes", IsCorrect: boolPtr(false)}
	if err := config.DB.Create(&optA).Error; err != nil {
		t.Fatalf("failed to create option: %v", err)
	}
	if err := config.DB.Create(&optB).Error; err != nil {
		t.Fatalf("failed to create option: %v", err)
	}

	fill = models.Question{
		SurveyID:     survey.ID,
		QuestionText: "The answer to everything?",
		QuestionType: models.FillInTheBlank,
		Score:        3,
		DisplayOrder: 2,
	}
	if err := config.DB.Create(&fill).Error; err != nil {
		t.Fatalf("failed to create question: %v", err)
	}
	ref := models.Option{QuestionID: fill.ID, OptionText: "42", IsCorrect: boolPtr(true)}
	if err := config.DB.Create(&ref).Error; err != nil {
		t.Fatalf("failed to create reference option: %v", err)
	}

	return survey, single, fill, optA, optB
}
