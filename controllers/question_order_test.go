package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/craftwl/whitelist-server/config"
	"github.com/craftwl/whitelist-server/models"
)

func addQuestionBody(surveyID uint, title string, displayOrder int) map[string]interface{} {
	return map[string]interface{}{
		"survey":       surveyID,
		"title":        title,
		"type":         int(models.SingleChoice),
		"score":        1,
		"displayOrder": displayOrder,
		"options": []map[string]interface{}{
			{"text": "yes", "isCorrect": true},
			{"text": "no", "isCorrect": false},
		},
	}
}

// orderedTitles returns the non-deleted questions of a survey by display
// order, asserting the positions are dense starting at 1.
func orderedTitles(t *testing.T, surveyID uint) []string {
	t.Helper()

	var questions []models.Question
	if err := config.DB.
		Where("survey_id = ? AND logical_deletion = ?", surveyID, false).
		Order("display_order").Find(&questions).Error; err != nil {
		t.Fatalf("query failed: %v", err)
	}

	titles := make([]string, 0, len(questions))
	for i, q := range questions {
		if q.DisplayOrder != i+1 {
			t.Errorf("question %q at display_order %d, want %d", q.QuestionText, q.DisplayOrder, i+1)
		}
		titles = append(titles, q.QuestionText)
	}
	return titles
}

func sameTitles(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestAddQuestionAppendAndInsert(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter(t)
	admin := createTestUser(t, "root", models.RoleAdmin, models.UserActive)
	token := authToken(t, &admin)

	survey := models.Survey{Name: "ordering", Description: "d"}
	if err := config.DB.Create(&survey).Error; err != nil {
		t.Fatalf("failed to create survey: %v", err)
	}

	for _, title := range []string{"first", "second", "third"} {
		w := performRequest(r, http.MethodPost, "/admin/addQuestion", addQuestionBody(survey.ID, title, 0), token)
		if code := bodyCode(t, w); code != 0 {
			t.Fatalf("append %q failed: %s", title, w.Body.String())
		}
	}
	if got := orderedTitles(t, survey.ID); !sameTitles(got, []string{"first", "second", "third"}) {
		t.Fatalf("after appends: %v", got)
	}

	// insert at position 2 shifts second and third up
	w := performRequest(r, http.MethodPost, "/admin/addQuestion", addQuestionBody(survey.ID, "wedge", 2), token)
	if code := bodyCode(t, w); code != 0 {
		t.Fatalf("insert failed: %s", w.Body.String())
	}
	if got := orderedTitles(t, survey.ID); !sameTitles(got, []string{"first", "wedge", "second", "third"}) {
		t.Fatalf("after insert: %v", got)
	}
}

func TestDelQuestionClosesGap(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter(t)
	admin := createTestUser(t, "root", models.RoleAdmin, models.UserActive)
	token := authToken(t, &admin)

	survey := models.Survey{Name: "ordering", Description: "d"}
	config.DB.Create(&survey)
	for _, title := range []string{"first", "second", "third"} {
		performRequest(r, http.MethodPost, "/admin/addQuestion", addQuestionBody(survey.ID, title, 0), token)
	}

	var victim models.Question
	if err := config.DB.Where("survey_id = ? AND question_text = ?", survey.ID, "second").First(&victim).Error; err != nil {
		t.Fatalf("fixture question missing: %v", err)
	}

	w := performRequest(r, http.MethodPost, "/admin/delQuestion", victim.ID, token)
	if code := bodyCode(t, w); code != 0 {
		t.Fatalf("delete failed: %s", w.Body.String())
	}

	if got := orderedTitles(t, survey.ID); !sameTitles(got, []string{"first", "third"}) {
		t.Fatalf("after delete: %v", got)
	}

	// the row survives for answer history
	var gone models.Question
	if err := config.DB.First(&gone, victim.ID).Error; err != nil {
		t.Fatalf("soft-deleted question hard-deleted: %v", err)
	}
	if !gone.LogicalDeletion || gone.DisplayOrder != 0 {
		t.Errorf("soft delete state wrong: %+v", gone)
	}
}

func TestSortSurveyQuestions(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter(t)
	admin := createTestUser(t, "root", models.RoleAdmin, models.UserActive)
	token := authToken(t, &admin)

	survey := models.Survey{Name: "ordering", Description: "d"}
	config.DB.Create(&survey)
	for _, title := range []string{"a", "b", "c"} {
		performRequest(r, http.MethodPost, "/admin/addQuestion", addQuestionBody(survey.ID, title, 0), token)
	}

	var questions []models.Question
	config.DB.Where("survey_id = ?", survey.ID).Order("display_order").Find(&questions)
	if len(questions) != 3 {
		t.Fatalf("fixture has %d questions", len(questions))
	}

	// reverse the order
	order := map[string]int{
		fmt.Sprint(questions[0].ID): 3,
		fmt.Sprint(questions[1].ID): 2,
		fmt.Sprint(questions[2].ID): 1,
	}
	w := performRequest(r, http.MethodPost, "/admin/sortSurveyQuestions",
		map[string]interface{}{"survey": survey.ID, "order": order}, token)
	if code := bodyCode(t, w); code != 0 {
		t.Fatalf("sort failed: %s", w.Body.String())
	}
	if got := orderedTitles(t, survey.ID); !sameTitles(got, []string{"c", "b", "a"}) {
		t.Fatalf("after sort: %v", got)
	}

	rejections := []struct {
		name  string
		order map[string]int
	}{
		{"incomplete map", map[string]int{fmt.Sprint(questions[0].ID): 1}},
		{"unknown question", map[string]int{
			fmt.Sprint(questions[0].ID): 1,
			fmt.Sprint(questions[1].ID): 2,
			"99999":                     3,
		}},
		{"not a permutation", map[string]int{
			fmt.Sprint(questions[0].ID): 1,
			fmt.Sprint(questions[1].ID): 1,
			fmt.Sprint(questions[2].ID): 2,
		}},
	}
	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(r, http.MethodPost, "/admin/sortSurveyQuestions",
				map[string]interface{}{"survey": survey.ID, "order": tt.order}, token)
			if code := bodyCode(t, w); code != 2 {
				t.Errorf("got code %d, want 2: %s", code, w.Body.String())
			}
			// nothing moved
			if got := orderedTitles(t, survey.ID); !sameTitles(got, []string{"c", "b", "a"}) {
				t.Errorf("rejected sort still moved questions: %v", got)
			}
		})
	}
}

func TestDelSurveyRefusedWhileMounted(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter(t)
	admin := createTestUser(t, "root", models.RoleAdmin, models.UserActive)
	token := authToken(t, &admin)

	survey := models.Survey{Name: "mounted", Description: "d"}
	config.DB.Create(&survey)

	w := performRequest(r, http.MethodPost, "/admin/add_slot",
		map[string]interface{}{"slotName": "main", "mountedSID": survey.ID}, token)
	if code := bodyCode(t, w); code != 0 {
		t.Fatalf("add_slot failed: %s", w.Body.String())
	}

	var published models.Survey
	config.DB.First(&published, survey.ID)
	if published.Status != models.SurveyPublished {
		t.Errorf("mounting must publish, status = %d", published.Status)
	}

	w = performRequest(r, http.MethodPost, "/admin/delSurvey",
		map[string]interface{}{"sid": survey.ID}, token)
	if code := bodyCode(t, w); code != 2 {
		t.Fatalf("delete of mounted survey must be refused, got code %d", code)
	}

	var slot models.SurveySlot
	config.DB.Where("mounted_survey_id = ?", survey.ID).First(&slot)
	w = performRequest(r, http.MethodPost, "/admin/del_slot",
		map[string]interface{}{"id": slot.ID}, token)
	if code := bodyCode(t, w); code != 0 {
		t.Fatalf("del_slot failed: %s", w.Body.String())
	}

	config.DB.First(&published, survey.ID)
	if published.Status != models.SurveyUnpublished {
		t.Errorf("unmounting must unpublish, status = %d", published.Status)
	}

	w = performRequest(r, http.MethodPost, "/admin/delSurvey",
		map[string]interface{}{"sid": survey.ID}, token)
	if code := bodyCode(t, w); code != 0 {
		t.Fatalf("delete after unmount failed: %s", w.Body.String())
	}
}
