package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/craftwl/whitelist-server/config"
	"github.com/craftwl/whitelist-server/models"
)

func seedGuarantee(t *testing.T, guarantor, applicant *models.User, status int, window time.Duration) models.Guarantee {
	t.Helper()

	now := time.Now()
	g := models.Guarantee{
		GuarantorID:    guarantor.ID,
		ApplicantID:    applicant.ID,
		PlayerName:     testPlayerName,
		PlayerUUID:     testPlayerUUID,
		Status:         status,
		CreateTime:     now,
		ExpirationTime: now.Add(window),
	}
	if err := config.DB.Create(&g).Error; err != nil {
		t.Fatalf("failed to seed guarantee: %v", err)
	}
	return g
}

func TestRequestGuaranteeAlreadyWhitelisted(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter(t)
	applicant := createTestUser(t, "newbie", models.RoleUser, models.UserActive)
	token := authToken(t, &applicant)

	wl := models.Whitelist{PlayerName: testPlayerName, PlayerUUID: testPlayerUUID, Source: models.WhitelistSourceOther}
	if err := config.DB.Create(&wl).Error; err != nil {
		t.Fatalf("failed to seed whitelist: %v", err)
	}

	w := performRequest(r, http.MethodPost, "/guarantee/request", map[string]interface{}{
		"playerName":    testPlayerName,
		"playerUUID":    testPlayerUUID,
		"guarantorUUID": "deadbeefdeadbeefdeadbeefdeadbeef",
	}, token)
	body := decodeBody(t, w)
	if body["state"] != "alreadyExists" {
		t.Fatalf("expected alreadyExists, body %s", w.Body.String())
	}
}

func TestRequestGuaranteeDuplicatePending(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter(t)
	guarantor := createTestUser(t, "veteran", models.RoleUser, models.UserActive)
	applicant := createTestUser(t, "newbie", models.RoleUser, models.UserActive)
	token := authToken(t, &applicant)

	pending := seedGuarantee(t, &guarantor, &applicant, models.GuaranteePending, time.Hour)

	w := performRequest(r, http.MethodPost, "/guarantee/request", map[string]interface{}{
		"playerName":    testPlayerName,
		"playerUUID":    testPlayerUUID,
		"guarantorUUID": "deadbeefdeadbeefdeadbeefdeadbeef",
	}, token)
	body := decodeBody(t, w)
	if body["state"] != "requestExists" {
		t.Fatalf("expected requestExists, body %s", w.Body.String())
	}
	if uint(body["guaranteeId"].(float64)) != pending.ID {
		t.Errorf("expected guarantee id %d, body %s", pending.ID, w.Body.String())
	}
}

func TestGuaranteeActionAccept(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter(t)
	guarantor := createTestUser(t, "veteran", models.RoleUser, models.UserActive)
	applicant := createTestUser(t, "newbie", models.RoleUser, models.UserActive)
	token := authToken(t, &guarantor)

	g := seedGuarantee(t, &guarantor, &applicant, models.GuaranteePending, time.Hour)

	w := performRequest(r, http.MethodPost, "/guarantee/action",
		map[string]interface{}{"id": g.ID, "action": "accept"}, token)
	if code := bodyCode(t, w); code != 0 {
		t.Fatalf("accept failed: %s", w.Body.String())
	}

	var got models.Guarantee
	config.DB.First(&got, g.ID)
	if got.Status != models.GuaranteeAccepted {
		t.Errorf("status = %d, want accepted", got.Status)
	}

	var wl models.Whitelist
	if err := config.DB.Where("player_uuid = ?", testPlayerUUID).First(&wl).Error; err != nil {
		t.Fatalf("whitelist entry not created: %v", err)
	}
	if wl.Source != models.WhitelistSourceGuarantee {
		t.Errorf("source = %d, want guarantee", wl.Source)
	}
	if wl.UserID == nil || *wl.UserID != applicant.ID {
		t.Errorf("whitelist user = %v, want applicant %d", wl.UserID, applicant.ID)
	}
	if wl.AuditorUID == nil || *wl.AuditorUID != guarantor.ID {
		t.Errorf("auditor = %v, want guarantor %d", wl.AuditorUID, guarantor.ID)
	}

	// settled requests cannot be acted on again
	w = performRequest(r, http.MethodPost, "/guarantee/action",
		map[string]interface{}{"id": g.ID, "action": "reject"}, token)
	if code := bodyCode(t, w); code != 2 {
		t.Errorf("second action got code %d, want 2", code)
	}
}

func TestGuaranteeActionReject(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter(t)
	guarantor := createTestUser(t, "veteran", models.RoleUser, models.UserActive)
	applicant := createTestUser(t, "newbie", models.RoleUser, models.UserActive)
	token := authToken(t, &guarantor)

	g := seedGuarantee(t, &guarantor, &applicant, models.GuaranteePending, time.Hour)

	w := performRequest(r, http.MethodPost, "/guarantee/action",
		map[string]interface{}{"id": g.ID, "action": "reject"}, token)
	if code := bodyCode(t, w); code != 0 {
		t.Fatalf("reject failed: %s", w.Body.String())
	}

	var got models.Guarantee
	config.DB.First(&got, g.ID)
	if got.Status != models.GuaranteeRejected {
		t.Errorf("status = %d, want rejected", got.Status)
	}

	var wlCount int64
	config.DB.Model(&models.Whitelist{}).Count(&wlCount)
	if wlCount != 0 {
		t.Errorf("rejection must not grant whitelist, found %d rows", wlCount)
	}
}

func TestGuaranteeActionExpired(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter(t)
	guarantor := createTestUser(t, "veteran", models.RoleUser, models.UserActive)
	applicant := createTestUser(t, "newbie", models.RoleUser, models.UserActive)
	token := authToken(t, &guarantor)

	g := seedGuarantee(t, &guarantor, &applicant, models.GuaranteePending, -time.Minute)

	w := performRequest(r, http.MethodPost, "/guarantee/action",
		map[string]interface{}{"id": g.ID, "action": "accept"}, token)
	if code := bodyCode(t, w); code != 3 {
		t.Fatalf("expected code 3 for expired request, got %d", code)
	}

	var got models.Guarantee
	config.DB.First(&got, g.ID)
	if got.Status != models.GuaranteePending {
		t.Errorf("expired request must stay pending, got %d", got.Status)
	}
}

func TestGuaranteeActionWrongUser(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter(t)
	guarantor := createTestUser(t, "veteran", models.RoleUser, models.UserActive)
	applicant := createTestUser(t, "newbie", models.RoleUser, models.UserActive)
	stranger := createTestUser(t, "stranger", models.RoleUser, models.UserActive)

	g := seedGuarantee(t, &guarantor, &applicant, models.GuaranteePending, time.Hour)

	w := performRequest(r, http.MethodPost, "/guarantee/action",
		map[string]interface{}{"id": g.ID, "action": "accept"},
		authToken(t, &stranger))
	if w.Code != http.StatusForbidden {
		t.Errorf("stranger got status %d, want 403", w.Code)
	}

	// an admin may settle on the guarantor's behalf
	admin := createTestUser(t, "root", models.RoleAdmin, models.UserActive)
	w = performRequest(r, http.MethodPost, "/guarantee/action",
		map[string]interface{}{"id": g.ID, "action": "accept"},
		authToken(t, &admin))
	if code := bodyCode(t, w); code != 0 {
		t.Errorf("admin action failed: %s", w.Body.String())
	}
}

func TestQueryGuaranteesBothSides(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter(t)
	guarantor := createTestUser(t, "veteran", models.RoleUser, models.UserActive)
	applicant := createTestUser(t, "newbie", models.RoleUser, models.UserActive)

	seedGuarantee(t, &guarantor, &applicant, models.GuaranteePending, time.Hour)

	w := performRequest(r, http.MethodGet, "/guarantee/query", nil, authToken(t, &guarantor))
	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	if len(data["guarantee"].([]interface{})) != 1 {
		t.Errorf("guarantor side missing: %s", w.Body.String())
	}
	if len(data["applicant"].([]interface{})) != 0 {
		t.Errorf("guarantor is not an applicant: %s", w.Body.String())
	}

	w = performRequest(r, http.MethodGet, "/guarantee/query", nil, authToken(t, &applicant))
	body = decodeBody(t, w)
	data = body["data"].(map[string]interface{})
	if len(data["applicant"].([]interface{})) != 1 {
		t.Errorf("applicant side missing: %s", w.Body.String())
	}
}
