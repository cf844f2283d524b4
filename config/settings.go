package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/craftwl/whitelist-server/models"

	"gorm.io/gorm"
)

// Setting keys.
const (
	KeySecretKey          = "SECRET_KEY"
	KeyAPIToken           = "API_TOKEN"
	KeyAllowedOrigins     = "ALLOWED_ORIGINS"
	KeyResetPasswordURL   = "RESET_PASSWORD_URL"
	KeyActivationURL      = "ACTIVATION_URL"
	KeyFrontEndBaseURL    = "FRONT_END_BASE_URL"
	KeyMailAPIKey         = "MAIL_API_KEY"
	KeyMailFrom           = "MAIL_FROM"
	KeyGuaranteeExpHours  = "GUARANTEE_EXPIRATION"
	KeyResponseValidHours = "RESPONSE_VALIDITY_PERIOD"
)

var defaultSettings = []models.Setting{
	{Key: KeySecretKey, Value: "c4329f5e3bc9daf6cd2b82bf9355a5d2", Type: models.SettingStr},
	{Key: KeyAPIToken, Value: "5d0f1a51226e42a8b35908823eadfcab", Type: models.SettingStr},
	{Key: KeyAllowedOrigins, Value: "http://localhost:5173,http://127.0.0.1:5173", Type: models.SettingList, Desc: "comma separated"},
	{Key: KeyResetPasswordURL, Value: "http://localhost:5173/reset_password?token=", Type: models.SettingStr},
	{Key: KeyActivationURL, Value: "http://localhost:5173/activation?token=", Type: models.SettingStr},
	{Key: KeyFrontEndBaseURL, Value: "http://localhost:5173", Type: models.SettingStr},
	{Key: KeyMailAPIKey, Value: "", Type: models.SettingStr, Desc: "Resend API key"},
	{Key: KeyMailFrom, Value: "no-reply@example.com", Type: models.SettingStr},
	{Key: KeyGuaranteeExpHours, Value: "1", Type: models.SettingInt, Desc: "hours"},
	{Key: KeyResponseValidHours, Value: "24", Type: models.SettingInt, Desc: "hours"},
}

// SettingsService is the single owner of runtime configuration. Values are
// persisted in the settings table and mirrored here; every mutation writes
// through and resyncs the mirror, so consumers (CORS policy, mail sender)
// always read current values without a restart.
type SettingsService struct {
	mu     sync.RWMutex
	db     *gorm.DB
	values map[string]models.Setting
}

var Settings *SettingsService

// InitSettings seeds missing defaults, loads the table into memory and
// installs the process-wide service.
func InitSettings(db *gorm.DB) error {
	s, err := NewSettingsService(db)
	if err != nil {
		return err
	}
	Settings = s
	return nil
}

func NewSettingsService(db *gorm.DB) (*SettingsService, error) {
	s := &SettingsService{db: db, values: make(map[string]models.Setting)}
	for _, d := range defaultSettings {
		row := d
		if err := db.Where(models.Setting{Key: d.Key}).FirstOrCreate(&row).Error; err != nil {
			return nil, err
		}
	}
	if err := s.resync(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SettingsService) resync() error {
	var rows []models.Setting
	if err := s.db.Find(&rows).Error; err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]models.Setting, len(rows))
	for _, row := range rows {
		s.values[row.Key] = row
	}
	return nil
}

func (s *SettingsService) lookup(key string) (models.Setting, bool) {
	s.mu.RLock()
	row, ok := s.values[key]
	s.mu.RUnlock()
	if ok {
		return row, true
	}
	for _, d := range defaultSettings {
		if d.Key == key {
			return d, true
		}
	}
	return models.Setting{}, false
}

func (s *SettingsService) Get(key string) string {
	row, _ := s.lookup(key)
	return row.Value
}

func (s *SettingsService) GetInt(key string) int {
	row, ok := s.lookup(key)
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(row.Value))
	if err != nil {
		return 0
	}
	return v
}

func (s *SettingsService) GetBool(key string) bool {
	row, ok := s.lookup(key)
	if !ok {
		return false
	}
	v, err := strconv.ParseBool(strings.TrimSpace(row.Value))
	if err != nil {
		return false
	}
	return v
}

// GetList splits a list-typed value on commas, dropping empty entries.
func (s *SettingsService) GetList(key string) []string {
	row, ok := s.lookup(key)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(row.Value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// All returns every persisted setting.
func (s *SettingsService) All() []models.Setting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Setting, 0, len(s.values))
	for _, row := range s.values {
		out = append(out, row)
	}
	return out
}

// Set validates the value against its declared type, writes through to the
// table and resyncs the in-memory mirror.
func (s *SettingsService) Set(key, value, typ string) error {
	switch typ {
	case models.SettingStr, models.SettingList:
	case models.SettingInt:
		if _, err := strconv.Atoi(strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("setting %s: %q is not an int", key, value)
		}
	case models.SettingBool:
		if _, err := strconv.ParseBool(strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("setting %s: %q is not a bool", key, value)
		}
	default:
		return fmt.Errorf("setting %s: unknown type %q", key, typ)
	}

	row := models.Setting{Key: key, Value: value, Type: typ}
	if err := s.db.Save(&row).Error; err != nil {
		return err
	}
	return s.resync()
}
