package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const mojangProfileURL = "https://api.mojang.com/users/profiles/minecraft/%s"

var mojangClient = &http.Client{Timeout: 10 * time.Second}

type MojangProfile struct {
	// UUID without dashes, as Mojang returns it.
	UUID string `json:"id"`
	Name string `json:"name"`
}

// GetPlayerProfile resolves a player name to its canonical name and UUID via
// the Mojang profile API. Returns nil if the player does not exist.
func GetPlayerProfile(name string) (*MojangProfile, error) {
	resp, err := mojangClient.Get(fmt.Sprintf(mojangProfileURL, name))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mojang: unexpected status %d", resp.StatusCode)
	}

	var profile MojangProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
