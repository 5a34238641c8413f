// Package save implements JSON serialization and deserialization of the
// session state.
package save

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nathoo/shadowcore/engine/state"
	"github.com/nathoo/shadowcore/types"
)

// ErrInvalidSave is returned when save data decodes but describes a state
// the engine cannot be in.
var ErrInvalidSave = errors.New("invalid save")

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version     string                `json:"version"`
	Game        string                `json:"game"`
	Turn        int                   `json:"turn"`
	Player      types.PlayerResources `json:"player"`
	SceneID     string                `json:"scene"`
	SceneIndex  int                   `json:"scene_index"`
	Trust       int                   `json:"trust"`
	Flags       map[string]bool       `json:"flags"`
	RNGSeed     int64                 `json:"rng_seed"`
	RNGPosition int64                 `json:"rng_position"`
	CommandLog  []string              `json:"command_log"`
}

// Save serializes session state to JSON bytes.
func Save(s *types.State, defs *state.Defs) ([]byte, error) {
	data := SaveData{
		Version:     defs.Game.Version,
		Game:        defs.Game.Title,
		Turn:        s.TurnCount,
		Player:      s.Player,
		SceneID:     s.SceneID,
		SceneIndex:  s.SceneIndex,
		Trust:       s.Trust,
		Flags:       s.Flags,
		RNGSeed:     s.RNGSeed,
		RNGPosition: s.RNGPosition,
		CommandLog:  s.CommandLog,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	// Ensure maps are never nil after load.
	if sd.Flags == nil {
		sd.Flags = map[string]bool{}
	}
	if sd.CommandLog == nil {
		sd.CommandLog = []string{}
	}
	if err := validate(&sd); err != nil {
		return nil, err
	}
	return &sd, nil
}

// Check verifies sd belongs to defs and points at a known scene.
func Check(sd *SaveData, defs *state.Defs) error {
	if sd.Game != "" && defs.Game.Title != "" && sd.Game != defs.Game.Title {
		return fmt.Errorf("%w: saved for %q, not %q", ErrInvalidSave, sd.Game, defs.Game.Title)
	}
	if _, ok := defs.Scenes[sd.SceneID]; !ok {
		return fmt.Errorf("%w: unknown scene %q", ErrInvalidSave, sd.SceneID)
	}
	return nil
}

// ApplySave applies loaded save data onto a state.
func ApplySave(s *types.State, sd *SaveData) {
	s.Player = sd.Player
	s.SceneID = sd.SceneID
	s.SceneIndex = sd.SceneIndex
	s.Trust = sd.Trust
	s.Flags = sd.Flags
	s.TurnCount = sd.Turn
	s.RNGSeed = sd.RNGSeed
	s.RNGPosition = sd.RNGPosition
	s.CommandLog = sd.CommandLog
}

func validate(sd *SaveData) error {
	p := sd.Player
	switch {
	case p.Level < 1 || p.Level > state.MaxLevel:
		return fmt.Errorf("%w: level %d", ErrInvalidSave, p.Level)
	case p.LightPoints < 0 || p.ShadowPoints < 0 || p.Experience < 0:
		return fmt.Errorf("%w: negative resources", ErrInvalidSave)
	case p.MaxHealth <= 0 || p.Health < 0 || p.Health > p.MaxHealth:
		return fmt.Errorf("%w: health %d/%d", ErrInvalidSave, p.Health, p.MaxHealth)
	case p.MaxEnergy <= 0 || p.Energy < 0 || p.Energy > p.MaxEnergy:
		return fmt.Errorf("%w: energy %d/%d", ErrInvalidSave, p.Energy, p.MaxEnergy)
	case sd.RNGPosition < 0:
		return fmt.Errorf("%w: rng position %d", ErrInvalidSave, sd.RNGPosition)
	}
	return nil
}
