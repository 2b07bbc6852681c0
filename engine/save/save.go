// Package save implements JSON serialization and deserialization of game state.
package save

import (
	"encoding/json"
	"fmt"

	"github.com/nathoo/regioncore/engine/state"
	"github.com/nathoo/regioncore/types"
)

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version       string                   `json:"version"`
	Game          string                   `json:"game"`
	Turn          int                      `json:"turn"`
	Player        types.Player             `json:"player"`
	Switches      map[int]bool             `json:"switches"`
	Variables     map[int]int              `json:"variables"`
	TextOverrides map[string]string        `json:"text_overrides"`
	Events        map[int]types.EventState `json:"events"`
	RegionID      int                      `json:"region_id"`
	TerrainTagID  int                      `json:"terrain_tag_id"`
	RNGSeed       int64                    `json:"rng_seed"`
	RNGPosition   int64                    `json:"rng_position"`
	CommandLog    []string                 `json:"command_log"`
}

// Save serializes game state to JSON bytes.
func Save(s *types.State, defs *state.Defs) ([]byte, error) {
	data := SaveData{
		Version:       defs.Game.Version,
		Game:          defs.Game.Title,
		Turn:          s.TurnCount,
		Player:        s.Player,
		Switches:      s.Switches,
		Variables:     s.Variables,
		TextOverrides: s.TextOverrides,
		Events:        s.Events,
		RegionID:      s.RegionID,
		TerrainTagID:  s.TerrainTagID,
		RNGSeed:       s.RNGSeed,
		RNGPosition:   s.RNGPosition,
		CommandLog:    s.CommandLog,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("decode save: %w", err)
	}
	// Ensure maps are never nil after load.
	if sd.Switches == nil {
		sd.Switches = map[int]bool{}
	}
	if sd.Variables == nil {
		sd.Variables = map[int]int{}
	}
	if sd.TextOverrides == nil {
		sd.TextOverrides = map[string]string{}
	}
	if sd.Events == nil {
		sd.Events = map[int]types.EventState{}
	}
	if sd.CommandLog == nil {
		sd.CommandLog = []string{}
	}
	return &sd, nil
}

// Validate checks that the save refers to content that exists in defs.
func Validate(sd *SaveData, defs *state.Defs) error {
	if sd.Game != "" && defs.Game.Title != "" && sd.Game != defs.Game.Title {
		return fmt.Errorf("save is for %q, not %q", sd.Game, defs.Game.Title)
	}
	m, ok := defs.Maps[sd.Player.MapID]
	if !ok {
		return fmt.Errorf("save refers to unknown map %d", sd.Player.MapID)
	}
	if sd.Player.X < 0 || sd.Player.Y < 0 || sd.Player.X >= m.Width || sd.Player.Y >= m.Height {
		return fmt.Errorf("save position (%d,%d) is outside map %d", sd.Player.X, sd.Player.Y, m.ID)
	}
	return nil
}

// ApplySave applies loaded save data onto a state.
func ApplySave(s *types.State, sd *SaveData) {
	s.Player = sd.Player
	s.Switches = sd.Switches
	s.Variables = sd.Variables
	s.TextOverrides = sd.TextOverrides
	s.Events = sd.Events
	s.RegionID = sd.RegionID
	s.TerrainTagID = sd.TerrainTagID
	s.TurnCount = sd.Turn
	s.RNGSeed = sd.RNGSeed
	s.RNGPosition = sd.RNGPosition
	s.CommandLog = sd.CommandLog
}
