package models

import (
	"database/sql"
	"time"
)

// Player is the append-only player dimension keyed by MLB person id
type Player struct {
	PlayerID        int64          `db:"player_id"`
	FullName        string         `db:"full_name"`
	BatSide         sql.NullString `db:"bat_side"`
	PitchHand       sql.NullString `db:"pitch_hand"`
	PrimaryPosition sql.NullString `db:"primary_position"`
	CreatedAt       time.Time      `db:"created_at"`
}

// Pitch is a single Statcast pitch. PitchID is stable across reloads.
type Pitch struct {
	PitchID     string        `db:"pitch_id"`
	GamePK      int64         `db:"game_pk"`
	ABNumber    sql.NullInt32 `db:"ab_number"`
	PitchNumber sql.NullInt32 `db:"pitch_number"`
	PitcherID   sql.NullInt64 `db:"pitcher_id"`
	BatterID    sql.NullInt64 `db:"batter_id"`
	Inning      sql.NullInt32 `db:"inning"`
	InningHalf  string        `db:"inning_half"`
	Balls       sql.NullInt32 `db:"balls"`
	Strikes     sql.NullInt32 `db:"strikes"`
	Outs        sql.NullInt32 `db:"outs"`

	PitchType      sql.NullString  `db:"pitch_type"`
	PitchName      sql.NullString  `db:"pitch_name"`
	ReleaseSpeed   sql.NullFloat64 `db:"release_speed"`
	ReleasePosX    sql.NullFloat64 `db:"release_pos_x"`
	ReleasePosZ    sql.NullFloat64 `db:"release_pos_z"`
	Extension      sql.NullFloat64 `db:"release_extension"`
	PfxX           sql.NullFloat64 `db:"pfx_x"`
	PfxZ           sql.NullFloat64 `db:"pfx_z"`
	PlateX         sql.NullFloat64 `db:"plate_x"`
	PlateZ         sql.NullFloat64 `db:"plate_z"`
	SpinRate       sql.NullFloat64 `db:"release_spin_rate"`
	Zone           sql.NullInt32   `db:"zone"`
	PitchResult    sql.NullString  `db:"pitch_result"`
	PlayResult     sql.NullString  `db:"play_result"`
	CreatedAt      time.Time       `db:"created_at"`
}

// BattedBall is the contact record for a pitch put in play
type BattedBall struct {
	PlayID       string          `db:"play_id"`
	GamePK       int64           `db:"game_pk"`
	BatterID     sql.NullInt64   `db:"batter_id"`
	PitcherID    sql.NullInt64   `db:"pitcher_id"`
	Inning       sql.NullInt32   `db:"inning"`
	InningHalf   string          `db:"inning_half"`
	ExitVelocity sql.NullFloat64 `db:"exit_velocity"`
	LaunchAngle  sql.NullFloat64 `db:"launch_angle"`
	HitDistance  sql.NullFloat64 `db:"hit_distance"`
	HitCoordX    sql.NullFloat64 `db:"hit_coord_x"`
	HitCoordY    sql.NullFloat64 `db:"hit_coord_y"`
	Result       sql.NullString  `db:"result"`
	BBType       sql.NullString  `db:"bb_type"`
	CreatedAt    time.Time       `db:"created_at"`
}
