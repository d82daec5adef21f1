package game

// StatKey names one of the six combat stats.
type StatKey string

const (
	StatHP    StatKey = "HP"
	StatATK   StatKey = "ATK"
	StatDEF   StatKey = "DEF"
	StatSPD   StatKey = "SPD"
	StatSPAtk StatKey = "SP_ATK"
	StatSPDef StatKey = "SP_DEF"
)

// StatKeys lists every stat in display order.
var StatKeys = []StatKey{StatHP, StatATK, StatDEF, StatSPD, StatSPAtk, StatSPDef}

const (
	MaxIV    = 31
	MinLevel = 1
	MaxLevel = 100
	// MovesetSize is the number of active move slots on an instance.
	MovesetSize = 4
)

// Stats holds one value per stat. It is used for base stats, IV sets and
// computed stats alike.
type Stats struct {
	HP    int `yaml:"HP" json:"hp"`
	ATK   int `yaml:"ATK" json:"atk"`
	DEF   int `yaml:"DEF" json:"def"`
	SPD   int `yaml:"SPD" json:"spd"`
	SPAtk int `yaml:"SP_ATK" json:"sp_atk"`
	SPDef int `yaml:"SP_DEF" json:"sp_def"`
}

// Get returns the value for key, or 0 for an unknown key.
func (s Stats) Get(key StatKey) int {
	switch key {
	case StatHP:
		return s.HP
	case StatATK:
		return s.ATK
	case StatDEF:
		return s.DEF
	case StatSPD:
		return s.SPD
	case StatSPAtk:
		return s.SPAtk
	case StatSPDef:
		return s.SPDef
	default:
		return 0
	}
}

// Set assigns v to key. Unknown keys are ignored.
func (s *Stats) Set(key StatKey, v int) {
	switch key {
	case StatHP:
		s.HP = v
	case StatATK:
		s.ATK = v
	case StatDEF:
		s.DEF = v
	case StatSPD:
		s.SPD = v
	case StatSPAtk:
		s.SPAtk = v
	case StatSPDef:
		s.SPDef = v
	}
}

// Sum adds up all six values.
func (s Stats) Sum() int {
	return s.HP + s.ATK + s.DEF + s.SPD + s.SPAtk + s.SPDef
}

// Category tells which stat pair a move attacks with.
type Category string

const (
	Physical Category = "physical"
	Special  Category = "special"
)

// Move is a single attack (or heal) a character can use in battle.
type Move struct {
	Name        string   `yaml:"name" json:"name"`
	Power       int      `yaml:"power" json:"power"`
	Accuracy    int      `yaml:"accuracy" json:"accuracy"`
	Category    Category `yaml:"type" json:"category"`
	UnlockLevel int      `yaml:"unlock_level" json:"unlock_level"`
	Element     string   `yaml:"element" json:"element,omitempty"`
	Heal        bool     `yaml:"heal" json:"heal,omitempty"`
}

// CharacterTemplate is the static definition every instance is created from.
type CharacterTemplate struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Base        Stats  `yaml:"base"`
	Ability     string `yaml:"ability"`
	Description string `yaml:"description"`
	Element     string `yaml:"element"`
}

// ItemBoost is the effect of an equippable item of a given rarity.
type ItemBoost struct {
	Stat  StatKey `yaml:"stat"`
	Boost int     `yaml:"boost"` // percent of the base stat
}

// CharacterInstance is a persistent, owned copy of a template.
type CharacterInstance struct {
	ID           int64               `json:"id"`
	TemplateID   string              `json:"template_id"`
	Name         string              `json:"name"`
	Level        int                 `json:"level"`
	XP           int                 `json:"xp"`
	IVs          Stats               `json:"individual_ivs"`
	IVPercent    float64             `json:"iv"`
	Moveset      [MovesetSize]string `json:"moveset"` // "" is an empty slot
	EquippedItem string              `json:"equipped_item,omitempty"`
	OwnerID      string              `json:"owner_id"`
}

// Player is the persistent record of one account.
type Player struct {
	ID              string                       `json:"id"`
	Coins           int                          `json:"coins"`
	RP              int                          `json:"rp"`
	Characters      map[int64]*CharacterInstance `json:"characters"`
	Team            []int64                      `json:"team"`
	Inventory       map[string]int               `json:"inventory"`
	NextCharacterID int64                        `json:"next_character_id"`
}
