package drill

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Practice types a zone can ask for.
const (
	PracticeCalculation  = "calculation"
	PracticeCreateNumber = "create-number"
)

// Zone is one stage of the adventure map and the skills it drills.
type Zone struct {
	AllowedSkills []Skill `yaml:"allowed_skills" json:"allowed_skills"`
	PracticeType  string  `yaml:"practice_type" json:"practice_type"`
	Digits        int     `yaml:"digits" json:"digits"`
}

// DefaultZoneID is used for unknown zone IDs.
const DefaultZoneID = "forest"

// DefaultZones returns the built-in curriculum.
func DefaultZones() map[string]Zone {
	return map[string]Zone{
		// Number representation only; no arithmetic yet.
		"village":  {PracticeType: PracticeCreateNumber, Digits: 1},
		"forest":   {AllowedSkills: []Skill{BasicAdd, Friend5Add}, PracticeType: PracticeCalculation, Digits: 1},
		"valley":   {AllowedSkills: []Skill{BasicAdd, Friend5Add, BasicSub, Friend5Sub}, PracticeType: PracticeCalculation, Digits: 1},
		"mountain": {AllowedSkills: []Skill{BasicAdd, Friend5Add, Friend10Add}, PracticeType: PracticeCalculation, Digits: 1},
		"cave": {
			AllowedSkills: []Skill{BasicAdd, Friend5Add, Friend10Add, BasicSub, Friend5Sub, Friend10Sub},
			PracticeType:  PracticeCalculation,
			Digits:        1,
		},
		"castle": {AllowedSkills: []Skill{AllAdd, AllSub}, PracticeType: PracticeCalculation, Digits: 2},
	}
}

// Curriculum maps zone IDs to zones.
type Curriculum struct {
	Zones map[string]Zone `yaml:"zones" json:"zones"`
}

// DefaultCurriculum returns the built-in zones.
func DefaultCurriculum() *Curriculum {
	return &Curriculum{Zones: DefaultZones()}
}

// LoadCurriculum reads a YAML curriculum. Zones it does not mention keep
// their defaults.
func LoadCurriculum(path string) (*Curriculum, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var loaded Curriculum
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse curriculum YAML: %w", err)
	}

	c := DefaultCurriculum()
	for id, z := range loaded.Zones {
		c.Zones[id] = z
	}
	return c, c.Validate()
}

// Validate checks every zone's skills and digit count.
func (c *Curriculum) Validate() error {
	for id, z := range c.Zones {
		if z.Digits < 1 || z.Digits > 4 {
			return fmt.Errorf("zone %s: digits must be in [1,4], got %d", id, z.Digits)
		}
		switch z.PracticeType {
		case PracticeCreateNumber:
		case PracticeCalculation:
			if len(z.AllowedSkills) == 0 {
				return fmt.Errorf("zone %s: calculation practice needs allowed_skills", id)
			}
		default:
			return fmt.Errorf("zone %s: unknown practice_type %q", id, z.PracticeType)
		}
		for _, s := range z.AllowedSkills {
			if !s.valid() {
				return fmt.Errorf("zone %s: unknown skill %q", id, s)
			}
		}
	}
	return nil
}

// ZoneFor returns the zone for id, falling back to the forest zone.
func (c *Curriculum) ZoneFor(id string) Zone {
	if z, ok := c.Zones[id]; ok {
		return z
	}
	if z, ok := c.Zones[DefaultZoneID]; ok {
		return z
	}
	return DefaultZones()[DefaultZoneID]
}

// ForZone generates one exercise of the kind the zone practices.
func (g *Generator) ForZone(z Zone) (Exercise, error) {
	if z.PracticeType == PracticeCreateNumber {
		return g.CreateNumber(z.Digits), nil
	}
	return g.Mixed(z.AllowedSkills, z.Digits)
}
