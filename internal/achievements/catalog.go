package achievements

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	yaml "gopkg.in/yaml.v3"

	"github.com/nkoval/mafia-arena/internal/domain"
)

//go:embed catalog.yaml
var defaultFiles embed.FS

// Requirement is an unlock predicate over a user's historical aggregates.
// Supported kinds: games, wins, win_rate (win_rate also honors min_games).
type Requirement struct {
	Kind      string `yaml:"kind"`
	Threshold int    `yaml:"threshold"`
	MinGames  int    `yaml:"min_games"`
}

// Definition is one catalog entry.
type Definition struct {
	ID          int         `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Icon        string      `yaml:"icon"`
	Requires    Requirement `yaml:"requires"`
}

// Catalog holds the achievement definitions loaded from the embedded YAML.
// Unlock state is derived, never stored: recomputing for the same aggregates
// always yields the same set.
type Catalog struct {
	defs []Definition
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	raw, err := fs.ReadFile(defaultFiles, "catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded catalog: %w", err)
	}
	var doc struct {
		Achievements []Definition `yaml:"achievements"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(doc.Achievements) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	for _, d := range doc.Achievements {
		switch d.Requires.Kind {
		case "games", "wins", "win_rate":
		default:
			return nil, fmt.Errorf("achievement %d: unknown requirement kind %q", d.ID, d.Requires.Kind)
		}
	}
	sort.Slice(doc.Achievements, func(i, j int) bool {
		return doc.Achievements[i].ID < doc.Achievements[j].ID
	})
	return &Catalog{defs: doc.Achievements}, nil
}

// ForUser evaluates every definition against the user's aggregates.
func (c *Catalog) ForUser(u *domain.User) []domain.Achievement {
	out := make([]domain.Achievement, 0, len(c.defs))
	for _, d := range c.defs {
		out = append(out, domain.Achievement{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
			Icon:        d.Icon,
			Unlocked:    unlocked(d.Requires, u),
		})
	}
	return out
}

func unlocked(req Requirement, u *domain.User) bool {
	if u == nil {
		return false
	}
	switch req.Kind {
	case "games":
		return u.TotalGames >= req.Threshold
	case "wins":
		return u.TotalWins >= req.Threshold
	case "win_rate":
		return u.TotalGames >= req.MinGames && u.WinRate() >= req.Threshold
	}
	return false
}
