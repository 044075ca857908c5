// Package artifact emits the per-user configuration script consumed by the
// armHelper browser client. The client reads this file at load time and
// merges a localStorage cache back into it, so the field names and nesting
// below are a wire contract, not an implementation detail.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"
)

// Preferences is the user-tunable client configuration block.
type Preferences struct {
	Theme         string `json:"theme"`
	Language      string `json:"language"`
	Notifications bool   `json:"notifications"`
	AutoSave      bool   `json:"autoSave"`
}

// UsageStats tracks client-side activity counters.
type UsageStats struct {
	CalculationsPerformed int     `json:"calculationsPerformed"`
	LastLogin             *string `json:"lastLogin"`
	TotalSessions         int     `json:"totalSessions"`
	FavoriteCalculator    *string `json:"favoriteCalculator"`
}

// PetCalculator toggles for the pet drop-chance calculator.
type PetCalculator struct {
	ShinyChance   bool `json:"shinyChance"`
	GoldenChance  bool `json:"goldenChance"`
	RainbowChance bool `json:"rainbowChance"`
}

// ArmCalculator settings; GoldenLevel ranges 1-5.
type ArmCalculator struct {
	GoldenLevel int `json:"goldenLevel"`
}

// GrindCalculator multiplier toggles; TP is 1, 2 or 3.
type GrindCalculator struct {
	TP             int  `json:"tp"`
	ChocolateDonut bool `json:"chocolateDonut"`
	EnchCookie     bool `json:"enchCookie"`
	Time           bool `json:"time"`
	Friend         bool `json:"friend"`
	Member         bool `json:"member"`
	Premium        bool `json:"premium"`
}

// DefaultModifiers groups the three calculator configurations.
type DefaultModifiers struct {
	PetCalculator   PetCalculator   `json:"petCalculator"`
	ArmCalculator   ArmCalculator   `json:"armCalculator"`
	GrindCalculator GrindCalculator `json:"grindCalculator"`
}

// CalculatorSettings is the outer calculator configuration block.
type CalculatorSettings struct {
	DefaultModifiers DefaultModifiers `json:"defaultModifiers"`
}

// Document is everything embedded into a generated user script.
type Document struct {
	UserID             string
	Email              string
	Phone              string
	Nickname           string
	RegistrationDate   time.Time
	IsActive           bool
	Preferences        Preferences
	Stats              UsageStats
	CalculatorSettings CalculatorSettings
}

// DefaultPreferences returns the preference block every new user starts with.
func DefaultPreferences() Preferences {
	return Preferences{Theme: "default", Language: "uk", Notifications: true, AutoSave: true}
}

// DefaultUsageStats returns zeroed activity counters.
func DefaultUsageStats() UsageStats {
	return UsageStats{}
}

// DefaultCalculatorSettings returns the stock calculator configuration.
func DefaultCalculatorSettings() CalculatorSettings {
	return CalculatorSettings{
		DefaultModifiers: DefaultModifiers{
			ArmCalculator: ArmCalculator{GoldenLevel: 5},
			GrindCalculator: GrindCalculator{
				TP:             1,
				ChocolateDonut: true,
				EnchCookie:     true,
				Time:           true,
				Friend:         true,
				Member:         true,
				Premium:        true,
			},
		},
	}
}

// NewDocument assembles a document with stock defaults for a fresh user.
func NewDocument(userID, email, phone, nickname string, registered time.Time) Document {
	return Document{
		UserID:             userID,
		Email:              email,
		Phone:              phone,
		Nickname:           nickname,
		RegistrationDate:   registered,
		IsActive:           true,
		Preferences:        DefaultPreferences(),
		Stats:              DefaultUsageStats(),
		CalculatorSettings: DefaultCalculatorSettings(),
	}
}

var tmpl = template.Must(template.New("userScript").Funcs(template.FuncMap{
	"obj": func(v any) (string, error) {
		// JSON object literals are valid JS; indent to sit inside userData.
		data, err := json.MarshalIndent(v, "    ", "    ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	},
}).Parse(userScript))

// Render produces the full user script for the document.
func Render(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct {
		Document
		Generated string
	}{Document: doc, Generated: time.Now().Format("2006-01-02 15:04:05")})
	if err != nil {
		return nil, fmt.Errorf("render user script: %w", err)
	}
	return buf.Bytes(), nil
}

// Writer emits user scripts into a directory, one <user_id>.js per user.
type Writer struct {
	dir string
}

// NewWriter builds a writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write renders the document and stores it as <user_id>.js, creating the
// directory if needed.
func (w *Writer) Write(doc Document) error {
	data, err := Render(doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}
	path := filepath.Join(w.dir, doc.UserID+".js")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write user script: %w", err)
	}
	return nil
}

const userScript = `// User data for {{js .Nickname}} (ID: {{.UserID}})
// Generated on {{.Generated}}

const userData = {
    userId: '{{.UserID}}',
    email: '{{js .Email}}',
    phone: '{{js .Phone}}',
    nickname: '{{js .Nickname}}',
    registrationDate: '{{.RegistrationDate.Format "2006-01-02T15:04:05"}}',
    isActive: {{.IsActive}},

    // User preferences (can be modified)
    preferences: {{obj .Preferences}},

    // User stats and progress
    stats: {{obj .Stats}},

    // Calculator settings
    calculatorSettings: {{obj .CalculatorSettings}}
};

// Utility functions for user data management
const userUtils = {
    // Update user stats
    updateStats: function(statName, value) {
        if (userData.stats.hasOwnProperty(statName)) {
            userData.stats[statName] = value;
            this.saveUserData();
        }
    },

    // Update preferences
    updatePreference: function(prefName, value) {
        if (userData.preferences.hasOwnProperty(prefName)) {
            userData.preferences[prefName] = value;
            this.saveUserData();
        }
    },

    // Update calculator settings
    updateCalculatorSettings: function(calculator, settings) {
        if (userData.calculatorSettings.defaultModifiers[calculator]) {
            Object.assign(userData.calculatorSettings.defaultModifiers[calculator], settings);
            this.saveUserData();
        }
    },

    // Persist a local copy; the authoritative copy lives server-side
    saveUserData: function() {
        localStorage.setItem('armHelper_userData', JSON.stringify(userData));
    },

    // Load user data from localStorage as backup
    loadUserData: function() {
        const saved = localStorage.getItem('armHelper_userData');
        if (saved) {
            try {
                const savedData = JSON.parse(saved);
                // Merge saved data with current data, keeping structure
                Object.assign(userData.stats, savedData.stats || {});
                Object.assign(userData.preferences, savedData.preferences || {});
                Object.assign(userData.calculatorSettings, savedData.calculatorSettings || {});
            } catch (e) {
                console.warn('Failed to load saved user data:', e);
            }
        }
    },

    // Get user info
    getUserInfo: function() {
        return {
            id: userData.userId,
            nickname: userData.nickname,
            email: userData.email,
            registrationDate: userData.registrationDate,
            isActive: userData.isActive
        };
    }
};

// Auto-load saved data on script load
userUtils.loadUserData();

// Make userData globally available
if (typeof window !== 'undefined') {
    window.userData = userData;
    window.userUtils = userUtils;
}

// Export for Node.js environment
if (typeof module !== 'undefined' && module.exports) {
    module.exports = { userData, userUtils };
}
`
