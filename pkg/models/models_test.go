package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerSettingsValidate(t *testing.T) {
	t.Run("Defaults Are Valid", func(t *testing.T) {
		assert.NoError(t, DefaultTimerSettings().Validate())
	})

	t.Run("Rejects Bad Values", func(t *testing.T) {
		cases := map[string]TimerSettings{
			"zero work":      {Work: 0, ShortBreak: 5, LongBreak: 15, LongBreakInterval: 4, CurrentPhase: PhaseWork},
			"negative break": {Work: 25, ShortBreak: -1, LongBreak: 15, LongBreakInterval: 4, CurrentPhase: PhaseWork},
			"zero interval":  {Work: 25, ShortBreak: 5, LongBreak: 15, LongBreakInterval: 0, CurrentPhase: PhaseWork},
			"unknown phase":  {Work: 25, ShortBreak: 5, LongBreak: 15, LongBreakInterval: 4, CurrentPhase: "nap"},
		}
		for name, settings := range cases {
			assert.Error(t, settings.Validate(), name)
		}
	})
}

func TestTimerSettingsDuration(t *testing.T) {
	s := DefaultTimerSettings()
	assert.Equal(t, 25*time.Minute, s.Duration(PhaseWork))
	assert.Equal(t, 5*time.Minute, s.Duration(PhaseShortBreak))
	assert.Equal(t, 15*time.Minute, s.Duration(PhaseLongBreak))
}

func TestAccountClone(t *testing.T) {
	account := &Account{
		UserID:    "user1",
		Balance:   100,
		Inventory: map[string]int64{"leon.png": 1},
	}

	clone := account.Clone()
	clone.Balance = 999
	clone.Inventory["leon.png"] = 999

	assert.Equal(t, int64(100), account.Balance)
	assert.Equal(t, int64(1), account.Inventory["leon.png"])
}

func TestOwnedCount(t *testing.T) {
	account := &Account{Inventory: map[string]int64{"leon.png": 2}}
	assert.Equal(t, int64(2), account.OwnedCount("leon.png"))
	assert.Equal(t, int64(0), account.OwnedCount("dance.png"))

	var empty Account
	assert.Equal(t, int64(0), empty.OwnedCount("leon.png"))
}
